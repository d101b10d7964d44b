package uploadkit

import (
	"errors"
	"fmt"
	"strings"
)

// RejectionKind represents different kinds of validation rejections
type RejectionKind string

const (
	KindFilenameEmpty            RejectionKind = "filename_empty"
	KindFilenameInvalid          RejectionKind = "filename_invalid"
	KindUnicodeSecurity          RejectionKind = "unicode_security"
	KindWindowsReservedName      RejectionKind = "windows_reserved_name"
	KindExtensionBlocked         RejectionKind = "extension_blocked"
	KindCompoundExtensionBlocked RejectionKind = "compound_extension_blocked"
	KindFileSizeExceeded         RejectionKind = "file_size_exceeded"
	KindFileEmpty                RejectionKind = "file_empty"
	KindMimeTypeMismatch         RejectionKind = "mime_type_mismatch"
	KindFileSignatureMismatch    RejectionKind = "file_signature_mismatch"
	KindZipCorrupt               RejectionKind = "zip_corrupt"
	KindZipTooLarge              RejectionKind = "zip_too_large"
	KindZipTooManyEntries        RejectionKind = "zip_too_many_entries"
	KindZipBomb                  RejectionKind = "zip_bomb"
	KindZipNestedArchive         RejectionKind = "zip_nested_archive"
	KindZipAnalysisTimeout       RejectionKind = "zip_analysis_timeout"
	KindZipContentThreat         RejectionKind = "zip_content_threat"
	KindInternal                 RejectionKind = "internal"
)

// ValidationError represents a typed rejection produced by a validator.
// It implements the error interface and includes the rejection kind for
// programmatic handling.
type ValidationError struct {
	// Kind categorizes the rejection (see the Kind* constants).
	Kind RejectionKind

	// Message is the human-readable rejection reason, safe to surface to
	// the uploading user. It never contains internal detail.
	Message string

	// Findings carries the individual threat strings for aggregate
	// rejections (zip content inspection). Empty for all other kinds.
	Findings []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Findings) > 0 {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, strings.Join(e.Findings, "; "))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(kind RejectionKind, message string) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Message: message,
	}
}

// Errorf creates a new ValidationError with a formatted message
func Errorf(kind RejectionKind, format string, args ...any) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsKind checks if an error is a ValidationError of the specified kind
func IsKind(err error, kind RejectionKind) bool {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Kind == kind
	}
	return false
}

// KindOf returns the kind of a ValidationError, or empty string if the
// error is not a ValidationError
func KindOf(err error) RejectionKind {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Kind
	}
	return ""
}

// FindingsOf returns the accumulated findings of a ValidationError, or nil
// if the error is not a ValidationError or carries none
func FindingsOf(err error) []string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Findings
	}
	return nil
}
