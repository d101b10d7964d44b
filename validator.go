package uploadkit

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// zipInspectorKey is the canonical MIME key used to look up the archive
// inspector, regardless of how the upload itself sniffed
const zipInspectorKey = "application/zip"

// FileValidator is the top-level facade composing filename sanitization,
// extension, size, MIME and signature checks, and, for archives, the
// compression analysis and deep content inspection. It holds only the
// read-only limits and registry, so one instance is safe for concurrent
// use across upload requests; all per-call state is allocated fresh.
type FileValidator struct {
	limits   SecurityLimits
	registry *InspectorRegistry
}

// New creates a file validator with the given security limits
func New(limits SecurityLimits) *FileValidator {
	return &FileValidator{
		limits:   limits,
		registry: DefaultInspectorRegistry(limits),
	}
}

// NewDefault creates a file validator with sensible default limits
func NewDefault() *FileValidator {
	return New(DefaultSecurityLimits())
}

// Limits returns the validator's security limits
func (v *FileValidator) Limits() SecurityLimits {
	return v.limits
}

// Registry returns the inspector registry so callers can register custom
// archive inspectors
func (v *FileValidator) Registry() *InspectorRegistry {
	return v.registry
}

// ValidateImageFile validates an image upload and returns a report carrying
// the sanitized filename. The stream must support seeking; content is read
// in a bounded prefix for detection, and the full stream is only traversed
// once more to compute the content digest.
func (v *FileValidator) ValidateImageFile(ctx context.Context, r io.ReadSeeker, filename string) (report *Report, err error) {
	defer v.guard(&err)
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sanitized, err := SanitizeFilename(filename)
	if err != nil {
		return nil, err
	}
	if err := checkAllowedExtension(sanitized, v.limits.AllowedImageExtensions); err != nil {
		return nil, err
	}

	size, err := streamSize(r)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, NewValidationError(KindFileEmpty, "uploaded file is empty")
	}
	if v.limits.MaxImageSize > 0 && size > v.limits.MaxImageSize {
		return nil, Errorf(KindFileSizeExceeded,
			"file is %d bytes, exceeding the %d byte limit", size, v.limits.MaxImageSize)
	}

	prefix, err := readPrefix(r)
	if err != nil {
		return nil, err
	}

	mimeType := DetectMIMEFromBytes(prefix)
	if !containsFold(v.limits.AllowedImageMIMETypes, mimeType) {
		return nil, Errorf(KindMimeTypeMismatch,
			"detected type %s is not an accepted image type", mimeType)
	}
	if !HasImageSignature(prefix) {
		return nil, NewValidationError(KindFileSignatureMismatch,
			"file content does not match a known image signature")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	digest, err := digestStream(r)
	if err != nil {
		return nil, err
	}

	return &Report{
		SanitizedName: sanitized,
		Size:          size,
		DetectedMIME:  mimeType,
		Digest:        digest,
		Duration:      time.Since(start),
	}, nil
}

// ValidateZipFile validates a ZIP archive upload and returns a report
// carrying the sanitized filename. The archive is held in memory for the
// structural analysis; the size check above bounds that allocation.
func (v *FileValidator) ValidateZipFile(ctx context.Context, r io.ReadSeeker, filename string) (report *Report, err error) {
	defer v.guard(&err)
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sanitized, err := SanitizeFilename(filename)
	if err != nil {
		return nil, err
	}
	if err := checkAllowedExtension(sanitized, v.limits.AllowedZipExtensions); err != nil {
		return nil, err
	}

	size, err := streamSize(r)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, NewValidationError(KindFileEmpty, "uploaded file is empty")
	}
	if v.limits.MaxZipSize > 0 && size > v.limits.MaxZipSize {
		return nil, Errorf(KindZipTooLarge,
			"archive is %d bytes, exceeding the %d byte limit", size, v.limits.MaxZipSize)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, NewValidationError(KindZipCorrupt, "failed to read archive content")
	}

	mimeType := DetectMIMEFromBytes(data)
	if !v.isAcceptedZipMIME(mimeType, data) {
		return nil, Errorf(KindMimeTypeMismatch,
			"detected type %s is not an accepted archive type", mimeType)
	}
	if !HasZipSignature(data) {
		return nil, NewValidationError(KindFileSignatureMismatch,
			"file content does not match a ZIP signature")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analyzer := NewArchiveAnalyzer(v.limits)
	if err := analyzer.AnalyzeBytes(data); err != nil {
		return nil, err
	}

	if v.limits.ScanZipContent {
		if err := v.registry.Inspect(zipInspectorKey, bytes.NewReader(data), int64(len(data))); err != nil {
			return nil, err
		}
	}

	digest, err := DigestBytes(data, DigestXXHash)
	if err != nil {
		return nil, err
	}

	return &Report{
		SanitizedName: sanitized,
		Size:          size,
		DetectedMIME:  mimeType,
		Digest:        digest,
		Duration:      time.Since(start),
	}, nil
}

// ValidateImageBytes validates an in-memory image upload
func (v *FileValidator) ValidateImageBytes(ctx context.Context, data []byte, filename string) (*Report, error) {
	return v.ValidateImageFile(ctx, bytes.NewReader(data), filename)
}

// ValidateZipBytes validates an in-memory archive upload
func (v *FileValidator) ValidateZipBytes(ctx context.Context, data []byte, filename string) (*Report, error) {
	return v.ValidateZipFile(ctx, bytes.NewReader(data), filename)
}

// isAcceptedZipMIME applies the archive MIME allowlist with one narrow
// relaxation: application/octet-stream is accepted only when the content
// carries a real PK signature, because some legitimate ZIPs sniff as
// generic binary. This is not a general MIME bypass.
func (v *FileValidator) isAcceptedZipMIME(mimeType string, data []byte) bool {
	if containsFold(v.limits.AllowedZipMIMETypes, mimeType) {
		return true
	}
	return mimeType == "application/octet-stream" && HasZipSignature(data)
}

// guard converts panics escaping a validation call into an internal
// rejection with no internal detail attached
func (v *FileValidator) guard(err *error) {
	if r := recover(); r != nil {
		*err = NewValidationError(KindInternal, "unexpected failure during file validation")
	}
}

func checkAllowedExtension(filename string, allowed []string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return NewValidationError(KindFilenameInvalid, "filename has no extension")
	}
	if !containsFold(allowed, ext) {
		return Errorf(KindExtensionBlocked, "file extension %q is not allowed", ext)
	}
	return nil
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

// streamSize determines the total stream size and rewinds to the start
func streamSize(r io.ReadSeeker) (int64, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, NewValidationError(KindInternal, "upload stream does not support seeking")
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, NewValidationError(KindInternal, "failed to rewind upload stream")
	}
	return size, nil
}

// readPrefix reads the detection prefix and rewinds
func readPrefix(r io.ReadSeeker) ([]byte, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, NewValidationError(KindInternal, "failed to read upload stream")
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, NewValidationError(KindInternal, "failed to rewind upload stream")
	}
	return buf[:n], nil
}

// digestStream hashes the stream from the start
func digestStream(r io.ReadSeeker) (string, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", NewValidationError(KindInternal, "failed to rewind upload stream")
	}
	digest, err := Digest(r, DigestXXHash)
	if err != nil {
		return "", NewValidationError(KindInternal, "failed to digest upload stream")
	}
	return digest, nil
}
