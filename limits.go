package uploadkit

import "time"

// Size constants for easier limit configuration
const (
	KB = int64(1024)
	MB = KB * 1024
	GB = MB * 1024
)

// SecurityLimits defines the configuration for upload validation.
// A SecurityLimits value is constructed once at startup, validated with
// CheckLimits, and treated as read-only for the process lifetime. Validators
// hold no other state, so a single value is safe for concurrent use.
type SecurityLimits struct {
	// MaxImageSize is the maximum allowed image upload size in bytes.
	// Use the provided constants for readable configuration, e.g., 10 * MB
	MaxImageSize int64

	// MaxZipSize is the maximum allowed archive upload size in bytes
	MaxZipSize int64

	// MaxCompressionRatio is the maximum allowed compression ratio
	// (uncompressed/compressed), applied per entry and to the archive as
	// a whole. Zip bombs often have ratios of 1000:1 or higher.
	MaxCompressionRatio float64

	// MaxUncompressedSize is the maximum total uncompressed size in bytes
	// across all archive entries
	MaxUncompressedSize int64

	// MaxIndividualFileSize is the maximum uncompressed size in bytes for
	// a single archive entry
	MaxIndividualFileSize int64

	// MaxZipEntries is the maximum number of entries allowed in an archive
	MaxZipEntries int

	// ZipAnalysisTimeout is the wall-clock budget for analyzing a single
	// archive. A zero or negative budget counts as already expired.
	ZipAnalysisTimeout time.Duration

	// MaxZipDepth is the maximum directory depth allowed inside an archive
	MaxZipDepth int

	// MaxFilenameLength is the maximum basename length for archive entries
	MaxFilenameLength int

	// MaxPathLength is the maximum full-path length for archive entries
	MaxPathLength int

	// MaxSameExtensionCount is the maximum number of entries sharing one
	// extension. Catches file-count bombs built from many small files.
	MaxSameExtensionCount int

	// AllowNestedArchives permits archive entries that are themselves
	// archives (.zip, .tar.gz, ...)
	AllowNestedArchives bool

	// AllowSymlinks permits entries with Unix symlink mode bits
	AllowSymlinks bool

	// AllowAbsolutePaths permits entries with absolute paths
	AllowAbsolutePaths bool

	// ScanZipContent enables the deep content inspection pass after the
	// compression analysis succeeds
	ScanZipContent bool

	// AllowedImageMIMETypes is the MIME allowlist for image uploads
	AllowedImageMIMETypes []string

	// AllowedZipMIMETypes is the MIME allowlist for archive uploads.
	// application/octet-stream is never listed here; it is accepted for
	// archives only when the PK signature check passes.
	AllowedZipMIMETypes []string

	// AllowedImageExtensions is the extension allowlist for image uploads
	AllowedImageExtensions []string

	// AllowedZipExtensions is the extension allowlist for archive uploads
	AllowedZipExtensions []string
}

// DefaultSecurityLimits creates security limits with sensible defaults
func DefaultSecurityLimits() SecurityLimits {
	return SecurityLimits{
		MaxImageSize:          10 * MB,
		MaxZipSize:            100 * MB,
		MaxCompressionRatio:   100.0, // 100:1
		MaxUncompressedSize:   500 * MB,
		MaxIndividualFileSize: 100 * MB,
		MaxZipEntries:         1000,
		ZipAnalysisTimeout:    30 * time.Second,
		MaxZipDepth:           10,
		MaxFilenameLength:     255,
		MaxPathLength:         512,
		MaxSameExtensionCount: 200,
		AllowNestedArchives:   false,
		AllowSymlinks:         false,
		AllowAbsolutePaths:    false,
		ScanZipContent:        true,

		AllowedImageMIMETypes:  []string{"image/jpeg", "image/png"},
		AllowedZipMIMETypes:    []string{"application/zip", "application/x-zip-compressed"},
		AllowedImageExtensions: []string{".jpg", ".jpeg", ".png"},
		AllowedZipExtensions:   []string{".zip"},
	}
}

// StrictSecurityLimits creates limits tuned for hostile environments:
// lower expansion budgets and a short analysis window.
func StrictSecurityLimits() SecurityLimits {
	limits := DefaultSecurityLimits()
	limits.MaxImageSize = 2 * MB
	limits.MaxZipSize = 20 * MB
	limits.MaxCompressionRatio = 50.0
	limits.MaxUncompressedSize = 100 * MB
	limits.MaxIndividualFileSize = 20 * MB
	limits.MaxZipEntries = 200
	limits.ZipAnalysisTimeout = 5 * time.Second
	limits.MaxZipDepth = 5
	limits.MaxSameExtensionCount = 50
	return limits
}
