package uploadkit

import "time"

// Builder provides a fluent API for constructing validators
type Builder struct {
	limits SecurityLimits
}

// NewBuilder creates a new validator builder with sensible defaults
func NewBuilder() *Builder {
	return &Builder{
		limits: DefaultSecurityLimits(),
	}
}

// --- Size limits ---

// MaxImageSize sets the maximum allowed image upload size
func (b *Builder) MaxImageSize(size int64) *Builder {
	b.limits.MaxImageSize = size
	return b
}

// MaxZipSize sets the maximum allowed archive upload size
func (b *Builder) MaxZipSize(size int64) *Builder {
	b.limits.MaxZipSize = size
	return b
}

// --- Archive analysis limits ---

// MaxCompressionRatio sets the maximum allowed compression ratio
func (b *Builder) MaxCompressionRatio(ratio float64) *Builder {
	b.limits.MaxCompressionRatio = ratio
	return b
}

// MaxUncompressedSize sets the maximum total uncompressed size
func (b *Builder) MaxUncompressedSize(size int64) *Builder {
	b.limits.MaxUncompressedSize = size
	return b
}

// MaxIndividualFileSize sets the maximum uncompressed size per entry
func (b *Builder) MaxIndividualFileSize(size int64) *Builder {
	b.limits.MaxIndividualFileSize = size
	return b
}

// MaxZipEntries sets the maximum archive entry count
func (b *Builder) MaxZipEntries(count int) *Builder {
	b.limits.MaxZipEntries = count
	return b
}

// AnalysisTimeout sets the wall-clock budget for archive analysis
func (b *Builder) AnalysisTimeout(d time.Duration) *Builder {
	b.limits.ZipAnalysisTimeout = d
	return b
}

// --- Content inspection limits ---

// MaxZipDepth sets the maximum directory depth inside archives
func (b *Builder) MaxZipDepth(depth int) *Builder {
	b.limits.MaxZipDepth = depth
	return b
}

// MaxFilenameLength sets the maximum entry basename length
func (b *Builder) MaxFilenameLength(length int) *Builder {
	b.limits.MaxFilenameLength = length
	return b
}

// MaxPathLength sets the maximum entry path length
func (b *Builder) MaxPathLength(length int) *Builder {
	b.limits.MaxPathLength = length
	return b
}

// MaxSameExtensionCount sets the maximum entry count per extension
func (b *Builder) MaxSameExtensionCount(count int) *Builder {
	b.limits.MaxSameExtensionCount = count
	return b
}

// AllowNestedArchives permits archive entries that are archives themselves
func (b *Builder) AllowNestedArchives() *Builder {
	b.limits.AllowNestedArchives = true
	return b
}

// AllowSymlinks permits symlink entries
func (b *Builder) AllowSymlinks() *Builder {
	b.limits.AllowSymlinks = true
	return b
}

// AllowAbsolutePaths permits absolute entry paths
func (b *Builder) AllowAbsolutePaths() *Builder {
	b.limits.AllowAbsolutePaths = true
	return b
}

// WithoutContentScan disables the deep inspection pass; compression
// analysis still runs
func (b *Builder) WithoutContentScan() *Builder {
	b.limits.ScanZipContent = false
	return b
}

// --- Allowlists ---

// ImageTypes sets the image MIME allowlist
func (b *Builder) ImageTypes(mimeTypes ...string) *Builder {
	b.limits.AllowedImageMIMETypes = mimeTypes
	return b
}

// ImageExtensions sets the image extension allowlist
func (b *Builder) ImageExtensions(exts ...string) *Builder {
	b.limits.AllowedImageExtensions = exts
	return b
}

// ZipTypes sets the archive MIME allowlist
func (b *Builder) ZipTypes(mimeTypes ...string) *Builder {
	b.limits.AllowedZipMIMETypes = mimeTypes
	return b
}

// ZipExtensions sets the archive extension allowlist
func (b *Builder) ZipExtensions(exts ...string) *Builder {
	b.limits.AllowedZipExtensions = exts
	return b
}

// --- Build ---

// Build creates the validator with the configured limits
func (b *Builder) Build() *FileValidator {
	return New(b.limits)
}

// Limits returns the current limits (for inspection)
func (b *Builder) Limits() SecurityLimits {
	return b.limits
}

// --- Presets ---

// Strict creates a builder with limits tuned for hostile environments
func Strict() *Builder {
	return &Builder{limits: StrictSecurityLimits()}
}
