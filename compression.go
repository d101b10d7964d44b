package uploadkit

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"time"
)

// nestedArchiveExtensions flag entries that are themselves archives
var nestedArchiveExtensions = []string{
	".zip", ".jar", ".war", ".ear", ".rar", ".7z",
	".tar", ".gz", ".tgz", ".bz2", ".xz",
}

func isNestedArchiveName(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range nestedArchiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ArchiveAnalyzer validates ZIP archives for decompression bombs by walking
// the central-directory metadata only; entry contents are never read. A
// wall-clock deadline is checked before each entry so a crafted archive with
// an enormous entry count cannot stall the upload path.
type ArchiveAnalyzer struct {
	// MaxCompressionRatio is the maximum allowed ratio, per entry and for
	// the archive as a whole. A ratio exactly at the limit is accepted.
	MaxCompressionRatio float64

	// MaxEntries is the maximum number of entries in the archive
	MaxEntries int

	// MaxUncompressedTotal is the maximum total uncompressed size in bytes
	MaxUncompressedTotal int64

	// MaxIndividualFileSize is the maximum uncompressed size of one entry
	MaxIndividualFileSize int64

	// MaxArchiveSize is the largest archive the parser will open at all
	MaxArchiveSize int64

	// AnalysisTimeout bounds the metadata walk. Zero or negative counts
	// as already expired: any non-empty archive fails.
	AnalysisTimeout time.Duration

	// AllowNestedArchives permits entries that are themselves archives
	AllowNestedArchives bool
}

// NewArchiveAnalyzer creates an analyzer from security limits
func NewArchiveAnalyzer(limits SecurityLimits) *ArchiveAnalyzer {
	return &ArchiveAnalyzer{
		MaxCompressionRatio:   limits.MaxCompressionRatio,
		MaxEntries:            limits.MaxZipEntries,
		MaxUncompressedTotal:  limits.MaxUncompressedSize,
		MaxIndividualFileSize: limits.MaxIndividualFileSize,
		MaxArchiveSize:        limits.MaxZipSize,
		AnalysisTimeout:       limits.ZipAnalysisTimeout,
		AllowNestedArchives:   limits.AllowNestedArchives,
	}
}

// Analyze walks the archive's entry metadata in a single pass and rejects
// decompression bombs. Severity ordering: per-entry ratio and size findings
// fail immediately; nested archives are collected and reported only after
// the size and ratio checks complete, so the most severe finding wins.
//
// A panic while parsing (crafted central-directory metadata can push the
// stdlib parser into pathological allocations) is recovered and reported
// as a bomb, not as an internal failure.
func (a *ArchiveAnalyzer) Analyze(reader io.ReaderAt, size int64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewValidationError(KindZipBomb,
				"archive metadata caused excessive resource use during parsing")
		}
	}()

	if a.MaxArchiveSize > 0 && size > a.MaxArchiveSize {
		return Errorf(KindZipTooLarge,
			"archive is %d bytes, exceeding the %d byte limit", size, a.MaxArchiveSize)
	}

	zipReader, err := zip.NewReader(reader, size)
	if err != nil {
		return Errorf(KindZipCorrupt, "cannot parse archive structure: %v", err)
	}

	if a.MaxEntries > 0 && len(zipReader.File) > a.MaxEntries {
		return Errorf(KindZipTooManyEntries,
			"archive contains %d entries (max: %d)", len(zipReader.File), a.MaxEntries)
	}

	start := time.Now()
	var totalUncompressed, totalCompressed uint64
	var nestedArchives []string

	for _, entry := range zipReader.File {
		if entry.FileInfo().IsDir() {
			continue
		}

		if a.deadlineExceeded(start) {
			// Legitimate archives analyze in milliseconds; running out of
			// budget is itself treated as a bomb signal.
			return Errorf(KindZipAnalysisTimeout,
				"archive analysis exceeded the %v time budget", a.AnalysisTimeout)
		}

		totalUncompressed += entry.UncompressedSize64
		totalCompressed += entry.CompressedSize64

		if err := a.checkEntryRatio(entry.Name, entry.UncompressedSize64, entry.CompressedSize64); err != nil {
			return err
		}

		if isNestedArchiveName(entry.Name) {
			nestedArchives = append(nestedArchives, entry.Name)
		}

		if a.MaxIndividualFileSize > 0 && entry.UncompressedSize64 > uint64(a.MaxIndividualFileSize) {
			return Errorf(KindFileSizeExceeded,
				"entry %q expands to %d bytes (max per file: %d)",
				entry.Name, entry.UncompressedSize64, a.MaxIndividualFileSize)
		}
	}

	if err := a.checkTotals(totalUncompressed, totalCompressed); err != nil {
		return err
	}

	if len(nestedArchives) > 0 && !a.AllowNestedArchives {
		return Errorf(KindZipNestedArchive,
			"archive contains nested archives: %s", strings.Join(nestedArchives, ", "))
	}

	return nil
}

// AnalyzeBytes analyzes an in-memory archive
func (a *ArchiveAnalyzer) AnalyzeBytes(data []byte) error {
	return a.Analyze(bytes.NewReader(data), int64(len(data)))
}

// checkEntryRatio rejects a single entry whose compression ratio exceeds
// the limit. Stored entries (compressed size 0) have no defined ratio and
// are skipped.
func (a *ArchiveAnalyzer) checkEntryRatio(name string, uncompressed, compressed uint64) error {
	if compressed == 0 || a.MaxCompressionRatio <= 0 {
		return nil
	}
	ratio := float64(uncompressed) / float64(compressed)
	if ratio > a.MaxCompressionRatio {
		return Errorf(KindZipBomb,
			"entry %q has compression ratio %.1f:1 (max: %.1f:1)",
			name, ratio, a.MaxCompressionRatio)
	}
	return nil
}

// checkTotals applies the whole-archive limits. The overall ratio catches
// bombs built from entries that individually pass the per-entry check,
// typically by claiming a zero compressed size that the per-entry ratio
// skips over.
func (a *ArchiveAnalyzer) checkTotals(totalUncompressed, totalCompressed uint64) error {
	if a.MaxUncompressedTotal > 0 && totalUncompressed > uint64(a.MaxUncompressedTotal) {
		return Errorf(KindZipBomb,
			"archive expands to %d bytes total (max: %d)", totalUncompressed, a.MaxUncompressedTotal)
	}
	if totalCompressed > 0 && a.MaxCompressionRatio > 0 {
		overall := float64(totalUncompressed) / float64(totalCompressed)
		if overall > a.MaxCompressionRatio {
			return Errorf(KindZipBomb,
				"archive has overall compression ratio %.1f:1 (max: %.1f:1)",
				overall, a.MaxCompressionRatio)
		}
	}
	return nil
}

func (a *ArchiveAnalyzer) deadlineExceeded(start time.Time) bool {
	if a.AnalysisTimeout <= 0 {
		return true
	}
	return time.Since(start) > a.AnalysisTimeout
}
