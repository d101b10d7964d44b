package uploadkit

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// contentProbeMaxEntrySize bounds which entries get their content sampled.
// Larger entries are still covered by the structural and metadata checks.
const contentProbeMaxEntrySize = 10 * 1024 * 1024

// unixModeSymlink is the symlink type bit in the upper 16 bits of a ZIP
// entry's external attributes (Unix mode 0120000)
const (
	unixModeTypeMask = 0o170000
	unixModeSymlink  = 0o120000
)

// traversalPatterns are substring-matched against the raw entry path. The
// normalized-path check below is insufficient against as-yet-undecoded
// sequences, and this list alone is insufficient against plain ../ chains
// hidden by normalization tricks, so both run.
var traversalPatterns = []string{
	"../",
	"..\\",
	"%2e%2e%2f",
	"%2e%2e/",
	"..%2f",
	"%2e%2e%5c",
	"..%5c",
	"%252e%252e%252f",
	"%252e%252e%255c",
}

var driveLetterPattern = regexp.MustCompile(`^[a-zA-Z]:`)

// suspiciousBasenames are exact basename matches for known malware droppers
// and sensitive system or credential files
var suspiciousBasenames = map[string]struct{}{
	"autorun.inf": {}, "desktop.ini": {}, "thumbs.db": {}, ".ds_store": {},
	"boot.ini": {}, "ntldr": {}, "pagefile.sys": {}, "hiberfil.sys": {},
	".bashrc": {}, ".bash_profile": {}, ".profile": {},
	"authorized_keys": {}, "id_rsa": {}, "id_dsa": {}, "id_ed25519": {},
	"passwd": {}, "shadow": {}, "sam": {},
	"web.config": {}, ".htaccess": {}, ".env": {},
}

// sensitivePathPrefixes are substring-matched against the entry path
var sensitivePathPrefixes = []string{
	"windows/", "winnt/", "system32/", "program files",
	"/etc/", "/bin/", "/boot/", "/dev/", "/proc/", "/sys/", "/root/",
	".git/", ".ssh/", ".svn/", "node_modules/",
}

// scriptMarkers are matched against the lossy-decoded prefix of entries
// whose extension does not indicate a binary format
var scriptMarkers = []string{
	"#!/",
	"<?php",
	"<script",
	"eval(",
	"exec(",
	"javascript:",
	"vbscript:",
	"powershell",
	"cmd.exe",
}

// binaryContentExtensions mark entries whose content is expected to be
// binary; the script-marker scan is skipped for these to avoid false
// positives on compressed data.
var binaryContentExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {}, ".webp": {},
	".ico": {}, ".pdf": {}, ".woff": {}, ".woff2": {}, ".ttf": {}, ".otf": {},
	".mp3": {}, ".mp4": {}, ".ogg": {}, ".wav": {}, ".webm": {},
}

// ContentInspector performs deep inspection of ZIP archive entries:
// traversal and absolute paths, symlinks, oversized names, suspicious
// names and paths, nested archives, embedded executable and script
// content, directory depth, and extension-count skew. All findings across
// all entries are accumulated; inspection never stops at the first one, so
// a rejection surfaces everything found.
type ContentInspector struct {
	MaxFilenameLength   int
	MaxPathLength       int
	MaxDepth            int
	MaxSameExtension    int
	AllowNestedArchives bool
	AllowSymlinks       bool
	AllowAbsolutePaths  bool

	// AnalysisTimeout bounds the inspection walk, checked before each
	// entry. Zero or negative counts as already expired.
	AnalysisTimeout time.Duration
}

// NewContentInspector creates an inspector from security limits
func NewContentInspector(limits SecurityLimits) *ContentInspector {
	return &ContentInspector{
		MaxFilenameLength:   limits.MaxFilenameLength,
		MaxPathLength:       limits.MaxPathLength,
		MaxDepth:            limits.MaxZipDepth,
		MaxSameExtension:    limits.MaxSameExtensionCount,
		AllowNestedArchives: limits.AllowNestedArchives,
		AllowSymlinks:       limits.AllowSymlinks,
		AllowAbsolutePaths:  limits.AllowAbsolutePaths,
		AnalysisTimeout:     limits.ZipAnalysisTimeout,
	}
}

// SupportedMIMETypes returns the MIME types this inspector can handle
func (c *ContentInspector) SupportedMIMETypes() []string {
	return []string{
		"application/zip",
		"application/x-zip-compressed",
	}
}

// Inspect walks every archive entry and returns an aggregate rejection
// listing all findings, or nil if the archive is clean
func (c *ContentInspector) Inspect(reader io.ReaderAt, size int64) error {
	zipReader, err := zip.NewReader(reader, size)
	if err != nil {
		return Errorf(KindZipCorrupt, "cannot parse archive structure: %v", err)
	}

	start := time.Now()
	var findings []string
	extensionCounts := make(map[string]int)
	maxDepth := 0

	for _, entry := range zipReader.File {
		if c.deadlineExceeded(start) {
			return Errorf(KindZipAnalysisTimeout,
				"archive inspection exceeded the %v time budget", c.AnalysisTimeout)
		}

		findings = append(findings, c.inspectEntry(entry)...)

		cleaned := path.Clean(strings.ReplaceAll(entry.Name, "\\", "/"))
		if depth := strings.Count(cleaned, "/"); depth > maxDepth {
			maxDepth = depth
		}

		if !entry.FileInfo().IsDir() {
			if ext := strings.ToLower(path.Ext(path.Base(cleaned))); ext != "" {
				extensionCounts[ext]++
			}
		}
	}

	if c.MaxDepth > 0 && maxDepth > c.MaxDepth {
		findings = append(findings,
			fmt.Sprintf("directory depth %d exceeds maximum %d", maxDepth, c.MaxDepth))
	}
	if c.MaxSameExtension > 0 {
		for ext, count := range extensionCounts {
			if count > c.MaxSameExtension {
				findings = append(findings,
					fmt.Sprintf("%d entries share extension %q (max: %d)", count, ext, c.MaxSameExtension))
			}
		}
	}

	if len(findings) > 0 {
		return &ValidationError{
			Kind:     KindZipContentThreat,
			Message:  fmt.Sprintf("%d threats detected in archive content", len(findings)),
			Findings: findings,
		}
	}
	return nil
}

// InspectBytes inspects an in-memory archive
func (c *ContentInspector) InspectBytes(data []byte) error {
	return c.Inspect(bytes.NewReader(data), int64(len(data)))
}

func (c *ContentInspector) inspectEntry(entry *zip.File) []string {
	var findings []string
	name := entry.Name

	if c.hasTraversal(name) {
		findings = append(findings, fmt.Sprintf("path traversal in entry %q", name))
	}
	if !c.AllowAbsolutePaths && isAbsoluteEntryPath(name) {
		findings = append(findings, fmt.Sprintf("absolute path in entry %q", name))
	}
	if !c.AllowSymlinks && isSymlinkEntry(entry) {
		findings = append(findings, fmt.Sprintf("symbolic link entry %q", name))
	}

	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if c.MaxFilenameLength > 0 && utf8.RuneCountInString(base) > c.MaxFilenameLength {
		findings = append(findings,
			fmt.Sprintf("entry filename longer than %d characters: %q", c.MaxFilenameLength, base))
	}
	if c.MaxPathLength > 0 && len(name) > c.MaxPathLength {
		findings = append(findings,
			fmt.Sprintf("entry path longer than %d characters", c.MaxPathLength))
	}

	lowerBase := strings.ToLower(base)
	if _, ok := suspiciousBasenames[lowerBase]; ok {
		findings = append(findings, fmt.Sprintf("suspicious filename %q", base))
	}
	lowerPath := strings.ToLower(strings.ReplaceAll(name, "\\", "/"))
	for _, prefix := range sensitivePathPrefixes {
		if strings.Contains(lowerPath, prefix) {
			findings = append(findings,
				fmt.Sprintf("entry %q targets sensitive directory %q", name, prefix))
			break
		}
	}

	if !c.AllowNestedArchives && isNestedArchiveName(name) {
		findings = append(findings, fmt.Sprintf("nested archive %q", name))
	}

	if !entry.FileInfo().IsDir() {
		findings = append(findings, c.probeContent(entry, lowerBase)...)
	}

	return findings
}

// probeContent reads a small fixed-size prefix of an entry and checks it
// for executable signatures and, for non-binary extensions, script markers
func (c *ContentInspector) probeContent(entry *zip.File, lowerBase string) []string {
	if entry.UncompressedSize64 == 0 || entry.UncompressedSize64 > contentProbeMaxEntrySize {
		return nil
	}

	rc, err := entry.Open()
	if err != nil {
		return []string{fmt.Sprintf("unreadable entry %q: cannot open", entry.Name)}
	}
	defer rc.Close()

	prefix := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, prefix)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return []string{fmt.Sprintf("unreadable entry %q: corrupt content", entry.Name)}
	}
	prefix = prefix[:n]

	var findings []string
	if label := DetectExecutableSignature(prefix); label != "" {
		findings = append(findings,
			fmt.Sprintf("entry %q contains %s content", entry.Name, label))
	}

	ext := strings.ToLower(path.Ext(lowerBase))
	if _, binary := binaryContentExtensions[ext]; !binary {
		text := strings.ToLower(string(prefix)) // lossy decode is fine for marker matching
		for _, marker := range scriptMarkers {
			if strings.Contains(text, marker) {
				findings = append(findings,
					fmt.Sprintf("entry %q contains script marker %q", entry.Name, marker))
				break
			}
		}
	}
	return findings
}

// hasTraversal combines raw substring matching (catches encoded variants)
// with a normalized-path check (catches anything the substrings miss)
func (c *ContentInspector) hasTraversal(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range traversalPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}

	cleaned := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return true
	}
	return false
}

func isAbsoluteEntryPath(name string) bool {
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "\\") {
		return true
	}
	return driveLetterPattern.MatchString(name)
}

func isSymlinkEntry(entry *zip.File) bool {
	mode := entry.ExternalAttrs >> 16
	return mode&unixModeTypeMask == unixModeSymlink
}

func (c *ContentInspector) deadlineExceeded(start time.Time) bool {
	if c.AnalysisTimeout <= 0 {
		return true
	}
	return time.Since(start) > c.AnalysisTimeout
}
