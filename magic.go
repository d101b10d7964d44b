package uploadkit

import (
	"bytes"
	"io"
	"net/http"
	"strings"
)

// sniffLen is how much of a file the detectors look at. 512 bytes covers
// every signature in the table and matches http.DetectContentType.
const sniffLen = 512

// MagicSignature defines a file type signature
type MagicSignature struct {
	MIME   string
	Offset int    // Offset from start of file
	Magic  []byte // Magic bytes to match
}

// magicSignatures contains the signatures this validator cares about:
// the image formats it accepts, the archive formats it analyzes, and the
// executable formats it must recognize inside archives.
var magicSignatures = []MagicSignature{
	// Images
	{MIME: "image/jpeg", Offset: 0, Magic: []byte{0xFF, 0xD8, 0xFF}},
	{MIME: "image/png", Offset: 0, Magic: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{MIME: "image/gif", Offset: 0, Magic: []byte("GIF87a")},
	{MIME: "image/gif", Offset: 0, Magic: []byte("GIF89a")},
	{MIME: "image/webp", Offset: 8, Magic: []byte("WEBP")}, // After RIFF header

	// Archives - ZIP
	{MIME: "application/zip", Offset: 0, Magic: []byte{0x50, 0x4B, 0x03, 0x04}},
	{MIME: "application/zip", Offset: 0, Magic: []byte{0x50, 0x4B, 0x05, 0x06}}, // Empty ZIP
	{MIME: "application/zip", Offset: 0, Magic: []byte{0x50, 0x4B, 0x07, 0x08}}, // Spanned ZIP

	// Archives - Other (recognized so nested archives sniff correctly)
	{MIME: "application/gzip", Offset: 0, Magic: []byte{0x1F, 0x8B}},
	{MIME: "application/x-tar", Offset: 257, Magic: []byte("ustar")}, // POSIX tar
	{MIME: "application/x-rar-compressed", Offset: 0, Magic: []byte("Rar!\x1a\x07\x00")},
	{MIME: "application/x-rar-compressed", Offset: 0, Magic: []byte("Rar!\x1a\x07\x01\x00")}, // RAR5
	{MIME: "application/x-7z-compressed", Offset: 0, Magic: []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}},
	{MIME: "application/x-bzip2", Offset: 0, Magic: []byte("BZh")},
	{MIME: "application/x-xz", Offset: 0, Magic: []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}},

	// Executables (for blocking)
	{MIME: "application/x-msdownload", Offset: 0, Magic: []byte("MZ")},                    // EXE/DLL
	{MIME: "application/x-mach-binary", Offset: 0, Magic: []byte{0xCF, 0xFA, 0xED, 0xFE}}, // Mach-O 64-bit
	{MIME: "application/x-mach-binary", Offset: 0, Magic: []byte{0xCE, 0xFA, 0xED, 0xFE}}, // Mach-O 32-bit
	{MIME: "application/x-executable", Offset: 0, Magic: []byte{0x7F, 'E', 'L', 'F'}},     // ELF
}

// DetectMIME detects the MIME type from file content using magic bytes.
// Falls back to http.DetectContentType if no magic match found.
func DetectMIME(reader io.Reader) (string, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(reader, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", NewValidationError(KindMimeTypeMismatch, "failed to read file for MIME detection")
	}
	return DetectMIMEFromBytes(buf[:n]), nil
}

// DetectMIMEFromBytes detects MIME type from a byte slice
func DetectMIMEFromBytes(data []byte) string {
	if len(data) == 0 {
		return "application/octet-stream"
	}

	for _, sig := range magicSignatures {
		if sig.Offset+len(sig.Magic) > len(data) {
			continue
		}
		if bytes.Equal(data[sig.Offset:sig.Offset+len(sig.Magic)], sig.Magic) {
			return sig.MIME
		}
	}

	contentType := http.DetectContentType(data)
	if idx := strings.Index(contentType, ";"); idx > 0 {
		contentType = contentType[:idx]
	}
	return contentType
}

// HasImageSignature reports whether data starts with a known image magic
// sequence (JPEG variants, PNG). Used for the signature check on image
// uploads, independent of MIME detection.
func HasImageSignature(data []byte) bool {
	imageMagics := [][]byte{
		{0xFF, 0xD8, 0xFF}, // JPEG (all variants share this prefix)
		{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, // PNG
	}
	for _, magic := range imageMagics {
		if bytes.HasPrefix(data, magic) {
			return true
		}
	}
	return false
}

// HasZipSignature reports whether data starts with a ZIP local-file,
// end-of-central-directory, or spanned-archive marker
func HasZipSignature(data []byte) bool {
	zipMagics := [][]byte{
		{0x50, 0x4B, 0x03, 0x04},
		{0x50, 0x4B, 0x05, 0x06},
		{0x50, 0x4B, 0x07, 0x08},
	}
	for _, magic := range zipMagics {
		if bytes.HasPrefix(data, magic) {
			return true
		}
	}
	return false
}

// executableSignatures maps a human-readable format label to its magic
// bytes, used by the content inspector on sampled archive entries
var executableSignatures = []struct {
	Label string
	Magic []byte
}{
	{"Windows PE executable", []byte("MZ")},
	{"ELF executable", []byte{0x7F, 'E', 'L', 'F'}},
	{"Mach-O executable (64-bit)", []byte{0xCF, 0xFA, 0xED, 0xFE}},
	{"Mach-O executable (32-bit)", []byte{0xCE, 0xFA, 0xED, 0xFE}},
	{"Mach-O executable (reverse byte order)", []byte{0xFE, 0xED, 0xFA, 0xCE}},
	{"Java class or Mach-O universal binary", []byte{0xCA, 0xFE, 0xBA, 0xBE}},
	{"Windows shortcut", []byte{0x4C, 0x00, 0x00, 0x00, 0x01, 0x14, 0x02, 0x00}},
}

// DetectExecutableSignature returns the label of the executable format
// whose magic bytes prefix data, or empty string if none match
func DetectExecutableSignature(data []byte) string {
	for _, sig := range executableSignatures {
		if bytes.HasPrefix(data, sig.Magic) {
			return sig.Label
		}
	}
	return ""
}
