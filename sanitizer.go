package uploadkit

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode/utf8"
)

// maxSanitizedStemLength caps the name portion (extension excluded) of a
// sanitized filename, counted in runes.
const maxSanitizedStemLength = 100

// charsReplacedWithUnderscore are filesystem-unsafe characters substituted
// during sanitization (NTFS/FAT32/ext4 compatibility plus NUL)
const charsReplacedWithUnderscore = "<>:\"/\\|?*\x00"

// SanitizeFilename runs the full filename defense pipeline and returns a
// safe leaf filename, or a typed rejection. Order matters; every step
// operates on the previous step's output:
//
//	empty check -> Unicode validation/NFC -> path stripping -> control
//	character stripping -> unsafe character replacement -> reserved-name
//	check -> extension check -> stem truncation -> empty-stem fallback ->
//	final reserved-name re-check
//
// For any input that passes, re-sanitizing the output yields the same
// output.
func SanitizeFilename(raw string) (string, error) {
	if raw == "" {
		return "", NewValidationError(KindFilenameEmpty, "filename is empty")
	}

	name, err := ValidateUnicode(raw)
	if err != nil {
		return "", err
	}

	name = stripPathComponents(name)
	name = stripControlChars(name)
	name = replaceUnsafeChars(name)

	// Reserved-name check runs before extension analysis so a reserved
	// stem is caught regardless of what extension follows it.
	if err := CheckWindowsReservedName(name); err != nil {
		return "", err
	}
	if err := CheckExtensions(name); err != nil {
		return "", err
	}

	stem, ext := splitStemExt(name)
	stem = truncateRunes(stem, maxSanitizedStemLength)
	if strings.TrimSpace(stem) == "" {
		// Nothing usable survived sanitization; synthesize a unique stem.
		stem = fmt.Sprintf("upload_%d", time.Now().UnixNano())
	}
	name = stem + ext

	// Truncation or synthesis could theoretically reconstruct a reserved
	// stem, so re-check the final result.
	if err := CheckWindowsReservedName(name); err != nil {
		return "", err
	}

	return name, nil
}

// stripPathComponents reduces a possibly path-qualified name to its leaf.
// Backslashes are normalized first so Windows-style paths are handled on
// all platforms.
func stripPathComponents(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}

// stripControlChars removes ASCII control characters (0x00-0x1F) and DEL
func stripControlChars(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 32 || r == 0x7F {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// replaceUnsafeChars substitutes filesystem-unsafe characters with '_'
func replaceUnsafeChars(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if strings.ContainsRune(charsReplacedWithUnderscore, r) {
			b.WriteByte('_')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitStemExt splits a filename into stem and final extension. Dotfiles
// like .gitignore count as all-stem.
func splitStemExt(name string) (string, string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i:]
}

// truncateRunes shortens s to at most n runes
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
