package uploadkit

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/unicode/runenames"
)

// Unicode attack categories. Each maps a category name to the code points
// it covers; the union forms the dangerous code-point set. Built once at
// package init so per-call validation is a plain map lookup.
var unicodeAttackCategories = map[string][]rune{
	// Bidirectional override controls let "exe.jpg" render as "gpj.exe"
	"bidi_override": {
		0x202A, // LEFT-TO-RIGHT EMBEDDING
		0x202B, // RIGHT-TO-LEFT EMBEDDING
		0x202C, // POP DIRECTIONAL FORMATTING
		0x202D, // LEFT-TO-RIGHT OVERRIDE
		0x202E, // RIGHT-TO-LEFT OVERRIDE
		0x2066, // LEFT-TO-RIGHT ISOLATE
		0x2067, // RIGHT-TO-LEFT ISOLATE
		0x2068, // FIRST STRONG ISOLATE
		0x2069, // POP DIRECTIONAL ISOLATE
	},
	// Invisible characters that hide payload in visually clean names
	"zero_width": {
		0x200B, // ZERO WIDTH SPACE
		0x200C, // ZERO WIDTH NON-JOINER
		0x200D, // ZERO WIDTH JOINER
		0x2060, // WORD JOINER
		0x180E, // MONGOLIAN VOWEL SEPARATOR
		0xFEFF, // ZERO WIDTH NO-BREAK SPACE
	},
	// Direction marks without override semantics, still confuse rendering
	"direction_mark": {
		0x200E, // LEFT-TO-RIGHT MARK
		0x200F, // RIGHT-TO-LEFT MARK
		0x061C, // ARABIC LETTER MARK
	},
	// Dot and slash lookalikes that disguise a file's real extension
	"extension_disguise": {
		0x2024, // ONE DOT LEADER
		0x3002, // IDEOGRAPHIC FULL STOP
		0xFE52, // SMALL FULL STOP
		0xFF0E, // FULLWIDTH FULL STOP
		0x2044, // FRACTION SLASH
		0x2215, // DIVISION SLASH
		0xFF0F, // FULLWIDTH SOLIDUS
	},
}

// dangerousRunes is the union of all attack categories
var dangerousRunes = buildDangerousRuneSet()

func buildDangerousRuneSet() map[rune]struct{} {
	set := make(map[rune]struct{})
	for _, runes := range unicodeAttackCategories {
		for _, r := range runes {
			set[r] = struct{}{}
		}
	}
	return set
}

// UnicodeAttackCategory returns the category name for a dangerous rune,
// or empty string if the rune is not in the dangerous set
func UnicodeAttackCategory(r rune) string {
	for name, runes := range unicodeAttackCategories {
		for _, dangerous := range runes {
			if r == dangerous {
				return name
			}
		}
	}
	return ""
}

// dangerousRuneMatch records one dangerous character found in a filename
type dangerousRuneMatch struct {
	r        rune
	position int // rune position, not byte offset
}

func (m dangerousRuneMatch) String() string {
	return fmt.Sprintf("%q (U+%04X %s) at position %d", m.r, m.r, runenames.Name(m.r), m.position)
}

// findDangerousRunes scans every character of s against the dangerous set
func findDangerousRunes(s string) []dangerousRuneMatch {
	var matches []dangerousRuneMatch
	pos := 0
	for _, r := range s {
		if _, ok := dangerousRunes[r]; ok {
			matches = append(matches, dangerousRuneMatch{r: r, position: pos})
		}
		pos++
	}
	return matches
}

// ValidateUnicode checks a filename for dangerous Unicode code points and
// returns it in NFC form. The scan runs twice: once on the raw input and
// again after normalization, because canonical composition can itself
// produce code points a single-pass filter would miss.
func ValidateUnicode(filename string) (string, error) {
	if filename == "" {
		return filename, nil
	}

	if matches := findDangerousRunes(filename); len(matches) > 0 {
		return "", Errorf(KindUnicodeSecurity,
			"filename contains dangerous Unicode characters: %s", joinMatches(matches))
	}

	normalized := norm.NFC.String(filename)

	if matches := findDangerousRunes(normalized); len(matches) > 0 {
		return "", Errorf(KindUnicodeSecurity,
			"filename normalizes to dangerous Unicode characters: %s", joinMatches(matches))
	}

	return normalized, nil
}

func joinMatches(matches []dangerousRuneMatch) string {
	parts := make([]string, len(matches))
	for i, m := range matches {
		parts[i] = m.String()
	}
	return strings.Join(parts, ", ")
}
