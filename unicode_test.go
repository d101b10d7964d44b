package uploadkit

import (
	"strings"
	"testing"

	"golang.org/x/text/unicode/norm"
)

func TestValidateUnicode(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{name: "empty is a no-op", input: "", wantError: false},
		{name: "plain ascii", input: "photo.jpg", wantError: false},
		{name: "safe accents", input: "résumé.pdf", wantError: false},
		{name: "cjk", input: "写真.png", wantError: false},
		{name: "right-to-left override", input: "photo\u202E.jpg", wantError: true},
		{name: "left-to-right embedding", input: "photo\u202A.jpg", wantError: true},
		{name: "zero width space", input: "pho\u200Bto.jpg", wantError: true},
		{name: "zero width joiner", input: "pho\u200Dto.jpg", wantError: true},
		{name: "byte order mark", input: "\uFEFFphoto.jpg", wantError: true},
		{name: "right-to-left mark", input: "photo\u200F.jpg", wantError: true},
		{name: "arabic letter mark", input: "photo\u061C.jpg", wantError: true},
		{name: "one dot leader", input: "photo\u2024jpg", wantError: true},
		{name: "fullwidth full stop", input: "photo\uFF0Ejpg", wantError: true},
		{name: "fraction slash", input: "photo\u2044jpg", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateUnicode(tt.input)

			if tt.wantError {
				if err == nil {
					t.Fatalf("expected rejection, got %q", got)
				}
				if KindOf(err) != KindUnicodeSecurity {
					t.Errorf("expected kind %s, got %s", KindUnicodeSecurity, KindOf(err))
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected rejection: %v", err)
			}
		})
	}
}

func TestValidateUnicode_NormalizesToNFC(t *testing.T) {
	// e + combining acute accent composes to é
	decomposed := "résumé.pdf"
	got, err := ValidateUnicode(decomposed)
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if got != norm.NFC.String(decomposed) {
		t.Errorf("expected NFC form, got %q", got)
	}

	// Re-normalizing a stable form produces no change
	again, err := ValidateUnicode(got)
	if err != nil {
		t.Fatalf("unexpected rejection on round-trip: %v", err)
	}
	if again != got {
		t.Errorf("NFC form not stable: %q != %q", again, got)
	}
}

func TestValidateUnicode_ListsEveryMatch(t *testing.T) {
	_, err := ValidateUnicode("a\u202Eb\u200Bc.jpg")
	if err == nil {
		t.Fatal("expected rejection")
	}
	msg := err.Error()
	for _, want := range []string{"U+202E", "U+200B", "position 1", "position 3"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected error to contain %q, got: %s", want, msg)
		}
	}
}

func TestUnicodeAttackCategory(t *testing.T) {
	tests := []struct {
		r    rune
		want string
	}{
		{0x202E, "bidi_override"},
		{0x200B, "zero_width"},
		{0x200F, "direction_mark"},
		{0xFF0E, "extension_disguise"},
		{'a', ""},
	}
	for _, tt := range tests {
		if got := UnicodeAttackCategory(tt.r); got != tt.want {
			t.Errorf("UnicodeAttackCategory(%U) = %q, want %q", tt.r, got, tt.want)
		}
	}
}
