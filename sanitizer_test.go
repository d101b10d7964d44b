package uploadkit

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		wantKind RejectionKind
	}{
		{
			name:     "empty filename",
			input:    "",
			wantKind: KindFilenameEmpty,
		},
		{
			name:  "plain name unchanged",
			input: "photo.jpg",
			want:  "photo.jpg",
		},
		{
			name:  "path components stripped",
			input: "../../uploads/photo.jpg",
			want:  "photo.jpg",
		},
		{
			name:  "windows path components stripped",
			input: "C:\\Users\\me\\photo.jpg",
			want:  "photo.jpg",
		},
		{
			name:  "backslash path stripped",
			input: "..\\..\\secrets\\photo.jpg",
			want:  "photo.jpg",
		},
		{
			name:  "control characters stripped",
			input: "pho\x01to\x1f.jpg",
			want:  "photo.jpg",
		},
		{
			name:  "unsafe characters replaced",
			input: "a<b>c|d?e.jpg",
			want:  "a_b_c_d_e.jpg",
		},
		{
			name:     "reserved device name",
			input:    "CON.jpg",
			wantKind: KindWindowsReservedName,
		},
		{
			name:     "reserved name behind compound extension",
			input:    "CON.tar.gz",
			wantKind: KindWindowsReservedName,
		},
		{
			name:     "blocked extension",
			input:    "invoice.pdf.exe",
			wantKind: KindExtensionBlocked,
		},
		{
			name:     "blocked extension before allowed suffix",
			input:    "archive.exe.zip",
			wantKind: KindExtensionBlocked,
		},
		{
			name:     "compound extension",
			input:    "evil.tar.gz",
			wantKind: KindCompoundExtensionBlocked,
		},
		{
			name:     "bidi override character",
			input:    "résumé\u202E.pdf",
			wantKind: KindUnicodeSecurity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFilename(tt.input)

			if tt.wantKind != "" {
				if err == nil {
					t.Fatalf("expected rejection %s, got %q", tt.wantKind, got)
				}
				if KindOf(err) != tt.wantKind {
					t.Errorf("expected kind %s, got %s (%v)", tt.wantKind, KindOf(err), err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected rejection: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSanitizeFilename_Idempotent(t *testing.T) {
	inputs := []string{
		"photo.jpg",
		"../../uploads/photo.jpg",
		"a<b>c.png",
		"pho\x01to.jpg",
		"résumé.pdf", // decomposed accents normalize to NFC
		strings.Repeat("x", 300) + ".jpg",
	}

	for _, input := range inputs {
		first, err := SanitizeFilename(input)
		if err != nil {
			t.Fatalf("SanitizeFilename(%q) rejected: %v", input, err)
		}
		second, err := SanitizeFilename(first)
		if err != nil {
			t.Fatalf("re-sanitizing %q rejected: %v", first, err)
		}
		if first != second {
			t.Errorf("sanitization not idempotent for %q: %q != %q", input, first, second)
		}
	}
}

func TestSanitizeFilename_StemTruncation(t *testing.T) {
	long := strings.Repeat("a", 250) + ".jpg"
	got, err := SanitizeFilename(long)
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if got != strings.Repeat("a", 100)+".jpg" {
		t.Errorf("expected stem truncated to 100 runes, got %d bytes", len(got))
	}
}

func TestSanitizeFilename_EmptyStemFallback(t *testing.T) {
	// Whitespace-only stem: a unique name is synthesized, keeping the
	// extension.
	got, err := SanitizeFilename("   .jpg")
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	if !strings.HasPrefix(got, "upload_") || !strings.HasSuffix(got, ".jpg") {
		t.Errorf("expected synthesized upload_*.jpg name, got %q", got)
	}
}

func TestSanitizeFilename_UnicodeErrorDetail(t *testing.T) {
	_, err := SanitizeFilename("résumé\u202E.pdf")
	if err == nil {
		t.Fatal("expected rejection")
	}
	msg := err.Error()
	for _, want := range []string{"U+202E", "RIGHT-TO-LEFT OVERRIDE", "position 6"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected error to contain %q, got: %s", want, msg)
		}
	}
}
