package uploadkit

import (
	"bytes"
	"testing"
)

func TestDetectMIMEFromBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "jpeg", data: []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, want: "image/jpeg"},
		{name: "png", data: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, want: "image/png"},
		{name: "gif87a", data: []byte("GIF87a...."), want: "image/gif"},
		{name: "gif89a", data: []byte("GIF89a...."), want: "image/gif"},
		{name: "zip local header", data: []byte("PK\x03\x04rest"), want: "application/zip"},
		{name: "empty zip", data: []byte("PK\x05\x06rest"), want: "application/zip"},
		{name: "gzip", data: []byte{0x1F, 0x8B, 0x08}, want: "application/gzip"},
		{name: "7z", data: []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C, 0x00}, want: "application/x-7z-compressed"},
		{name: "pe executable", data: []byte("MZ\x90\x00"), want: "application/x-msdownload"},
		{name: "elf executable", data: []byte{0x7F, 'E', 'L', 'F', 0x02}, want: "application/x-executable"},
		{name: "plain text falls back to sniffing", data: []byte("hello world"), want: "text/plain"},
		{name: "empty data", data: nil, want: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectMIMEFromBytes(tt.data); got != tt.want {
				t.Errorf("DetectMIMEFromBytes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectMIME_Reader(t *testing.T) {
	got, err := DetectMIME(bytes.NewReader([]byte{0xFF, 0xD8, 0xFF, 0xDB}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", got)
	}
}

func TestHasImageSignature(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{name: "jpeg jfif", data: []byte{0xFF, 0xD8, 0xFF, 0xE0}, want: true},
		{name: "jpeg exif", data: []byte{0xFF, 0xD8, 0xFF, 0xE1}, want: true},
		{name: "png", data: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, want: true},
		{name: "truncated png", data: []byte{0x89, 0x50, 0x4E}, want: false},
		{name: "text", data: []byte("GIF89a"), want: false},
		{name: "empty", data: nil, want: false},
	}
	for _, tt := range tests {
		if got := HasImageSignature(tt.data); got != tt.want {
			t.Errorf("HasImageSignature(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHasZipSignature(t *testing.T) {
	tests := []struct {
		data []byte
		want bool
	}{
		{[]byte("PK\x03\x04"), true},
		{[]byte("PK\x05\x06"), true},
		{[]byte("PK\x07\x08"), true},
		{[]byte("PK\x01\x02"), false}, // central directory record, not a file start
		{[]byte("ZM"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := HasZipSignature(tt.data); got != tt.want {
			t.Errorf("HasZipSignature(%q) = %v, want %v", tt.data, got, tt.want)
		}
	}
}

func TestDetectExecutableSignature(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "pe", data: []byte("MZ\x90\x00"), want: "Windows PE executable"},
		{name: "elf", data: []byte{0x7F, 'E', 'L', 'F'}, want: "ELF executable"},
		{name: "macho 64", data: []byte{0xCF, 0xFA, 0xED, 0xFE}, want: "Mach-O executable (64-bit)"},
		{name: "java class", data: []byte{0xCA, 0xFE, 0xBA, 0xBE}, want: "Java class or Mach-O universal binary"},
		{name: "shortcut", data: []byte{0x4C, 0x00, 0x00, 0x00, 0x01, 0x14, 0x02, 0x00}, want: "Windows shortcut"},
		{name: "text", data: []byte("hello"), want: ""},
		{name: "empty", data: nil, want: ""},
	}
	for _, tt := range tests {
		if got := DetectExecutableSignature(tt.data); got != tt.want {
			t.Errorf("DetectExecutableSignature(%s) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
