package uploadkit

import (
	"bytes"
	"testing"
)

func TestDigestBytes(t *testing.T) {
	data := []byte("hello upload")

	xx, err := DigestBytes(data, DigestXXHash)
	if err != nil {
		t.Fatalf("xxhash digest: %v", err)
	}
	if len(xx) != 16 { // 64-bit hash, hex encoded
		t.Errorf("expected 16 hex characters, got %d: %s", len(xx), xx)
	}

	sha, err := DigestBytes(data, DigestSHA256)
	if err != nil {
		t.Fatalf("sha256 digest: %v", err)
	}
	if len(sha) != 64 {
		t.Errorf("expected 64 hex characters, got %d: %s", len(sha), sha)
	}

	// Deterministic
	again, _ := DigestBytes(data, DigestXXHash)
	if again != xx {
		t.Errorf("digest not deterministic: %s != %s", again, xx)
	}
}

func TestDigest_MatchesBytes(t *testing.T) {
	data := []byte("stream and slice must agree")

	fromStream, err := Digest(bytes.NewReader(data), DigestXXHash)
	if err != nil {
		t.Fatal(err)
	}
	fromBytes, err := DigestBytes(data, DigestXXHash)
	if err != nil {
		t.Fatal(err)
	}
	if fromStream != fromBytes {
		t.Errorf("stream digest %s != bytes digest %s", fromStream, fromBytes)
	}
}

func TestNewDigester_Unsupported(t *testing.T) {
	if _, err := NewDigester("md5"); err == nil {
		t.Error("expected an error for an unsupported algorithm")
	}
}
