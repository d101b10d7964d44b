package uploadkit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/cespare/xxhash/v2"
)

// DigestAlgorithm identifies a content digest algorithm
type DigestAlgorithm string

const (
	DigestXXHash DigestAlgorithm = "xxhash"
	DigestSHA256 DigestAlgorithm = "sha256"
)

// NewDigester creates a new hash.Hash for the given algorithm
func NewDigester(algorithm DigestAlgorithm) (hash.Hash, error) {
	switch algorithm {
	case DigestXXHash:
		return xxhash.New(), nil
	case DigestSHA256:
		return sha256.New(), nil
	default:
		return nil, fmt.Errorf("unsupported digest algorithm: %s", algorithm)
	}
}

// Digest reads from the reader and returns the hex-encoded digest of its
// content. The facade attaches an xxhash digest to every accepted upload
// so callers can log and correlate uploads without re-reading them.
func Digest(r io.Reader, algorithm DigestAlgorithm) (string, error) {
	h, err := NewDigester(algorithm)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to calculate digest: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DigestBytes returns the hex-encoded digest of a byte slice
func DigestBytes(data []byte, algorithm DigestAlgorithm) (string, error) {
	h, err := NewDigester(algorithm)
	if err != nil {
		return "", err
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
