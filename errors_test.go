package uploadkit

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError(KindExtensionBlocked, "dangerous file extension")

	if !IsValidationError(err) {
		t.Error("expected IsValidationError to be true")
	}
	if !IsKind(err, KindExtensionBlocked) {
		t.Error("expected IsKind to match")
	}
	if IsKind(err, KindZipBomb) {
		t.Error("expected IsKind to reject a different kind")
	}
	if got := err.Error(); got != "extension_blocked: dangerous file extension" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestValidationError_Findings(t *testing.T) {
	err := &ValidationError{
		Kind:     KindZipContentThreat,
		Message:  "2 threats detected in archive content",
		Findings: []string{"path traversal in entry \"../x\"", "symbolic link entry \"y\""},
	}

	if got := len(FindingsOf(err)); got != 2 {
		t.Errorf("expected 2 findings, got %d", got)
	}
	msg := err.Error()
	if msg != `zip_content_threat: 2 threats detected in archive content: path traversal in entry "../x"; symbolic link entry "y"` {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestValidationError_Wrapped(t *testing.T) {
	inner := Errorf(KindZipBomb, "ratio %d:1 exceeds limit", 1000)
	wrapped := fmt.Errorf("validating upload: %w", inner)

	if !IsValidationError(wrapped) {
		t.Error("expected errors.As to see through wrapping")
	}
	if KindOf(wrapped) != KindZipBomb {
		t.Errorf("expected kind zip_bomb, got %s", KindOf(wrapped))
	}
}

func TestKindOf_ForeignError(t *testing.T) {
	err := errors.New("plain error")
	if KindOf(err) != "" {
		t.Error("expected empty kind for non-validation errors")
	}
	if FindingsOf(err) != nil {
		t.Error("expected nil findings for non-validation errors")
	}
	if IsValidationError(err) {
		t.Error("expected IsValidationError to be false")
	}
}
