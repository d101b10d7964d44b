package uploadkit

import "time"

// Report describes an accepted upload. It is only produced on success;
// rejections are returned as a *ValidationError instead.
type Report struct {
	// SanitizedName is the safe filename the caller should persist under.
	// It may differ from the declared filename.
	SanitizedName string

	// Size is the upload size in bytes
	Size int64

	// DetectedMIME is the MIME type detected from content
	DetectedMIME string

	// Digest is the hex-encoded xxhash digest of the content, for caller
	// side logging and correlation
	Digest string

	// Duration is how long validation took
	Duration time.Duration
}
