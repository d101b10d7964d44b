// Package uploadkit provides layered security validation for untrusted file
// uploads (profile images and ZIP archives) before they touch storage.
//
// The pipeline combines filename sanitization (Unicode attack detection,
// Windows reserved names, blocked single and compound extensions), MIME and
// magic-byte signature verification, and deep ZIP inspection: zip-bomb
// detection via compression-ratio analysis, path traversal, symlinks,
// nested archives, and embedded executable or script content. Every check
// is bounded in time and memory, even against pathological archives.
//
// # Quick Start
//
//	validator := uploadkit.NewDefault()
//
//	report, err := validator.ValidateImageFile(ctx, file, "photo.jpg")
//	if err != nil {
//	    // err is a *ValidationError with a typed rejection kind
//	}
//	// report.SanitizedName is the safe name to persist under
//
// Using the builder API:
//
//	validator := uploadkit.NewBuilder().
//	    MaxImageSize(5 * uploadkit.MB).
//	    MaxCompressionRatio(50).
//	    AnalysisTimeout(5 * time.Second).
//	    Build()
//
// # Error Handling
//
// Rejections carry a kind for programmatic handling and a human-readable
// message safe to surface to the uploader:
//
//	_, err := validator.ValidateZipFile(ctx, file, name)
//	switch {
//	case uploadkit.IsKind(err, uploadkit.KindZipBomb):
//	    // suspicious compression ratio or expansion size
//	case uploadkit.IsKind(err, uploadkit.KindZipContentThreat):
//	    // uploadkit.FindingsOf(err) lists every threat found
//	}
//
// # Configuration
//
// Limits load from the environment (beaver-kit config tags) or a YAML
// file, are validated once at startup, and are immutable afterwards:
//
//	cfg, _ := uploadkit.GetConfig()
//	limits := cfg.Limits()
//	if findings, err := uploadkit.ValidateLimits(limits); err != nil {
//	    uploadkit.ReportFindings(slog.Default(), findings)
//	    log.Fatal(err)
//	}
//	validator := uploadkit.New(limits)
//
// Validators hold no mutable state, so a single instance serves concurrent
// upload requests without locking. Validation results are never cached;
// every call reprocesses its bytes.
package uploadkit
