package uploadkit

import (
	"testing"
	"time"
)

func TestBuilder(t *testing.T) {
	validator := NewBuilder().
		MaxImageSize(2 * MB).
		MaxZipSize(50 * MB).
		MaxCompressionRatio(20).
		MaxZipEntries(100).
		AnalysisTimeout(10 * time.Second).
		AllowNestedArchives().
		WithoutContentScan().
		ImageTypes("image/png").
		ImageExtensions(".png").
		Build()

	limits := validator.Limits()
	if limits.MaxImageSize != 2*MB {
		t.Errorf("expected 2MB image limit, got %d", limits.MaxImageSize)
	}
	if limits.MaxCompressionRatio != 20 {
		t.Errorf("expected ratio 20, got %f", limits.MaxCompressionRatio)
	}
	if !limits.AllowNestedArchives {
		t.Error("expected nested archives allowed")
	}
	if limits.ScanZipContent {
		t.Error("expected content scan disabled")
	}
	if len(limits.AllowedImageMIMETypes) != 1 || limits.AllowedImageMIMETypes[0] != "image/png" {
		t.Errorf("expected png-only mime list, got %v", limits.AllowedImageMIMETypes)
	}

	// Untouched fields keep their defaults
	if limits.MaxZipDepth != DefaultSecurityLimits().MaxZipDepth {
		t.Errorf("expected default zip depth, got %d", limits.MaxZipDepth)
	}
}

func TestStrictPreset(t *testing.T) {
	limits := Strict().Build().Limits()
	defaults := DefaultSecurityLimits()

	if limits.MaxImageSize >= defaults.MaxImageSize {
		t.Error("strict image limit should be below the default")
	}
	if limits.MaxCompressionRatio >= defaults.MaxCompressionRatio {
		t.Error("strict ratio should be below the default")
	}
	if limits.ZipAnalysisTimeout >= defaults.ZipAnalysisTimeout {
		t.Error("strict analysis budget should be below the default")
	}
}
