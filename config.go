package uploadkit

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gobeaver/beaver-kit/config"
	"gopkg.in/yaml.v3"
)

// Config is the environment/file-facing configuration surface. It is
// loaded once at process start and converted into an immutable
// SecurityLimits value with Limits().
type Config struct {
	MaxImageSize          int64   `env:"UPLOADKIT_MAX_IMAGE_SIZE,default:10485760" yaml:"max_image_size"`
	MaxZipSize            int64   `env:"UPLOADKIT_MAX_ZIP_SIZE,default:104857600" yaml:"max_zip_size"`
	MaxCompressionRatio   int     `env:"UPLOADKIT_MAX_COMPRESSION_RATIO,default:100" yaml:"max_compression_ratio"`
	MaxUncompressedSize   int64   `env:"UPLOADKIT_MAX_UNCOMPRESSED_SIZE,default:524288000" yaml:"max_uncompressed_size"`
	MaxIndividualFileSize int64   `env:"UPLOADKIT_MAX_INDIVIDUAL_FILE_SIZE,default:104857600" yaml:"max_individual_file_size"`
	MaxZipEntries         int     `env:"UPLOADKIT_MAX_ZIP_ENTRIES,default:1000" yaml:"max_zip_entries"`
	ZipAnalysisTimeout    float64 `env:"UPLOADKIT_ZIP_ANALYSIS_TIMEOUT,default:30" yaml:"zip_analysis_timeout"` // seconds
	MaxZipDepth           int     `env:"UPLOADKIT_MAX_ZIP_DEPTH,default:10" yaml:"max_zip_depth"`
	MaxFilenameLength     int     `env:"UPLOADKIT_MAX_FILENAME_LENGTH,default:255" yaml:"max_filename_length"`
	MaxPathLength         int     `env:"UPLOADKIT_MAX_PATH_LENGTH,default:512" yaml:"max_path_length"`
	MaxSameExtensionCount int     `env:"UPLOADKIT_MAX_NUMBER_FILES_SAME_TYPE,default:200" yaml:"max_number_files_same_type"`

	AllowNestedArchives bool `env:"UPLOADKIT_ALLOW_NESTED_ARCHIVES,default:false" yaml:"allow_nested_archives"`
	AllowSymlinks       bool `env:"UPLOADKIT_ALLOW_SYMLINKS,default:false" yaml:"allow_symlinks"`
	AllowAbsolutePaths  bool `env:"UPLOADKIT_ALLOW_ABSOLUTE_PATHS,default:false" yaml:"allow_absolute_paths"`
	ScanZipContent      bool `env:"UPLOADKIT_SCAN_ZIP_CONTENT,default:true" yaml:"scan_zip_content"`

	// Comma-separated allowlists. Defaults are filled by applyDefaults
	// because comma-separated values cannot live inside an env tag.
	AllowedImageMIMETypes  string `env:"UPLOADKIT_ALLOWED_IMAGE_MIME_TYPES" yaml:"allowed_image_mime_types"`
	AllowedZipMIMETypes    string `env:"UPLOADKIT_ALLOWED_ZIP_MIME_TYPES" yaml:"allowed_zip_mime_types"`
	AllowedImageExtensions string `env:"UPLOADKIT_ALLOWED_IMAGE_EXTENSIONS" yaml:"allowed_image_extensions"`
	AllowedZipExtensions   string `env:"UPLOADKIT_ALLOWED_ZIP_EXTENSIONS" yaml:"allowed_zip_extensions"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadConfigFile loads config from a YAML file, filling unset fields with
// the same defaults the environment loader uses. The file is unmarshalled
// over a fully defaulted Config so omitted booleans keep their defaults
// (scan_zip_content defaults to true) while an explicit false still wins.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file: %w", err)
	}
	return cfg, nil
}

// defaultConfig returns a Config mirroring DefaultSecurityLimits
func defaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	d := DefaultSecurityLimits()
	cfg.AllowNestedArchives = d.AllowNestedArchives
	cfg.AllowSymlinks = d.AllowSymlinks
	cfg.AllowAbsolutePaths = d.AllowAbsolutePaths
	cfg.ScanZipContent = d.ScanZipContent
	return cfg
}

// applyDefaults fills zero-valued numeric and string fields. Booleans
// cannot be defaulted here (false is indistinguishable from unset); the
// env loader handles them through its default tags and the YAML loader
// through defaultConfig.
func (c *Config) applyDefaults() {
	d := DefaultSecurityLimits()
	if c.MaxImageSize == 0 {
		c.MaxImageSize = d.MaxImageSize
	}
	if c.MaxZipSize == 0 {
		c.MaxZipSize = d.MaxZipSize
	}
	if c.MaxCompressionRatio == 0 {
		c.MaxCompressionRatio = int(d.MaxCompressionRatio)
	}
	if c.MaxUncompressedSize == 0 {
		c.MaxUncompressedSize = d.MaxUncompressedSize
	}
	if c.MaxIndividualFileSize == 0 {
		c.MaxIndividualFileSize = d.MaxIndividualFileSize
	}
	if c.MaxZipEntries == 0 {
		c.MaxZipEntries = d.MaxZipEntries
	}
	if c.ZipAnalysisTimeout == 0 {
		c.ZipAnalysisTimeout = d.ZipAnalysisTimeout.Seconds()
	}
	if c.MaxZipDepth == 0 {
		c.MaxZipDepth = d.MaxZipDepth
	}
	if c.MaxFilenameLength == 0 {
		c.MaxFilenameLength = d.MaxFilenameLength
	}
	if c.MaxPathLength == 0 {
		c.MaxPathLength = d.MaxPathLength
	}
	if c.MaxSameExtensionCount == 0 {
		c.MaxSameExtensionCount = d.MaxSameExtensionCount
	}
	if c.AllowedImageMIMETypes == "" {
		c.AllowedImageMIMETypes = strings.Join(d.AllowedImageMIMETypes, ",")
	}
	if c.AllowedZipMIMETypes == "" {
		c.AllowedZipMIMETypes = strings.Join(d.AllowedZipMIMETypes, ",")
	}
	if c.AllowedImageExtensions == "" {
		c.AllowedImageExtensions = strings.Join(d.AllowedImageExtensions, ",")
	}
	if c.AllowedZipExtensions == "" {
		c.AllowedZipExtensions = strings.Join(d.AllowedZipExtensions, ",")
	}
}

// Limits converts the loaded configuration into an immutable SecurityLimits
func (c *Config) Limits() SecurityLimits {
	return SecurityLimits{
		MaxImageSize:          c.MaxImageSize,
		MaxZipSize:            c.MaxZipSize,
		MaxCompressionRatio:   float64(c.MaxCompressionRatio),
		MaxUncompressedSize:   c.MaxUncompressedSize,
		MaxIndividualFileSize: c.MaxIndividualFileSize,
		MaxZipEntries:         c.MaxZipEntries,
		ZipAnalysisTimeout:    time.Duration(c.ZipAnalysisTimeout * float64(time.Second)),
		MaxZipDepth:           c.MaxZipDepth,
		MaxFilenameLength:     c.MaxFilenameLength,
		MaxPathLength:         c.MaxPathLength,
		MaxSameExtensionCount: c.MaxSameExtensionCount,
		AllowNestedArchives:   c.AllowNestedArchives,
		AllowSymlinks:         c.AllowSymlinks,
		AllowAbsolutePaths:    c.AllowAbsolutePaths,
		ScanZipContent:        c.ScanZipContent,

		AllowedImageMIMETypes:  splitList(c.AllowedImageMIMETypes),
		AllowedZipMIMETypes:    splitList(c.AllowedZipMIMETypes),
		AllowedImageExtensions: splitList(c.AllowedImageExtensions),
		AllowedZipExtensions:   splitList(c.AllowedZipExtensions),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Severity classifies a configuration finding
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Finding is one structured result from a configuration invariant check
type Finding struct {
	Severity  Severity
	Component string
	Message   string
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Component, f.Message)
}

// limitChecks is the explicit list of named invariant checks run once at
// startup against the concrete limits. Each returns zero or more findings
// rather than raising, matching the collect-all-then-report behavior.
var limitChecks = []struct {
	name  string
	check func(SecurityLimits) []Finding
}{
	{"positive_limits", checkPositiveLimits},
	{"ratio_range", checkRatioRange},
	{"individual_vs_total", checkIndividualVsTotal},
	{"extension_conflicts", checkExtensionConflicts},
	{"allowlists", checkAllowlists},
}

// CheckLimits runs every invariant check and returns all findings
func CheckLimits(limits SecurityLimits) []Finding {
	var findings []Finding
	for _, c := range limitChecks {
		findings = append(findings, c.check(limits)...)
	}
	return findings
}

// ValidateLimits runs the invariant checks in strict mode: error-severity
// findings are aggregated into a single startup-blocking error. Warnings
// and infos are returned alongside for logging.
func ValidateLimits(limits SecurityLimits) ([]Finding, error) {
	findings := CheckLimits(limits)
	var errs []string
	for _, f := range findings {
		if f.Severity == SeverityError {
			errs = append(errs, f.String())
		}
	}
	if len(errs) > 0 {
		return findings, fmt.Errorf("invalid security limits: %s", strings.Join(errs, "; "))
	}
	return findings, nil
}

// ReportFindings logs findings at their mapped severity. Used in tolerant
// mode, where the service starts with a noted misconfiguration instead of
// refusing to boot.
func ReportFindings(logger *slog.Logger, findings []Finding) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			logger.Error("security limits misconfigured", "component", f.Component, "detail", f.Message)
		case SeverityWarning:
			logger.Warn("security limits questionable", "component", f.Component, "detail", f.Message)
		default:
			logger.Info("security limits note", "component", f.Component, "detail", f.Message)
		}
	}
}

func checkPositiveLimits(l SecurityLimits) []Finding {
	var findings []Finding
	numeric := []struct {
		name  string
		value int64
	}{
		{"max_image_size", l.MaxImageSize},
		{"max_zip_size", l.MaxZipSize},
		{"max_uncompressed_size", l.MaxUncompressedSize},
		{"max_individual_file_size", l.MaxIndividualFileSize},
		{"max_zip_entries", int64(l.MaxZipEntries)},
		{"max_zip_depth", int64(l.MaxZipDepth)},
		{"max_filename_length", int64(l.MaxFilenameLength)},
		{"max_path_length", int64(l.MaxPathLength)},
		{"max_number_files_same_type", int64(l.MaxSameExtensionCount)},
		{"zip_analysis_timeout", int64(l.ZipAnalysisTimeout)},
	}
	for _, n := range numeric {
		if n.value <= 0 {
			findings = append(findings, Finding{
				Severity:  SeverityError,
				Component: n.name,
				Message:   "must be greater than zero",
			})
		}
	}
	if l.MaxCompressionRatio <= 0 {
		findings = append(findings, Finding{
			Severity:  SeverityError,
			Component: "max_compression_ratio",
			Message:   "must be greater than zero",
		})
	}
	return findings
}

func checkRatioRange(l SecurityLimits) []Finding {
	if l.MaxCompressionRatio <= 0 {
		return nil // already an error finding
	}
	if l.MaxCompressionRatio < 10 || l.MaxCompressionRatio > 1000 {
		return []Finding{{
			Severity:  SeverityWarning,
			Component: "max_compression_ratio",
			Message:   fmt.Sprintf("%.0f is outside the recommended range [10, 1000]", l.MaxCompressionRatio),
		}}
	}
	return nil
}

func checkIndividualVsTotal(l SecurityLimits) []Finding {
	if l.MaxIndividualFileSize > l.MaxUncompressedSize {
		return []Finding{{
			Severity:  SeverityError,
			Component: "max_individual_file_size",
			Message: fmt.Sprintf("%d exceeds max_uncompressed_size %d",
				l.MaxIndividualFileSize, l.MaxUncompressedSize),
		}}
	}
	return nil
}

func checkExtensionConflicts(SecurityLimits) []Finding {
	var findings []Finding
	for _, ext := range extensionConflicts() {
		findings = append(findings, Finding{
			Severity:  SeverityError,
			Component: "extension_taxonomy",
			Message:   fmt.Sprintf("%q appears in both the compound and single blocked sets", ext),
		})
	}
	return findings
}

func checkAllowlists(l SecurityLimits) []Finding {
	var findings []Finding
	lists := []struct {
		name   string
		values []string
	}{
		{"allowed_image_mime_types", l.AllowedImageMIMETypes},
		{"allowed_zip_mime_types", l.AllowedZipMIMETypes},
		{"allowed_image_extensions", l.AllowedImageExtensions},
		{"allowed_zip_extensions", l.AllowedZipExtensions},
	}
	for _, list := range lists {
		if len(list.values) == 0 {
			findings = append(findings, Finding{
				Severity:  SeverityWarning,
				Component: list.name,
				Message:   "allowlist is empty; every upload of this kind will be rejected",
			})
		}
	}
	for _, ext := range l.AllowedImageExtensions {
		if _, blocked := blockedExtensions[strings.ToLower(ext)]; blocked {
			findings = append(findings, Finding{
				Severity:  SeverityError,
				Component: "allowed_image_extensions",
				Message:   fmt.Sprintf("%q is both allowed and blocked", ext),
			})
		}
	}
	for _, ext := range l.AllowedZipExtensions {
		if _, blocked := blockedExtensions[strings.ToLower(ext)]; blocked {
			findings = append(findings, Finding{
				Severity:  SeverityError,
				Component: "allowed_zip_extensions",
				Message:   fmt.Sprintf("%q is both allowed and blocked", ext),
			})
		}
	}
	return findings
}
