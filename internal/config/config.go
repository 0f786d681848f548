package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/bluehealth/cooccur/internal/model"
	"github.com/bluehealth/cooccur/internal/score"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "cooccur"

	// DefaultTermsDir holds the term files, relative to the project root.
	DefaultTermsDir = "terms"

	// DefaultCountsDir receives new artifacts, relative to the project root.
	DefaultCountsDir = "counts"

	// DefaultFactorsFile defines dimension A.
	DefaultFactorsFile = "blue_health_factors.txt"

	// DefaultExclusionsFile holds one exclusion group per factor.
	DefaultExclusionsFile = "erps_exclude.txt"

	// DefaultLabelsFile holds one display label per factor.
	DefaultLabelsFile = "blue_health_factor_labels.txt"

	// DefaultAPIKeyFile is read from the project root. A missing file
	// means anonymous requests.
	DefaultAPIKeyFile = "api_key.txt"

	// DefaultDropCount is the requested number of low-frequency rows and
	// columns to remove. It is clamped to the matrix.
	DefaultDropCount = 100

	// DefaultTopK is the number of associations kept per anchor.
	DefaultTopK = 3

	// DefaultScoreMethod is the normalization applied before ranking.
	DefaultScoreMethod = score.MethodNormalize

	// DefaultSource is the E-utilities database.
	DefaultSource = "pubmed"

	// DefaultField restricts searches to title and abstract.
	DefaultField = "TIAB"

	// DefaultRetMax is the retrieval volume passed to the provider.
	DefaultRetMax = 10000

	// DefaultTimeout bounds every request to the evidence provider.
	// E-utilities counts usually answer within a few seconds; the margin
	// covers slow days without hanging a batch.
	DefaultTimeout = 60 * time.Second
)

// DefaultCategories returns the categories processed when none are configured.
func DefaultCategories() []model.Category {
	return []model.Category{
		{
			Name:       "activities",
			Label:      "blue_health_activities",
			ScoresFile: "blue_health_activity_scores.csv",
		},
		{
			Name:       "exposure_metrics",
			Label:      "blue_health_exposure_metrics",
			ScoresFile: "blue_health_exposure_scores.csv",
		},
	}
}

// Config holds all configuration options for cooccur.
// It is populated from defaults, the config file, the environment and CLI
// flags, in that order, and passed explicitly to every component.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The config file groups options for readability, but
// nothing downstream needs the grouping.
type Config struct {
	// ProjectRoot anchors every relative path below.
	ProjectRoot string

	// TermsDir holds the factor files and one "<label>.txt" per category.
	TermsDir string

	// CountsDir receives collected artifacts.
	CountsDir string

	// FactorsFile, ExclusionsFile and LabelsFile define dimension A.
	// Exclusions and labels are optional.
	FactorsFile    string
	ExclusionsFile string
	LabelsFile     string

	// Categories are processed in order.
	Categories []model.Category

	// DropCount is the requested number of rows and columns to drop.
	DropCount int

	// TopK is the number of associations per anchor.
	TopK int

	// ScoreMethod selects the normalization.
	ScoreMethod string

	// TestMode selects the built-in smoke dataset instead of term files.
	TestMode bool

	// Offline skips the evidence provider; every collection yields a
	// placeholder.
	Offline bool

	// Source is the E-utilities database searched.
	Source string

	// Field is the E-utilities search field. Empty searches all fields.
	Field string

	// RetMax is the retrieval volume passed to the provider.
	RetMax int

	// APIKeyFile is read when APIKey is empty.
	APIKeyFile string

	// APIKey is the NCBI API key. It is never logged.
	APIKey string

	// Timeout bounds every provider request.
	Timeout time.Duration

	// ProxyAddress routes provider requests through a SOCKS5 proxy
	// ("host:port"). Empty means a direct connection.
	ProxyAddress string

	// RateLimit caps provider requests per second. Zero selects the
	// E-utilities limit for the presence or absence of an API key.
	RateLimit float64

	// ExportDir receives summary/ and assocs/. Empty means next to each
	// artifact.
	ExportDir string

	// DBDir is the directory of the run history database.
	// Defaults to the XDG data directory (~/.local/share/cooccur on Linux).
	DBDir string

	// SaveToDB records every run in the history database.
	SaveToDB bool

	// Verbose enables Debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .cooccur is searched in the current and home directories.
	ConfigFilePath string

	// JSONReport and MarkdownReport select the analysis report format.
	// They are mutually exclusive; neither means plain text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the output file path for the report. Empty means stdout.
	ReportFile string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (drop count, top-K).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		ProjectRoot:    ".",
		TermsDir:       DefaultTermsDir,
		CountsDir:      DefaultCountsDir,
		FactorsFile:    DefaultFactorsFile,
		ExclusionsFile: DefaultExclusionsFile,
		LabelsFile:     DefaultLabelsFile,
		Categories:     DefaultCategories(),
		DropCount:      DefaultDropCount,
		TopK:           DefaultTopK,
		ScoreMethod:    DefaultScoreMethod,
		Source:         DefaultSource,
		Field:          DefaultField,
		RetMax:         DefaultRetMax,
		APIKeyFile:     DefaultAPIKeyFile,
		Timeout:        DefaultTimeout,
		DBDir:          XDGDataDir(),
		SaveToDB:       true,
	}
}

// XDGDataDir returns the XDG data directory for cooccur.
// On Linux: ~/.local/share/cooccur
// On macOS: ~/Library/Application Support/cooccur
// On Windows: %LOCALAPPDATA%\cooccur
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for cooccur.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Path resolves p against the project root. Absolute paths are returned
// unchanged.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectRoot, p)
}

// TermsPath returns the terms directory.
func (c *Config) TermsPath() string {
	return c.Path(c.TermsDir)
}

// CountsPath returns the artifact directory.
func (c *Config) CountsPath() string {
	return c.Path(c.CountsDir)
}

// TermFile returns the path of a file in the terms directory.
// An empty name stays empty so optional files can be switched off.
func (c *Config) TermFile(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.TermsPath(), name)
}

// ExportPath returns the export root, or "" to export next to each artifact.
func (c *Config) ExportPath() string {
	return c.Path(c.ExportDir)
}

// SelectCategories returns the configured categories whose name or label is
// in names, in configuration order. Unknown names are returned as
// ad-hoc categories labelled by the name itself. No names selects all.
func (c *Config) SelectCategories(names []string) []model.Category {
	if len(names) == 0 {
		return c.Categories
	}

	selected := make([]model.Category, 0, len(names))
	for _, name := range names {
		found := false
		for _, cat := range c.Categories {
			if cat.Name == name || cat.Label == name {
				selected = append(selected, cat)
				found = true
				break
			}
		}
		if !found {
			selected = append(selected, model.Category{Label: name})
		}
	}
	return selected
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// We return the first error found because fixing one error often makes
// others irrelevant.
func (c *Config) Validate() error {
	if len(c.Categories) == 0 {
		return ErrNoCategory
	}
	for _, cat := range c.Categories {
		if cat.Label == "" && cat.Artifact == "" {
			return ErrInvalidCategory
		}
	}

	if c.TopK <= 0 {
		return ErrInvalidTopK
	}

	// Drop counts above the matrix size are clamped later, not rejected.
	if c.DropCount < 0 {
		return ErrInvalidDropCount
	}

	if !score.IsMethod(c.ScoreMethod) {
		return ErrInvalidScoreMethod
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.RetMax <= 0 {
		return ErrInvalidRetMax
	}

	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
