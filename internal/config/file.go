package config

import (
	"time"

	"github.com/bluehealth/cooccur/internal/model"
)

// FactorFiles names the files of dimension A, relative to the terms directory.
type FactorFiles struct {
	Terms      string `yaml:"terms,omitempty"`
	Exclusions string `yaml:"exclusions,omitempty"`
	Labels     string `yaml:"labels,omitempty"`
}

// CollectSettings holds the collection options of the configuration file.
type CollectSettings struct {
	Source     string        `yaml:"source,omitempty"`
	Field      string        `yaml:"field,omitempty"`
	RetMax     int           `yaml:"retmax,omitempty"`
	APIKeyFile string        `yaml:"api_key_file,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	Proxy      string        `yaml:"proxy,omitempty"`
	RateLimit  float64       `yaml:"rate_limit,omitempty"`
	Offline    bool          `yaml:"offline,omitempty"`
}

// AnalyzeSettings holds the analysis options of the configuration file.
type AnalyzeSettings struct {
	// DropCount is a pointer so that an explicit 0 disables filtering.
	DropCount *int   `yaml:"drop,omitempty"`
	TopK      int    `yaml:"top_k,omitempty"`
	Method    string `yaml:"method,omitempty"`
	ExportDir string `yaml:"export_dir,omitempty"`
}

// File represents the structure of the .cooccur configuration file.
// Every field is optional; zero values keep the current setting.
type File struct {
	ProjectRoot string           `yaml:"project_root,omitempty"`
	TermsDir    string           `yaml:"terms_dir,omitempty"`
	CountsDir   string           `yaml:"counts_dir,omitempty"`
	Factors     FactorFiles      `yaml:"factors,omitempty"`
	Categories  []model.Category `yaml:"categories,omitempty"`
	Collect     CollectSettings  `yaml:"collect,omitempty"`
	Analyze     AnalyzeSettings  `yaml:"analyze,omitempty"`
	DBDir       string           `yaml:"db_dir,omitempty"`
}

// ApplyFile overrides c with every non-zero setting of f.
// A nil file leaves c unchanged.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}

	setString(&c.ProjectRoot, f.ProjectRoot)
	setString(&c.TermsDir, f.TermsDir)
	setString(&c.CountsDir, f.CountsDir)
	setString(&c.FactorsFile, f.Factors.Terms)
	setString(&c.ExclusionsFile, f.Factors.Exclusions)
	setString(&c.LabelsFile, f.Factors.Labels)
	setString(&c.DBDir, f.DBDir)

	if len(f.Categories) > 0 {
		c.Categories = f.Categories
	}

	setString(&c.Source, f.Collect.Source)
	setString(&c.Field, f.Collect.Field)
	setString(&c.APIKeyFile, f.Collect.APIKeyFile)
	setString(&c.ProxyAddress, f.Collect.Proxy)
	if f.Collect.RetMax != 0 {
		c.RetMax = f.Collect.RetMax
	}
	if f.Collect.Timeout != 0 {
		c.Timeout = f.Collect.Timeout
	}
	if f.Collect.RateLimit != 0 {
		c.RateLimit = f.Collect.RateLimit
	}
	if f.Collect.Offline {
		c.Offline = true
	}

	if f.Analyze.DropCount != nil {
		c.DropCount = *f.Analyze.DropCount
	}
	if f.Analyze.TopK != 0 {
		c.TopK = f.Analyze.TopK
	}
	setString(&c.ScoreMethod, f.Analyze.Method)
	setString(&c.ExportDir, f.Analyze.ExportDir)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
