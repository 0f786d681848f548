package model

import "strings"

// NoSecondaryLabel is the sentinel category label meaning "no secondary
// dimension". Collections for it pair dimension A with itself.
const NoSecondaryLabel = "erp"

// ArtifactPrefix is prepended to a category label to form its artifact name.
const ArtifactPrefix = "counts_"

// Category is a named secondary dimension paired with the base artifact name
// used for storage lookup.
type Category struct {
	// Name is the short category name used for export sub-directories,
	// e.g. "activities".
	Name string `json:"name" yaml:"name"`

	// Label selects the term file (<label>.txt) and, unless Artifact is set,
	// the artifact name (counts_<label>).
	Label string `json:"label" yaml:"label"`

	// Artifact overrides the base artifact name.
	Artifact string `json:"artifact,omitempty" yaml:"artifact,omitempty"`

	// ScoresFile overrides the exported scores CSV file name.
	ScoresFile string `json:"scores_file,omitempty" yaml:"scores_file,omitempty"`
}

// ArtifactName returns the base name under which the category's counts
// artifact is persisted.
func (c Category) ArtifactName() string {
	if c.Artifact != "" {
		return c.Artifact
	}
	return ArtifactPrefix + c.Label
}

// TermsFile returns the file name holding the category's secondary terms.
func (c Category) TermsFile() string {
	return c.Label + ".txt"
}

// ScoresFileName returns the exported scores CSV file name.
func (c Category) ScoresFileName() string {
	if c.ScoresFile != "" {
		return c.ScoresFile
	}
	name := c.Name
	if name == "" {
		name = strings.TrimPrefix(c.ArtifactName(), ArtifactPrefix)
	}
	return name + "_scores.csv"
}

// HasSecondary reports whether the category carries its own dimension B.
func (c Category) HasSecondary() bool {
	return c.Label != NoSecondaryLabel
}

// DisplayName returns Name, or Label when Name is empty.
func (c Category) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Label
}
