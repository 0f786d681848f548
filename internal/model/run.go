package model

import "time"

// CategoryRun carries the state of one category through a pipeline.
// Each step reads what earlier steps produced and fills in its own part.
//
// Design decision: Like a scan report, a single struct is passed to every
// step rather than threading return values. This keeps the Step interface
// uniform and lets a failed run still be reported with whatever it collected.
type CategoryRun struct {
	// Category is the category being processed.
	Category Category `json:"category"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// A is the shared, read-only primary dimension.
	A *Dimension `json:"-"`

	// B is the category's secondary dimension. Nil for the sentinel category.
	B *Dimension `json:"-"`

	// Counts is the collected or loaded counts matrix.
	Counts *CountsMatrix `json:"-"`

	// ArtifactPath is where Counts was saved to or loaded from.
	ArtifactPath string `json:"artifact_path,omitempty"`

	// Dropped is the number of rows and columns removed by filtering.
	Dropped int `json:"dropped"`

	// Scores is the normalized score matrix.
	Scores *ScoreMatrix `json:"scores,omitempty"`

	// Rankings holds the top-K associations in both directions.
	Rankings *Rankings `json:"rankings,omitempty"`

	// Stats summarizes every score column.
	Stats []ColumnStats `json:"stats,omitempty"`

	// Exports lists the files written by the export step.
	Exports []string `json:"exports,omitempty"`

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string `json:"performed_steps"`

	// Error is the error that stopped the run, if any.
	Error error `json:"-"`

	// ErrorMessage is Error as text for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewCategoryRun creates a run for a category sharing dimension A.
func NewCategoryRun(category Category, a *Dimension) *CategoryRun {
	return &CategoryRun{
		Category:       category,
		StartedAt:      time.Now(),
		A:              a,
		PerformedSteps: make([]string, 0),
	}
}

// Failed reports whether the run stopped on an error.
func (r *CategoryRun) Failed() bool {
	return r.Error != nil
}

// Placeholder reports whether the run's counts are an offline placeholder.
func (r *CategoryRun) Placeholder() bool {
	return r.Counts != nil && r.Counts.IsPlaceholder()
}
