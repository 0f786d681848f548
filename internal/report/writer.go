package report

import (
	"io"

	"github.com/bluehealth/cooccur/internal/model"
)

// Writer defines the interface for report output.
// Implementations write analysis results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or both with
// the same API.
type Writer interface {
	// Write outputs the report of one category run.
	// Returns the number of bytes written and any error encountered.
	Write(run *model.CategoryRun) (int, error)

	// WriteSummary outputs a one-line-per-category overview of a batch.
	WriteSummary(runs []*model.CategoryRun) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the run to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(run *model.CategoryRun) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(run)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSummary outputs the batch summary to all configured Writers.
func (m *MultiWriter) WriteSummary(runs []*model.CategoryRun) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummary(runs)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// runStatus is the one-word state of a run shared by all writers.
func runStatus(run *model.CategoryRun) string {
	switch {
	case run.Failed():
		return "failed"
	case run.Placeholder():
		return "offline placeholder"
	default:
		return "ok"
	}
}

// runShape returns the shape of the scored matrix, or of the counts when
// scoring did not happen.
func runShape(run *model.CategoryRun) (int, int) {
	if run.Scores != nil {
		return run.Scores.Shape()
	}
	if run.Counts != nil {
		return run.Counts.Shape()
	}
	return 0, 0
}
