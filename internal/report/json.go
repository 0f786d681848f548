package report

import (
	"encoding/json"
	"io"

	"github.com/bluehealth/cooccur/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run in JSON format.
func (w *JSONWriter) Write(run *model.CategoryRun) (int, error) {
	return w.writeJSON(newRunRecord(run))
}

// WriteSummary outputs all runs as a JSON array.
func (w *JSONWriter) WriteSummary(runs []*model.CategoryRun) (int, error) {
	records := make([]runRecord, len(runs))
	for i, r := range runs {
		records[i] = newRunRecord(r)
	}
	return w.writeJSON(records)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// runRecord is the JSON shape of a run. It adds the derived fields that
// model.CategoryRun keeps out of its own encoding.
type runRecord struct {
	*model.CategoryRun

	// Status is "ok", "failed" or "offline placeholder".
	Status string `json:"status"`

	// Mode is the collection mode of the counts.
	Mode string `json:"mode,omitempty"`

	// Metadata is the collection metadata of the counts.
	Metadata model.CollectionMetadata `json:"metadata,omitempty"`

	// Rows and Cols are the shape of the scored matrix.
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

func newRunRecord(run *model.CategoryRun) runRecord {
	rec := runRecord{CategoryRun: run, Status: runStatus(run)}
	rec.Rows, rec.Cols = runShape(run)
	if run.Counts != nil {
		rec.Mode = run.Counts.Mode().String()
		rec.Metadata = run.Counts.Metadata
	}
	return rec
}

// JSONReport wraps a batch of runs with version information.
type JSONReport struct {
	// Version is the cooccur version that generated this report.
	Version string `json:"version"`

	// Runs holds one record per category.
	Runs []runRecord `json:"runs"`
}

// FullJSONWriter outputs complete reports with a metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the cooccur version string.
	version string
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs a single run wrapped with metadata.
func (w *FullJSONWriter) Write(run *model.CategoryRun) (int, error) {
	return w.WriteSummary([]*model.CategoryRun{run})
}

// WriteSummary outputs all runs wrapped with metadata.
func (w *FullJSONWriter) WriteSummary(runs []*model.CategoryRun) (int, error) {
	wrapped := JSONReport{Version: w.version, Runs: make([]runRecord, len(runs))}
	for i, r := range runs {
		wrapped.Runs[i] = newRunRecord(r)
	}
	return w.writeJSON(wrapped)
}
