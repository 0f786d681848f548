package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/bluehealth/cooccur/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors so the output can be piped to files or other tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections without data are shown.
	showEmpty bool

	// verbose adds the scores next to every association.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run in human-readable format.
func (w *SimpleWriter) Write(run *model.CategoryRun) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, run)
	w.writeStats(&sb, run.Stats)
	if run.Rankings != nil {
		w.writeRankings(&sb, "TOP ASSOCIATIONS PER FACTOR", run.Rankings.AToB)
		w.writeRankings(&sb, "TOP FACTORS PER TERM", run.Rankings.BToA)
	}
	w.writeExports(&sb, run.Exports)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// WriteSummary outputs one line per category.
func (w *SimpleWriter) WriteSummary(runs []*model.CategoryRun) (int, error) {
	var sb strings.Builder

	writeSection(&sb, "SUMMARY")
	for _, r := range runs {
		nA, nB := runShape(r)
		fmt.Fprintf(&sb, "  %-40s %-20s %4d x %-4d dropped %d\n",
			r.Category.DisplayName(), runStatus(r), nA, nB, r.Dropped)
		if r.Failed() {
			fmt.Fprintf(&sb, "    error: %s\n", r.ErrorMessage)
		}
	}
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, run *model.CategoryRun) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  CO-OCCURRENCE ANALYSIS: %s\n", run.Category.DisplayName())
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	nA, nB := runShape(run)
	fmt.Fprintf(sb, "Artifact:       %s\n", run.Category.ArtifactName())
	if run.ArtifactPath != "" {
		fmt.Fprintf(sb, "Artifact Path:  %s\n", run.ArtifactPath)
	}
	fmt.Fprintf(sb, "Shape:          %d x %d\n", nA, nB)
	fmt.Fprintf(sb, "Dropped:        %d\n", run.Dropped)
	if run.Scores != nil {
		fmt.Fprintf(sb, "Score Method:   %s\n", run.Scores.Method)
	}

	switch {
	case run.Failed():
		fmt.Fprintf(sb, "Status:         ERROR - %s\n", run.ErrorMessage)
	case run.Placeholder():
		sb.WriteString("Status:         OFFLINE PLACEHOLDER (not real evidence)\n")
		if msg := run.Counts.Metadata[model.MetaKeyError]; msg != "" {
			fmt.Fprintf(sb, "Collection Err: %s\n", msg)
		}
	default:
		sb.WriteString("Status:         Complete\n")
	}
	sb.WriteString("\n")
}

// writeStats writes the per-column summary statistics.
func (w *SimpleWriter) writeStats(sb *strings.Builder, stats []model.ColumnStats) {
	if len(stats) == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "SUMMARY STATISTICS")
	if len(stats) == 0 {
		sb.WriteString("  No statistics\n\n")
		return
	}

	fmt.Fprintf(sb, "  %-30s %5s %8s %8s %8s %8s %8s %8s %8s\n",
		"term", "count", "mean", "std", "min", "25%", "50%", "75%", "max")
	for _, s := range stats {
		fmt.Fprintf(sb, "  %-30s %5d %8.4f %8.4f %8.4f %8.4f %8.4f %8.4f %8.4f\n",
			truncateString(s.Label, 30), s.Count, s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max)
	}
	sb.WriteString("\n")
}

// writeRankings writes one direction of the rankings.
func (w *SimpleWriter) writeRankings(sb *strings.Builder, title string, lists []model.AssociationList) {
	if len(lists) == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, title)
	if len(lists) == 0 {
		sb.WriteString("  No associations\n\n")
		return
	}

	for _, l := range lists {
		fmt.Fprintf(sb, "  * %s\n", l.Anchor)
		for r, label := range l.Associated {
			if w.verbose {
				fmt.Fprintf(sb, "    %d. %s (%.4f)\n", r+1, label, l.Scores[r])
			} else {
				fmt.Fprintf(sb, "    %d. %s\n", r+1, label)
			}
		}
	}
	sb.WriteString("\n")
}

// writeExports lists the files written for the run.
func (w *SimpleWriter) writeExports(sb *strings.Builder, exports []string) {
	if len(exports) == 0 {
		return
	}
	writeSection(sb, "EXPORTED FILES")
	for _, e := range exports {
		fmt.Fprintf(sb, "  [+] %s\n", e)
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}
