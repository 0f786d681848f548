package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/bluehealth/cooccur/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides type-safe tables, lists and GitHub-flavored
// alerts.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run in Markdown format.
func (w *MarkdownWriter) Write(run *model.CategoryRun) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeAlert(md, run)

	if run.Rankings != nil {
		w.writeTopChart(md, run.Rankings)
		w.writeRankings(md, "Top associations per factor", run.Rankings.AToB)
		w.writeRankings(md, "Top factors per term", run.Rankings.BToA)
	}

	if len(run.Stats) > 0 {
		w.writeStats(md, run.Stats)
	}

	if len(run.Exports) > 0 {
		md.H2("Exported files")
		md.PlainText("")
		md.BulletList(run.Exports...)
		md.PlainText("")
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSummary outputs an overview table of a batch.
func (w *MarkdownWriter) WriteSummary(runs []*model.CategoryRun) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Co-occurrence Analysis Summary")
	md.PlainText("")

	rows := make([][]string, len(runs))
	failed := 0
	for i, r := range runs {
		nA, nB := runShape(r)
		rows[i] = []string{
			r.Category.DisplayName(),
			runStatus(r),
			fmt.Sprintf("%d x %d", nA, nB),
			strconv.Itoa(r.Dropped),
		}
		if r.Failed() {
			failed++
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Status", "Shape", "Dropped"},
		Rows:   rows,
	})
	md.PlainText("")

	if failed > 0 {
		md.Cautionf("%d of %d categories failed.", failed, len(runs))
		md.PlainText("")
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.CategoryRun) {
	md.H1("Co-occurrence Analysis: " + run.Category.DisplayName())
	md.PlainText("")

	nA, nB := runShape(run)
	rows := [][]string{
		{"Category", run.Category.DisplayName()},
		{"Artifact", "`" + run.Category.ArtifactName() + "`"},
		{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Shape", fmt.Sprintf("%d x %d", nA, nB)},
		{"Dropped", strconv.Itoa(run.Dropped)},
		{"Status", runStatus(run)},
	}
	if run.ArtifactPath != "" {
		rows = append(rows, []string{"Artifact path", "`" + run.ArtifactPath + "`"})
	}
	if run.Counts != nil {
		rows = append(rows, []string{"Source", run.Counts.Source})
		if !run.Counts.CollectedAt.IsZero() {
			rows = append(rows, []string{"Collected", run.Counts.CollectedAt.Format("2006-01-02 15:04:05 MST")})
		}
	}
	if run.Scores != nil {
		rows = append(rows, []string{"Score method", run.Scores.Method})
	}
	if run.Rankings != nil {
		rows = append(rows, []string{"Top K", strconv.Itoa(run.Rankings.K)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeAlert flags failed and placeholder runs.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, run *model.CategoryRun) {
	switch {
	case run.Failed():
		md.Cautionf("Analysis failed: %s", run.ErrorMessage)
	case run.Placeholder():
		md.Warningf("These results come from an offline placeholder matrix, not from real evidence. Collection error: %s",
			run.Counts.Metadata[model.MetaKeyError])
	default:
		md.Tip("Scores are backed by collected evidence.")
	}
	md.PlainText("")
}

// writeTopChart writes a mermaid pie chart of how often each B term is
// the strongest association of an A term.
func (w *MarkdownWriter) writeTopChart(md *markdown.Markdown, r *model.Rankings) {
	order := make([]string, 0)
	tally := make(map[string]uint64)
	for _, l := range r.AToB {
		if len(l.Associated) == 0 {
			continue
		}
		top := l.Associated[0]
		if _, seen := tally[top]; !seen {
			order = append(order, top)
		}
		tally[top]++
	}
	if len(order) == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Strongest association per factor"),
		piechart.WithShowData(true),
	)
	for _, label := range order {
		chart.LabelAndIntValue(label, tally[label])
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeRankings writes one direction of the rankings as a table.
func (w *MarkdownWriter) writeRankings(md *markdown.Markdown, title string, lists []model.AssociationList) {
	md.H2(title)
	md.PlainText("")

	if len(lists) == 0 {
		md.PlainText("No associations.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(lists))
	for i, l := range lists {
		cells := make([]string, len(l.Associated))
		for r, label := range l.Associated {
			cells[r] = fmt.Sprintf("%s (%.4f)", label, l.Scores[r])
		}
		rows[i] = []string{truncateString(l.Anchor, 60), strings.Join(cells, ", ")}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Anchor", "Associated (score)"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeStats writes the per-column summary statistics.
func (w *MarkdownWriter) writeStats(md *markdown.Markdown, stats []model.ColumnStats) {
	md.H2("Score statistics")
	md.PlainText("")

	rows := make([][]string, len(stats))
	for i, s := range stats {
		rows[i] = []string{
			truncateString(s.Label, 40),
			strconv.Itoa(s.Count),
			formatScore(s.Mean),
			formatScore(s.Std),
			formatScore(s.Min),
			formatScore(s.Q25),
			formatScore(s.Q50),
			formatScore(s.Q75),
			formatScore(s.Max),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Term", "count", "mean", "std", "min", "25%", "50%", "75%", "max"},
		Rows:   rows,
	})
	md.PlainText("")
	md.Details("About these numbers", "Each column describes the scores of one term against every factor after low-frequency filtering.")
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by cooccur*")
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
