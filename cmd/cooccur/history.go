package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bluehealth/cooccur/internal/database"
	"github.com/bluehealth/cooccur/internal/report"
)

// defaultHistoryLimit is the number of runs listed without --limit.
const defaultHistoryLimit = 20

// errHistoryDisabled is returned when no database directory is configured.
var errHistoryDisabled = errors.New("history database directory is not set")

// NewHistoryCmd creates the history command.
// This command reads the collection and analysis runs stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [category]",
		Short: "Show past collection and analysis runs",
		Long: `History lists the collection and analysis runs recorded by 'collect' and
'analyze', newest first.

Every run is identified by an ID. The full report of an analysis can be
printed again with --show.

Examples:
  # Latest runs of every category
  cooccur history

  # All runs of one category
  cooccur history activities -n 0

  # Categories with recorded runs
  cooccur history --list-categories

  # Report of a past analysis as Markdown
  cooccur history --show 3f0c... -m`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .cooccur in current or home directory)")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	cmd.Flags().BoolP("list-categories", "L", false,
		"List every category with recorded runs")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs listed (0 for all)")
	cmd.Flags().String("show", "",
		"Print the report of the analysis with this ID")

	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the --show report in Markdown format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}
	if cfg.DBDir == "" {
		return errHistoryDisabled
	}

	listCategories, err := cmd.Flags().GetBool("list-categories")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	showID, err := cmd.Flags().GetString("show")
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch {
	case listCategories:
		return listHistoryCategories(ctx, out, db, cfg.JSONReport)
	case showID != "":
		return showAnalysis(ctx, out, db, showID, cfg.JSONReport, cfg.MarkdownReport)
	}

	var category string
	if len(args) > 0 {
		category = args[0]
		// Accept a configured label as well as the display name.
		if cats := cfg.SelectCategories(args); len(cats) == 1 {
			category = cats[0].DisplayName()
		}
	}
	return listRunHistory(ctx, out, db, category, limit, cfg.JSONReport)
}

// listHistoryCategories lists every category in the database.
func listHistoryCategories(ctx context.Context, out io.Writer, db *database.HistoryDB, asJSON bool) error {
	categories, err := db.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	if asJSON {
		if categories == nil {
			categories = []string{}
		}
		return writeJSON(out, categories)
	}

	if len(categories) == 0 {
		fmt.Fprintln(out, "No runs found in the database.")
		fmt.Fprintln(out, "\nUse 'cooccur collect' to collect counts.")
		return nil
	}

	fmt.Fprintf(out, "Categories (%d):\n\n", len(categories))
	for _, c := range categories {
		fmt.Fprintf(out, "  • %s\n", c)
	}
	fmt.Fprintln(out, "\nUse 'cooccur history <category>' to see the runs of a category.")

	return nil
}

// listRunHistory lists the runs of category, or of every category.
func listRunHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, category string, limit int, asJSON bool) error {
	records, err := db.ListRuns(ctx, category, limit)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if asJSON {
		if records == nil {
			records = []database.RunRecord{}
		}
		return writeJSON(out, records)
	}

	if len(records) == 0 {
		if category != "" {
			fmt.Fprintf(out, "No run history found for %s\n", category)
		} else {
			fmt.Fprintln(out, "No run history found.")
		}
		fmt.Fprintln(out, "\nUse 'cooccur collect' and 'cooccur analyze' to record runs.")
		return nil
	}

	title := "Run history"
	if category != "" {
		title += " for " + category
	}
	fmt.Fprintf(out, "%s (%d runs):\n\n", title, len(records))
	fmt.Fprintf(out, "  %-36s  %-19s  %-10s  %-30s  %-11s  %s\n",
		"ID", "Date", "Kind", "Category", "Shape", "Status")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 125))

	for _, rec := range records {
		fmt.Fprintf(out, "  %-36s  %-19s  %-10s  %-30s  %-11s  %s\n",
			rec.ID,
			rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
			rec.Kind,
			truncate(rec.Category, 30),
			fmt.Sprintf("%d x %d", rec.Rows, rec.Cols),
			formatRunStatus(rec),
		)
	}

	fmt.Fprintln(out, "\nUse 'cooccur history --show <id>' to print the report of an analysis.")

	return nil
}

// showAnalysis prints the stored report of one analysis.
func showAnalysis(ctx context.Context, out io.Writer, db *database.HistoryDB, id string, asJSON, asMarkdown bool) error {
	run, err := db.GetAnalysis(ctx, id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no analysis with ID %s", id)
	}

	var writer report.Writer
	switch {
	case asJSON:
		writer = report.NewJSONWriter(out, report.WithPrettyPrint())
	case asMarkdown:
		writer = report.NewMarkdownWriter(out)
	default:
		writer = report.NewSimpleWriter(out)
	}
	_, err = writer.Write(run)
	return err
}

// formatRunStatus renders the status column of a run record.
func formatRunStatus(rec database.RunRecord) string {
	if rec.Kind != database.KindAnalysis {
		return rec.Status
	}
	s := fmt.Sprintf("%s (%s, K=%d, dropped %d)", rec.Status, rec.Method, rec.TopK, rec.Dropped)
	if rec.Mode != "" && rec.Mode != "normal" {
		s += " [" + rec.Mode + "]"
	}
	if rec.Error != "" {
		s += ": " + rec.Error
	}
	return s
}

// writeJSON writes v as indented JSON.
func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// truncate shortens s to maxLen characters.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
