package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/bluehealth/cooccur/internal/artifact"
	"github.com/bluehealth/cooccur/internal/config"
	"github.com/bluehealth/cooccur/internal/model"
	"github.com/bluehealth/cooccur/internal/pipeline"
	"github.com/bluehealth/cooccur/internal/report"
	"github.com/bluehealth/cooccur/internal/score"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [category...]",
		Short: "Rank associations from collected counts",
		Long: `Analyze loads the counts artifact of every selected category, drops the
least frequent factors and terms, scores each pair and reports the top
associations in both directions.

For each category the following files are exported next to the
artifact (or under --export-dir):
  summary/<category>/<scores file>    the full score matrix (CSV)
  summary/<category>/<factor>.json    the top terms of each factor
  assocs/<category>/associations.json the top factors of each term

Offline placeholders are analyzed like any other artifact and flagged
in the report.

Examples:
  # Analyze every configured category
  cooccur analyze

  # Keep the 5 best associations and drop nothing
  cooccur analyze activities -k 5 -d 0

  # Markdown report to a file, no exports
  cooccur analyze --no-export -m -o report.md`,
		RunE: runAnalyzeCmd,
	}

	addProjectFlags(cmd)

	cmd.Flags().IntP("drop", "d", config.DefaultDropCount,
		"Number of least frequent rows and columns to drop")
	cmd.Flags().IntP("top-k", "k", config.DefaultTopK,
		"Number of associations kept per factor and per term")
	cmd.Flags().String("method", config.DefaultScoreMethod,
		fmt.Sprintf("Score method (%s, %s)", score.MethodNormalize, score.MethodAssociation))
	cmd.Flags().String("export-dir", "",
		"Export root (default: next to each artifact)")
	cmd.Flags().Bool("no-export", false,
		"Do not write the CSV and JSON exports")

	cmd.Flags().BoolP("json", "j", false,
		"Output report in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output report in Markdown format")
	cmd.Flags().StringP("output", "o", "",
		"Output file path for the report (default: stdout)")
	cmd.Flags().Bool("tee", false,
		"With --output, also print the text report to stdout")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	noExport, err := cmd.Flags().GetBool("no-export")
	if err != nil {
		return err
	}
	tee, err := cmd.Flags().GetBool("tee")
	if err != nil {
		return err
	}

	logger, err := setupLogger(cmd, cfg.Verbose)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	opts := analyzeOptions{export: !noExport, tee: tee && cfg.ReportFile != ""}
	return runAnalyze(ctx, cfg, opts, cmd.OutOrStdout(), logger)
}

// analyzeOptions holds the analyze flags that are not part of the config.
type analyzeOptions struct {
	// export enables the CSV and JSON exports.
	export bool

	// tee copies the report to the terminal when it goes to a file.
	tee bool
}

// runAnalyze analyzes every selected category and writes the report.
func runAnalyze(ctx context.Context, cfg *config.Config, opts analyzeOptions, out io.Writer, logger *slog.Logger) error {
	resolver := newResolver(cfg, logger)

	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	pcfg := pipeline.AnalyzeConfig{
		DropCount: cfg.DropCount,
		Method:    cfg.ScoreMethod,
		TopK:      cfg.TopK,
		ExportDir: cfg.ExportPath(),
		Export:    opts.export,
		Logger:    logger,
	}
	if db != nil {
		defer db.Close()
		pcfg.History = db
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.AnalyzePipeline(resolver, pcfg, pipeline.WithLogger(logger))
		},
		pipeline.WithBatchLogger(logger),
	)

	runs, batchErr := bp.ProcessBatch(ctx, cfg.Categories)

	if err := outputReport(cfg, runs, out, opts.tee); err != nil {
		return err
	}

	if batchErr != nil {
		return batchErr
	}
	if n := countFailed(runs); n > 0 {
		return fmt.Errorf("%w: %d of %d", errCategoriesFailed, n, len(runs))
	}
	return nil
}

// newResolver creates the artifact resolver for cfg. The configured counts
// directory is searched first, then the standard locations.
func newResolver(cfg *config.Config, logger *slog.Logger) *artifact.Resolver {
	candidates := []string{cfg.CountsDir}
	for _, dir := range artifact.DefaultCandidates {
		if filepath.Clean(dir) != filepath.Clean(cfg.CountsDir) && !slices.Contains(candidates, dir) {
			candidates = append(candidates, dir)
		}
	}
	return artifact.NewResolver(cfg.ProjectRoot,
		artifact.WithCandidates(candidates...),
		artifact.WithResolverLogger(logger),
	)
}

// outputReport writes the analysis report in the requested format. With
// tee the text report is also written to w.
func outputReport(cfg *config.Config, runs []*model.CategoryRun, w io.Writer, tee bool) error {
	output, closeOutput, err := openOutput(cfg, w)
	if err != nil {
		return err
	}
	defer closeOutput()

	var writers []report.Writer
	switch {
	case cfg.JSONReport:
		// JSON output holds every run in one document.
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		if _, err := writer.WriteSummary(runs); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	case cfg.MarkdownReport:
		writers = append(writers, report.NewMarkdownWriter(output))
	default:
		writers = append(writers, report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose)))
	}
	if tee {
		writers = append(writers, report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose)))
	}

	writer := report.NewMultiWriter(writers...)
	for _, run := range runs {
		if _, err := writer.Write(run); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	if _, err := writer.WriteSummary(runs); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
