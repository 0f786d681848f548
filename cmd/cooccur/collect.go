package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bluehealth/cooccur/internal/collect"
	"github.com/bluehealth/cooccur/internal/config"
	"github.com/bluehealth/cooccur/internal/eutils"
	"github.com/bluehealth/cooccur/internal/model"
	"github.com/bluehealth/cooccur/internal/pipeline"
	"github.com/bluehealth/cooccur/internal/provider"
	"github.com/bluehealth/cooccur/internal/report"
	"github.com/bluehealth/cooccur/internal/terms"
)

// NewCollectCmd creates the collect command.
func NewCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect [category...]",
		Short: "Collect co-occurrence counts from the literature",
		Long: `Collect queries the literature database for the hit counts of every
factor, every category term and every factor/term pair, and saves one
counts artifact per category under the counts directory.

Categories are selected by name or label. Without arguments every
configured category is collected. A label that is not configured is
collected as an ad-hoc category whose terms are read from <label>.txt.
The label "erp" pairs the factors with themselves.

When the database cannot be reached the artifact is an offline
placeholder of the right shape holding one constant count. It is
marked as such and still analyzable.

Examples:
  # Collect every configured category
  cooccur collect

  # Collect one category with an API key file
  cooccur collect activities --api-key-file ~/.ncbi_key

  # Smoke test with the built-in dataset, no network
  cooccur collect --test --offline`,
		RunE: runCollectCmd,
	}

	addProjectFlags(cmd)

	cmd.Flags().String("terms-dir", config.DefaultTermsDir,
		"Term file directory, relative to the project root")
	cmd.Flags().BoolP("test", "t", false,
		"Use the built-in smoke dataset instead of the term files")
	cmd.Flags().Bool("offline", false,
		"Do not contact the database; save offline placeholders")
	cmd.Flags().String("api-key-file", config.DefaultAPIKeyFile,
		"File holding the API key, relative to the project root")
	cmd.Flags().String("source", config.DefaultSource,
		"Literature database to query")
	cmd.Flags().String("field", config.DefaultField,
		"Search field tag applied to every term")
	cmd.Flags().Int("retmax", config.DefaultRetMax,
		"Maximum number of identifiers retrieved per query")
	cmd.Flags().Duration("timeout", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (host:port)")
	cmd.Flags().Float64("rate-limit", 0,
		"Requests per second (default: 3, or 10 with an API key)")

	return cmd
}

// runCollectCmd executes the collect command.
func runCollectCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := setupLogger(cmd, cfg.Verbose)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runCollect(ctx, cfg, cmd.OutOrStdout(), logger)
}

// runCollect collects every selected category and prints a summary to out.
func runCollect(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	factors, err := loadFactors(cfg, logger)
	if err != nil {
		return err
	}

	p, err := newProvider(cfg, logger)
	if err != nil {
		return err
	}

	orch := collect.NewOrchestrator(p,
		collect.WithSource(cfg.Source),
		collect.WithRetMax(cfg.RetMax),
		collect.WithLogger(logger),
	)

	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	pcfg := pipeline.CollectConfig{
		TermsDir:  cfg.TermsPath(),
		Smoke:     cfg.TestMode,
		CountsDir: cfg.CountsPath(),
		Logger:    logger,
	}
	if db != nil {
		defer db.Close()
		pcfg.History = db
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.CollectPipeline(orch, pcfg, pipeline.WithLogger(logger))
		},
		pipeline.WithFactors(&factors),
		pipeline.WithBatchLogger(logger),
	)

	runs, batchErr := bp.ProcessBatch(ctx, cfg.Categories)

	if _, err := report.NewSimpleWriter(out).WriteSummary(runs); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if batchErr != nil {
		return batchErr
	}
	if n := countFailed(runs); n > 0 {
		return fmt.Errorf("%w: %d of %d", errCategoriesFailed, n, len(runs))
	}
	return nil
}

// loadFactors returns dimension A: the smoke factors in test mode,
// otherwise the factor files of the terms directory.
func loadFactors(cfg *config.Config, logger *slog.Logger) (model.Dimension, error) {
	if cfg.TestMode {
		logger.Info("test mode, using the built-in smoke dataset")
		return collect.SmokeFactors(), nil
	}

	factors, err := collect.AssembleDimension(collect.DimensionFiles{
		Terms:      cfg.TermFile(cfg.FactorsFile),
		Exclusions: cfg.TermFile(cfg.ExclusionsFile),
		Labels:     cfg.TermFile(cfg.LabelsFile),
	}, logger)
	if err != nil {
		return model.Dimension{}, fmt.Errorf("failed to load factors: %w", err)
	}
	return factors, nil
}

// newProvider creates the counts provider for cfg.
func newProvider(cfg *config.Config, logger *slog.Logger) (provider.CountsProvider, error) {
	if cfg.Offline {
		logger.Info("offline mode, saving placeholders")
		return provider.OfflineProvider{}, nil
	}

	key, err := apiKey(cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := []eutils.Option{
		eutils.WithAPIKey(key),
		eutils.WithField(cfg.Field),
		eutils.WithLogger(logger),
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, eutils.WithRateLimit(cfg.RateLimit))
	}
	if cfg.ProxyAddress != "" {
		hc, err := eutils.NewProxyHTTPClient(cfg.ProxyAddress, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to configure proxy: %w", err)
		}
		opts = append(opts, eutils.WithHTTPClient(hc))
	}

	return eutils.NewClient(cfg.Timeout, opts...), nil
}

// apiKey returns the configured API key, reading the key file when no key
// was given directly. A missing key file means anonymous access.
func apiKey(cfg *config.Config, logger *slog.Logger) (string, error) {
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}
	if cfg.APIKeyFile == "" {
		return "", nil
	}

	path := cfg.Path(cfg.APIKeyFile)
	key, err := terms.LoadAPIKey(path)
	switch {
	case errors.Is(err, terms.ErrFileNotFound), errors.Is(err, terms.ErrNoTermsFound):
		logger.Warn("no API key, using the anonymous rate limit", "path", path, "error", err)
		return "", nil
	case err != nil:
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return key, nil
}
