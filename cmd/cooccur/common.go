package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bluehealth/cooccur/internal/config"
	"github.com/bluehealth/cooccur/internal/database"
	applog "github.com/bluehealth/cooccur/internal/log"
	"github.com/bluehealth/cooccur/internal/model"
)

// errCategoriesFailed is returned when at least one category of a batch failed.
// Every category is still attempted before it is returned.
var errCategoriesFailed = errors.New("one or more categories failed")

// addProjectFlags registers the flags shared by every command that reads
// the project layout.
func addProjectFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .cooccur in current or home directory)")
	cmd.Flags().StringP("root", "r", "",
		"Project root holding terms/ and counts/ (default: current directory)")
	cmd.Flags().String("counts-dir", config.DefaultCountsDir,
		"Artifact directory, relative to the project root")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
	cmd.Flags().Bool("no-history", false,
		"Do not record runs in the history database")
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// Log formats accepted by --log-format.
const (
	logFormatText = "text"
	logFormatJSON = "json"
)

// errInvalidLogFormat is returned for an unknown --log-format value.
var errInvalidLogFormat = errors.New("invalid log format: expected text or json")

// setupLogger creates a structured logger for cmd that never prints the
// API key. Logs go to the command's error stream.
func setupLogger(cmd *cobra.Command, verbose bool) (*slog.Logger, error) {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		format = logFormatText
	}

	w := cmd.ErrOrStderr()
	switch format {
	case logFormatText, "":
		return applog.NewSecureLogger(w, verbose), nil
	case logFormatJSON:
		return applog.NewSecureJSONLogger(w, verbose), nil
	default:
		return nil, fmt.Errorf("%w: %q", errInvalidLogFormat, format)
	}
}

// buildConfig creates a Config from defaults, the config file, the
// environment and the command's flags, in increasing precedence.
// Positional arguments select categories.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configPath

	// If the user explicitly specified a config file path, error if not found.
	// If no path is specified, silently keep the defaults.
	if found := config.FindConfigFile(configPath); found != "" {
		file, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		cfg.ApplyFile(file)
	} else if configPath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Categories = cfg.SelectCategories(args)
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// applyFlags copies every flag the user set onto cfg. Flags not
// registered on cmd are skipped, so all commands share this function.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	setString := func(name string, dst *string) error {
		if !flags.Changed(name) {
			return nil
		}
		v, err := flags.GetString(name)
		if err == nil {
			*dst = v
		}
		return err
	}
	setInt := func(name string, dst *int) error {
		if !flags.Changed(name) {
			return nil
		}
		v, err := flags.GetInt(name)
		if err == nil {
			*dst = v
		}
		return err
	}
	setBool := func(name string, dst *bool) error {
		if !flags.Changed(name) {
			return nil
		}
		v, err := flags.GetBool(name)
		if err == nil {
			*dst = v
		}
		return err
	}
	setDuration := func(name string, dst *time.Duration) error {
		if !flags.Changed(name) {
			return nil
		}
		v, err := flags.GetDuration(name)
		if err == nil {
			*dst = v
		}
		return err
	}
	setFloat := func(name string, dst *float64) error {
		if !flags.Changed(name) {
			return nil
		}
		v, err := flags.GetFloat64(name)
		if err == nil {
			*dst = v
		}
		return err
	}

	var noHistory bool
	setters := []func() error{
		func() error { return setString("root", &cfg.ProjectRoot) },
		func() error { return setString("terms-dir", &cfg.TermsDir) },
		func() error { return setString("counts-dir", &cfg.CountsDir) },
		func() error { return setString("db-dir", &cfg.DBDir) },
		func() error { return setString("api-key-file", &cfg.APIKeyFile) },
		func() error { return setString("source", &cfg.Source) },
		func() error { return setString("field", &cfg.Field) },
		func() error { return setString("proxy", &cfg.ProxyAddress) },
		func() error { return setString("method", &cfg.ScoreMethod) },
		func() error { return setString("export-dir", &cfg.ExportDir) },
		func() error { return setString("output", &cfg.ReportFile) },
		func() error { return setInt("retmax", &cfg.RetMax) },
		func() error { return setInt("drop", &cfg.DropCount) },
		func() error { return setInt("top-k", &cfg.TopK) },
		func() error { return setBool("test", &cfg.TestMode) },
		func() error { return setBool("offline", &cfg.Offline) },
		func() error { return setBool("json", &cfg.JSONReport) },
		func() error { return setBool("markdown", &cfg.MarkdownReport) },
		func() error { return setBool("no-history", &noHistory) },
		func() error { return setDuration("timeout", &cfg.Timeout) },
		func() error { return setFloat("rate-limit", &cfg.RateLimit) },
	}
	for _, set := range setters {
		if err := set(); err != nil {
			return err
		}
	}

	if noHistory {
		cfg.SaveToDB = false
	}
	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// openHistory opens the history database when enabled. A nil database
// with a nil error means history is disabled.
func openHistory(cfg *config.Config, logger *slog.Logger) (*database.HistoryDB, error) {
	if !cfg.SaveToDB || cfg.DBDir == "" {
		return nil, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("database opened", "path", db.Path())
	return db, nil
}

// openOutput returns the report destination: the report file when set,
// otherwise w. The returned close function is never nil.
func openOutput(cfg *config.Config, w io.Writer) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return w, func() error { return nil }, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// countFailed returns the number of failed runs.
func countFailed(runs []*model.CategoryRun) int {
	n := 0
	for _, run := range runs {
		if run.Failed() {
			n++
		}
	}
	return n
}
