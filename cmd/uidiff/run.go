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

	"github.com/nao1215/uidiff/internal/config"
	"github.com/nao1215/uidiff/internal/database"
	"github.com/nao1215/uidiff/internal/gate"
	uilog "github.com/nao1215/uidiff/internal/log"
	"github.com/nao1215/uidiff/internal/pipeline"
	"github.com/nao1215/uidiff/internal/report"
	"github.com/spf13/cobra"
)

// ErrGateFailed is returned when a gate expression evaluated to true.
var ErrGateFailed = errors.New("gate failed")

// addEngineFlags registers the flags shared by every command that compares captures.
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .uidiff, XDG config or home directory)")
	cmd.Flags().Float64("min-confidence", 0,
		"Similarity a node pair must exceed to be matched (overrides config file)")
	cmd.Flags().Int("bounds-tolerance", 0,
		"Per-edge movement in pixels ignored as noise (overrides config file)")
	cmd.Flags().StringSlice("ignore", nil,
		"Additional attributes to treat as cosmetic")
	cmd.Flags().String("fail-if", "",
		`Gate expression, e.g. "score > 0.1 || removed > 0"; exits with status 2 when true`)
	cmd.Flags().Bool("save", false,
		"Store comparisons in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
	cmd.Flags().String("archive", "",
		"Copy both captures of every comparison, with screenshots, into this directory")
}

// addReportFlags registers the output format flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
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

// buildConfig creates a Config from cobra command flags.
// Flags a command does not define keep their defaults.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Inputs = args
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	flags := cmd.Flags()

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.Screens, err = loadScreens(cfg.ConfigFilePath); err != nil {
		return nil, err
	}

	if flags.Changed("min-confidence") {
		v, err := flags.GetFloat64("min-confidence")
		if err != nil {
			return nil, err
		}
		cfg.Overrides.MinConfidence = &v
	}
	if flags.Changed("bounds-tolerance") {
		v, err := flags.GetInt("bounds-tolerance")
		if err != nil {
			return nil, err
		}
		cfg.Overrides.BoundsTolerance = &v
	}
	if cfg.Overrides.ExtraCosmetic, err = flags.GetStringSlice("ignore"); err != nil {
		return nil, err
	}
	if cfg.FailIf, err = flags.GetString("fail-if"); err != nil {
		return nil, err
	}
	if cfg.SaveToDB, err = flags.GetBool("save"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.ArchiveDir, err = flags.GetString("archive"); err != nil {
		return nil, err
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	if flags.Lookup("label") != nil {
		if cfg.Label, err = flags.GetString("label"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("concurrency") != nil {
		if cfg.BatchSize, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("debounce") != nil {
		if cfg.Debounce, err = flags.GetDuration("debounce"); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// loadScreens loads the configuration file.
// If the user explicitly specified a path, a missing file is an error.
// Otherwise an empty configuration is used.
func loadScreens(path string) (*config.File, error) {
	found := config.FindConfigFile(path)
	if found == "" {
		if path != "" {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		return &config.File{Screens: make(map[string]config.ScreenConfig)}, nil
	}
	screens, err := config.LoadConfigFile(found)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
	}
	return screens, nil
}

// setupLogger creates a redacting logger that writes to the command's stderr.
// --log-json switches to JSON lines for log collectors.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	if asJSON, err := cmd.Flags().GetBool("log-json"); err == nil && asJSON {
		return uilog.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return uilog.NewSecureLogger(cmd.ErrOrStderr(), verbose)
}

// signalContext returns a context cancelled on interrupt or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// openStore opens the history database when saving is enabled.
// It returns nil when saving is disabled.
func openStore(cfg *config.Config, logger *slog.Logger) (*database.HistoryDB, error) {
	if !cfg.SaveToDB {
		return nil, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("database opened", "path", db.Path())
	return db, nil
}

// pipelineFactory returns a function creating comparison pipelines for cfg.
func pipelineFactory(cfg *config.Config, store *database.HistoryDB, logger *slog.Logger) func() *pipeline.Pipeline {
	resolver := cfg.Resolve()
	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithStepLogger(logger),
		pipeline.WithSharedGateCache(gate.NewCache()),
	}
	if cfg.ArchiveDir != "" {
		configOpts = append(configOpts, pipeline.WithArchive(cfg.ArchiveDir))
	}
	if store != nil {
		configOpts = append(configOpts, pipeline.WithStore(store))
	}
	return func() *pipeline.Pipeline {
		return pipeline.DefaultPipeline(resolver, []pipeline.Option{pipeline.WithLogger(logger)}, configOpts...)
	}
}

// newWriter returns the report writer selected by cfg.
func newWriter(cfg *config.Config, w io.Writer) report.Writer {
	return report.New(reportFormat(cfg.JSONReport, cfg.MarkdownReport), w, report.Options{Verbose: cfg.Verbose})
}

// reportFormat maps the --json and --markdown flags to a report format.
func reportFormat(asJSON, markdown bool) report.Format {
	switch {
	case asJSON:
		return report.FormatJSON
	case markdown:
		return report.FormatMarkdown
	default:
		return report.FormatText
	}
}

// withOutput calls fn with the report destination: the --output file,
// or the command's stdout.
func withOutput(cmd *cobra.Command, cfg *config.Config, fn func(w io.Writer) error) error {
	if cfg.ReportFile == "" {
		return fn(cmd.OutOrStdout())
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports may contain screen text, so only the owner can read them.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := fn(f); err != nil {
		_ = f.Close() //nolint:errcheck // the write error is more relevant
		return err
	}
	return f.Close()
}
