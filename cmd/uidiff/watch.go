package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/uidiff/internal/config"
	"github.com/nao1215/uidiff/internal/hierarchy"
	"github.com/nao1215/uidiff/internal/model"
	"github.com/nao1215/uidiff/internal/pipeline"
	"github.com/nao1215/uidiff/internal/watch"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <base-dir> <candidate-dir>",
		Short: "Compare captures as they are written",
		Long: `Watch monitors the candidate directory and compares every capture that is
created or rewritten against the capture of the same name in the base
directory. A report is printed for each comparison.

Capture tools often write a dump in several chunks, so a file is compared
only after it has been quiet for the debounce period. Press Ctrl+C to stop.

Examples:
  # Compare screens while a UI test suite captures them
  uidiff watch baseline/ current/

  # Wait one second after the last write
  uidiff watch --debounce 1s baseline/ current/`,
		Args: cobra.ExactArgs(2),
		RunE: runWatchCmd,
	}

	cmd.Flags().Duration("debounce", config.DefaultDebounce,
		"Quiet period before a changed capture is compared")
	addEngineFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runWatchCmd executes the watch command.
func runWatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cfg.Verbose)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	wc := &watchComparer{
		baseDir:  pipeline.CaptureDir(args[0]),
		pipeline: pipelineFactory(cfg, store, logger),
		logger:   logger,
		write: func(c *model.Comparison) error {
			return withOutput(cmd, cfg, func(w io.Writer) error {
				_, err := newWriter(cfg, w).Write(c)
				return err
			})
		},
	}

	w, err := watch.New(pipeline.CaptureDir(args[1]), wc.handle,
		watch.WithDebounce(cfg.Debounce),
		watch.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (press Ctrl+C to stop)...\n", args[1])
	return w.Run(ctx)
}

// watchComparer compares a changed candidate capture with its baseline.
type watchComparer struct {
	baseDir  string
	pipeline func() *pipeline.Pipeline
	logger   *slog.Logger
	write    func(c *model.Comparison) error
}

// handle implements watch.Handler. Failures are logged so that watching continues.
func (wc *watchComparer) handle(ctx context.Context, path string) {
	c, err := wc.compare(ctx, path)
	if err != nil {
		wc.logger.Error("comparison failed", "path", path, "error", err)
		return
	}
	if c == nil {
		return
	}
	if err := wc.write(c); err != nil {
		wc.logger.Error("failed to write report", "screen", c.Label, "error", err)
	}
}

// compare runs the pipeline for path. It returns nil when the screen has
// no baseline.
func (wc *watchComparer) compare(ctx context.Context, path string) (*model.Comparison, error) {
	label := hierarchy.LabelFromPath(path)
	base := filepath.Join(wc.baseDir, label+filepath.Ext(path))
	if _, err := os.Stat(base); errors.Is(err, fs.ErrNotExist) {
		wc.logger.Warn("no baseline for screen", "screen", label, "expected", base)
		return nil, nil
	}

	c := model.NewComparison(label, base, path)
	if err := wc.pipeline().Execute(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
