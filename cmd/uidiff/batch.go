package main

import (
	"fmt"
	"io"
	"time"

	"github.com/nao1215/uidiff/internal/config"
	"github.com/nao1215/uidiff/internal/model"
	"github.com/nao1215/uidiff/internal/pipeline"
	"github.com/nao1215/uidiff/internal/report"
	"github.com/spf13/cobra"
)

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <base-dir> <candidate-dir>",
		Short: "Compare every screen captured in two directories",
		Long: `Batch pairs the captures of two directories by file name and compares
each pair concurrently.

A directory may hold the *.xml captures directly or use the capture layout
with xmls/ and screenshots/ subdirectories. Screens captured in only one
directory are reported as warnings. The label of each screen is its file
name without extension, which selects its entry in the configuration file.

Examples:
  # Compare two capture runs
  uidiff batch baseline/ current/

  # Compare eight screens at a time and post the result to a pull request
  uidiff batch -b 8 --markdown -o report.md baseline/ current/

  # Fail when any screen lost a view
  uidiff batch --fail-if "removed > 0" baseline/ current/`,
		Args: cobra.ExactArgs(2),
		RunE: runBatchCmd,
	}

	cmd.Flags().IntP("concurrency", "b", config.DefaultBatchSize,
		"Number of concurrent comparisons")
	addEngineFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runBatchCmd executes the batch command.
func runBatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cfg.Verbose)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	pairing, err := pipeline.PairDirectories(args[0], args[1])
	if err != nil {
		return err
	}
	for _, label := range pairing.BaseOnly {
		logger.Warn("screen missing from candidate captures", "screen", label)
	}
	for _, label := range pairing.CandidateOnly {
		logger.Warn("screen missing from base captures", "screen", label)
	}
	if len(pairing.Pairs) == 0 {
		return fmt.Errorf("no screens captured in both %s and %s", args[0], args[1])
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	bp := pipeline.NewBatchProcessor(
		pipelineFactory(cfg, store, logger),
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	startTime := time.Now()
	results, err := bp.ProcessBatch(ctx, pairing.Pairs)
	if err != nil {
		return fmt.Errorf("batch cancelled: %w", err)
	}
	logger.Info("batch completed", "screens", len(results), "elapsed", time.Since(startTime))

	err = withOutput(cmd, cfg, func(w io.Writer) error {
		return writeBatch(cfg, newWriter(cfg, w), results)
	})
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return batchOutcome(results)
}

// writeBatch writes every successful comparison followed by the overview.
// JSON output only carries the overview, which embeds each report.
func writeBatch(cfg *config.Config, w report.Writer, results []*model.Comparison) error {
	if !cfg.JSONReport {
		for _, c := range results {
			if c.Failed() {
				continue
			}
			if _, err := w.Write(c); err != nil {
				return err
			}
		}
	}
	_, err := w.WriteBatch(results)
	return err
}

// batchOutcome turns the results into the command's exit error.
// Errors take precedence over gate failures.
func batchOutcome(results []*model.Comparison) error {
	var failed, gated []string
	for _, c := range results {
		switch {
		case c.Failed():
			failed = append(failed, fmt.Sprintf("%s: %s", c.Label, c.ErrorMessage))
		case c.GateFailed():
			gated = append(gated, c.Label)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d comparisons failed: %v", len(failed), len(results), failed)
	}
	if len(gated) > 0 {
		return fmt.Errorf("%w for %d screen(s): %v", ErrGateFailed, len(gated), gated)
	}
	return nil
}
