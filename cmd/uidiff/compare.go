package main

import (
	"fmt"
	"io"

	"github.com/nao1215/uidiff/internal/hierarchy"
	"github.com/nao1215/uidiff/internal/model"
	"github.com/spf13/cobra"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <base.xml> <candidate.xml>",
		Short: "Compare two UI hierarchy captures",
		Long: `Compare matches the views of two uiautomator captures of the same screen
and reports the differences between them.

Views are matched by resource-id, text, position and tree structure, so a
view that moved or lost its id is still recognized. The report lists
added and removed views, text changes, functional attribute changes and
bounds changes, and a score between 0 (identical) and 1 (unrelated).

Examples:
  # Compare two captures
  uidiff compare baseline/xmls/login.xml current/xmls/login.xml

  # Output the JSON report
  uidiff compare --json base.xml candidate.xml

  # Fail the CI job when anything was removed or the score is high
  uidiff compare --fail-if "removed > 0 || score > 0.2" base.xml candidate.xml

  # Ignore layout jitter up to 8 pixels and store the result
  uidiff compare --bounds-tolerance 8 --save base.xml candidate.xml

Configuration file (.uidiff) example:
  defaults:
    extra_cosmetic: [scrollable]
  screens:
    login:
      bounds_tolerance: 4
      gate: "text_changes > 0"`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().StringP("label", "l", "",
		"Screen label used for per-screen configuration (default: candidate file name)")
	addEngineFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
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

	label := cfg.Label
	if label == "" {
		label = hierarchy.LabelFromPath(args[1])
	}

	c := model.NewComparison(label, args[0], args[1])
	p := pipelineFactory(cfg, store, logger)()
	if err := p.Execute(ctx, c); err != nil {
		return fmt.Errorf("comparison of %s failed: %w", label, err)
	}

	err = withOutput(cmd, cfg, func(w io.Writer) error {
		_, err := newWriter(cfg, w).Write(c)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if c.GateFailed() {
		return fmt.Errorf("%w: %s", ErrGateFailed, c.Gate.Expression)
	}
	return nil
}
