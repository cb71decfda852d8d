package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/uidiff/internal/config"
	"github.com/nao1215/uidiff/internal/database"
	"github.com/nao1215/uidiff/internal/model"
	"github.com/nao1215/uidiff/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command reads comparisons stored with --save.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored comparison results",
		Long: `History lists and displays comparisons stored in the database by
'uidiff compare --save' and 'uidiff batch --save'.

Examples:
  # List all screens with stored comparisons
  uidiff history --list-labels

  # List the comparisons of a screen, newest first
  uidiff history --label login

  # Show the latest comparison of a screen
  uidiff history --label login --latest

  # Show a stored comparison as JSON
  uidiff history --show 6f1c1b0e-0c1d-4a5e-9d52-4bb9d1c1b7a3 --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-labels", "L", false,
		"List all screens in the database")
	cmd.Flags().StringP("label", "l", "",
		"Only list comparisons of this screen")
	cmd.Flags().StringP("show", "s", "",
		"Show the comparison with this ID")
	cmd.Flags().Bool("latest", false,
		"Show the latest comparison of the screen given by --label")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparisons in Markdown format")

	return cmd
}

// historyOptions holds the parsed flags of the history command.
type historyOptions struct {
	listLabels bool
	label      string
	show       string
	latest     bool
	dbDir      string
	json       bool
	markdown   bool
}

// parseHistoryOptions reads and validates the history flags.
func parseHistoryOptions(cmd *cobra.Command) (*historyOptions, error) {
	var (
		opts historyOptions
		err  error
	)
	flags := cmd.Flags()
	if opts.listLabels, err = flags.GetBool("list-labels"); err != nil {
		return nil, err
	}
	if opts.label, err = flags.GetString("label"); err != nil {
		return nil, err
	}
	if opts.show, err = flags.GetString("show"); err != nil {
		return nil, err
	}
	if opts.latest, err = flags.GetBool("latest"); err != nil {
		return nil, err
	}
	if opts.dbDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if opts.json, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if opts.markdown, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}

	if opts.json && opts.markdown {
		return nil, config.ErrConflictingReportFormats
	}
	if opts.latest && opts.label == "" {
		return nil, errors.New("--latest requires --label")
	}
	return &opts, nil
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	// Validate flags before opening the database.
	opts, err := parseHistoryOptions(cmd)
	if err != nil {
		return err
	}

	db, err := database.Open(opts.dbDir, database.DefaultOptions())
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
	case opts.listLabels:
		return listLabels(ctx, out, db, opts)
	case opts.show != "":
		c, err := db.GetComparison(ctx, opts.show)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("no comparison with ID %s", opts.show)
		}
		return showComparison(out, c, opts)
	case opts.latest:
		c, err := db.LatestComparison(ctx, opts.label)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("no comparison stored for screen %s", opts.label)
		}
		return showComparison(out, c, opts)
	default:
		return listHistory(ctx, out, db, opts)
	}
}

// listLabels lists all screens that have comparisons in the database.
func listLabels(ctx context.Context, out io.Writer, db *database.HistoryDB, opts *historyOptions) error {
	labels, err := db.ListLabels(ctx)
	if err != nil {
		return err
	}

	if opts.json {
		if labels == nil {
			labels = []string{}
		}
		return writeJSON(out, labels)
	}

	if len(labels) == 0 {
		fmt.Fprintln(out, "No comparisons found in the database.")
		fmt.Fprintln(out, "\nUse 'uidiff compare --save' to store comparison results.")
		return nil
	}

	fmt.Fprintf(out, "Screens (%d):\n\n", len(labels))
	for _, label := range labels {
		fmt.Fprintf(out, "  • %s\n", label)
	}
	fmt.Fprintln(out, "\nUse 'uidiff history --label <screen>' to see the comparisons of a screen.")
	return nil
}

// listHistory lists stored comparisons, newest first.
func listHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, opts *historyOptions) error {
	history, err := db.ListComparisons(ctx, opts.label)
	if err != nil {
		return err
	}

	if opts.json {
		if history == nil {
			history = []database.ComparisonMetadata{}
		}
		return writeJSON(out, history)
	}

	if len(history) == 0 {
		if opts.label != "" {
			fmt.Fprintf(out, "No comparisons found for %s\n", opts.label)
		} else {
			fmt.Fprintln(out, "No comparisons found in the database.")
		}
		return nil
	}

	fmt.Fprintf(out, "Comparison history (%d):\n\n", len(history))
	fmt.Fprintf(out, "  %-36s  %-20s  %-20s  %7s  %s\n", "ID", "Date", "Screen", "Score", "Changes")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 110))
	for _, meta := range history {
		gate := ""
		if meta.GateFailed {
			gate = "  [gate failed]"
		}
		fmt.Fprintf(out, "  %-36s  %-20s  %-20s  %7.4f  %s%s\n",
			meta.ID,
			meta.Timestamp.Local().Format("2006-01-02 15:04:05"),
			meta.Label,
			meta.Score,
			formatCounts(meta.Counts),
			gate,
		)
	}
	fmt.Fprintln(out, "\nUse 'uidiff history --show <id>' to display a comparison.")
	return nil
}

// formatCounts formats change counts into a compact string.
func formatCounts(s model.ChangeSummary) string {
	var parts []string
	if s.Added > 0 {
		parts = append(parts, fmt.Sprintf("+%d", s.Added))
	}
	if s.Removed > 0 {
		parts = append(parts, fmt.Sprintf("-%d", s.Removed))
	}
	if s.TextChanges > 0 {
		parts = append(parts, fmt.Sprintf("T:%d", s.TextChanges))
	}
	if s.AttributeChanges > 0 {
		parts = append(parts, fmt.Sprintf("A:%d", s.AttributeChanges))
	}
	if s.BoundsChanges > 0 {
		parts = append(parts, fmt.Sprintf("B:%d", s.BoundsChanges))
	}
	if len(parts) == 0 {
		return "identical"
	}
	return strings.Join(parts, " ")
}

// showComparison writes one stored comparison in the selected format.
func showComparison(out io.Writer, c *model.Comparison, opts *historyOptions) error {
	w := report.New(reportFormat(opts.json, opts.markdown), out, report.Options{
		Version: getVersion(),
		Full:    true,
	})
	_, err := w.Write(c)
	return err
}

func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
