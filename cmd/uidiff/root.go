package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for uidiff.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uidiff",
		Short: "Semantic diff of Android UI hierarchy captures",
		Long: `uidiff compares two captures of an Android screen (uiautomator XML dumps)
and reports what changed: added and removed views, text edits, functional
attribute changes and layout moves, together with a score in [0, 1].

Cosmetic attributes such as text color or alpha are ignored, and small
layout jitter is tolerated. A gate expression (--fail-if) turns the result
into a CI check.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs to stderr as JSON lines")

	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
// A failed gate exits with status 2 so CI can tell it apart from errors.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, ErrGateFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
