package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/uidiff/internal/config"
	"github.com/nao1215/uidiff/internal/pipeline"
	"github.com/spf13/cobra"
)

//go:embed templates/uidiff.yaml
var configTemplate string

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a uidiff configuration file",
		Long: `Init writes a commented configuration file documenting every setting and
the gate expression variables.

With --screens-from, an empty entry is added under "screens" for every
capture found in the directory, ready for per-screen settings.

Examples:
  # Create .uidiff in the current directory
  uidiff init

  # Create the per-user configuration file (~/.config/uidiff/config.yaml)
  uidiff init --xdg

  # List the screens of a capture run in the file
  uidiff init --screens-from baseline/ -o ci/uidiff.yaml`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().Bool("xdg", false,
		"Write to the XDG config directory instead of --output")
	cmd.Flags().String("screens-from", "",
		"Capture directory whose screens are listed in the file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")
	cmd.MarkFlagsMutuallyExclusive("output", "xdg")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	outputPath, err := flags.GetString("output")
	if err != nil {
		return err
	}
	useXDG, err := flags.GetBool("xdg")
	if err != nil {
		return err
	}
	screensFrom, err := flags.GetString("screens-from")
	if err != nil {
		return err
	}
	force, err := flags.GetBool("force")
	if err != nil {
		return err
	}
	if useXDG {
		outputPath = config.XDGConfigFile()
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	content := configTemplate
	var labels []string
	if screensFrom != "" {
		if labels, err = pipeline.ListLabels(screensFrom); err != nil {
			return err
		}
		content = withScreens(content, labels)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	if screensFrom != "" {
		fmt.Fprintf(out, "Listed %d screen(s) from %s\n", len(labels), screensFrom)
	}
	fmt.Fprintln(out, "\nEdit this file to configure per-screen settings such as:")
	fmt.Fprintln(out, "  - Attributes to ignore")
	fmt.Fprintln(out, "  - Layout tolerance")
	fmt.Fprintln(out, "  - Gate expressions for CI")
	return nil
}

// withScreens appends an empty entry per label to the screens section,
// which ends the template.
func withScreens(template string, labels []string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(template, "\n"))
	sb.WriteString("\n")
	for _, label := range labels {
		fmt.Fprintf(&sb, "  %s: {}\n", strconv.Quote(label))
	}
	return sb.String()
}
