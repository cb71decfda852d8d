package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "uidiff"

	// DefaultBatchSize is the number of screens compared concurrently.
	// Comparisons are CPU bound, so a small value keeps CI runners responsive.
	DefaultBatchSize = 4

	// DefaultDebounce is the quiet period before watch mode compares a
	// changed capture. Capture tools often write a dump in several chunks.
	DefaultDebounce = 300 * time.Millisecond
)

// Config holds all configuration options of a CLI run.
// It is populated from CLI flags and passed through the application
// rather than kept in global state.
type Config struct {
	// Inputs are the positional arguments: two capture files for compare,
	// two directories for batch, or a baseline and a directory for watch.
	Inputs []string

	// Label names the compared screen. Empty means derive it from the
	// candidate file name.
	Label string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent comparisons in batch mode.
	BatchSize int

	// Debounce is the quiet period of watch mode.
	Debounce time.Duration

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .uidiff in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Screens holds the engine configuration loaded from the config file.
	// It is never nil after Resolve.
	Screens *File

	// Overrides are set from CLI flags and win over the config file.
	Overrides ScreenConfig

	// FailIf is a gate expression. When it evaluates to true the run
	// exits with a non-zero status.
	FailIf string

	// JSONReport enables the JSON wire format instead of human-readable output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown output for pull request comments.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory path for storing the SQLite history database.
	// Defaults to the XDG data directory (~/.local/share/uidiff on Linux).
	DBDir string

	// SaveToDB stores comparisons in the history database.
	SaveToDB bool

	// ArchiveDir, when set, receives a copy of both captures of every
	// comparison in the xmls/ and screenshots/ layout.
	ArchiveDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BatchSize: DefaultBatchSize,
		Debounce:  DefaultDebounce,
		DBDir:     XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for uidiff.
// On Linux: ~/.local/share/uidiff
// On macOS: ~/Library/Application Support/uidiff
// On Windows: %LOCALAPPDATA%\uidiff
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.Debounce < 0 {
		return ErrInvalidDebounce
	}
	return nil
}

// Resolve returns the engine configuration of the run: the config file,
// or an empty one, with the CLI overrides applied on top.
func (c *Config) Resolve() *File {
	f := c.Screens
	if f == nil {
		f = &File{}
	}
	overrides := c.Overrides
	if c.FailIf != "" {
		overrides.Gate = c.FailIf
	}
	merged := f.WithOverrides(overrides)
	if c.FailIf != "" {
		merged.Gate = c.FailIf
	}
	return merged
}
