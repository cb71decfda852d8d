package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/uidiff/internal/model"
)

// ErrNoReport is returned when writing a comparison that has not run.
var ErrNoReport = errors.New("comparison has no report")

// ErrInvalidReport is returned instead of output that would not match the
// wire format schema.
var ErrInvalidReport = errors.New("report does not match the wire format")

// JSONWriter outputs the diff report wire format, which is the contract
// consumed by CI tooling.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the diff report of the comparison. The report is checked
// against the wire format schema first and nothing is written when it fails.
func (w *JSONWriter) Write(c *model.Comparison) (int, error) {
	if c.Report == nil {
		return 0, ErrNoReport
	}
	if err := validateReport(c.Label, c.Report); err != nil {
		return 0, err
	}
	return w.writeJSON(c.Report)
}

// validateReport checks r against the wire format schema. A nil report is
// valid, batch output carries one for failed comparisons.
func validateReport(label string, r *model.DiffReport) error {
	if r == nil {
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if err := ValidateJSON(data); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidReport, label, err)
	}
	return nil
}

// BatchEntry is one element of the JSON batch output.
type BatchEntry struct {
	Label  string            `json:"label"`
	Report *model.DiffReport `json:"report"`
	Gate   *model.GateResult `json:"gate,omitempty"`
}

// WriteBatch outputs an array of labelled reports.
func (w *JSONWriter) WriteBatch(cs []*model.Comparison) (int, error) {
	entries := make([]BatchEntry, 0, len(cs))
	for _, c := range cs {
		if err := validateReport(c.Label, c.Report); err != nil {
			return 0, err
		}
		entries = append(entries, BatchEntry{Label: c.Label, Report: c.Report, Gate: c.Gate})
	}
	return w.writeJSON(entries)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps a comparison with tool metadata.
type JSONReport struct {
	// Version is the uidiff version that generated this report.
	Version string `json:"version"`

	// Comparison holds sources, fingerprints, gate outcome and the report.
	Comparison *model.Comparison `json:"comparison"`

	// Summary holds the per-type change counts for quick access.
	Summary model.ChangeSummary `json:"summary"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(c *model.Comparison, version string) *JSONReport {
	return &JSONReport{
		Version:    version,
		Comparison: c,
		Summary:    c.Summary(),
	}
}

// FullJSONWriter outputs comparisons with a metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the uidiff version string.
	version string
}

// NewFullJSONWriter creates a writer for complete comparisons with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the comparison wrapped with metadata. The embedded report
// is checked against the wire format schema.
func (w *FullJSONWriter) Write(c *model.Comparison) (int, error) {
	if err := validateReport(c.Label, c.Report); err != nil {
		return 0, err
	}
	return w.writeJSON(NewJSONReport(c, w.version))
}

// WriteBatch outputs all comparisons wrapped with metadata.
func (w *FullJSONWriter) WriteBatch(cs []*model.Comparison) (int, error) {
	wrapped := make([]*JSONReport, 0, len(cs))
	for _, c := range cs {
		if err := validateReport(c.Label, c.Report); err != nil {
			return 0, err
		}
		wrapped = append(wrapped, NewJSONReport(c, w.version))
	}
	return w.writeJSON(wrapped)
}
