package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/uidiff/internal/model"
)

// Writer renders comparisons.
type Writer interface {
	// Write outputs the result of one comparison.
	// Returns the number of bytes written and any error encountered.
	Write(c *model.Comparison) (int, error)

	// WriteBatch outputs an overview of several comparisons,
	// as produced by batch runs.
	WriteBatch(cs []*model.Comparison) (int, error)
}

// Format selects a report writer.
type Format string

const (
	// FormatText is the terminal report.
	FormatText Format = "text"
	// FormatJSON is the wire format report.
	FormatJSON Format = "json"
	// FormatMarkdown is the report for pull request comments.
	FormatMarkdown Format = "markdown"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat parses a format name. The empty string selects FormatText.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Options configure the writer returned by New.
type Options struct {
	// Verbose adds node details to text reports.
	Verbose bool

	// Version is embedded in full JSON reports. Full reports carry the
	// comparison metadata besides the wire format report.
	Version string

	// Full selects the full JSON report.
	Full bool
}

// New returns the writer for format. Unknown formats fall back to text.
func New(format Format, output io.Writer, opts Options) Writer {
	switch format {
	case FormatJSON:
		if opts.Full {
			return NewFullJSONWriter(output, opts.Version, WithPrettyPrint())
		}
		return NewJSONWriter(output, WithPrettyPrint())
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewSimpleWriter(output, WithVerbose(opts.Verbose))
	}
}

// baseWriter holds the destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
