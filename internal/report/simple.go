package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/uidiff/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether change types with no records are listed
	// in the summary.
	showEmpty bool

	// verbose adds node summaries of added and removed regions.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one comparison in human-readable format.
func (w *SimpleWriter) Write(c *model.Comparison) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, c)
	if c.Report != nil {
		w.writeSummary(&sb, c.Report)
		w.writeChanges(&sb, c.Report)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteBatch outputs one line per comparison followed by totals.
func (w *SimpleWriter) WriteBatch(cs []*model.Comparison) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%-30s %8s %8s  %s\n", "SCREEN", "SCORE", "CHANGES", "GATE"))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	failed := 0
	for _, c := range cs {
		gate := "-"
		if c.Gate != nil {
			gate = "pass"
			if c.Gate.Failed {
				gate = "FAIL"
				failed++
			}
		}
		changes := "-"
		if c.Report != nil {
			changes = fmt.Sprintf("%d", len(c.Report.Changes))
		}
		sb.WriteString(fmt.Sprintf("%-30s %8s %8s  %s\n",
			truncateString(c.Label, 30), formatScore(c.Report), changes, gate))
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%d screen(s) compared, %d gate failure(s)\n", len(cs), failed))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with comparison information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, c *model.Comparison) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          UIDIFF REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Screen:    %s\n", c.Label))
	sb.WriteString(fmt.Sprintf("Base:      %s\n", c.BaseSource))
	sb.WriteString(fmt.Sprintf("Candidate: %s\n", c.CandidateSource))
	sb.WriteString(fmt.Sprintf("Compared:  %s\n", c.ComparedAt.Format(timeLayout)))
	if c.Report != nil {
		sb.WriteString(fmt.Sprintf("Nodes:     %d -> %d\n", c.Report.BaseNodes, c.Report.CandidateNodes))
		sb.WriteString(fmt.Sprintf("Score:     %s\n", formatScore(c.Report)))
	}
	if c.Gate != nil {
		sb.WriteString(fmt.Sprintf("Gate:      %s\n", gateStatus(c)))
	}
	sb.WriteString("\n")
}

// writeSummary writes the per-type summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, r *model.DiffReport) {
	if r.Identical() && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	s := r.Summary()
	for _, t := range model.ChangeTypes() {
		n := s.Count(t)
		if n == 0 && !w.showEmpty {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-20s %d\n", changeTitle(t)+":", n))
	}
	sb.WriteString(fmt.Sprintf("\n  %-20s %d\n\n", "Total:", s.Total()))
}

// writeChanges writes the ordered change list.
func (w *SimpleWriter) writeChanges(sb *strings.Builder, r *model.DiffReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CHANGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if r.Identical() {
		sb.WriteString("  " + noDifferences + "\n\n")
		return
	}

	for _, c := range r.Changes {
		sb.WriteString(fmt.Sprintf("[%s] %s %s\n", indicator(c.Type.Severity()), c.Type, c.Path))
		sb.WriteString(fmt.Sprintf("    %s\n", describe(c)))
		if w.verbose && c.Node != nil {
			w.writeNodeTree(sb, c.Node, 2)
		}
	}
	sb.WriteString("\n")
}

// writeNodeTree writes an indented outline of a node summary.
func (w *SimpleWriter) writeNodeTree(sb *strings.Builder, n *model.NodeSummary, depth int) {
	for _, child := range n.Children {
		sb.WriteString(strings.Repeat("  ", depth+1))
		sb.WriteString(summarizeNode(&child))
		sb.WriteString("\n")
		w.writeNodeTree(sb, &child, depth+1)
	}
}

// indicator returns a visual indicator for the severity level.
func indicator(severity model.Severity) string {
	switch severity {
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
