package report

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/uidiff/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for pull request
// comments and documentation.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one comparison in Markdown format.
func (w *MarkdownWriter) Write(c *model.Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, c)
	if c.Report != nil {
		w.writeSummary(md, c.Report)
		w.writeChanges(md, c.Report)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteBatch outputs an overview table of several comparisons.
func (w *MarkdownWriter) WriteBatch(cs []*model.Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("UI Diff Batch Report")
	md.PlainText("")

	rows := make([][]string, 0, len(cs))
	failed := 0
	for _, c := range cs {
		gate := "-"
		if c.Gate != nil {
			gate = "✅ pass"
			if c.Gate.Failed {
				gate = "❌ fail"
				failed++
			}
		}
		changes := "-"
		if c.Report != nil {
			changes = strconv.Itoa(len(c.Report.Changes))
		}
		rows = append(rows, []string{"`" + c.Label + "`", formatScore(c.Report), changes, gate})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Screen", "Score", "Changes", "Gate"},
		Rows:   rows,
	})
	md.PlainText("")

	if failed > 0 {
		md.Cautionf("%d of %d screen(s) failed the gate.", failed, len(cs))
	} else {
		md.Tip("All compared screens passed.")
	}
	md.PlainText("")
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with comparison information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, c *model.Comparison) {
	md.H1("UI Diff Report")
	md.PlainText("")

	rows := [][]string{
		{"Screen", "`" + c.Label + "`"},
		{"Base", "`" + c.BaseSource + "`"},
		{"Candidate", "`" + c.CandidateSource + "`"},
		{"Compared", c.ComparedAt.Format(timeLayout)},
	}
	if c.Report != nil {
		rows = append(rows,
			[]string{"Nodes", strconv.Itoa(c.Report.BaseNodes) + " → " + strconv.Itoa(c.Report.CandidateNodes)},
			[]string{"Score", "**" + formatScore(c.Report) + "**"},
		)
	}
	if c.Gate != nil {
		rows = append(rows, []string{"Gate", gateStatus(c)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSummary writes the per-type summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, r *model.DiffReport) {
	md.H2("Change Summary")
	md.PlainText("")

	s := r.Summary()
	rows := make([][]string, 0, len(model.ChangeTypes())+1)
	for _, t := range model.ChangeTypes() {
		rows = append(rows, []string{changeTitle(t), t.Severity().String(), strconv.Itoa(s.Count(t))})
	}
	rows = append(rows, []string{"**Total**", "", "**" + strconv.Itoa(s.Total()) + "**"})
	md.Table(markdown.TableSet{
		Header: []string{"Type", "Severity", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if !r.Identical() {
		w.writePieChart(md, s)
	}
	w.writeAlert(md, s)
}

// writePieChart writes a mermaid pie chart of the change type distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s model.ChangeSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Change Type Distribution"),
		piechart.WithShowData(true),
	)
	for _, t := range model.ChangeTypes() {
		if n := s.Count(t); n > 0 {
			chart.LabelAndIntValue(changeTitle(t), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert matching the most severe change type present.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s model.ChangeSummary) {
	switch {
	case s.Added+s.Removed > 0:
		md.Warningf(
			"Screen structure changed: %d region(s) added and %d region(s) removed.",
			s.Added, s.Removed,
		)
	case s.TextChanges > 0:
		md.Importantf("%d text change(s) visible to users.", s.TextChanges)
	case s.Total() > 0:
		md.Note("Only attribute and layout changes detected.")
	default:
		md.Tip(sentence(noDifferences))
	}
	md.PlainText("")
}

// writeChanges writes the changes grouped by severity.
func (w *MarkdownWriter) writeChanges(md *markdown.Markdown, r *model.DiffReport) {
	md.H2("Changes")
	md.PlainText("")

	if r.Identical() {
		md.PlainText(sentence(noDifferences) + ".")
		md.PlainText("")
		return
	}

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityHigh, "### 🟠 High"},
		{model.SeverityMedium, "### 🟡 Medium"},
		{model.SeverityLow, "### 🔵 Low"},
		{model.SeverityInfo, "### ⚪ Info"},
	}

	for _, sev := range severities {
		var changes []model.ChangeRecord
		for _, c := range r.Changes {
			if c.Type.Severity() == sev.level {
				changes = append(changes, c)
			}
		}
		if len(changes) == 0 {
			continue
		}
		md.PlainText(sev.header)
		md.PlainText("")
		w.writeChangesTable(md, changes)
	}
}

// writeChangesTable writes a table of changes and node details for
// added and removed regions.
func (w *MarkdownWriter) writeChangesTable(md *markdown.Markdown, changes []model.ChangeRecord) {
	rows := make([][]string, len(changes))
	for i, c := range changes {
		rows[i] = []string{
			string(c.Type),
			"`" + truncateString(c.Path.String(), 80) + "`",
			shortClass(c.Class),
			truncateString(describe(c), 60),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Type", "Path", "Class", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, c := range changes {
		if c.Node == nil || c.Node.Size < 2 {
			continue
		}
		data, err := json.MarshalIndent(c.Node, "", "  ")
		if err != nil {
			continue
		}
		md.Details(string(c.Type)+" "+c.Path.String(), "```json\n"+string(data)+"\n```")
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [uidiff](https://github.com/nao1215/uidiff)*")
}

// sentence upper-cases the first letter of s.
func sentence(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
