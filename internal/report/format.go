package report

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/uidiff/internal/model"
)

// noDifferences is printed when a comparison found nothing.
const noDifferences = "no significant differences found"

// timeLayout is used for all human-readable timestamps.
const timeLayout = "2006-01-02 15:04:05 MST"

// changeTitle returns the display title of a change type, e.g. "Text Changes".
func changeTitle(t model.ChangeType) string {
	return cases.Title(language.English).String(t.Info().Title)
}

// describe renders the type specific payload of a change in one line.
func describe(c model.ChangeRecord) string {
	switch c.Type {
	case model.ChangeText:
		return fmt.Sprintf("%s -> %s", quote(c.From), quote(c.To))
	case model.ChangeAttribute:
		return fmt.Sprintf("%s: %s -> %s", c.Attribute, quote(c.From), quote(c.To))
	case model.ChangeBounds:
		s := fmt.Sprintf("%s -> %s", rectString(c.FromBounds), rectString(c.ToBounds))
		if c.Delta != nil {
			d := c.Delta
			s += fmt.Sprintf(" (delta %d,%d,%d,%d)", d[0], d[1], d[2], d[3])
		}
		return s
	case model.ChangeAdded, model.ChangeRemoved:
		return summarizeNode(c.Node)
	default:
		return ""
	}
}

func quote(v model.Value) string {
	if !v.Present {
		return "<absent>"
	}
	return strconv.Quote(v.S)
}

func rectString(r *model.Rect) string {
	if r == nil {
		return "<none>"
	}
	return r.String()
}

func summarizeNode(n *model.NodeSummary) string {
	if n == nil {
		return ""
	}
	parts := []string{shortClass(n.Class)}
	if n.ResourceID != "" {
		parts = append(parts, "#"+n.ResourceID)
	}
	if n.Text != "" {
		parts = append(parts, strconv.Quote(n.Text))
	} else if n.ContentDesc != "" {
		parts = append(parts, "desc="+strconv.Quote(n.ContentDesc))
	}
	if n.Size > 1 {
		parts = append(parts, fmt.Sprintf("(%d nodes)", n.Size))
	}
	return strings.Join(parts, " ")
}

// shortClass drops the package of a widget class name.
func shortClass(class string) string {
	if i := strings.LastIndexByte(class, '.'); i >= 0 && i < len(class)-1 {
		return class[i+1:]
	}
	return class
}

// gateStatus renders the gate outcome of a comparison.
func gateStatus(c *model.Comparison) string {
	switch {
	case c.Gate == nil:
		return "not evaluated"
	case c.Gate.Failed:
		return "FAILED (" + c.Gate.Expression + ")"
	default:
		return "passed (" + c.Gate.Expression + ")"
	}
}

// formatScore renders a score with the display precision.
func formatScore(r *model.DiffReport) string {
	if r == nil {
		return "-"
	}
	return strconv.FormatFloat(r.DisplayScore(), 'f', 4, 64)
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
