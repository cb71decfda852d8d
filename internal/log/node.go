package log

import (
	"log/slog"

	"github.com/nao1215/uidiff/internal/model"
)

// NodeText returns the text of n for logging. The text of password fields
// is masked.
func NodeText(n *model.Node) string {
	if n == nil {
		return ""
	}
	if n.Password() && n.Text != "" {
		return MaskValue
	}
	return n.Text
}

// Node returns a log value describing n.
func Node(n *model.Node) slog.Value {
	if n == nil {
		return slog.StringValue("<nil>")
	}
	attrs := []slog.Attr{slog.String("class", n.Tag)}
	if id := n.ResourceID(); id != "" {
		attrs = append(attrs, slog.String("resource_id", id))
	}
	if text := NodeText(n); text != "" {
		attrs = append(attrs, slog.String("text", text))
	}
	if n.Bounds != nil {
		attrs = append(attrs, slog.String("bounds", n.Bounds.String()))
	}
	attrs = append(attrs, slog.Int("size", n.Size()))
	return slog.GroupValue(attrs...)
}

// Change returns a log value describing a change record. From and To of
// sensitive records are masked.
func Change(rec model.ChangeRecord) slog.Value {
	attrs := []slog.Attr{
		slog.String("type", string(rec.Type)),
		slog.String("path", rec.Path.String()),
	}
	switch rec.Type {
	case model.ChangeAttribute, model.ChangeText:
		if rec.Type == model.ChangeAttribute {
			attrs = append(attrs, slog.String("attribute", rec.Attribute))
		}
		from, to := rec.From.String(), rec.To.String()
		if rec.Sensitive {
			from, to = MaskValue, MaskValue
		}
		attrs = append(attrs, slog.String("from", from), slog.String("to", to))
	case model.ChangeBounds:
		if rec.FromBounds != nil && rec.ToBounds != nil {
			attrs = append(attrs,
				slog.String("from", rec.FromBounds.String()),
				slog.String("to", rec.ToBounds.String()),
			)
		}
	case model.ChangeAdded, model.ChangeRemoved:
		if rec.Node != nil {
			attrs = append(attrs, slog.Int("size", rec.Node.Size))
		}
	}
	return slog.GroupValue(attrs...)
}
