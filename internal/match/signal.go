package match

import (
	"github.com/nao1215/uidiff/internal/model"
	"github.com/nao1215/uidiff/internal/textsim"
)

// Signal measures one aspect of similarity between a base and a candidate node.
type Signal interface {
	// Name identifies the signal in configuration errors and logs.
	Name() string

	// Score returns a similarity in [0, 1] for base node b and candidate
	// node c, and false when the signal has nothing to say about the pair.
	// Unavailable signals are left out of the composite entirely.
	Score(ctx *Context, b, c int) (float64, bool)
}

// Vetoer is implemented by signals that can rule a pair out completely.
type Vetoer interface {
	Veto(ctx *Context, b, c int) bool
}

// ResourceIDSignal compares developer assigned resource ids.
// Two different non-empty ids veto the pair.
type ResourceIDSignal struct{}

// Name implements Signal.
func (ResourceIDSignal) Name() string { return "resource_id" }

func (ResourceIDSignal) usable(ctx *Context) bool {
	return ctx.Classifier.IsFunctional("resource-id")
}

// Score implements Signal.
func (s ResourceIDSignal) Score(ctx *Context, b, c int) (float64, bool) {
	if !s.usable(ctx) {
		return 0, false
	}
	rb, rc := ctx.ResourceID(b, c)
	switch {
	case rb == "" && rc == "":
		return 0, false
	case rb == rc:
		return 1, true
	default:
		return 0, true
	}
}

// Veto implements Vetoer.
func (s ResourceIDSignal) Veto(ctx *Context, b, c int) bool {
	if !s.usable(ctx) {
		return false
	}
	rb, rc := ctx.ResourceID(b, c)
	return rb != "" && rc != "" && rb != rc
}

// Matches reports whether both nodes carry the same non-empty resource id.
func (s ResourceIDSignal) Matches(ctx *Context, b, c int) bool {
	if !s.usable(ctx) {
		return false
	}
	rb, rc := ctx.ResourceID(b, c)
	return rb != "" && rb == rc
}

// TextSignal compares normalized text and content description with the
// Sørensen–Dice bigram coefficient and keeps the better of the two.
type TextSignal struct{}

// Name implements Signal.
func (TextSignal) Name() string { return "text" }

// Score implements Signal.
func (TextSignal) Score(ctx *Context, b, c int) (float64, bool) {
	var (
		best      float64
		available bool
	)
	if ctx.Classifier.IsFunctional("text") {
		tb, tc := ctx.Text(b, c)
		if tb != "" || tc != "" {
			best, available = textsim.Dice(tb, tc), true
		}
	}
	if ctx.Classifier.IsFunctional("content-desc") {
		db, dc := ctx.ContentDesc(b, c)
		if db != "" || dc != "" {
			best, available = max(best, textsim.Dice(db, dc)), true
		}
	}
	return best, available
}

// SpatialSignal scores how close the bounds centers are relative to the
// screen diagonal.
type SpatialSignal struct{}

// Name implements Signal.
func (SpatialSignal) Name() string { return "spatial" }

// Score implements Signal.
func (SpatialSignal) Score(ctx *Context, b, c int) (float64, bool) {
	d, ok := ctx.Distance(b, c)
	if !ok {
		return 0, false
	}
	if ctx.Diagonal <= 0 {
		if d == 0 {
			return 1, true
		}
		return 0, true
	}
	return max(0, 1-d/ctx.Diagonal), true
}

// StructuralSignal compares tree positions. Nodes under an equal parent
// path score 1 regardless of their sibling index, so a sibling inserted in
// front of a node never outweighs its position on screen. Nodes whose
// ancestors have the same tags at every level score 0.5.
type StructuralSignal struct{}

// Name implements Signal.
func (StructuralSignal) Name() string { return "structural" }

// Score implements Signal.
func (StructuralSignal) Score(ctx *Context, b, c int) (float64, bool) {
	pb, pc := ctx.Base.Entry(b).Path.Parent(), ctx.Candidate.Entry(c).Path.Parent()
	switch {
	case pb.Equal(pc):
		return 1, true
	case sameLineage(pb, pc):
		return 0.5, true
	default:
		return 0, true
	}
}

// sameLineage reports whether both paths have the same tag at every level.
func sameLineage(a, b model.Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Tag != b[i].Tag {
			return false
		}
	}
	return true
}

// WeightedSignal pairs a signal with its weight in the composite.
type WeightedSignal struct {
	Signal Signal
	Weight float64
}

// Composite combines signals into a weighted mean over the signals
// available for a pair.
type Composite struct {
	signals []WeightedSignal
}

// NewComposite creates a composite of the given signals.
func NewComposite(signals ...WeightedSignal) *Composite {
	return &Composite{signals: signals}
}

// DefaultSignals returns the built-in signals with the given weights.
func DefaultSignals(w Weights) []WeightedSignal {
	return []WeightedSignal{
		{Signal: ResourceIDSignal{}, Weight: w.ResourceID},
		{Signal: TextSignal{}, Weight: w.Text},
		{Signal: SpatialSignal{}, Weight: w.Spatial},
		{Signal: StructuralSignal{}, Weight: w.Structural},
	}
}

// Score returns the composite similarity of b and c, or vetoed when any
// signal rules the pair out. Vetoes apply regardless of the signal weight.
func (cp *Composite) Score(ctx *Context, b, c int) (score float64, vetoed bool) {
	var sum, total float64
	for _, ws := range cp.signals {
		if v, ok := ws.Signal.(Vetoer); ok && v.Veto(ctx, b, c) {
			return 0, true
		}
		if ws.Weight == 0 {
			continue
		}
		s, ok := ws.Signal.Score(ctx, b, c)
		if !ok {
			continue
		}
		sum += ws.Weight * s
		total += ws.Weight
	}
	if total == 0 {
		return 0, false
	}
	return sum / total, false
}
