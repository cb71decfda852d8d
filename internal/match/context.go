package match

import (
	"math"

	"github.com/nao1215/uidiff/internal/attribute"
	"github.com/nao1215/uidiff/internal/model"
	"github.com/nao1215/uidiff/internal/textsim"
)

// Context holds per-comparison data shared by all signals.
// It is built once per Match call and is read-only afterwards.
type Context struct {
	Base       *model.Tree
	Candidate  *model.Tree
	Classifier *attribute.Classifier

	// Diagonal is the diagonal of the screen extent covering both trees.
	Diagonal float64

	base features
	cand features
}

type features struct {
	text []string
	desc []string
	rid  []string
}

// NewContext prepares the signal context for two indexed trees.
func NewContext(base, candidate *model.Tree, classifier *attribute.Classifier) *Context {
	if classifier == nil {
		classifier = attribute.NewClassifier(attribute.DefaultSet())
	}
	ctx := &Context{
		Base:       base,
		Candidate:  candidate,
		Classifier: classifier,
		base:       extract(base),
		cand:       extract(candidate),
	}

	ext, ok := base.Extent()
	if cext, cok := candidate.Extent(); cok {
		if ok {
			ext = ext.Union(cext)
		} else {
			ext, ok = cext, true
		}
	}
	if ok {
		ctx.Diagonal = math.Hypot(float64(ext.Width()), float64(ext.Height()))
	}
	return ctx
}

func extract(t *model.Tree) features {
	f := features{
		text: make([]string, t.Len()),
		desc: make([]string, t.Len()),
		rid:  make([]string, t.Len()),
	}
	for i := range t.Len() {
		n := t.Node(i)
		f.text[i] = textsim.Normalize(n.Text)
		f.desc[i] = textsim.Normalize(n.ContentDesc())
		f.rid[i] = n.ResourceID()
	}
	return f
}

// Text returns the normalized text of base node b and candidate node c.
func (ctx *Context) Text(b, c int) (string, string) {
	return ctx.base.text[b], ctx.cand.text[c]
}

// ContentDesc returns the normalized content descriptions of b and c.
func (ctx *Context) ContentDesc(b, c int) (string, string) {
	return ctx.base.desc[b], ctx.cand.desc[c]
}

// ResourceID returns the resource ids of b and c.
func (ctx *Context) ResourceID(b, c int) (string, string) {
	return ctx.base.rid[b], ctx.cand.rid[c]
}

// Distance returns the distance between the bounds centers of b and c,
// and false when either node has no bounds.
func (ctx *Context) Distance(b, c int) (float64, bool) {
	bb, cb := ctx.Base.Node(b).Bounds, ctx.Candidate.Node(c).Bounds
	if bb == nil || cb == nil {
		return 0, false
	}
	bx, by := bb.Center()
	cx, cy := cb.Center()
	return math.Hypot(bx-cx, by-cy), true
}
