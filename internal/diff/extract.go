package diff

import (
	"github.com/nao1215/uidiff/internal/attribute"
	"github.com/nao1215/uidiff/internal/match"
	"github.com/nao1215/uidiff/internal/model"
	"github.com/nao1215/uidiff/internal/textsim"
)

// Extractor turns a matching into ordered change records.
type Extractor struct {
	classifier *attribute.Classifier
	tolerance  int
}

// NewExtractor creates an extractor.
func NewExtractor(classifier *attribute.Classifier, boundsTolerance int) *Extractor {
	return &Extractor{classifier: classifier, tolerance: boundsTolerance}
}

// extraction holds the state of one Extract call.
type extraction struct {
	*Extractor
	base, cand *model.Tree
	m          *match.Matching
	out        []model.ChangeRecord

	// headAdds holds added regions emitted right after the records of a
	// matched base node; afterAdds those emitted after the subtree of a
	// base node. Lists are in candidate pre-order.
	headAdds  map[int][]int
	afterAdds map[int][]int
	orphans   []int
}

// Extract produces the change records for a matching of base and cand.
//
// Records follow a pre-order walk of the base tree. A matched node emits its
// text, attribute and bounds changes; an unmatched node whose parent is
// matched (or that is the root) emits one removed record for its region.
// Added regions are inserted where they appear: after the nearest preceding
// candidate sibling that maps to a child of the same base parent, or at the
// head of the parent when there is none. Additions without any matched
// ancestor are appended at the end.
func (e *Extractor) Extract(base, cand *model.Tree, m *match.Matching) []model.ChangeRecord {
	x := &extraction{
		Extractor: e,
		base:      base,
		cand:      cand,
		m:         m,
		headAdds:  make(map[int][]int),
		afterAdds: make(map[int][]int),
	}
	x.placeAdditions()
	if !base.Empty() {
		x.visit(0)
	}
	for _, c := range x.orphans {
		x.emitAdded(c)
	}
	return x.out
}

func (x *extraction) regionRoot(t *model.Tree, i int, matched func(int) bool) bool {
	if matched(i) {
		return false
	}
	p := t.Entry(i).Parent
	return p < 0 || matched(p)
}

func (x *extraction) baseMatched(b int) bool {
	_, ok := x.m.CandidateOf(b)
	return ok
}

func (x *extraction) candMatched(c int) bool {
	_, ok := x.m.BaseOf(c)
	return ok
}

func (x *extraction) placeAdditions() {
	for c := range x.cand.Len() {
		if !x.regionRoot(x.cand, c, x.candMatched) {
			continue
		}
		parent := x.cand.Entry(c).Parent
		if parent < 0 {
			x.orphans = append(x.orphans, c)
			continue
		}
		bParent, _ := x.m.BaseOf(parent)

		anchor := -1
		for _, sib := range x.cand.Children(parent) {
			if sib == c {
				break
			}
			if b, ok := x.m.BaseOf(sib); ok && x.base.Entry(b).Parent == bParent {
				anchor = b
			}
		}
		if anchor < 0 {
			x.headAdds[bParent] = append(x.headAdds[bParent], c)
		} else {
			x.afterAdds[anchor] = append(x.afterAdds[anchor], c)
		}
	}
}

func (x *extraction) visit(b int) {
	if c, ok := x.m.CandidateOf(b); ok {
		x.compare(b, c)
		for _, a := range x.headAdds[b] {
			x.emitAdded(a)
		}
	} else if x.regionRoot(x.base, b, x.baseMatched) {
		x.emitRemoved(b)
	}
	for _, child := range x.base.Children(b) {
		x.visit(child)
		for _, a := range x.afterAdds[child] {
			x.emitAdded(a)
		}
	}
}

func (x *extraction) emitRemoved(b int) {
	e := x.base.Entry(b)
	x.out = append(x.out, model.ChangeRecord{
		Type:  model.ChangeRemoved,
		Path:  e.Path,
		Class: e.Node.Tag,
		Node:  model.Summarize(e.Node, x.unmatchedIn(x.base, x.baseMatched)),
	})
}

func (x *extraction) emitAdded(c int) {
	e := x.cand.Entry(c)
	x.out = append(x.out, model.ChangeRecord{
		Type:  model.ChangeAdded,
		Path:  e.Path,
		Class: e.Node.Tag,
		Node:  model.Summarize(e.Node, x.unmatchedIn(x.cand, x.candMatched)),
	})
}

func (x *extraction) unmatchedIn(t *model.Tree, matched func(int) bool) func(*model.Node) bool {
	return func(n *model.Node) bool {
		i, ok := t.IndexOf(n)
		return ok && !matched(i)
	}
}

// compare emits the records of one matched pair.
func (x *extraction) compare(b, c int) {
	be := x.base.Entry(b)
	bn, cn := be.Node, x.cand.Node(c)
	rec := func(t model.ChangeType) model.ChangeRecord {
		return model.ChangeRecord{Type: t, Path: be.Path, Class: bn.Tag, Sensitive: bn.Password() || cn.Password()}
	}

	if x.classifier.IsFunctional("text") && !textsim.Equal(bn.Text, cn.Text) {
		r := rec(model.ChangeText)
		r.From, r.To = model.Present(bn.Text), model.Present(cn.Text)
		x.out = append(x.out, r)
	}

	for _, key := range unionKeys(bn.Attributes, cn.Attributes) {
		if attribute.IsPositional(key) || x.classifier.IsCosmetic(key) {
			continue
		}
		bv, bok := bn.Attributes.Get(key)
		cv, cok := cn.Attributes.Get(key)
		if bok == cok && bv == cv {
			continue
		}
		r := rec(model.ChangeAttribute)
		r.Attribute = key
		r.From, r.To = value(bv, bok), value(cv, cok)
		x.out = append(x.out, r)
	}

	if x.classifier.IsFunctional("bounds") && x.boundsChanged(bn.Bounds, cn.Bounds) {
		r := rec(model.ChangeBounds)
		r.FromBounds, r.ToBounds = bn.Bounds, cn.Bounds
		if bn.Bounds != nil && cn.Bounds != nil {
			d := bn.Bounds.Delta(*cn.Bounds)
			r.Delta = &d
		}
		x.out = append(x.out, r)
	}
}

func (x *extraction) boundsChanged(a, b *model.Rect) bool {
	if a == nil || b == nil {
		return (a == nil) != (b == nil)
	}
	for _, d := range a.Delta(*b) {
		if d > x.tolerance || -d > x.tolerance {
			return true
		}
	}
	return false
}

func value(s string, present bool) model.Value {
	if !present {
		return model.Absent()
	}
	return model.Present(s)
}

func unionKeys(a, b model.Attributes) []string {
	merged := make(model.Attributes, len(a)+len(b))
	for k := range a {
		merged[k] = ""
	}
	for k := range b {
		merged[k] = ""
	}
	return merged.Keys()
}
