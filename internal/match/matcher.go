package match

import (
	"cmp"
	"slices"

	"github.com/nao1215/uidiff/internal/model"
)

// Pair is a committed match between base node Base and candidate node
// Candidate, identified by pre-order index.
type Pair struct {
	Base       int
	Candidate  int
	Confidence float64
}

// Matching is a partial bijection between the nodes of two trees.
type Matching struct {
	baseToCand []int
	candToBase []int
	confidence []float64
}

func newMatching(nb, nc int) *Matching {
	m := &Matching{
		baseToCand: make([]int, nb),
		candToBase: make([]int, nc),
		confidence: make([]float64, nb),
	}
	for i := range m.baseToCand {
		m.baseToCand[i] = -1
	}
	for i := range m.candToBase {
		m.candToBase[i] = -1
	}
	return m
}

func (m *Matching) commit(b, c int, confidence float64) {
	m.baseToCand[b] = c
	m.candToBase[c] = b
	m.confidence[b] = confidence
}

// CandidateOf returns the candidate matched to base node b.
func (m *Matching) CandidateOf(b int) (int, bool) {
	c := m.baseToCand[b]
	return c, c >= 0
}

// BaseOf returns the base node matched to candidate node c.
func (m *Matching) BaseOf(c int) (int, bool) {
	b := m.candToBase[c]
	return b, b >= 0
}

// Len returns the number of matched pairs.
func (m *Matching) Len() int {
	n := 0
	for _, c := range m.baseToCand {
		if c >= 0 {
			n++
		}
	}
	return n
}

// Pairs returns the matched pairs ordered by base pre-order index.
func (m *Matching) Pairs() []Pair {
	out := make([]Pair, 0, len(m.baseToCand))
	for b, c := range m.baseToCand {
		if c >= 0 {
			out = append(out, Pair{Base: b, Candidate: c, Confidence: m.confidence[b]})
		}
	}
	return out
}

// Matcher builds matchings with a fixed configuration.
// A Matcher is safe for concurrent use.
type Matcher struct {
	opts      Options
	composite *Composite
	rid       ResourceIDSignal
}

// New creates a matcher. Options are expected to be validated.
func New(opts Options) *Matcher {
	signals := opts.Signals
	if signals == nil {
		signals = DefaultSignals(opts.Weights)
	}
	return &Matcher{opts: opts, composite: NewComposite(signals...)}
}

type candidate struct {
	b, c     int
	score    float64
	ridMatch bool
	distance float64
}

// Match computes the matching of two indexed trees.
//
// Roots with equal tags are anchored to each other. All other pairs must
// share a tag, must not be vetoed, and must have a composite similarity
// strictly above MinConfidence. Pairs are committed greedily in descending
// similarity order.
func (m *Matcher) Match(base, cand *model.Tree) *Matching {
	result := newMatching(base.Len(), cand.Len())
	if base.Empty() || cand.Empty() {
		return result
	}
	ctx := NewContext(base, cand, m.opts.Classifier)

	anchored := base.Node(0).Tag == cand.Node(0).Tag
	if anchored {
		result.commit(0, 0, 1)
	}

	byTag := make(map[string][]int)
	for c := range cand.Len() {
		if anchored && c == 0 {
			continue
		}
		tag := cand.Node(c).Tag
		byTag[tag] = append(byTag[tag], c)
	}

	var pool []candidate
	for b := range base.Len() {
		if anchored && b == 0 {
			continue
		}
		for _, c := range byTag[base.Node(b).Tag] {
			score, vetoed := m.composite.Score(ctx, b, c)
			if vetoed || score <= m.opts.MinConfidence {
				continue
			}
			dist, _ := ctx.Distance(b, c)
			pool = append(pool, candidate{
				b: b, c: c, score: score,
				ridMatch: m.rid.Matches(ctx, b, c),
				distance: dist,
			})
		}
	}

	slices.SortFunc(pool, func(x, y candidate) int {
		if n := cmp.Compare(y.score, x.score); n != 0 {
			return n
		}
		if x.ridMatch != y.ridMatch {
			if x.ridMatch {
				return -1
			}
			return 1
		}
		if n := cmp.Compare(x.distance, y.distance); n != 0 {
			return n
		}
		if n := cmp.Compare(x.b, y.b); n != 0 {
			return n
		}
		return cmp.Compare(x.c, y.c)
	})

	for _, p := range pool {
		if result.baseToCand[p.b] >= 0 || result.candToBase[p.c] >= 0 {
			continue
		}
		result.commit(p.b, p.c, p.score)
	}
	return result
}
