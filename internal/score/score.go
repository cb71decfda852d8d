// Package score turns a list of change records into a normalized difference score.
//
// Each record contributes its type weight. Added and removed records cover
// a whole unmatched region and contribute weight × region size. The raw sum
// is divided by the size of the larger input tree and clamped to [0, 1], so
// identical trees score 0 and a tree compared with an empty or completely
// different tree scores 1.
package score

import (
	"math"

	"github.com/nao1215/uidiff/internal/model"
)

// Default per-record weights.
const (
	DefaultAddedWeight     = 1.0
	DefaultRemovedWeight   = 1.0
	DefaultTextWeight      = 0.7
	DefaultAttributeWeight = 0.5
	DefaultBoundsWeight    = 0.3
)

// Weights assigns a weight to each change type.
type Weights struct {
	Added     float64 `yaml:"added" json:"added"`
	Removed   float64 `yaml:"removed" json:"removed"`
	Text      float64 `yaml:"text_change" json:"text_change"`
	Attribute float64 `yaml:"attribute_change" json:"attribute_change"`
	Bounds    float64 `yaml:"bounds_change" json:"bounds_change"`
}

// DefaultWeights returns the default scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Added:     DefaultAddedWeight,
		Removed:   DefaultRemovedWeight,
		Text:      DefaultTextWeight,
		Attribute: DefaultAttributeWeight,
		Bounds:    DefaultBoundsWeight,
	}
}

// Validate checks that every weight is finite and non-negative and that
// added and removed weigh at least 1, which keeps a tree compared with an
// empty tree at the maximum score.
func (w Weights) Validate() error {
	fields := []struct {
		name  string
		value float64
		min   float64
	}{
		{"score.weights.added", w.Added, 1},
		{"score.weights.removed", w.Removed, 1},
		{"score.weights.text_change", w.Text, 0},
		{"score.weights.attribute_change", w.Attribute, 0},
		{"score.weights.bounds_change", w.Bounds, 0},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < f.min {
			return &model.ConfigurationError{Field: f.name, Err: model.ErrInvalidWeight}
		}
	}
	return nil
}

// For returns the weight of a change type, or 0 for unknown types.
func (w Weights) For(t model.ChangeType) float64 {
	switch t {
	case model.ChangeAdded:
		return w.Added
	case model.ChangeRemoved:
		return w.Removed
	case model.ChangeText:
		return w.Text
	case model.ChangeAttribute:
		return w.Attribute
	case model.ChangeBounds:
		return w.Bounds
	default:
		return 0
	}
}

// Result is the outcome of scoring.
type Result struct {
	// Score is Raw / Normalizer clamped to [0, 1].
	Score float64
	// Raw is the weighted sum of all records.
	Raw float64
	// Normalizer is the size of the larger input tree.
	Normalizer int
}

// Scorer computes scores with fixed weights.
type Scorer struct {
	weights Weights
}

// New creates a scorer. Weights are expected to be validated.
func New(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Contribution returns the raw score contribution of one record.
func (s *Scorer) Contribution(c model.ChangeRecord) float64 {
	w := s.weights.For(c.Type)
	if (c.Type == model.ChangeAdded || c.Type == model.ChangeRemoved) && c.Node != nil {
		return w * float64(c.Node.Size)
	}
	return w
}

// Score scores the records of a comparison between trees of baseNodes and
// candidateNodes nodes.
func (s *Scorer) Score(changes []model.ChangeRecord, baseNodes, candidateNodes int) Result {
	res := Result{Normalizer: max(baseNodes, candidateNodes)}
	for _, c := range changes {
		res.Raw += s.Contribution(c)
	}
	if res.Normalizer == 0 {
		return res
	}
	res.Score = min(res.Raw/float64(res.Normalizer), 1)
	return res
}
