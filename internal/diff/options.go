package diff

import (
	"github.com/nao1215/uidiff/internal/attribute"
	"github.com/nao1215/uidiff/internal/match"
	"github.com/nao1215/uidiff/internal/model"
	"github.com/nao1215/uidiff/internal/score"
)

// DefaultBoundsTolerance is the edge movement in pixels treated as noise.
const DefaultBoundsTolerance = 2

// Options configure a comparison.
type Options struct {
	// Cosmetic lists attributes that never produce changes or influence matching.
	Cosmetic attribute.Set

	// AllowEmptyCosmetic permits an empty Cosmetic set. Without it an empty
	// set is rejected, since it is almost always a configuration mistake.
	AllowEmptyCosmetic bool

	// MatchWeights are the weights of the built-in identity signals.
	MatchWeights match.Weights

	// Signals replaces the built-in identity signals when non-nil.
	Signals []match.WeightedSignal

	// MinConfidence is the composite similarity a pair must strictly exceed.
	MinConfidence float64

	// BoundsTolerance is the largest per-edge movement, in pixels, that is
	// not reported as a bounds change.
	BoundsTolerance int

	// Weights are the scoring weights per change type.
	Weights score.Weights
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Cosmetic:        attribute.DefaultSet(),
		MatchWeights:    match.DefaultWeights(),
		MinConfidence:   match.DefaultMinConfidence,
		BoundsTolerance: DefaultBoundsTolerance,
		Weights:         score.DefaultWeights(),
	}
}

// Validate checks the options and returns a *model.ConfigurationError.
func (o Options) Validate() error {
	if o.Cosmetic.Empty() && !o.AllowEmptyCosmetic {
		return &model.ConfigurationError{Field: "cosmetic", Err: model.ErrEmptyCosmeticSet}
	}
	if err := o.matchOptions().Validate(); err != nil {
		return err
	}
	if o.BoundsTolerance < 0 {
		return &model.ConfigurationError{Field: "bounds_tolerance", Err: model.ErrInvalidTolerance}
	}
	return o.Weights.Validate()
}

// Classifier returns the attribute classifier for the cosmetic set.
func (o Options) Classifier() *attribute.Classifier {
	return attribute.NewClassifier(o.Cosmetic)
}

func (o Options) matchOptions() match.Options {
	return match.Options{
		Weights:       o.MatchWeights,
		Signals:       o.Signals,
		MinConfidence: o.MinConfidence,
		Classifier:    o.Classifier(),
	}
}
