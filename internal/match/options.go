package match

import (
	"math"

	"github.com/nao1215/uidiff/internal/attribute"
	"github.com/nao1215/uidiff/internal/model"
)

// Default signal weights, in priority order.
const (
	DefaultResourceIDWeight = 0.50
	DefaultTextWeight       = 0.25
	DefaultSpatialWeight    = 0.15
	DefaultStructuralWeight = 0.10

	// DefaultMinConfidence is the composite similarity a pair must strictly
	// exceed to be matched.
	DefaultMinConfidence = 0.45
)

// Weights are the relative weights of the built-in signals.
// They do not need to sum to one; the composite is a weighted mean.
type Weights struct {
	ResourceID float64 `yaml:"resource_id" json:"resource_id"`
	Text       float64 `yaml:"text" json:"text"`
	Spatial    float64 `yaml:"spatial" json:"spatial"`
	Structural float64 `yaml:"structural" json:"structural"`
}

// DefaultWeights returns the default signal weights.
func DefaultWeights() Weights {
	return Weights{
		ResourceID: DefaultResourceIDWeight,
		Text:       DefaultTextWeight,
		Spatial:    DefaultSpatialWeight,
		Structural: DefaultStructuralWeight,
	}
}

// Validate checks that every weight is finite and non-negative.
func (w Weights) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"match.weights.resource_id", w.ResourceID},
		{"match.weights.text", w.Text},
		{"match.weights.spatial", w.Spatial},
		{"match.weights.structural", w.Structural},
	}
	for _, f := range fields {
		if !finite(f.value) || f.value < 0 {
			return &model.ConfigurationError{Field: f.name, Err: model.ErrInvalidWeight}
		}
	}
	return nil
}

// Options configure a Matcher.
type Options struct {
	// Weights of the built-in signals. Ignored when Signals is set.
	Weights Weights

	// Signals replaces the built-in signal set when non-nil.
	Signals []WeightedSignal

	// MinConfidence is the threshold a composite must strictly exceed.
	MinConfidence float64

	// Classifier decides which attributes may take part in identity scoring.
	// A nil classifier uses the default cosmetic set.
	Classifier *attribute.Classifier
}

// DefaultOptions returns the default matcher configuration.
func DefaultOptions() Options {
	return Options{
		Weights:       DefaultWeights(),
		MinConfidence: DefaultMinConfidence,
		Classifier:    attribute.NewClassifier(attribute.DefaultSet()),
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if err := o.Weights.Validate(); err != nil {
		return err
	}
	for _, s := range o.Signals {
		if !finite(s.Weight) || s.Weight < 0 {
			return &model.ConfigurationError{Field: "match.signals." + s.Signal.Name(), Err: model.ErrInvalidWeight}
		}
	}
	if !finite(o.MinConfidence) || o.MinConfidence < 0 {
		return &model.ConfigurationError{Field: "match.min_confidence", Err: model.ErrNegativeThreshold}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
