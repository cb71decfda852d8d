package config

import (
	"fmt"

	"github.com/nao1215/uidiff/internal/attribute"
	"github.com/nao1215/uidiff/internal/diff"
	"github.com/nao1215/uidiff/internal/match"
	"github.com/nao1215/uidiff/internal/score"
)

// File represents the configuration file structure.
// It holds engine overrides applied to every screen, overrides for
// individual screens keyed by capture label, and a default gate.
//
// Example YAML:
//
//	defaults:
//	  min_confidence: 0.5
//	  extra_cosmetic: [scrollable]
//	gate: "score > 0.2"
//	screens:
//	  login:
//	    bounds_tolerance: 4
//	    gate: "text_changes > 0"
type File struct {
	// Defaults are applied to every screen.
	Defaults ScreenConfig `yaml:"defaults"`

	// Screens maps a capture label to its overrides.
	Screens map[string]ScreenConfig `yaml:"screens"`

	// Gate is the default gate expression. Empty means no gate.
	Gate string `yaml:"gate"`
}

// ScreenConfig holds engine overrides for a screen.
// Unset fields keep the value of the layer below.
type ScreenConfig struct {
	// MinConfidence is the composite similarity a pair must exceed to match.
	MinConfidence *float64 `yaml:"min_confidence"`

	// BoundsTolerance is the per-edge movement in pixels ignored as noise.
	BoundsTolerance *int `yaml:"bounds_tolerance"`

	// Cosmetic replaces the cosmetic attribute names when set.
	Cosmetic []string `yaml:"cosmetic"`

	// CosmeticPrefixes replaces the cosmetic attribute prefixes when set.
	CosmeticPrefixes []string `yaml:"cosmetic_prefixes"`

	// ExtraCosmetic adds names to the cosmetic set instead of replacing it.
	ExtraCosmetic []string `yaml:"extra_cosmetic"`

	// MatchWeights override individual identity signal weights.
	MatchWeights MatchWeights `yaml:"match_weights"`

	// Weights override individual scoring weights.
	Weights ScoreWeights `yaml:"weights"`

	// Gate overrides the gate expression for this screen.
	Gate string `yaml:"gate"`
}

// MatchWeights are partial overrides of match.Weights.
type MatchWeights struct {
	ResourceID *float64 `yaml:"resource_id"`
	Text       *float64 `yaml:"text"`
	Spatial    *float64 `yaml:"spatial"`
	Structural *float64 `yaml:"structural"`
}

// ScoreWeights are partial overrides of score.Weights.
type ScoreWeights struct {
	Added     *float64 `yaml:"added"`
	Removed   *float64 `yaml:"removed"`
	Text      *float64 `yaml:"text_change"`
	Attribute *float64 `yaml:"attribute_change"`
	Bounds    *float64 `yaml:"bounds_change"`
}

// ScreenConfig returns the overrides for a label: the screen entry merged
// over the defaults.
func (f *File) ScreenConfig(label string) ScreenConfig {
	if f == nil {
		return ScreenConfig{}
	}
	cfg := f.Defaults
	if screen, ok := f.Screens[label]; ok {
		cfg = cfg.Merge(screen)
	}
	return cfg
}

// EngineOptions returns the validated engine options for a label.
func (f *File) EngineOptions(label string) (diff.Options, error) {
	opts := f.ScreenConfig(label).Apply(diff.DefaultOptions())
	if err := opts.Validate(); err != nil {
		if label == "" {
			return diff.Options{}, fmt.Errorf("invalid engine configuration: %w", err)
		}
		return diff.Options{}, fmt.Errorf("invalid engine configuration for screen %q: %w", label, err)
	}
	return opts, nil
}

// GateExpression returns the gate expression for a label. A screen gate
// wins over the file gate.
func (f *File) GateExpression(label string) string {
	if f == nil {
		return ""
	}
	if g := f.ScreenConfig(label).Gate; g != "" {
		return g
	}
	return f.Gate
}

// WithOverrides returns a copy of the file whose defaults and screens all
// have the given overrides merged on top.
func (f *File) WithOverrides(o ScreenConfig) *File {
	if f == nil {
		f = &File{}
	}
	merged := &File{
		Defaults: f.Defaults.Merge(o),
		Screens:  make(map[string]ScreenConfig, len(f.Screens)),
		Gate:     f.Gate,
	}
	for label, sc := range f.Screens {
		merged.Screens[label] = sc.Merge(o)
	}
	return merged
}

// Merge returns s with every field set in other taking precedence.
// ExtraCosmetic lists are concatenated.
func (s ScreenConfig) Merge(other ScreenConfig) ScreenConfig {
	result := s
	if other.MinConfidence != nil {
		result.MinConfidence = other.MinConfidence
	}
	if other.BoundsTolerance != nil {
		result.BoundsTolerance = other.BoundsTolerance
	}
	if other.Cosmetic != nil {
		result.Cosmetic = other.Cosmetic
	}
	if other.CosmeticPrefixes != nil {
		result.CosmeticPrefixes = other.CosmeticPrefixes
	}
	if len(other.ExtraCosmetic) > 0 {
		extra := make([]string, 0, len(s.ExtraCosmetic)+len(other.ExtraCosmetic))
		extra = append(extra, s.ExtraCosmetic...)
		result.ExtraCosmetic = append(extra, other.ExtraCosmetic...)
	}
	result.MatchWeights = s.MatchWeights.merge(other.MatchWeights)
	result.Weights = s.Weights.merge(other.Weights)
	if other.Gate != "" {
		result.Gate = other.Gate
	}
	return result
}

// Apply returns opts with the overrides applied. It does not validate.
func (s ScreenConfig) Apply(opts diff.Options) diff.Options {
	if s.MinConfidence != nil {
		opts.MinConfidence = *s.MinConfidence
	}
	if s.BoundsTolerance != nil {
		opts.BoundsTolerance = *s.BoundsTolerance
	}
	if s.Cosmetic != nil || s.CosmeticPrefixes != nil {
		names := opts.Cosmetic.Names()
		if s.Cosmetic != nil {
			names = s.Cosmetic
		}
		prefixes := opts.Cosmetic.Prefixes()
		if s.CosmeticPrefixes != nil {
			prefixes = s.CosmeticPrefixes
		}
		opts.Cosmetic = attribute.NewSet(names, prefixes)
	}
	if len(s.ExtraCosmetic) > 0 {
		opts.Cosmetic = opts.Cosmetic.With(s.ExtraCosmetic, nil)
	}
	opts.MatchWeights = s.MatchWeights.apply(opts.MatchWeights)
	opts.Weights = s.Weights.apply(opts.Weights)
	return opts
}

func (w MatchWeights) merge(other MatchWeights) MatchWeights {
	return MatchWeights{
		ResourceID: pick(w.ResourceID, other.ResourceID),
		Text:       pick(w.Text, other.Text),
		Spatial:    pick(w.Spatial, other.Spatial),
		Structural: pick(w.Structural, other.Structural),
	}
}

func (w MatchWeights) apply(base match.Weights) match.Weights {
	set(&base.ResourceID, w.ResourceID)
	set(&base.Text, w.Text)
	set(&base.Spatial, w.Spatial)
	set(&base.Structural, w.Structural)
	return base
}

func (w ScoreWeights) merge(other ScoreWeights) ScoreWeights {
	return ScoreWeights{
		Added:     pick(w.Added, other.Added),
		Removed:   pick(w.Removed, other.Removed),
		Text:      pick(w.Text, other.Text),
		Attribute: pick(w.Attribute, other.Attribute),
		Bounds:    pick(w.Bounds, other.Bounds),
	}
}

func (w ScoreWeights) apply(base score.Weights) score.Weights {
	set(&base.Added, w.Added)
	set(&base.Removed, w.Removed)
	set(&base.Text, w.Text)
	set(&base.Attribute, w.Attribute)
	set(&base.Bounds, w.Bounds)
	return base
}

// pick returns override when set, otherwise base.
func pick[T any](base, override *T) *T {
	if override != nil {
		return override
	}
	return base
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
