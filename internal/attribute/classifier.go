package attribute

import (
	"slices"
	"strings"
)

// Class is the classification of an attribute name.
type Class int

const (
	// Functional attributes are compared and reported.
	Functional Class = iota
	// Cosmetic attributes are ignored.
	Cosmetic
)

// String returns the lowercase class name.
func (c Class) String() string {
	if c == Cosmetic {
		return "cosmetic"
	}
	return "functional"
}

// Attributes compared through dedicated node fields or the path rather than
// as generic attributes.
var positional = map[string]struct{}{
	"text":   {},
	"bounds": {},
	"class":  {},
	"index":  {},
}

// IsPositional reports whether name is handled through a dedicated field.
func IsPositional(name string) bool {
	_, ok := positional[name]
	return ok
}

var (
	defaultNames    = []string{"textSize", "textStyle", "textColor", "background", "alpha", "font", "drawing-order"}
	defaultPrefixes = []string{"textSize", "textStyle", "textColor", "background", "alpha", "font"}
)

// Set is an immutable set of cosmetic attribute names and name prefixes.
type Set struct {
	names    map[string]struct{}
	prefixes []string
}

// NewSet creates a set from exact names and prefixes. Empty strings are ignored.
func NewSet(names, prefixes []string) Set {
	s := Set{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n != "" {
			s.names[n] = struct{}{}
		}
	}
	for _, p := range prefixes {
		if p != "" && !slices.Contains(s.prefixes, p) {
			s.prefixes = append(s.prefixes, p)
		}
	}
	slices.Sort(s.prefixes)
	return s
}

// DefaultSet returns the default cosmetic set.
func DefaultSet() Set {
	return NewSet(defaultNames, defaultPrefixes)
}

// Empty reports whether the set classifies nothing as cosmetic.
func (s Set) Empty() bool {
	return len(s.names) == 0 && len(s.prefixes) == 0
}

// Names returns the exact cosmetic names in lexical order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Prefixes returns the cosmetic prefixes in lexical order.
func (s Set) Prefixes() []string {
	return slices.Clone(s.prefixes)
}

// With returns a copy of s extended by additional names and prefixes.
func (s Set) With(names, prefixes []string) Set {
	return NewSet(append(s.Names(), names...), append(s.Prefixes(), prefixes...))
}

// Contains reports whether name is cosmetic under this set.
func (s Set) Contains(name string) bool {
	if _, ok := s.names[name]; ok {
		return true
	}
	for _, p := range s.prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Classifier classifies attribute names against a cosmetic set.
type Classifier struct {
	set Set
}

// NewClassifier creates a classifier backed by set.
func NewClassifier(set Set) *Classifier {
	return &Classifier{set: set}
}

// Classify returns Cosmetic or Functional for name.
func (c *Classifier) Classify(name string) Class {
	if c.set.Contains(name) {
		return Cosmetic
	}
	return Functional
}

// IsCosmetic reports whether name is cosmetic.
func (c *Classifier) IsCosmetic(name string) bool {
	return c.Classify(name) == Cosmetic
}

// IsFunctional reports whether name is functional.
func (c *Classifier) IsFunctional(name string) bool {
	return c.Classify(name) == Functional
}

// Set returns the backing cosmetic set.
func (c *Classifier) Set() Set {
	return c.set
}
