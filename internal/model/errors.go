package model

import (
	"errors"
	"fmt"
)

// Tree shape errors wrapped by MalformedTreeError.
var (
	// ErrNilNode is returned when a child slot holds a nil node.
	ErrNilNode = errors.New("nil node")

	// ErrCycle is returned when a node is reachable twice, either through a
	// cycle or because two parents share the same child.
	ErrCycle = errors.New("node reachable more than once")

	// ErrDuplicateAttribute is returned when an element declares the same attribute twice.
	ErrDuplicateAttribute = errors.New("duplicate attribute")

	// ErrMissingBounds is returned when a non-root node has no bounds.
	ErrMissingBounds = errors.New("missing bounds")

	// ErrInvalidBounds is returned when bounds are inverted or unparsable.
	ErrInvalidBounds = errors.New("invalid bounds")

	// ErrMissingTag is returned when a node has an empty tag.
	ErrMissingTag = errors.New("missing tag")
)

// Configuration errors wrapped by ConfigurationError.
var (
	// ErrInvalidWeight is returned for a negative, NaN or infinite weight,
	// or an added/removed weight below 1.
	ErrInvalidWeight = errors.New("invalid weight")

	// ErrNegativeThreshold is returned when a confidence threshold is negative or NaN.
	ErrNegativeThreshold = errors.New("threshold must be non-negative")

	// ErrInvalidTolerance is returned when the bounds tolerance is negative.
	ErrInvalidTolerance = errors.New("tolerance must be non-negative")

	// ErrEmptyCosmeticSet is returned when an empty cosmetic set is supplied
	// without explicitly allowing it.
	ErrEmptyCosmeticSet = errors.New("empty cosmetic attribute set")
)

// MalformedTreeError reports an input tree that violates the tree invariants.
// It is raised before any comparison work starts.
type MalformedTreeError struct {
	// Tree names the offending input ("base" or "candidate"), if known.
	Tree string

	// Path locates the offending node.
	Path Path

	// Err is one of the tree shape sentinel errors.
	Err error
}

func (e *MalformedTreeError) Error() string {
	where := e.Path.String()
	if where == "" {
		where = "/"
	}
	if e.Tree != "" {
		return fmt.Sprintf("malformed %s tree at %s: %v", e.Tree, where, e.Err)
	}
	return fmt.Sprintf("malformed tree at %s: %v", where, e.Err)
}

func (e *MalformedTreeError) Unwrap() error { return e.Err }

// ConfigurationError reports an invalid comparison option.
type ConfigurationError struct {
	// Field names the offending option, e.g. "score.weights.added".
	Field string

	// Err is one of the configuration sentinel errors.
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
