package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and allow callers to use
// errors.Is() for programmatic error handling.
var (
	// ErrNoInput is returned when no capture to compare is specified.
	ErrNoInput = errors.New("no input specified: provide a base and a candidate capture")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no concurrent comparisons.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidDebounce is returned when the watch debounce window is negative.
	ErrInvalidDebounce = errors.New("invalid debounce: must be non-negative")
)
