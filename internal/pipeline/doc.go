// Package pipeline runs comparisons as a sequence of steps.
//
// A comparison job starts as a *model.Comparison holding the two capture
// sources. The default pipeline loads and fingerprints both captures,
// runs the diff engine, evaluates the CI gate and stores the result in
// the history database. Each step receives the job and fills in its part.
//
// BatchProcessor runs the pipeline for many screens concurrently with
// errgroup, keeping results in input order.
package pipeline
