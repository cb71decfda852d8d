// Package diff compares two UI hierarchy snapshots.
//
// Compare is the single entry point: it validates the options and both
// trees, matches nodes across the trees, extracts typed change records,
// scores them and assembles a model.DiffReport. It is a pure function with
// no shared mutable state and may be called concurrently on independent
// inputs. Engine keeps validated options for repeated comparisons.
package diff
