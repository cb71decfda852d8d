// Package model defines the data structures shared by every uidiff package.
//
// This package contains the following main types:
//   - Node: one element of an Android UI hierarchy snapshot
//   - Tree: a read-only pre-order index over a Node tree with derived paths
//   - ChangeRecord: one typed difference between two snapshots
//   - DiffReport: the score and ordered change list of a comparison
//   - Comparison: a comparison job as it flows through the pipeline, reports and history
//
// Trees are treated as immutable once built. Reports are created fresh for every
// comparison and are safe to share between goroutines once returned.
//
// All result types serialize to the stable JSON wire format consumed by CI tooling.
package model
