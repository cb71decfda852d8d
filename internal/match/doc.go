// Package match resolves node identity between two UI hierarchy snapshots.
//
// Snapshots carry no stable identifiers, so identity is inferred from several
// signals: resource id, text and content description, on-screen position and
// tree position. Each signal sits behind the Signal interface and contributes
// to a weighted composite similarity. The Matcher then builds a partial
// one-to-one mapping by greedily committing the most similar same-tag pairs
// whose similarity strictly exceeds the configured confidence threshold.
//
// Matching is deterministic: ties are broken by resource id agreement, then
// by spatial distance, then by base pre-order, then by candidate pre-order.
package match
