// Package dag provides the immutable directed-acyclic-graph value type that
// all engines operate on.
//
// A [Graph] is constructed once from an edge list via [Build] and never
// mutated afterwards. Transformations (see the transform subpackage) return
// new Graph values, so callers always hold explicit original/optimized pairs
// instead of sharing hidden mutable state.
//
// Acyclicity is validated at construction using Kahn's algorithm. When the
// input contains a cycle, [Build] returns a [*CycleError] carrying one
// concrete offending node sequence.
//
// All accessors return deterministically ordered results (node IDs sorted
// lexicographically, edges sorted by endpoint pair), so downstream analyses
// are independent of edge insertion order.
package dag
