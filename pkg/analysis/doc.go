// Package analysis computes read-only analytics over [dag.Graph] values:
// the structural/efficiency metrics suite, PERT/CPM critical-path
// scheduling, topological layering, and edge-criticality classification.
//
// Every analyzer is a pure function of its input graph. Results are
// immutable value objects computed fresh per call - nothing is cached
// across graphs or invocations.
//
// Metrics degrade per key rather than per call: a metric that is undefined
// for the given graph shape (say, shortest path on a single-node graph)
// reports the [NotApplicable] sentinel while every other metric still
// computes. See [Evaluate].
package analysis
