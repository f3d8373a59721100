// Package transform implements reachability-preserving optimizations over
// [dag.Graph] values: transitive reduction and structural node merging.
//
// All transforms are pure functions. They take a Graph value and return a
// new Graph value, never mutating their input, so callers keep explicit
// original/optimized pairs.
//
// [Reduce] removes every edge whose endpoints stay connected through an
// alternate path, yielding the unique minimal edge set with the same
// transitive closure. [MergeEquivalent] collapses nodes that share identical
// predecessor and successor sets. [Optimize] chains both and reports what
// changed in a [Result].
package transform
