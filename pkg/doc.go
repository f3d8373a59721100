// Package pkg provides the core libraries for dagopt DAG optimization.
//
// # Overview
//
// dagopt takes a directed acyclic graph, removes edges that are transitively
// implied, merges nodes that are structurally equivalent, and reports how the
// graph's scheduling and structure metrics changed. The pkg directory is
// organized into five main areas:
//
//  1. [dag] - The immutable graph value and its transforms (reduce, merge)
//  2. [analysis] - Metrics, scheduling, layering, and edge criticality
//  3. [pipeline] - Orchestration (optimize → evaluate → persist)
//  4. [store], [export] - Persistence backends and the MongoDB exporter
//  5. [api], [render] - The HTTP surface and graphviz rendering
//
// # Architecture
//
// The typical data flow through dagopt:
//
//	Edge List (file, API request, random generator)
//	         ↓
//	dag.Build             validate and index the DAG
//	         ↓
//	transform.Reduce      drop transitively implied edges
//	transform.Merge       collapse equivalent nodes
//	         ↓
//	analysis.Evaluate     metrics for the before/after pair
//	         ↓
//	snapshot.New          record what changed
//	         ↓
//	store / export        persist or push downstream
//
// Supporting packages cut across the flow: [errors] defines the structured
// error codes shared by the CLI and API, [observability] carries the hook
// interfaces the pipeline emits into, [config] loads the TOML configuration,
// and [buildinfo] exposes build-time version metadata.
package pkg
