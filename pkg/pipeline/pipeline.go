// Package pipeline orchestrates the optimize → evaluate → persist flow.
//
// The [Runner] ties the pure engines together with storage and logging so
// the CLI and the API share one execution path. Optimized graphs are cached
// in the store under a content-addressed key; snapshot records persist under
// their snapshot ID.
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dagopt/pkg/dag"
	"github.com/matzehuels/dagopt/pkg/dag/transform"
	"github.com/matzehuels/dagopt/pkg/snapshot"
)

// Default TTLs for stored payloads.
const (
	// TTLGraph bounds cached optimization results.
	TTLGraph = 24 * time.Hour

	// TTLSnapshot is zero: snapshot records never expire.
	TTLSnapshot = time.Duration(0)
)

// Options configures a pipeline run.
type Options struct {
	// SkipReduction disables the transitive reduction stage.
	SkipReduction bool

	// SkipMerge disables the equivalent-node merge stage.
	SkipMerge bool

	// Persist stores the snapshot record after evaluation.
	Persist bool

	// Refresh bypasses the cached optimization result.
	Refresh bool

	// Attrs annotates the snapshot record (seed, source file).
	Attrs map[string]string

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger
}

// Stats records per-stage timings of a run.
type Stats struct {
	OptimizeTime time.Duration
	EvaluateTime time.Duration
	PersistTime  time.Duration
}

// CacheInfo reports which stages were served from the store.
type CacheInfo struct {
	OptimizeHit bool
}

// Result is the outcome of a pipeline run.
type Result struct {
	Original  *dag.Graph
	Optimized *dag.Graph

	// Transform summarizes what the optimization changed.
	Transform transform.Result

	// Snapshot is the before/after record, including changed metrics.
	Snapshot *snapshot.Metadata

	Stats     Stats
	CacheInfo CacheInfo
}
