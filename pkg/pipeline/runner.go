package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dagopt/pkg/dag"
	"github.com/matzehuels/dagopt/pkg/dag/transform"
	"github.com/matzehuels/dagopt/pkg/observability"
	"github.com/matzehuels/dagopt/pkg/snapshot"
	"github.com/matzehuels/dagopt/pkg/store"
)

// Runner encapsulates pipeline execution with snapshot storage.
//
// The Runner is stateless except for the store and logger - it doesn't
// hold pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Store  store.Store
	Logger *log.Logger
}

// NewRunner creates a runner with the given store.
// If s is nil, a NullStore is used (persistence disabled).
func NewRunner(s store.Store, logger *log.Logger) *Runner {
	if s == nil {
		s = store.NewNullStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:  s,
		Logger: logger,
	}
}

// Execute runs the complete optimize → evaluate → persist pipeline.
func (r *Runner) Execute(ctx context.Context, g *dag.Graph, opts Options) (*Result, error) {
	if g == nil {
		return nil, dag.ErrNilGraph
	}
	logger := r.logger(opts)

	result := &Result{Original: g}

	// Stage 1: Optimize
	optimizeStart := time.Now()
	optimized, tr, hit, err := r.optimizeWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	result.Optimized = optimized
	result.Transform = tr
	result.Stats.OptimizeTime = time.Since(optimizeStart)
	result.CacheInfo.OptimizeHit = hit

	logger.Info("optimized graph",
		"edges_removed", tr.TransitiveEdgesRemoved,
		"nodes_merged", tr.NodesMerged,
		"cached", hit,
		"duration", result.Stats.OptimizeTime)

	// Stage 2: Evaluate
	evaluateStart := time.Now()
	observability.Engine().OnEvaluateStart(ctx, g.NodeCount(), g.EdgeCount())
	snap, err := snapshot.New(g, optimized, opts.Attrs)
	metricCount := 0
	if snap != nil {
		metricCount = snap.OriginalMetrics.Len()
	}
	observability.Engine().OnEvaluateComplete(ctx, metricCount, time.Since(evaluateStart), err)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	result.Snapshot = snap
	result.Stats.EvaluateTime = time.Since(evaluateStart)

	logger.Info("evaluated metrics",
		"metrics", metricCount,
		"changed", len(snap.ChangedMetrics),
		"duration", result.Stats.EvaluateTime)

	// Stage 3: Persist
	if opts.Persist {
		persistStart := time.Now()
		if err := r.persist(ctx, snap); err != nil {
			return nil, fmt.Errorf("persist: %w", err)
		}
		result.Stats.PersistTime = time.Since(persistStart)

		logger.Info("persisted snapshot",
			"id", snap.ID,
			"duration", result.Stats.PersistTime)
	}

	return result, nil
}

// cachedOptimization is the store payload for an optimization result.
type cachedOptimization struct {
	Nodes  []string            `json:"nodes"`
	Edges  []dag.Edge          `json:"edges"`
	Result cachedTransformStat `json:"result"`
}

type cachedTransformStat struct {
	TransitiveEdgesRemoved int                 `json:"transitive_edges_removed"`
	NodesMerged            int                 `json:"nodes_merged"`
	MergedGroups           map[string][]string `json:"merged_groups,omitempty"`
}

// optimizeWithCacheInfo runs the reduce and merge stages, serving repeated
// runs over identical graphs from the store.
func (r *Runner) optimizeWithCacheInfo(ctx context.Context, g *dag.Graph, opts Options) (*dag.Graph, transform.Result, bool, error) {
	key := optimizeKey(g, opts)

	if !opts.Refresh {
		if data, hit, err := r.Store.Get(ctx, key); err == nil && hit {
			if optimized, tr, err := decodeOptimization(data); err == nil {
				observability.Store().OnStoreHit(ctx, "optimize")
				return optimized, tr, true, nil
			}
		}
		observability.Store().OnStoreMiss(ctx, "optimize")
	}

	optimized, tr, err := r.optimize(ctx, g, opts)
	if err != nil {
		return nil, transform.Result{}, false, err
	}

	if data, err := encodeOptimization(optimized, tr); err == nil {
		if err := r.Store.Set(ctx, key, data, TTLGraph); err == nil {
			observability.Store().OnStoreSet(ctx, "optimize", len(data))
		}
	}

	return optimized, tr, false, nil
}

// optimize runs reduction then merge, emitting engine hooks around each
// stage.
func (r *Runner) optimize(ctx context.Context, g *dag.Graph, opts Options) (*dag.Graph, transform.Result, error) {
	tr := transform.Result{}
	current := g

	if !opts.SkipReduction {
		start := time.Now()
		observability.Engine().OnReduceStart(ctx, current.NodeCount(), current.EdgeCount())
		reduced, err := transform.Reduce(current)
		removed := 0
		if reduced != nil {
			removed = current.EdgeCount() - reduced.EdgeCount()
		}
		observability.Engine().OnReduceComplete(ctx, removed, time.Since(start), err)
		if err != nil {
			return nil, tr, err
		}
		tr.TransitiveEdgesRemoved = removed
		current = reduced
	}

	if !opts.SkipMerge {
		start := time.Now()
		observability.Engine().OnMergeStart(ctx, current.NodeCount())
		merged, groups, err := transform.MergeEquivalent(current)
		mergedCount := 0
		if merged != nil {
			mergedCount = current.NodeCount() - merged.NodeCount()
		}
		observability.Engine().OnMergeComplete(ctx, mergedCount, time.Since(start), err)
		if err != nil {
			return nil, tr, err
		}
		tr.NodesMerged = mergedCount
		tr.MergedGroups = groups
		current = merged
	}

	return current, tr, nil
}

// persist writes the snapshot record to the store.
func (r *Runner) persist(ctx context.Context, snap *snapshot.Metadata) error {
	data, err := snap.Encode()
	if err != nil {
		return err
	}
	if err := r.Store.Set(ctx, snap.ID, data, TTLSnapshot); err != nil {
		return err
	}
	observability.Store().OnStoreSet(ctx, "snapshot", len(data))
	return nil
}

// Close releases resources held by the runner (primarily the store).
func (r *Runner) Close() error {
	if r.Store != nil {
		return r.Store.Close()
	}
	return nil
}

// logger returns the per-run logger, falling back to the runner's.
func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// optimizeKey derives the store key for an optimization run. The skip
// flags are part of the key so partial runs don't shadow full ones.
func optimizeKey(g *dag.Graph, opts Options) string {
	return fmt.Sprintf("%s:reduce=%t:merge=%t",
		store.GraphKey(g), !opts.SkipReduction, !opts.SkipMerge)
}

func encodeOptimization(g *dag.Graph, tr transform.Result) ([]byte, error) {
	return json.Marshal(cachedOptimization{
		Nodes: g.Nodes(),
		Edges: g.Edges(),
		Result: cachedTransformStat{
			TransitiveEdgesRemoved: tr.TransitiveEdgesRemoved,
			NodesMerged:            tr.NodesMerged,
			MergedGroups:           tr.MergedGroups,
		},
	})
}

func decodeOptimization(data []byte) (*dag.Graph, transform.Result, error) {
	var cached cachedOptimization
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, transform.Result{}, err
	}
	g, err := dag.Build(cached.Edges, dag.WithNodes(cached.Nodes...))
	if err != nil {
		return nil, transform.Result{}, err
	}
	return g, transform.Result{
		TransitiveEdgesRemoved: cached.Result.TransitiveEdgesRemoved,
		NodesMerged:            cached.Result.NodesMerged,
		MergedGroups:           cached.Result.MergedGroups,
	}, nil
}
