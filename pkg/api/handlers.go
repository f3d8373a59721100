package api

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/dagopt/pkg/analysis"
	"github.com/matzehuels/dagopt/pkg/dag"
	"github.com/matzehuels/dagopt/pkg/errors"
	"github.com/matzehuels/dagopt/pkg/pipeline"
	"github.com/matzehuels/dagopt/pkg/snapshot"
)

// maxRandomNodes bounds random DAG generation requests.
const maxRandomNodes = 500

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req GraphInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp := ValidateResponse{
		NumNodes: countNodes(req.Edges),
		NumEdges: countEdges(req.Edges),
	}

	_, err := toGraph(req.Edges)
	var cycleErr *dag.CycleError
	switch {
	case err == nil:
		resp.IsDAG = true
		resp.NumComponents = countComponents(req.Edges)
	case stderrors.As(err, &cycleErr):
		resp.Cycle = cycleErr.Cycle
	default:
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	g, err := toGraph(req.Edges)
	if err != nil {
		writeError(w, graphError(err))
		return
	}

	opts := pipeline.Options{
		SkipReduction: req.TransitiveReduction != nil && !*req.TransitiveReduction,
		SkipMerge:     req.MergeNodes != nil && !*req.MergeNodes,
		Persist:       req.Persist,
		Attrs:         map[string]string{"source": "api"},
		Logger:        s.logger,
	}

	result, err := s.runner.Execute(r.Context(), g, opts)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "optimization failed"))
		return
	}

	snap := result.Snapshot
	resp := OptimizeResponse{
		Success: true,
		Original: GraphPayload{
			Edges:   fromEdges(snap.OriginalEdges),
			Metrics: snap.OriginalMetrics,
		},
		Optimized: GraphPayload{
			Edges:   fromEdges(snap.OptimizedEdges),
			Metrics: snap.OptimizedMetrics,
		},
		ChangedMetrics:         make(map[string]snapshotChanged, len(snap.ChangedMetrics)),
		TransitiveEdgesRemoved: result.Transform.TransitiveEdgesRemoved,
		NodesMerged:            result.Transform.NodesMerged,
		MergedGroups:           result.Transform.MergedGroups,
		Timestamp:              snap.Timestamp.Format(time.RFC3339),
	}
	for name, ch := range snap.ChangedMetrics {
		resp.ChangedMetrics[name] = snapshotChanged{Original: ch.Original, Optimized: ch.Optimized}
	}
	if req.Persist {
		resp.SnapshotID = snap.ID
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	g, err := toGraph(req.Edges)
	if err != nil {
		writeError(w, graphError(err))
		return
	}

	kind := req.Kind
	if kind == "" {
		kind = "metrics"
	}

	var result any
	switch kind {
	case "metrics":
		result, err = analysis.Evaluate(g)
	case "schedule":
		result, err = analysis.CriticalPath(g)
	case "layers":
		result, err = analysis.Layers(g)
	case "criticality":
		result, err = analysis.EdgeCriticality(g)
	default:
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown analysis kind: %q", kind))
		return
	}
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "analysis failed"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"kind": kind, "result": result})
}

func (s *Server) handleRandomDAG(w http.ResponseWriter, r *http.Request) {
	var req RandomDAGRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.NumNodes < 1 || req.NumNodes > maxRandomNodes {
		writeError(w, errors.New(errors.ErrCodeInvalidInput,
			"num_nodes must be between 1 and %d", maxRandomNodes))
		return
	}
	if req.EdgeProbability < 0 || req.EdgeProbability > 1 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput,
			"edge_probability must be between 0 and 1"))
		return
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	g := dag.Random(req.NumNodes, req.EdgeProbability, seed)

	writeJSON(w, http.StatusOK, GraphInput{Edges: fromEdges(g.Edges())})
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	keys, err := s.runner.Store.List(r.Context())
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeStore, err, "failed to list snapshots"))
		return
	}

	// Only snapshot records carry UUID keys; optimization cache entries
	// use content-hash keys and are filtered out.
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if errors.ValidateSnapshotID(key) == nil {
			ids = append(ids, key)
		}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"snapshots": ids})
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateSnapshotID(id); err != nil {
		writeError(w, err)
		return
	}

	data, ok, err := s.runner.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeStore, err, "failed to load snapshot"))
		return
	}
	if !ok {
		writeError(w, errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %s not found", id))
		return
	}

	m, err := snapshot.Decode(data)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeStore, err, "corrupt snapshot %s", id))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// graphError maps graph construction failures onto structured codes.
func graphError(err error) error {
	var cycleErr *dag.CycleError
	if stderrors.As(err, &cycleErr) {
		return errors.Wrap(errors.ErrCodeGraphCycle, err, "graph contains a cycle")
	}
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid graph")
}

// countNodes counts distinct endpoints in the raw edge list.
func countNodes(edges []EdgeInput) int {
	seen := make(map[string]struct{}, len(edges)*2)
	for _, e := range edges {
		seen[e.Source] = struct{}{}
		seen[e.Target] = struct{}{}
	}
	return len(seen)
}

// countEdges counts distinct (source, target) pairs.
func countEdges(edges []EdgeInput) int {
	seen := make(map[[2]string]struct{}, len(edges))
	for _, e := range edges {
		seen[[2]string{e.Source, e.Target}] = struct{}{}
	}
	return len(seen)
}

// countComponents runs union-find over the raw edge list, treating edges
// as undirected.
func countComponents(edges []EdgeInput) int {
	parent := make(map[string]string)
	var find func(string) string
	find = func(x string) string {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	add := func(x string) {
		if _, ok := parent[x]; !ok {
			parent[x] = x
		}
	}

	for _, e := range edges {
		add(e.Source)
		add(e.Target)
		parent[find(e.Source)] = find(e.Target)
	}

	components := 0
	for x := range parent {
		if find(x) == x {
			components++
		}
	}
	return components
}
