package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dagopt/pkg/pipeline"
	"github.com/matzehuels/dagopt/pkg/store"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	fs, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	t.Cleanup(func() { fs.Close() })

	logger := log.New(io.Discard)
	return NewServer(pipeline.NewRunner(fs, logger), logger).Router()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %s: %v", w.Body.String(), err)
	}
}

func triangleEdges() []EdgeInput {
	return []EdgeInput{
		{Source: "A", Target: "B"},
		{Source: "B", Target: "C"},
		{Source: "A", Target: "C"},
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]string
	decodeBody(t, w, &body)
	if body["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", body["status"])
	}
	if body["timestamp"] == "" {
		t.Error("timestamp missing")
	}
}

func TestRoot(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]string
	decodeBody(t, w, &body)
	if body["message"] != "DAG Optimizer API" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestValidate_ValidDAG(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/validate", GraphInput{Edges: triangleEdges()})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body)
	}
	var resp ValidateResponse
	decodeBody(t, w, &resp)
	if !resp.IsDAG {
		t.Error("IsDAG = false, want true")
	}
	if resp.NumNodes != 3 || resp.NumEdges != 3 || resp.NumComponents != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/3/1", resp.NumNodes, resp.NumEdges, resp.NumComponents)
	}
}

func TestValidate_Cycle(t *testing.T) {
	router := newTestRouter(t)

	edges := []EdgeInput{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "a"},
	}
	w := doJSON(t, router, http.MethodPost, "/api/validate", GraphInput{Edges: edges})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body)
	}
	var resp ValidateResponse
	decodeBody(t, w, &resp)
	if resp.IsDAG {
		t.Error("IsDAG = true for cyclic input")
	}
	if len(resp.Cycle) < 3 || resp.Cycle[0] != resp.Cycle[len(resp.Cycle)-1] {
		t.Errorf("Cycle = %v, want a closed walk", resp.Cycle)
	}
}

func TestValidate_BadNodeID(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/validate", GraphInput{
		Edges: []EdgeInput{{Source: "", Target: "b"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body)
	}
	var resp ErrorResponse
	decodeBody(t, w, &resp)
	if resp.Error.Code != "INVALID_NODE" {
		t.Errorf("code = %q, want INVALID_NODE", resp.Error.Code)
	}
}

func TestOptimize(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/optimize", OptimizeRequest{Edges: triangleEdges()})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body)
	}
	var resp OptimizeResponse
	decodeBody(t, w, &resp)
	if !resp.Success {
		t.Error("Success = false")
	}
	if len(resp.Original.Edges) != 3 || len(resp.Optimized.Edges) != 2 {
		t.Errorf("edges = %d/%d, want 3/2", len(resp.Original.Edges), len(resp.Optimized.Edges))
	}
	if resp.TransitiveEdgesRemoved != 1 {
		t.Errorf("TransitiveEdgesRemoved = %d, want 1", resp.TransitiveEdgesRemoved)
	}
	if _, ok := resp.ChangedMetrics["num_edges"]; !ok {
		t.Errorf("ChangedMetrics missing num_edges: %v", resp.ChangedMetrics)
	}
	if resp.SnapshotID != "" {
		t.Error("SnapshotID set without persist")
	}
}

func TestOptimize_SkipAll(t *testing.T) {
	router := newTestRouter(t)

	f := false
	w := doJSON(t, router, http.MethodPost, "/api/optimize", OptimizeRequest{
		Edges:               triangleEdges(),
		TransitiveReduction: &f,
		MergeNodes:          &f,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body)
	}
	var resp OptimizeResponse
	decodeBody(t, w, &resp)
	if len(resp.Optimized.Edges) != 3 {
		t.Errorf("optimized edges = %d, want 3", len(resp.Optimized.Edges))
	}
}

func TestOptimize_Cycle(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/optimize", OptimizeRequest{
		Edges: []EdgeInput{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "a"},
		},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body)
	}
	var resp ErrorResponse
	decodeBody(t, w, &resp)
	if resp.Error.Code != "GRAPH_CYCLE" {
		t.Errorf("code = %q, want GRAPH_CYCLE", resp.Error.Code)
	}
}

func TestAnalyze_Schedule(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/analyze", AnalyzeRequest{
		Edges: []EdgeInput{
			{Source: "A", Target: "B"},
			{Source: "B", Target: "C"},
		},
		Kind: "schedule",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body)
	}

	var resp struct {
		Kind   string `json:"kind"`
		Result struct {
			Makespan int      `json:"makespan"`
			Path     []string `json:"path"`
		} `json:"result"`
	}
	decodeBody(t, w, &resp)
	if resp.Kind != "schedule" || resp.Result.Makespan != 2 {
		t.Errorf("got kind %q makespan %d, want schedule / 2", resp.Kind, resp.Result.Makespan)
	}
}

func TestAnalyze_UnknownKind(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/analyze", AnalyzeRequest{
		Edges: triangleEdges(),
		Kind:  "bogus",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body)
	}
}

func TestRandomDAG(t *testing.T) {
	router := newTestRouter(t)

	seed := int64(42)
	req := RandomDAGRequest{NumNodes: 10, EdgeProbability: 0.5, Seed: &seed}

	w1 := doJSON(t, router, http.MethodPost, "/api/random-dag", req)
	w2 := doJSON(t, router, http.MethodPost, "/api/random-dag", req)
	if w1.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w1.Code, w1.Body)
	}
	if w1.Body.String() != w2.Body.String() {
		t.Error("same seed produced different graphs")
	}

	var resp GraphInput
	decodeBody(t, w1, &resp)
	// Nodes are N0..N9 and edges always point from lower to higher index.
	for _, e := range resp.Edges {
		if e.Source >= e.Target {
			t.Errorf("edge %s -> %s breaks the forward-only invariant", e.Source, e.Target)
		}
	}
}

func TestRandomDAG_InvalidParams(t *testing.T) {
	router := newTestRouter(t)

	for _, req := range []RandomDAGRequest{
		{NumNodes: 0, EdgeProbability: 0.5},
		{NumNodes: maxRandomNodes + 1, EdgeProbability: 0.5},
		{NumNodes: 10, EdgeProbability: 1.5},
	} {
		w := doJSON(t, router, http.MethodPost, "/api/random-dag", req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d for %+v, want 400", w.Code, req)
		}
	}
}

func TestSnapshots_PersistListGet(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/optimize", OptimizeRequest{
		Edges:   triangleEdges(),
		Persist: true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body)
	}
	var opt OptimizeResponse
	decodeBody(t, w, &opt)
	if opt.SnapshotID == "" {
		t.Fatal("SnapshotID missing after persist")
	}

	w = doJSON(t, router, http.MethodGet, "/api/snapshots", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d: %s", w.Code, w.Body)
	}
	var list map[string][]string
	decodeBody(t, w, &list)
	found := false
	for _, id := range list["snapshots"] {
		if id == opt.SnapshotID {
			found = true
		}
	}
	if !found {
		t.Errorf("snapshot %s not listed in %v", opt.SnapshotID, list["snapshots"])
	}

	w = doJSON(t, router, http.MethodGet, "/api/snapshots/"+opt.SnapshotID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d: %s", w.Code, w.Body)
	}
	var snap struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &snap)
	if snap.ID != opt.SnapshotID {
		t.Errorf("snapshot id = %q, want %q", snap.ID, opt.SnapshotID)
	}
}

func TestSnapshots_NotFound(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/snapshots/a3bb189e-8bf9-3888-9912-ace4e6543002", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", w.Code, w.Body)
	}
	var resp ErrorResponse
	decodeBody(t, w, &resp)
	if resp.Error.Code != "SNAPSHOT_NOT_FOUND" {
		t.Errorf("code = %q, want SNAPSHOT_NOT_FOUND", resp.Error.Code)
	}
}

func TestSnapshots_InvalidID(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/snapshots/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body)
	}
}

func TestMalformedBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/validate", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body)
	}
}
