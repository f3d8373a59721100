package api

import (
	"github.com/matzehuels/dagopt/pkg/analysis"
	"github.com/matzehuels/dagopt/pkg/dag"
	"github.com/matzehuels/dagopt/pkg/errors"
)

// EdgeInput is the wire format for a single edge.
type EdgeInput struct {
	Source  string   `json:"source"`
	Target  string   `json:"target"`
	Classes []string `json:"classes,omitempty"`
}

// GraphInput is the request body for endpoints taking a raw edge list.
type GraphInput struct {
	Edges []EdgeInput `json:"edges"`
}

// OptimizeRequest configures an optimization run.
type OptimizeRequest struct {
	Edges               []EdgeInput `json:"edges"`
	TransitiveReduction *bool       `json:"transitive_reduction,omitempty"`
	MergeNodes          *bool       `json:"merge_nodes,omitempty"`
	Persist             bool        `json:"persist,omitempty"`
}

// AnalyzeRequest selects one analyzer to run over the posted graph.
type AnalyzeRequest struct {
	Edges []EdgeInput `json:"edges"`
	// Kind is one of "metrics", "schedule", "layers", "criticality".
	// Defaults to "metrics".
	Kind string `json:"kind,omitempty"`
}

// RandomDAGRequest parameterizes random graph generation.
type RandomDAGRequest struct {
	NumNodes        int     `json:"num_nodes"`
	EdgeProbability float64 `json:"edge_probability"`
	Seed            *int64  `json:"seed,omitempty"`
}

// ValidateResponse reports whether the posted edges form a DAG.
type ValidateResponse struct {
	IsDAG         bool        `json:"is_dag"`
	NumNodes      int         `json:"num_nodes"`
	NumEdges      int         `json:"num_edges"`
	NumComponents int         `json:"num_components,omitempty"`
	Cycle         []string    `json:"cycle,omitempty"`
	Edges         []EdgeInput `json:"edges,omitempty"`
}

// GraphPayload is one side of an optimization response.
type GraphPayload struct {
	Edges   []EdgeInput        `json:"edges"`
	Metrics *analysis.Snapshot `json:"metrics"`
}

// OptimizeResponse is the response body of POST /api/optimize.
type OptimizeResponse struct {
	Success                bool                       `json:"success"`
	Original               GraphPayload               `json:"original"`
	Optimized              GraphPayload               `json:"optimized"`
	ChangedMetrics         map[string]snapshotChanged `json:"changed_metrics"`
	TransitiveEdgesRemoved int                        `json:"transitive_edges_removed"`
	NodesMerged            int                        `json:"nodes_merged"`
	MergedGroups           map[string][]string        `json:"merged_groups,omitempty"`
	SnapshotID             string                     `json:"snapshot_id,omitempty"`
	Timestamp              string                     `json:"timestamp"`
}

type snapshotChanged struct {
	Original  analysis.Value `json:"original"`
	Optimized analysis.Value `json:"optimized"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// toGraph validates the wire edges and builds a graph from them.
func toGraph(inputs []EdgeInput) (*dag.Graph, error) {
	edges := make([]dag.Edge, 0, len(inputs))
	for _, e := range inputs {
		if err := errors.ValidateEdgeEndpoints(e.Source, e.Target); err != nil {
			return nil, err
		}
		edges = append(edges, dag.Edge{From: e.Source, To: e.Target, Labels: e.Classes})
	}
	return dag.Build(edges)
}

// fromEdges converts graph edges back to the wire format.
func fromEdges(edges []dag.Edge) []EdgeInput {
	out := make([]EdgeInput, len(edges))
	for i, e := range edges {
		out[i] = EdgeInput{Source: e.From, Target: e.To, Classes: e.Labels}
	}
	return out
}
