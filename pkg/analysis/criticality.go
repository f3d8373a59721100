package analysis

import (
	"github.com/matzehuels/dagopt/pkg/dag"
	"github.com/matzehuels/dagopt/pkg/dag/transform"
)

// EdgeCriticalityResult classifies every edge of a graph by whether the
// transitive reduction keeps it.
type EdgeCriticalityResult struct {
	// Critical edges survive reduction: removing one breaks reachability
	// between its endpoints.
	Critical []dag.Edge `json:"critical"`
	// Redundant edges fall out of the reduction: an alternate path covers
	// each of them.
	Redundant []dag.Edge `json:"redundant"`
	// Ratio is |critical| / |edges|, or 0 for an edgeless graph.
	Ratio float64 `json:"ratio"`
}

// EdgeCriticality computes the transitive reduction of g and classifies
// each of g's edges as critical (kept by the reduction) or redundant
// (covered by an alternate path). Both slices keep the graph's sorted edge
// order. Returns [dag.ErrNilGraph] if g is nil.
func EdgeCriticality(g *dag.Graph) (*EdgeCriticalityResult, error) {
	if g == nil {
		return nil, dag.ErrNilGraph
	}

	reduced, err := transform.Reduce(g)
	if err != nil {
		return nil, err
	}

	res := &EdgeCriticalityResult{}
	for _, e := range g.Edges() {
		if reduced.HasEdge(e.From, e.To) {
			res.Critical = append(res.Critical, e)
		} else {
			res.Redundant = append(res.Redundant, e)
		}
	}
	if g.EdgeCount() > 0 {
		res.Ratio = float64(len(res.Critical)) / float64(g.EdgeCount())
	}
	return res, nil
}
