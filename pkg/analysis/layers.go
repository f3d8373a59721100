package analysis

import "github.com/matzehuels/dagopt/pkg/dag"

// LayerResult partitions a graph's nodes into topological layers: all nodes
// in one layer can execute in parallel once the previous layers complete.
type LayerResult struct {
	// Layers maps layer index (0-based, contiguous) to its sorted nodes.
	// layer(v) = 0 for sources, else 1 + max layer over predecessors.
	Layers [][]string `json:"layers"`
	// Width is the size of the largest layer: the peak parallelism the
	// dependency structure admits.
	Width int `json:"width"`
	// Depth is the number of layers: the length of the forced sequential
	// spine.
	Depth int `json:"depth"`
	// WidthEfficiency is (|V|/depth) / width: how evenly nodes spread
	// across layers relative to the widest one. 1.0 means perfectly even.
	WidthEfficiency float64 `json:"width_efficiency"`
}

// Layers computes the topological layer structure of g.
// Returns [dag.ErrNilGraph] if g is nil.
func Layers(g *dag.Graph) (*LayerResult, error) {
	if g == nil {
		return nil, dag.ErrNilGraph
	}

	assignment := make(map[string]int, g.NodeCount())
	depth := 0
	for _, v := range g.TopologicalOrder() {
		layer := 0
		for _, u := range g.Predecessors(v) {
			if assignment[u]+1 > layer {
				layer = assignment[u] + 1
			}
		}
		assignment[v] = layer
		if layer+1 > depth {
			depth = layer + 1
		}
	}

	res := &LayerResult{Layers: make([][]string, depth), Depth: depth}
	// Nodes() is sorted, so each layer comes out sorted too.
	for _, v := range g.Nodes() {
		i := assignment[v]
		res.Layers[i] = append(res.Layers[i], v)
	}
	for _, layer := range res.Layers {
		if len(layer) > res.Width {
			res.Width = len(layer)
		}
	}
	if res.Width > 0 {
		res.WidthEfficiency = (float64(g.NodeCount()) / float64(res.Depth)) / float64(res.Width)
	}
	return res, nil
}
