package transform

import (
	"github.com/matzehuels/dagopt/pkg/dag"
)

// denseThreshold is the density ρ = |E| / (|V|·(|V|−1)) above which Reduce
// switches from per-source DFS reachability to a full closure matrix. Sparse
// dependency graphs stay well below this; the matrix variant only pays off
// once most node pairs are connected.
const denseThreshold = 0.1

// Reduce returns the transitive reduction of g: the unique minimal edge set
// with the same transitive closure. An edge (u, v) survives iff no other
// successor of u can still reach v.
//
// The strategy adapts to graph density:
//   - ρ < 0.1: DFS-based reachability per source, memoized, O(V·E)
//   - ρ ≥ 0.1: Floyd–Warshall-style closure matrix, O(V³)
//
// Labels of removed edges are discarded; surviving edges keep theirs.
// Reduce is idempotent: reducing an already reduced graph is a no-op.
// Returns [dag.ErrNilGraph] if g is nil.
func Reduce(g *dag.Graph) (*dag.Graph, error) {
	if g == nil {
		return nil, dag.ErrNilGraph
	}

	nodes := g.Nodes()
	index := make(map[string]int, len(nodes))
	for i, id := range nodes {
		index[id] = i
	}

	adjacency := make([][]int, len(nodes))
	for _, e := range g.Edges() {
		adjacency[index[e.From]] = append(adjacency[index[e.From]], index[e.To])
	}

	var reaches func(from, to int) bool
	if g.Density() < denseThreshold {
		reaches = sparseReachability(adjacency)
	} else {
		matrix := denseReachability(adjacency)
		reaches = func(from, to int) bool { return matrix[from][to] }
	}

	var kept []dag.Edge
	for _, e := range g.Edges() {
		src, dst := index[e.From], index[e.To]
		redundant := false
		for _, intermediate := range adjacency[src] {
			if intermediate != dst && reaches(intermediate, dst) {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, e)
		}
	}

	return dag.Build(kept, dag.WithNodes(nodes...))
}

// sparseReachability returns a reachability predicate backed by memoized
// per-source DFS. Reachability sets are only materialized for sources that
// are actually queried.
func sparseReachability(adjacency [][]int) func(from, to int) bool {
	memo := make(map[int]map[int]bool, len(adjacency))

	var visit func(set map[int]bool, curr int)
	visit = func(set map[int]bool, curr int) {
		if set[curr] {
			return
		}
		set[curr] = true
		for _, next := range adjacency[curr] {
			visit(set, next)
		}
	}

	return func(from, to int) bool {
		set, ok := memo[from]
		if !ok {
			set = make(map[int]bool)
			visit(set, from)
			memo[from] = set
		}
		return set[to]
	}
}

// denseReachability computes the full closure matrix. reachable[i][j] is
// true iff j is reachable from i (including i itself).
func denseReachability(adjacency [][]int) [][]bool {
	n := len(adjacency)
	reachable := make([][]bool, n)
	for i := range reachable {
		reachable[i] = make([]bool, n)
		reachable[i][i] = true
		for _, j := range adjacency[i] {
			reachable[i][j] = true
		}
	}

	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if !reachable[i][k] {
				continue
			}
			for j := 0; j < n; j++ {
				if reachable[k][j] {
					reachable[i][j] = true
				}
			}
		}
	}
	return reachable
}
