package dag

import (
	"fmt"
	"math/rand"
)

// Random generates a random DAG with n nodes named "N0".."N<n-1>".
// Each forward pair (i, j) with i < j becomes an edge with probability p,
// so the result is acyclic by construction. The same seed always yields
// the same graph.
func Random(n int, p float64, seed int64) *Graph {
	rng := rand.New(rand.NewSource(seed))

	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("N%d", i)
	}

	var edges []Edge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Float64() < p {
				edges = append(edges, Edge{From: ids[i], To: ids[j]})
			}
		}
	}

	// Forward edges only, so Build cannot fail.
	g, _ := Build(edges, WithNodes(ids...))
	return g
}
