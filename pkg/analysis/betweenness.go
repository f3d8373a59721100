package analysis

import "github.com/matzehuels/dagopt/pkg/dag"

// Betweenness computes betweenness centrality for every node using
// Brandes' algorithm over unweighted shortest paths. A node's score is the
// number of shortest paths between other node pairs that pass through it,
// accumulated fractionally when pairs have several shortest paths.
//
// Runs in O(V·E). Endpoints of a path do not count toward its score.
func Betweenness(g *dag.Graph) map[string]float64 {
	centrality := make(map[string]float64, g.NodeCount())
	for _, id := range g.Nodes() {
		centrality[id] = 0
	}

	for _, src := range g.Nodes() {
		// BFS from src recording shortest-path counts and predecessors.
		var stack []string
		preds := make(map[string][]string)
		sigma := map[string]float64{src: 1}
		dist := map[string]int{src: 0}

		queue := []string{src}
		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]
			stack = append(stack, curr)
			for _, next := range g.Successors(curr) {
				if _, seen := dist[next]; !seen {
					dist[next] = dist[curr] + 1
					queue = append(queue, next)
				}
				if dist[next] == dist[curr]+1 {
					sigma[next] += sigma[curr]
					preds[next] = append(preds[next], curr)
				}
			}
		}

		// Back-propagate dependencies in reverse BFS order.
		delta := make(map[string]float64, len(stack))
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != src {
				centrality[w] += delta[w]
			}
		}
	}
	return centrality
}
