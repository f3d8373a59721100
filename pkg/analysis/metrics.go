package analysis

import (
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/dagopt/pkg/dag"
	"github.com/matzehuels/dagopt/pkg/dag/transform"
)

// Metric names, in the order Evaluate computes them.
const (
	MetricNumNodes          = "num_nodes"
	MetricNumEdges          = "num_edges"
	MetricNumLeafNodes      = "num_leaf_nodes"
	MetricLongestPath       = "longest_path_length"
	MetricShortestPath      = "shortest_path_length"
	MetricAvgPathLength     = "avg_path_length"
	MetricDiameter          = "diameter"
	MetricAvgDegree         = "avg_degree"
	MetricMaxInDegree       = "max_in_degree"
	MetricMaxOutDegree      = "max_out_degree"
	MetricDegreeDist        = "degree_distribution"
	MetricDegreeEntropy     = "degree_entropy"
	MetricCyclomatic        = "cyclomatic_complexity"
	MetricTopological       = "topological_complexity"
	MetricDensity           = "density"
	MetricRedundancyRatio   = "redundancy_ratio"
	MetricCompactness       = "compactness"
	MetricEfficiencyScore   = "efficiency_score"
	MetricTransitivity      = "transitivity"
	MetricBottleneckNodes   = "bottleneck_nodes"
	MetricCriticalPathNodes = "critical_path"
	MetricNumComponents     = "num_components"
)

// bottleneckTopK is how many high-betweenness nodes Evaluate reports.
const bottleneckTopK = 5

// Evaluate computes the full metrics suite for g and returns it as an
// ordered [Snapshot]. Metrics are computed independently: a metric that is
// undefined for the graph shape yields [NotApplicable] without affecting
// the others. Returns [dag.ErrNilGraph] if g is nil.
func Evaluate(g *dag.Graph) (*Snapshot, error) {
	if g == nil {
		return nil, dag.ErrNilGraph
	}

	s := newSnapshot()
	n, m := g.NodeCount(), g.EdgeCount()
	order := g.TopologicalOrder()

	s.set(MetricNumNodes, IntValue(n))
	s.set(MetricNumEdges, IntValue(m))
	s.set(MetricNumLeafNodes, IntValue(len(g.Sinks())))

	longest := longestPathLength(g, order)
	s.set(MetricLongestPath, IntValue(longest))

	shortest, avg := pathLengthStats(g)
	s.set(MetricShortestPath, shortest)
	s.set(MetricAvgPathLength, avg)
	s.set(MetricDiameter, IntValue(longest))

	s.set(MetricAvgDegree, avgDegree(n, m))
	s.set(MetricMaxInDegree, IntValue(maxDegree(g, g.InDegree)))
	s.set(MetricMaxOutDegree, IntValue(maxDegree(g, g.OutDegree)))

	dist := degreeDistribution(g)
	s.set(MetricDegreeDist, DistValue(dist))
	s.set(MetricDegreeEntropy, degreeEntropy(dist))

	components := weakComponents(g)
	s.set(MetricCyclomatic, IntValue(m-n+2*components))
	s.set(MetricTopological, IntValue(longest))
	s.set(MetricDensity, FloatValue(g.Density()))

	redundancy := redundancyRatio(g)
	s.set(MetricRedundancyRatio, redundancy)
	compactness := compactnessScore(n, m)
	s.set(MetricCompactness, compactness)
	s.set(MetricEfficiencyScore, efficiencyScore(redundancy, g.Density(), compactness))

	s.set(MetricTransitivity, transitivity(g))
	s.set(MetricBottleneckNodes, bottleneckNodes(g))
	s.set(MetricCriticalPathNodes, ListValue(longestPathSequence(g, order)))
	s.set(MetricNumComponents, IntValue(components))

	return s, nil
}

// longestPathLength runs the standard DP over a topological order:
// len(v) = 1 + max(len(u)) over predecessors, 0 for sources.
func longestPathLength(g *dag.Graph, order []string) int {
	lengths := make(map[string]int, len(order))
	longest := 0
	for _, v := range order {
		best := 0
		for _, u := range g.Predecessors(v) {
			if lengths[u]+1 > best {
				best = lengths[u] + 1
			}
		}
		lengths[v] = best
		if best > longest {
			longest = best
		}
	}
	return longest
}

// longestPathSequence reconstructs one longest chain. Ties break toward the
// lexicographically smallest predecessor and endpoint, so the sequence is
// deterministic for a given node/edge set.
func longestPathSequence(g *dag.Graph, order []string) []string {
	if len(order) == 0 {
		return nil
	}

	lengths := make(map[string]int, len(order))
	parent := make(map[string]string, len(order))
	for _, v := range order {
		best, from := 0, ""
		// Predecessors arrive sorted; the first maximum wins, which is the
		// lexicographically smallest among ties.
		for _, u := range g.Predecessors(v) {
			if lengths[u]+1 > best {
				best, from = lengths[u]+1, u
			}
		}
		lengths[v] = best
		parent[v] = from
	}

	end, endLen := "", -1
	for _, v := range g.Nodes() {
		if lengths[v] > endLen {
			end, endLen = v, lengths[v]
		}
	}

	var path []string
	for v := end; v != ""; v = parent[v] {
		path = append(path, v)
	}
	slices.Reverse(path)
	return path
}

// pathLengthStats BFSes from every node and aggregates all positive
// pairwise distances. Both stats are NotApplicable when no node reaches
// another (single nodes, empty graphs, fully disconnected sets).
func pathLengthStats(g *dag.Graph) (shortest, avg Value) {
	minDist, sum, count := math.MaxInt, 0, 0

	for _, src := range g.Nodes() {
		dist := map[string]int{src: 0}
		queue := []string{src}
		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]
			for _, next := range g.Successors(curr) {
				if _, seen := dist[next]; seen {
					continue
				}
				dist[next] = dist[curr] + 1
				queue = append(queue, next)

				sum += dist[next]
				count++
				if dist[next] < minDist {
					minDist = dist[next]
				}
			}
		}
	}

	if count == 0 {
		return NotApplicable, NotApplicable
	}
	return IntValue(minDist), FloatValue(float64(sum) / float64(count))
}

func avgDegree(n, m int) Value {
	if n == 0 {
		return NotApplicable
	}
	return FloatValue(2 * float64(m) / float64(n))
}

func maxDegree(g *dag.Graph, degree func(string) int) int {
	best := 0
	for _, id := range g.Nodes() {
		if d := degree(id); d > best {
			best = d
		}
	}
	return best
}

// degreeDistribution counts nodes by total degree (in + out).
func degreeDistribution(g *dag.Graph) map[int]int {
	dist := make(map[int]int)
	for _, id := range g.Nodes() {
		dist[g.InDegree(id)+g.OutDegree(id)]++
	}
	return dist
}

// degreeEntropy is H = −Σ(fᵢ/n)·log₂(fᵢ/n) over the degree frequency
// distribution. Zero for empty graphs.
func degreeEntropy(dist map[int]int) Value {
	total := 0
	for _, freq := range dist {
		total += freq
	}
	if total == 0 {
		return FloatValue(0)
	}
	entropy := 0.0
	for _, freq := range dist {
		p := float64(freq) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return FloatValue(entropy)
}

// weakComponents counts weakly connected components via union-find over
// the undirected projection.
func weakComponents(g *dag.Graph) int {
	parent := make(map[string]string, g.NodeCount())
	var find func(string) string
	find = func(x string) string {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}

	for _, id := range g.Nodes() {
		parent[id] = id
	}
	for _, e := range g.Edges() {
		parent[find(e.From)] = find(e.To)
	}

	components := 0
	for _, id := range g.Nodes() {
		if find(id) == id {
			components++
		}
	}
	return components
}

// redundancyRatio is (|E| − |TR(G)|) / |E|: the provably removable share
// of the edge set. NotApplicable for edgeless graphs.
func redundancyRatio(g *dag.Graph) Value {
	m := g.EdgeCount()
	if m == 0 {
		return NotApplicable
	}
	reduced, err := transform.Reduce(g)
	if err != nil {
		return NotApplicable
	}
	return FloatValue(float64(m-reduced.EdgeCount()) / float64(m))
}

// compactnessScore is 1 − |E|/E_max with E_max = n(n−1)/2.
// NotApplicable for graphs with fewer than two nodes.
func compactnessScore(n, m int) Value {
	if n < 2 {
		return NotApplicable
	}
	max := float64(n*(n-1)) / 2
	return FloatValue(1 - float64(m)/max)
}

// efficiencyScore is the mean of (1 − redundancy), (1 − density) and
// compactness. NotApplicable whenever one of its inputs is.
func efficiencyScore(redundancy Value, density float64, compactness Value) Value {
	r, ok := redundancy.Float()
	if !ok {
		return NotApplicable
	}
	c, ok := compactness.Float()
	if !ok {
		return NotApplicable
	}
	return FloatValue(((1 - r) + (1 - density) + c) / 3)
}

// transitivity is the global clustering coefficient of the undirected
// projection: 3·triangles / connected triples. NotApplicable when the
// graph has no connected triples.
func transitivity(g *dag.Graph) Value {
	neighbors := make(map[string]map[string]bool, g.NodeCount())
	for _, id := range g.Nodes() {
		neighbors[id] = make(map[string]bool)
	}
	for _, e := range g.Edges() {
		neighbors[e.From][e.To] = true
		neighbors[e.To][e.From] = true
	}

	triangles, triples := 0, 0
	for _, id := range g.Nodes() {
		adj := make([]string, 0, len(neighbors[id]))
		for nb := range neighbors[id] {
			adj = append(adj, nb)
		}
		d := len(adj)
		triples += d * (d - 1) / 2
		for i := 0; i < d; i++ {
			for j := i + 1; j < d; j++ {
				if neighbors[adj[i]][adj[j]] {
					triangles++
				}
			}
		}
	}

	if triples == 0 {
		return NotApplicable
	}
	// Each triangle was counted once per corner.
	return FloatValue(float64(triangles) / float64(triples))
}

// bottleneckNodes returns the top-k nodes by betweenness centrality,
// highest first, ties broken lexicographically.
func bottleneckNodes(g *dag.Graph) Value {
	if g.NodeCount() == 0 {
		return ListValue(nil)
	}

	centrality := Betweenness(g)
	ids := g.Nodes()
	slices.SortFunc(ids, func(a, b string) int {
		if centrality[a] != centrality[b] {
			if centrality[a] > centrality[b] {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})

	k := min(bottleneckTopK, len(ids))
	return ListValue(slices.Clone(ids[:k]))
}
