package dag

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [Build] when an edge references an
	// empty node identifier. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrNilGraph is returned by engine operations that receive a nil Graph.
	ErrNilGraph = errors.New("graph is nil")
)

// CycleError is returned by [Build] when the input edge list contains a
// directed cycle. Cycle holds one concrete offending node sequence; the
// first and last entries are the same node.
type CycleError struct {
	Cycle []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("graph contains a cycle: %s", strings.Join(e.Cycle, " -> "))
}

// Edge is a directed connection between two nodes, optionally carrying an
// ordered set of string class labels (e.g. "Modify", "Call_by"). Labels are
// sorted and deduplicated by [Build].
type Edge struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Labels []string `json:"labels,omitempty"`
}

// key returns the identity of the edge, ignoring labels.
func (e Edge) key() [2]string { return [2]string{e.From, e.To} }

// Graph is an immutable DAG over string node identifiers.
//
// The zero value is not usable - construct instances with [Build]. A Graph
// is safe for concurrent readers; it carries no mutable state.
type Graph struct {
	nodes    []string // sorted
	nodeSet  map[string]struct{}
	edges    []Edge // sorted by (From, To)
	edgeIdx  map[[2]string]int
	outgoing map[string][]string // sorted target IDs
	incoming map[string][]string // sorted source IDs
}

// Option configures [Build].
type Option func(*builder)

// WithNodes declares nodes that must exist in the graph even if no edge
// references them. This is how isolated nodes enter a Graph, since the
// edge list alone cannot express them.
func WithNodes(ids ...string) Option {
	return func(b *builder) { b.extra = append(b.extra, ids...) }
}

type builder struct {
	extra []string
}

// Build constructs a Graph from an ordered edge list.
//
// Duplicate edges are collapsed into one, with their label sets unioned.
// Labels are sorted and deduplicated per edge. Build validates acyclicity
// via Kahn's algorithm and returns a [*CycleError] naming one concrete
// cycle when validation fails.
//
// The input slices are not retained; the returned Graph is independent of
// the caller's data.
func Build(edges []Edge, opts ...Option) (*Graph, error) {
	var b builder
	for _, opt := range opts {
		opt(&b)
	}

	g := &Graph{
		nodeSet:  make(map[string]struct{}),
		edgeIdx:  make(map[[2]string]int),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}

	addNode := func(id string) error {
		if id == "" {
			return ErrInvalidNodeID
		}
		g.nodeSet[id] = struct{}{}
		return nil
	}

	for _, id := range b.extra {
		if err := addNode(id); err != nil {
			return nil, err
		}
	}

	for _, e := range edges {
		if err := addNode(e.From); err != nil {
			return nil, err
		}
		if err := addNode(e.To); err != nil {
			return nil, err
		}
		if i, ok := g.edgeIdx[e.key()]; ok {
			g.edges[i].Labels = unionLabels(g.edges[i].Labels, e.Labels)
			continue
		}
		g.edgeIdx[e.key()] = len(g.edges)
		g.edges = append(g.edges, Edge{From: e.From, To: e.To, Labels: normalizeLabels(e.Labels)})
	}

	g.nodes = make([]string, 0, len(g.nodeSet))
	for id := range g.nodeSet {
		g.nodes = append(g.nodes, id)
	}
	slices.Sort(g.nodes)

	slices.SortFunc(g.edges, func(a, b Edge) int {
		if c := strings.Compare(a.From, b.From); c != 0 {
			return c
		}
		return strings.Compare(a.To, b.To)
	})
	for i, e := range g.edges {
		g.edgeIdx[e.key()] = i
		g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
		g.incoming[e.To] = append(g.incoming[e.To], e.From)
	}

	if cycle := g.findCycle(); cycle != nil {
		return nil, &CycleError{Cycle: cycle}
	}
	return g, nil
}

// findCycle runs Kahn's algorithm; if any nodes remain unsorted, it walks
// the residual subgraph to extract one concrete cycle. Returns nil for a
// valid DAG.
func (g *Graph) findCycle() []string {
	inDegree := make(map[string]int, len(g.nodes))
	for _, id := range g.nodes {
		inDegree[id] = len(g.incoming[id])
	}

	queue := make([]string, 0, len(g.nodes))
	for _, id := range g.nodes {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	sorted := 0
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		sorted++
		for _, child := range g.outgoing[curr] {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	if sorted == len(g.nodes) {
		return nil
	}

	// Every remaining node has in-degree > 0 within the residual subgraph,
	// so walking predecessors from any of them must revisit a node.
	var start string
	for _, id := range g.nodes {
		if inDegree[id] > 0 {
			start = id
			break
		}
	}

	seen := map[string]int{}
	var path []string
	curr := start
	for {
		if at, ok := seen[curr]; ok {
			cycle := append(slices.Clone(path[at:]), curr)
			slices.Reverse(cycle)
			return cycle
		}
		seen[curr] = len(path)
		path = append(path, curr)
		for _, pred := range g.incoming[curr] {
			if inDegree[pred] > 0 {
				curr = pred
				break
			}
		}
	}
}

// Nodes returns all node IDs in lexicographic order.
func (g *Graph) Nodes() []string { return slices.Clone(g.nodes) }

// Edges returns all edges sorted by (From, To). Label slices are shared
// with the graph and must not be modified.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// HasNode reports whether the node exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodeSet[id]
	return ok
}

// HasEdge reports whether the edge from → to exists.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.edgeIdx[[2]string{from, to}]
	return ok
}

// Labels returns the ordered label set of the edge from → to, or nil if
// the edge does not exist or carries no labels. The returned slice is
// shared with the graph and must not be modified.
func (g *Graph) Labels(from, to string) []string {
	i, ok := g.edgeIdx[[2]string{from, to}]
	if !ok {
		return nil
	}
	return g.edges[i].Labels
}

// Successors returns the IDs this node has edges to, sorted.
// Returns nil if the node has no successors or doesn't exist.
func (g *Graph) Successors(id string) []string { return g.outgoing[id] }

// Predecessors returns the IDs that have edges to this node, sorted.
// Returns nil if the node has no predecessors or doesn't exist.
func (g *Graph) Predecessors(id string) []string { return g.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Sources returns nodes with no incoming edges, sorted.
func (g *Graph) Sources() []string {
	var sources []string
	for _, id := range g.nodes {
		if len(g.incoming[id]) == 0 {
			sources = append(sources, id)
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing edges, sorted.
func (g *Graph) Sinks() []string {
	var sinks []string
	for _, id := range g.nodes {
		if len(g.outgoing[id]) == 0 {
			sinks = append(sinks, id)
		}
	}
	return sinks
}

// Density returns |E| / (|V|·(|V|−1)), or 0 for graphs with fewer than
// two nodes. This is the directed-graph density used to select the
// transitive-reduction strategy.
func (g *Graph) Density() float64 {
	n := len(g.nodes)
	if n < 2 {
		return 0
	}
	return float64(len(g.edges)) / float64(n*(n-1))
}

// TopologicalOrder returns the nodes in a deterministic topological order:
// Kahn's algorithm with lexicographically smallest ready node first.
// The graph is acyclic by construction, so the order always covers all nodes.
func (g *Graph) TopologicalOrder() []string {
	inDegree := make(map[string]int, len(g.nodes))
	var ready []string
	for _, id := range g.nodes {
		inDegree[id] = len(g.incoming[id])
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		// ready stays sorted: nodes arrive in sorted outgoing order and
		// are inserted in place.
		curr := ready[0]
		ready = ready[1:]
		order = append(order, curr)
		for _, child := range g.outgoing[curr] {
			inDegree[child]--
			if inDegree[child] == 0 {
				at, _ := slices.BinarySearch(ready, child)
				ready = slices.Insert(ready, at, child)
			}
		}
	}
	return order
}

func normalizeLabels(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	out := slices.Clone(labels)
	slices.Sort(out)
	return slices.Compact(out)
}

func unionLabels(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	merged := append(slices.Clone(a), b...)
	slices.Sort(merged)
	return slices.Compact(merged)
}
