package transform

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/matzehuels/dagopt/pkg/dag"
)

// MergeEquivalent collapses structurally equivalent nodes: two nodes are
// equivalent iff they have identical predecessor sets and identical
// successor sets. Each group of equivalent nodes becomes one merged node
// whose identifier is [CanonicalID] of the members.
//
// Edges are rewritten onto merged identifiers. Edges that become self-loops
// vanish; when several original edges collapse onto the same pair, their
// label sets are unioned.
//
// The pass runs exactly once. It does not re-examine the merged graph for
// signatures that only become equal after merging.
//
// The returned group map contains one entry per merged node (groups of
// size > 1 only), mapping the canonical identifier to its sorted members.
// Returns [dag.ErrNilGraph] if g is nil.
func MergeEquivalent(g *dag.Graph) (*dag.Graph, map[string][]string, error) {
	if g == nil {
		return nil, nil, dag.ErrNilGraph
	}

	signatures := make(map[string][]string)
	for _, id := range g.Nodes() {
		sig := signature(g.Predecessors(id), g.Successors(id))
		signatures[sig] = append(signatures[sig], id)
	}

	mapping := make(map[string]string, g.NodeCount())
	groups := make(map[string][]string)
	for _, members := range signatures {
		if len(members) == 1 {
			mapping[members[0]] = members[0]
			continue
		}
		merged := CanonicalID(members)
		for _, id := range members {
			mapping[id] = merged
		}
		sorted := slices.Clone(members)
		slices.Sort(sorted)
		groups[merged] = sorted
	}

	var edges []dag.Edge
	for _, e := range g.Edges() {
		from, to := mapping[e.From], mapping[e.To]
		if from == to {
			continue
		}
		edges = append(edges, dag.Edge{From: from, To: to, Labels: e.Labels})
	}

	nodes := make([]string, 0, len(mapping))
	seen := make(map[string]struct{}, len(mapping))
	for _, id := range g.Nodes() {
		merged := mapping[id]
		if _, ok := seen[merged]; ok {
			continue
		}
		seen[merged] = struct{}{}
		nodes = append(nodes, merged)
	}

	merged, err := dag.Build(edges, dag.WithNodes(nodes...))
	if err != nil {
		return nil, nil, err
	}
	return merged, groups, nil
}

// CanonicalID builds the identifier of a merged node: the JSON encoding of
// the sorted member list, e.g. `["A","B"]`. JSON escaping keeps the encoding
// injective, so member labels containing separator characters cannot collide
// the way plain string joins would.
func CanonicalID(members []string) string {
	sorted := slices.Clone(members)
	slices.Sort(sorted)
	data, _ := json.Marshal(sorted)
	return string(data)
}

// Members decodes a merged identifier back into its member list.
// Returns nil, false for identifiers that are not merged nodes.
func Members(id string) ([]string, bool) {
	if !strings.HasPrefix(id, "[") {
		return nil, false
	}
	var members []string
	if err := json.Unmarshal([]byte(id), &members); err != nil {
		return nil, false
	}
	return members, true
}

// signature encodes a node's (predecessors, successors) pair. Both lists
// arrive sorted from the graph accessors, so equal sets encode identically.
func signature(preds, succs []string) string {
	data, _ := json.Marshal([2][]string{preds, succs})
	return string(data)
}
