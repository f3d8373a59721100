package transform

import (
	"fmt"
	"testing"

	"github.com/matzehuels/dagopt/pkg/dag"
)

func mustBuild(t *testing.T, edges []dag.Edge, opts ...dag.Option) *dag.Graph {
	t.Helper()
	g, err := dag.Build(edges, opts...)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}

func TestReduce_Triangle(t *testing.T) {
	g := mustBuild(t, []dag.Edge{
		{From: "A", To: "B"},
		{From: "B", To: "C"},
		{From: "A", To: "C"},
	})

	reduced, err := Reduce(g)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}

	if reduced.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", reduced.EdgeCount())
	}
	if !reduced.HasEdge("A", "B") || !reduced.HasEdge("B", "C") {
		t.Error("expected edges A->B and B->C to survive")
	}
	if reduced.HasEdge("A", "C") {
		t.Error("redundant edge A->C should have been removed")
	}
}

func TestReduce_Idempotent(t *testing.T) {
	g := mustBuild(t, []dag.Edge{
		{From: "A", To: "B"},
		{From: "B", To: "C"},
		{From: "A", To: "C"},
		{From: "B", To: "D"},
		{From: "A", To: "D"},
	})

	once, err := Reduce(g)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	twice, err := Reduce(once)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}

	if once.EdgeCount() != twice.EdgeCount() {
		t.Fatalf("second Reduce changed edge count: %d -> %d", once.EdgeCount(), twice.EdgeCount())
	}
	for _, e := range once.Edges() {
		if !twice.HasEdge(e.From, e.To) {
			t.Errorf("edge %s->%s missing after second Reduce", e.From, e.To)
		}
	}
}

// reachable computes the full reachability relation by DFS from each node.
func reachable(g *dag.Graph) map[[2]string]bool {
	result := make(map[[2]string]bool)
	for _, src := range g.Nodes() {
		stack := []string{src}
		seen := map[string]bool{src: true}
		for len(stack) > 0 {
			curr := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, next := range g.Successors(curr) {
				if !seen[next] {
					seen[next] = true
					result[[2]string{src, next}] = true
					stack = append(stack, next)
				}
			}
		}
	}
	return result
}

func TestReduce_PreservesReachability(t *testing.T) {
	g := dag.Random(30, 0.2, 7)

	reduced, err := Reduce(g)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}

	before := reachable(g)
	after := reachable(reduced)
	if len(before) != len(after) {
		t.Fatalf("reachable pair count changed: %d -> %d", len(before), len(after))
	}
	for pair := range before {
		if !after[pair] {
			t.Errorf("pair %s->%s no longer reachable", pair[0], pair[1])
		}
	}
}

func TestReduce_Minimal(t *testing.T) {
	g := dag.Random(15, 0.3, 3)

	reduced, err := Reduce(g)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}

	// Removing any single surviving edge must break reachability.
	want := reachable(reduced)
	for _, removed := range reduced.Edges() {
		var rest []dag.Edge
		for _, e := range reduced.Edges() {
			if e.From != removed.From || e.To != removed.To {
				rest = append(rest, e)
			}
		}
		sub, err := dag.Build(rest, dag.WithNodes(reduced.Nodes()...))
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if got := reachable(sub); len(got) == len(want) {
			t.Errorf("edge %s->%s is not essential", removed.From, removed.To)
		}
	}
}

func TestReduce_SparseAndDenseAgree(t *testing.T) {
	// The same graph through both strategies must produce identical edges.
	// Random(12, 0.5, ...) is dense (ρ ≈ 0.25); re-running reduction on its
	// sparse result exercises the DFS branch against the same closure.
	for seed := int64(0); seed < 5; seed++ {
		g := dag.Random(12, 0.5, seed)
		if g.Density() < denseThreshold {
			t.Fatalf("seed %d: test graph unexpectedly sparse (ρ=%v)", seed, g.Density())
		}

		dense, err := Reduce(g)
		if err != nil {
			t.Fatalf("Reduce() error = %v", err)
		}
		if dense.Density() >= denseThreshold {
			continue
		}
		sparse, err := Reduce(dense)
		if err != nil {
			t.Fatalf("Reduce() error = %v", err)
		}
		if sparse.EdgeCount() != dense.EdgeCount() {
			t.Errorf("seed %d: sparse pass changed a reduced graph: %d -> %d",
				seed, dense.EdgeCount(), sparse.EdgeCount())
		}
	}
}

func TestReduce_DropsLabelsOfRemovedEdges(t *testing.T) {
	g := mustBuild(t, []dag.Edge{
		{From: "A", To: "B", Labels: []string{"Call_by"}},
		{From: "B", To: "C"},
		{From: "A", To: "C", Labels: []string{"Modify"}},
	})

	reduced, err := Reduce(g)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}

	if got := reduced.Labels("A", "B"); len(got) != 1 || got[0] != "Call_by" {
		t.Errorf("Labels(A,B) = %v, want [Call_by]", got)
	}
	if got := reduced.Labels("A", "C"); got != nil {
		t.Errorf("Labels(A,C) = %v, want nil (edge removed)", got)
	}
}

func TestReduce_SingleNode(t *testing.T) {
	g := mustBuild(t, nil, dag.WithNodes("solo"))

	reduced, err := Reduce(g)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	if reduced.NodeCount() != 1 || reduced.EdgeCount() != 0 {
		t.Errorf("got %d nodes / %d edges, want 1 / 0", reduced.NodeCount(), reduced.EdgeCount())
	}
}

func TestReduce_NilGraph(t *testing.T) {
	if _, err := Reduce(nil); err != dag.ErrNilGraph {
		t.Errorf("Reduce(nil) error = %v, want ErrNilGraph", err)
	}
}

func TestReduce_KeepsIsolatedNodes(t *testing.T) {
	g := mustBuild(t, []dag.Edge{{From: "A", To: "B"}}, dag.WithNodes("island"))

	reduced, err := Reduce(g)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	if !reduced.HasNode("island") {
		t.Error("isolated node dropped by reduction")
	}
}

func BenchmarkReduce(b *testing.B) {
	for _, size := range []int{50, 200} {
		g := dag.Random(size, 0.1, 42)
		b.Run(fmt.Sprintf("n=%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := Reduce(g); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
