package transform_test

import (
	"fmt"

	"github.com/matzehuels/dagopt/pkg/dag"
	"github.com/matzehuels/dagopt/pkg/dag/transform"
)

func ExampleReduce() {
	// A->C is redundant: C is already reachable through B.
	g, _ := dag.Build([]dag.Edge{
		{From: "A", To: "B"},
		{From: "B", To: "C"},
		{From: "A", To: "C"},
	})

	reduced, _ := transform.Reduce(g)
	for _, e := range reduced.Edges() {
		fmt.Printf("%s -> %s\n", e.From, e.To)
	}
	// Output:
	// A -> B
	// B -> C
}

func ExampleMergeEquivalent() {
	// A and B feed the same targets and have no other structure: they are
	// interchangeable and collapse into one node.
	g, _ := dag.Build([]dag.Edge{
		{From: "A", To: "D"},
		{From: "B", To: "D"},
		{From: "A", To: "E"},
		{From: "B", To: "E"},
	})

	merged, groups, _ := transform.MergeEquivalent(g)
	fmt.Println("nodes:", merged.NodeCount())
	fmt.Println("members:", groups[transform.CanonicalID([]string{"A", "B"})])
	// Output:
	// nodes: 3
	// members: [A B]
}

func ExampleOptimize() {
	g, _ := dag.Build([]dag.Edge{
		{From: "A", To: "B"},
		{From: "B", To: "C"},
		{From: "A", To: "C"},
	})

	optimized, res, _ := transform.Optimize(g, transform.Options{})
	fmt.Println("edges removed:", res.TransitiveEdgesRemoved)
	fmt.Println("edges left:", optimized.EdgeCount())
	// Output:
	// edges removed: 1
	// edges left: 2
}
