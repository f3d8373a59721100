package dag_test

import (
	"fmt"

	"github.com/matzehuels/dagopt/pkg/dag"
)

func ExampleBuild() {
	// Build a small build graph: compile → link → package
	g, err := dag.Build([]dag.Edge{
		{From: "compile", To: "link"},
		{From: "link", To: "package"},
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Sources:", g.Sources())
	// Output:
	// Nodes: 3
	// Edges: 2
	// Sources: [compile]
}

func ExampleBuild_cycle() {
	_, err := dag.Build([]dag.Edge{
		{From: "a", To: "b"},
		{From: "b", To: "a"},
	})
	fmt.Println(err)
	// Output:
	// graph contains a cycle: a -> b -> a
}

func ExampleGraph_TopologicalOrder() {
	g, _ := dag.Build([]dag.Edge{
		{From: "fetch", To: "build"},
		{From: "build", To: "test"},
		{From: "build", To: "lint"},
	})

	fmt.Println(g.TopologicalOrder())
	// Output:
	// [fetch build lint test]
}
