package analysis_test

import (
	"fmt"

	"github.com/matzehuels/dagopt/pkg/analysis"
	"github.com/matzehuels/dagopt/pkg/dag"
)

func ExampleEvaluate() {
	g, _ := dag.Build([]dag.Edge{
		{From: "A", To: "B"},
		{From: "B", To: "C"},
		{From: "A", To: "C"},
	})

	s, _ := analysis.Evaluate(g)
	for _, name := range []string{"num_nodes", "num_edges", "density", "redundancy_ratio"} {
		v, _ := s.Get(name)
		fmt.Printf("%s: %s\n", name, v)
	}
	// Output:
	// num_nodes: 3
	// num_edges: 3
	// density: 0.5
	// redundancy_ratio: 0.3333
}

func ExampleCriticalPath() {
	g, _ := dag.Build([]dag.Edge{
		{From: "A", To: "B"},
		{From: "A", To: "C"},
		{From: "B", To: "D"},
		{From: "C", To: "D"},
	})

	res, _ := analysis.CriticalPath(g)
	fmt.Println("makespan:", res.Makespan)
	fmt.Println("path:", res.Path)
	fmt.Println("saved:", res.ParallelTimeSaved)
	// Output:
	// makespan: 2
	// path: [A B D]
	// saved: 1
}

func ExampleLayers() {
	g, _ := dag.Build([]dag.Edge{
		{From: "A", To: "B"},
		{From: "A", To: "C"},
		{From: "B", To: "D"},
		{From: "C", To: "D"},
	})

	res, _ := analysis.Layers(g)
	for i, layer := range res.Layers {
		fmt.Printf("%d: %v\n", i, layer)
	}
	fmt.Println("width:", res.Width)
	// Output:
	// 0: [A]
	// 1: [B C]
	// 2: [D]
	// width: 2
}
