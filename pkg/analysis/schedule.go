package analysis

import (
	"github.com/matzehuels/dagopt/pkg/dag"
)

// CriticalPathResult holds the PERT/CPM schedule for a graph under unit
// node durations. All maps are keyed by node ID.
type CriticalPathResult struct {
	// EST is the earliest start time per node.
	EST map[string]int `json:"est"`
	// LST is the latest start time per node that still meets the makespan.
	LST map[string]int `json:"lst"`
	// Slack is LST - EST. Zero-slack nodes sit on a critical path.
	Slack map[string]int `json:"slack"`
	// Path is one longest zero-slack chain, source to sink. When several
	// critical paths exist, ties break toward the lexicographically
	// smallest node at each step.
	Path []string `json:"path"`
	// Makespan is the minimum total time to complete all nodes respecting
	// dependencies: max EST over sinks.
	Makespan int `json:"makespan"`
	// ParallelTimeSaved is (|V| - 1) - makespan: the steps saved versus
	// executing all nodes sequentially.
	ParallelTimeSaved int `json:"parallel_time_saved"`
}

// CriticalPath computes earliest/latest start times, slack, the critical
// path and the makespan for g, assuming every node takes one unit of time.
// Returns [dag.ErrNilGraph] if g is nil.
func CriticalPath(g *dag.Graph) (*CriticalPathResult, error) {
	if g == nil {
		return nil, dag.ErrNilGraph
	}

	order := g.TopologicalOrder()
	res := &CriticalPathResult{
		EST:   make(map[string]int, len(order)),
		LST:   make(map[string]int, len(order)),
		Slack: make(map[string]int, len(order)),
	}
	if len(order) == 0 {
		return res, nil
	}

	// Forward pass: EST(v) = max(EST(u) + 1) over predecessors.
	for _, v := range order {
		est := 0
		for _, u := range g.Predecessors(v) {
			if res.EST[u]+1 > est {
				est = res.EST[u] + 1
			}
		}
		res.EST[v] = est
	}

	// All sinks share the global finish time.
	finish := 0
	for _, v := range g.Sinks() {
		if res.EST[v] > finish {
			finish = res.EST[v]
		}
	}
	res.Makespan = finish

	// Backward pass: LST(v) = min(LST(w) − 1) over successors, finish for sinks.
	for i := len(order) - 1; i >= 0; i-- {
		v := order[i]
		succs := g.Successors(v)
		if len(succs) == 0 {
			res.LST[v] = finish
			continue
		}
		lst := res.LST[succs[0]] - 1
		for _, w := range succs[1:] {
			if res.LST[w]-1 < lst {
				lst = res.LST[w] - 1
			}
		}
		res.LST[v] = lst
	}

	for _, v := range order {
		res.Slack[v] = res.LST[v] - res.EST[v]
	}

	res.Path = criticalChain(g, res)
	res.ParallelTimeSaved = (g.NodeCount() - 1) - res.Makespan
	return res, nil
}

// criticalChain walks one zero-slack chain from a source to a sink. At each
// step the lexicographically smallest eligible node wins, which makes the
// reported path deterministic when several critical paths exist.
func criticalChain(g *dag.Graph, res *CriticalPathResult) []string {
	// Sources arrive sorted, so the first zero-slack one is the
	// lexicographically smallest.
	var start string
	for _, v := range g.Sources() {
		if res.Slack[v] == 0 {
			start = v
			break
		}
	}
	if start == "" {
		return nil
	}

	path := []string{start}
	curr := start
	for {
		next := ""
		// Successors arrive sorted; take the first zero-slack one that
		// continues the chain without idle time.
		for _, w := range g.Successors(curr) {
			if res.Slack[w] == 0 && res.EST[w] == res.EST[curr]+1 {
				next = w
				break
			}
		}
		if next == "" {
			return path
		}
		path = append(path, next)
		curr = next
	}
}
