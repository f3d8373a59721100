package transform

import "github.com/matzehuels/dagopt/pkg/dag"

// Result reports what [Optimize] changed.
type Result struct {
	// TransitiveEdgesRemoved is the number of redundant edges removed by
	// transitive reduction. Higher values indicate more redundancy in the
	// original graph.
	TransitiveEdgesRemoved int

	// NodesMerged is the number of original nodes folded away by node
	// merging (group size minus one, summed over all groups).
	NodesMerged int

	// MergedGroups maps each merged node identifier to its sorted members.
	// Empty when merging found no equivalent nodes or was skipped.
	MergedGroups map[string][]string
}

// Options configures which transformations [Optimize] applies.
// The zero value applies both.
type Options struct {
	// SkipReduction disables transitive reduction.
	SkipReduction bool

	// SkipMerge disables equivalent-node merging.
	SkipMerge bool
}

// Optimize applies transitive reduction followed by equivalent-node merging
// and returns the optimized graph together with a [Result] describing the
// changes. The input graph is never modified.
func Optimize(g *dag.Graph, opts Options) (*dag.Graph, Result, error) {
	var res Result
	if g == nil {
		return nil, res, dag.ErrNilGraph
	}

	out := g
	if !opts.SkipReduction {
		reduced, err := Reduce(out)
		if err != nil {
			return nil, res, err
		}
		res.TransitiveEdgesRemoved = out.EdgeCount() - reduced.EdgeCount()
		out = reduced
	}

	if !opts.SkipMerge {
		merged, groups, err := MergeEquivalent(out)
		if err != nil {
			return nil, res, err
		}
		res.MergedGroups = groups
		res.NodesMerged = out.NodeCount() - merged.NodeCount()
		out = merged
	}

	return out, res, nil
}
