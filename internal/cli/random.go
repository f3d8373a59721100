package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dagopt/pkg/dag"
	"github.com/matzehuels/dagopt/pkg/errors"
)

// maxRandomNodes bounds random DAG generation, mirroring the API limit.
const maxRandomNodes = 500

// randomOpts holds the command-line flags for the random command.
type randomOpts struct {
	nodes  int     // number of nodes to generate
	prob   float64 // edge probability between ordered node pairs
	seed   int64   // RNG seed (0 means derive from the clock)
	output string  // output file path (stdout if empty)
}

// newRandomCmd creates the random command.
// It generates a random DAG over nodes N0..Nn-1 with forward-only edges,
// which is handy for exercising the optimizer and analyzers.
func newRandomCmd() *cobra.Command {
	opts := randomOpts{nodes: 10, prob: 0.3}

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Generate a random DAG",
		Long: `Generate a random DAG as an edge-list document.

Examples:
  dagopt random --nodes 20 --prob 0.2 -o graph.json
  dagopt random --seed 42 | dagopt optimize -`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runRandom(c.Context(), &opts)
		},
	}

	cmd.Flags().IntVarP(&opts.nodes, "nodes", "n", opts.nodes, "number of nodes")
	cmd.Flags().Float64VarP(&opts.prob, "prob", "p", opts.prob, "edge probability between 0 and 1")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "RNG seed (0 uses the clock)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func runRandom(ctx context.Context, opts *randomOpts) error {
	logger := loggerFromContext(ctx)

	if opts.nodes < 1 || opts.nodes > maxRandomNodes {
		return errors.New(errors.ErrCodeInvalidInput, "--nodes must be between 1 and %d", maxRandomNodes)
	}
	if opts.prob < 0 || opts.prob > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "--prob must be between 0 and 1")
	}

	seed := opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := dag.Random(opts.nodes, opts.prob, seed)
	logger.Debugf("Generated %d nodes and %d edges (seed %d)", g.NodeCount(), g.EdgeCount(), seed)

	return writeGraph(g, opts.output, logger)
}
