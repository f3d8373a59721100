package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dagopt/pkg/config"
	"github.com/matzehuels/dagopt/pkg/pipeline"
)

// optimizeOpts holds the command-line flags for the optimize command.
type optimizeOpts struct {
	noReduce bool   // disable transitive reduction
	noMerge  bool   // disable equivalent-node merging
	persist  bool   // store the snapshot record
	refresh  bool   // bypass the cached optimization result
	output   string // optimized edge list output path (stdout suppressed if empty)
	config   string // config file path
}

// newOptimizeCmd creates the optimize command.
//
// The command reads an edge-list document, runs the full pipeline
// (reduce, merge, evaluate), and prints what changed. With --persist the
// before/after snapshot record is stored for later inspection.
func newOptimizeCmd() *cobra.Command {
	var opts optimizeOpts

	cmd := &cobra.Command{
		Use:   "optimize <graph.json>",
		Short: "Optimize a DAG and report what changed",
		Long: `Optimize a DAG by removing transitively implied edges and merging
structurally equivalent nodes, then compare metrics before and after.

Examples:
  dagopt optimize graph.json                  # Optimize and print the delta
  dagopt optimize graph.json --persist        # Also store a snapshot record
  dagopt optimize graph.json -o reduced.json  # Write the optimized edge list
  cat graph.json | dagopt optimize -          # Read from stdin`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runOptimize(c.Context(), &opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.noReduce, "no-reduce", false, "skip transitive reduction")
	cmd.Flags().BoolVar(&opts.noMerge, "no-merge", false, "skip equivalent-node merging")
	cmd.Flags().BoolVar(&opts.persist, "persist", false, "store the snapshot record")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cached optimization result")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the optimized edge list to this file")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "config file (default dagopt.toml)")

	return cmd
}

func runOptimize(ctx context.Context, opts *optimizeOpts, input string) error {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(opts.config)
	if err != nil {
		return err
	}

	g, err := loadGraph(input)
	if err != nil {
		return err
	}
	logger.Infof("Loaded %d nodes and %d edges from %s", g.NodeCount(), g.EdgeCount(), displayPath(input))

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(st, logger)
	defer runner.Close()

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, g, pipeline.Options{
		SkipReduction: opts.noReduce || cfg.Optimize.SkipReduction,
		SkipMerge:     opts.noMerge || cfg.Optimize.SkipMerge,
		Persist:       opts.persist,
		Refresh:       opts.refresh,
		Attrs:         map[string]string{"source": "cli", "input": displayPath(input)},
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Optimized %d nodes", result.Optimized.NodeCount()))

	printOptimizeResult(result, opts.persist)

	if opts.output != "" {
		if err := writeGraph(result.Optimized, opts.output, logger); err != nil {
			return err
		}
		printFile(opts.output)
	}
	return nil
}

// printOptimizeResult renders the before/after summary of a pipeline run.
func printOptimizeResult(result *pipeline.Result, persisted bool) {
	snap := result.Snapshot

	printSuccess("Optimization complete")
	printStats(result.Optimized.NodeCount(), result.Optimized.EdgeCount(), result.CacheInfo.OptimizeHit)
	printDetail("removed %d transitive edges, merged %d nodes",
		result.Transform.TransitiveEdgesRemoved, result.Transform.NodesMerged)

	if len(snap.ChangedMetrics) > 0 {
		printNewline()
		printInfo("Changed metrics")
		// Walk the recorded metric order so related metrics stay adjacent.
		for _, name := range snap.OriginalMetrics.Names() {
			ch, ok := snap.ChangedMetrics[name]
			if !ok {
				continue
			}
			printMetricChange(name, ch.Original, ch.Optimized)
		}
	}

	if persisted {
		printNewline()
		printKeyValue("snapshot", snap.ID)
		printNextStep("Inspect the snapshot", "dagopt snapshots show "+snap.ID)
	}
}
