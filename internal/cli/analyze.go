package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dagopt/pkg/analysis"
	"github.com/matzehuels/dagopt/pkg/errors"
)

// analyzeKinds lists the analyzers exposed by the analyze command.
var analyzeKinds = []string{"metrics", "schedule", "layers", "criticality"}

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	kind   string // which analyzer to run
	asJSON bool   // emit raw JSON instead of formatted output
	output string // output file path (stdout if empty)
}

// newAnalyzeCmd creates the analyze command.
func newAnalyzeCmd() *cobra.Command {
	opts := analyzeOpts{kind: "metrics"}

	cmd := &cobra.Command{
		Use:   "analyze <graph.json>",
		Short: "Run one analyzer over a DAG",
		Long: fmt.Sprintf(`Run one analyzer over a DAG without modifying it.

Available kinds: %s

Examples:
  dagopt analyze graph.json                      # Structure metrics
  dagopt analyze graph.json --kind schedule      # Critical path and slack
  dagopt analyze graph.json --kind layers --json # Machine-readable layering`, strings.Join(analyzeKinds, ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runAnalyze(c.Context(), &opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.kind, "kind", "k", opts.kind, "analyzer to run")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "emit raw JSON")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func runAnalyze(ctx context.Context, opts *analyzeOpts, input string) error {
	logger := loggerFromContext(ctx)

	g, err := loadGraph(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded %d nodes and %d edges", g.NodeCount(), g.EdgeCount())

	switch opts.kind {
	case "metrics":
		snap, err := analysis.Evaluate(g)
		if err != nil {
			return err
		}
		if opts.asJSON || opts.output != "" {
			return writeResultJSON(snap, opts.output, logger)
		}
		printInfo("Metrics for %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
		printMetrics(snap)

	case "schedule":
		sched, err := analysis.CriticalPath(g)
		if err != nil {
			return err
		}
		if opts.asJSON || opts.output != "" {
			return writeResultJSON(sched, opts.output, logger)
		}
		printInfo("Schedule (unit task weights)")
		printKeyValue("makespan", fmt.Sprintf("%d", sched.Makespan))
		printKeyValue("critical_path", strings.Join(sched.Path, " "+iconArrow+" "))
		printKeyValue("parallel_time_saved", fmt.Sprintf("%d", sched.ParallelTimeSaved))

	case "layers":
		layers, err := analysis.Layers(g)
		if err != nil {
			return err
		}
		if opts.asJSON || opts.output != "" {
			return writeResultJSON(layers, opts.output, logger)
		}
		printInfo("Layering (depth %d, width %d)", layers.Depth, layers.Width)
		for i, layer := range layers.Layers {
			printKeyValue(fmt.Sprintf("layer %d", i), strings.Join(layer, ", "))
		}
		printKeyValue("width_efficiency", fmt.Sprintf("%.4f", layers.WidthEfficiency))

	case "criticality":
		crit, err := analysis.EdgeCriticality(g)
		if err != nil {
			return err
		}
		if opts.asJSON || opts.output != "" {
			return writeResultJSON(crit, opts.output, logger)
		}
		printInfo("Edge criticality (%.0f%% critical)", crit.Ratio*100)
		for _, e := range crit.Critical {
			printDetail("%s %s %s", e.From, iconArrow, e.To)
		}
		if len(crit.Redundant) > 0 {
			printNewline()
			printWarning("%d redundant edges", len(crit.Redundant))
			for _, e := range crit.Redundant {
				printDetail("%s %s %s", e.From, iconArrow, e.To)
			}
		}

	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"unknown analysis kind %q (want %s)", opts.kind, strings.Join(analyzeKinds, ", "))
	}
	return nil
}

// writeResultJSON writes an analyzer result as indented JSON.
func writeResultJSON(v any, path string, logger *charmlog.Logger) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "failed to encode result")
	}
	return writeOutput(append(data, '\n'), path, logger)
}
