package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dagopt/pkg/analysis"
	"github.com/matzehuels/dagopt/pkg/dag"
	"github.com/matzehuels/dagopt/pkg/errors"
	"github.com/matzehuels/dagopt/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	format    string // dot, svg, or png
	output    string // output file path (stdout for dot if empty)
	title     string // diagram title
	highlight bool   // highlight critical-path nodes
	optimize  bool   // render the transitive reduction instead of the input
}

// newRenderCmd creates the render command.
func newRenderCmd() *cobra.Command {
	opts := renderOpts{format: "dot"}

	cmd := &cobra.Command{
		Use:   "render <graph.json>",
		Short: "Render a DAG as DOT, SVG, or PNG",
		Long: `Render a DAG visualization. Edge colors follow the first edge class,
and --highlight fills the critical-path nodes.

Examples:
  dagopt render graph.json                           # DOT to stdout
  dagopt render graph.json -f svg -o graph.svg
  dagopt render graph.json -f png -o graph.png --highlight`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runRender(c.Context(), &opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, or png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (required for svg and png)")
	cmd.Flags().StringVar(&opts.title, "title", "", "diagram title")
	cmd.Flags().BoolVar(&opts.highlight, "highlight", false, "highlight critical-path nodes")

	return cmd
}

func runRender(ctx context.Context, opts *renderOpts, input string) error {
	logger := loggerFromContext(ctx)

	g, err := loadGraph(input)
	if err != nil {
		return err
	}

	renderOptions := render.Options{Title: opts.title}
	if opts.highlight {
		sched, err := analysis.CriticalPath(g)
		if err != nil {
			return err
		}
		renderOptions.Highlight = sched.Path
		logger.Debugf("Highlighting %d critical-path nodes", len(sched.Path))
	}

	dot := render.ToDOT(g, renderOptions)

	switch opts.format {
	case "dot":
		return writeOutput([]byte(dot), opts.output, logger)
	case "svg", "png":
		if opts.output == "" {
			return errors.New(errors.ErrCodeInvalidInput, "--output is required for %s", opts.format)
		}
		return renderBinary(ctx, opts, dot, g)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want dot, svg, or png)", opts.format)
	}
}

// renderBinary runs graphviz layout for svg/png output with a spinner.
func renderBinary(ctx context.Context, opts *renderOpts, dot string, g *dag.Graph) error {
	logger := loggerFromContext(ctx)

	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d nodes", g.NodeCount()))
	spin.Start()

	var data []byte
	var err error
	switch opts.format {
	case "svg":
		data, err = render.SVG(ctx, dot)
	case "png":
		data, err = render.PNG(ctx, dot)
	}
	if err != nil {
		spin.StopWithError("Rendering failed")
		return err
	}
	spin.Stop()

	if err := writeOutput(data, opts.output, logger); err != nil {
		return err
	}
	printSuccess("Rendered %s", opts.format)
	printFile(opts.output)
	return nil
}
