// Package render draws dependency graphs as node-link diagrams.
//
// Graphs convert to Graphviz DOT via [ToDOT]; the DOT string renders to
// SVG or PNG through the embedded Graphviz engine. Edge colors encode the
// first label on each edge, and nodes on the critical path can be
// highlighted.
//
//	dot := render.ToDOT(g, render.Options{})
//	svg, err := render.SVG(ctx, dot)
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/dagopt/pkg/dag"
)

// Edge colors keyed by label. Unlabeled edges and unknown labels fall back
// to defaultEdgeColor.
var edgeColors = map[string]string{
	"Modify":  "#ec4899",
	"Call_by": "#6b7280",
}

const (
	defaultEdgeColor  = "#3b82f6"
	criticalFillColor = "#fde68a"
)

// Options configures diagram rendering.
type Options struct {
	// Highlight lists node IDs to fill in the highlight color, typically
	// the critical path.
	Highlight []string

	// Title is drawn above the diagram when set.
	Title string
}

// ToDOT converts a graph to Graphviz DOT format. Nodes and edges appear in
// the graph's sorted order, so output is deterministic.
func ToDOT(g *dag.Graph, opts Options) string {
	highlighted := make(map[string]struct{}, len(opts.Highlight))
	for _, id := range opts.Highlight {
		highlighted[id] = struct{}{}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("\n")

	for _, id := range g.Nodes() {
		if _, ok := highlighted[id]; ok {
			fmt.Fprintf(&buf, "  %q [fillcolor=%q];\n", id, criticalFillColor)
		} else {
			fmt.Fprintf(&buf, "  %q;\n", id)
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q [color=%q];\n", e.From, e.To, edgeColor(e))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func edgeColor(e dag.Edge) string {
	if len(e.Labels) > 0 {
		if c, ok := edgeColors[e.Labels[0]]; ok {
			return c
		}
	}
	return defaultEdgeColor
}

// SVG renders a DOT graph to SVG using Graphviz.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	var buf bytes.Buffer
	if err := renderAs(ctx, dot, graphviz.SVG, &buf); err != nil {
		return nil, err
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// PNG renders a DOT graph to PNG using Graphviz.
func PNG(ctx context.Context, dot string) ([]byte, error) {
	var buf bytes.Buffer
	if err := renderAs(ctx, dot, graphviz.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderAs(ctx context.Context, dot string, format graphviz.Format, buf *bytes.Buffer) error {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	if err := gv.Render(ctx, g, format, buf); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg element so the viewBox starts at
// the origin with explicit pixel dimensions. Graphviz emits point-based
// sizes that scale inconsistently across viewers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
