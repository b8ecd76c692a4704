package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/prefixtower/pkg/dag"
	"github.com/matzehuels/prefixtower/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the module name and position to node labels and the
	// nets to edge labels.
	Detailed bool
	// Spacing is the distance between columns and rows in inches.
	// Zero uses 1.2.
	Spacing float64
}

// ToDOT converts a prefix graph to Graphviz DOT. Every node is pinned to its
// column (most significant on the left) and depth (root on top), so the
// drawing reads like a textbook prefix diagram. Blocks become clusters.
func ToDOT(g *dag.Graph, opts Options) string {
	spacing := opts.Spacing
	if spacing <= 0 {
		spacing = 1.2
	}
	nodes := g.Nodes()
	maxCol := 0
	for _, n := range nodes {
		maxCol = max(maxCol, n.Column)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [style=\"filled\", fillcolor=white, fontsize=14, width=0.6, height=0.6, fixedsize=true];\n")
	buf.WriteString("  edge [dir=back];\n")
	buf.WriteString("\n")

	for _, b := range g.Blocks() {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", b.ID)
		fmt.Fprintf(&buf, "    label=\"block_%d\";\n    style=dashed;\n", b.ID)
		for _, id := range b.Nodes {
			fmt.Fprintf(&buf, "    %s;\n", nodeName(id))
		}
		buf.WriteString("  }\n")
	}

	for _, n := range nodes {
		x := float64(maxCol-n.Column) * spacing
		y := float64(-n.Depth) * spacing
		attrs := []string{
			fmt.Sprintf("label=%q", label(g, n, opts.Detailed)),
			fmt.Sprintf("pos=\"%.2f,%.2f!\"", x, y),
		}
		attrs = append(attrs, moduleAttrs(g, n)...)
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeName(n.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		attr := ""
		if opts.Detailed {
			attr = fmt.Sprintf(" [label=%q]", edgeNets(g, e))
		}
		fmt.Fprintf(&buf, "  %s -> %s%s;\n", nodeName(e.Parent), nodeName(e.Child), attr)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeName(id dag.NodeID) string { return "u" + strconv.Itoa(int(id)) }

func label(g *dag.Graph, n *dag.Node, detailed bool) string {
	text := n.Label
	if text == "" {
		text = strconv.Itoa(int(n.ID))
	}
	if !detailed {
		return text
	}
	return fmt.Sprintf("%s\n%s\ncol %d, row %d", text, n.Module, n.Column, n.Depth)
}

var shapes = map[string]string{
	"square": "box",
	"":       "circle",
}

func moduleAttrs(g *dag.Graph, n *dag.Node) []string {
	m := g.Module(n.ID)
	if m == nil {
		return nil
	}
	if !m.Exists() {
		return []string{"style=invis"}
	}
	shape, ok := shapes[m.Shape]
	if !ok {
		shape = m.Shape
	}
	attrs := []string{"shape=" + shape}
	if m.Color != "" {
		attrs = append(attrs, "fillcolor="+strconv.Quote(m.Color))
	}
	if m.IsBuffer() {
		attrs = append(attrs, "style=\"filled,dashed\"")
	}
	return attrs
}

// edgeNets lists the nets an edge carries, in pin order.
func edgeNets(g *dag.Graph, e *dag.Edge) string {
	p := g.MustNode(e.Parent)
	var nets []string
	for _, pair := range e.Pairs {
		port := p.Input(pair.Parent.Port)
		if port == nil || pair.Parent.Bit >= len(port.Nets) {
			continue
		}
		nets = append(nets, port.Nets[pair.Parent.Bit].String())
	}
	return strings.Join(slices.Compact(nets), ",")
}

// RenderSVG renders DOT to SVG in-process with Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// size equals its viewBox, so the drawing scales cleanly when embedded.
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

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

// RenderPDF renders DOT to PDF through SVG. It needs rsvg-convert.
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders DOT to PNG through SVG, zoomed by scale. It needs
// rsvg-convert.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
