// Package render turns synthesized prefix trees into diagrams.
//
// The [nodelink] subpackage lays a tree out as a Graphviz drawing with every
// cell pinned to its column and row, blocks drawn as clusters. [ToPDF] and
// [ToPNG] convert the resulting SVG with the external rsvg-convert tool.
//
//	dot := nodelink.ToDOT(t.Graph, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	png, err := render.ToPNG(svg, 2.0)
package render
