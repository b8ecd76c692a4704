// Package nodelink draws prefix graphs as pinned node-link diagrams.
//
// [ToDOT] emits Graphviz DOT with each cell fixed at its column and row, the
// most significant column on the left and the root on top. Node shape and
// fill come from the catalog module; buffers are dashed and phantom cells
// invisible. Blocks are wrapped in dashed clusters.
//
//	dot := nodelink.ToDOT(t.Graph, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// [RenderSVG] runs Graphviz in-process through
// [github.com/goccy/go-graphviz]; the neato engine honours the pinned
// positions. [RenderPDF] and [RenderPNG] convert that SVG with rsvg-convert.
package nodelink
