// Package pkg provides the libraries behind prefixtower, a synthesizer for
// parallel prefix adders.
//
// # Overview
//
// A parallel prefix adder of width n combines n generate/propagate pairs
// with an associative operator. Every binary tree with n leaves is a valid
// way to combine them, and there are Catalan(n-1) such trees. prefixtower
// numbers them with a rank, builds the tree for any rank, reshapes it with
// local rotations into the classic topologies and emits structural HDL.
//
// # Architecture
//
// The data flow through prefixtower:
//
//	cell catalog (TOML/YAML)
//	         ↓
//	    [catalog] package (cells, roles, HDL templates)
//	         ↓
//	    [tree] package (unrank, rotate, recipes, buffers)
//	         ↓
//	    [dag] package (nodes, nets, blocks, netlist)
//	         ↓
//	    [hdl], [render/nodelink], [io] packages
//	         ↓
//	    Verilog/VHDL, DOT/SVG/PNG/PDF, JSON
//
// # Quick Start
//
//	import (
//	    "os"
//	    "github.com/matzehuels/prefixtower/pkg/catalog"
//	    "github.com/matzehuels/prefixtower/pkg/hdl"
//	    "github.com/matzehuels/prefixtower/pkg/tree"
//	)
//
//	cat := catalog.Default()
//	t, err := tree.New(cat, tree.Config{Width: 16, Recipe: "sklansky"})
//	if err != nil {
//	    return err
//	}
//	err = hdl.Render(os.Stdout, t.Netlist(nil), cat, hdl.Options{})
//
// Most callers go through [pipeline], which adds validation, caching and
// multi-format output:
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Width:   16,
//	    Recipe:  "kogge-stone",
//	    Formats: []string{"hdl", "svg"},
//	})
//
// # Main Packages
//
// Domain:
//
//   - [catalan]: Catalan numbers and rank arithmetic
//   - [catalog]: cell catalogs and their HDL templates
//   - [dag]: the node/net graph, blocks and netlist extraction
//   - [tree]: prefix tree construction and reshaping
//   - [hdl]: Verilog and VHDL emission
//   - [render]: diagrams
//
// Infrastructure:
//
//   - [pipeline]: validated, cached synthesis runs
//   - [cache]: file and redis caches
//   - [archive]: history of synthesized designs
//   - [io]: JSON import and export
//   - [observability]: hooks and Prometheus metrics
//   - [errors]: coded errors and input validation
//   - [buildinfo]: version information
//
// [catalan]: https://pkg.go.dev/github.com/matzehuels/prefixtower/pkg/catalan
// [catalog]: https://pkg.go.dev/github.com/matzehuels/prefixtower/pkg/catalog
// [dag]: https://pkg.go.dev/github.com/matzehuels/prefixtower/pkg/dag
// [tree]: https://pkg.go.dev/github.com/matzehuels/prefixtower/pkg/tree
// [hdl]: https://pkg.go.dev/github.com/matzehuels/prefixtower/pkg/hdl
// [render]: https://pkg.go.dev/github.com/matzehuels/prefixtower/pkg/render
// [io]: https://pkg.go.dev/github.com/matzehuels/prefixtower/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/prefixtower/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/prefixtower/pkg/cache
// [archive]: https://pkg.go.dev/github.com/matzehuels/prefixtower/pkg/archive
// [observability]: https://pkg.go.dev/github.com/matzehuels/prefixtower/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/prefixtower/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/prefixtower/pkg/buildinfo
package pkg
