// Package dag provides the cell graph that prefix networks are built on.
//
// # Overview
//
// A [Graph] holds cell instances ([Node]) drawn from a [catalog.Catalog],
// the [Edge] records that wire them together, the net counter that names
// wires, and a table of [Block] groups that the emitter flattens into
// single generated cells.
//
// Edges point from a consumer (the parent) to the cell driving it (the
// child). Data therefore flows from children to parents, and a topological
// order lists leaves first.
//
// # Building
//
// Create a graph with [New], add instances with [Graph.AddNode], and wire
// them with [Graph.Connect], which asks the catalog's port matcher which pins
// a child drives when it sits in a given slot:
//
//	g := dag.New(catalog.Default())
//	top, _ := g.AddNode("ppa_cocycle", 1, 1)
//	lo, _ := g.AddNode("ppa_pre", 0, 2)
//	_, err := g.Connect(top, lo, 1)
//
// [Graph.AddEdge] wires a single explicit pin pair instead.
//
// # Nets
//
// Every pin holds a [Net]. When an edge is added, a net already bound to
// either pin is reused (the consumer's first); only when both pins are free
// is a new auto net allocated. [Graph.RemoveEdge] clears only the consumer's
// pins, so the driver keeps its nets and a reconnection reuses them. Fixed
// nets ([FixedNet]) name boundary signals and survive [Graph.Morph].
//
// # Leaf Masks
//
// Each node carries a [Node.LeafMask], the OR of its own leaf bits and its
// children's masks. Masks are recomputed up to the root after every
// structural change, so a finished tree of width w has a root mask of
// (1<<w)-1.
//
// # Partitioning
//
// [Graph.LongestPath] finds the heaviest chain of unblocked cells using the
// pluggable [WeightFunc]; [Graph.AddBestBlocks] greedily turns such chains
// into blocks until none remain. [Graph.Netlist] then produces the view an
// HDL emitter consumes.
//
// # Errors
//
// Precondition failures carry codes from pkg/errors: STRUCTURAL for
// topology violations, PORT_MISMATCH for incompatible pins and CATALOG for
// unknown modules. Checks run before anything is mutated.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Distinct graphs share no
// state and can be built in parallel.
package dag
