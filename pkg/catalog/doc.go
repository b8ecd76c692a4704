// Package catalog describes the hardware cells a prefix tree is built from.
//
// A [Catalog] is an immutable table of [Module] definitions: ordered input
// ports with per-child fan-in widths, ordered output ports, a [Category], a
// propagation delay and per-language instantiation templates. It also names
// the [Roles] a tree assigns to its nodes (pre-processing leaves, the root,
// the main recurrence cell, buffers and the spine variants).
//
// Catalogs are values: build one with [New], [Parse] or [Load] and pass it
// into every graph or tree constructor. [Default] returns the built-in
// parallel-prefix adder cell family.
//
// # Port Matching
//
// [Match] resolves which output pins of a child cell feed which input pins
// of a parent cell at a given child slot. Input port "gin" is fed by the
// child's "gout" (its verso port); the slot's bits start at the sum of the
// fan-in widths of all earlier slots:
//
//	pairs, err := catalog.Match(cocycle, pre, 1)
//	// gin[1] <- gout[0], pin[1] <- pout[0]
//
// # File Format
//
// Catalog files are TOML or YAML, selected by extension:
//
//	name = "adder"
//
//	[roles]
//	pre = "ppa_pre"
//	root = "ppa_post"
//
//	[[module]]
//	name = "ppa_pre"
//	category = "pre"
//	delay = 3.0
//	inputs = [{ name = "a_in", width = 1, fanin = [1, 0] }]
//	outputs = [{ name = "pout", width = 1 }]
package catalog
