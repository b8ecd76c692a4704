// Package io provides JSON import and export for synthesized prefix trees.
//
// # JSON Format
//
// A design document records the tree shape, the cells and the edges between
// them, the partitioner's blocks and, optionally, the flattened netlist:
//
//	{
//	  "name": "adder",
//	  "catalog": "adder",
//	  "width": 4,
//	  "rank": "2",
//	  "height": 3,
//	  "depths": [2, 2, 2, 2],
//	  "root": 0,
//	  "nodes": [{"id": 0, "module": "ppa_post", "column": 3, "depth": 0, ...}],
//	  "edges": [{"parent": 0, "child": 5, "pairs": [...], "weight": 1.5}],
//	  "blocks": [{"id": 0, "nodes": [4, 7]}]
//	}
//
// The rank is a decimal string because ranks of wide trees exceed 64 bits.
//
// # Round Trips
//
// [ReadJSON] decodes and checks a document; [Rebuild] turns it back into a
// tree by unranking the recorded shape. Rebuilt trees have the same shape
// and block count as the exported one. Buffers and module swaps made by
// recipes are not part of the shape and are not restored.
package io
