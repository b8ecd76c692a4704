package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/prefixtower/pkg/dag"
	"github.com/matzehuels/prefixtower/pkg/tree"
)

// Design is the serialized form of a tree.
type Design struct {
	Name    string       `json:"name"`
	Catalog string       `json:"catalog"`
	Width   int          `json:"width"`
	Rank    string       `json:"rank"`
	Height  int          `json:"height"`
	Depths  []int        `json:"depths"`
	Root    dag.NodeID   `json:"root"`
	Nodes   []node       `json:"nodes"`
	Edges   []edge       `json:"edges"`
	Blocks  []*dag.Block `json:"blocks,omitempty"`
	Netlist *dag.Netlist `json:"netlist,omitempty"`
}

type node struct {
	ID       dag.NodeID   `json:"id"`
	Module   string       `json:"module"`
	Label    string       `json:"label,omitempty"`
	Column   int          `json:"column"`
	Depth    int          `json:"depth"`
	Parent   dag.NodeID   `json:"parent"`
	Children []dag.NodeID `json:"children,omitempty"`
	Block    dag.BlockID  `json:"block"`
}

type edge struct {
	Parent dag.NodeID    `json:"parent"`
	Child  dag.NodeID    `json:"child"`
	Pairs  []dag.PinPair `json:"pairs"`
	Weight float64       `json:"weight"`
}

// Export captures t as a Design. With netlist set the flattened netlist
// over the discovered boundary is included.
func Export(t *tree.Tree, netlist bool) *Design {
	d := &Design{
		Name:    t.Name(),
		Catalog: t.Catalog().Name(),
		Width:   t.Width(),
		Rank:    t.TreeRank().String(),
		Height:  t.TreeHeight(),
		Depths:  t.Depths(),
		Root:    t.Root(),
		Blocks:  t.Blocks(),
	}
	for _, n := range t.Nodes() {
		d.Nodes = append(d.Nodes, node{
			ID:       n.ID,
			Module:   n.Module,
			Label:    n.Label,
			Column:   n.Column,
			Depth:    n.Depth,
			Parent:   n.Parent,
			Children: n.AttachedChildren(),
			Block:    n.Block,
		})
	}
	for _, e := range t.Edges() {
		d.Edges = append(d.Edges, edge{Parent: e.Parent, Child: e.Child, Pairs: e.Pairs, Weight: e.Weight})
	}
	if netlist {
		d.Netlist = t.Netlist(nil)
	}
	return d
}

// WriteJSON encodes t as an indented design document.
func WriteJSON(t *tree.Tree, w io.Writer, netlist bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Export(t, netlist)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes t to a JSON file at path.
func ExportJSON(t *tree.Tree, path string, netlist bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(t, f, netlist)
}

// ForestDesign is the serialized form of a forest: the design of every
// tree, smallest first, and the merged netlist.
type ForestDesign struct {
	Name    string       `json:"name"`
	Catalog string       `json:"catalog"`
	Width   int          `json:"width"`
	Height  int          `json:"height"`
	Trees   []*Design    `json:"trees"`
	Netlist *dag.Netlist `json:"netlist"`
}

// ExportForest captures f as a ForestDesign.
func ExportForest(f *tree.Forest) *ForestDesign {
	d := &ForestDesign{
		Name:    f.Name(),
		Catalog: f.Catalog().Name(),
		Width:   f.Width(),
		Height:  f.Height(),
		Netlist: f.Netlist(nil),
	}
	for _, t := range f.Trees() {
		d.Trees = append(d.Trees, Export(t, false))
	}
	return d
}

// WriteForestJSON encodes f as an indented forest document.
func WriteForestJSON(f *tree.Forest, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ExportForest(f)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
