package tree

import (
	"fmt"
	"math/big"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/prefixtower/pkg/catalog"
	"github.com/matzehuels/prefixtower/pkg/dag"
	"github.com/matzehuels/prefixtower/pkg/errors"
)

// ForestConfig describes the forest NewForest builds.
type ForestConfig struct {
	// Width is the number of output bits, in [1, 64].
	Width int
	// Ranks holds the starting rank of every tree, index a-1 for the tree
	// of a leaves. Missing or nil entries mean 0.
	Ranks []*big.Int
	// Recipe reshapes every tree with the same named recipe. It cannot be
	// combined with non-zero ranks.
	Recipe string
	// Name is the design name; it defaults to the catalog name.
	Name       string
	InPorts    []string
	OutPorts   []string
	WeightFunc dag.WeightFunc
	Logger     *log.Logger
}

// Forest is a complete adder: one tree per output bit. Tree a reads the
// inputs of bits 0..a-1 and drives output bit a-1, so the forest of width w
// produces a w-bit sum.
type Forest struct {
	name  string
	cat   *catalog.Catalog
	trees []*Tree
}

// NewForest builds the trees of widths 1 through cfg.Width.
func NewForest(cat *catalog.Catalog, cfg ForestConfig) (*Forest, error) {
	if err := errors.ValidateWidth(cfg.Width); err != nil {
		return nil, err
	}
	if len(cfg.Ranks) > cfg.Width {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%d ranks given for a forest of width %d",
			len(cfg.Ranks), cfg.Width)
	}
	f := &Forest{name: cfg.Name, cat: cat}
	if f.name == "" {
		f.name = cat.Name()
	}
	for a := 1; a <= cfg.Width; a++ {
		var rank *big.Int
		if a-1 < len(cfg.Ranks) {
			rank = cfg.Ranks[a-1]
		}
		t, err := newTree(cat, Config{
			Width:      a,
			Rank:       rank,
			Recipe:     cfg.Recipe,
			Name:       fmt.Sprintf("tree_%d", a),
			InPorts:    cfg.InPorts,
			OutPorts:   cfg.OutPorts,
			WeightFunc: cfg.WeightFunc,
			Logger:     cfg.Logger,
		}, a-1)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", a, err)
		}
		f.trees = append(f.trees, t)
	}
	return f, nil
}

// Name returns the design name.
func (f *Forest) Name() string { return f.name }

// Catalog returns the catalog the trees are built against.
func (f *Forest) Catalog() *catalog.Catalog { return f.cat }

// Width returns the number of output bits.
func (f *Forest) Width() int { return len(f.trees) }

// Trees returns the trees, smallest first.
func (f *Forest) Trees() []*Tree { return f.trees }

// Tree returns the tree of a leaves, which drives output bit a-1.
func (f *Forest) Tree(a int) *Tree { return f.trees[a-1] }

// Ranks returns the current rank of every tree.
func (f *Forest) Ranks() []*big.Int {
	out := make([]*big.Int, len(f.trees))
	for i, t := range f.trees {
		out[i] = t.TreeRank()
	}
	return out
}

// Height returns the height of the tallest tree.
func (f *Forest) Height() int {
	h := 0
	for _, t := range f.trees {
		h = max(h, t.TreeHeight())
	}
	return h
}

// NodeCount returns the number of nodes over all trees.
func (f *Forest) NodeCount() int {
	n := 0
	for _, t := range f.trees {
		n += t.NodeCount()
	}
	return n
}

// BlockCount returns the number of blocks over all trees.
func (f *Forest) BlockCount() int {
	n := 0
	for _, t := range f.trees {
		n += len(t.Blocks())
	}
	return n
}

// ApplyRecipe reshapes every tree with a named recipe.
func (f *Forest) ApplyRecipe(name string) error {
	for i, t := range f.trees {
		if err := t.ApplyRecipe(name); err != nil {
			return fmt.Errorf("tree %d: %w", i+1, err)
		}
	}
	return nil
}

// OptimizeNodes swaps right spine cells in every tree.
func (f *Forest) OptimizeNodes() error {
	for i, t := range f.trees {
		if err := t.OptimizeNodes(); err != nil {
			return fmt.Errorf("tree %d: %w", i+1, err)
		}
	}
	return nil
}

// AddBestBlocks partitions the critical path of every tree.
func (f *Forest) AddBestBlocks() ([]dag.BlockID, error) {
	var all []dag.BlockID
	for i, t := range f.trees {
		ids, err := t.AddBestBlocks()
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i+1, err)
		}
		all = append(all, ids...)
	}
	return all, nil
}

// Netlist merges the netlists of all trees into one module. Trees share
// the input nets of the bits they have in common.
func (f *Forest) Netlist(boundary dag.Boundary) *dag.Netlist {
	parts := make([]*dag.Netlist, len(f.trees))
	for i, t := range f.trees {
		parts[i] = t.Netlist(nil)
	}
	return dag.MergeNetlists(f.name, parts, boundary)
}
