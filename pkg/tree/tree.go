package tree

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/prefixtower/pkg/catalan"
	"github.com/matzehuels/prefixtower/pkg/catalog"
	"github.com/matzehuels/prefixtower/pkg/dag"
	"github.com/matzehuels/prefixtower/pkg/errors"
)

// Config describes the tree New builds.
type Config struct {
	// Width is the number of leaves, in [1, 64].
	Width int
	// Rank selects the initial shape in [0, catalan(Width-1)). Nil means 0.
	Rank *big.Int
	// Recipe, when set, builds rank 0 and reshapes it with a named recipe
	// (see [Recipes]). Rank must then be nil or zero.
	Recipe string
	// Name is the design name; it defaults to the catalog name.
	Name string
	// InPorts renames the boundary inputs of the leaves, position by
	// position. Missing entries keep the leaf module's port names.
	InPorts []string
	// OutPorts renames the boundary outputs of the root the same way.
	OutPorts []string
	// WeightFunc replaces the default edge weight heuristic.
	WeightFunc dag.WeightFunc
	// Logger receives debug output. Nil uses log.Default().
	Logger *log.Logger
}

// Tree is a prefix tree over a [dag.Graph]. The root is the first internal
// node; slot 0 of every node leads towards the most significant leaves.
//
// All graph methods are available, but structural edits should go through
// the tree so that the root reference, spine modules and positions stay
// consistent.
type Tree struct {
	*dag.Graph

	roles    catalog.Roles
	root     dag.NodeID
	width    int
	radix    int
	inPorts  []string
	outPorts []string
	logger   *log.Logger
	// bit is the output bit the tree drives inside a forest, or -1 for a
	// standalone tree.
	bit int
}

// New builds a tree of cfg.Width leaves over cat.
func New(cat *catalog.Catalog, cfg Config) (*Tree, error) {
	return newTree(cat, cfg, -1)
}

func newTree(cat *catalog.Catalog, cfg Config, bit int) (*Tree, error) {
	if err := errors.ValidateWidth(cfg.Width); err != nil {
		return nil, err
	}
	roles := cat.Roles()
	cocycle, err := cat.Module(roles.Cocycle)
	if err != nil {
		return nil, err
	}
	if cocycle.Radix() != 2 {
		return nil, errors.New(errors.ErrCodeUnsupported, "cocycle %s has radix %d, only binary trees are supported",
			cocycle.Name, cocycle.Radix())
	}
	rank := new(big.Int)
	if cfg.Rank != nil {
		rank.Set(cfg.Rank)
	}
	if cfg.Recipe != "" {
		if _, ok := recipes[cfg.Recipe]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidRecipe, "unknown recipe %q", cfg.Recipe)
		}
		if rank.Sign() != 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "a recipe cannot be combined with rank %s", rank)
		}
	}
	if !catalan.Valid(cfg.Width-1, rank) {
		return nil, errors.RankOutOfRange("rank %s is outside [0, %s) for width %d",
			rank, catalan.Number(cfg.Width-1), cfg.Width)
	}

	opts := []dag.Option{dag.WithWeightFunc(cfg.WeightFunc)}
	if cfg.Name != "" {
		opts = append(opts, dag.WithName(cfg.Name))
	}
	t := &Tree{
		Graph:    dag.New(cat, opts...),
		roles:    roles,
		width:    cfg.Width,
		radix:    2,
		inPorts:  cfg.InPorts,
		outPorts: cfg.OutPorts,
		logger:   cfg.Logger,
		bit:      bit,
	}
	if t.logger == nil {
		t.logger = log.Default()
	}

	rootModule := roles.Root
	if t.width == 1 && roles.SmallRoot != "" {
		rootModule = roles.SmallRoot
	}
	if t.root, err = t.AddNode(rootModule, 0, 0); err != nil {
		return nil, err
	}
	if err := t.bindOutPorts(t.root); err != nil {
		return nil, err
	}

	leaves := make([]dag.NodeID, t.width)
	for a := range leaves {
		if leaves[a], err = t.newLeaf(a); err != nil {
			return nil, err
		}
	}

	if t.width == 1 {
		if _, err := t.Connect(t.root, leaves[0], 0); err != nil {
			return nil, err
		}
	} else if _, err := t.unrank(dag.None, 0, rank, t.width-1, &leaves, false, true); err != nil {
		return nil, err
	}
	t.relayout()
	t.logger.Debug("tree built", "width", t.width, "rank", rank, "nodes", t.NodeCount())

	if cfg.Recipe != "" {
		if err := t.ApplyRecipe(cfg.Recipe); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// newLeaf adds the pre-processing cell for leaf a and binds its boundary
// inputs. The most significant leaf feeds the left spine.
func (t *Tree) newLeaf(a int) (dag.NodeID, error) {
	module, stem := t.roles.Pre, "gp"
	switch {
	case t.width == 1 && t.roles.SmallPre != "":
		module, stem = t.roles.SmallPre, "p"
	case a == t.width-1 && t.roles.LSpinePre != "":
		module, stem = t.roles.LSpinePre, "p"
	}
	id, err := t.AddNode(module, a, 0)
	if err != nil {
		return dag.None, err
	}
	n := t.MustNode(id)
	n.Label = fmt.Sprintf("%s[%d]", stem, a)
	if err := t.bindInPorts(id, a); err != nil {
		return dag.None, err
	}
	return id, t.MarkLeaf(id, a)
}

func (t *Tree) bindInPorts(id dag.NodeID, a int) error {
	n := t.MustNode(id)
	for i, p := range n.Inputs {
		name := portName(t.inPorts, i, p.Name)
		net := dag.FixedNet(fmt.Sprintf("%s[%d]", name, a))
		if t.width == 1 && t.bit < 0 {
			net = dag.FixedNet(name)
		}
		if err := t.BindNet(id, dag.Pin{Port: p.Name, Bit: 0}, net); err != nil {
			return err
		}
	}
	return nil
}

// bindOutPorts names the root outputs. Inside a forest every port is a
// slice of a wider bus indexed by the tree's bit.
func (t *Tree) bindOutPorts(id dag.NodeID) error {
	n := t.MustNode(id)
	for i, p := range n.Outputs {
		name := portName(t.outPorts, i, p.Name)
		for b := range p.Nets {
			var net dag.Net
			switch {
			case t.bit >= 0:
				net = dag.FixedNet(fmt.Sprintf("%s[%d]", name, t.bit*len(p.Nets)+b))
			case len(p.Nets) > 1:
				net = dag.FixedNet(fmt.Sprintf("%s[%d]", name, b))
			default:
				net = dag.FixedNet(name)
			}
			if err := t.BindNet(id, dag.Pin{Port: p.Name, Bit: b}, net); err != nil {
				return err
			}
		}
	}
	return nil
}

func portName(names []string, i int, fallback string) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}
	return fallback
}

// Root returns the root node.
func (t *Tree) Root() dag.NodeID { return t.root }

// Width returns the number of leaves.
func (t *Tree) Width() int { return t.width }

// Radix returns the number of child slots of internal nodes.
func (t *Tree) Radix() int { return t.radix }

// Roles returns the catalog role assignment the tree builds with.
func (t *Tree) Roles() catalog.Roles { return t.roles }

// Child returns the node in the given slot of id, or dag.None.
func (t *Tree) Child(id dag.NodeID, slot int) dag.NodeID {
	return t.MustNode(id).Child(slot)
}

// Parent returns the parent of id, or dag.None for the root.
func (t *Tree) Parent(id dag.NodeID) dag.NodeID { return t.MustNode(id).Parent }

// LeafCount returns the number of leaves below id.
func (t *Tree) LeafCount(id dag.NodeID) int { return bits.OnesCount64(t.MustNode(id).LeafMask) }

// IsLeaf reports whether id has no children.
func (t *Tree) IsLeaf(id dag.NodeID) bool { return t.MustNode(id).IsLeaf() }

// OnLeftSpine reports whether id owns the most significant leaf.
func (t *Tree) OnLeftSpine(id dag.NodeID) bool {
	return t.MustNode(id).LeafMask >= 1<<(t.width-1)
}

// OnRightSpine reports whether id owns the least significant leaf and
// every leaf below its most significant one.
func (t *Tree) OnRightSpine(id dag.NodeID) bool {
	m := t.MustNode(id).LeafMask
	return m&(m+1) == 0
}

// Height returns the height of the subtree at id; leaves have height 0.
func (t *Tree) Height(id dag.NodeID) int {
	h := 0
	for _, c := range t.MustNode(id).AttachedChildren() {
		h = max(h, t.Height(c)+1)
	}
	return h
}

// TreeHeight returns the number of levels, counting the root and the leaves.
func (t *Tree) TreeHeight() int { return t.Height(t.root) + 1 }

// IsProper reports whether the subtree at id is complete: every leaf sits
// at the same depth and no buffer lengthens a branch.
func (t *Tree) IsProper(id dag.NodeID) bool {
	return t.LeafCount(id) == 1<<t.Height(id)
}

// Leaves returns the leaves below id, least significant first.
func (t *Tree) Leaves(id dag.NodeID) []dag.NodeID {
	var out []dag.NodeID
	var walk func(dag.NodeID)
	walk = func(n dag.NodeID) {
		node := t.MustNode(n)
		if node.IsLeaf() {
			out = append(out, n)
			return
		}
		for i := len(node.Children) - 1; i >= 0; i-- {
			if c := node.Children[i]; c != dag.None {
				walk(c)
			}
		}
	}
	walk(id)
	return out
}

// LeftmostLeaf follows slot 0 down from id.
func (t *Tree) LeftmostLeaf(id dag.NodeID) dag.NodeID {
	for {
		n := t.MustNode(id)
		c := n.AttachedChildren()
		if len(c) == 0 {
			return id
		}
		id = c[0]
	}
}

// RightmostLeaf follows the last occupied slot down from id.
func (t *Tree) RightmostLeaf(id dag.NodeID) dag.NodeID {
	for {
		c := t.MustNode(id).AttachedChildren()
		if len(c) == 0 {
			return id
		}
		id = c[len(c)-1]
	}
}

// Depths returns the depth of every leaf, least significant first.
func (t *Tree) Depths() []int {
	leaves := t.Leaves(t.root)
	out := make([]int, len(leaves))
	for i, l := range leaves {
		out[i] = t.MustNode(l).Depth
	}
	return out
}

// relayout recomputes depth and column of every node from the root down.
// Columns name the most significant leaf a node owns.
func (t *Tree) relayout() {
	var walk func(dag.NodeID, int)
	walk = func(id dag.NodeID, depth int) {
		n := t.MustNode(id)
		n.Depth = depth
		n.Column = bits.Len64(n.LeafMask) - 1
		for _, c := range n.AttachedChildren() {
			walk(c, depth+1)
		}
	}
	walk(t.root, 0)
}

// position addresses a node by where it hangs, which survives morphs and
// rotations of the node itself.
type position struct {
	parent dag.NodeID
	slot   int
}

func (t *Tree) positionOf(id dag.NodeID) position {
	p := t.MustNode(id).Parent
	if p == dag.None {
		return position{parent: dag.None}
	}
	return position{parent: p, slot: t.MustNode(p).Slot(id)}
}

func (t *Tree) at(pos position) dag.NodeID {
	if pos.parent == dag.None {
		return t.root
	}
	return t.Child(pos.parent, pos.slot)
}
