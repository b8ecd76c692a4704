package tree

import (
	"github.com/matzehuels/prefixtower/pkg/dag"
)

// ReduceHeight tries to lower the height of the subtree at id by one. See
// ReduceHeightTo.
func (t *Tree) ReduceHeight(id dag.NodeID) (dag.NodeID, error) {
	return t.ReduceHeightTo(id, t.Height(id)-1)
}

// ReduceHeightTo tries to bring the subtree at id down to target levels
// using rotations, shifts and buffer removal. It returns the node now at
// id's position, or dag.None when the reduction is impossible: a leaf, a
// target below log2 of the leaf count, or no further progress.
//
// Children are classified against 2^(target-1) leaves. An over-full child
// next to an under-full one hands it leaves through a shift; any other
// child that is too tall is reduced recursively.
func (t *Tree) ReduceHeightTo(id dag.NodeID, target int) (dag.NodeID, error) {
	pos := t.positionOf(id)
	for guard := 0; guard < t.reduceBudget(); guard++ {
		node := t.at(pos)
		if t.IsLeaf(node) {
			return dag.None, nil
		}
		height := t.Height(node)
		if target >= height {
			return node, nil
		}
		if target < 1 || 1<<target < t.LeafCount(node) {
			return dag.None, nil
		}
		progressed, err := t.reduceStep(node, target)
		if err != nil {
			return dag.None, err
		}
		if !progressed {
			return dag.None, nil
		}
	}
	t.logger.Debug("height reduction gave up", "node", id, "target", target)
	return dag.None, nil
}

// reduceBudget bounds the fixpoint loop of ReduceHeightTo.
func (t *Tree) reduceBudget() int { return 4*t.width*t.width + 16 }

// reduceStep performs the first applicable repair on a child of node and
// reports whether anything changed.
func (t *Tree) reduceStep(node dag.NodeID, target int) (bool, error) {
	kids := t.MustNode(node).AttachedChildren()
	half := 1 << (target - 1)
	under := make([]bool, len(kids))
	over := make([]bool, len(kids))
	for i, c := range kids {
		under[i] = t.LeafCount(c) < half
		over[i] = t.LeafCount(c) > half
	}
	for i, c := range kids {
		switch {
		case t.IsLeaf(c):
			continue
		case t.isBuffer(c):
			_, err := t.RemoveBuffer(c)
			return err == nil, err
		case t.Height(c) <= target-1:
			continue
		case i > 0 && over[i] && under[i-1]:
			out, err := t.LeftShift(t.Parent(t.LeftmostLeaf(c)))
			return out != dag.None, err
		case i < len(kids)-1 && over[i] && under[i+1]:
			out, err := t.RightShift(t.Parent(t.RightmostLeaf(c)))
			return out != dag.None, err
		default:
			out, err := t.ReduceHeightTo(c, target-1)
			return out != dag.None, err
		}
	}
	return false, nil
}

// Balance reduces the height of the subtree at id until no further
// reduction is possible, then balances each child. The result is a local
// minimum, not necessarily the lowest possible height. It returns the node
// now at id's position.
func (t *Tree) Balance(id dag.NodeID) (dag.NodeID, error) {
	pos := t.positionOf(id)
	if t.IsLeaf(id) {
		return id, nil
	}
	for {
		out, err := t.ReduceHeight(t.at(pos))
		if err != nil {
			return dag.None, err
		}
		if out == dag.None {
			break
		}
	}
	node := t.at(pos)
	for slot := range t.MustNode(node).Children {
		c := t.Child(t.at(pos), slot)
		if c == dag.None {
			continue
		}
		if _, err := t.Balance(c); err != nil {
			return dag.None, err
		}
	}
	return t.at(pos), nil
}

// LBalance balances the subtree at id and then moves leaves from the right
// child to the left until the left child is full, producing the
// left-packed shape. Buffers in the subtree are removed.
func (t *Tree) LBalance(id dag.NodeID) error {
	return t.sideBalance(id, 1)
}

// RBalance is the mirror image of LBalance: leaves move from the left child
// to the right.
func (t *Tree) RBalance(id dag.NodeID) error {
	return t.sideBalance(id, 0)
}

// sideBalance packs the subtree towards the side opposite to from, the slot
// that gives up leaves.
func (t *Tree) sideBalance(id dag.NodeID, from int) error {
	if t.IsLeaf(id) {
		return nil
	}
	pos := t.positionOf(id)
	for guard := 0; guard < t.reduceBudget(); guard++ {
		node, err := t.Balance(t.at(pos))
		if err != nil {
			return err
		}
		if t.IsProper(node) {
			return nil
		}
		to := 1 - from
		full := 1 << (t.Height(node) - 1)
		src, dst := t.Child(node, from), t.Child(node, to)
		if src != dag.None && dst != dag.None && t.LeafCount(dst) < full && t.LeafCount(src) > 1 {
			var out dag.NodeID
			if from == 1 {
				out, err = t.LeftShift(t.Parent(t.LeftmostLeaf(src)))
			} else {
				out, err = t.RightShift(t.Parent(t.RightmostLeaf(src)))
			}
			if err != nil {
				return err
			}
			if out != dag.None {
				continue
			}
		}
		return t.sideBalanceChildren(pos, from)
	}
	t.logger.Debug("side balance gave up", "node", id)
	return nil
}

func (t *Tree) sideBalanceChildren(pos position, from int) error {
	node := t.at(pos)
	if c := t.Child(node, 0); c != dag.None {
		if _, err := t.Balance(c); err != nil {
			return err
		}
	}
	for slot := 0; slot < t.radix; slot++ {
		if c := t.Child(t.at(pos), slot); c != dag.None {
			if err := t.sideBalance(c, from); err != nil {
				return err
			}
		}
	}
	return nil
}

// EqualizeDepths pads shorter branches of the subtree at id with buffers so
// that its leaves end at the same depth. desired is the target height of the
// subtree; a negative value uses its current height.
//
// Following the classic prefix-graph drawings, the leftmost branch of every
// node is never padded; it carries the left spine, whose cells have no
// buffer variant.
func (t *Tree) EqualizeDepths(id dag.NodeID, desired int) error {
	height := t.Height(id)
	if height == 0 {
		return nil
	}
	if desired < 0 {
		desired = height
	}
	pos := t.positionOf(id)
	if pos.parent != dag.None && pos.slot != 0 {
		for ; desired > height; desired-- {
			if _, err := t.InsertBuffer(t.at(pos)); err != nil {
				return err
			}
		}
	}
	for slot := 0; slot < t.radix; slot++ {
		c := t.Child(id, slot)
		if c == dag.None {
			continue
		}
		if t.IsProper(c) {
			if slot != 0 {
				for i := 0; i < desired-t.Height(c)-1; i++ {
					if _, err := t.InsertBuffer(c); err != nil {
						return err
					}
				}
			}
			continue
		}
		if err := t.EqualizeDepths(c, desired-1); err != nil {
			return err
		}
	}
	return nil
}
