package tree

import (
	"github.com/matzehuels/prefixtower/pkg/dag"
)

// AutoRow asks a legacy transform to search for a row itself, starting just
// below the root.
const AutoRow = -1

// Coord addresses a node the way classic prefix-graph drawings do: X is the
// column counted from the least significant leaf, Y the row counted up from
// the leaves.
type Coord struct {
	X, Y int
}

// At returns the node at a classic coordinate: starting from leaf x, it
// climbs through nodes that are the leftmost child of their parent until it
// reaches height y.
func (t *Tree) At(x, y int) (dag.NodeID, bool) {
	leaves := t.Leaves(t.root)
	if x < 0 || x >= len(leaves) || y < 0 {
		return dag.None, false
	}
	id := leaves[x]
	for {
		h := t.Height(id)
		if h == y {
			return id, true
		}
		if h > y {
			return dag.None, false
		}
		p := t.Parent(id)
		if p == dag.None || t.Child(p, 0) != id {
			return dag.None, false
		}
		id = p
	}
}

// transform applies op to the node at (x, y). With find set, a failed
// transform or a missing node moves one row down and tries again.
func (t *Tree) transform(x, y int, find bool, op func(dag.NodeID) (bool, error)) (Coord, bool, error) {
	if y == AutoRow {
		y, find = t.TreeHeight()-2, true
	}
	for {
		id, ok := t.At(x, y)
		if !ok {
			if find && y > 1 {
				y--
				continue
			}
			return Coord{}, false, nil
		}
		applied, err := op(id)
		if err != nil {
			return Coord{}, false, err
		}
		if !applied && find {
			y--
			continue
		}
		return Coord{X: x, Y: y}, true, nil
	}
}

// LF reduces the height of the node at (x, y) by one. Pass AutoRow to try
// rows from the top down. It returns the coordinate it pivoted on.
func (t *Tree) LF(x, y int) (Coord, bool, error) {
	return t.transform(x, y, false, func(id dag.NodeID) (bool, error) {
		out, err := t.ReduceHeight(id)
		return out != dag.None, err
	})
}

// FL inserts a buffer above the node at (x, y), undoing an LF.
func (t *Tree) FL(x, y int) (Coord, bool, error) {
	return t.transform(x, y, false, func(id dag.NodeID) (bool, error) {
		_, err := t.InsertBuffer(id)
		return err == nil, err
	})
}

// FT shifts the leftmost leaf of the node's right subtree to the left.
func (t *Tree) FT(x, y int) (Coord, bool, error) {
	return t.transform(x, y, false, func(id dag.NodeID) (bool, error) {
		right := t.Child(id, 1)
		if right == dag.None {
			return false, nil
		}
		out, err := t.LeftShift(t.Parent(t.LeftmostLeaf(right)))
		return out != dag.None, err
	})
}

// TF shifts the rightmost leaf of the node's left subtree to the right,
// undoing an FT.
func (t *Tree) TF(x, y int) (Coord, bool, error) {
	return t.transform(x, y, false, func(id dag.NodeID) (bool, error) {
		left := t.Child(id, 0)
		if left == dag.None {
			return false, nil
		}
		out, err := t.RightShift(t.Parent(t.RightmostLeaf(left)))
		return out != dag.None, err
	})
}
