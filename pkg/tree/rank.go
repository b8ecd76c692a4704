package tree

import (
	"math/big"
	"math/bits"

	"github.com/matzehuels/prefixtower/pkg/catalan"
	"github.com/matzehuels/prefixtower/pkg/dag"
	"github.com/matzehuels/prefixtower/pkg/errors"
)

// MaxRank returns the largest rank of a tree of this width.
func (t *Tree) MaxRank() *big.Int {
	return new(big.Int).Sub(catalan.Number(t.width-1), big.NewInt(1))
}

// Unrank builds the shape with the given rank and width internal nodes in
// slot of parent, consuming leaves from the end of the slice (the most
// significant leaf first). Passing dag.None as parent reuses the root as the
// first internal node. Mirror flips the slot order of every split; lspine
// builds the slot-0 chain from left spine modules.
//
// It returns the ID of the subtree root. The leaves must be detached and
// there must be exactly width+1 of them.
func (t *Tree) Unrank(parent dag.NodeID, slot int, rank *big.Int, width int, leaves []dag.NodeID, mirror, lspine bool) (dag.NodeID, error) {
	if !catalan.Valid(width, rank) {
		return dag.None, errors.RankOutOfRange("rank %s is outside [0, %s) for width %d", rank, catalan.Number(width), width)
	}
	if len(leaves) != width+1 {
		return dag.None, errors.Structural("unranking width %d needs %d leaves, got %d", width, width+1, len(leaves))
	}
	for _, l := range leaves {
		n, ok := t.Node(l)
		if !ok || !n.IsDetached() {
			return dag.None, errors.Structural("leaf %d is missing or attached", l)
		}
	}
	if parent != dag.None {
		if t.Child(parent, slot) != dag.None {
			return dag.None, errors.Structural("slot %d of node %d is taken", slot, parent)
		}
	} else if len(t.MustNode(t.root).AttachedChildren()) > 0 {
		return dag.None, errors.Structural("root already has children")
	}
	pool := append([]dag.NodeID(nil), leaves...)
	id, err := t.unrank(parent, slot, new(big.Int).Set(rank), width, &pool, mirror, lspine)
	if err != nil {
		return dag.None, err
	}
	t.relayout()
	return id, nil
}

func (t *Tree) unrank(parent dag.NodeID, slot int, rank *big.Int, width int, pool *[]dag.NodeID, mirror, lspine bool) (dag.NodeID, error) {
	if width == 0 {
		leaf := (*pool)[len(*pool)-1]
		*pool = (*pool)[:len(*pool)-1]
		if parent == dag.None {
			parent = t.root
		}
		if _, err := t.Connect(parent, leaf, slot); err != nil {
			return dag.None, err
		}
		return leaf, nil
	}

	if rank.Cmp(catalan.MirrorPoint(width)) >= 0 {
		mirror = !mirror
		rank = new(big.Int).Sub(catalan.Number(width), rank)
		rank.Sub(rank, big.NewInt(1))
	}

	node := t.root
	if parent != dag.None {
		module := t.roles.Cocycle
		if lspine && slot == 0 && t.roles.LSpine != "" {
			module = t.roles.LSpine
		}
		var err error
		if node, err = t.AddNode(module, 0, 0); err != nil {
			return dag.None, err
		}
		if _, err := t.Connect(parent, node, slot); err != nil {
			return dag.None, err
		}
	}

	light, heavy, residual := catalan.Split(width, rank)
	q, r := new(big.Int).QuoRem(residual, catalan.Number(light), new(big.Int))
	var err error
	if mirror {
		if _, err = t.unrank(node, 0, q, heavy, pool, mirror, lspine); err == nil {
			_, err = t.unrank(node, 1, r, light, pool, mirror, false)
		}
	} else {
		if _, err = t.unrank(node, 0, r, light, pool, mirror, lspine); err == nil {
			_, err = t.unrank(node, 1, q, heavy, pool, mirror, false)
		}
	}
	return node, err
}

// Rank returns the rank of the subtree at id, the inverse of Unrank with an
// unmirrored start. Buffers are transparent.
func (t *Tree) Rank(id dag.NodeID) *big.Int {
	return t.rankOf(id, false)
}

// TreeRank returns the rank of the whole tree.
func (t *Tree) TreeRank() *big.Int { return t.Rank(t.root) }

func (t *Tree) rankOf(id dag.NodeID, mirror bool) *big.Int {
	kids := t.MustNode(id).AttachedChildren()
	switch len(kids) {
	case 0:
		return new(big.Int)
	case 1:
		return t.rankOf(kids[0], mirror)
	}
	l, r := kids[0], kids[1]
	if mirror {
		l, r = r, l
	}
	lw, rw := t.internal(l), t.internal(r)
	n := lw + rw + 1

	if lw <= rw {
		// Lighter subtree on the expected side: the rank lies below the
		// mirror point and the children keep this orientation.
		out := new(big.Int).Mul(t.rankOf(r, mirror), catalan.Number(lw))
		out.Add(out, t.rankOf(l, mirror))
		return out.Add(out, catalan.ClassOffset(n, lw))
	}
	// Heavier subtree first: this split was produced by mirroring a rank
	// below the mirror point, so rank the light side with the flipped
	// orientation and reflect the result.
	inner := new(big.Int).Mul(t.rankOf(l, !mirror), catalan.Number(rw))
	inner.Add(inner, t.rankOf(r, !mirror))
	inner.Add(inner, catalan.ClassOffset(n, rw))
	out := new(big.Int).Sub(catalan.Number(n), big.NewInt(1))
	return out.Sub(out, inner)
}

// internal returns the number of internal nodes of a binary shape over the
// leaves below id.
func (t *Tree) internal(id dag.NodeID) int {
	return bits.OnesCount64(t.MustNode(id).LeafMask) - 1
}

// RemoveSubtree deletes id and everything below it, leaves included.
// The root cannot be removed.
func (t *Tree) RemoveSubtree(id dag.NodeID) error {
	if _, ok := t.Node(id); !ok {
		return errors.Structural("node %d does not exist", id)
	}
	if id == t.root {
		return errors.Structural("cannot remove the root")
	}
	if err := t.removeBelow(id, false); err != nil {
		return err
	}
	return t.RemoveNode(id)
}

// removeBelow deletes the descendants of id. With keepLeaves, leaves are
// only detached so they can be reused.
func (t *Tree) removeBelow(id dag.NodeID, keepLeaves bool) error {
	for _, c := range t.MustNode(id).AttachedChildren() {
		if t.IsLeaf(c) && keepLeaves {
			if err := t.RemoveEdge(id, c); err != nil {
				return err
			}
			continue
		}
		if err := t.removeBelow(c, keepLeaves); err != nil {
			return err
		}
		if err := t.RemoveNode(c); err != nil {
			return err
		}
	}
	return nil
}

// MirrorSubtree replaces the subtree at id with its mirror image and returns
// the new subtree root. Ranks strictly inside the balanced split class have
// no mirror rank and fail with RANK_OUT_OF_RANGE.
func (t *Tree) MirrorSubtree(id dag.NodeID) (dag.NodeID, error) {
	if _, ok := t.Node(id); !ok {
		return dag.None, errors.Structural("node %d does not exist", id)
	}
	width := t.internal(id)
	if width < 1 || t.IsLeaf(id) {
		return id, nil
	}
	rank := t.Rank(id)
	lo, hi := catalan.Bounds(width)
	last := new(big.Int).Sub(hi, big.NewInt(1))
	if rank.Cmp(lo) > 0 && rank.Cmp(last) < 0 {
		return dag.None, errors.RankOutOfRange("rank %s of width %d lies inside the balanced class [%s, %s) and has no mirror",
			rank, width, lo, hi)
	}
	mirrored := new(big.Int).Sub(catalan.Number(width), rank)
	mirrored.Sub(mirrored, big.NewInt(1))

	leaves := t.Leaves(id)
	lspine := t.OnLeftSpine(id)
	pos := t.positionOf(id)
	if err := t.removeBelow(id, true); err != nil {
		return dag.None, err
	}
	if id != t.root {
		if err := t.RemoveNode(id); err != nil {
			return dag.None, err
		}
	}
	t.logger.Debug("mirroring subtree", "width", width, "rank", rank, "mirrored", mirrored)
	out, err := t.Unrank(pos.parent, pos.slot, mirrored, width, leaves, false, lspine)
	if err != nil {
		return dag.None, err
	}
	return out, nil
}
