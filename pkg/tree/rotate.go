package tree

import (
	stderrors "errors"

	"github.com/matzehuels/prefixtower/pkg/dag"
	"github.com/matzehuels/prefixtower/pkg/errors"
)

// errWrongChild marks a rotation refused only because the pivot sits in the
// other slot; shifts recover from it by rotating the other way.
var errWrongChild = stderrors.New("pivot is in the wrong slot")

// link is one parent/child attachment a rotation re-creates.
type link struct {
	parent, child dag.NodeID
	slot          int
}

// LeftRotate rotates id, the right child of its parent, into the parent's
// place. The parent becomes id's left child and inherits id's former left
// child. It returns the node now occupying the parent's old position, which
// has a new ID if it had to be re-tagged.
//
// Both id and its parent must have full families. A pivot in slot 0 fails
// with STRUCTURAL.
func (t *Tree) LeftRotate(id dag.NodeID) (dag.NodeID, error) {
	return t.rotate(id, 1)
}

// RightRotate is the mirror image of LeftRotate: id must be the left child.
func (t *Tree) RightRotate(id dag.NodeID) (dag.NodeID, error) {
	return t.rotate(id, 0)
}

// rotate lifts id, which must hang in slot side of its parent, one level.
func (t *Tree) rotate(id dag.NodeID, side int) (dag.NodeID, error) {
	n, ok := t.Node(id)
	if !ok {
		return dag.None, errors.Structural("node %d does not exist", id)
	}
	if n.Parent == dag.None {
		return dag.None, errors.Structural("cannot rotate the root")
	}
	if !t.full(id) || !t.full(n.Parent) {
		return dag.None, errors.Structural("can only rotate nodes with full families")
	}
	parent := n.Parent
	if t.Child(parent, side) != id {
		return dag.None, errors.Wrap(errors.ErrCodeStructural, errWrongChild, "node %d is not in slot %d of %d", id, side, parent)
	}
	other := 1 - side
	inner := t.Child(id, other) // moves across to the parent
	outer := t.Child(id, side)  // stays with id
	sibling := t.Child(parent, other)
	pos := t.positionOf(parent)

	// Work out the modules the two nodes need in their new places.
	newParentMask := t.MustNode(sibling).LeafMask | t.MustNode(inner).LeafMask
	nodeModule := t.roleFor(id, pos.parent == dag.None, t.MustNode(parent).LeafMask)
	parentModule := t.roleFor(parent, false, newParentMask)

	links := []link{
		{parent, sibling, other},
		{parent, inner, side},
		{id, parent, other},
		{id, outer, side},
	}
	if pos.parent != dag.None {
		links = append(links, link{pos.parent, id, pos.slot})
	}
	modules := map[dag.NodeID]string{id: nodeModule, parent: parentModule}
	if err := t.checkLinks(links, modules); err != nil {
		return dag.None, err
	}

	if err := t.Detach(parent); err != nil {
		return dag.None, err
	}
	if err := t.Detach(id); err != nil {
		return dag.None, err
	}
	newID, err := t.retag(id, nodeModule)
	if err != nil {
		return dag.None, err
	}
	newParent, err := t.retag(parent, parentModule)
	if err != nil {
		return dag.None, err
	}
	rename := map[dag.NodeID]dag.NodeID{id: newID, parent: newParent}
	for _, l := range links {
		p, c := renamed(rename, l.parent), renamed(rename, l.child)
		if _, err := t.Connect(p, c, l.slot); err != nil {
			return dag.None, err
		}
	}
	if pos.parent == dag.None {
		t.root = newID
		if err := t.bindOutPorts(newID); err != nil {
			return dag.None, err
		}
	}
	t.relayout()
	return newID, nil
}

func renamed(m map[dag.NodeID]dag.NodeID, id dag.NodeID) dag.NodeID {
	if r, ok := m[id]; ok {
		return r
	}
	return id
}

// full reports whether every child slot of id is occupied.
func (t *Tree) full(id dag.NodeID) bool {
	return len(t.MustNode(id).AttachedChildren()) == t.radix
}

// roleFor returns the module id must carry at a position with the given
// leaf mask. Only nodes tagged with a structural role (root, left spine,
// cocycle) are re-tagged; anything else keeps its module.
func (t *Tree) roleFor(id dag.NodeID, isRoot bool, mask uint64) string {
	cur := t.MustNode(id).Module
	if cur != t.roles.Root && cur != t.roles.Cocycle && (t.roles.LSpine == "" || cur != t.roles.LSpine) {
		return cur
	}
	switch {
	case isRoot:
		return t.roles.Root
	case t.roles.LSpine != "" && mask >= 1<<(t.width-1):
		return t.roles.LSpine
	default:
		return t.roles.Cocycle
	}
}

// checkLinks verifies that every planned attachment passes the port matcher
// with the planned modules, so a rotation fails before it mutates anything.
func (t *Tree) checkLinks(links []link, modules map[dag.NodeID]string) error {
	name := func(id dag.NodeID) string {
		if m, ok := modules[id]; ok {
			return m
		}
		return t.MustNode(id).Module
	}
	for _, l := range links {
		if _, err := t.Catalog().Match(name(l.parent), name(l.child), l.slot); err != nil {
			return err
		}
	}
	return nil
}

// retag morphs a detached node to module unless it already carries it.
func (t *Tree) retag(id dag.NodeID, module string) (dag.NodeID, error) {
	if t.MustNode(id).Module == module {
		return id, nil
	}
	return t.Morph(id, module)
}

// LeftShift rotates id leftwards until a left rotation succeeds, moving one
// leaf from its subtree across to the left neighbour. It returns dag.None
// without changes when id already sits on the left spine.
func (t *Tree) LeftShift(id dag.NodeID) (dag.NodeID, error) {
	return t.shift(id, 1)
}

// RightShift is the mirror image of LeftShift towards the right spine.
func (t *Tree) RightShift(id dag.NodeID) (dag.NodeID, error) {
	return t.shift(id, 0)
}

func (t *Tree) shift(id dag.NodeID, side int) (dag.NodeID, error) {
	for {
		if _, ok := t.Node(id); !ok {
			return dag.None, errors.Structural("node %d does not exist", id)
		}
		if (side == 1 && t.OnLeftSpine(id)) || (side == 0 && t.OnRightSpine(id)) {
			return dag.None, nil
		}
		out, err := t.rotate(id, side)
		if err == nil {
			return out, nil
		}
		if !stderrors.Is(err, errWrongChild) {
			return dag.None, err
		}
		// Climb one level the other way; the node gets closer to the spine.
		if id, err = t.rotate(id, 1-side); err != nil {
			return dag.None, err
		}
	}
}
