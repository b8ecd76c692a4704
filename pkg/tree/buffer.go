package tree

import (
	"github.com/matzehuels/prefixtower/pkg/dag"
	"github.com/matzehuels/prefixtower/pkg/errors"
)

// InsertBuffer splices a buffer between id and its parent, pushing the
// subtree at id one level down. It returns the buffer's ID.
func (t *Tree) InsertBuffer(id dag.NodeID) (dag.NodeID, error) {
	n, ok := t.Node(id)
	if !ok {
		return dag.None, errors.Structural("node %d does not exist", id)
	}
	if n.Parent == dag.None {
		return dag.None, errors.Structural("cannot insert a buffer above the root")
	}
	pos := t.positionOf(id)
	cat := t.Catalog()
	if _, err := cat.Match(t.MustNode(pos.parent).Module, t.roles.Buffer, pos.slot); err != nil {
		return dag.None, err
	}
	if _, err := cat.Match(t.roles.Buffer, n.Module, 0); err != nil {
		return dag.None, err
	}

	if err := t.RemoveEdge(pos.parent, id); err != nil {
		return dag.None, err
	}
	buf, err := t.AddNode(t.roles.Buffer, 0, 0)
	if err != nil {
		return dag.None, err
	}
	if _, err := t.Connect(pos.parent, buf, pos.slot); err != nil {
		return dag.None, err
	}
	if _, err := t.Connect(buf, id, 0); err != nil {
		return dag.None, err
	}
	t.relayout()
	return buf, nil
}

// RemoveBuffer unsplices a buffer, pulling its child up one level. It
// returns the child's ID. Any module sharing the buffer role's footprint
// counts as a buffer.
func (t *Tree) RemoveBuffer(id dag.NodeID) (dag.NodeID, error) {
	n, ok := t.Node(id)
	if !ok {
		return dag.None, errors.Structural("node %d does not exist", id)
	}
	if !t.isBuffer(id) {
		return dag.None, errors.Structural("node %d (%s) is not a buffer", id, n.Module)
	}
	kids := n.AttachedChildren()
	if n.Parent == dag.None || len(kids) != 1 {
		return dag.None, errors.Structural("buffer %d must have a parent and one child", id)
	}
	child := kids[0]
	pos := t.positionOf(id)
	if _, err := t.Catalog().Match(t.MustNode(pos.parent).Module, t.MustNode(child).Module, pos.slot); err != nil {
		return dag.None, err
	}

	if err := t.RemoveEdge(pos.parent, id); err != nil {
		return dag.None, err
	}
	if err := t.RemoveEdge(id, child); err != nil {
		return dag.None, err
	}
	if err := t.RemoveNode(id); err != nil {
		return dag.None, err
	}
	if _, err := t.Connect(pos.parent, child, pos.slot); err != nil {
		return dag.None, err
	}
	t.relayout()
	return child, nil
}

func (t *Tree) isBuffer(id dag.NodeID) bool {
	m := t.Module(id)
	if m.IsBuffer() || m.Name == t.roles.Buffer {
		return true
	}
	buf, err := t.Catalog().Module(t.roles.Buffer)
	return err == nil && m.FootprintName() == buf.FootprintName()
}
