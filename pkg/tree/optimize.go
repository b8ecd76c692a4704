package tree

import (
	"github.com/matzehuels/prefixtower/pkg/dag"
)

// OptimizeNodes swaps the cells along the right spine for their right spine
// variants, which drop logic the spine never uses. Swaps the port matcher
// rejects are skipped. The tree should be considered final afterwards:
// rotations involving the swapped cells may fail.
func (t *Tree) OptimizeNodes() error {
	swaps := map[string]string{}
	if t.roles.RSpine != "" {
		swaps[t.roles.Cocycle] = t.roles.RSpine
	}
	if t.roles.RSpineBuffer != "" {
		swaps[t.roles.Buffer] = t.roles.RSpineBuffer
	}
	if t.roles.RSpinePre != "" {
		swaps[t.roles.Pre] = t.roles.RSpinePre
	}
	if len(swaps) == 0 {
		return nil
	}

	id := t.root
	for {
		if to, ok := swaps[t.MustNode(id).Module]; ok {
			next, err := t.swap(id, to)
			if err != nil {
				return err
			}
			id = next
		}
		kids := t.MustNode(id).AttachedChildren()
		if len(kids) == 0 {
			break
		}
		id = kids[len(kids)-1]
	}
	t.relayout()
	return nil
}

// swap re-tags a node in place, reattaching its parent and children. It
// leaves the node untouched when the new module would not fit.
func (t *Tree) swap(id dag.NodeID, module string) (dag.NodeID, error) {
	n := t.MustNode(id)
	var links []link
	if n.Parent != dag.None {
		links = append(links, link{n.Parent, id, t.MustNode(n.Parent).Slot(id)})
	}
	for slot, c := range n.Children {
		if c != dag.None {
			links = append(links, link{id, c, slot})
		}
	}
	if err := t.checkLinks(links, map[dag.NodeID]string{id: module}); err != nil {
		t.logger.Debug("skipping spine swap", "node", id, "module", module, "err", err)
		return id, nil
	}
	if err := t.Detach(id); err != nil {
		return dag.None, err
	}
	newID, err := t.Morph(id, module)
	if err != nil {
		return dag.None, err
	}
	for _, l := range links {
		p, c := renamed(map[dag.NodeID]dag.NodeID{id: newID}, l.parent), renamed(map[dag.NodeID]dag.NodeID{id: newID}, l.child)
		if _, err := t.Connect(p, c, l.slot); err != nil {
			return dag.None, err
		}
	}
	if id == t.root {
		t.root = newID
	}
	return newID, nil
}
