package dag

import (
	"slices"

	"github.com/matzehuels/prefixtower/pkg/catalog"
)

// NodeID is a stable index into a graph's node arena. IDs are never reused.
type NodeID int

// None marks an empty child slot or a missing parent.
const None NodeID = -1

// BlockID identifies a block of nodes to be flattened together.
type BlockID int

// NoBlock marks a node that belongs to no block.
const NoBlock BlockID = -1

// Node is one cell instance. Parent and Children are non-owning indices into
// the graph that owns the node; the graph maintains them, callers must treat
// them as read-only. Column and Depth are free for the caller to manage.
type Node struct {
	ID     NodeID
	Module string
	Label  string

	Column int
	Depth  int

	Parent   NodeID
	Children []NodeID // one entry per child slot, None when empty

	// LeafMask is the OR of the children's masks and the node's own leaf bits.
	LeafMask uint64
	Block    BlockID

	Inputs  []Port
	Outputs []Port

	own uint64
}

func newNode(id NodeID, m *catalog.Module, column, depth int) *Node {
	n := &Node{
		ID:       id,
		Module:   m.Name,
		Column:   column,
		Depth:    depth,
		Parent:   None,
		Children: make([]NodeID, m.Radix()),
		Block:    NoBlock,
		Inputs:   make([]Port, len(m.Inputs)),
		Outputs:  make([]Port, len(m.Outputs)),
	}
	for i := range n.Children {
		n.Children[i] = None
	}
	for i, p := range m.Inputs {
		n.Inputs[i] = Port{Name: p.Name, Nets: make([]Net, p.Width)}
	}
	for i, p := range m.Outputs {
		n.Outputs[i] = Port{Name: p.Name, Nets: make([]Net, p.Width)}
	}
	return n
}

// Input returns the named input port, or nil.
func (n *Node) Input(name string) *Port { return findPort(n.Inputs, name) }

// Output returns the named output port, or nil.
func (n *Node) Output(name string) *Port { return findPort(n.Outputs, name) }

func findPort(ports []Port, name string) *Port {
	for i := range ports {
		if ports[i].Name == name {
			return &ports[i]
		}
	}
	return nil
}

// IsLeaf reports whether no child slot is occupied.
func (n *Node) IsLeaf() bool {
	return !slices.ContainsFunc(n.Children, func(c NodeID) bool { return c != None })
}

// IsDetached reports whether the node has neither parent nor children.
func (n *Node) IsDetached() bool { return n.Parent == None && n.IsLeaf() }

// Slot returns the child slot holding child, or -1.
func (n *Node) Slot(child NodeID) int { return slices.Index(n.Children, child) }

// Child returns the node in slot i, or None.
func (n *Node) Child(i int) NodeID {
	if i < 0 || i >= len(n.Children) {
		return None
	}
	return n.Children[i]
}

// AttachedChildren returns the occupied slots in slot order.
func (n *Node) AttachedChildren() []NodeID {
	out := make([]NodeID, 0, len(n.Children))
	for _, c := range n.Children {
		if c != None {
			out = append(out, c)
		}
	}
	return out
}

// OwnMask returns the leaf bits the node contributes itself.
func (n *Node) OwnMask() uint64 { return n.own }
