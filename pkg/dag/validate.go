package dag

import (
	"go.uber.org/multierr"

	"github.com/matzehuels/prefixtower/pkg/errors"
)

// Validate checks the structural invariants of the graph and reports every
// violation it finds:
//
//   - parent and child links agree in both directions and match an edge
//   - every node has exactly as many child slots as its module's radix
//   - each leaf mask is the node's own bits OR its children's masks
//   - no auto net is driven by more than one output pin
//   - block members occupy pairwise distinct depths
func (g *Graph) Validate() error {
	var errs error
	drivers := make(map[Net]NodeID)
	for _, n := range g.nodes {
		if n == nil {
			continue
		}
		m, err := g.cat.Module(n.Module)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if len(n.Children) != m.Radix() {
			errs = multierr.Append(errs, errors.Structural("node %d has %d child slots, %s has radix %d",
				n.ID, len(n.Children), n.Module, m.Radix()))
		}
		mask := n.own
		for _, c := range n.Children {
			if c == None {
				continue
			}
			child, ok := g.Node(c)
			if !ok {
				errs = multierr.Append(errs, errors.Structural("node %d references missing child %d", n.ID, c))
				continue
			}
			if child.Parent != n.ID {
				errs = multierr.Append(errs, errors.Structural("child %d of node %d points at parent %d", c, n.ID, child.Parent))
			}
			if _, ok := g.edges[edgeKey{n.ID, c}]; !ok {
				errs = multierr.Append(errs, errors.Structural("no edge record from %d to %d", n.ID, c))
			}
			mask |= child.LeafMask
		}
		if mask != n.LeafMask {
			errs = multierr.Append(errs, errors.Structural("node %d has leaf mask %#x, want %#x", n.ID, n.LeafMask, mask))
		}
		if n.Parent != None {
			if p, ok := g.Node(n.Parent); !ok || p.Slot(n.ID) < 0 {
				errs = multierr.Append(errs, errors.Structural("node %d is not a child of its parent %d", n.ID, n.Parent))
			}
		}
		for _, p := range n.Outputs {
			for _, net := range p.Nets {
				if !net.IsAssigned() || net.IsFixed() {
					continue
				}
				if d, dup := drivers[net]; dup {
					errs = multierr.Append(errs, errors.Structural("net %s is driven by nodes %d and %d", net, d, n.ID))
					continue
				}
				drivers[net] = n.ID
			}
		}
	}
	for _, b := range g.Blocks() {
		depths := make(map[int]bool, len(b.Nodes))
		for _, id := range b.Nodes {
			n, ok := g.Node(id)
			if !ok {
				errs = multierr.Append(errs, errors.Structural("block %d references missing node %d", b.ID, id))
				continue
			}
			if n.Block != b.ID {
				errs = multierr.Append(errs, errors.Structural("node %d is listed in block %d but marked %d", id, b.ID, n.Block))
			}
			if depths[n.Depth] {
				errs = multierr.Append(errs, errors.Structural("block %d has two nodes at depth %d", b.ID, n.Depth))
			}
			depths[n.Depth] = true
		}
	}
	return errs
}
