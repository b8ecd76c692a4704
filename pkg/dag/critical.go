package dag

import (
	"cmp"
	"slices"
)

// TopoOrder returns the live nodes ordered so that every driver precedes
// its consumers (children before parents). Ties are broken by ascending ID,
// which makes the order deterministic.
func (g *Graph) TopoOrder() []NodeID {
	pending := make(map[NodeID]int, len(g.nodes))
	var ready []NodeID
	for _, n := range g.nodes {
		if n == nil {
			continue
		}
		k := len(n.AttachedChildren())
		pending[n.ID] = k
		if k == 0 {
			ready = append(ready, n.ID)
		}
	}
	order := make([]NodeID, 0, len(pending))
	for len(ready) > 0 {
		i := slices.Index(ready, slices.Min(ready))
		id := ready[i]
		ready = slices.Delete(ready, i, i+1)
		order = append(order, id)
		if p := g.nodes[id].Parent; p != None {
			if pending[p]--; pending[p] == 0 {
				ready = append(ready, p)
			}
		}
	}
	return order
}

type reach struct {
	from NodeID // immediate predecessor on the best path, or the node itself
	dist float64
}

// real reports whether a node may start or end a critical path: it must
// exist physically and do more than pass a signal through.
func (g *Graph) real(id NodeID) bool {
	m, err := g.cat.Module(g.nodes[id].Module)
	return err == nil && m.Exists() && !m.IsBuffer()
}

// LongestPath returns the heaviest driver-to-consumer path through nodes
// that are not yet in a block, in topological order.
//
// Ties between predecessors prefer the higher column, ties between
// endpoints prefer the lower predecessor column, then the lower ID.
// Paths may not start or end on a phantom cell or a buffer. It returns nil
// when no path of at least two nodes exists.
func (g *Graph) LongestPath() []NodeID {
	free := func(id NodeID) bool { return g.nodes[id].Block == NoBlock }
	best := make(map[NodeID]reach)
	var order []NodeID
	for _, id := range g.TopoOrder() {
		if !free(id) {
			continue
		}
		order = append(order, id)
		r := reach{from: id}
		found := false
		for _, c := range g.nodes[id].AttachedChildren() {
			if !free(c) {
				continue
			}
			d := best[c].dist + g.edges[edgeKey{id, c}].Weight
			if !found || d > r.dist || (d == r.dist && g.nodes[c].Column > g.nodes[r.from].Column) {
				r, found = reach{from: c, dist: d}, true
			}
		}
		best[id] = r
	}

	// A path may not start on a phantom or buffer: such a node can only
	// appear as its own origin with zero distance, so it is dropped.
	for _, id := range order {
		if r := best[id]; !g.real(id) && r.from == id {
			delete(best, id)
		}
	}

	end := None
	for _, id := range order {
		r, ok := best[id]
		if !ok || r.from == id || !g.real(id) {
			continue
		}
		if _, ok := best[r.from]; !ok {
			continue
		}
		if end == None || betterEnd(g, r, best[end], id, end) {
			end = id
		}
	}
	if end == None {
		return nil
	}

	var path []NodeID
	for id := end; ; {
		path = append(path, id)
		r, ok := best[id]
		if !ok || r.from == id {
			break
		}
		if _, ok := best[r.from]; !ok {
			break
		}
		id = r.from
	}
	// Leading pass-through cells do not count as a start.
	for len(path) > 0 && !g.real(path[len(path)-1]) {
		path = path[:len(path)-1]
	}
	if len(path) < 2 {
		return nil
	}
	slices.Reverse(path)
	return path
}

func betterEnd(g *Graph, a, b reach, aid, bid NodeID) bool {
	if a.dist != b.dist {
		return a.dist > b.dist
	}
	if c := cmp.Compare(g.nodes[a.from].Column, g.nodes[b.from].Column); c != 0 {
		return c < 0
	}
	return aid < bid
}

// AddBestBlocks repeatedly groups the current longest path into a block
// until no path is left. It returns the IDs of the blocks it created.
func (g *Graph) AddBestBlocks() ([]BlockID, error) {
	var ids []BlockID
	for {
		path := g.LongestPath()
		if path == nil {
			return ids, nil
		}
		id, err := g.AddBlock(path...)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
}

// BlockPorts returns the block's externally visible ports: inputs are the
// nets read by members minus those produced by a member, outputs are every
// net a member produces. Unassigned pins are ignored and both lists keep
// first-seen order.
func (g *Graph) BlockPorts(id BlockID) (inputs, outputs []Net, ok bool) {
	b, ok := g.Block(id)
	if !ok {
		return nil, nil, false
	}
	produced := make(map[Net]bool)
	for _, n := range b.Nodes {
		for _, p := range g.nodes[n].Outputs {
			for _, net := range p.Nets {
				if net.IsAssigned() && !produced[net] {
					produced[net] = true
					outputs = append(outputs, net)
				}
			}
		}
	}
	seen := make(map[Net]bool)
	for _, n := range b.Nodes {
		for _, p := range g.nodes[n].Inputs {
			for _, net := range p.Nets {
				if net.IsAssigned() && !produced[net] && !seen[net] {
					seen[net] = true
					inputs = append(inputs, net)
				}
			}
		}
	}
	return inputs, outputs, true
}
