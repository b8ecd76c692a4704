package dag

import (
	"cmp"
	"slices"

	"github.com/matzehuels/prefixtower/pkg/catalog"
	"github.com/matzehuels/prefixtower/pkg/errors"
)

// Pin addresses one bit of a named port on a node.
type Pin = catalog.Pin

// PinPair connects a parent input pin to the child output pin that drives it.
type PinPair = catalog.PinPair

// Edge aggregates every matched pin pair between one ordered parent/child
// pair. Data flows from Child (the driver) to Parent (the consumer).
type Edge struct {
	Parent NodeID    `json:"parent"`
	Child  NodeID    `json:"child"`
	Pairs  []PinPair `json:"pairs"`

	// Delay is the child cell's propagation delay.
	Delay float64 `json:"delay"`
	// Fanout and Tracks feed the weight heuristic.
	Fanout int `json:"fanout"`
	Tracks int `json:"tracks"`
	// Weight is the partitioner's cost for traversing this edge.
	Weight float64 `json:"weight"`
}

// WeightFunc computes an edge's weight. It must not mutate the edge.
type WeightFunc func(e *Edge) float64

// DefaultWeight estimates propagation cost as delay * (fanout + tracks).
// It is a heuristic; timing-driven callers should plug in their own.
func DefaultWeight(e *Edge) float64 {
	return e.Delay*float64(e.Fanout) + e.Delay*float64(e.Tracks)
}

type edgeKey struct{ parent, child NodeID }

// Graph owns a set of cell instances, the edges between them, the net
// counter and the block table.
//
// Nodes live in an arena indexed by [NodeID]; removed or morphed nodes leave
// a hole so IDs are never reused. Every structural precondition is checked
// before anything is mutated.
//
// The zero value is not usable - use New. Graph is not safe for concurrent
// use; distinct graphs share no state.
type Graph struct {
	cat     *catalog.Catalog
	name    string
	nodes   []*Node
	edges   map[edgeKey]*Edge
	nextNet int
	blocks  []*Block
	weight  WeightFunc
}

// Option configures a Graph.
type Option func(*Graph)

// WithName sets the design name used by the netlist.
func WithName(name string) Option { return func(g *Graph) { g.name = name } }

// WithWeightFunc replaces [DefaultWeight].
func WithWeightFunc(fn WeightFunc) Option {
	return func(g *Graph) {
		if fn != nil {
			g.weight = fn
		}
	}
}

// New returns an empty graph over the given catalog.
func New(cat *catalog.Catalog, opts ...Option) *Graph {
	g := &Graph{
		cat:     cat,
		name:    cat.Name(),
		edges:   make(map[edgeKey]*Edge),
		nextNet: 1,
		weight:  DefaultWeight,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Catalog returns the catalog the graph was built against.
func (g *Graph) Catalog() *catalog.Catalog { return g.cat }

// Name returns the design name.
func (g *Graph) Name() string { return g.name }

// NetCount returns the number of auto nets allocated so far.
func (g *Graph) NetCount() int { return g.nextNet - 1 }

// AddNode registers a new detached instance of module. It fails with a
// CATALOG error when the module is unknown.
func (g *Graph) AddNode(module string, column, depth int) (NodeID, error) {
	m, err := g.cat.Module(module)
	if err != nil {
		return None, err
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, newNode(id, m, column, depth))
	return id, nil
}

// Node returns the live node with the given ID.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	if id < 0 || int(id) >= len(g.nodes) || g.nodes[id] == nil {
		return nil, false
	}
	return g.nodes[id], true
}

// MustNode is like Node but panics on a missing ID. It is meant for callers
// that hold IDs the graph itself handed out.
func (g *Graph) MustNode(id NodeID) *Node {
	n, ok := g.Node(id)
	if !ok {
		panic(errors.Structural("node %d does not exist", id))
	}
	return n
}

// Module returns the catalog entry of a live node.
func (g *Graph) Module(id NodeID) *catalog.Module {
	m, err := g.cat.Module(g.MustNode(id).Module)
	if err != nil {
		panic(err)
	}
	return m
}

// Nodes returns all live nodes in ID order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int {
	c := 0
	for _, n := range g.nodes {
		if n != nil {
			c++
		}
	}
	return c
}

// EdgeCount returns the number of parent/child edge records.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Edge returns the record between parent and child.
func (g *Graph) Edge(parent, child NodeID) (*Edge, bool) {
	e, ok := g.edges[edgeKey{parent, child}]
	return e, ok
}

// Edges returns every edge sorted by parent then child.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *Edge) int {
		if c := cmp.Compare(a.Parent, b.Parent); c != 0 {
			return c
		}
		return cmp.Compare(a.Child, b.Child)
	})
	return out
}

func (g *Graph) lookup(id NodeID) (*Node, error) {
	n, ok := g.Node(id)
	if !ok {
		return nil, errors.Structural("node %d does not exist", id)
	}
	return n, nil
}

// AddEdge connects one child output pin to one parent input pin.
//
// The pins must exist and be verso of each other ("gout" drives "gin"),
// otherwise AddEdge fails with PORT_MISMATCH. If either pin already carries
// a net it is reused, the parent's taking precedence; only when neither is
// bound is a new net allocated. Repeating an existing pairing changes
// nothing. A child that is not yet attached takes the parent's first free
// slot.
func (g *Graph) AddEdge(parent NodeID, ppin Pin, child NodeID, cpin Pin) (*Edge, error) {
	p, err := g.lookup(parent)
	if err != nil {
		return nil, err
	}
	c, err := g.lookup(child)
	if err != nil {
		return nil, err
	}
	if parent == child {
		return nil, errors.Structural("node %d cannot drive itself", parent)
	}
	if err := checkPin(p.Inputs, ppin, p.Module); err != nil {
		return nil, err
	}
	if err := checkPin(c.Outputs, cpin, c.Module); err != nil {
		return nil, err
	}
	if catalog.Verso(ppin.Port) != cpin.Port {
		return nil, errors.PortMismatch("%s.%s is not the verso of %s.%s", c.Module, cpin.Port, p.Module, ppin.Port)
	}
	slot := p.Slot(child)
	if slot < 0 {
		if c.Parent != None {
			return nil, errors.Structural("node %d already has parent %d", child, c.Parent)
		}
		slot = p.Slot(None)
		if slot < 0 {
			return nil, errors.Structural("node %d has no free child slot", parent)
		}
	}
	g.link(p, c, slot)
	return g.addPair(p, c, PinPair{Parent: ppin, Child: cpin}), nil
}

func checkPin(ports []Port, pin Pin, module string) error {
	port := findPort(ports, pin.Port)
	if port == nil {
		return errors.PortMismatch("%s has no port %s", module, pin.Port)
	}
	if pin.Bit < 0 || pin.Bit >= len(port.Nets) {
		return errors.PortMismatch("%s.%s has no bit %d", module, pin.Port, pin.Bit)
	}
	return nil
}

// Connect attaches child to parent at slot, adding every pin pair the port
// matcher produces for the two modules. Nothing is mutated on failure.
func (g *Graph) Connect(parent, child NodeID, slot int) (*Edge, error) {
	p, err := g.lookup(parent)
	if err != nil {
		return nil, err
	}
	c, err := g.lookup(child)
	if err != nil {
		return nil, err
	}
	if slot < 0 || slot >= len(p.Children) {
		return nil, errors.Structural("%s has no child slot %d", p.Module, slot)
	}
	if p.Children[slot] != None {
		return nil, errors.Structural("slot %d of node %d is taken by %d", slot, parent, p.Children[slot])
	}
	if c.Parent != None {
		return nil, errors.Structural("node %d already has parent %d", child, c.Parent)
	}
	if parent == child {
		return nil, errors.Structural("node %d cannot drive itself", parent)
	}
	pairs, err := g.cat.Match(p.Module, c.Module, slot)
	if err != nil {
		return nil, err
	}
	g.link(p, c, slot)
	var e *Edge
	for _, pp := range pairs {
		e = g.addPair(p, c, pp)
	}
	return e, nil
}

func (g *Graph) link(p, c *Node, slot int) {
	if p.Children[slot] == c.ID {
		return
	}
	p.Children[slot] = c.ID
	c.Parent = p.ID
	g.refreshMask(p)
}

func (g *Graph) addPair(p, c *Node, pp PinPair) *Edge {
	in := &p.Input(pp.Parent.Port).Nets[pp.Parent.Bit]
	out := &c.Output(pp.Child.Port).Nets[pp.Child.Bit]
	var net Net
	switch {
	case in.IsAssigned():
		net = *in
	case out.IsAssigned():
		net = *out
	default:
		net = AutoNet(g.nextNet)
		g.nextNet++
	}
	*in, *out = net, net

	key := edgeKey{p.ID, c.ID}
	e, ok := g.edges[key]
	if !ok {
		e = &Edge{Parent: p.ID, Child: c.ID, Fanout: 1}
		if m, err := g.cat.Module(c.Module); err == nil {
			e.Delay = m.Delay
		}
		g.edges[key] = e
	}
	if !slices.Contains(e.Pairs, pp) {
		e.Pairs = append(e.Pairs, pp)
	}
	e.Weight = g.weight(e)
	return e
}

// RemoveEdge detaches child from parent. Only the parent-side input pins of
// the matched pairs are cleared; the child keeps its output nets so that a
// later reconnection reuses them.
func (g *Graph) RemoveEdge(parent, child NodeID) error {
	e, ok := g.edges[edgeKey{parent, child}]
	if !ok {
		return errors.Structural("no edge from %d to %d", parent, child)
	}
	p, c := g.nodes[parent], g.nodes[child]
	for _, pp := range e.Pairs {
		if port := p.Input(pp.Parent.Port); port != nil {
			port.Nets[pp.Parent.Bit] = Net{}
		}
	}
	delete(g.edges, edgeKey{parent, child})
	if slot := p.Slot(child); slot >= 0 {
		p.Children[slot] = None
	}
	c.Parent = None
	g.refreshMask(p)
	return nil
}

// Detach removes every edge touching id, leaving the node in place.
func (g *Graph) Detach(id NodeID) error {
	n, err := g.lookup(id)
	if err != nil {
		return err
	}
	if n.Parent != None {
		if err := g.RemoveEdge(n.Parent, id); err != nil {
			return err
		}
	}
	for _, c := range n.AttachedChildren() {
		if err := g.RemoveEdge(id, c); err != nil {
			return err
		}
	}
	return nil
}

// RemoveNode detaches and deletes a node. A block containing the node
// loses the member.
func (g *Graph) RemoveNode(id NodeID) error {
	if err := g.Detach(id); err != nil {
		return err
	}
	n := g.nodes[id]
	if n.Block != NoBlock {
		b := g.blocks[n.Block]
		b.Nodes = slices.DeleteFunc(b.Nodes, func(m NodeID) bool { return m == id })
		if len(b.Nodes) == 0 {
			g.blocks[n.Block] = nil
		}
	}
	g.nodes[id] = nil
	return nil
}

// Morph replaces a detached node with a fresh instance of module at the same
// position. The new node keeps the leaf mask, block membership, label and
// any fixed boundary nets on ports both modules share. The old ID becomes
// invalid; the new one is returned.
func (g *Graph) Morph(id NodeID, module string) (NodeID, error) {
	old, err := g.lookup(id)
	if err != nil {
		return None, err
	}
	if !old.IsDetached() {
		return None, errors.Structural("cannot morph node %d while it is attached", id)
	}
	m, err := g.cat.Module(module)
	if err != nil {
		return None, err
	}
	nid := NodeID(len(g.nodes))
	n := newNode(nid, m, old.Column, old.Depth)
	n.own, n.LeafMask = old.own, old.LeafMask
	n.Label = old.Label
	copyFixed(n.Inputs, old.Inputs)
	copyFixed(n.Outputs, old.Outputs)
	if old.Block != NoBlock {
		n.Block = old.Block
		b := g.blocks[old.Block]
		b.Nodes[slices.Index(b.Nodes, id)] = nid
	}
	g.nodes = append(g.nodes, n)
	g.nodes[id] = nil
	return nid, nil
}

func copyFixed(dst, src []Port) {
	for i := range dst {
		s := findPort(src, dst[i].Name)
		if s == nil {
			continue
		}
		for b := 0; b < len(dst[i].Nets) && b < len(s.Nets); b++ {
			if s.Nets[b].IsFixed() {
				dst[i].Nets[b] = s.Nets[b]
			}
		}
	}
}

// MarkLeaf records that the node owns leaf bit and propagates the mask to
// every ancestor.
func (g *Graph) MarkLeaf(id NodeID, bit int) error {
	n, err := g.lookup(id)
	if err != nil {
		return err
	}
	if bit < 0 || bit >= errors.MaxWidth {
		return errors.New(errors.ErrCodeInvalidInput, "leaf bit %d out of range", bit)
	}
	n.own |= 1 << bit
	g.refreshMask(n)
	return nil
}

// BindNet assigns a net to one pin of a node. Boundary signals are bound
// this way before any edge touches them.
func (g *Graph) BindNet(id NodeID, pin Pin, net Net) error {
	n, err := g.lookup(id)
	if err != nil {
		return err
	}
	port := n.Input(pin.Port)
	if port == nil {
		port = n.Output(pin.Port)
	}
	if port == nil || pin.Bit < 0 || pin.Bit >= len(port.Nets) {
		return errors.PortMismatch("%s has no pin %s", n.Module, pin)
	}
	port.Nets[pin.Bit] = net
	return nil
}

// refreshMask recomputes leaf masks from n up to its topmost ancestor.
func (g *Graph) refreshMask(n *Node) {
	for n != nil {
		mask := n.own
		for _, c := range n.Children {
			if c != None {
				mask |= g.nodes[c].LeafMask
			}
		}
		n.LeafMask = mask
		if n.Parent == None {
			return
		}
		n = g.nodes[n.Parent]
	}
}

// UpdateEdgeWeight recomputes the weight of one edge.
func (g *Graph) UpdateEdgeWeight(parent, child NodeID) error {
	e, ok := g.edges[edgeKey{parent, child}]
	if !ok {
		return errors.Structural("no edge from %d to %d", parent, child)
	}
	e.Weight = g.weight(e)
	return nil
}

// SetTracks sets the routing track estimate of an edge and reweighs it.
func (g *Graph) SetTracks(parent, child NodeID, tracks int) error {
	e, ok := g.edges[edgeKey{parent, child}]
	if !ok {
		return errors.Structural("no edge from %d to %d", parent, child)
	}
	e.Tracks = tracks
	e.Weight = g.weight(e)
	return nil
}

// UpdateWeights recomputes every edge weight, e.g. after swapping the
// weight function.
func (g *Graph) UpdateWeights() {
	for _, e := range g.edges {
		e.Weight = g.weight(e)
	}
}
