package dag

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Direction of a port as seen from outside its instance.
type Direction string

const (
	In  Direction = "in"
	Out Direction = "out"
)

// PortBinding is one port of an instance with the nets bound to its bits,
// least significant bit first.
type PortBinding struct {
	Name string    `json:"name"`
	Dir  Direction `json:"dir"`
	Nets []Net     `json:"nets"`
}

// Instance is a cell placed in the netlist.
type Instance struct {
	Node    NodeID        `json:"node"`
	Module  string        `json:"module"`
	Column  int           `json:"column"`
	Depth   int           `json:"depth"`
	Phantom bool          `json:"phantom,omitempty"`
	Ports   []PortBinding `json:"ports"`
}

// BlockInstance is a block flattened into one generated cell.
type BlockInstance struct {
	ID      BlockID    `json:"id"`
	Inputs  []Net      `json:"inputs"`
	Outputs []Net      `json:"outputs"`
	Members []Instance `json:"members"`
}

// Name returns the generated cell name of the block.
func (b BlockInstance) Name() string { return "block_" + strconv.Itoa(int(b.ID)) }

// BoundaryPort declares one top-level port. Remap, when set, is the external
// name the port is exposed under; Name is the net base used inside.
type BoundaryPort struct {
	Name  string    `json:"name" toml:"name" yaml:"name"`
	Width int       `json:"width" toml:"width" yaml:"width"`
	Dir   Direction `json:"dir" toml:"dir" yaml:"dir"`
	Remap string    `json:"remap,omitempty" toml:"remap" yaml:"remap"`
}

// External returns the name visible outside the design.
func (p BoundaryPort) External() string {
	if p.Remap != "" {
		return p.Remap
	}
	return p.Name
}

// Boundary is an explicit top-level port list. An empty boundary asks the
// netlist to discover ports from the fixed nets the graph reads and writes.
type Boundary []BoundaryPort

// Netlist is the emitter-facing view of a finished graph.
type Netlist struct {
	Name      string          `json:"name"`
	Ports     []BoundaryPort  `json:"ports"`
	Wires     []Net           `json:"wires"`
	Instances []Instance      `json:"instances"`
	Blocks    []BlockInstance `json:"blocks"`
	// Cells lists the catalog modules instantiated outside blocks or inside
	// them, sorted by name.
	Cells []string `json:"cells"`
}

// Netlist flattens the graph into instances, blocks and boundary ports.
// Instances appear in topological order.
func (g *Graph) Netlist(boundary Boundary) *Netlist {
	nl := &Netlist{Name: g.name}
	cells := make(map[string]bool)
	for _, id := range g.TopoOrder() {
		n := g.nodes[id]
		if n.Block != NoBlock {
			continue
		}
		inst := g.instance(n)
		if !inst.Phantom {
			cells[n.Module] = true
		}
		nl.Instances = append(nl.Instances, inst)
	}
	for _, b := range g.Blocks() {
		in, out, _ := g.BlockPorts(b.ID)
		bi := BlockInstance{ID: b.ID, Inputs: in, Outputs: out}
		members := slices.Clone(b.Nodes)
		slices.SortFunc(members, func(a, b NodeID) int {
			return cmp.Compare(g.nodes[a].Depth, g.nodes[b].Depth)
		})
		for _, m := range members {
			inst := g.instance(g.nodes[m])
			if !inst.Phantom {
				cells[inst.Module] = true
			}
			bi.Members = append(bi.Members, inst)
		}
		nl.Blocks = append(nl.Blocks, bi)
	}

	wires := make(map[Net]bool)
	for _, n := range g.nodes {
		if n == nil {
			continue
		}
		for _, p := range slices.Concat(n.Inputs, n.Outputs) {
			for _, net := range p.Nets {
				if !net.IsFixed() {
					wires[net] = true
				}
			}
		}
	}
	for net := range wires {
		nl.Wires = append(nl.Wires, net)
	}
	slices.SortFunc(nl.Wires, func(a, b Net) int { return cmp.Compare(a.ID(), b.ID()) })

	if len(boundary) > 0 {
		nl.Ports = slices.Clone(boundary)
	} else {
		nl.Ports = g.discoverPorts()
	}
	for c := range cells {
		nl.Cells = append(nl.Cells, c)
	}
	slices.Sort(nl.Cells)
	return nl
}

func (g *Graph) instance(n *Node) Instance {
	inst := Instance{Node: n.ID, Module: n.Module, Column: n.Column, Depth: n.Depth}
	if m, err := g.cat.Module(n.Module); err == nil {
		inst.Phantom = !m.Exists()
	}
	for _, p := range n.Inputs {
		inst.Ports = append(inst.Ports, PortBinding{Name: p.Name, Dir: In, Nets: slices.Clone(p.Nets)})
	}
	for _, p := range n.Outputs {
		inst.Ports = append(inst.Ports, PortBinding{Name: p.Name, Dir: Out, Nets: slices.Clone(p.Nets)})
	}
	return inst
}

// discoverPorts takes the fixed nets read minus the fixed nets written as
// inputs and the converse as outputs, grouping bits by base name.
func (g *Graph) discoverPorts() []BoundaryPort {
	read := make(map[Net]bool)
	written := make(map[Net]bool)
	for _, n := range g.nodes {
		if n == nil {
			continue
		}
		for _, p := range n.Inputs {
			for _, net := range p.Nets {
				read[net] = true
			}
		}
		for _, p := range n.Outputs {
			for _, net := range p.Nets {
				written[net] = true
			}
		}
	}
	widths := make(map[string]int)
	dirs := make(map[string]Direction)
	add := func(net Net, dir Direction) {
		base := net.Base()
		widths[base] = max(widths[base], bitOf(net)+1)
		dirs[base] = dir
	}
	for net := range read {
		if net.IsFixed() && !written[net] {
			add(net, In)
		}
	}
	for net := range written {
		if net.IsFixed() && !read[net] {
			add(net, Out)
		}
	}
	ports := make([]BoundaryPort, 0, len(widths))
	for name, w := range widths {
		ports = append(ports, BoundaryPort{Name: name, Width: w, Dir: dirs[name]})
	}
	slices.SortFunc(ports, func(a, b BoundaryPort) int {
		if a.Dir != b.Dir {
			return cmp.Compare(a.Dir, b.Dir) // "in" before "out"
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return ports
}

func bitOf(n Net) int {
	s := n.String()
	i := strings.IndexByte(s, '[')
	if i < 0 || !strings.HasSuffix(s, "]") {
		return 0
	}
	b, err := strconv.Atoi(s[i+1 : len(s)-1])
	if err != nil {
		return 0
	}
	return b
}

// MergeNetlists combines the netlists of independent graphs into one
// design. Auto nets, node ids and block ids are shifted so that no two
// parts collide; fixed nets are shared, which is how parts reading the same
// boundary bit end up connected. Ports with the same name are widened to
// the widest part unless an explicit boundary is given.
func MergeNetlists(name string, parts []*Netlist, boundary Boundary) *Netlist {
	merged := &Netlist{Name: name}
	var netOff, nodeOff, blockOff int
	widths := make(map[string]int)
	dirs := make(map[string]Direction)
	var order []string
	cells := make(map[string]bool)

	for _, nl := range parts {
		maxNet, maxNode, maxBlock := 0, -1, -1
		shift := func(n Net) Net {
			if n.IsFixed() || n.id == 0 {
				return n
			}
			maxNet = max(maxNet, n.id)
			return AutoNet(n.id + netOff)
		}
		shiftInst := func(inst Instance) Instance {
			maxNode = max(maxNode, int(inst.Node))
			inst.Node += NodeID(nodeOff)
			ports := make([]PortBinding, len(inst.Ports))
			for i, p := range inst.Ports {
				p.Nets = slices.Clone(p.Nets)
				for b := range p.Nets {
					p.Nets[b] = shift(p.Nets[b])
				}
				ports[i] = p
			}
			inst.Ports = ports
			return inst
		}

		for _, w := range nl.Wires {
			merged.Wires = append(merged.Wires, shift(w))
		}
		for _, inst := range nl.Instances {
			merged.Instances = append(merged.Instances, shiftInst(inst))
		}
		for _, b := range nl.Blocks {
			maxBlock = max(maxBlock, int(b.ID))
			nb := BlockInstance{ID: b.ID + BlockID(blockOff)}
			for _, n := range b.Inputs {
				nb.Inputs = append(nb.Inputs, shift(n))
			}
			for _, n := range b.Outputs {
				nb.Outputs = append(nb.Outputs, shift(n))
			}
			for _, m := range b.Members {
				nb.Members = append(nb.Members, shiftInst(m))
			}
			merged.Blocks = append(merged.Blocks, nb)
		}
		for _, p := range nl.Ports {
			if _, ok := widths[p.Name]; !ok {
				order = append(order, p.Name)
				dirs[p.Name] = p.Dir
			}
			widths[p.Name] = max(widths[p.Name], p.Width)
		}
		for _, c := range nl.Cells {
			cells[c] = true
		}

		netOff += maxNet
		nodeOff += maxNode + 1
		blockOff += maxBlock + 1
	}

	if len(boundary) > 0 {
		merged.Ports = slices.Clone(boundary)
	} else {
		for _, name := range order {
			merged.Ports = append(merged.Ports, BoundaryPort{Name: name, Width: widths[name], Dir: dirs[name]})
		}
		slices.SortStableFunc(merged.Ports, func(a, b BoundaryPort) int {
			if a.Dir != b.Dir {
				return cmp.Compare(a.Dir, b.Dir)
			}
			return cmp.Compare(a.Name, b.Name)
		})
	}
	for c := range cells {
		merged.Cells = append(merged.Cells, c)
	}
	slices.Sort(merged.Cells)
	return merged
}
