package dag

import (
	"slices"

	"github.com/matzehuels/prefixtower/pkg/errors"
)

// Block is a set of nodes that is flattened into a single cell when the
// netlist is emitted. Members occupy pairwise distinct depths.
type Block struct {
	ID    BlockID  `json:"id"`
	Nodes []NodeID `json:"nodes"`
}

// AddBlock groups nodes into a new block and returns its ID, which is the
// smallest ID not currently in use. It fails with STRUCTURAL if a node is
// already in a block or if two nodes share a depth.
func (g *Graph) AddBlock(nodes ...NodeID) (BlockID, error) {
	if len(nodes) == 0 {
		return NoBlock, errors.Structural("block must have at least one node")
	}
	depths := make(map[int]NodeID, len(nodes))
	for _, id := range nodes {
		n, err := g.lookup(id)
		if err != nil {
			return NoBlock, err
		}
		if n.Block != NoBlock {
			return NoBlock, errors.Structural("node %d already belongs to block %d", id, n.Block)
		}
		if other, dup := depths[n.Depth]; dup {
			return NoBlock, errors.Structural("nodes %d and %d share depth %d", other, id, n.Depth)
		}
		depths[n.Depth] = id
	}

	id := BlockID(slices.Index(g.blocks, nil))
	if id == NoBlock {
		id = BlockID(len(g.blocks))
		g.blocks = append(g.blocks, nil)
	}
	b := &Block{ID: id, Nodes: slices.Clone(nodes)}
	for _, n := range nodes {
		g.nodes[n].Block = id
	}
	g.blocks[id] = b
	return id, nil
}

// RemoveBlock dissolves a block. Its members survive without a block and the
// ID becomes free for reuse.
func (g *Graph) RemoveBlock(id BlockID) error {
	b, ok := g.Block(id)
	if !ok {
		return errors.Structural("block %d does not exist", id)
	}
	for _, n := range b.Nodes {
		g.nodes[n].Block = NoBlock
	}
	g.blocks[id] = nil
	return nil
}

// ResetBlocks dissolves every block.
func (g *Graph) ResetBlocks() {
	for _, b := range g.blocks {
		if b != nil {
			_ = g.RemoveBlock(b.ID)
		}
	}
	g.blocks = nil
}

// Block returns the block with the given ID.
func (g *Graph) Block(id BlockID) (*Block, bool) {
	if id < 0 || int(id) >= len(g.blocks) || g.blocks[id] == nil {
		return nil, false
	}
	return g.blocks[id], true
}

// Blocks returns the live blocks in ID order.
func (g *Graph) Blocks() []*Block {
	var out []*Block
	for _, b := range g.blocks {
		if b != nil {
			out = append(out, b)
		}
	}
	return out
}
