package io

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/matzehuels/prefixtower/pkg/catalog"
	"github.com/matzehuels/prefixtower/pkg/dag"
	"github.com/matzehuels/prefixtower/pkg/errors"
	"github.com/matzehuels/prefixtower/pkg/tree"
)

// ReadJSON decodes a design document from r and checks that it is
// self-consistent: a valid width, a decimal rank, unique node IDs and edges
// between known nodes. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Design, error) {
	var d Design
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode design")
	}
	if err := errors.ValidateWidth(d.Width); err != nil {
		return nil, err
	}
	if _, ok := new(big.Int).SetString(d.Rank, 10); !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "rank %q is not a decimal integer", d.Rank)
	}
	seen := make(map[dag.NodeID]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if seen[n.ID] {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "duplicate node %d", n.ID)
		}
		seen[n.ID] = true
	}
	for _, e := range d.Edges {
		if !seen[e.Parent] || !seen[e.Child] {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "edge %d->%d references an unknown node", e.Parent, e.Child)
		}
	}
	return &d, nil
}

// ImportJSON reads a design document from the file at path.
func ImportJSON(path string) (*Design, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// Rebuild builds the recorded shape over cat and re-runs the partitioner
// when the design had blocks.
func Rebuild(cat *catalog.Catalog, d *Design) (*tree.Tree, error) {
	rank, ok := new(big.Int).SetString(d.Rank, 10)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "rank %q is not a decimal integer", d.Rank)
	}
	t, err := tree.New(cat, tree.Config{Width: d.Width, Rank: rank, Name: d.Name})
	if err != nil {
		return nil, err
	}
	if len(d.Blocks) > 0 {
		if _, err := t.AddBestBlocks(); err != nil {
			return nil, fmt.Errorf("partition: %w", err)
		}
	}
	return t, nil
}
