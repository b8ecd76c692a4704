package tree

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/matzehuels/prefixtower/pkg/catalog"
	"github.com/matzehuels/prefixtower/pkg/dag"
	"github.com/matzehuels/prefixtower/pkg/errors"
)

func portWidths(nl *dag.Netlist) map[string]int {
	out := make(map[string]int, len(nl.Ports))
	for _, p := range nl.Ports {
		out[p.Name] = p.Width
	}
	return out
}

func TestForestSumWidth(t *testing.T) {
	for _, w := range []int{1, 2, 3, 5, 8} {
		f, err := NewForest(catalog.Default(), ForestConfig{Width: w})
		if err != nil {
			t.Fatalf("NewForest(width=%d) error: %v", w, err)
		}
		if got := len(f.Trees()); got != w {
			t.Errorf("width %d: %d trees, want %d", w, got, w)
		}
		ports := portWidths(f.Netlist(nil))
		if got := ports["sum"]; got != w {
			t.Errorf("width %d: sum width = %d, want %d", w, got, w)
		}
		if got := ports["a_in"]; got != w {
			t.Errorf("width %d: a_in width = %d, want %d", w, got, w)
		}
	}
}

func TestForestTreeDrivesItsBit(t *testing.T) {
	f, err := NewForest(catalog.Default(), ForestConfig{Width: 4})
	if err != nil {
		t.Fatalf("NewForest() error: %v", err)
	}
	for a := 1; a <= 4; a++ {
		tr := f.Tree(a)
		mustValidate(t, tr)
		if tr.Width() != a {
			t.Errorf("Tree(%d).Width() = %d, want %d", a, tr.Width(), a)
		}
		root := tr.MustNode(tr.Root())
		want := dag.FixedNet(fmt.Sprintf("sum[%d]", a-1))
		if got := root.Outputs[0].Nets[0]; got != want {
			t.Errorf("Tree(%d) root drives %v, want %v", a, got, want)
		}
	}
	// The one-leaf tree still reads an indexed input.
	leaf := f.Tree(1).Leaves(f.Tree(1).Root())[0]
	if got := f.Tree(1).MustNode(leaf).Inputs[0].Nets[0]; got != dag.FixedNet("a_in[0]") {
		t.Errorf("Tree(1) leaf reads %v, want a_in[0]", got)
	}
}

func TestForestRanksAndRecipe(t *testing.T) {
	f, err := NewForest(catalog.Default(), ForestConfig{
		Width: 4,
		Ranks: []*big.Int{nil, big.NewInt(0), big.NewInt(1), big.NewInt(4)},
	})
	if err != nil {
		t.Fatalf("NewForest() error: %v", err)
	}
	want := []int64{0, 0, 1, 4}
	for i, r := range f.Ranks() {
		if r.Int64() != want[i] {
			t.Errorf("Ranks()[%d] = %v, want %d", i, r, want[i])
		}
	}

	f, err = NewForest(catalog.Default(), ForestConfig{Width: 8, Recipe: Sklansky})
	if err != nil {
		t.Fatalf("NewForest(sklansky) error: %v", err)
	}
	if got := f.Height(); got != 4 {
		t.Errorf("Height() = %d, want 4", got)
	}
	if got, want := f.Tree(8).TreeHeight(), build(t, 8, 0).TreeHeight(); got >= want {
		t.Errorf("sklansky tree height %d, want below ripple height %d", got, want)
	}
}

func TestForestErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  ForestConfig
		code errors.Code
	}{
		{"zero width", ForestConfig{Width: 0}, errors.ErrCodeInvalidInput},
		{"too many ranks", ForestConfig{Width: 2, Ranks: []*big.Int{nil, nil, nil}}, errors.ErrCodeInvalidInput},
		{"rank out of range", ForestConfig{Width: 3, Ranks: []*big.Int{nil, nil, big.NewInt(2)}}, errors.ErrCodeRankOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewForest(catalog.Default(), tt.cfg)
			if !errors.Is(err, tt.code) {
				t.Errorf("NewForest() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestForestNetlistDistinctWires(t *testing.T) {
	f, err := NewForest(catalog.Default(), ForestConfig{Width: 5})
	if err != nil {
		t.Fatalf("NewForest() error: %v", err)
	}
	if _, err := f.AddBestBlocks(); err != nil {
		t.Fatalf("AddBestBlocks() error: %v", err)
	}
	nl := f.Netlist(nil)
	seen := make(map[dag.Net]bool)
	for _, w := range nl.Wires {
		if seen[w] {
			t.Errorf("wire %v appears twice", w)
		}
		seen[w] = true
	}
	blocks := make(map[string]bool)
	for _, b := range nl.Blocks {
		if blocks[b.Name()] {
			t.Errorf("block %s appears twice", b.Name())
		}
		blocks[b.Name()] = true
	}
	if got := len(nl.Blocks); got != f.BlockCount() {
		t.Errorf("merged %d blocks, want %d", got, f.BlockCount())
	}
	if nl.Name != f.Name() {
		t.Errorf("Netlist().Name = %q, want %q", nl.Name, f.Name())
	}
}
