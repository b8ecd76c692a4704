package tree

import (
	"testing"

	"github.com/matzehuels/prefixtower/pkg/dag"
)

func TestShifts(t *testing.T) {
	tests := []struct {
		name string
		// mirror starts from the left-leaning chain instead of rank 0.
		mirror bool
		// from is the root slot whose child gives up a leaf.
		from       int
		wantBefore int
		wantAfter  int
	}{
		{"left shift from the right child", false, 1, 7, 6},
		{"right shift from the left child", true, 0, 7, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := build(t, 8, 0)
			if tt.mirror {
				if _, err := tr.MirrorSubtree(tr.Root()); err != nil {
					t.Fatalf("MirrorSubtree() error: %v", err)
				}
			}
			src := tr.Child(tr.Root(), tt.from)
			if got := tr.LeafCount(src); got != tt.wantBefore {
				t.Fatalf("child %d has %d leaves before the shift, want %d", tt.from, got, tt.wantBefore)
			}

			var out dag.NodeID
			var err error
			if tt.from == 1 {
				out, err = tr.LeftShift(tr.Parent(tr.LeftmostLeaf(src)))
			} else {
				out, err = tr.RightShift(tr.Parent(tr.RightmostLeaf(src)))
			}
			if err != nil || out == dag.None {
				t.Fatalf("shift = %d, %v; want a node", out, err)
			}
			mustValidate(t, tr)
			if got := tr.LeafCount(tr.Child(tr.Root(), tt.from)); got != tt.wantAfter {
				t.Errorf("child %d has %d leaves after the shift, want %d", tt.from, got, tt.wantAfter)
			}
			if got := tr.LeafCount(tr.Child(tr.Root(), 1-tt.from)); got != 8-tt.wantAfter {
				t.Errorf("child %d has %d leaves after the shift, want %d", 1-tt.from, got, 8-tt.wantAfter)
			}
		})
	}
}

func TestReduceHeightTo(t *testing.T) {
	tests := []struct {
		name   string
		target int
		// want reports whether a node is returned.
		want bool
	}{
		{"below log2 of the leaves", 2, false},
		{"zero", 0, false},
		{"negative", -1, false},
		{"already low enough", 7, true},
		{"one level", 6, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := build(t, 8, 0)
			out, err := tr.ReduceHeightTo(tr.Root(), tt.target)
			if err != nil {
				t.Fatalf("ReduceHeightTo(root, %d) error: %v", tt.target, err)
			}
			if got := out != dag.None; got != tt.want {
				t.Fatalf("ReduceHeightTo(root, %d) = %d, want node %v", tt.target, out, tt.want)
			}
			mustValidate(t, tr)
			if !tt.want {
				if got := tr.TreeRank(); got.Sign() != 0 {
					t.Errorf("failed reduction changed the tree to rank %v", got)
				}
				return
			}
			if got := tr.Height(out); got > tt.target {
				t.Errorf("Height() = %d after reduction, want at most %d", got, tt.target)
			}
			if out != tr.Root() {
				t.Errorf("ReduceHeightTo(root) returned %d, want the root %d", out, tr.Root())
			}
		})
	}

	tr := build(t, 8, 0)
	leaf := tr.Leaves(tr.Root())[0]
	if out, err := tr.ReduceHeightTo(leaf, 0); err != nil || out != dag.None {
		t.Errorf("ReduceHeightTo(leaf) = %d, %v; want None, nil", out, err)
	}
}

func TestSideBalance(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*Tree, dag.NodeID) error
		// heavy is the root slot that should end up with more leaves.
		heavy int
	}{
		{"LBalance", (*Tree).LBalance, 0},
		{"RBalance", (*Tree).RBalance, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := build(t, 6, 0)
			if err := tt.fn(tr, tr.Root()); err != nil {
				t.Fatalf("%s() error: %v", tt.name, err)
			}
			mustValidate(t, tr)
			if got := tr.TreeHeight(); got != 4 {
				t.Errorf("TreeHeight() = %d, want 4", got)
			}
			heavy := tr.LeafCount(tr.Child(tr.Root(), tt.heavy))
			light := tr.LeafCount(tr.Child(tr.Root(), 1-tt.heavy))
			if heavy <= light {
				t.Errorf("slot %d has %d leaves, slot %d has %d; want the first heavier", tt.heavy, heavy, 1-tt.heavy, light)
			}
			if !tr.IsProper(tr.Child(tr.Root(), tt.heavy)) {
				t.Errorf("slot %d is not complete", tt.heavy)
			}
		})
	}

	tr := build(t, 8, 0)
	if err := tr.LBalance(tr.Leaves(tr.Root())[0]); err != nil {
		t.Errorf("LBalance(leaf) error: %v", err)
	}
}

func TestEqualizeDepths(t *testing.T) {
	tests := []struct {
		name    string
		desired int
	}{
		{"current height", -1},
		{"explicit height", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := build(t, 6, 0)
			if err := tr.LBalance(tr.Root()); err != nil {
				t.Fatalf("LBalance() error: %v", err)
			}
			rank := tr.TreeRank()
			nodes := tr.NodeCount()
			if err := tr.EqualizeDepths(tr.Root(), tt.desired); err != nil {
				t.Fatalf("EqualizeDepths() error: %v", err)
			}
			mustValidate(t, tr)
			for i, d := range tr.Depths() {
				if d != 3 {
					t.Errorf("leaf %d at depth %d, want 3", i, d)
				}
			}
			buffers := 0
			for _, n := range tr.Nodes() {
				if tr.isBuffer(n.ID) {
					buffers++
				}
			}
			if buffers != tr.NodeCount()-nodes || buffers == 0 {
				t.Errorf("%d buffers for %d new nodes, want at least one and all new nodes buffers", buffers, tr.NodeCount()-nodes)
			}
			if got := tr.TreeRank(); got.Cmp(rank) != 0 {
				t.Errorf("TreeRank() = %v after padding, want %v", got, rank)
			}
		})
	}

	tr := build(t, 1, 0)
	if err := tr.EqualizeDepths(tr.Leaves(tr.Root())[0], 3); err != nil {
		t.Errorf("EqualizeDepths(leaf) error: %v", err)
	}
}
