package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/prefixtower/pkg/catalog"
	"github.com/matzehuels/prefixtower/pkg/tree"
)

func newTree(t *testing.T, width int) *tree.Tree {
	t.Helper()
	tr, err := tree.New(catalog.Default(), tree.Config{Width: width})
	if err != nil {
		t.Fatalf("tree.New() error: %v", err)
	}
	return tr
}

func TestToDOTBasic(t *testing.T) {
	tr := newTree(t, 4)
	dot := ToDOT(tr.Graph, Options{})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	if got := strings.Count(dot, "!\""); got != tr.NodeCount() {
		t.Errorf("ToDOT() pinned %d nodes, want %d", got, tr.NodeCount())
	}
	if got := strings.Count(dot, " -> "); got != tr.EdgeCount() {
		t.Errorf("ToDOT() has %d edges, want %d", got, tr.EdgeCount())
	}
	if !strings.Contains(dot, `label="gp[0]"`) {
		t.Error("ToDOT() output missing leaf label")
	}
	if !strings.Contains(dot, "shape=box") {
		t.Error("ToDOT() output missing catalog shape")
	}
}

func TestToDOTPinsRootOnTop(t *testing.T) {
	tr := newTree(t, 2)
	dot := ToDOT(tr.Graph, Options{Spacing: 1})
	root := nodeName(tr.Root())
	if !strings.Contains(dot, root+" [") || !strings.Contains(dot, `pos="0.00,0.00!"`) {
		t.Errorf("root should be pinned at the origin:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	tr := newTree(t, 3)
	dot := ToDOT(tr.Graph, Options{Detailed: true})
	if !strings.Contains(dot, "ppa_post") {
		t.Error("ToDOT() detailed output missing module name")
	}
	if !strings.Contains(dot, "col 2, row 0") {
		t.Error("ToDOT() detailed output missing root position")
	}
	if !strings.Contains(dot, `[label="n`) {
		t.Error("ToDOT() detailed output missing edge nets")
	}
}

func TestToDOTBlocks(t *testing.T) {
	tr := newTree(t, 5)
	if _, err := tr.AddBestBlocks(); err != nil {
		t.Fatalf("AddBestBlocks() error: %v", err)
	}
	dot := ToDOT(tr.Graph, Options{})
	if !strings.Contains(dot, "subgraph cluster_0") {
		t.Error("ToDOT() output missing block cluster")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `width="10" height="20"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("normalizeViewBox() without viewBox = %s", got)
	}
}
