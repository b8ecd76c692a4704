package hdl

import (
	"regexp"
	"strings"
	"testing"

	"github.com/matzehuels/prefixtower/pkg/catalog"
	"github.com/matzehuels/prefixtower/pkg/dag"
	"github.com/matzehuels/prefixtower/pkg/errors"
	"github.com/matzehuels/prefixtower/pkg/tree"
)

func newTree(t *testing.T, width int, recipe string) *tree.Tree {
	t.Helper()
	tr, err := tree.New(catalog.Default(), tree.Config{Width: width, Recipe: recipe})
	if err != nil {
		t.Fatalf("tree.New() error: %v", err)
	}
	return tr
}

var verilogInstance = regexp.MustCompile(`(?m)^\tppa_\w+ U\d+ \(`)

func TestVerilogOneInstancePerNode(t *testing.T) {
	for _, recipe := range []string{tree.Ripple, tree.Sklansky, tree.KoggeStone} {
		tr := newTree(t, 8, recipe)
		out, err := RenderString(tr.Netlist(nil), tr.Catalog(), Options{Module: "adder8"})
		if err != nil {
			t.Fatalf("%s: RenderString() error: %v", recipe, err)
		}
		if got := len(verilogInstance.FindAllString(out, -1)); got != tr.NodeCount() {
			t.Errorf("%s: %d instances, want %d", recipe, got, tr.NodeCount())
		}
		if !strings.Contains(out, "module adder8(") {
			t.Errorf("%s: missing top-level module header", recipe)
		}
	}
}

func TestVerilogStructure(t *testing.T) {
	tr := newTree(t, 4, "")
	out, err := RenderString(tr.Netlist(nil), tr.Catalog(), Options{Module: "adder4"})
	if err != nil {
		t.Fatalf("RenderString() error: %v", err)
	}
	for _, want := range []string{
		"module ppa_pre(",
		"module ppa_post(",
		"input [3:0] a_in;",
		"output sum;",
		"// start of tree row 0",
		"// start of tree row 3",
		".a_in(a_in[0])",
		"endmodule",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Count(out, "endmodule") != len(tr.Netlist(nil).Cells)+1 {
		t.Errorf("endmodule count = %d, want %d", strings.Count(out, "endmodule"), len(tr.Netlist(nil).Cells)+1)
	}
}

func TestOmitCells(t *testing.T) {
	tr := newTree(t, 4, "")
	out, err := RenderString(tr.Netlist(nil), tr.Catalog(), Options{Module: "adder4", OmitCells: true})
	if err != nil {
		t.Fatalf("RenderString() error: %v", err)
	}
	if strings.Count(out, "endmodule") != 1 {
		t.Errorf("endmodule count = %d, want 1", strings.Count(out, "endmodule"))
	}
}

func TestVHDL(t *testing.T) {
	tr := newTree(t, 4, tree.Sklansky)
	out, err := RenderString(tr.Netlist(nil), tr.Catalog(), Options{Language: catalog.VHDL, Module: "adder4"})
	if err != nil {
		t.Fatalf("RenderString() error: %v", err)
	}
	if got := strings.Count(out, ": entity work."); got != tr.NodeCount() {
		t.Errorf("%d instances, want %d", got, tr.NodeCount())
	}
	for _, want := range []string{
		"entity adder4 is",
		"a_in : in std_logic_vector(3 downto 0)",
		"a_in => a_in(0)",
		"-- start of tree row 2",
		"end architecture;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "a_in[") {
		t.Error("VHDL output uses Verilog bit selects")
	}
}

func TestBlocksBecomeModules(t *testing.T) {
	tr := newTree(t, 6, "")
	ids, err := tr.AddBestBlocks()
	if err != nil {
		t.Fatalf("AddBestBlocks() error: %v", err)
	}
	if len(ids) == 0 {
		t.Fatal("expected at least one block")
	}
	out, err := RenderString(tr.Netlist(nil), tr.Catalog(), Options{Module: "adder6"})
	if err != nil {
		t.Fatalf("RenderString() error: %v", err)
	}
	for _, want := range []string{"module block_0(", "block_0 block_0_instance ("} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if got := len(verilogInstance.FindAllString(out, -1)); got != tr.NodeCount() {
		t.Errorf("%d cell instances, want %d", got, tr.NodeCount())
	}
}

func TestRemap(t *testing.T) {
	tr := newTree(t, 2, "")
	boundary := dag.Boundary{
		{Name: "a_in", Width: 2, Dir: dag.In, Remap: "a"},
		{Name: "b_in", Width: 2, Dir: dag.In, Remap: "b"},
		{Name: "sum", Width: 1, Dir: dag.Out, Remap: "s"},
	}
	out, err := RenderString(tr.Netlist(boundary), tr.Catalog(), Options{Module: "adder2", OmitCells: true})
	if err != nil {
		t.Fatalf("RenderString() error: %v", err)
	}
	for _, want := range []string{"module adder2(a, b, s);", ".a_in(a[1])", ".sum(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderErrors(t *testing.T) {
	tr := newTree(t, 2, "")
	nl := tr.Netlist(nil)
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"unknown language", Options{Language: "systemc", Module: "x"}, errors.ErrCodeInvalidLanguage},
		{"bad module name", Options{Module: "2fast"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RenderString(nl, tr.Catalog(), tt.opts); !errors.Is(err, tt.code) {
				t.Errorf("RenderString() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want catalog.Language
	}{
		{"", catalog.Verilog},
		{"Verilog", catalog.Verilog},
		{" vhdl ", catalog.VHDL},
	}
	for _, tt := range tests {
		if got, err := ParseLanguage(tt.in); err != nil || got != tt.want {
			t.Errorf("ParseLanguage(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}
