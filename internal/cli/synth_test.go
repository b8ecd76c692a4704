package cli

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/prefixtower/pkg/catalog"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		base   string
		format string
		lang   catalog.Language
		multi  bool
		want   string
	}{
		{"adder", "hdl", catalog.Verilog, false, "adder.v"},
		{"adder", "hdl", catalog.VHDL, false, "adder.vhd"},
		{"ks32.vhd", "hdl", catalog.VHDL, false, "ks32.vhd"},
		{"out/adder.v", "svg", catalog.Verilog, true, "out/adder.svg"},
		{"adder", "json", catalog.Verilog, true, "adder.json"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := outputPath(tt.base, tt.format, tt.lang, tt.multi); got != tt.want {
				t.Errorf("outputPath(%q, %q) = %q, want %q", tt.base, tt.format, got, tt.want)
			}
		})
	}
}

func TestSynthStdout(t *testing.T) {
	out, err := run(t, "synth", "-w", "4", "--recipe", "ripple")
	if err != nil {
		t.Fatalf("synth error: %v", err)
	}
	if !strings.Contains(out, "module adder(") {
		t.Errorf("synth output missing module:\n%s", out)
	}
}

func TestSynthForest(t *testing.T) {
	out, err := run(t, "synth", "-w", "4", "--forest", "--ranks", "0,0,1,3", "--no-cache")
	if err != nil {
		t.Fatalf("synth --forest error: %v", err)
	}
	for _, want := range []string{"output [3:0] sum;", "input [3:0] a_in;"} {
		if !strings.Contains(out, want) {
			t.Errorf("forest output missing %q:\n%s", want, out)
		}
	}
}

func TestSynthFlat(t *testing.T) {
	out, err := run(t, "synth", "-w", "4", "--flat", "--no-cache")
	if err != nil {
		t.Fatalf("synth --flat error: %v", err)
	}
	if strings.Contains(out, "module ppa_pre(") {
		t.Errorf("flat output defines cells:\n%s", out)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"0,1, 2", []string{"0", "1", "2"}},
		{" ,3,,", []string{"3"}},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("splitList(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSynthFiles(t *testing.T) {
	base := filepath.Join(t.TempDir(), "adder")
	if _, err := run(t, "synth", "-w", "6", "-f", "hdl,dot,json", "-o", base, "--no-cache"); err != nil {
		t.Fatalf("synth error: %v", err)
	}
	for _, ext := range []string{".v", ".dot", ".json"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
	}
}

func TestSynthErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"binary needs output", []string{"synth", "-f", "png"}, "--output"},
		{"multiple need output", []string{"synth", "-f", "hdl,dot"}, "--output"},
		{"bad width", []string{"synth", "-w", "0"}, "width"},
		{"bad language", []string{"synth", "-l", "cobol"}, "language"},
		{"forest diagram", []string{"synth", "--forest", "-f", "svg", "-o", "x"}, "forest"},
		{"ranks without forest", []string{"synth", "--ranks", "0,1"}, "forest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(strings.ToLower(err.Error()), tt.want) {
				t.Errorf("synth error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestRankCommands(t *testing.T) {
	out, err := run(t, "rank", "-w", "8", "--recipe", "ripple")
	if err != nil {
		t.Fatalf("rank error: %v", err)
	}
	if !strings.Contains(out, "0") {
		t.Errorf("rank output = %q", out)
	}

	out, err = run(t, "unrank", "3", "-w", "5")
	if err != nil {
		t.Fatalf("unrank error: %v", err)
	}
	if !strings.Contains(out, string(glyphRoot)) {
		t.Errorf("unrank output missing shape:\n%s", out)
	}
}
