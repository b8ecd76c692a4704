package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/prefixtower/pkg/catalog"
	"github.com/matzehuels/prefixtower/pkg/tree"
)

func TestDrawShape(t *testing.T) {
	tests := []struct {
		name string
		cfg  tree.Config
	}{
		{"ripple", tree.Config{Width: 6, Recipe: "ripple"}},
		{"rank zero", tree.Config{Width: 5}},
		{"single bit", tree.Config{Width: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := tree.New(catalog.Default(), tt.cfg)
			if err != nil {
				t.Fatalf("tree.New() error: %v", err)
			}
			lines := strings.Split(strings.TrimRight(drawShape(tr), "\n"), "\n")
			if got, want := len(lines)-1, tr.TreeHeight(); got < want {
				t.Errorf("drawShape() has %d rows, want at least %d", got, want)
			}
			if got := strings.Count(drawShape(tr), string(glyphRoot)); got != 1 {
				t.Errorf("drawShape() has %d roots, want 1", got)
			}
		})
	}
}

func TestShapeLegend(t *testing.T) {
	legend := shapeLegend()
	for _, g := range []rune{glyphRoot, glyphInternal, glyphBuffer, glyphLeaf, glyphPhantom} {
		if !strings.ContainsRune(legend, g) {
			t.Errorf("shapeLegend() missing %q", g)
		}
	}
}
