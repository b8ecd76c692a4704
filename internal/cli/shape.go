package cli

import (
	"fmt"
	"strings"

	"github.com/matzehuels/prefixtower/pkg/dag"
	"github.com/matzehuels/prefixtower/pkg/tree"
)

// Shape glyphs, one per cell.
const (
	glyphRoot     = '#'
	glyphInternal = '*'
	glyphBuffer   = '|'
	glyphLeaf     = 'o'
	glyphPhantom  = '.'
)

// drawShape renders t as a grid with one row per depth and one column per
// bit, most significant bit on the left.
func drawShape(t *tree.Tree) string {
	width := t.Width()
	rows := 0
	for _, n := range t.Nodes() {
		rows = max(rows, n.Depth+1)
	}
	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	for _, n := range t.Nodes() {
		col := width - 1 - n.Column
		if col < 0 || col >= width {
			continue
		}
		grid[n.Depth][col] = glyph(t, n)
	}

	var b strings.Builder
	b.WriteString("     ")
	for i := width - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "%-3d", i%100)
	}
	b.WriteByte('\n')
	for depth, row := range grid {
		fmt.Fprintf(&b, "%3d  ", depth)
		for _, r := range row {
			b.WriteRune(r)
			b.WriteString("  ")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func glyph(t *tree.Tree, n *dag.Node) rune {
	m := t.Module(n.ID)
	switch {
	case n.ID == t.Root():
		return glyphRoot
	case m != nil && !m.Exists():
		return glyphPhantom
	case m != nil && m.IsBuffer():
		return glyphBuffer
	case n.IsLeaf():
		return glyphLeaf
	}
	return glyphInternal
}

// shapeLegend explains the glyphs.
func shapeLegend() string {
	return fmt.Sprintf("%c root  %c cell  %c buffer  %c input  %c phantom",
		glyphRoot, glyphInternal, glyphBuffer, glyphLeaf, glyphPhantom)
}
