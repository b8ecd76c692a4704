package dag_test

import (
	"fmt"

	"github.com/matzehuels/prefixtower/pkg/catalog"
	"github.com/matzehuels/prefixtower/pkg/dag"
)

func ExampleGraph_Connect() {
	// One cocycle cell combining two pre-processing cells.
	g := dag.New(catalog.Default())
	top, _ := g.AddNode("ppa_cocycle", 1, 1)
	hi, _ := g.AddNode("ppa_pre", 1, 2)
	lo, _ := g.AddNode("ppa_pre", 0, 2)
	_, _ = g.Connect(top, hi, 0)
	_, _ = g.Connect(top, lo, 1)

	n, _ := g.Node(top)
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Nets:", g.NetCount())
	fmt.Println("gin:", n.Input("gin").Nets)
	fmt.Println("pin:", n.Input("pin").Nets)
	// Output:
	// Edges: 2
	// Nets: 4
	// gin: [n1 n3]
	// pin: [n2 n4]
}

func ExampleGraph_AddBlock() {
	g := dag.New(catalog.Default())
	a, _ := g.AddNode("ppa_pre", 0, 2)
	b, _ := g.AddNode("ppa_buffer", 0, 1)
	c, _ := g.AddNode("ppa_pre", 1, 2)

	first, _ := g.AddBlock(a, b)
	second, _ := g.AddBlock(c)
	_ = g.RemoveBlock(first)
	third, _ := g.AddBlock(a)

	fmt.Println(first, second, third)
	// Output:
	// 0 1 0
}

func ExampleGraph_LongestPath() {
	// pre -> buffer -> cocycle, wired as a chain.
	g := dag.New(catalog.Default())
	top, _ := g.AddNode("ppa_cocycle", 0, 0)
	buf, _ := g.AddNode("ppa_buffer", 0, 1)
	pre, _ := g.AddNode("ppa_pre", 0, 2)
	_, _ = g.Connect(buf, pre, 0)
	_, _ = g.Connect(top, buf, 0)

	for _, id := range g.LongestPath() {
		n, _ := g.Node(id)
		fmt.Println(n.Module)
	}
	// Output:
	// ppa_pre
	// ppa_buffer
	// ppa_cocycle
}
