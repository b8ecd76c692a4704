package catalog

import (
	"fmt"
	"strings"

	"github.com/matzehuels/prefixtower/pkg/errors"
)

// Pin addresses one bit of a named port.
type Pin struct {
	Port string `json:"port"`
	Bit  int    `json:"bit"`
}

// String renders the pin as port[bit].
func (p Pin) String() string { return fmt.Sprintf("%s[%d]", p.Port, p.Bit) }

// PinPair connects a parent input pin to the child output pin driving it.
type PinPair struct {
	Parent Pin `json:"parent"`
	Child  Pin `json:"child"`
}

// Verso returns the complementary port name: "in" becomes "out" and vice versa.
func Verso(name string) string {
	if strings.Contains(name, "out") {
		return strings.ReplaceAll(name, "out", "in")
	}
	return strings.ReplaceAll(name, "in", "out")
}

// Match returns one pin pair per bit that child must drive on parent when
// attached at slot index. It fails with PORT_MISMATCH if a required verso
// port is missing or too narrow, or if no parent port takes bits from index.
func Match(parent, child *Module, index int) ([]PinPair, error) {
	var pairs []PinPair
	for _, in := range parent.Inputs {
		w := in.WidthAt(index)
		if w == 0 {
			continue
		}
		verso := Verso(in.Name)
		out, ok := child.Output(verso)
		if !ok {
			return nil, errors.PortMismatch("%s.%s has no verso port %s on %s", parent.Name, in.Name, verso, child.Name)
		}
		if out.Width < w {
			return nil, errors.PortMismatch("%s.%s needs %d bits at slot %d, %s.%s has %d",
				parent.Name, in.Name, w, index, child.Name, out.Name, out.Width)
		}
		off := in.Offset(index)
		for b := 0; b < w; b++ {
			pairs = append(pairs, PinPair{
				Parent: Pin{Port: in.Name, Bit: off + b},
				Child:  Pin{Port: out.Name, Bit: b},
			})
		}
	}
	if len(pairs) == 0 {
		return nil, errors.PortMismatch("%s takes no input at slot %d", parent.Name, index)
	}
	return pairs, nil
}
