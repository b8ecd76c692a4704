package dag

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Net identifies a wire. The zero value is an unassigned net. Auto nets are
// numbered by the owning graph; fixed nets carry an external boundary name.
type Net struct {
	id   int
	name string
}

// AutoNet returns the auto-generated net with the given number (>= 1).
func AutoNet(id int) Net { return Net{id: id} }

// FixedNet returns a boundary net with an externally fixed name such as "a_in[3]".
func FixedNet(name string) Net { return Net{name: name} }

// IsAssigned reports whether the net has been bound.
func (n Net) IsAssigned() bool { return n.id != 0 || n.name != "" }

// IsFixed reports whether the net is a boundary signal.
func (n Net) IsFixed() bool { return n.name != "" }

// ID returns the auto-generated number, or 0 for unassigned and fixed nets.
func (n Net) ID() int { return n.id }

// Base returns the boundary port name without its bit subscript.
func (n Net) Base() string {
	if i := strings.IndexByte(n.name, '['); i >= 0 {
		return n.name[:i]
	}
	return n.name
}

// String renders the net as it appears in emitted HDL: "n0" when unassigned,
// "n<id>" for auto nets and the bare name for fixed nets.
func (n Net) String() string {
	if n.name != "" {
		return n.name
	}
	return "n" + strconv.Itoa(n.id)
}

// MarshalJSON encodes fixed nets with a "$" boundary marker.
func (n Net) MarshalJSON() ([]byte, error) {
	if n.name != "" {
		return json.Marshal("$" + n.name)
	}
	return json.Marshal(n.String())
}

// UnmarshalJSON accepts the encoding produced by MarshalJSON.
func (n *Net) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*n = ParseNet(s)
	return nil
}

// ParseNet is the inverse of MarshalJSON's string form.
func ParseNet(s string) Net {
	if name, ok := strings.CutPrefix(s, "$"); ok {
		return FixedNet(name)
	}
	if rest, ok := strings.CutPrefix(s, "n"); ok {
		if id, err := strconv.Atoi(rest); err == nil {
			return AutoNet(id)
		}
	}
	return FixedNet(s)
}

// Port is a named bus on a node with one net per bit.
type Port struct {
	Name string `json:"name"`
	Nets []Net  `json:"nets"`
}
