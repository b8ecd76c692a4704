package catalog

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"

	"github.com/matzehuels/prefixtower/pkg/errors"
)

// Category classifies a cell by the role it can play in a tree.
type Category string

const (
	CategoryPre       Category = "pre"
	CategoryRoot      Category = "root"
	CategoryCocycle   Category = "cocycle"
	CategoryBuffer    Category = "buffer"
	CategoryInvisible Category = "invisible"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryPre, CategoryRoot, CategoryCocycle, CategoryBuffer, CategoryInvisible:
		return true
	}
	return false
}

// Language is a hardware-description output language.
type Language string

const (
	Verilog Language = "verilog"
	VHDL    Language = "vhdl"
)

// Languages lists the supported output languages.
var Languages = []Language{Verilog, VHDL}

// InputPort is a named input bus. Fanin holds the number of bits fed by each
// child slot, in slot order; the bits of slot i start at the sum of Fanin[:i].
type InputPort struct {
	Name  string `toml:"name" yaml:"name" json:"name"`
	Width int    `toml:"width" yaml:"width" json:"width"`
	Fanin []int  `toml:"fanin" yaml:"fanin" json:"fanin"`
}

// WidthAt returns the number of bits the port takes from child slot i.
func (p InputPort) WidthAt(i int) int {
	if i < 0 || i >= len(p.Fanin) {
		return 0
	}
	return p.Fanin[i]
}

// Offset returns the first bit of the port fed by child slot i.
func (p InputPort) Offset(i int) int {
	off := 0
	for j := 0; j < i && j < len(p.Fanin); j++ {
		off += p.Fanin[j]
	}
	return off
}

// OutputPort is a named output bus.
type OutputPort struct {
	Name  string `toml:"name" yaml:"name" json:"name"`
	Width int    `toml:"width" yaml:"width" json:"width"`
}

// Module is one cell type.
type Module struct {
	Name     string   `toml:"name" yaml:"name" json:"name"`
	Category Category `toml:"category" yaml:"category" json:"category"`
	// Phantom cells occupy a tree position but produce no hardware.
	Phantom bool `toml:"phantom" yaml:"phantom" json:"phantom,omitempty"`
	// Delay is the propagation delay used by edge weighting.
	Delay float64 `toml:"delay" yaml:"delay" json:"delay"`
	// Footprint groups modules that are interchangeable in place;
	// empty means the module's own name.
	Footprint string       `toml:"footprint" yaml:"footprint" json:"footprint,omitempty"`
	Inputs    []InputPort  `toml:"inputs" yaml:"inputs" json:"inputs"`
	Outputs   []OutputPort `toml:"outputs" yaml:"outputs" json:"outputs"`

	Shape string `toml:"shape" yaml:"shape" json:"shape,omitempty"`
	Color string `toml:"color" yaml:"color" json:"color,omitempty"`

	Templates map[Language]string `toml:"templates" yaml:"templates" json:"templates,omitempty"`
}

// Exists reports whether the cell is physically present.
func (m *Module) Exists() bool { return !m.Phantom }

// IsBuffer reports whether the cell is a pure pass-through.
func (m *Module) IsBuffer() bool { return m.Category == CategoryBuffer }

// FootprintName returns the footprint, defaulting to the module name.
func (m *Module) FootprintName() string {
	if m.Footprint == "" {
		return m.Name
	}
	return m.Footprint
}

// Radix returns the number of child slots, the longest fan-in list.
func (m *Module) Radix() int {
	r := 0
	for _, p := range m.Inputs {
		r = max(r, len(p.Fanin))
	}
	return r
}

// Input returns the input port with the given name.
func (m *Module) Input(name string) (InputPort, bool) {
	i := slices.IndexFunc(m.Inputs, func(p InputPort) bool { return p.Name == name })
	if i < 0 {
		return InputPort{}, false
	}
	return m.Inputs[i], true
}

// Output returns the output port with the given name.
func (m *Module) Output(name string) (OutputPort, bool) {
	i := slices.IndexFunc(m.Outputs, func(p OutputPort) bool { return p.Name == name })
	if i < 0 {
		return OutputPort{}, false
	}
	return m.Outputs[i], true
}

// Validate reports every structural problem with the module definition.
func (m *Module) Validate() error {
	var err error
	if m.Name == "" {
		return errors.Catalog("module has no name")
	}
	if !m.Category.Valid() {
		err = multierr.Append(err, errors.Catalog("module %s: unknown category %q", m.Name, m.Category))
	}
	seen := make(map[string]bool)
	for _, p := range m.Inputs {
		if seen[p.Name] {
			err = multierr.Append(err, errors.Catalog("module %s: duplicate port %s", m.Name, p.Name))
		}
		seen[p.Name] = true
		sum := 0
		for _, w := range p.Fanin {
			if w < 0 {
				err = multierr.Append(err, errors.Catalog("module %s: port %s has negative fan-in", m.Name, p.Name))
			}
			sum += w
		}
		if p.Width <= 0 || sum != p.Width {
			err = multierr.Append(err, errors.Catalog("module %s: port %s fan-in sums to %d, width is %d", m.Name, p.Name, sum, p.Width))
		}
	}
	for _, p := range m.Outputs {
		if seen[p.Name] {
			err = multierr.Append(err, errors.Catalog("module %s: duplicate port %s", m.Name, p.Name))
		}
		seen[p.Name] = true
		if p.Width <= 0 {
			err = multierr.Append(err, errors.Catalog("module %s: port %s has width %d", m.Name, p.Name, p.Width))
		}
	}
	return err
}

// Roles maps the positions of a prefix tree to module names.
// Pre, Root, Cocycle and Buffer are required; the others are optional
// variants that omit redundant logic on the spines or in one-leaf trees.
type Roles struct {
	Pre          string `toml:"pre" yaml:"pre" json:"pre"`
	Root         string `toml:"root" yaml:"root" json:"root"`
	Cocycle      string `toml:"cocycle" yaml:"cocycle" json:"cocycle"`
	Buffer       string `toml:"buffer" yaml:"buffer" json:"buffer"`
	LSpine       string `toml:"lspine" yaml:"lspine" json:"lspine,omitempty"`
	LSpinePre    string `toml:"lspine_pre" yaml:"lspine_pre" json:"lspine_pre,omitempty"`
	RSpine       string `toml:"rspine" yaml:"rspine" json:"rspine,omitempty"`
	RSpinePre    string `toml:"rspine_pre" yaml:"rspine_pre" json:"rspine_pre,omitempty"`
	RSpineBuffer string `toml:"rspine_buffer" yaml:"rspine_buffer" json:"rspine_buffer,omitempty"`
	SmallRoot    string `toml:"small_root" yaml:"small_root" json:"small_root,omitempty"`
	SmallPre     string `toml:"small_pre" yaml:"small_pre" json:"small_pre,omitempty"`
}

func (r Roles) named() [][2]string {
	return [][2]string{
		{"pre", r.Pre}, {"root", r.Root}, {"cocycle", r.Cocycle}, {"buffer", r.Buffer},
		{"lspine", r.LSpine}, {"lspine_pre", r.LSpinePre},
		{"rspine", r.RSpine}, {"rspine_pre", r.RSpinePre}, {"rspine_buffer", r.RSpineBuffer},
		{"small_root", r.SmallRoot}, {"small_pre", r.SmallPre},
	}
}

// Catalog is an immutable set of modules plus the roles a tree uses.
// The zero value is not usable; construct with [New], [Parse] or [Load].
type Catalog struct {
	name    string
	roles   Roles
	modules map[string]*Module
	order   []string
}

// New validates the modules and roles and returns a catalog.
// All problems are reported together.
func New(name string, roles Roles, modules ...Module) (*Catalog, error) {
	c := &Catalog{
		name:    name,
		roles:   roles,
		modules: make(map[string]*Module, len(modules)),
	}
	var err error
	for i := range modules {
		m := modules[i]
		if verr := m.Validate(); verr != nil {
			err = multierr.Append(err, verr)
			continue
		}
		if _, dup := c.modules[m.Name]; dup {
			err = multierr.Append(err, errors.Catalog("duplicate module %s", m.Name))
			continue
		}
		c.modules[m.Name] = &m
		c.order = append(c.order, m.Name)
	}
	for i, kv := range roles.named() {
		role, mod := kv[0], kv[1]
		if mod == "" {
			if i < 4 {
				err = multierr.Append(err, errors.Catalog("required role %s is not assigned", role))
			}
			continue
		}
		if _, ok := c.modules[mod]; !ok {
			err = multierr.Append(err, errors.Catalog("role %s names unknown module %s", role, mod))
		}
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Name returns the catalog name.
func (c *Catalog) Name() string { return c.name }

// Roles returns the role assignment.
func (c *Catalog) Roles() Roles { return c.roles }

// Module returns the named module or a CATALOG error.
// The returned module must not be modified.
func (c *Catalog) Module(name string) (*Module, error) {
	m, ok := c.modules[name]
	if !ok {
		return nil, errors.Catalog("unknown module %q", name)
	}
	return m, nil
}

// Has reports whether the catalog defines the named module.
func (c *Catalog) Has(name string) bool {
	_, ok := c.modules[name]
	return ok
}

// Modules returns all modules in definition order.
func (c *Catalog) Modules() []*Module {
	out := make([]*Module, len(c.order))
	for i, name := range c.order {
		out[i] = c.modules[name]
	}
	return out
}

// Match resolves the pin pairs connecting child to parent at slot index.
func (c *Catalog) Match(parent, child string, index int) ([]PinPair, error) {
	pm, err := c.Module(parent)
	if err != nil {
		return nil, err
	}
	cm, err := c.Module(child)
	if err != nil {
		return nil, err
	}
	return Match(pm, cm, index)
}

// String implements fmt.Stringer.
func (c *Catalog) String() string {
	return fmt.Sprintf("catalog %s (%d modules)", c.name, len(c.order))
}
