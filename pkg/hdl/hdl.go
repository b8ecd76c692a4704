package hdl

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/template"

	"github.com/matzehuels/prefixtower/pkg/catalog"
	"github.com/matzehuels/prefixtower/pkg/dag"
	"github.com/matzehuels/prefixtower/pkg/errors"
)

// Options configures HDL emission.
type Options struct {
	// Language selects the output language. Empty means Verilog.
	Language catalog.Language
	// Module overrides the top-level module name. Empty uses the netlist
	// name.
	Module string
	// OmitCells skips the cell definitions from the catalog, for flows
	// that compile a cell library separately.
	OmitCells bool
	// Flat inlines the body of every cell where it is instantiated, so the
	// output needs no cell definitions. Blocks stay separate modules.
	Flat bool
}

// ParseLanguage validates a language name.
func ParseLanguage(s string) (catalog.Language, error) {
	lang := catalog.Language(strings.ToLower(strings.TrimSpace(s)))
	if lang == "" {
		return catalog.Verilog, nil
	}
	if !slices.Contains(catalog.Languages, lang) {
		return "", errors.New(errors.ErrCodeInvalidLanguage, "unsupported language %q (must be one of: verilog, vhdl)", s)
	}
	return lang, nil
}

// Extension returns the conventional file extension of a language.
func Extension(lang catalog.Language) string {
	if lang == catalog.VHDL {
		return ".vhd"
	}
	return ".v"
}

// Render writes a structural module for nl. Cell definitions come from the
// catalog templates; blocks become generated sub-modules.
func Render(w io.Writer, nl *dag.Netlist, cat *catalog.Catalog, opts Options) error {
	lang, err := ParseLanguage(string(opts.Language))
	if err != nil {
		return err
	}
	name := opts.Module
	if name == "" {
		name = nl.Name
	}
	if err := errors.ValidateIdentifier(name); err != nil {
		return err
	}

	d := design{Language: lang}
	var fl *flattener
	if opts.Flat || !opts.OmitCells {
		srcs, err := cells(nl.Cells, cat, lang)
		if err != nil {
			return err
		}
		if opts.Flat {
			if fl, err = newFlattener(nl.Cells, srcs, lang); err != nil {
				return err
			}
		} else {
			d.Cells = srcs
		}
	}
	nm := newNamer(lang, nl.Ports)
	for _, b := range nl.Blocks {
		d.Blocks = append(d.Blocks, blockModule(b, nm, fl))
	}
	d.Top = topModule(name, nl, nm, fl)

	tmpl := verilogTemplate
	if lang == catalog.VHDL {
		tmpl = vhdlTemplate
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "render %s", lang)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// RenderString is Render into a string.
func RenderString(nl *dag.Netlist, cat *catalog.Catalog, opts Options) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, nl, cat, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// cells expands the catalog template of every instantiated module.
func cells(names []string, cat *catalog.Catalog, lang catalog.Language) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		m, err := cat.Module(name)
		if err != nil {
			return nil, err
		}
		src, ok := m.Templates[lang]
		if !ok || strings.TrimSpace(src) == "" {
			return nil, errors.Catalog("module %s has no %s template", name, lang)
		}
		t, err := template.New(name).Parse(src)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCatalog, err, "module %s %s template", name, lang)
		}
		var sb strings.Builder
		if err := t.Execute(&sb, m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCatalog, err, "expand %s", name)
		}
		out = append(out, strings.TrimSpace(sb.String()))
	}
	return out, nil
}

type design struct {
	Language catalog.Language
	Cells    []string
	Blocks   []module
	Top      module
}

type module struct {
	Name  string
	Ports []port
	Wires []string
	Rows  []row
}

// PortNames lists the port names in declaration order.
func (m module) PortNames() []string {
	out := make([]string, len(m.Ports))
	for i, p := range m.Ports {
		out[i] = p.Name
	}
	return out
}

type port struct {
	Name  string
	Dir   dag.Direction
	Width int
}

type row struct {
	Depth     int
	Instances []instance
}

type instance struct {
	Name   string
	Module string
	Conns  []conn
	// Inline replaces the instantiation with the statements in Body.
	Inline bool
	Body   []string
}

type conn struct {
	Port  string
	Value string
}

func topModule(name string, nl *dag.Netlist, nm *namer, fl *flattener) module {
	m := module{Name: name}
	for _, p := range nl.Ports {
		m.Ports = append(m.Ports, port{Name: p.External(), Dir: p.Dir, Width: max(p.Width, 1)})
	}
	for _, w := range nl.Wires {
		m.Wires = append(m.Wires, nm.net(w))
	}
	var insts []dag.Instance
	for _, inst := range nl.Instances {
		if !inst.Phantom {
			insts = append(insts, inst)
		}
	}
	m.Rows, m.Wires = rows(insts, nm, fl, m.Wires)
	for _, b := range nl.Blocks {
		inst := instance{Name: b.Name() + "_instance", Module: b.Name()}
		for _, n := range slices.Concat(b.Inputs, b.Outputs) {
			inst.Conns = append(inst.Conns, conn{Port: sanitize(n), Value: nm.net(n)})
		}
		m.Rows = append(m.Rows, row{Depth: -1, Instances: []instance{inst}})
	}
	return m
}

// blockModule flattens a block into a module whose ports are the nets that
// cross the block boundary.
func blockModule(b dag.BlockInstance, outer *namer, fl *flattener) module {
	m := module{Name: b.Name()}
	boundary := make(map[dag.Net]bool)
	for _, n := range b.Inputs {
		m.Ports = append(m.Ports, port{Name: sanitize(n), Dir: dag.In, Width: 1})
		boundary[n] = true
	}
	for _, n := range b.Outputs {
		m.Ports = append(m.Ports, port{Name: sanitize(n), Dir: dag.Out, Width: 1})
		boundary[n] = true
	}
	seen := make(map[dag.Net]bool)
	var members []dag.Instance
	for _, inst := range b.Members {
		if inst.Phantom {
			continue
		}
		members = append(members, inst)
		for _, p := range inst.Ports {
			for _, n := range p.Nets {
				if !boundary[n] && !seen[n] {
					seen[n] = true
					m.Wires = append(m.Wires, sanitize(n))
				}
			}
		}
	}
	inner := &namer{lang: outer.lang, local: true}
	m.Rows, m.Wires = rows(members, inner, fl, m.Wires)
	return m
}

// rows groups instances by depth, deepest (the leaves) first, and numbers
// them in emission order. With a flattener the cell bodies are inlined and
// their locals are appended to wires.
func rows(insts []dag.Instance, nm *namer, fl *flattener, wires []string) ([]row, []string) {
	sorted := slices.Clone(insts)
	slices.SortStableFunc(sorted, func(a, b dag.Instance) int { return b.Depth - a.Depth })
	var out []row
	for i, inst := range sorted {
		if len(out) == 0 || out[len(out)-1].Depth != inst.Depth {
			out = append(out, row{Depth: inst.Depth})
		}
		r := &out[len(out)-1]
		in := instance{
			Name:   fmt.Sprintf("U%d", i),
			Module: inst.Module,
			Conns:  nm.conns(inst.Ports),
		}
		if fl != nil {
			var locals []string
			in.Inline = true
			in.Body, locals = fl.inline(inst, in.Name, nm)
			wires = append(wires, locals...)
		}
		r.Instances = append(r.Instances, in)
	}
	return out, wires
}
