package hdl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/prefixtower/pkg/catalog"
	"github.com/matzehuels/prefixtower/pkg/dag"
	"github.com/matzehuels/prefixtower/pkg/errors"
)

// cellBody is the logic of one cell template with its interface stripped.
type cellBody struct {
	// locals are the scalar nets the cell declares for itself.
	locals []string
	stmts  []string
}

// flattener inlines cell bodies in place of instantiations.
type flattener struct {
	lang   catalog.Language
	bodies map[string]cellBody
}

var (
	lineComment   = regexp.MustCompile(`(//|--)[^\n]*`)
	verilogHeader = regexp.MustCompile(`(?s)^\s*module\b.*?;`)
	vhdlBegin     = regexp.MustCompile(`(?i)\bbegin\b`)
	vhdlArch      = regexp.MustCompile(`(?i)\barchitecture\b[^;]*?\bis\b`)
	vhdlEnd       = regexp.MustCompile(`(?i)\bend\b[^;]*;\s*$`)
	verilogLabel  = regexp.MustCompile(`^(\w+\s+)(\w+)(\s*\()`)
	vhdlLabel     = regexp.MustCompile(`^(\w+)(\s*:[^=])`)
	verilogRef    = regexp.MustCompile(`\b([A-Za-z_]\w*)(\s*\[(\d+)\])?`)
	vhdlRef       = regexp.MustCompile(`\b([A-Za-z_]\w*)(\s*\((\d+)\))?`)
)

func newFlattener(names, sources []string, lang catalog.Language) (*flattener, error) {
	fl := &flattener{lang: lang, bodies: make(map[string]cellBody, len(names))}
	for i, name := range names {
		var (
			b   cellBody
			err error
		)
		if lang == catalog.VHDL {
			b, err = parseVHDL(sources[i])
		} else {
			b, err = parseVerilog(sources[i])
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCatalog, err, "flatten %s", name)
		}
		fl.bodies[name] = b
	}
	return fl, nil
}

func parseVerilog(src string) (cellBody, error) {
	src = lineComment.ReplaceAllString(src, "")
	loc := verilogHeader.FindStringIndex(src)
	if loc == nil {
		return cellBody{}, fmt.Errorf("no module header")
	}
	body := strings.TrimSpace(src[loc[1]:])
	body = strings.TrimSpace(strings.TrimSuffix(body, "endmodule"))
	var b cellBody
	for _, s := range strings.Split(body, ";") {
		s = strings.Join(strings.Fields(s), " ")
		if s == "" {
			continue
		}
		switch strings.Fields(s)[0] {
		case "input", "output", "inout":
		case "wire", "reg":
			names, err := declared(strings.TrimSpace(s[strings.IndexByte(s, ' '):]))
			if err != nil {
				return cellBody{}, err
			}
			b.locals = append(b.locals, names...)
		default:
			b.stmts = append(b.stmts, s+";")
		}
	}
	return b, nil
}

func parseVHDL(src string) (cellBody, error) {
	src = lineComment.ReplaceAllString(src, "")
	arch := vhdlArch.FindStringIndex(src)
	if arch == nil {
		return cellBody{}, fmt.Errorf("no architecture")
	}
	rest := src[arch[1]:]
	begin := vhdlBegin.FindStringIndex(rest)
	if begin == nil {
		return cellBody{}, fmt.Errorf("architecture has no begin")
	}
	var b cellBody
	for _, s := range strings.Split(rest[:begin[0]], ";") {
		s = strings.TrimSpace(s)
		if !strings.HasPrefix(strings.ToLower(s), "signal ") {
			continue
		}
		decl, _, _ := strings.Cut(s[len("signal "):], ":")
		names, err := declared(decl)
		if err != nil {
			return cellBody{}, err
		}
		b.locals = append(b.locals, names...)
	}
	body := strings.TrimSpace(vhdlEnd.ReplaceAllString(rest[begin[1]:], ""))
	for _, s := range strings.Split(body, ";") {
		s = strings.Join(strings.Fields(s), " ")
		if s != "" {
			b.stmts = append(b.stmts, s+";")
		}
	}
	return b, nil
}

// declared splits a declaration list into names. Only scalar locals can be
// hoisted into the enclosing module.
func declared(list string) ([]string, error) {
	if strings.ContainsAny(list, "[(") {
		return nil, fmt.Errorf("vector local %q cannot be inlined", list)
	}
	var out []string
	for _, n := range strings.Split(list, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out, nil
}

// inline returns the statements of inst with ports bound to its nets and
// labels and locals prefixed with the instance name.
func (fl *flattener) inline(inst dag.Instance, label string, nm *namer) (stmts, locals []string) {
	b := fl.bodies[inst.Module]
	ports := make(map[string][]dag.Net, len(inst.Ports))
	for _, p := range inst.Ports {
		ports[p.Name] = p.Nets
	}
	renamed := make(map[string]string, len(b.locals))
	for _, l := range b.locals {
		renamed[l] = label + "_" + l
		locals = append(locals, renamed[l])
	}

	refRe := verilogRef
	if fl.lang == catalog.VHDL {
		refRe = vhdlRef
	}
	for _, s := range b.stmts {
		switch {
		case fl.lang == catalog.VHDL:
			s = vhdlLabel.ReplaceAllString(s, label+"_${1}${2}")
		case !strings.HasPrefix(s, "assign "):
			s = verilogLabel.ReplaceAllString(s, "${1}"+label+"_${2}${3}")
		}
		s = refRe.ReplaceAllStringFunc(s, func(m string) string {
			sub := refRe.FindStringSubmatch(m)
			name := sub[1]
			if r, ok := renamed[name]; ok && sub[2] == "" {
				return r
			}
			nets, ok := ports[name]
			if !ok {
				return m
			}
			if sub[3] != "" {
				bit, err := strconv.Atoi(sub[3])
				if err != nil || bit >= len(nets) {
					return m
				}
				return nm.net(nets[bit])
			}
			if len(nets) == 1 {
				return nm.net(nets[0])
			}
			return fl.bus(nets, nm)
		})
		stmts = append(stmts, s)
	}
	return stmts, locals
}

// bus spells a whole multi-bit port, most significant bit first.
func (fl *flattener) bus(nets []dag.Net, nm *namer) string {
	vals := make([]string, len(nets))
	for b, n := range nets {
		vals[len(nets)-1-b] = nm.net(n)
	}
	if fl.lang == catalog.VHDL {
		return "(" + strings.Join(vals, " & ") + ")"
	}
	return "{ " + strings.Join(vals, ", ") + " }"
}
