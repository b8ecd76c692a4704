package hdl

import (
	"fmt"
	"strings"

	"github.com/matzehuels/prefixtower/pkg/catalog"
	"github.com/matzehuels/prefixtower/pkg/dag"
)

// namer spells nets in the syntax of one language.
type namer struct {
	lang  catalog.Language
	remap map[string]string
	// local names every net by its sanitized form, as inside a block.
	local bool
}

func newNamer(lang catalog.Language, ports []dag.BoundaryPort) *namer {
	nm := &namer{lang: lang, remap: make(map[string]string)}
	for _, p := range ports {
		if p.Remap != "" {
			nm.remap[p.Name] = p.Remap
		}
	}
	return nm
}

func (nm *namer) net(n dag.Net) string {
	if nm.local {
		return sanitize(n)
	}
	s := n.String()
	base := n.Base()
	if r, ok := nm.remap[base]; ok {
		s = r + s[len(base):]
	}
	if nm.lang == catalog.VHDL {
		s = strings.NewReplacer("[", "(", "]", ")").Replace(s)
	}
	return s
}

// conns binds instance ports. Verilog concatenates multi-bit ports most
// significant bit first; VHDL maps each bit by index.
func (nm *namer) conns(ports []dag.PortBinding) []conn {
	var out []conn
	for _, p := range ports {
		if len(p.Nets) == 1 {
			out = append(out, conn{Port: p.Name, Value: nm.net(p.Nets[0])})
			continue
		}
		if nm.lang == catalog.VHDL {
			for b, n := range p.Nets {
				out = append(out, conn{Port: fmt.Sprintf("%s(%d)", p.Name, b), Value: nm.net(n)})
			}
			continue
		}
		vals := make([]string, len(p.Nets))
		for b, n := range p.Nets {
			vals[len(p.Nets)-1-b] = nm.net(n)
		}
		out = append(out, conn{Port: p.Name, Value: "{ " + strings.Join(vals, ", ") + " }"})
	}
	return out
}

// sanitize turns a net into a plain identifier: a_in[3] becomes a_in_3.
func sanitize(n dag.Net) string {
	return strings.NewReplacer("[", "_", "]", "").Replace(n.String())
}
