package hdl

import (
	"strings"
	"text/template"

	"github.com/matzehuels/prefixtower/pkg/dag"
)

var funcs = template.FuncMap{
	"join": strings.Join,
	"sub":  func(a, b int) int { return a - b },
	"verilogDir": func(d dag.Direction) string {
		if d == dag.Out {
			return "output"
		}
		return "input"
	},
	"last": func(i, n int) bool { return i == n-1 },
}

var verilogTemplate = template.Must(template.New("verilog").Funcs(funcs).Parse(`
{{- define "module" -}}
module {{.Name}}({{join .PortNames ", "}});
{{range .Ports}}
	{{verilogDir .Dir}} {{if gt .Width 1}}[{{sub .Width 1}}:0] {{end}}{{.Name}};
{{- end}}
{{- if .Wires}}

	wire {{join .Wires ", "}};
{{- end}}
{{range .Rows}}
{{if ge .Depth 0}}	// start of tree row {{.Depth}}
{{end}}
{{- range .Instances}}{{if .Inline}}	// {{.Name}}: {{.Module}}
{{range .Body}}	{{.}}
{{end}}{{else}}	{{.Module}} {{.Name}} (
{{- range $i, $c := .Conns}}{{if $i}},{{end}} .{{$c.Port}}({{$c.Value}}){{end}} );
{{end}}{{end}}
{{- end}}
endmodule
{{end -}}
{{- range .Cells}}{{.}}

{{end -}}
{{range .Blocks}}{{template "module" .}}
{{end -}}
{{template "module" .Top -}}
`))

var vhdlTemplate = template.Must(template.New("vhdl").Funcs(funcs).Parse(`
{{- define "entity" -}}
library ieee;
use ieee.std_logic_1164.all;

entity {{.Name}} is
	port (
{{- $n := len .Ports}}
{{- range $i, $p := .Ports}}
		{{$p.Name}} : {{$p.Dir}} {{if gt $p.Width 1}}std_logic_vector({{sub $p.Width 1}} downto 0){{else}}std_logic{{end}}{{if not (last $i $n)}};{{end}}
{{- end}}
	);
end entity;

architecture structural of {{.Name}} is
{{- if .Wires}}
	signal {{join .Wires ", "}} : std_logic;
{{- end}}
begin
{{range .Rows}}
{{- if ge .Depth 0}}	-- start of tree row {{.Depth}}
{{end}}
{{- range .Instances}}{{if .Inline}}	-- {{.Name}}: {{.Module}}
{{range .Body}}	{{.}}
{{end}}{{else}}	{{.Name}}: entity work.{{.Module}}
		port map (
{{- $n := len .Conns}}
{{- range $i, $c := .Conns}}
			{{$c.Port}} => {{$c.Value}}{{if not (last $i $n)}},{{end}}
{{- end}}
		);
{{end}}{{end}}
{{- end -}}
end architecture;
{{end -}}
{{range .Cells}}library ieee;
use ieee.std_logic_1164.all;

{{.}}

{{end -}}
{{range .Blocks}}{{template "entity" .}}
{{end -}}
{{template "entity" .Top -}}
`))
