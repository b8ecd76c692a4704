package pipeline

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/prefixtower/pkg/catalog"
	"github.com/matzehuels/prefixtower/pkg/dag"
	"github.com/matzehuels/prefixtower/pkg/hdl"
	pkgio "github.com/matzehuels/prefixtower/pkg/io"
	"github.com/matzehuels/prefixtower/pkg/render/nodelink"
	"github.com/matzehuels/prefixtower/pkg/tree"
)

// Render generates output artifacts in the requested formats.
// The DOT source is generated once and shared by the diagram formats.
func Render(t *tree.Tree, cat *catalog.Catalog, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string
	diagram := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(t.Graph, nodelink.Options{Detailed: opts.Detailed})
		}
		return dot
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatHDL:
			data, err = renderHDL(t.Netlist(opts.Boundary), cat, opts)
		case FormatDOT:
			data = []byte(diagram())
		case FormatSVG:
			data, err = nodelink.RenderSVG(diagram())
		case FormatPNG:
			data, err = nodelink.RenderPNG(diagram(), 2.0)
		case FormatPDF:
			data, err = nodelink.RenderPDF(diagram())
		case FormatJSON:
			var buf bytes.Buffer
			err = pkgio.WriteJSON(t, &buf, true)
			data = buf.Bytes()
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// RenderForest generates the artifacts of a forest. Only the formats in
// ForestFormats are supported.
func RenderForest(f *tree.Forest, cat *catalog.Catalog, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatHDL:
			data, err = renderHDL(f.Netlist(opts.Boundary), cat, opts)
		case FormatJSON:
			var buf bytes.Buffer
			err = pkgio.WriteForestJSON(f, &buf)
			data = buf.Bytes()
		default:
			return nil, fmt.Errorf("unsupported forest format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderHDL(nl *dag.Netlist, cat *catalog.Catalog, opts Options) ([]byte, error) {
	lang, err := hdl.ParseLanguage(opts.Language)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = hdl.Render(&buf, nl, cat, hdl.Options{
		Language: lang,
		Module:   opts.Module,
		Flat:     opts.Flat,
	})
	return buf.Bytes(), err
}
