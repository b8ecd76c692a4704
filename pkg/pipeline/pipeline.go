// Package pipeline provides the synthesis pipeline for prefixtower.
//
// The CLI, the HTTP API and the enumerator all run designs through the same
// [Runner], so every entry point validates, caches and reports the same way.
//
// # Stages
//
//  1. catalog: load the cell library (built-in, file or preloaded)
//  2. build: unrank the requested shape into a tree
//  3. recipe: reshape with a named recipe and optionally swap spine cells
//  4. partition: group the critical path into blocks
//  5. emit: render the requested formats (hdl, dot, svg, png, pdf, json)
//
// In forest mode the build stage produces one tree per output bit and the
// later stages run on every tree; the forest renders to hdl and json.
//
// Each stage is logged and reported to [observability.Pipeline]. Rendered
// artifacts are cached under keys derived from the options.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Width:   16,
//	    Recipe:  "sklansky",
//	    Formats: []string{"hdl", "svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	verilog := result.Artifacts["hdl"]
package pipeline

import (
	"fmt"
	"io"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/prefixtower/pkg/cache"
	"github.com/matzehuels/prefixtower/pkg/catalog"
	"github.com/matzehuels/prefixtower/pkg/dag"
	"github.com/matzehuels/prefixtower/pkg/errors"
	"github.com/matzehuels/prefixtower/pkg/hdl"
	"github.com/matzehuels/prefixtower/pkg/tree"
)

// Format constants for output formats.
const (
	FormatHDL  = "hdl"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ForestFormats are the formats a forest can be rendered to. Diagrams
// draw a single tree.
var ForestFormats = map[string]bool{
	FormatHDL:  true,
	FormatJSON: true,
}

// DefaultFormat is emitted when no format is requested.
const DefaultFormat = FormatHDL

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatHDL:  true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// Options contains all configuration for one synthesis run.
// It doubles as the JSON body of the HTTP API.
type Options struct {
	// Build options
	Width  int    `json:"width"`
	Rank   string `json:"rank,omitempty"` // decimal, arbitrary precision
	Recipe string `json:"recipe,omitempty"`
	Name   string `json:"name,omitempty"`

	// Forest builds one tree per output bit instead of a single tree.
	// Ranks then gives the rank of every tree, smallest first.
	Forest bool     `json:"forest,omitempty"`
	Ranks  []string `json:"ranks,omitempty"`

	// Reshaping options
	Optimize  bool `json:"optimize,omitempty"`
	Partition bool `json:"partition,omitempty"`

	// Emit options
	Formats  []string     `json:"formats,omitempty"`
	Language string       `json:"language,omitempty"`
	Module   string       `json:"module,omitempty"` // top-level HDL module name
	Boundary dag.Boundary `json:"boundary,omitempty"`
	Flat     bool         `json:"flat,omitempty"` // inline cell bodies into the top module
	Detailed bool         `json:"detailed,omitempty"`
	Refresh  bool         `json:"refresh,omitempty"`

	// CatalogPath loads a TOML or YAML catalog instead of the built-in one.
	CatalogPath string `json:"-"`

	// Runtime options (not serialized)
	Catalog *catalog.Catalog `json:"-"`
	Logger  *log.Logger      `json:"-"`

	rank      *big.Int
	ranks     []*big.Int
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the synthesized design. It is nil when every artifact was
	// served from the cache, and in forest mode.
	Tree *tree.Tree
	// Forest is the synthesized forest in forest mode, unless cached.
	Forest *tree.Forest

	Rank   *big.Int
	Height int
	Depths []int
	Blocks int

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int
	CatalogTime   time.Duration
	BuildTime     time.Duration
	RecipeTime    time.Duration
	PartitionTime time.Duration
	EmitTime      time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	DesignHit   bool // design summary came from cache
	ArtifactHit bool // every artifact came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: hdl, dot, svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateWidth(o.Width); err != nil {
		return err
	}
	o.rank = new(big.Int)
	if o.Rank != "" {
		if _, ok := o.rank.SetString(strings.TrimSpace(o.Rank), 10); !ok {
			return errors.New(errors.ErrCodeInvalidInput, "rank %q is not a decimal integer", o.Rank)
		}
	}
	if o.Forest {
		if err := o.validateForest(); err != nil {
			return err
		}
	} else if len(o.Ranks) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "ranks are only accepted in forest mode")
	}
	if o.Recipe != "" && o.rank.Sign() != 0 {
		return errors.New(errors.ErrCodeInvalidInput, "a recipe cannot be combined with rank %s", o.rank)
	}
	if o.Recipe != "" && !slices.Contains(tree.Recipes(), o.Recipe) {
		return errors.New(errors.ErrCodeInvalidRecipe, "unknown recipe %q (must be one of: %s)",
			o.Recipe, strings.Join(tree.Recipes(), ", "))
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Forest {
		for _, f := range o.Formats {
			if !ForestFormats[f] {
				return errors.New(errors.ErrCodeInvalidFormat,
					"format %q is not available for forests (must be one of: hdl, json)", f)
			}
		}
	}
	lang, err := hdl.ParseLanguage(o.Language)
	if err != nil {
		return err
	}
	o.Language = string(lang)
	if o.Module != "" {
		if err := errors.ValidateIdentifier(o.Module); err != nil {
			return err
		}
	}
	if o.CatalogPath != "" {
		if err := errors.ValidatePath(o.CatalogPath); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

func (o *Options) validateForest() error {
	if o.Rank != "" {
		return errors.New(errors.ErrCodeInvalidInput, "forest mode takes one rank per tree, use ranks")
	}
	if len(o.Ranks) > o.Width {
		return errors.New(errors.ErrCodeInvalidInput, "%d ranks given for a forest of width %d", len(o.Ranks), o.Width)
	}
	o.ranks = make([]*big.Int, len(o.Ranks))
	for i, s := range o.Ranks {
		r, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
		if !ok {
			return errors.New(errors.ErrCodeInvalidInput, "rank %q of tree %d is not a decimal integer", s, i+1)
		}
		if o.Recipe != "" && r.Sign() != 0 {
			return errors.New(errors.ErrCodeInvalidInput, "a recipe cannot be combined with rank %s of tree %d", r, i+1)
		}
		o.ranks[i] = r
	}
	return nil
}

// RankValue returns the parsed rank. Valid after ValidateAndSetDefaults.
func (o *Options) RankValue() *big.Int {
	if o.rank == nil {
		return new(big.Int)
	}
	return o.rank
}

// RanksValue returns the parsed per-tree ranks of a forest.
func (o *Options) RanksValue() []*big.Int { return o.ranks }

// DesignKeyOpts returns cache key options for the design itself.
func (o *Options) DesignKeyOpts(catalogHash string) cache.DesignKeyOpts {
	var ranks []string
	for _, r := range o.ranks {
		ranks = append(ranks, r.String())
	}
	return cache.DesignKeyOpts{
		CatalogHash: catalogHash,
		Width:       o.Width,
		Rank:        o.RankValue().String(),
		Recipe:      o.Recipe,
		Partition:   o.Partition,
		Optimize:    o.Optimize,
		Name:        o.Name,
		Forest:      o.Forest,
		Ranks:       strings.Join(ranks, ","),
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format, Detailed: o.Detailed}
	if format == FormatHDL {
		opts.Language = o.Language + ":" + o.Module + fmt.Sprint(o.Boundary)
		if o.Flat {
			opts.Language += ":flat"
		}
	}
	return opts
}
