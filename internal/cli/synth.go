package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/prefixtower/pkg/archive"
	"github.com/matzehuels/prefixtower/pkg/catalog"
	"github.com/matzehuels/prefixtower/pkg/hdl"
	"github.com/matzehuels/prefixtower/pkg/pipeline"
	"github.com/matzehuels/prefixtower/pkg/tree"
)

// synthOpts holds the command-line flags for the synth command.
type synthOpts struct {
	width     int
	rank      string
	forest    bool
	ranks     string
	flat      bool
	recipe    string
	optimize  bool
	partition bool
	language  string
	formats   string
	module    string
	catalog   string
	output    string // output file, or base path for multiple formats
	detailed  bool
	noCache   bool
	refresh   bool
	save      bool
}

// synthCommand creates the synth command.
func (c *CLI) synthCommand() *cobra.Command {
	var opts synthOpts

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize a prefix tree and emit HDL or diagrams",
		Long: `Synthesize a prefix tree of the given width.

The shape is chosen either by rank (an index into every binary tree shape of
that width) or by a named recipe. Formats: hdl, dot, svg, png, pdf, json.

With --forest the whole adder is built: one tree per sum bit, tree k taking
the inputs of bits 0..k-1. --ranks then picks the shape of every tree and
only hdl and json can be emitted.`,
		Example: `  prefixtower synth -w 16 --recipe sklansky
  prefixtower synth -w 8 --rank 100 --partition -f hdl,svg -o adder8
  prefixtower synth -w 32 --recipe kogge-stone --lang vhdl -o ks32.vhd
  prefixtower synth -w 4 --forest --ranks 0,0,1,3 --flat`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSynth(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.width, "width", "w", 8, "number of input bits (1-64)")
	cmd.Flags().StringVarP(&opts.rank, "rank", "r", "", "shape rank (decimal, arbitrary precision)")
	cmd.Flags().BoolVar(&opts.forest, "forest", false, "build one tree per sum bit into a complete adder")
	cmd.Flags().StringVar(&opts.ranks, "ranks", "", "forest tree ranks, smallest tree first (comma-separated)")
	cmd.Flags().StringVar(&opts.recipe, "recipe", "", "named recipe: "+strings.Join(tree.Recipes(), ", "))
	cmd.Flags().BoolVar(&opts.optimize, "optimize", false, "swap spine cells for their specialized variants")
	cmd.Flags().BoolVar(&opts.partition, "partition", false, "group the critical path into blocks")
	cmd.Flags().StringVarP(&opts.language, "lang", "l", "verilog", "HDL language: verilog, vhdl")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "hdl", "output formats (comma-separated)")
	cmd.Flags().BoolVar(&opts.flat, "flat", false, "inline cell logic instead of instantiating cells")
	cmd.Flags().StringVar(&opts.module, "module", "", "top-level module name (default: catalog name)")
	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "cell catalog file (TOML or YAML)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout for a single text format)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "annotate diagrams with modules, positions and nets")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().BoolVar(&opts.save, "save", false, "record the design in the archive")
	_ = cmd.RegisterFlagCompletionFunc("recipe", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return tree.Recipes(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runSynth(ctx context.Context, opts synthOpts) error {
	logger := loggerFromContext(ctx)
	popts := pipeline.Options{
		Width:       opts.width,
		Rank:        opts.rank,
		Forest:      opts.forest,
		Ranks:       splitList(opts.ranks),
		Recipe:      opts.recipe,
		Optimize:    opts.optimize,
		Partition:   opts.partition,
		Formats:     parseFormats(opts.formats),
		Language:    opts.language,
		Module:      opts.module,
		Flat:        opts.flat,
		CatalogPath: c.catalogPath(opts.catalog),
		Detailed:    opts.detailed,
		Refresh:     opts.refresh,
		Logger:      logger,
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if opts.output == "" && (len(popts.Formats) > 1 || isBinary(popts.Formats[0])) {
		return fmt.Errorf("--output is required for %s", strings.Join(popts.Formats, ","))
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	res, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Synthesized width %d, rank %s", popts.Width, res.Rank))

	if opts.output == "" {
		_, err := c.out.Write(res.Artifacts[popts.Formats[0]])
		return err
	}

	c.printSuccess("Synthesized %s", StyleValue.Render(fmt.Sprintf("width %d · rank %s", popts.Width, res.Rank)))
	c.printResult(res)
	lang := catalog.Language(popts.Language)
	multi := len(popts.Formats) > 1
	for _, format := range popts.Formats {
		path := outputPath(opts.output, format, lang, multi)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, res.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		c.printFile(path)
	}

	if opts.save {
		store, err := c.newArchive(ctx, "file")
		if err != nil {
			return err
		}
		defer store.Close()
		rec := archive.NewRecord(popts, res)
		if err := store.Save(ctx, rec); err != nil {
			return fmt.Errorf("archive design: %w", err)
		}
		c.printDetail("Archived as %s", rec.ID)
	}
	return nil
}

// catalogPath prefers the flag over the config file.
func (c *CLI) catalogPath(flag string) string {
	if flag != "" {
		return flag
	}
	return c.Config.Catalog
}

func isBinary(format string) bool {
	return format == pipeline.FormatPNG || format == pipeline.FormatPDF
}

// outputPath derives the file for one format. A single format keeps an
// explicit extension; several formats share the base name.
func outputPath(base, format string, lang catalog.Language, multi bool) string {
	ext := filepath.Ext(base)
	if !multi && ext != "" {
		return base
	}
	return strings.TrimSuffix(base, ext) + formatExt(format, lang)
}

func formatExt(format string, lang catalog.Language) string {
	if format == pipeline.FormatHDL {
		return hdl.Extension(lang)
	}
	return "." + format
}

func languageOf(s string) catalog.Language {
	if s == "" {
		return catalog.Verilog
	}
	return catalog.Language(s)
}
