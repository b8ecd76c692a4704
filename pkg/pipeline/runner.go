package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/prefixtower/pkg/cache"
	"github.com/matzehuels/prefixtower/pkg/catalog"
	"github.com/matzehuels/prefixtower/pkg/observability"
	"github.com/matzehuels/prefixtower/pkg/tree"
)

// Stage names reported to the observability hooks.
const (
	StageCatalog   = "catalog"
	StageBuild     = "build"
	StageRecipe    = "recipe"
	StagePartition = "partition"
	StageEmit      = "emit"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner with different options; every run
// builds its own tree.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// summary is the cached description of a design, stored next to its
// artifacts so that a fully cached run needs no tree.
type summary struct {
	Rank   string `json:"rank"`
	Height int    `json:"height"`
	Depths []int  `json:"depths"`
	Blocks int    `json:"blocks"`
	Nodes  int    `json:"nodes"`
}

// Execute runs the complete pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	cat, catalogHash, catalogTime, err := r.loadCatalog(ctx, opts)
	if err != nil {
		return nil, err
	}
	designKey := r.Keyer.DesignKey(opts.DesignKeyOpts(catalogHash))
	designHash := cache.Hash([]byte(designKey))

	if !opts.Refresh {
		if res, ok := r.fromCache(ctx, designKey, designHash, opts); ok {
			res.Stats.CatalogTime = catalogTime
			opts.Logger.Info("served from cache", "width", opts.Width, "rank", res.Rank, "formats", opts.Formats)
			return res, nil
		}
	}

	result := &Result{Artifacts: make(map[string][]byte)}
	result.Stats.CatalogTime = catalogTime

	var render func() (map[string][]byte, error)
	if opts.Forest {
		f, err := r.buildForest(ctx, cat, opts, &result.Stats)
		if err != nil {
			return nil, err
		}
		top := f.Tree(f.Width())
		result.Forest = f
		result.Rank = top.TreeRank()
		result.Height = f.Height()
		result.Depths = top.Depths()
		result.Blocks = f.BlockCount()
		result.Stats.NodeCount = f.NodeCount()
		render = func() (map[string][]byte, error) { return RenderForest(f, cat, opts) }
	} else {
		t, err := r.build(ctx, cat, opts, &result.Stats)
		if err != nil {
			return nil, err
		}
		result.Tree = t
		result.Rank = t.TreeRank()
		result.Height = t.TreeHeight()
		result.Depths = t.Depths()
		result.Blocks = len(t.Blocks())
		result.Stats.NodeCount = t.NodeCount()
		render = func() (map[string][]byte, error) { return Render(t, cat, opts) }
	}
	observability.Pipeline().OnDesign(ctx, opts.Width, result.Height, result.Blocks)

	opts.Logger.Info("synthesized design",
		"width", opts.Width,
		"forest", opts.Forest,
		"rank", result.Rank,
		"height", result.Height,
		"blocks", result.Blocks,
		"nodes", result.Stats.NodeCount)

	result.Stats.EmitTime, err = r.stage(ctx, StageEmit, func() error {
		artifacts, err := render()
		result.Artifacts = artifacts
		return err
	})
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("rendered outputs", "formats", opts.Formats, "duration", result.Stats.EmitTime)

	if !opts.Refresh {
		r.store(ctx, designKey, designHash, opts, result)
	}
	return result, nil
}

// Build runs the catalog, build, recipe and partition stages and returns
// the tree without rendering it. Build never consults the cache.
func (r *Runner) Build(ctx context.Context, opts Options) (*tree.Tree, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	cat, _, _, err := r.loadCatalog(ctx, opts)
	if err != nil {
		return nil, err
	}
	var stats Stats
	return r.build(ctx, cat, opts, &stats)
}

func (r *Runner) build(ctx context.Context, cat *catalog.Catalog, opts Options, stats *Stats) (*tree.Tree, error) {
	var t *tree.Tree
	var err error

	stats.BuildTime, err = r.stage(ctx, StageBuild, func() error {
		t, err = tree.New(cat, tree.Config{
			Width:  opts.Width,
			Rank:   opts.RankValue(),
			Name:   opts.Name,
			Logger: opts.Logger,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if opts.Recipe != "" || opts.Optimize {
		stats.RecipeTime, err = r.stage(ctx, StageRecipe, func() error {
			if opts.Recipe != "" {
				if err := t.ApplyRecipe(opts.Recipe); err != nil {
					return err
				}
			}
			if opts.Optimize {
				return t.OptimizeNodes()
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if opts.Partition {
		stats.PartitionTime, err = r.stage(ctx, StagePartition, func() error {
			ids, err := t.AddBestBlocks()
			opts.Logger.Debug("partitioned critical path", "blocks", len(ids))
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// buildForest runs the build, recipe and partition stages over a forest of
// one tree per output bit.
func (r *Runner) buildForest(ctx context.Context, cat *catalog.Catalog, opts Options, stats *Stats) (*tree.Forest, error) {
	var f *tree.Forest
	var err error

	stats.BuildTime, err = r.stage(ctx, StageBuild, func() error {
		f, err = tree.NewForest(cat, tree.ForestConfig{
			Width:  opts.Width,
			Ranks:  opts.RanksValue(),
			Name:   opts.Name,
			Logger: opts.Logger,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if opts.Recipe != "" || opts.Optimize {
		stats.RecipeTime, err = r.stage(ctx, StageRecipe, func() error {
			if opts.Recipe != "" {
				if err := f.ApplyRecipe(opts.Recipe); err != nil {
					return err
				}
			}
			if opts.Optimize {
				return f.OptimizeNodes()
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if opts.Partition {
		stats.PartitionTime, err = r.stage(ctx, StagePartition, func() error {
			ids, err := f.AddBestBlocks()
			opts.Logger.Debug("partitioned critical paths", "trees", f.Width(), "blocks", len(ids))
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

// loadCatalog resolves the catalog and the hash that keys its designs.
func (r *Runner) loadCatalog(ctx context.Context, opts Options) (*catalog.Catalog, string, time.Duration, error) {
	var cat *catalog.Catalog
	var hash string
	d, err := r.stage(ctx, StageCatalog, func() error {
		switch {
		case opts.Catalog != nil:
			cat = opts.Catalog
			hash = cache.Hash([]byte(cat.String()))
		case opts.CatalogPath != "":
			data, err := os.ReadFile(opts.CatalogPath)
			if err != nil {
				return fmt.Errorf("read catalog: %w", err)
			}
			format, err := catalog.FormatFromPath(opts.CatalogPath)
			if err != nil {
				return err
			}
			if cat, err = catalog.Parse(data, format); err != nil {
				return err
			}
			hash = cache.Hash(data)
		default:
			cat = catalog.Default()
			hash = cache.Hash(catalog.DefaultSource())
		}
		return nil
	})
	return cat, hash, d, err
}

// stage runs fn as a named pipeline stage, reporting it to the hooks.
func (r *Runner) stage(ctx context.Context, name string, fn func() error) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name)
	start := time.Now()
	err := fn()
	d := time.Since(start)
	hooks.OnStageComplete(ctx, name, d, err)
	if err != nil {
		return d, fmt.Errorf("%s: %w", name, err)
	}
	r.Logger.Debug("stage complete", "stage", name, "duration", d)
	return d, nil
}

// fromCache assembles a result from the cached summary and artifacts. It
// reports false unless every requested format is cached.
func (r *Runner) fromCache(ctx context.Context, designKey, designHash string, opts Options) (*Result, bool) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, designKey)
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, "design")
		return nil, false
	}
	var s summary
	if err := json.Unmarshal(data, &s); err != nil {
		hooks.OnCacheMiss(ctx, "design")
		return nil, false
	}
	hooks.OnCacheHit(ctx, "design")

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(designHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			hooks.OnCacheMiss(ctx, "artifact")
			return nil, false
		}
		hooks.OnCacheHit(ctx, "artifact")
		artifacts[format] = data
	}

	res := &Result{
		Height:    s.Height,
		Depths:    s.Depths,
		Blocks:    s.Blocks,
		Artifacts: artifacts,
		CacheInfo: CacheInfo{DesignHit: true, ArtifactHit: true},
	}
	res.Stats.NodeCount = s.Nodes
	res.Rank, _ = parseRank(s.Rank)
	return res, true
}

// store writes the summary and every artifact. Cache failures are logged
// and otherwise ignored.
func (r *Runner) store(ctx context.Context, designKey, designHash string, opts Options, res *Result) {
	hooks := observability.Cache()
	s := summary{
		Rank:   res.Rank.String(),
		Height: res.Height,
		Depths: res.Depths,
		Blocks: res.Blocks,
		Nodes:  res.Stats.NodeCount,
	}
	if data, err := json.Marshal(s); err == nil {
		if err := r.Cache.Set(ctx, designKey, data, cache.TTLDesign); err != nil {
			r.Logger.Warn("cache write failed", "key", designKey, "error", err)
		} else {
			hooks.OnCacheSet(ctx, "design", len(data))
		}
	}
	for format, data := range res.Artifacts {
		key := r.Keyer.ArtifactKey(designHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
			continue
		}
		hooks.OnCacheSet(ctx, "artifact", len(data))
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
