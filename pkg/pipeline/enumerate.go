package pipeline

import (
	"context"
	"fmt"
	"math/big"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/prefixtower/pkg/cache"
	"github.com/matzehuels/prefixtower/pkg/catalan"
	"github.com/matzehuels/prefixtower/pkg/errors"
	"github.com/matzehuels/prefixtower/pkg/tree"
)

// EnumerateOptions selects the ranks a sweep synthesizes.
type EnumerateOptions struct {
	// From and Count select ranks [From, From+Count). Count 0 means every
	// rank from From to the end of the space.
	From  *big.Int
	Count int64
	// Workers bounds concurrency; 0 uses GOMAXPROCS.
	Workers int
	// Progress, if set, is called with the number of finished designs
	// after each one completes. It may be called from several goroutines.
	Progress func(done int)
}

// MaxEnumerate bounds the number of designs a single sweep may produce.
const MaxEnumerate = 1 << 16

// Enumerate synthesizes every selected rank with base as the template.
// Results are returned in rank order. Each worker builds its own tree, so
// the runs share nothing but the runner's cache.
func (r *Runner) Enumerate(ctx context.Context, base Options, eo EnumerateOptions) ([]*Result, error) {
	if base.Forest {
		return nil, errors.New(errors.ErrCodeInvalidInput, "enumeration sweeps the ranks of a single tree, not a forest")
	}
	if base.Recipe != "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "enumeration sweeps ranks and cannot apply a recipe")
	}
	if err := errors.ValidateWidth(base.Width); err != nil {
		return nil, err
	}
	ranks, err := sweep(base.Width, eo)
	if err != nil {
		return nil, err
	}

	workers := eo.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	r.Logger.Info("enumerating", "width", base.Width, "designs", len(ranks), "workers", workers)

	results := make([]*Result, len(ranks))
	var done atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rank := range ranks {
		opts := base
		opts.Rank = rank.String()
		g.Go(func() error {
			res, err := r.Execute(ctx, opts)
			if err != nil {
				return fmt.Errorf("rank %s: %w", rank, err)
			}
			results[i] = res
			if n := done.Add(1); eo.Progress != nil {
				eo.Progress(int(n))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func sweep(width int, eo EnumerateOptions) ([]*big.Int, error) {
	total := catalan.Number(width - 1)
	from := new(big.Int)
	if eo.From != nil {
		from.Set(eo.From)
	}
	if !catalan.Valid(width-1, from) {
		return nil, errors.RankOutOfRange("rank %s is outside [0, %s) for width %d", from, total, width)
	}
	remaining := new(big.Int).Sub(total, from)
	count := big.NewInt(eo.Count)
	if eo.Count <= 0 || count.Cmp(remaining) > 0 {
		count = remaining
	}
	if count.Cmp(big.NewInt(MaxEnumerate)) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"sweep of %s designs exceeds the limit of %d", count, MaxEnumerate)
	}
	n := count.Int64()
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = new(big.Int).Add(from, big.NewInt(int64(i)))
	}
	return out, nil
}

// RecipeRank returns the rank of the shape a recipe produces at width,
// caching the answer per catalog.
func (r *Runner) RecipeRank(ctx context.Context, opts Options) (*big.Int, error) {
	if opts.Recipe == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "recipe is required")
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	cat, catalogHash, _, err := r.loadCatalog(ctx, opts)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.RankKey(catalogHash, opts.Recipe, opts.Width)
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if rank, ok := parseRank(string(data)); ok {
			return rank, nil
		}
	}

	t, err := tree.New(cat, tree.Config{Width: opts.Width, Recipe: opts.Recipe, Logger: opts.Logger})
	if err != nil {
		return nil, err
	}
	rank := t.TreeRank()
	_ = r.Cache.Set(ctx, key, []byte(rank.String()), cache.TTLRank)
	return rank, nil
}

func parseRank(s string) (*big.Int, bool) {
	return new(big.Int).SetString(s, 10)
}
