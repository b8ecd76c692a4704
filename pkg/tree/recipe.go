package tree

import (
	"fmt"
	"math/bits"
	"slices"

	"github.com/matzehuels/prefixtower/pkg/dag"
	"github.com/matzehuels/prefixtower/pkg/errors"
)

// Named recipes for classic adder structures.
const (
	Ripple      = "ripple"
	Serial      = "serial"
	RippleCarry = "ripple-carry"
	Sklansky    = "sklansky"
	KoggeStone  = "kogge-stone"
	BrentKung   = "brent-kung"
)

type recipe func(t *Tree) error

var recipes = map[string]recipe{
	Ripple:      func(*Tree) error { return nil },
	Serial:      func(*Tree) error { return nil },
	RippleCarry: func(*Tree) error { return nil },
	Sklansky:    sklansky,
	KoggeStone:  koggeStone,
	BrentKung:   brentKung,
}

// Recipes returns the recipe names in sorted order.
func Recipes() []string {
	out := make([]string, 0, len(recipes))
	for name := range recipes {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// ApplyRecipe reshapes the whole tree with a named recipe. Recipes assume
// the rank-0 (ripple) shape as their starting point. Widths of two or less
// have a single shape and are left alone.
//
// Recipes reshape from the root itself, so the root's two children are
// packed against each other as well. The classic prefix-graph drawings
// instead keep the most significant leaf alone under the root and reshape
// only the root's right child. The trees built here reach ceil(log2(width))
// levels below the root where those layouts need 1+ceil(log2(width-1)), so
// shapes and ranks differ from the classic layouts for widths such as 8.
func (t *Tree) ApplyRecipe(name string) error {
	fn, ok := recipes[name]
	if !ok {
		return errors.New(errors.ErrCodeInvalidRecipe, "unknown recipe %q", name)
	}
	if t.width <= 2 {
		return nil
	}
	if err := fn(t); err != nil {
		return fmt.Errorf("recipe %s: %w", name, err)
	}
	t.logger.Debug("recipe applied", "recipe", name, "height", t.TreeHeight(), "rank", t.TreeRank())
	return nil
}

// sklansky packs leaves to the right, giving minimal depth with high fanout.
func sklansky(t *Tree) error {
	return t.RBalance(t.root)
}

// koggeStone packs leaves to the left and pads every branch to the minimal
// depth of ceil(log2(width)).
func koggeStone(t *Tree) error {
	if err := t.LBalance(t.root); err != nil {
		return err
	}
	return t.EqualizeDepths(t.root, bits.Len(uint(t.width-1)))
}

// brentKung starts from the Sklansky shape and rotates the node beside the
// root's right branch until it is complete, trading depth for fanout.
func brentKung(t *Tree) error {
	if err := t.RBalance(t.root); err != nil {
		return err
	}
	for guard := 0; guard < t.reduceBudget(); guard++ {
		right := t.Child(t.root, 1)
		if right == dag.None || t.IsLeaf(right) {
			return nil
		}
		pivot := t.Child(right, 0)
		if pivot == dag.None || t.IsProper(pivot) {
			return nil
		}
		if _, err := t.RightRotate(pivot); err != nil {
			return err
		}
	}
	return nil
}
