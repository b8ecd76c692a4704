// Package catalan computes Catalan numbers and the rank partition used to
// enumerate binary tree shapes.
//
// Shapes with n internal nodes are numbered 0..Number(n)-1. A shape whose
// root splits into subtrees of i and n-1-i internal nodes belongs to split
// class i; classes are ordered by the size of the lighter subtree. Ranks at
// or above [MirrorPoint] denote mirror images of lower ranks, so only the
// lighter-left half of the space is enumerated directly.
//
// Values are arbitrary precision because Number(63) overflows 64 bits.
// Results are memoized and safe for concurrent use. Callers must not modify
// the returned values.
package catalan

import (
	"math/big"
	"sync"
)

var (
	mu      sync.Mutex
	numbers = []*big.Int{big.NewInt(1)}
	offsets = map[[2]int]*big.Int{}
)

// Number returns C(n) = C(n-1)*(4n-2)/(n+1), with C(0) = 1.
func Number(n int) *big.Int {
	if n < 0 {
		return new(big.Int)
	}
	mu.Lock()
	defer mu.Unlock()
	return number(n)
}

func number(n int) *big.Int {
	for k := len(numbers); k <= n; k++ {
		c := new(big.Int).Mul(numbers[k-1], big.NewInt(int64(4*k-2)))
		c.Quo(c, big.NewInt(int64(k+1)))
		numbers = append(numbers, c)
	}
	return numbers[n]
}

// MirrorPoint returns the first rank of width n that is enumerated as the
// mirror image of a lower rank.
//
// For even n the split classes pair up exactly and the point is C(n)/2. For
// odd n the balanced class (n/2, n/2) is its own mirror and is enumerated
// directly, so the point is (C(n) + C(n/2)^2) / 2, which is always integral.
func MirrorPoint(n int) *big.Int {
	c := Number(n)
	if n%2 == 0 {
		return new(big.Int).Rsh(c, 1)
	}
	m := Number(n / 2)
	p := new(big.Int).Mul(m, m)
	p.Add(p, c)
	return p.Rsh(p, 1)
}

// Bounds returns the half-open range [lo, hi) of the balanced split class of
// odd widths, the ranks that are not enumerated through mirroring. Only its
// endpoints lo and hi-1 are mirror images of each other; ranks strictly
// between them cannot be mirrored by re-ranking. The range is empty for
// even n.
func Bounds(n int) (lo, hi *big.Int) {
	hi = MirrorPoint(n)
	lo = new(big.Int).Sub(Number(n), hi)
	if lo.Cmp(hi) > 0 {
		lo.Set(hi)
	}
	return lo, hi
}

// ClassOffset returns the number of shapes of width n in split classes
// smaller than i: the sum over j < i of C(j)*C(n-1-j).
func ClassOffset(n, i int) *big.Int {
	mu.Lock()
	defer mu.Unlock()
	key := [2]int{n, i}
	if off, ok := offsets[key]; ok {
		return off
	}
	off := new(big.Int)
	term := new(big.Int)
	for j := 0; j < i; j++ {
		term.Mul(number(j), number(n-1-j))
		off.Add(off, term)
	}
	offsets[key] = off
	return off
}

// Split locates rank r of width n, which must be below MirrorPoint(n), in its
// split class. It returns the lighter subtree width i, the heavier width
// n-1-i and the residual rank within the class.
func Split(n int, r *big.Int) (light, heavy int, residual *big.Int) {
	residual = new(big.Int).Set(r)
	term := new(big.Int)
	for i := 0; i < (n+1)/2; i++ {
		term.Mul(Number(i), Number(n-1-i))
		if residual.Cmp(term) < 0 {
			return i, n - 1 - i, residual
		}
		residual.Sub(residual, term)
	}
	// Only reachable for out-of-range ranks; clamp into the last class.
	light = (n - 1) / 2
	residual.Add(residual, term)
	return light, n - 1 - light, residual
}

// Valid reports whether r is a rank of width n.
func Valid(n int, r *big.Int) bool {
	return r.Sign() >= 0 && r.Cmp(Number(n)) < 0
}
