package catalan

import (
	"math/big"
	"sync"
	"testing"
)

func TestNumber(t *testing.T) {
	want := []int64{1, 1, 2, 5, 14, 42, 132, 429, 1430}
	for n, w := range want {
		if got := Number(n); got.Int64() != w {
			t.Errorf("Number(%d) = %v, want %d", n, got, w)
		}
	}
	if got := Number(-1); got.Sign() != 0 {
		t.Errorf("Number(-1) = %v, want 0", got)
	}
}

func TestNumberLarge(t *testing.T) {
	// C(63) does not fit in 64 bits.
	got := Number(63)
	if got.BitLen() <= 64 {
		t.Errorf("Number(63).BitLen() = %d, want > 64", got.BitLen())
	}
	if got.Cmp(Number(62)) <= 0 {
		t.Error("Number(63) should exceed Number(62)")
	}
}

func TestMirrorPoint(t *testing.T) {
	tests := []struct {
		n    int
		want int64
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 3},  // (5+1)/2
		{4, 7},  // 14/2
		{5, 23}, // (42+4)/2
		{6, 66},
	}
	for _, tt := range tests {
		if got := MirrorPoint(tt.n); got.Int64() != tt.want {
			t.Errorf("MirrorPoint(%d) = %v, want %d", tt.n, got, tt.want)
		}
	}
}

func TestBounds(t *testing.T) {
	lo, hi := Bounds(5)
	if lo.Int64() != 19 || hi.Int64() != 23 {
		t.Errorf("Bounds(5) = [%v, %v), want [19, 23)", lo, hi)
	}
	lo, hi = Bounds(4)
	if lo.Cmp(hi) != 0 {
		t.Errorf("Bounds(4) = [%v, %v), want empty", lo, hi)
	}
}

func TestClassOffset(t *testing.T) {
	// width 5 classes: C0*C4=14, C1*C3=5, C2*C2=4
	want := []int64{0, 14, 19, 23}
	for i, w := range want {
		if got := ClassOffset(5, i); got.Int64() != w {
			t.Errorf("ClassOffset(5, %d) = %v, want %d", i, got, w)
		}
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		n, r         int
		light, heavy int
		residual     int64
	}{
		{3, 0, 0, 2, 0},
		{3, 1, 0, 2, 1},
		{3, 2, 1, 1, 0},
		{5, 13, 0, 4, 13},
		{5, 14, 1, 3, 0},
		{5, 22, 2, 2, 3},
	}
	for _, tt := range tests {
		light, heavy, res := Split(tt.n, big.NewInt(int64(tt.r)))
		if light != tt.light || heavy != tt.heavy || res.Int64() != tt.residual {
			t.Errorf("Split(%d, %d) = (%d, %d, %v), want (%d, %d, %d)",
				tt.n, tt.r, light, heavy, res, tt.light, tt.heavy, tt.residual)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid(3, big.NewInt(4)) {
		t.Error("Valid(3, 4) = false, want true")
	}
	if Valid(3, big.NewInt(5)) {
		t.Error("Valid(3, 5) = true, want false")
	}
	if Valid(3, big.NewInt(-1)) {
		t.Error("Valid(3, -1) = true, want false")
	}
}

func TestConcurrentNumber(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Number(40 + n)
			ClassOffset(40+n, n)
		}(i)
	}
	wg.Wait()
	if Number(4).Int64() != 14 {
		t.Error("memo corrupted by concurrent access")
	}
}
