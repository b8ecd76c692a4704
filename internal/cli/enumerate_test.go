package cli

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"
)

func TestSweepSize(t *testing.T) {
	tests := []struct {
		width int
		start int64
		count int64
		want  int
	}{
		{5, 0, 0, 14},
		{5, 10, 0, 4},
		{5, 10, 2, 2},
		{5, 10, 100, 4},
		{5, 14, 0, 0},
		{5, -1, 0, 0},
		{40, 0, 0, 0},
		{40, 0, 7, 7},
	}

	for _, tt := range tests {
		if got := sweepSize(tt.width, big.NewInt(tt.start), tt.count); got != tt.want {
			t.Errorf("sweepSize(%d, %d, %d) = %d, want %d", tt.width, tt.start, tt.count, got, tt.want)
		}
	}
}

func TestEnumerateJSON(t *testing.T) {
	out, err := run(t, "enumerate", "-w", "4", "--json", "--no-cache")
	if err != nil {
		t.Fatalf("enumerate error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("enumerate printed %d lines, want 5:\n%s", len(lines), out)
	}
	var row enumerateRow
	if err := json.Unmarshal([]byte(lines[4]), &row); err != nil {
		t.Fatal(err)
	}
	if row.Rank != "4" {
		t.Errorf("last row rank = %q, want %q", row.Rank, "4")
	}
}
