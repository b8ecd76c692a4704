package cli

import (
	"math/big"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/prefixtower/pkg/catalog"
)

func press(m ExploreModel, keys ...string) ExploreModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(ExploreModel)
	}
	return m
}

func TestExploreModelNavigation(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want int64
	}{
		{"right", []string{"right"}, 1},
		{"vim right twice", []string{"l", "l"}, 2},
		{"left wraps", []string{"left"}, 13},
		{"last", []string{"G"}, 13},
		{"first", []string{"l", "l", "g"}, 0},
		{"right wraps", []string{"G", "right"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(NewExploreModel(catalog.Default(), 5, big.NewInt(0)), tt.keys...)
			if m.Rank().Cmp(big.NewInt(tt.want)) != 0 {
				t.Errorf("Rank() = %s, want %d", m.Rank(), tt.want)
			}
			if m.err != nil {
				t.Errorf("unexpected error: %v", m.err)
			}
		})
	}
}

func TestExploreModelRecipe(t *testing.T) {
	m := press(NewExploreModel(catalog.Default(), 8, big.NewInt(0)), "r")
	if m.Recipe() == "" {
		t.Fatal("Recipe() is empty after pressing r")
	}
	if !strings.Contains(m.View(), m.Recipe()) {
		t.Errorf("View() does not name recipe %q", m.Recipe())
	}

	m = press(m, "right")
	if m.Recipe() != "" {
		t.Errorf("Recipe() = %q after stepping, want none", m.Recipe())
	}
}

func TestExploreModelPreviousUnchanged(t *testing.T) {
	first := NewExploreModel(catalog.Default(), 5, big.NewInt(3))
	press(first, "right")
	if first.Rank().Int64() != 3 {
		t.Errorf("previous model rank = %s, want 3", first.Rank())
	}
}

func TestExploreModelQuit(t *testing.T) {
	m := NewExploreModel(catalog.Default(), 4, big.NewInt(0))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Error("q should return a quit command")
	}
}
