package cli

import (
	"fmt"
	"math/big"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/prefixtower/pkg/catalan"
	"github.com/matzehuels/prefixtower/pkg/catalog"
	"github.com/matzehuels/prefixtower/pkg/errors"
	"github.com/matzehuels/prefixtower/pkg/tree"
)

var (
	exploreHelpStyle  = lipgloss.NewStyle().Foreground(colorDim)
	exploreErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
	exploreShapeStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// =============================================================================
// ExploreModel - Interactive rank browser
// =============================================================================

// ExploreModel is the bubbletea model that steps through the shapes of one
// width. Every move rebuilds the tree from scratch.
type ExploreModel struct {
	cat     *catalog.Catalog
	width   int
	rank    *big.Int
	total   *big.Int
	recipes []string
	recipe  int // index into recipes, -1 when browsing by rank

	tree *tree.Tree
	err  error
}

// NewExploreModel starts at rank.
func NewExploreModel(cat *catalog.Catalog, width int, rank *big.Int) ExploreModel {
	m := ExploreModel{
		cat:     cat,
		width:   width,
		rank:    new(big.Int).Set(rank),
		total:   catalan.Number(width - 1),
		recipes: tree.Recipes(),
		recipe:  -1,
	}
	m.rebuild()
	return m
}

func (m *ExploreModel) rebuild() {
	cfg := tree.Config{Width: m.width, Rank: m.rank}
	if m.recipe >= 0 {
		cfg = tree.Config{Width: m.width, Recipe: m.recipes[m.recipe]}
	}
	m.tree, m.err = tree.New(m.cat, cfg)
	if m.err == nil && m.recipe >= 0 {
		m.rank = m.tree.TreeRank()
	}
}

// step moves the rank by delta, wrapping around the shape space.
func (m *ExploreModel) step(delta *big.Int) {
	m.recipe = -1
	m.rank.Add(m.rank, delta)
	m.rank.Mod(m.rank, m.total)
	m.rebuild()
}

// jump is the stride of the up and down keys.
func (m ExploreModel) jump() *big.Int {
	j := new(big.Int).Div(m.total, big.NewInt(64))
	if j.Sign() == 0 {
		j.SetInt64(1)
	}
	return j
}

// Rank returns the rank on screen.
func (m ExploreModel) Rank() *big.Int { return new(big.Int).Set(m.rank) }

// Recipe returns the recipe on screen, if any.
func (m ExploreModel) Recipe() string {
	if m.recipe < 0 {
		return ""
	}
	return m.recipes[m.recipe]
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	// Values share big.Int pointers with the previous model; copy first.
	m.rank = new(big.Int).Set(m.rank)
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "right", "l":
		m.step(big.NewInt(1))
	case "left", "h":
		m.step(big.NewInt(-1))
	case "up", "k":
		m.step(m.jump())
	case "down", "j":
		m.step(new(big.Int).Neg(m.jump()))
	case "home", "g":
		m.rank.SetInt64(0)
		m.step(new(big.Int))
	case "end", "G":
		m.rank.Sub(m.total, big.NewInt(1))
		m.step(new(big.Int))
	case "r":
		m.recipe = (m.recipe + 1) % len(m.recipes)
		m.rebuild()
	}
	return m, nil
}

func (m ExploreModel) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Width %d · rank %s of %s", m.width, m.rank, m.total)
	if r := m.Recipe(); r != "" {
		title += " · " + r
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(exploreErrorStyle.Render(errors.UserMessage(m.err)))
		b.WriteString("\n")
	} else {
		b.WriteString(exploreShapeStyle.Render(strings.TrimRight(drawShape(m.tree), "\n")))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("height %s  depths %s\n",
			StyleNumber.Render(fmt.Sprint(m.tree.TreeHeight())),
			StyleDim.Render(fmt.Sprint(m.tree.Depths()))))
		b.WriteString(StyleDim.Render(shapeLegend()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(exploreHelpStyle.Render("←/→ rank ±1  ↑/↓ jump  g/G first/last  r recipe  q quit"))
	return b.String()
}

// exploreCommand opens the interactive browser.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		width   int
		rank    string
		catPath string
	)

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse tree shapes interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateWidth(width); err != nil {
				return err
			}
			start, ok := new(big.Int).SetString(rank, 10)
			if !ok || !catalan.Valid(width-1, start) {
				return errors.RankOutOfRange("rank %q is outside [0, %s) for width %d", rank, catalan.Number(width-1), width)
			}
			cat, err := c.loadCatalog(catPath)
			if err != nil {
				return err
			}
			final, err := tea.NewProgram(NewExploreModel(cat, width, start), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(ExploreModel); ok {
				c.printInfo("Last shape: width %d, rank %s", width, StyleNumber.Render(m.Rank().String()))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 8, "number of input bits (1-64)")
	cmd.Flags().StringVarP(&rank, "rank", "r", "0", "starting rank")
	cmd.Flags().StringVar(&catPath, "catalog", "", "cell catalog file (TOML or YAML)")

	return cmd
}
