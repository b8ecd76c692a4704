package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/prefixtower/pkg/pipeline"
)

// Palette. Numbers are ANSI 256 colors.
var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	// StyleTitle renders headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue renders values next to labels.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
	// StyleNumber renders ranks and counts.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleShallowest  = lipgloss.NewStyle().Foreground(colorGreen)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
)

func (c *CLI) status(icon string, style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(c.out, style.Render(icon)+" "+fmt.Sprintf(format, args...))
}

func (c *CLI) printSuccess(format string, args ...any) {
	c.status(iconSuccess, styleIconSuccess, format, args...)
}

func (c *CLI) printInfo(format string, args ...any) {
	c.status(iconInfo, styleIconInfo, format, args...)
}

// printDetail prints an indented, dimmed line.
func (c *CLI) printDetail(format string, args ...any) {
	fmt.Fprintln(c.out, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile announces a written output file.
func (c *CLI) printFile(path string) {
	fmt.Fprintln(c.out, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func (c *CLI) printKeyValue(key, value string) {
	fmt.Fprintln(c.out, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printResult summarizes a synthesis run on one line, e.g.
// "height 5 · 2 blocks · 31 cells · cached".
func (c *CLI) printResult(res *pipeline.Result) {
	parts := []string{fmt.Sprintf("height %d", res.Height)}
	if res.Blocks > 0 {
		parts = append(parts, fmt.Sprintf("%d blocks", res.Blocks))
	}
	if res.Stats.NodeCount > 0 {
		parts = append(parts, fmt.Sprintf("%d cells", res.Stats.NodeCount))
	}
	origin := styleIconInfo.Render("fresh")
	if res.CacheInfo.ArtifactHit {
		origin = styleIconSuccess.Render("cached")
	}
	sep := StyleDim.Render(" · ")
	fmt.Fprintln(c.out, "  "+StyleDim.Render(strings.Join(parts, " · "))+sep+origin)
}
