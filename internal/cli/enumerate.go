package cli

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/prefixtower/pkg/catalan"
	"github.com/matzehuels/prefixtower/pkg/errors"
	"github.com/matzehuels/prefixtower/pkg/pipeline"
)

// enumerateRow is one line of the sweep output.
type enumerateRow struct {
	Rank   string `json:"rank"`
	Height int    `json:"height"`
	Blocks int    `json:"blocks"`
	Cells  int    `json:"cells"`
	Depths []int  `json:"depths"`
}

// enumerateCommand sweeps a window of ranks concurrently.
func (c *CLI) enumerateCommand() *cobra.Command {
	var (
		width     int
		from      string
		count     int64
		workers   int
		partition bool
		optimize  bool
		catPath   string
		asJSON    bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "enumerate",
		Short: "Synthesize a range of ranks and compare their shapes",
		Example: `  prefixtower enumerate -w 6
  prefixtower enumerate -w 12 --from 1000 --count 50 --partition --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			start, ok := new(big.Int).SetString(from, 10)
			if !ok {
				return errors.New(errors.ErrCodeInvalidInput, "--from %q is not a decimal integer", from)
			}
			if err := errors.ValidateWidth(width); err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			spin := newSpinner(ctx, os.Stderr, fmt.Sprintf("Enumerating width %d", width), sweepSize(width, start, count))
			spin.Start()
			results, err := runner.Enumerate(ctx, pipeline.Options{
				Width:       width,
				Partition:   partition,
				Optimize:    optimize,
				CatalogPath: c.catalogPath(catPath),
				Formats:     []string{pipeline.FormatHDL},
				Logger:      loggerFromContext(ctx),
			}, pipeline.EnumerateOptions{
				From:     start,
				Count:    count,
				Workers:  workers,
				Progress: spin.Set,
			})
			if err != nil {
				spin.StopWithError("Enumeration failed")
				return err
			}
			spin.Stop()

			rows := make([]enumerateRow, len(results))
			for i, res := range results {
				rows[i] = enumerateRow{
					Rank:   res.Rank.String(),
					Height: res.Height,
					Blocks: res.Blocks,
					Cells:  res.Stats.NodeCount,
					Depths: res.Depths,
				}
			}
			if asJSON {
				enc := json.NewEncoder(c.out)
				for _, row := range rows {
					if err := enc.Encode(row); err != nil {
						return err
					}
				}
				return nil
			}
			fmt.Fprintln(c.out, renderSweep(rows))
			c.printSuccess("Synthesized %d designs", len(rows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 6, "number of input bits (1-64)")
	cmd.Flags().StringVar(&from, "from", "0", "first rank")
	cmd.Flags().Int64Var(&count, "count", 0, "number of ranks (default: to the end of the space)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent workers (default: GOMAXPROCS)")
	cmd.Flags().BoolVar(&partition, "partition", false, "group the critical path into blocks")
	cmd.Flags().BoolVar(&optimize, "optimize", false, "swap spine cells for their specialized variants")
	cmd.Flags().StringVar(&catPath, "catalog", "", "cell catalog file (TOML or YAML)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per design")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

// renderSweep lays the rows out as a table, highlighting the shallowest trees.
func renderSweep(rows []enumerateRow) string {
	best := -1
	for _, r := range rows {
		if best < 0 || r.Height < best {
			best = r.Height
		}
	}
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{r.Rank, fmt.Sprint(r.Height), fmt.Sprint(r.Blocks), fmt.Sprint(r.Cells), fmt.Sprint(r.Depths)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Rank", "Height", "Blocks", "Cells", "Depths").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= 0 && row < len(rows) && rows[row].Height == best {
				return styleShallowest
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// sweepSize is the number of designs an enumeration will produce, or 0 when
// start is outside the space.
func sweepSize(width int, start *big.Int, count int64) int {
	remaining := new(big.Int).Sub(catalan.Number(width-1), start)
	if remaining.Sign() <= 0 || start.Sign() < 0 {
		return 0
	}
	if count > 0 && remaining.Cmp(big.NewInt(count)) > 0 {
		return int(count)
	}
	if !remaining.IsInt64() || remaining.Int64() > pipeline.MaxEnumerate {
		return 0
	}
	return int(remaining.Int64())
}
