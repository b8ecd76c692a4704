package cli

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/prefixtower/pkg/catalan"
	"github.com/matzehuels/prefixtower/pkg/catalog"
	"github.com/matzehuels/prefixtower/pkg/errors"
	"github.com/matzehuels/prefixtower/pkg/pipeline"
	"github.com/matzehuels/prefixtower/pkg/tree"
)

// rankCommand prints the rank of the shape a recipe produces.
func (c *CLI) rankCommand() *cobra.Command {
	var (
		width   int
		recipe  string
		catPath string
		count   bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Print the rank of a recipe's shape",
		Example: `  prefixtower rank -w 16 --recipe sklansky
  prefixtower rank -w 64 --count`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateWidth(width); err != nil {
				return err
			}
			if count {
				fmt.Fprintln(c.out, catalan.Number(width-1))
				return nil
			}
			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()
			rank, err := runner.RecipeRank(cmd.Context(), pipeline.Options{
				Width:       width,
				Recipe:      recipe,
				CatalogPath: c.catalogPath(catPath),
				Logger:      loggerFromContext(cmd.Context()),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, rank)
			return nil
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 8, "number of input bits (1-64)")
	cmd.Flags().StringVar(&recipe, "recipe", "", "named recipe: "+strings.Join(tree.Recipes(), ", "))
	cmd.Flags().StringVar(&catPath, "catalog", "", "cell catalog file (TOML or YAML)")
	cmd.Flags().BoolVar(&count, "count", false, "print the number of shapes instead")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the rank cache")

	return cmd
}

// unrankCommand draws the shape of a rank.
func (c *CLI) unrankCommand() *cobra.Command {
	var (
		width   int
		catPath string
	)

	cmd := &cobra.Command{
		Use:     "unrank RANK",
		Short:   "Draw the tree shape of a rank",
		Example: `  prefixtower unrank -w 8 100`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rank, ok := new(big.Int).SetString(args[0], 10)
			if !ok {
				return errors.New(errors.ErrCodeInvalidInput, "rank %q is not a decimal integer", args[0])
			}
			cat, err := c.loadCatalog(catPath)
			if err != nil {
				return err
			}
			t, err := tree.New(cat, tree.Config{Width: width, Rank: rank, Logger: loggerFromContext(cmd.Context())})
			if err != nil {
				return err
			}
			fmt.Fprint(c.out, drawShape(t))
			fmt.Fprintln(c.out)
			c.printKeyValue("rank", t.TreeRank().String())
			c.printKeyValue("height", fmt.Sprint(t.TreeHeight()))
			c.printKeyValue("depths", fmt.Sprint(t.Depths()))
			fmt.Fprintln(c.out, StyleDim.Render(shapeLegend()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 8, "number of input bits (1-64)")
	cmd.Flags().StringVar(&catPath, "catalog", "", "cell catalog file (TOML or YAML)")

	return cmd
}

// loadCatalog loads the flag or configured catalog, or the built-in one.
func (c *CLI) loadCatalog(flag string) (*catalog.Catalog, error) {
	if path := c.catalogPath(flag); path != "" {
		return catalog.Load(path)
	}
	return catalog.Default(), nil
}
