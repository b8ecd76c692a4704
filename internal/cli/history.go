package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

// historyCommand lists and inspects archived designs.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List designs recorded with synth --save",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List archived designs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newArchive(cmd.Context(), "file")
			if err != nil {
				return err
			}
			defer store.Close()
			recs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				c.printInfo("No archived designs")
				return nil
			}
			for _, rec := range recs {
				shape := "rank " + rec.Rank
				if rec.Recipe != "" {
					shape = rec.Recipe
				}
				c.printInfo("%s  %s", StyleDim.Render(rec.ID), StyleValue.Render(fmt.Sprintf("width %d · %s", rec.Width, shape)))
				c.printDetail("%s · height %d · %d blocks", rec.CreatedAt.Local().Format("2006-01-02 15:04"), rec.Height, rec.Blocks)
			}
			return nil
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of designs")

	var output string
	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show an archived design and optionally extract its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newArchive(cmd.Context(), "file")
			if err != nil {
				return err
			}
			defer store.Close()
			rec, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("design %s: %w", args[0], err)
			}
			c.printKeyValue("id", rec.ID)
			c.printKeyValue("created", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			c.printKeyValue("width", fmt.Sprint(rec.Width))
			c.printKeyValue("rank", rec.Rank)
			if rec.Recipe != "" {
				c.printKeyValue("recipe", rec.Recipe)
			}
			c.printKeyValue("height", fmt.Sprint(rec.Height))
			c.printKeyValue("depths", fmt.Sprint(rec.Depths))
			c.printKeyValue("blocks", fmt.Sprint(rec.Blocks))

			formats := make([]string, 0, len(rec.Artifacts))
			for f := range rec.Artifacts {
				formats = append(formats, f)
			}
			sort.Strings(formats)
			c.printKeyValue("artifacts", fmt.Sprint(formats))
			if output == "" {
				return nil
			}
			lang := languageOf(rec.Language)
			for _, format := range formats {
				path := outputPath(output, format, lang, len(formats) > 1)
				if err := os.WriteFile(path, rec.Artifacts[format], 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				c.printFile(path)
			}
			return nil
		},
	}
	show.Flags().StringVarP(&output, "output", "o", "", "write the artifacts next to this base path")

	cmd.AddCommand(list, show)
	return cmd
}
