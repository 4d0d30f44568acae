// ABOUTME: Types command
// ABOUTME: Lists plant types with their season, or shows one type in detail

package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/harper/forage/internal/api"
	"github.com/harper/forage/internal/models"
	"github.com/harper/forage/internal/ui"
	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:     "types [id]",
	Aliases: []string{"t"},
	Short:   "List plant types",
	Long: `List plant types known to the API, with the season the map uses for them.

Examples:
  forage types
  forage types --category honeybee
  forage types --search fig
  forage types 20`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid type id %q", args[0])
			}
			detail, err := client.GetType(commandContext(cmd), id)
			if err != nil {
				return fmt.Errorf("failed to fetch type %d: %w", id, err)
			}
			fmt.Fprintln(out, typeLine(&detail.PlantType))
			if detail.WikipediaURL != nil {
				fmt.Fprintf(out, "  %s\n", color.New(color.Faint).Sprint(*detail.WikipediaURL))
			}
			fmt.Fprintf(out, "  %d locations\n", detail.LocationCount)
			for i := range detail.Children {
				fmt.Fprintf(out, "  %s\n", ui.FormatType(&detail.Children[i]))
			}
			return nil
		}

		category, _ := cmd.Flags().GetString("category")
		if category != "" {
			if err := validateCategories([]string{category}); err != nil {
				return err
			}
		}
		search, _ := cmd.Flags().GetString("search")

		resp, err := client.GetTypes(commandContext(cmd), api.TypeQuery{Category: category, Search: search})
		if err != nil {
			return fmt.Errorf("failed to fetch types: %w", err)
		}
		if len(resp.Types) == 0 {
			fmt.Fprintln(out, "No types found.")
			return nil
		}
		for i := range resp.Types {
			fmt.Fprintln(out, typeLine(&resp.Types[i]))
		}
		return nil
	},
}

func typeLine(t *models.PlantType) string {
	ids := []int{t.ID}
	res := oracle.ResolveSeason(&models.LocationRecord{TypeIDs: ids})
	if !res.Known {
		return ui.FormatType(t)
	}
	return ui.FormatType(t) + "  " + ui.FormatSeason(res, oracle.AreTypeIDsInSeason(ids))
}

func init() {
	typesCmd.Flags().StringP("category", "c", "", "only types in this category")
	typesCmd.Flags().StringP("search", "s", "", "search type names")
	rootCmd.AddCommand(typesCmd)
}
