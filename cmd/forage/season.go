// ABOUTME: Season command
// ABOUTME: Shows the season label and in-season state for plant type ids

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/harper/forage/internal/models"
	"github.com/harper/forage/internal/season"
	"github.com/harper/forage/internal/species"
	"github.com/harper/forage/internal/ui"
	"github.com/spf13/cobra"
)

var seasonCmd = &cobra.Command{
	Use:     "season <type-id>...",
	Aliases: []string{"s"},
	Short:   "Show the harvest season for plant types",
	Long: `Show the harvest season label for a set of plant type ids, as a
location with those types would display it.

Examples:
  forage season 3
  forage season 3 52 --month july
  forage season 20 --start June --stop August`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typeIDs, err := parseTypeIDs(args)
		if err != nil {
			return err
		}

		o := oracle
		if name, _ := cmd.Flags().GetString("month"); name != "" {
			month, err := season.ParseMonth(name)
			if err != nil {
				return err
			}
			o = oracleForMonth(month)
		}

		rec := &models.LocationRecord{TypeIDs: typeIDs}
		if start, _ := cmd.Flags().GetString("start"); start != "" {
			rec.SeasonStart = &start
		}
		if stop, _ := cmd.Flags().GetString("stop"); stop != "" {
			rec.SeasonStop = &stop
		}
		if (rec.SeasonStart == nil) != (rec.SeasonStop == nil) {
			return fmt.Errorf("--start and --stop must be given together")
		}
		if rec.SeasonStart != nil {
			if _, err := season.ParseRange(*rec.SeasonStart, *rec.SeasonStop); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		for _, id := range typeIDs {
			name := color.New(color.Faint).Sprint("no icon")
			if icon, ok := species.IconForType(id); ok {
				name = color.CyanString(icon.String())
			}
			fmt.Fprintf(out, "  %s %s\n", color.New(color.Faint).Sprintf("#%d", id), name)
		}
		fmt.Fprintf(out, "%s %s\n",
			o.CurrentMonth(),
			ui.FormatSeason(o.ResolveSeason(rec), o.IsRecordInSeason(rec)))
		return nil
	},
}

func oracleForMonth(month time.Month) *season.Oracle {
	opts := []season.Option{season.WithClock(func() time.Time {
		return time.Date(time.Now().Year(), month, 15, 12, 0, 0, 0, time.UTC)
	})}
	if cfg != nil {
		if table, err := cfg.SeasonTable(); err == nil {
			opts = append(opts, season.WithTable(table))
		}
	}
	return season.NewOracle(opts...)
}

func parseTypeIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid type id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func init() {
	seasonCmd.Flags().String("start", "", "explicit season start month")
	seasonCmd.Flags().String("stop", "", "explicit season stop month")
	seasonCmd.Flags().StringP("month", "m", "", "evaluate as if it were this month")
	rootCmd.AddCommand(seasonCmd)
}
