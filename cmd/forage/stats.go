// ABOUTME: Stats command
// ABOUTME: Shows API health and location/type totals

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show API health and totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		out := cmd.OutOrStdout()

		health, err := client.Health(ctx)
		if err != nil {
			return fmt.Errorf("API at %s is unreachable: %w", client.BaseURL(), err)
		}
		status := color.GreenString(health.Status)
		if health.Status != "ok" {
			status = color.YellowString(health.Status)
		}
		fmt.Fprintf(out, "%s %s (database %s)\n", client.BaseURL(), status, health.Database)

		stats, err := client.Stats(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch stats: %w", err)
		}
		fmt.Fprintf(out, "locations: %s (%d verified)\n", color.CyanString("%d", stats.LocationsTotal), stats.LocationsVerified)
		fmt.Fprintf(out, "types:     %s\n", color.CyanString("%d", stats.TypesTotal))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
