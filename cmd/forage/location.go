// ABOUTME: Location command
// ABOUTME: Shows one location with its types, season and metadata

package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/harper/forage/internal/api"
	"github.com/harper/forage/internal/ui"
	"github.com/spf13/cobra"
)

var locationCmd = &cobra.Command{
	Use:     "location <id>",
	Aliases: []string{"l"},
	Short:   "Show a single location",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid location id %q", args[0])
		}

		detail, err := client.GetLocation(commandContext(cmd), id)
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("location %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("failed to fetch location: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatLocationDetail(detail, oracle))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(locationCmd)
}
