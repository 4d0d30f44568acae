// ABOUTME: Style command
// ABOUTME: Prints the clustered locations source and layer definitions as JSON

package main

import (
	"encoding/json"
	"fmt"

	"github.com/harper/forage/internal/style"
	"github.com/spf13/cobra"
)

var styleCmd = &cobra.Command{
	Use:   "style",
	Short: "Print the map source and layer definitions",
	Long: `Print the clustered GeoJSON source and the layers drawn over it.

With --fallback the point layer is the plain circle layer used while icons
are still loading.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fallback, _ := cmd.Flags().GetBool("fallback")
		doc := struct {
			Source      style.Source  `json:"source"`
			Layers      []style.Layer `json:"layers"`
			Interactive []string      `json:"interactive_layers"`
		}{
			Source:      style.LocationsSource(nil),
			Layers:      style.Layers(!fallback),
			Interactive: style.InteractiveLayers(!fallback),
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode style: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	styleCmd.Flags().Bool("fallback", false, "show the layers used before icons are ready")
	rootCmd.AddCommand(styleCmd)
}
