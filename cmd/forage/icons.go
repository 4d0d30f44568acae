// ABOUTME: Icons command
// ABOUTME: Lists the icon catalog and writes its SVG images to a directory

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/harper/forage/internal/icons"
	"github.com/harper/forage/internal/mapengine"
	"github.com/spf13/cobra"
)

var iconsCmd = &cobra.Command{
	Use:     "icons",
	Aliases: []string{"i"},
	Short:   "List or export the map icon catalog",
	Long: `List the images registered with the map: base markers, species
glyphs in their default and in-season variants, and cluster rings.

Examples:
  forage icons
  forage icons --kind cluster
  forage icons --write ./sprites`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := icons.BuildCatalog()
		if err != nil {
			return fmt.Errorf("failed to build icon catalog: %w", err)
		}
		out := cmd.OutOrStdout()

		if dir, _ := cmd.Flags().GetString("write"); dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
			loader := icons.NewLoader(&dirRegistry{dir: dir}, icons.WithLogger(logger))
			if err := loader.Load(catalog); err != nil {
				return err
			}
			_, total := loader.Progress()
			fmt.Fprintf(out, "%s wrote %d/%d icons to %s\n", color.GreenString("✓"), loader.Registered(), total, dir)
			if n := loader.Skipped(); n > 0 {
				fmt.Fprintf(out, "  %d already present, left untouched\n", n)
			}
			if n := loader.Failed(); n > 0 {
				return fmt.Errorf("%d icons failed to write", n)
			}
			return nil
		}

		kind, _ := cmd.Flags().GetString("kind")
		for _, e := range catalog.Entries() {
			if kind != "" && string(e.Kind) != kind {
				continue
			}
			fmt.Fprintf(out, "%-32s %s\n", color.CyanString(e.Key),
				color.New(color.Faint).Sprintf("%s %dx%d @%dx", e.Kind, e.Width, e.Height, e.PixelRatio))
		}
		fmt.Fprintf(out, "%d markers, %d species, %d clusters\n",
			catalog.Count(icons.KindMarker), catalog.Count(icons.KindSpecies), catalog.Count(icons.KindCluster))
		return nil
	},
}

// dirRegistry stores registered images as <key>.svg files.
type dirRegistry struct {
	dir string
}

func (r *dirRegistry) path(key string) string {
	return filepath.Join(r.dir, key+".svg")
}

func (r *dirRegistry) HasImage(key string) bool {
	_, err := os.Stat(r.path(key))
	return err == nil
}

func (r *dirRegistry) AddImage(key string, img mapengine.Image, _ float64) error {
	return os.WriteFile(r.path(key), img.Data, 0600)
}

func init() {
	iconsCmd.Flags().StringP("kind", "k", "", "only list entries of this kind (marker, species, cluster)")
	iconsCmd.Flags().StringP("write", "w", "", "write every icon as <key>.svg into this directory")
	rootCmd.AddCommand(iconsCmd)
}
