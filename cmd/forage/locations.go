// ABOUTME: Locations command
// ABOUTME: Queries locations in a bounding box, filters them and prints text or GeoJSON

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/harper/forage/internal/api"
	"github.com/harper/forage/internal/filter"
	"github.com/harper/forage/internal/geojson"
	"github.com/harper/forage/internal/models"
	"github.com/harper/forage/internal/ui"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
)

// defaultSpan is the half-width in degrees of the box around the initial view.
const defaultSpan = 0.05

var locationsCmd = &cobra.Command{
	Use:     "locations",
	Aliases: []string{"ls"},
	Short:   "List locations in a bounding box",
	Long: `List foraging locations inside a bounding box.

Without --bbox the box is centered on the configured initial view.

Examples:
  forage locations --bbox 33.70,-118.30,33.85,-118.10
  forage locations --types 3,4 --in-season
  forage locations --category forager --search sidewalk
  forage locations --format geojson --output locations.geojson`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format != "text" && format != "geojson" {
			return fmt.Errorf("unsupported format: %s (use 'text' or 'geojson')", format)
		}

		bounds, err := bboxFlag(cmd)
		if err != nil {
			return err
		}
		typeIDs, _ := cmd.Flags().GetIntSlice("types")
		limit, _ := cmd.Flags().GetInt("limit")
		if limit == 0 {
			limit = cfg.Limit
		}
		verified, _ := cmd.Flags().GetBool("verified")

		resp, err := client.GetLocations(commandContext(cmd), api.LocationQuery{
			Bounds:       bounds,
			Types:        typeIDs,
			Limit:        limit,
			VerifiedOnly: verified,
		})
		if err != nil {
			return fmt.Errorf("failed to fetch locations: %w", err)
		}

		state := filter.State{}
		state.InSeasonOnly, _ = cmd.Flags().GetBool("in-season")
		state.Categories, _ = cmd.Flags().GetStringSlice("category")
		state.Search, _ = cmd.Flags().GetString("search")
		if err := validateCategories(state.Categories); err != nil {
			return err
		}

		var types []models.PlantType
		if len(state.Categories) > 0 || state.Search != "" {
			tr, err := client.GetTypes(commandContext(cmd), api.TypeQuery{})
			if err != nil {
				logger.Warn("type list unavailable, filtering without names", "error", err)
			} else {
				types = tr.Types
			}
		}
		engine := filter.NewEngine(oracle, types)

		if format == "geojson" {
			fc := geojson.NewProjector(oracle, engine).Project(resp.Locations, state)
			data, err := fc.ToJSONIndent()
			if err != nil {
				return fmt.Errorf("failed to encode GeoJSON: %w", err)
			}
			if path, _ := cmd.Flags().GetString("output"); path != "" {
				if err := os.WriteFile(path, data, 0600); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d features to %s\n", len(fc.Features), path)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		kept := engine.Apply(resp.Locations, state)
		out := cmd.OutOrStdout()
		if len(kept) == 0 {
			fmt.Fprintln(out, "No locations found.")
			return nil
		}
		for i := range kept {
			fmt.Fprintln(out, ui.FormatLocation(&kept[i], oracle))
		}
		if len(kept) != len(resp.Locations) {
			fmt.Fprintf(out, "%d of %d locations match\n", len(kept), len(resp.Locations))
		}
		return nil
	},
}

// bboxFlag reads --bbox as "sw_lat,sw_lng,ne_lat,ne_lng", defaulting to a
// box around the configured initial view.
func bboxFlag(cmd *cobra.Command) (models.BoundingBox, error) {
	raw, _ := cmd.Flags().GetString("bbox")
	if raw == "" {
		center := orb.Point{cfg.InitialView.Lng, cfg.InitialView.Lat}
		return models.BoundingBoxFromBound(center.Bound().Pad(defaultSpan)), nil
	}
	return parseBBox(raw)
}

func parseBBox(raw string) (models.BoundingBox, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return models.BoundingBox{}, fmt.Errorf("bbox must be sw_lat,sw_lng,ne_lat,ne_lng, got %q", raw)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return models.BoundingBox{}, fmt.Errorf("invalid bbox value %q", p)
		}
		v[i] = f
	}
	b := models.BoundingBox{SWLat: v[0], SWLng: v[1], NELat: v[2], NELng: v[3]}
	if err := b.Validate(); err != nil {
		return models.BoundingBox{}, err
	}
	return b, nil
}

func validateCategories(cats []string) error {
	known := filter.Categories()
	for _, c := range cats {
		found := false
		for _, k := range known {
			if c == k {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown category %q (use one of %s)", c, strings.Join(known, ", "))
		}
	}
	return nil
}

func init() {
	locationsCmd.Flags().String("bbox", "", "bounding box as sw_lat,sw_lng,ne_lat,ne_lng")
	locationsCmd.Flags().IntSlice("types", nil, "only locations with these type ids")
	locationsCmd.Flags().Int("limit", 0, "maximum locations to fetch (default from config)")
	locationsCmd.Flags().Bool("verified", false, "only verified locations")
	locationsCmd.Flags().Bool("in-season", false, "only locations in season now")
	locationsCmd.Flags().StringSlice("category", nil, "only locations in these categories")
	locationsCmd.Flags().String("search", "", "free-text search over description, access and type names")
	locationsCmd.Flags().StringP("format", "f", "text", "output format (text, geojson)")
	locationsCmd.Flags().StringP("output", "o", "", "write GeoJSON to this file")
	rootCmd.AddCommand(locationsCmd)
}
