// ABOUTME: Declarative layer and source definitions for the locations map
// ABOUTME: Cluster ring, count text, species point and fallback circle layers

package style

import (
	"github.com/harper/forage/internal/icons"
)

// Source and layer ids.
const (
	SourceID = "locations"

	LayerClusters      = "clusters"
	LayerClusterCount  = "cluster-count"
	LayerPoint         = "unclustered-point"
	LayerPointFallback = "unclustered-point-fallback"
)

// Clustering parameters.
const (
	ClusterMaxZoom = 14
	ClusterRadius  = 50
)

// Feature property names written by the projector and read by the layers.
const (
	PropID              = "id"
	PropTypeIDs         = "type_ids"
	PropUnverified      = "unverified"
	PropIconKey         = "iconKey"
	PropInSeason        = "inSeason"
	PropInSeasonNumeric = "inSeasonNumeric"
	PropDescription     = "description"
	PropAccess          = "access"

	PropPointCount  = "point_count"
	PropCluster     = "cluster"
	PropClusterID   = "cluster_id"
	PropInSeasonSum = "inSeasonSum"
)

// Fallback circle colours.
const (
	colorUnverified = "#f97316"
	colorVerified   = "#22c55e"
	colorStroke     = "#171717"
)

// Source is a clustered GeoJSON source definition.
type Source struct {
	Type              string          `json:"type"`
	Data              any             `json:"data,omitempty"`
	Cluster           bool            `json:"cluster"`
	ClusterMaxZoom    int             `json:"clusterMaxZoom"`
	ClusterRadius     int             `json:"clusterRadius"`
	ClusterProperties map[string]Expr `json:"clusterProperties"`
}

// Layer is one style layer.
type Layer struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Source string         `json:"source"`
	Filter Expr           `json:"filter,omitempty"`
	Layout map[string]any `json:"layout,omitempty"`
	Paint  map[string]any `json:"paint,omitempty"`
}

func get(prop string) []any {
	return []any{"get", prop}
}

func has(prop string) []any {
	return []any{"has", prop}
}

// IsCluster matches cluster features.
func IsCluster() Expr {
	return has(PropPointCount)
}

// IsPoint matches individual location features.
func IsPoint() Expr {
	return []any{"!", has(PropPointCount)}
}

// ClusterProperties aggregates the in-season count of a cluster's members.
func ClusterProperties() map[string]Expr {
	return map[string]Expr{
		PropInSeasonSum: []any{"+", get(PropInSeasonNumeric)},
	}
}

// ClusterIconImage selects a ring by point count and rounds the in-season
// share to the nearest 5%.
func ClusterIconImage() Expr {
	sizes := icons.ClusterSizes
	return []any{
		"concat",
		icons.ClusterKeyPrefix,
		[]any{"step", get(PropPointCount),
			itoa(sizes[0]), icons.ClusterMediumMin,
			itoa(sizes[1]), icons.ClusterLargeMin,
			itoa(sizes[2])},
		"-",
		[]any{"*", icons.ClusterPercentStep,
			[]any{"round", []any{"/",
				[]any{"*", 100, []any{"/", get(PropInSeasonSum), get(PropPointCount)}},
				icons.ClusterPercentStep}}},
	}
}

// ClusterCountText renders "inSeason/total".
func ClusterCountText() Expr {
	return []any{
		"concat",
		[]any{"to-string", get(PropInSeasonSum)},
		"/",
		[]any{"to-string", get(PropPointCount)},
	}
}

// PointIconImage picks the marker image for a single location.
func PointIconImage() Expr {
	inSeason := []any{"==", get(PropInSeason), true}
	return []any{
		"case",
		[]any{"==", get(PropUnverified), true}, icons.MarkerUnverified,
		[]any{"all", has(PropIconKey), inSeason}, []any{"concat", icons.SpeciesInSeasonKeyPrefix, get(PropIconKey)},
		has(PropIconKey), []any{"concat", icons.SpeciesKeyPrefix, get(PropIconKey)},
		inSeason, icons.MarkerDefaultInSeason,
		icons.MarkerDefault,
	}
}

// FallbackCircleColor colours fallback circles by verification.
func FallbackCircleColor() Expr {
	return []any{"case", get(PropUnverified), colorUnverified, colorVerified}
}

// LocationsSource returns the clustered source definition for data.
func LocationsSource(data any) Source {
	return Source{
		Type:              "geojson",
		Data:              data,
		Cluster:           true,
		ClusterMaxZoom:    ClusterMaxZoom,
		ClusterRadius:     ClusterRadius,
		ClusterProperties: ClusterProperties(),
	}
}

// Layers returns the layers to render. Until icons are ready the symbol
// point layer is replaced by plain circles, so no layer references an
// unregistered image.
func Layers(iconsReady bool) []Layer {
	layers := []Layer{
		{
			ID:     LayerClusters,
			Type:   "symbol",
			Source: SourceID,
			Filter: IsCluster(),
			Layout: map[string]any{
				"icon-image":         ClusterIconImage(),
				"icon-size":          1,
				"icon-allow-overlap": true,
			},
		},
		{
			ID:     LayerClusterCount,
			Type:   "symbol",
			Source: SourceID,
			Filter: IsCluster(),
			Layout: map[string]any{
				"text-field":         ClusterCountText(),
				"text-font":          []string{"DIN Pro Bold", "Arial Unicode MS Bold"},
				"text-size":          12,
				"text-anchor":        "center",
				"text-allow-overlap": true,
			},
			Paint: map[string]any{"text-color": "#ffffff"},
		},
	}
	if iconsReady {
		return append(layers, Layer{
			ID:     LayerPoint,
			Type:   "symbol",
			Source: SourceID,
			Filter: IsPoint(),
			Layout: map[string]any{
				"icon-image":         PointIconImage(),
				"icon-size":          1.25,
				"icon-allow-overlap": true,
				"icon-anchor":        "center",
			},
		})
	}
	return append(layers, Layer{
		ID:     LayerPointFallback,
		Type:   "circle",
		Source: SourceID,
		Filter: IsPoint(),
		Paint: map[string]any{
			"circle-color":        FallbackCircleColor(),
			"circle-radius":       8,
			"circle-stroke-width": 2,
			"circle-stroke-color": colorStroke,
		},
	})
}

// InteractiveLayers lists the layers that respond to clicks.
func InteractiveLayers(iconsReady bool) []string {
	if iconsReady {
		return []string{LayerClusters, LayerPoint}
	}
	return []string{LayerClusters, LayerPointFallback}
}

// OwnLayers lists every layer this package defines.
func OwnLayers() []string {
	return []string{LayerClusters, LayerClusterCount, LayerPoint, LayerPointFallback}
}
