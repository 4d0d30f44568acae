// ABOUTME: GeoJSON types and the location feature projector
// ABOUTME: Converts location records into season-aware point features for clustering

package geojson

import (
	"encoding/json"

	"github.com/harper/forage/internal/icons"
	"github.com/harper/forage/internal/models"
	"github.com/harper/forage/internal/season"
	"github.com/harper/forage/internal/species"
	"github.com/harper/forage/internal/style"
)

// FeatureCollection represents a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature represents a GeoJSON Feature.
type Feature struct {
	Type       string                 `json:"type"`
	ID         any                    `json:"id,omitempty"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// Geometry represents a GeoJSON Geometry.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// PointCoordinates represents [longitude, latitude] for a Point.
type PointCoordinates [2]float64

// LocationFeature converts one record. The icon key is the first of the
// record's type ids with a species icon. inSeason uses the record's explicit
// range when both months parse, otherwise the species table.
func LocationFeature(rec *models.LocationRecord, oracle *season.Oracle) Feature {
	inSeason := oracle.IsRecordInSeason(rec)
	numeric := 0
	if inSeason {
		numeric = 1
	}

	typeIDs := rec.TypeIDs
	if typeIDs == nil {
		typeIDs = []int{}
	}
	props := map[string]interface{}{
		style.PropID:              rec.ID,
		style.PropTypeIDs:         typeIDs,
		style.PropUnverified:      rec.Unverified,
		style.PropInSeason:        inSeason,
		style.PropInSeasonNumeric: numeric,
	}
	if icon, ok := species.IconForTypes(rec.TypeIDs); ok {
		props[style.PropIconKey] = icon.String()
	}
	if rec.Description != nil {
		props[style.PropDescription] = *rec.Description
	}
	if rec.Access != nil {
		props[style.PropAccess] = *rec.Access
	}

	return Feature{
		Type: "Feature",
		ID:   rec.ID,
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: PointCoordinates{rec.Lng, rec.Lat},
		},
		Properties: props,
	}
}

// ToLocationFeatureCollection converts records to a FeatureCollection of Points.
func ToLocationFeatureCollection(records []models.LocationRecord, oracle *season.Oracle) *FeatureCollection {
	features := make([]Feature, 0, len(records))
	for i := range records {
		features = append(features, LocationFeature(&records[i], oracle))
	}
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

// IconKey returns the image key the point layer would pick for f.
func IconKey(f Feature) (string, error) {
	return style.EvalString(style.PointIconImage(), f.Properties)
}

// SpeciesIcon returns the species icon recorded on f.
func SpeciesIcon(f Feature) (species.Icon, bool) {
	name, ok := f.Properties[style.PropIconKey].(string)
	if !ok {
		return 0, false
	}
	return species.ParseIcon(name)
}

// InSeasonCount returns how many features are in season.
func (fc *FeatureCollection) InSeasonCount() int {
	n := 0
	for _, f := range fc.Features {
		if v, ok := f.Properties[style.PropInSeason].(bool); ok && v {
			n++
		}
	}
	return n
}

// ClusterKey returns the ring key a single cluster of every feature would use.
func (fc *FeatureCollection) ClusterKey() string {
	return icons.ClusterKeyFor(fc.InSeasonCount(), len(fc.Features))
}

// ToJSON serializes a FeatureCollection to JSON.
func (fc *FeatureCollection) ToJSON() ([]byte, error) {
	return json.Marshal(fc)
}

// ToJSONIndent serializes a FeatureCollection to indented JSON.
func (fc *FeatureCollection) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(fc, "", "  ")
}
