// ABOUTME: Core data models for foraging locations and plant types
// ABOUTME: Mirrors the locations API payloads and validates coordinates

package models

import (
	"fmt"
	"math"
	"slices"

	"github.com/paulmach/orb"
)

// ValidateCoordinates checks if latitude and longitude are within valid ranges.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return fmt.Errorf("coordinates cannot be NaN")
	}
	if math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return fmt.Errorf("coordinates cannot be infinite")
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

// LocationRecord is a located plant record as returned by the list endpoint.
// Records are treated as immutable once fetched.
type LocationRecord struct {
	ID          int     `json:"id"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Description *string `json:"description"`
	Access      *string `json:"access"`
	SeasonStart *string `json:"season_start"`
	SeasonStop  *string `json:"season_stop"`
	TypeIDs     []int   `json:"type_ids"`
	Unverified  bool    `json:"unverified"`
}

// Point returns the record position as an orb point in [lng, lat] order.
func (r *LocationRecord) Point() orb.Point {
	return orb.Point{r.Lng, r.Lat}
}

// HasType reports whether the record lists the given type id.
func (r *LocationRecord) HasType(typeID int) bool {
	return slices.Contains(r.TypeIDs, typeID)
}

// LocationDetail is the full record returned by the single-location endpoint.
type LocationDetail struct {
	LocationRecord
	Author     *string     `json:"author"`
	Address    *string     `json:"address"`
	NoSeason   bool        `json:"no_season"`
	ImportLink *string     `json:"import_link,omitempty"`
	CreatedAt  string      `json:"created_at"`
	UpdatedAt  string      `json:"updated_at"`
	Types      []PlantType `json:"types"`
}

// PlantType is a taxonomic type summary.
type PlantType struct {
	ID             int     `json:"id"`
	EnName         string  `json:"en_name"`
	ScientificName *string `json:"scientific_name"`
	CategoryMask   string  `json:"category_mask"`
	ParentID       *int    `json:"parent_id"`
	ParentName     *string `json:"parent_name"`
}

// PlantTypeDetail is the full type record including children.
type PlantTypeDetail struct {
	PlantType
	TaxonomicRank  *string           `json:"taxonomic_rank"`
	WikipediaURL   *string           `json:"wikipedia_url"`
	LocalizedNames map[string]string `json:"localized_names"`
	Children       []PlantType       `json:"children"`
	LocationCount  int               `json:"location_count"`
}

// BoundingBox is a viewport expressed as south-west and north-east corners.
type BoundingBox struct {
	SWLat float64 `json:"sw_lat"`
	SWLng float64 `json:"sw_lng"`
	NELat float64 `json:"ne_lat"`
	NELng float64 `json:"ne_lng"`
}

// BoundingBoxFromBound converts an orb bound (x = lng, y = lat).
func BoundingBoxFromBound(b orb.Bound) BoundingBox {
	return BoundingBox{
		SWLat: b.Min.Lat(),
		SWLng: b.Min.Lon(),
		NELat: b.Max.Lat(),
		NELng: b.Max.Lon(),
	}
}

// Bound returns the box as an orb bound.
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.SWLng, b.SWLat},
		Max: orb.Point{b.NELng, b.NELat},
	}
}

// Validate checks both corners and their ordering.
func (b BoundingBox) Validate() error {
	if err := ValidateCoordinates(b.SWLat, b.SWLng); err != nil {
		return fmt.Errorf("south-west corner: %w", err)
	}
	if err := ValidateCoordinates(b.NELat, b.NELng); err != nil {
		return fmt.Errorf("north-east corner: %w", err)
	}
	if b.SWLat > b.NELat {
		return fmt.Errorf("south-west latitude must not exceed north-east latitude")
	}
	return nil
}

// LocationsResponse is the list endpoint envelope.
type LocationsResponse struct {
	Count     int              `json:"count"`
	Locations []LocationRecord `json:"locations"`
}

// TypesResponse is the types endpoint envelope.
type TypesResponse struct {
	Count int         `json:"count"`
	Types []PlantType `json:"types"`
}

// HealthResponse reports API and database status.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// StatsResponse carries dataset totals.
type StatsResponse struct {
	LocationsTotal    int `json:"locations_total"`
	LocationsVerified int `json:"locations_verified"`
	TypesTotal        int `json:"types_total"`
}

// StringPtr returns a pointer to s. Useful for building records in code.
func StringPtr(s string) *string {
	return &s
}
