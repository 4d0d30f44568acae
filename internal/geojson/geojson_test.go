// ABOUTME: Unit tests for GeoJSON generation
// ABOUTME: Tests location features, season flags, memoization and output validity

package geojson

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/harper/forage/internal/filter"
	"github.com/harper/forage/internal/models"
	"github.com/harper/forage/internal/season"
	"github.com/harper/forage/internal/style"
	"github.com/paulmach/orb"
	orbgeojson "github.com/paulmach/orb/geojson"
)

var january = func() time.Time { return time.Date(2025, time.January, 20, 8, 0, 0, 0, time.UTC) }

func testOracle() *season.Oracle {
	return season.NewOracle(season.WithClock(january))
}

func testRecords() []models.LocationRecord {
	return []models.LocationRecord{
		{ID: 1, Lat: 33.77, Lng: -118.19, TypeIDs: []int{3}, Description: models.StringPtr("corner lot")},          // orange, in season
		{ID: 2, Lat: 33.78, Lng: -118.18, TypeIDs: []int{52}},                                                      // peach, out of season
		{ID: 3, Lat: 33.79, Lng: -118.17, TypeIDs: []int{99999}},                                                   // no icon, unknown season
		{ID: 4, Lat: 33.80, Lng: -118.16, TypeIDs: []int{52}, SeasonStart: models.StringPtr("December"), SeasonStop: models.StringPtr("February")},
		{ID: 5, Lat: 33.81, Lng: -118.15, TypeIDs: []int{3}, Unverified: true, SeasonStart: models.StringPtr("June"), SeasonStop: models.StringPtr("July")},
	}
}

func TestToLocationFeatureCollection(t *testing.T) {
	fc := ToLocationFeatureCollection(testRecords(), testOracle())

	if fc.Type != "FeatureCollection" {
		t.Errorf("expected FeatureCollection type, got %s", fc.Type)
	}
	if len(fc.Features) != 5 {
		t.Fatalf("expected 5 features, got %d", len(fc.Features))
	}

	feature := fc.Features[0]
	if feature.Geometry.Type != "Point" {
		t.Errorf("expected Point geometry, got %s", feature.Geometry.Type)
	}
	coords, ok := feature.Geometry.Coordinates.(PointCoordinates)
	if !ok {
		t.Fatal("expected PointCoordinates")
	}
	// GeoJSON uses [lng, lat] order
	if coords[0] != -118.19 || coords[1] != 33.77 {
		t.Errorf("expected [-118.19, 33.77], got %v", coords)
	}
	if feature.ID != 1 {
		t.Errorf("expected feature id 1, got %v", feature.ID)
	}
	if feature.Properties[style.PropIconKey] != "orange" {
		t.Errorf("expected icon orange, got %v", feature.Properties[style.PropIconKey])
	}
	if feature.Properties[style.PropDescription] != "corner lot" {
		t.Errorf("expected description, got %v", feature.Properties[style.PropDescription])
	}

	wantInSeason := []bool{true, false, true, true, false}
	for i, f := range fc.Features {
		got := f.Properties[style.PropInSeason].(bool)
		numeric := f.Properties[style.PropInSeasonNumeric].(int)
		if got != wantInSeason[i] {
			t.Errorf("feature %d: inSeason = %v, want %v", i+1, got, wantInSeason[i])
		}
		if (numeric == 1) != got {
			t.Errorf("feature %d: numeric flag %d disagrees with %v", i+1, numeric, got)
		}
	}

	if _, ok := fc.Features[2].Properties[style.PropIconKey]; ok {
		t.Error("expected no icon key for a type without a species icon")
	}
}

func TestIconKey(t *testing.T) {
	fc := ToLocationFeatureCollection(testRecords(), testOracle())
	want := []string{"fruit-inseason-orange", "fruit-peach", "marker-default-inseason", "fruit-inseason-peach", "marker-unverified"}
	for i, f := range fc.Features {
		got, err := IconKey(f)
		if err != nil {
			t.Fatalf("feature %d: %v", i+1, err)
		}
		if got != want[i] {
			t.Errorf("feature %d: icon key %q, want %q", i+1, got, want[i])
		}
	}
}

func TestInSeasonCountAndClusterKey(t *testing.T) {
	fc := ToLocationFeatureCollection(testRecords(), testOracle())
	if n := fc.InSeasonCount(); n != 3 {
		t.Errorf("expected 3 in season, got %d", n)
	}
	if k := fc.ClusterKey(); k != "cluster-40-60" {
		t.Errorf("expected cluster-40-60, got %s", k)
	}
}

func TestProjector_Memoizes(t *testing.T) {
	oracle := testOracle()
	p := NewProjector(oracle, filter.NewEngine(oracle, nil))
	recs := testRecords()

	a := p.Project(recs, filter.State{})
	b := p.Project(recs, filter.State{})
	if a != b {
		t.Error("expected identical collection for unchanged inputs")
	}

	c := p.Project(recs, filter.State{InSeasonOnly: true})
	if c == a {
		t.Error("expected a new collection after the filter changed")
	}
	if len(c.Features) != 3 {
		t.Errorf("expected 3 in-season features, got %d", len(c.Features))
	}

	refetched := testRecords()
	d := p.Project(refetched, filter.State{InSeasonOnly: true})
	if d == c {
		t.Error("expected a new collection for a new record slice")
	}
}

func TestProjector_MonthChangeInvalidates(t *testing.T) {
	now := january()
	oracle := season.NewOracle(season.WithClock(func() time.Time { return now }))
	p := NewProjector(oracle, filter.NewEngine(oracle, nil))
	recs := testRecords()

	jan := p.Project(recs, filter.State{})
	now = now.AddDate(0, 5, 0)
	jun := p.Project(recs, filter.State{})
	if jan == jun {
		t.Fatal("expected a new collection after the month changed")
	}
	if jun.Features[1].Properties[style.PropInSeason] != true {
		t.Error("expected peach in season in June")
	}
}

func TestFeatureCollection_ValidGeoJSON(t *testing.T) {
	fc := ToLocationFeatureCollection(testRecords(), testOracle())
	data, err := fc.ToJSON()
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	parsed, err := orbgeojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("output is not valid GeoJSON: %v", err)
	}
	if len(parsed.Features) != 5 {
		t.Fatalf("expected 5 parsed features, got %d", len(parsed.Features))
	}
	pt, ok := parsed.Features[0].Geometry.(orb.Point)
	if !ok {
		t.Fatalf("expected orb.Point, got %T", parsed.Features[0].Geometry)
	}
	if pt.Lon() != -118.19 || pt.Lat() != 33.77 {
		t.Errorf("unexpected point %v", pt)
	}
	if parsed.Features[0].Properties.MustInt(style.PropInSeasonNumeric, -1) != 1 {
		t.Error("expected numeric in-season flag to survive round trip")
	}
	if parsed.Features[0].Properties.MustString(style.PropIconKey, "") != "orange" {
		t.Error("expected icon key to survive round trip")
	}
}

func TestFeatureCollection_ToJSON(t *testing.T) {
	fc := &FeatureCollection{
		Type:     "FeatureCollection",
		Features: []Feature{},
	}

	jsonBytes, err := fc.ToJSON()
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &parsed); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if parsed["type"] != "FeatureCollection" {
		t.Error("expected type FeatureCollection in JSON")
	}
}
