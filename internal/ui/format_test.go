// ABOUTME: Unit tests for terminal UI formatting
// ABOUTME: Tests human-readable output for locations, types and seasons

package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/harper/forage/internal/models"
	"github.com/harper/forage/internal/season"
)

func januaryOracle() *season.Oracle {
	return season.NewOracle(season.WithClock(func() time.Time {
		return time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	}))
}

func TestFormatLocation(t *testing.T) {
	rec := &models.LocationRecord{
		ID:          17,
		Lat:         33.7701,
		Lng:         -118.1937,
		Description: models.StringPtr("Big orange tree by the library\nsecond line"),
		TypeIDs:     []int{3},
	}

	output := FormatLocation(rec, januaryOracle())
	for _, want := range []string{"#17", "Big orange tree by the library", "33.7701", "-118.1937", "December – April"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got %q", want, output)
		}
	}
	if strings.Contains(output, "second line") {
		t.Errorf("expected only the first description line, got %q", output)
	}
}

func TestFormatLocation_NoDescription(t *testing.T) {
	rec := &models.LocationRecord{ID: 2, Lat: 1, Lng: 2}
	output := FormatLocation(rec, januaryOracle())
	if !strings.Contains(output, "location") {
		t.Errorf("expected placeholder name, got %q", output)
	}
	if !strings.Contains(output, season.UnknownLabel) {
		t.Errorf("expected unknown season label, got %q", output)
	}
}

func TestFormatLocation_Unverified(t *testing.T) {
	rec := &models.LocationRecord{ID: 3, Unverified: true}
	if !strings.Contains(FormatLocation(rec, januaryOracle()), "unverified") {
		t.Error("expected unverified marker")
	}
}

func TestFormatLocation_Nil(t *testing.T) {
	if !strings.Contains(FormatLocation(nil, januaryOracle()), "invalid location") {
		t.Error("expected invalid location message")
	}
}

func TestFormatLocation_LongDescriptionTruncated(t *testing.T) {
	rec := &models.LocationRecord{ID: 4, Description: models.StringPtr(strings.Repeat("fig ", 40))}
	output := FormatLocation(rec, januaryOracle())
	if !strings.Contains(output, "…") {
		t.Errorf("expected truncated description, got %q", output)
	}
}

func TestFormatSeason(t *testing.T) {
	fallback := FormatSeason(season.Resolution{Label: "May – September", IsFallback: true, Known: true}, false)
	if !strings.Contains(fallback, "typical") {
		t.Errorf("expected fallback marker, got %q", fallback)
	}
	explicit := FormatSeason(season.Resolution{Label: "June – July", Known: true}, true)
	if strings.Contains(explicit, "typical") {
		t.Errorf("explicit range should not be marked typical, got %q", explicit)
	}
}

func TestFormatType(t *testing.T) {
	pt := &models.PlantType{
		ID:             3,
		EnName:         "Orange",
		ScientificName: models.StringPtr("Citrus sinensis"),
		CategoryMask:   "forager",
	}
	output := FormatType(pt)
	for _, want := range []string{"#3", "Orange", "Citrus sinensis", "forager"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got %q", want, output)
		}
	}
	if !strings.Contains(FormatType(nil), "invalid type") {
		t.Error("expected invalid type message")
	}
}

func TestFormatLocationDetail(t *testing.T) {
	d := &models.LocationDetail{
		LocationRecord: models.LocationRecord{
			ID:          9,
			Description: models.StringPtr("Lemon hedge"),
			Access:      models.StringPtr("public sidewalk"),
			TypeIDs:     []int{4},
		},
		Author:    models.StringPtr("sam"),
		UpdatedAt: time.Now().Add(-2 * time.Hour).Format(time.RFC3339),
		Types:     []models.PlantType{{ID: 4, EnName: "Lemon"}},
	}

	output := FormatLocationDetail(d, januaryOracle())
	for _, want := range []string{"Lemon hedge", "Lemon", "public sidewalk", "sam", "2 hours ago", "Year-round"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got %q", want, output)
		}
	}
}

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		contains string
	}{
		{"just_now", 30 * time.Second, "just now"},
		{"one_minute", 1 * time.Minute, "1 minute ago"},
		{"five_minutes", 5 * time.Minute, "5 minutes ago"},
		{"one_hour", 1 * time.Hour, "1 hour ago"},
		{"two_hours", 2 * time.Hour, "2 hours ago"},
		{"one_day", 25 * time.Hour, "1 day ago"},
		{"multiple_days", 72 * time.Hour, "3 days ago"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tm := time.Now().Add(-tc.duration)
			result := FormatRelativeTime(tm)
			if !strings.Contains(result, tc.contains) {
				t.Errorf("FormatRelativeTime for %v: expected to contain %q, got %q", tc.duration, tc.contains, result)
			}
		})
	}
}

func TestFormatRelativeTime_FutureTime(t *testing.T) {
	result := FormatRelativeTime(time.Now().Add(time.Hour))
	if !strings.Contains(result, "future") {
		t.Errorf("expected future time message, got %q", result)
	}
}
