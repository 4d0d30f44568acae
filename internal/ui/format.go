// ABOUTME: Terminal UI formatting utilities
// ABOUTME: Provides human-readable output for locations, types and seasons

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harper/forage/internal/models"
	"github.com/harper/forage/internal/season"
)

var faint = color.New(color.Faint)

// FormatSeason formats a season label, marking fallback labels and
// whether the season is active now.
func FormatSeason(res season.Resolution, inSeason bool) string {
	label := res.Label
	if res.IsFallback {
		label += " " + faint.Sprint("(typical)")
	}
	if inSeason {
		return color.GreenString("● ") + label
	}
	return faint.Sprint("○ ") + label
}

// FormatLocation formats a location record as one line.
func FormatLocation(rec *models.LocationRecord, oracle *season.Oracle) string {
	if rec == nil {
		return faint.Sprint("(invalid location)")
	}
	name := "location"
	if rec.Description != nil && *rec.Description != "" {
		name = truncate(firstLine(*rec.Description), 48)
	}
	coords := fmt.Sprintf("(%.4f, %.4f)", rec.Lat, rec.Lng)
	line := fmt.Sprintf("%s %s %s  %s",
		faint.Sprintf("#%d", rec.ID),
		color.CyanString(name),
		faint.Sprint(coords),
		FormatSeason(oracle.ResolveSeason(rec), oracle.IsRecordInSeason(rec)))
	if rec.Unverified {
		line += " " + color.YellowString("unverified")
	}
	return line
}

// FormatLocationDetail formats a location with its types and metadata.
func FormatLocationDetail(d *models.LocationDetail, oracle *season.Oracle) string {
	if d == nil {
		return faint.Sprint("(invalid location)")
	}
	var b strings.Builder
	b.WriteString(FormatLocation(&d.LocationRecord, oracle))
	b.WriteString("\n")
	for _, t := range d.Types {
		fmt.Fprintf(&b, "  %s\n", FormatType(&t))
	}
	if d.Access != nil && *d.Access != "" {
		fmt.Fprintf(&b, "  access: %s\n", *d.Access)
	}
	if d.Address != nil && *d.Address != "" {
		fmt.Fprintf(&b, "  address: %s\n", *d.Address)
	}
	if d.Author != nil && *d.Author != "" {
		fmt.Fprintf(&b, "  added by %s\n", *d.Author)
	}
	if ts, err := time.Parse(time.RFC3339, d.UpdatedAt); err == nil {
		fmt.Fprintf(&b, "  updated %s\n", faint.Sprint(FormatRelativeTime(ts)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatType formats a plant type summary.
func FormatType(t *models.PlantType) string {
	if t == nil {
		return faint.Sprint("(invalid type)")
	}
	out := fmt.Sprintf("%s %s", faint.Sprintf("#%d", t.ID), color.GreenString(t.EnName))
	if t.ScientificName != nil && *t.ScientificName != "" {
		out += " " + color.New(color.Italic).Sprint(*t.ScientificName)
	}
	if t.CategoryMask != "" {
		out += " " + faint.Sprintf("[%s]", t.CategoryMask)
	}
	return out
}

// FormatRelativeTime formats a time as relative to now.
func FormatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	// Handle future times (clock skew, bad data)
	if diff < 0 {
		return color.YellowString("in the future")
	}

	if diff < time.Minute {
		return "just now"
	}
	if diff < time.Hour {
		return plural(int(diff.Minutes()), "minute")
	}
	if diff < 24*time.Hour {
		return plural(int(diff.Hours()), "hour")
	}
	return plural(int(diff.Hours()/24), "day")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
