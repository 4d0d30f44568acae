// ABOUTME: Fallback harvest seasons per species icon
// ABOUTME: Based on typical US growing-region harvest windows; supports YAML overrides

package season

import (
	"fmt"
	"io"
	"time"

	"github.com/harper/forage/internal/species"
	"gopkg.in/yaml.v3"
)

// Table maps species icons to their typical harvest range. Icons without an
// entry have unknown seasonality.
type Table map[species.Icon]Range

// DefaultTable returns a copy of the built-in season table.
func DefaultTable() Table {
	t := make(Table, len(defaultSeasons))
	for icon, r := range defaultSeasons {
		t[icon] = r
	}
	return t
}

var defaultSeasons = map[species.Icon]Range{
	// Fruits
	species.Avocado:           {Start: time.March, Stop: time.September, YearRound: true},
	species.Banana:            {Start: time.January, Stop: time.December, YearRound: true},
	species.BitterOrange:      {Start: time.January, Stop: time.March},
	species.Clementine:        {Start: time.November, Stop: time.February},
	species.CommonFig:         {Start: time.June, Stop: time.October},
	species.CommonGuava:       {Start: time.January, Stop: time.December, YearRound: true},
	species.Fig:               {Start: time.June, Stop: time.October},
	species.Grape:             {Start: time.July, Stop: time.October},
	species.Grapefruit:        {Start: time.November, Stop: time.May},
	species.Guava:             {Start: time.January, Stop: time.December, YearRound: true},
	species.Lemon:             {Start: time.January, Stop: time.December, YearRound: true},
	species.Lime:              {Start: time.January, Stop: time.December, YearRound: true},
	species.Loquat:            {Start: time.March, Stop: time.June},
	species.Olive:             {Start: time.September, Stop: time.December},
	species.Orange:            {Start: time.December, Stop: time.April},
	species.Peach:             {Start: time.May, Stop: time.September},
	species.Pomegranate:       {Start: time.September, Stop: time.November},
	species.SweetLime:         {Start: time.November, Stop: time.March},
	species.BluePassionflower: {Start: time.July, Stop: time.September},

	// Nuts
	species.BlackWalnut: {Start: time.September, Stop: time.October},

	// Vegetables and greens
	species.Bamboo:        {Start: time.March, Stop: time.May},
	species.CollardGreens: {Start: time.September, Stop: time.April},
	species.Kale:          {Start: time.September, Stop: time.April},
	species.Squash:        {Start: time.June, Stop: time.October},

	// Herbs
	species.PineappleSage: {Start: time.May, Stop: time.October},
	species.Rose:          {Start: time.May, Stop: time.October},
	species.Rosemary:      {Start: time.January, Stop: time.December, YearRound: true},
	species.Sage:          {Start: time.May, Stop: time.October},
	species.Shiso:         {Start: time.June, Stop: time.September},
	species.Thyme:         {Start: time.May, Stop: time.October},

	// Cactus
	species.StrawberryHedgehog: {Start: time.April, Stop: time.June},
}

// overrideEntry is the YAML shape of one override.
type overrideEntry struct {
	Start     string `yaml:"start"`
	Stop      string `yaml:"stop"`
	YearRound bool   `yaml:"year_round"`
}

// LoadOverrides reads a YAML document of icon name to season and returns the
// parsed entries. Example:
//
//	orange:
//	  start: January
//	  stop: May
//	lemon:
//	  year_round: true
func LoadOverrides(r io.Reader) (Table, error) {
	var raw map[string]overrideEntry
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return Table{}, nil
		}
		return nil, fmt.Errorf("decode season overrides: %w", err)
	}

	out := make(Table, len(raw))
	for name, entry := range raw {
		icon, ok := species.ParseIcon(name)
		if !ok {
			return nil, fmt.Errorf("season override: unknown icon %q", name)
		}
		if entry.YearRound {
			out[icon] = Range{Start: time.January, Stop: time.December, YearRound: true}
			continue
		}
		r, err := ParseRange(entry.Start, entry.Stop)
		if err != nil {
			return nil, fmt.Errorf("season override %q: %w", name, err)
		}
		out[icon] = r
	}
	return out, nil
}

// Merge returns a new table with overrides applied on top of t.
func (t Table) Merge(overrides Table) Table {
	merged := make(Table, len(t)+len(overrides))
	for icon, r := range t {
		merged[icon] = r
	}
	for icon, r := range overrides {
		merged[icon] = r
	}
	return merged
}
