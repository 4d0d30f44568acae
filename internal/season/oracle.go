// ABOUTME: Season oracle resolving "in season now" for location records
// ABOUTME: Explicit record ranges win; otherwise falls back to the species table

package season

import (
	"time"

	"github.com/harper/forage/internal/models"
	"github.com/harper/forage/internal/species"
)

// Resolution is the display form of a record's season.
type Resolution struct {
	Label      string `json:"label"`
	IsFallback bool   `json:"is_fallback"`
	Known      bool   `json:"known"`
}

// UnknownLabel is shown when neither the record nor its species carry a season.
const UnknownLabel = "Unknown"

// Oracle answers season questions against a table and a clock.
type Oracle struct {
	table Table
	now   func() time.Time
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithClock sets the time source used to pick the current month.
func WithClock(now func() time.Time) Option {
	return func(o *Oracle) {
		o.now = now
	}
}

// WithTable replaces the season table.
func WithTable(t Table) Option {
	return func(o *Oracle) {
		o.table = t
	}
}

// NewOracle creates an oracle over the default table and the wall clock.
func NewOracle(opts ...Option) *Oracle {
	o := &Oracle{
		table: DefaultTable(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CurrentMonth returns the month according to the oracle's clock.
func (o *Oracle) CurrentMonth() time.Month {
	return o.now().Month()
}

// ExplicitRange returns the record's own season range. Records with a
// missing or malformed month have no usable range.
func ExplicitRange(rec *models.LocationRecord) (Range, bool) {
	if rec == nil || rec.SeasonStart == nil || rec.SeasonStop == nil {
		return Range{}, false
	}
	r, err := ParseRange(*rec.SeasonStart, *rec.SeasonStop)
	if err != nil {
		return Range{}, false
	}
	return r, true
}

// IconRange returns the table entry for an icon.
func (o *Oracle) IconRange(icon species.Icon) (Range, bool) {
	r, ok := o.table[icon]
	return r, ok
}

// FallbackRange returns the season of the first type id with a table entry.
func (o *Oracle) FallbackRange(typeIDs []int) (Range, bool) {
	for _, id := range typeIDs {
		icon, ok := species.IconForType(id)
		if !ok {
			continue
		}
		if r, ok := o.table[icon]; ok {
			return r, true
		}
	}
	return Range{}, false
}

// ResolveSeason returns the label to show for a record's season.
func (o *Oracle) ResolveSeason(rec *models.LocationRecord) Resolution {
	if r, ok := ExplicitRange(rec); ok {
		return Resolution{Label: r.Label(), Known: true}
	}
	if rec != nil {
		if r, ok := o.FallbackRange(rec.TypeIDs); ok {
			return Resolution{Label: r.Label(), IsFallback: true, Known: true}
		}
	}
	return Resolution{Label: UnknownLabel}
}

// IsIconInSeason reports whether an icon's table season includes the current
// month. Icons without an entry count as possibly in season.
func (o *Oracle) IsIconInSeason(icon species.Icon) bool {
	r, ok := o.table[icon]
	if !ok {
		return true
	}
	return r.Contains(o.CurrentMonth())
}

// AreTypeIDsInSeason reports whether any known type is in season now. A list
// with no known types (including an empty list) is treated as possibly in
// season and returns true.
func (o *Oracle) AreTypeIDsInSeason(typeIDs []int) bool {
	month := o.CurrentMonth()
	known := false
	for _, id := range typeIDs {
		icon, ok := species.IconForType(id)
		if !ok {
			continue
		}
		r, ok := o.table[icon]
		if !ok {
			continue
		}
		if r.Contains(month) {
			return true
		}
		known = true
	}
	return !known
}

// IsInSeasonNow reports whether a location is in season. An explicit range
// decides on its own; otherwise the type ids are consulted.
func (o *Oracle) IsInSeasonNow(typeIDs []int, explicit *Range) bool {
	if explicit != nil {
		return explicit.Contains(o.CurrentMonth())
	}
	return o.AreTypeIDsInSeason(typeIDs)
}

// IsRecordInSeason applies IsInSeasonNow to a record.
func (o *Oracle) IsRecordInSeason(rec *models.LocationRecord) bool {
	if r, ok := ExplicitRange(rec); ok {
		return o.IsInSeasonNow(rec.TypeIDs, &r)
	}
	return o.IsInSeasonNow(rec.TypeIDs, nil)
}
