// ABOUTME: Memoized projection of filtered records into a feature collection
// ABOUTME: Unchanged inputs return the same collection so the engine does not re-cluster

package geojson

import (
	"sync"
	"time"

	"github.com/harper/forage/internal/filter"
	"github.com/harper/forage/internal/models"
	"github.com/harper/forage/internal/season"
)

// Projector turns a record set plus filter state into features, caching the
// last result.
type Projector struct {
	oracle  *season.Oracle
	filters *filter.Engine

	mu   sync.Mutex
	last *memo
}

type memo struct {
	first  *models.LocationRecord
	length int
	filter string
	month  time.Month
	fc     *FeatureCollection
}

// NewProjector creates a projector.
func NewProjector(oracle *season.Oracle, filters *filter.Engine) *Projector {
	return &Projector{oracle: oracle, filters: filters}
}

// Project filters records and converts the survivors. Calling it again with
// the same slice, an equivalent filter state and the same month returns the
// identical *FeatureCollection. Callers must treat the records slice as
// immutable; a new fetch should produce a new slice.
func (p *Projector) Project(records []models.LocationRecord, state filter.State) *FeatureCollection {
	key := memo{
		length: len(records),
		filter: state.Key(),
		month:  p.oracle.CurrentMonth(),
	}
	if len(records) > 0 {
		key.first = &records[0]
	}

	p.mu.Lock()
	if p.last != nil && p.last.same(&key) {
		fc := p.last.fc
		p.mu.Unlock()
		return fc
	}
	p.mu.Unlock()

	kept := p.filters.Apply(records, state)
	key.fc = ToLocationFeatureCollection(kept, p.oracle)

	p.mu.Lock()
	p.last = &key
	p.mu.Unlock()
	return key.fc
}

func (m *memo) same(o *memo) bool {
	return m.first == o.first && m.length == o.length && m.filter == o.filter && m.month == o.month
}
