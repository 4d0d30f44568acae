// ABOUTME: Client-side filtering of fetched location records
// ABOUTME: Categories, in-season-only, selected type ids and free-text search

package filter

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/harper/forage/internal/models"
	"github.com/harper/forage/internal/season"
)

// Category names as they appear in a type's category mask.
const (
	CategoryForager  = "forager"
	CategoryHoneybee = "honeybee"
	CategoryGrafter  = "grafter"
	CategoryFreegan  = "freegan"
)

// Categories lists every known category.
func Categories() []string {
	return []string{CategoryForager, CategoryHoneybee, CategoryGrafter, CategoryFreegan}
}

// State is the user's current filter selection. The zero value matches
// every record.
type State struct {
	Categories   []string `json:"categories,omitempty"`
	InSeasonOnly bool     `json:"in_season_only,omitempty"`
	TypeIDs      []int    `json:"type_ids,omitempty"`
	Search       string   `json:"search,omitempty"`
}

// Active reports whether any filter is set.
func (s State) Active() bool {
	return len(s.Categories) > 0 || s.InSeasonOnly || len(s.TypeIDs) > 0 || strings.TrimSpace(s.Search) != ""
}

// Key returns a canonical string for s. Two states with the same selection
// in a different order share a key.
func (s State) Key() string {
	cats := slices.Clone(s.Categories)
	sort.Strings(cats)
	ids := slices.Clone(s.TypeIDs)
	sort.Ints(ids)
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("c=%s;s=%t;t=%s;q=%s",
		strings.Join(cats, ","), s.InSeasonOnly, strings.Join(idStrs, ","),
		strings.ToLower(strings.TrimSpace(s.Search)))
}

// Engine applies a State to record lists.
type Engine struct {
	oracle *season.Oracle
	types  map[int]models.PlantType
}

// NewEngine creates a filter engine. types is used for category and name
// matching; it may be nil, in which case category filters match nothing
// known and text search only looks at record fields.
func NewEngine(oracle *season.Oracle, types []models.PlantType) *Engine {
	e := &Engine{oracle: oracle, types: make(map[int]models.PlantType, len(types))}
	for _, t := range types {
		e.types[t.ID] = t
	}
	return e
}

// Apply returns the records matching s, preserving input order. The input
// slice is never modified; with no active filter it is returned as is.
func (e *Engine) Apply(records []models.LocationRecord, s State) []models.LocationRecord {
	if !s.Active() {
		return records
	}
	query := strings.ToLower(strings.TrimSpace(s.Search))
	month := e.oracle.CurrentMonth()

	out := make([]models.LocationRecord, 0, len(records))
	for i := range records {
		rec := &records[i]
		if len(s.TypeIDs) > 0 && !hasAnyType(rec, s.TypeIDs) {
			continue
		}
		if len(s.Categories) > 0 && !e.matchesCategory(rec, s.Categories) {
			continue
		}
		if s.InSeasonOnly && !e.inSeason(rec, month) {
			continue
		}
		if query != "" && !e.matchesText(rec, query) {
			continue
		}
		out = append(out, *rec)
	}
	return out
}

func hasAnyType(rec *models.LocationRecord, ids []int) bool {
	for _, id := range ids {
		if rec.HasType(id) {
			return true
		}
	}
	return false
}

// matchesCategory keeps records with a type in any selected category.
// Records whose types are all unknown to the engine are kept, since their
// category cannot be ruled out.
func (e *Engine) matchesCategory(rec *models.LocationRecord, categories []string) bool {
	known := false
	for _, id := range rec.TypeIDs {
		t, ok := e.types[id]
		if !ok {
			continue
		}
		known = true
		for _, c := range categories {
			if strings.Contains(t.CategoryMask, c) {
				return true
			}
		}
	}
	return !known
}

// inSeason uses the record's own range when it has one, filling a missing
// start with January and a missing stop with December. Records with neither
// bound defer to the species table, which treats unknown species as in
// season.
func (e *Engine) inSeason(rec *models.LocationRecord, month time.Month) bool {
	if rec.SeasonStart == nil && rec.SeasonStop == nil {
		return e.oracle.AreTypeIDsInSeason(rec.TypeIDs)
	}
	start, stop := time.January, time.December
	if rec.SeasonStart != nil {
		m, err := season.ParseMonth(*rec.SeasonStart)
		if err != nil {
			return e.oracle.AreTypeIDsInSeason(rec.TypeIDs)
		}
		start = m
	}
	if rec.SeasonStop != nil {
		m, err := season.ParseMonth(*rec.SeasonStop)
		if err != nil {
			return e.oracle.AreTypeIDsInSeason(rec.TypeIDs)
		}
		stop = m
	}
	return season.IsMonthInRange(start, stop, month)
}

func (e *Engine) matchesText(rec *models.LocationRecord, query string) bool {
	if rec.Description != nil && strings.Contains(strings.ToLower(*rec.Description), query) {
		return true
	}
	if rec.Access != nil && strings.Contains(strings.ToLower(*rec.Access), query) {
		return true
	}
	for _, id := range rec.TypeIDs {
		t, ok := e.types[id]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(t.EnName), query) {
			return true
		}
		if t.ScientificName != nil && strings.Contains(strings.ToLower(*t.ScientificName), query) {
			return true
		}
	}
	return false
}
