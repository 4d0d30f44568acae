// ABOUTME: Typed wrappers for each locations API endpoint
// ABOUTME: Builds query strings and cache keys for list queries

package api

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/harper/forage/internal/models"
)

// LocationQuery selects locations inside a viewport.
type LocationQuery struct {
	Bounds       models.BoundingBox
	Types        []int
	Limit        int
	Offset       int
	VerifiedOnly bool
}

// Values encodes the query parameters. Zero options are omitted.
func (q LocationQuery) Values() url.Values {
	v := url.Values{}
	v.Set("sw_lat", formatFloat(q.Bounds.SWLat))
	v.Set("sw_lng", formatFloat(q.Bounds.SWLng))
	v.Set("ne_lat", formatFloat(q.Bounds.NELat))
	v.Set("ne_lng", formatFloat(q.Bounds.NELng))
	if len(q.Types) > 0 {
		ids := make([]string, len(q.Types))
		for i, id := range q.Types {
			ids[i] = strconv.Itoa(id)
		}
		v.Set("types", strings.Join(ids, ","))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.VerifiedOnly {
		v.Set("verified_only", "true")
	}
	return v
}

// Key identifies the query in the cache. Type order does not matter.
func (q LocationQuery) Key() string {
	types := slices.Clone(q.Types)
	slices.Sort(types)
	q.Types = types
	return "locations?" + q.Values().Encode()
}

// TypeQuery filters the type list.
type TypeQuery struct {
	Category string
	Search   string
}

// Values encodes the query parameters.
func (q TypeQuery) Values() url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

// GetLocations lists locations in a viewport. Results are cached per query.
func (c *Client) GetLocations(ctx context.Context, q LocationQuery) (*models.LocationsResponse, error) {
	if err := q.Bounds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bounds: %w", err)
	}
	v, err := c.query(ctx, "locations", q.Key(), func(ctx context.Context) (any, error) {
		var resp models.LocationsResponse
		if err := c.getJSON(ctx, "locations", "/api/locations", q.Values(), &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.LocationsResponse), nil
}

// GetLocation fetches one location with its types.
func (c *Client) GetLocation(ctx context.Context, id int) (*models.LocationDetail, error) {
	var resp models.LocationDetail
	if err := c.getJSON(ctx, "location", "/api/locations/"+strconv.Itoa(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTypes lists plant types. Results are cached per query.
func (c *Client) GetTypes(ctx context.Context, q TypeQuery) (*models.TypesResponse, error) {
	key := "types?" + q.Values().Encode()
	v, err := c.query(ctx, "types", key, func(ctx context.Context) (any, error) {
		var resp models.TypesResponse
		if err := c.getJSON(ctx, "types", "/api/types", q.Values(), &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.TypesResponse), nil
}

// GetType fetches one plant type with its children.
func (c *Client) GetType(ctx context.Context, id int) (*models.PlantTypeDetail, error) {
	var resp models.PlantTypeDetail
	if err := c.getJSON(ctx, "type", "/api/types/"+strconv.Itoa(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health reports API status.
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var resp models.HealthResponse
	if err := c.getJSON(ctx, "health", "/api/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats reports dataset totals.
func (c *Client) Stats(ctx context.Context) (*models.StatsResponse, error) {
	var resp models.StatsResponse
	if err := c.getJSON(ctx, "stats", "/api/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
