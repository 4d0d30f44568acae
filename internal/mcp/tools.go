// ABOUTME: MCP tool definitions and handlers
// ABOUTME: Exposes season checks, icon keys and location queries to AI agents

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harper/forage/internal/api"
	"github.com/harper/forage/internal/filter"
	"github.com/harper/forage/internal/geojson"
	"github.com/harper/forage/internal/icons"
	"github.com/harper/forage/internal/models"
	"github.com/harper/forage/internal/species"
	"github.com/harper/forage/internal/style"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrNoAPI is returned by tools that need the locations API when none is configured.
var ErrNoAPI = errors.New("no locations API configured")

func (s *Server) registerTools() {
	s.registerCheckSeasonTool()
	s.registerResolveIconTool()
	s.registerClusterIconKeyTool()
	s.registerFindLocationsTool()
	s.registerProjectLocationsTool()
}

func textResult(v any) *mcp.CallToolResult {
	jsonBytes, _ := json.MarshalIndent(v, "", "  ") //nolint:errchkjson // output is always serializable
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}
}

var seasonProperties = map[string]interface{}{
	"type_ids": map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "integer"},
		"description": "Plant type ids of the location, in the order the API returns them",
	},
	"season_start": map[string]interface{}{
		"type":        "string",
		"description": "Optional explicit season start month (e.g., 'June')",
	},
	"season_stop": map[string]interface{}{
		"type":        "string",
		"description": "Optional explicit season stop month (e.g., 'August')",
	},
}

// SeasonInput defines input for check_season and resolve_icon.
type SeasonInput struct {
	TypeIDs     []int   `json:"type_ids"`
	SeasonStart *string `json:"season_start,omitempty"`
	SeasonStop  *string `json:"season_stop,omitempty"`
	Unverified  bool    `json:"unverified,omitempty"`
}

func (in SeasonInput) record() *models.LocationRecord {
	return &models.LocationRecord{
		TypeIDs:     in.TypeIDs,
		SeasonStart: in.SeasonStart,
		SeasonStop:  in.SeasonStop,
		Unverified:  in.Unverified,
	}
}

// SeasonOutput defines output for check_season.
type SeasonOutput struct {
	Label      string `json:"label"`
	IsFallback bool   `json:"is_fallback"`
	Known      bool   `json:"known"`
	InSeason   bool   `json:"in_season"`
	Month      string `json:"month"`
}

func (s *Server) registerCheckSeasonTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "check_season",
		Description: "Resolve the harvest season label for a location and whether it is in season this month. An explicit season range wins over the species table.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": seasonProperties,
			"required":   []string{"type_ids"},
		},
	}, s.handleCheckSeason)
}

func (s *Server) handleCheckSeason(_ context.Context, _ *mcp.CallToolRequest, input SeasonInput) (*mcp.CallToolResult, SeasonOutput, error) {
	rec := input.record()
	res := s.oracle.ResolveSeason(rec)
	output := SeasonOutput{
		Label:      res.Label,
		IsFallback: res.IsFallback,
		Known:      res.Known,
		InSeason:   s.oracle.IsRecordInSeason(rec),
		Month:      s.oracle.CurrentMonth().String(),
	}
	return textResult(output), output, nil
}

// IconOutput defines output for resolve_icon.
type IconOutput struct {
	IconKey    string `json:"icon_key"`
	Species    string `json:"species,omitempty"`
	InSeason   bool   `json:"in_season"`
	Registered bool   `json:"registered"`
	// SpeciesTypeIDs lists every type id that shares the species icon.
	SpeciesTypeIDs []int `json:"species_type_ids,omitempty"`
}

func (s *Server) registerResolveIconTool() {
	props := make(map[string]interface{}, len(seasonProperties)+1)
	for k, v := range seasonProperties {
		props[k] = v
	}
	props["unverified"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Whether the location is unverified (uses the unverified marker)",
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "resolve_icon",
		Description: "Return the map image key a location marker renders with, using the same expression the point layer evaluates.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": props,
			"required":   []string{"type_ids"},
		},
	}, s.handleResolveIcon)
}

func (s *Server) handleResolveIcon(_ context.Context, _ *mcp.CallToolRequest, input SeasonInput) (*mcp.CallToolResult, IconOutput, error) {
	f := geojson.LocationFeature(input.record(), s.oracle)
	key, err := geojson.IconKey(f)
	if err != nil {
		return nil, IconOutput{}, fmt.Errorf("failed to evaluate icon expression: %w", err)
	}

	inSeason, _ := f.Properties[style.PropInSeason].(bool)
	output := IconOutput{IconKey: key, InSeason: inSeason}
	if icon, ok := geojson.SpeciesIcon(f); ok {
		output.Species = icon.String()
		output.SpeciesTypeIDs = species.TypeIDs(icon)
	}
	_, output.Registered = s.catalog.Lookup(key)

	return textResult(output), output, nil
}

// ClusterInput defines input for cluster_icon_key.
type ClusterInput struct {
	InSeason   int `json:"in_season"`
	PointCount int `json:"point_count"`
}

// ClusterOutput defines output for cluster_icon_key.
type ClusterOutput struct {
	IconKey   string `json:"icon_key"`
	CountText string `json:"count_text"`
	Size      int    `json:"size"`
	Percent   int    `json:"percent"`
}

func (s *Server) registerClusterIconKeyTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "cluster_icon_key",
		Description: "Return the ring image key and count label a cluster with these counts renders with.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"in_season": map[string]interface{}{
					"type":        "integer",
					"description": "Number of in-season locations in the cluster",
				},
				"point_count": map[string]interface{}{
					"type":        "integer",
					"description": "Total number of locations in the cluster",
				},
			},
			"required": []string{"in_season", "point_count"},
		},
	}, s.handleClusterIconKey)
}

func (s *Server) handleClusterIconKey(_ context.Context, _ *mcp.CallToolRequest, input ClusterInput) (*mcp.CallToolResult, ClusterOutput, error) {
	if input.PointCount <= 0 {
		return nil, ClusterOutput{}, fmt.Errorf("point_count must be positive, got %d", input.PointCount)
	}
	if input.InSeason < 0 || input.InSeason > input.PointCount {
		return nil, ClusterOutput{}, fmt.Errorf("in_season must be between 0 and %d, got %d", input.PointCount, input.InSeason)
	}

	props := map[string]any{
		style.PropPointCount:  input.PointCount,
		style.PropInSeasonSum: input.InSeason,
	}
	key, err := style.EvalString(style.ClusterIconImage(), props)
	if err != nil {
		return nil, ClusterOutput{}, fmt.Errorf("failed to evaluate cluster icon: %w", err)
	}
	text, err := style.EvalString(style.ClusterCountText(), props)
	if err != nil {
		return nil, ClusterOutput{}, fmt.Errorf("failed to evaluate cluster label: %w", err)
	}

	output := ClusterOutput{
		IconKey:   key,
		CountText: text,
		Size:      icons.ClusterSizeFor(input.PointCount),
		Percent:   icons.ClusterPercent(input.InSeason, input.PointCount),
	}
	return textResult(output), output, nil
}

// FindLocationsInput defines input for find_locations.
type FindLocationsInput struct {
	SWLat        float64  `json:"sw_lat"`
	SWLng        float64  `json:"sw_lng"`
	NELat        float64  `json:"ne_lat"`
	NELng        float64  `json:"ne_lng"`
	TypeIDs      []int    `json:"type_ids,omitempty"`
	Limit        int      `json:"limit,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	InSeasonOnly bool     `json:"in_season_only,omitempty"`
	Search       string   `json:"search,omitempty"`
}

func (in FindLocationsInput) filterState() filter.State {
	return filter.State{
		Categories:   in.Categories,
		InSeasonOnly: in.InSeasonOnly,
		TypeIDs:      in.TypeIDs,
		Search:       in.Search,
	}
}

// LocationOutput summarizes one location.
type LocationOutput struct {
	ID          int     `json:"id"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description *string `json:"description,omitempty"`
	TypeIDs     []int   `json:"type_ids"`
	Season      string  `json:"season"`
	IsFallback  bool    `json:"is_fallback"`
	InSeason    bool    `json:"in_season"`
	Unverified  bool    `json:"unverified"`
}

// FindLocationsOutput defines output for find_locations.
type FindLocationsOutput struct {
	Locations []LocationOutput `json:"locations"`
	Count     int              `json:"count"`
	Fetched   int              `json:"fetched"`
}

func (s *Server) registerFindLocationsTool() {
	coord := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "number", "description": desc}
	}
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_locations",
		Description: "Find foraging locations inside a bounding box, optionally filtered by type, category, season or text.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"sw_lat": coord("South-west corner latitude"),
				"sw_lng": coord("South-west corner longitude"),
				"ne_lat": coord("North-east corner latitude"),
				"ne_lng": coord("North-east corner longitude"),
				"type_ids": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "integer"},
					"description": "Only locations with any of these plant type ids",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of locations to fetch (default 1000)",
				},
				"categories": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string", "enum": filter.Categories()},
					"description": "Only locations with a type in one of these categories",
				},
				"in_season_only": map[string]interface{}{
					"type":        "boolean",
					"description": "Only locations in season this month",
				},
				"search": map[string]interface{}{
					"type":        "string",
					"description": "Free-text search over description, access and type names",
				},
			},
			"required": []string{"sw_lat", "sw_lng", "ne_lat", "ne_lng"},
		},
	}, s.handleFindLocations)
}

func (s *Server) handleFindLocations(ctx context.Context, _ *mcp.CallToolRequest, input FindLocationsInput) (*mcp.CallToolResult, FindLocationsOutput, error) {
	if s.client == nil {
		return nil, FindLocationsOutput{}, ErrNoAPI
	}

	resp, err := s.client.GetLocations(ctx, api.LocationQuery{
		Bounds: models.BoundingBox{SWLat: input.SWLat, SWLng: input.SWLng, NELat: input.NELat, NELng: input.NELng},
		Types:  input.TypeIDs,
		Limit:  input.Limit,
	})
	if err != nil {
		return nil, FindLocationsOutput{}, fmt.Errorf("failed to fetch locations: %w", err)
	}

	var types []models.PlantType
	state := input.filterState()
	if len(state.Categories) > 0 || state.Search != "" {
		tr, err := s.client.GetTypes(ctx, api.TypeQuery{})
		if err != nil {
			s.logger.Warn("type list unavailable, filtering without names", "error", err)
		} else {
			types = tr.Types
		}
	}

	kept := filter.NewEngine(s.oracle, types).Apply(resp.Locations, state)
	output := FindLocationsOutput{
		Locations: make([]LocationOutput, len(kept)),
		Count:     len(kept),
		Fetched:   len(resp.Locations),
	}
	for i := range kept {
		output.Locations[i] = s.locationOutput(&kept[i])
	}
	return textResult(output), output, nil
}

func (s *Server) locationOutput(rec *models.LocationRecord) LocationOutput {
	res := s.oracle.ResolveSeason(rec)
	typeIDs := rec.TypeIDs
	if typeIDs == nil {
		typeIDs = []int{}
	}
	return LocationOutput{
		ID:          rec.ID,
		Latitude:    rec.Lat,
		Longitude:   rec.Lng,
		Description: rec.Description,
		TypeIDs:     typeIDs,
		Season:      res.Label,
		IsFallback:  res.IsFallback,
		InSeason:    s.oracle.IsRecordInSeason(rec),
		Unverified:  rec.Unverified,
	}
}

// ProjectInput defines input for project_locations.
type ProjectInput struct {
	Locations []models.LocationRecord `json:"locations"`
	Filter    filter.State            `json:"filter"`
}

// ProjectOutput defines output for project_locations.
type ProjectOutput struct {
	FeatureCollection *geojson.FeatureCollection `json:"feature_collection"`
	InSeason          int                        `json:"in_season"`
	ClusterKey        string                     `json:"cluster_key,omitempty"`
}

func (s *Server) registerProjectLocationsTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "project_locations",
		Description: "Convert location records into the GeoJSON feature collection the clustered map source consumes, applying an optional filter.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"locations": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "object"},
					"description": "Location records as returned by the locations API",
				},
				"filter": map[string]interface{}{
					"type":        "object",
					"description": "Optional filter: categories, in_season_only, type_ids, search",
				},
			},
			"required": []string{"locations"},
		},
	}, s.handleProjectLocations)
}

func (s *Server) handleProjectLocations(_ context.Context, _ *mcp.CallToolRequest, input ProjectInput) (*mcp.CallToolResult, ProjectOutput, error) {
	for i := range input.Locations {
		rec := &input.Locations[i]
		if err := models.ValidateCoordinates(rec.Lat, rec.Lng); err != nil {
			return nil, ProjectOutput{}, fmt.Errorf("location %d: %w", rec.ID, err)
		}
	}

	projector := geojson.NewProjector(s.oracle, filter.NewEngine(s.oracle, nil))
	fc := projector.Project(input.Locations, input.Filter)

	output := ProjectOutput{
		FeatureCollection: fc,
		InSeason:          fc.InSeasonCount(),
	}
	if len(fc.Features) > 0 {
		output.ClusterKey = fc.ClusterKey()
	}
	return textResult(output), output, nil
}
