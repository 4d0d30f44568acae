// ABOUTME: MCP resource definitions
// ABOUTME: Provides read-only views of the icon catalog and map style for AI agents

package mcp

import (
	"context"
	"encoding/json"

	"github.com/harper/forage/internal/icons"
	"github.com/harper/forage/internal/style"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	catalogURI = "forage://catalog"
	styleURI   = "forage://style"
)

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		Name:        catalogURI,
		Description: "Every image key registered with the map: base markers, species glyphs and cluster rings",
		URI:         catalogURI,
		MIMEType:    "application/json",
	}, s.handleCatalogResource)

	s.mcp.AddResource(&mcp.Resource{
		Name:        styleURI,
		Description: "The clustered locations source and its layers once icons are ready",
		URI:         styleURI,
		MIMEType:    "application/json",
	}, s.handleStyleResource)
}

// CatalogOutput defines the catalog resource body.
type CatalogOutput struct {
	Entries  []icons.Entry `json:"entries"`
	Count    int           `json:"count"`
	Markers  int           `json:"markers"`
	Species  int           `json:"species"`
	Clusters int           `json:"clusters"`
}

// StyleOutput defines the style resource body.
type StyleOutput struct {
	Source style.Source  `json:"source"`
	Layers []style.Layer `json:"layers"`
}

func (s *Server) handleCatalogResource(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	output := CatalogOutput{
		Entries:  s.catalog.Entries(),
		Count:    s.catalog.Len(),
		Markers:  s.catalog.Count(icons.KindMarker),
		Species:  s.catalog.Count(icons.KindSpecies),
		Clusters: s.catalog.Count(icons.KindCluster),
	}
	return jsonResource(catalogURI, output), nil
}

func (s *Server) handleStyleResource(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	output := StyleOutput{
		Source: style.LocationsSource(nil),
		Layers: style.Layers(true),
	}
	return jsonResource(styleURI, output), nil
}

func jsonResource(uri string, v any) *mcp.ReadResourceResult {
	jsonBytes, _ := json.MarshalIndent(v, "", "  ") //nolint:errchkjson // output is always serializable

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		},
	}
}
