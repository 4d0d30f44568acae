// ABOUTME: MCP server initialization and configuration
// ABOUTME: Sets up server with season, icon and location tools for AI agents

package mcp

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harper/forage/internal/api"
	"github.com/harper/forage/internal/icons"
	"github.com/harper/forage/internal/season"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps MCP server with the season oracle, icon catalog and API client.
type Server struct {
	mcp     *mcp.Server
	oracle  *season.Oracle
	catalog *icons.Catalog
	client  *api.Client
	logger  *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates MCP server with all capabilities. The client may be nil,
// in which case find_locations reports that no API is configured.
func NewServer(oracle *season.Oracle, catalog *icons.Catalog, client *api.Client, opts ...Option) (*Server, error) {
	if oracle == nil {
		return nil, fmt.Errorf("season oracle is required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("icon catalog is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "forage",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:     mcpServer,
		oracle:  oracle,
		catalog: catalog,
		client:  client,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Debug("mcp server starting", "transport", "stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
