package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/verdantscape/knowledge-engine/internal/engine"
)

// Server wraps the MCP server with its engine dependency.
type Server struct {
	server *mcp.Server
	engine *engine.Engine
}

// Config holds server dependencies.
type Config struct {
	Engine *engine.Engine
}

// NewServer creates a configured MCP server with the retrieval tools
// registered. Tool calls made before the engine finishes bootstrapping fail
// fast with the engine's not-initialized error.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "landscape-knowledge-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_knowledge",
		Description: "Search the landscaping knowledge base. Supports semantic, keyword, or hybrid ranking and metadata filters. Returns ranked chunks.",
	}, makeSearchHandler(cfg.Engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pricing_context",
		Description: "Retrieve structured pricing context for a service query: price range, unit, and cost factors extracted from pricing knowledge.",
	}, makePricingHandler(cfg.Engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "service_details",
		Description: "Retrieve how a landscaping service is performed: description, effort intensity, duration, prerequisites, and best practices.",
	}, makeServiceDetailsHandler(cfg.Engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "material_costs",
		Description: "Retrieve per-material cost profiles with budget/standard/premium tiers. Materials without knowledge-base hits are omitted.",
	}, makeMaterialCostsHandler(cfg.Engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "labor_rates",
		Description: "Retrieve hourly labor rates, optionally narrowed by region and skill level. Falls back to standard rates when none are documented.",
	}, makeLaborRatesHandler(cfg.Engine))

	return &Server{
		server: server,
		engine: cfg.Engine,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
