// Package mcp exposes the analytics engine as an MCP server over stdio, so
// an LLM client can query KPIs and correlations against the live datasets.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"opsboard/internal/config"
	"opsboard/internal/normalize"
	"opsboard/internal/source"
)

// Server holds the state shared by all tool handlers: the dataset store and
// the resolved category map. Handlers recompute reports per call; only the
// raw datasets are cached.
type Server struct {
	cfg   *config.AppConfig
	store *source.Store
	cmap  normalize.CategoryMap

	version string
}

// NewServer creates the MCP server around an already-configured store.
func NewServer(cfg *config.AppConfig, store *source.Store, cmap normalize.CategoryMap, version string) *Server {
	return &Server{
		cfg:     cfg,
		store:   store,
		cmap:    cmap,
		version: version,
	}
}

// Run registers all tools and serves the stdio transport until the client
// disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	impl := &sdk.Implementation{
		Name:    "opsboard",
		Version: s.version,
	}
	server := sdk.NewServer(impl, nil)
	s.registerTools(server)

	log.Info().Str("version", s.version).Msg("MCP server starting stdio loop")
	return server.Run(ctx, &sdk.StdioTransport{})
}
