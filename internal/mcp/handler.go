package mcp

import (
	"net/http"

	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/bobmcallan/brief-portal/internal/config"
	"github.com/bobmcallan/brief-portal/internal/quotes"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
	tools      int
}

// NewServer builds the MCP server with the portal's tools registered.
func NewServer(t *Tools) (*mcpserver.MCPServer, int) {
	mcpSrv := mcpserver.NewMCPServer(
		"brief-portal",
		config.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)
	count := RegisterTools(mcpSrv, t, ValidateCatalog(Catalog(), t.logger))
	return mcpSrv, count
}

// NewHandler creates a new MCP handler serving the brief and quote tools.
func NewHandler(store BriefReader, lookup quotes.Lookuper, logger *common.Logger) *Handler {
	t := NewTools(store, lookup, logger)
	mcpSrv, count := NewServer(t)

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	t.logger.Info().
		Int("tools", count).
		Msg("MCP handler initialized")

	return &Handler{
		streamable: streamable,
		logger:     t.logger,
		tools:      count,
	}
}

// ToolCount returns the number of registered tools.
func (h *Handler) ToolCount() int {
	return h.tools
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer. The endpoint is
// read-only and needs no identity.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}
