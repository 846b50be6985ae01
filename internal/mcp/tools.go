package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers every catalog tool that has a handler. It returns
// the number of tools registered.
func RegisterTools(s *server.MCPServer, t *Tools, catalog []CatalogTool) int {
	handlers := t.handlers()
	count := 0
	for _, ct := range catalog {
		h, ok := handlers[ct.Name]
		if !ok {
			t.logger.Warn().Str("name", ct.Name).Msg("catalog tool has no handler")
			continue
		}
		s.AddTool(BuildMCPTool(ct), h)
		count++
	}
	return count
}
