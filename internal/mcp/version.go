package mcp

import (
	"context"
	"encoding/json"

	"github.com/bobmcallan/brief-portal/internal/config"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// VersionCatalogTool returns the catalog entry for get_version.
func VersionCatalogTool() CatalogTool {
	return CatalogTool{
		Name:        "get_version",
		Description: "Get the brief portal version. Use this to verify connectivity.",
	}
}

// VersionToolHandler returns a handler that reports the portal build identity.
func VersionToolHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := json.Marshal(config.Info())
		if err != nil {
			return errorResult("failed to marshal version info"), nil
		}
		return textResult(string(out)), nil
	}
}
