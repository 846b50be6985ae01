package mcp

import (
	"fmt"
	"regexp"

	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/mark3labs/mcp-go/mcp"
)

var toolNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// CatalogTool describes one tool the portal exposes over MCP.
type CatalogTool struct {
	Name        string
	Description string
	Params      []CatalogParam
}

// CatalogParam describes one tool argument.
type CatalogParam struct {
	Name        string
	Type        string // string, number, boolean
	Description string
	Required    bool
	Enum        []string
}

// Catalog returns the portal's tool definitions.
func Catalog() []CatalogTool {
	return []CatalogTool{
		{
			Name:        "list_briefs",
			Description: "List the daily market briefs, newest first.",
			Params: []CatalogParam{
				{Name: "limit", Type: "number", Description: "Maximum number of briefs to list (default all)"},
			},
		},
		{
			Name:        "search_briefs",
			Description: "Find briefs whose tickers, summary, insights or watchlist mention the query (case-insensitive).",
			Params: []CatalogParam{
				{Name: "query", Type: "string", Description: "Text to search for, e.g. NVDA or semiconductors", Required: true},
			},
		},
		{
			Name:        "get_brief",
			Description: "Get one brief with its summary, insights, conviction distribution, watchlist and sources.",
			Params: []CatalogParam{
				{Name: "id", Type: "string", Description: "Brief id; omit for the latest brief"},
			},
		},
		{
			Name:        "get_quote",
			Description: "Get the current price and chart summary for a ticker over a time window.",
			Params: []CatalogParam{
				{Name: "symbol", Type: "string", Description: "Ticker symbol, e.g. AAPL", Required: true},
				{Name: "window", Type: "string", Description: "Chart window (default 1D)", Enum: []string{"1D", "1W", "1M", "3M", "1Y"}},
			},
		},
		VersionCatalogTool(),
	}
}

// ValidateCatalogTool validates a single catalog tool entry.
func ValidateCatalogTool(ct CatalogTool) error {
	if ct.Name == "" {
		return fmt.Errorf("tool has empty name")
	}
	if !toolNamePattern.MatchString(ct.Name) {
		return fmt.Errorf("tool %q has invalid name", ct.Name)
	}
	for _, p := range ct.Params {
		if p.Name == "" {
			return fmt.Errorf("tool %q has a parameter with empty name", ct.Name)
		}
		switch p.Type {
		case "", "string", "number", "boolean":
		default:
			return fmt.Errorf("tool %q parameter %q has unsupported type %q", ct.Name, p.Name, p.Type)
		}
	}
	return nil
}

// ValidateCatalog filters and validates catalog entries, logging warnings for invalid or duplicate tools.
func ValidateCatalog(catalog []CatalogTool, logger *common.Logger) []CatalogTool {
	seen := make(map[string]bool, len(catalog))
	valid := make([]CatalogTool, 0, len(catalog))
	for _, ct := range catalog {
		if err := ValidateCatalogTool(ct); err != nil {
			logger.Warn().Str("error", err.Error()).Msg("skipping invalid catalog tool")
			continue
		}
		if seen[ct.Name] {
			logger.Warn().Str("name", ct.Name).Msg("skipping duplicate catalog tool")
			continue
		}
		seen[ct.Name] = true
		valid = append(valid, ct)
	}
	return valid
}

// BuildMCPTool converts a CatalogTool into an mcp.Tool with the appropriate schema.
func BuildMCPTool(ct CatalogTool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(ct.Description)}
	for _, p := range ct.Params {
		opts = append(opts, buildParamOption(p))
	}
	return mcp.NewTool(ct.Name, opts...)
}

// buildParamOption maps a CatalogParam to the appropriate mcp-go tool option.
func buildParamOption(p CatalogParam) mcp.ToolOption {
	var opts []mcp.PropertyOption
	if p.Description != "" {
		opts = append(opts, mcp.Description(p.Description))
	}
	if p.Required {
		opts = append(opts, mcp.Required())
	}
	if len(p.Enum) > 0 {
		opts = append(opts, mcp.Enum(p.Enum...))
	}

	switch p.Type {
	case "number":
		return mcp.WithNumber(p.Name, opts...)
	case "boolean":
		return mcp.WithBoolean(p.Name, opts...)
	default:
		return mcp.WithString(p.Name, opts...)
	}
}
