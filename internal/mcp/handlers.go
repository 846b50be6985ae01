package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/brief-portal/internal/briefs"
	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/bobmcallan/brief-portal/internal/models"
	"github.com/bobmcallan/brief-portal/internal/present"
	"github.com/bobmcallan/brief-portal/internal/quotes"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// BriefReader is the read side of briefs.Store.
type BriefReader interface {
	State() briefs.State
	Get(id string) (models.Brief, error)
	Latest() (models.Brief, bool)
}

// Tools holds the dependencies of the MCP tool handlers.
type Tools struct {
	store  BriefReader
	lookup quotes.Lookuper
	logger *common.Logger
}

// NewTools creates the tool set. lookup may be nil, which disables get_quote.
func NewTools(store BriefReader, lookup quotes.Lookuper, logger *common.Logger) *Tools {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Tools{store: store, lookup: lookup, logger: logger}
}

func (t *Tools) handlers() map[string]server.ToolHandlerFunc {
	m := map[string]server.ToolHandlerFunc{
		"list_briefs":   t.listBriefs,
		"search_briefs": t.searchBriefs,
		"get_brief":     t.getBrief,
		"get_version":   VersionToolHandler(),
	}
	if t.lookup != nil {
		m["get_quote"] = t.getQuote
	}
	return m
}

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}
}

// loaded returns the collection, or an error result while the feed is
// loading or after it failed.
func (t *Tools) loaded() ([]models.Brief, *mcp.CallToolResult) {
	st := t.store.State()
	if st.Loading {
		return nil, errorResult("briefs are still loading, try again shortly")
	}
	if st.Err != "" {
		return nil, errorResult("brief feed unavailable: " + st.Err)
	}
	return st.Briefs, nil
}

func (t *Tools) listBriefs(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, fail := t.loaded()
	if fail != nil {
		return fail, nil
	}
	if limit := r.GetInt("limit", 0); limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return textResult(present.ArchiveMarkdown(present.Archive(list, ""), "")), nil
}

func (t *Tools) searchBriefs(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(r.GetString("query", ""))
	if query == "" {
		return errorResult("query is required"), nil
	}
	list, fail := t.loaded()
	if fail != nil {
		return fail, nil
	}
	matched := briefs.Filter(list, query)
	return textResult(present.ArchiveMarkdown(present.Archive(matched, ""), query)), nil
}

func (t *Tools) getBrief(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, fail := t.loaded(); fail != nil {
		return fail, nil
	}

	latest, ok := t.store.Latest()
	if !ok {
		return errorResult(present.EmptyMessage("")), nil
	}

	b := latest
	if id := strings.TrimSpace(r.GetString("id", "")); id != "" {
		var err error
		b, err = t.store.Get(id)
		if errors.Is(err, briefs.ErrNotFound) {
			return errorResult(fmt.Sprintf("brief %q not found", id)), nil
		}
		if err != nil {
			return errorResult(err.Error()), nil
		}
	}

	view := present.NewBriefView(b, b.ID == latest.ID, false)
	return textResult(present.BriefMarkdown(view)), nil
}

func (t *Tools) getQuote(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol := strings.TrimSpace(r.GetString("symbol", ""))
	if symbol == "" {
		return errorResult(quotes.ErrEmptySymbol.Error()), nil
	}
	window, err := quotes.ParseWindow(r.GetString("window", ""))
	if err != nil {
		return errorResult(err.Error()), nil
	}

	res, err := t.lookup.Lookup(ctx, symbol, window)
	if err != nil {
		t.logger.Warn().Str("symbol", symbol).Str("window", window.String()).Str("error", err.Error()).Msg("mcp quote lookup failed")
		return errorResult(err.Error() + "\n" + quotes.Hint), nil
	}
	return textResult(present.QuoteMarkdown(present.NewQuoteView(res))), nil
}
