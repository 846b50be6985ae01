package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/bobmcallan/brief-portal/internal/present"
	"github.com/bobmcallan/brief-portal/internal/quotes"
)

// QuoteHandler serves price lookups for the ticker modal. Each visitor has
// one quote session; a newer request cancels the visitor's older one.
type QuoteHandler struct {
	logger   *common.Logger
	lookup   quotes.Lookuper
	sessions *quotes.Sessions
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(logger *common.Logger, lookup quotes.Lookuper, sessions *quotes.Sessions) *QuoteHandler {
	if sessions == nil {
		sessions = quotes.NewSessions(0)
	}
	return &QuoteHandler{logger: logger, lookup: lookup, sessions: sessions}
}

// ServeHTTP handles GET /api/quote/{symbol}?window=1M.
func (h *QuoteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := strings.TrimSpace(PathTail(r, "/api/quote/"))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, quotes.ErrEmptySymbol.Error())
		return
	}
	window, err := quotes.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	visitor := VisitorID(w, r)
	res, err := h.sessions.For(visitor).Run(r.Context(), h.lookup, symbol, window)
	switch {
	case err == nil:
		WriteJSON(w, http.StatusOK, present.NewQuoteView(res))
	case errors.Is(err, quotes.ErrSuperseded):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, quotes.ErrEmptySymbol):
		WriteError(w, http.StatusBadRequest, err.Error())
	default:
		if h.logger != nil {
			common.FromContext(r.Context(), h.logger).Warn().Str("symbol", symbol).Str("window", window.String()).Str("error", err.Error()).Msg("quote lookup failed")
		}
		WriteJSON(w, http.StatusBadGateway, map[string]string{
			"status": "error",
			"error":  err.Error(),
			"hint":   quotes.Hint,
		})
	}
}
