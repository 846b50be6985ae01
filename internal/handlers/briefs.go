package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/brief-portal/internal/briefs"
	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/bobmcallan/brief-portal/internal/models"
	"github.com/bobmcallan/brief-portal/internal/present"
)

// BriefSource is the read side of briefs.Store plus a reload trigger.
type BriefSource interface {
	State() briefs.State
	Get(id string) (models.Brief, error)
	Latest() (models.Brief, bool)
	Load(ctx context.Context) error
}

// BriefsHandler serves the brief collection as JSON.
type BriefsHandler struct {
	logger *common.Logger
	store  BriefSource
}

// NewBriefsHandler creates a new briefs API handler.
func NewBriefsHandler(logger *common.Logger, store BriefSource) *BriefsHandler {
	return &BriefsHandler{logger: logger, store: store}
}

type briefListResponse struct {
	Query        string                `json:"query,omitempty"`
	Count        int                   `json:"count"`
	Total        int                   `json:"total"`
	Briefs       []present.ArchiveItem `json:"briefs"`
	EmptyMessage string                `json:"empty_message,omitempty"`
}

// HandleList handles GET /api/briefs?q=.
func (h *BriefsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	st, ok := h.ready(w)
	if !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	filtered := briefs.Filter(st.Briefs, query)

	resp := briefListResponse{
		Query:  query,
		Count:  len(filtered),
		Total:  len(st.Briefs),
		Briefs: present.Archive(filtered, ""),
	}
	if len(filtered) == 0 {
		resp.EmptyMessage = present.EmptyMessage(query)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /api/briefs/{id}.
func (h *BriefsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := h.ready(w); !ok {
		return
	}

	id := PathTail(r, "/api/briefs/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "brief id is required")
		return
	}

	b, err := h.store.Get(id)
	if errors.Is(err, briefs.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "brief not found: "+id)
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	latest, _ := h.store.Latest()
	WriteJSON(w, http.StatusOK, present.NewBriefView(b, latest.ID == b.ID, false))
}

// HandleReload handles POST /api/briefs/reload, re-reading the feed. A plain
// form post (the dashboard's Retry button without script) is redirected back
// to the dashboard whatever the outcome.
func (h *BriefsHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	err := h.store.Load(r.Context())
	if err != nil && h.logger != nil {
		common.FromContext(r.Context(), h.logger).Warn().Str("error", err.Error()).Msg("brief reload failed")
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	st := h.store.State()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"briefs": len(st.Briefs),
	})
}

// ready writes a 503 while the first load is in flight or when the last load
// failed.
func (h *BriefsHandler) ready(w http.ResponseWriter) (briefs.State, bool) {
	st := h.store.State()
	if st.Loading {
		w.Header().Set("Retry-After", "1")
		WriteError(w, http.StatusServiceUnavailable, "briefs are still loading")
		return st, false
	}
	if st.Err != "" {
		WriteError(w, http.StatusServiceUnavailable, st.Err)
		return st, false
	}
	return st, true
}
