package handlers

import (
	"net/http"
	"time"

	"github.com/bobmcallan/brief-portal/internal/briefs"
	"github.com/bobmcallan/brief-portal/internal/common"
)

// StateSource reports the brief store's load state.
type StateSource interface {
	State() briefs.State
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger *common.Logger
	store  StateSource
}

// NewHealthHandler creates a new health handler. store may be nil.
func NewHealthHandler(logger *common.Logger, store StateSource) *HealthHandler {
	return &HealthHandler{logger: logger, store: store}
}

// ServeHTTP handles GET /api/health. The portal stays healthy when the feed
// fails to load; the failure is reported in the body.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	body := map[string]interface{}{"status": "ok"}
	if h.store != nil {
		st := h.store.State()
		feed := map[string]interface{}{
			"loading": st.Loading,
			"briefs":  len(st.Briefs),
		}
		if st.Err != "" {
			feed["error"] = st.Err
		}
		if !st.LoadedAt.IsZero() {
			feed["loaded_at"] = st.LoadedAt.UTC().Format(time.RFC3339)
		}
		body["feed"] = feed
	}

	WriteJSON(w, http.StatusOK, body)
}
