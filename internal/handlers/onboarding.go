package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/bobmcallan/brief-portal/internal/interfaces"
	"github.com/bobmcallan/brief-portal/internal/onboarding"
)

// OnboardingHandler exposes the ticker tooltip state. The page script runs
// the display and detach delays; the server owns the persisted flag.
type OnboardingHandler struct {
	logger      *common.Logger
	kv          interfaces.KeyValueStorage
	showDelay   time.Duration
	detachDelay time.Duration
}

// NewOnboardingHandler creates a new onboarding handler.
func NewOnboardingHandler(logger *common.Logger, kv interfaces.KeyValueStorage, showDelay, detachDelay time.Duration) *OnboardingHandler {
	return &OnboardingHandler{logger: logger, kv: kv, showDelay: showDelay, detachDelay: detachDelay}
}

type onboardingResponse struct {
	State         onboarding.Status `json:"state"`
	Show          bool              `json:"show"`
	ShowDelayMs   int64             `json:"show_delay_ms"`
	DetachDelayMs int64             `json:"detach_delay_ms"`
}

// clientTimer is a stopped timer; the delay itself runs in the browser.
type clientTimer struct{}

func (clientTimer) Stop() bool { return false }

func clientAfterFunc(time.Duration, func()) onboarding.Timer { return clientTimer{} }

func (h *OnboardingHandler) tooltip(visitor string) *onboarding.Tooltip {
	return onboarding.NewTooltip(h.kv, visitor, onboarding.Options{
		ShowDelay:   h.showDelay,
		DetachDelay: h.detachDelay,
		AfterFunc:   clientAfterFunc,
	}, h.logger)
}

func (h *OnboardingHandler) respond(w http.ResponseWriter, st onboarding.Status) {
	WriteJSON(w, http.StatusOK, onboardingResponse{
		State:         st,
		Show:          st == onboarding.StatusPending || st == onboarding.StatusVisible,
		ShowDelayMs:   h.showDelay.Milliseconds(),
		DetachDelayMs: h.detachDelay.Milliseconds(),
	})
}

// ServeHTTP routes /api/onboarding: GET returns the state, DELETE clears the
// visitor's flag.
func (h *OnboardingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.handleState(w, r)
	case http.MethodDelete:
		h.handleReset(w, r)
	default:
		RequireMethod(w, r, http.MethodGet)
	}
}

func (h *OnboardingHandler) handleState(w http.ResponseWriter, r *http.Request) {
	t := h.tooltip(VisitorID(w, r))
	if err := t.Mount(r.Context()); err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, t.State())
}

func (h *OnboardingHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := onboarding.Reset(r.Context(), h.kv, VisitorID(w, r)); err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, onboarding.StatusUnseen)
}

type dismissRequest struct {
	Reason string `json:"reason"` // "close" or "ticker"
}

// HandleDismiss handles POST /api/onboarding/dismiss.
func (h *OnboardingHandler) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req dismissRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t := h.tooltip(VisitorID(w, r))
	if err := t.Mount(r.Context()); err != nil {
		h.fail(w, err)
		return
	}

	var err error
	if req.Reason == "ticker" {
		err = t.DismissOnTickerClick(r.Context())
	} else {
		err = t.Dismiss(r.Context())
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, t.State())
}

func (h *OnboardingHandler) fail(w http.ResponseWriter, err error) {
	if h.logger != nil {
		h.logger.Error().Str("error", err.Error()).Msg("onboarding storage failure")
	}
	WriteError(w, http.StatusInternalServerError, "onboarding state unavailable")
}
