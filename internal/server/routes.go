package server

import (
	"encoding/json"
	"net/http"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Pages. "/" also catches unknown paths, which the page handler 404s.
	mux.HandleFunc("/", s.app.PageHandler.ServeDashboard)
	mux.HandleFunc("/about", s.app.PageHandler.ServeAbout)
	mux.HandleFunc("/static/", s.app.PageHandler.StaticFileHandler)

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	// Briefs API. The collection and items are read-only; reload is the
	// only write and it re-reads the feed.
	mux.HandleFunc("/api/briefs", readOnly(s.app.BriefsHandler.HandleList))
	mux.HandleFunc("/api/briefs/reload", postOnly(s.app.BriefsHandler.HandleReload))
	mux.HandleFunc("/api/briefs/", readOnly(s.app.BriefsHandler.HandleGet))

	// Quotes and onboarding
	mux.HandleFunc("/api/quote/", readOnly(s.app.QuoteHandler.ServeHTTP))
	mux.Handle("/api/onboarding", s.app.OnboardingHandler)
	mux.HandleFunc("/api/onboarding/dismiss", postOnly(s.app.OnboardingHandler.HandleDismiss))

	mux.HandleFunc("/api/health", readOnly(s.app.HealthHandler.ServeHTTP))
	mux.HandleFunc("/api/version", readOnly(s.app.VersionHandler.ServeHTTP))

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "error",
		"error":  "no such endpoint: " + r.URL.Path,
	})
}
