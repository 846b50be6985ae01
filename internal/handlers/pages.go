package handlers

import (
	"context"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bobmcallan/brief-portal/internal/briefs"
	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/bobmcallan/brief-portal/internal/config"
	"github.com/bobmcallan/brief-portal/internal/dates"
	"github.com/bobmcallan/brief-portal/internal/interfaces"
	"github.com/bobmcallan/brief-portal/internal/onboarding"
	"github.com/bobmcallan/brief-portal/internal/present"
	"github.com/bobmcallan/brief-portal/internal/quotes"
	"github.com/bobmcallan/brief-portal/internal/selection"
)

// PageHandler serves HTML pages rendered with Go templates.
type PageHandler struct {
	logger    *common.Logger
	templates *template.Template
	devMode   bool
	store     StateSource
	kv        interfaces.KeyValueStorage
}

// NewPageHandler creates a new page handler that loads templates from the pages directory.
// kv may be nil, in which case the onboarding tooltip is never shown.
func NewPageHandler(logger *common.Logger, devMode bool, store StateSource, kv interfaces.KeyValueStorage) *PageHandler {
	pagesDir := FindPagesDir()

	templates := template.Must(template.ParseGlob(filepath.Join(pagesDir, "*.html")))
	template.Must(templates.ParseGlob(filepath.Join(pagesDir, "partials", "*.html")))

	return &PageHandler{
		logger:    logger,
		templates: templates,
		devMode:   devMode,
		store:     store,
		kv:        kv,
	}
}

// FindPagesDir locates the pages directory.
func FindPagesDir() string {
	if dir := os.Getenv("BRIEFS_PAGES_DIR"); dir != "" {
		return dir
	}

	dirs := []string{
		"./pages",
		"../pages",
		"../../pages",
		"../../../pages",
	}

	for _, dir := range dirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			abs, _ := filepath.Abs(dir)
			return abs
		}
	}

	return "."
}

func (h *PageHandler) baseData(page selection.Page) map[string]interface{} {
	return map[string]interface{}{
		"Page":       string(page),
		"DevMode":    h.devMode,
		"Version":    config.GetVersion(),
		"Disclaimer": present.Disclaimer,
		"HeaderDate": dates.FormatDate(dates.LocalDate(time.Now())),
	}
}

// ServeDashboard renders the home page: the selected brief beside the
// filtered archive. ?brief= selects a brief and ?q= filters the archive.
func (h *PageHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	data := h.baseData(selection.PageHome)
	st := h.store.State()
	data["Loading"] = st.Loading
	data["Error"] = st.Err

	if !st.Loading && st.Err == "" {
		query := strings.TrimSpace(r.URL.Query().Get("q"))

		ctrl := selection.New(newRequestLocation(r), nil)
		ctrl.Init(st.Briefs)

		filtered := briefs.Filter(st.Briefs, query)
		data["Query"] = query
		data["Archive"] = present.Archive(filtered, ctrl.SelectedID())
		// Every loaded id, so a fragment naming a brief hidden by the
		// search still resolves in the page script.
		known := make([]string, len(st.Briefs))
		for i, b := range st.Briefs {
			known[i] = b.ID
		}
		data["KnownIDs"] = known
		data["Windows"] = quotes.Windows

		if b, ok := ctrl.Selected(st.Briefs); ok {
			isLatest := len(st.Briefs) > 0 && st.Briefs[0].ID == b.ID
			view := present.NewBriefView(b, isLatest, isLatest && h.tooltipPending(r.Context(), w, r))
			data["Brief"] = view
		} else {
			data["EmptyMessage"] = present.EmptyMessage(query)
		}
	}

	h.render(w, "dashboard.html", data)
}

// ServeAbout renders the informational page.
func (h *PageHandler) ServeAbout(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	h.render(w, "about.html", h.baseData(selection.PageAbout))
}

// tooltipPending reports whether the onboarding tooltip should be rendered
// for this visitor.
func (h *PageHandler) tooltipPending(ctx context.Context, w http.ResponseWriter, r *http.Request) bool {
	if h.kv == nil {
		return false
	}
	seen, err := onboarding.Seen(ctx, h.kv, VisitorID(w, r))
	if err != nil {
		if h.logger != nil {
			common.FromContext(r.Context(), h.logger).Warn().Str("error", err.Error()).Msg("failed to read onboarding flag")
		}
		return false
	}
	return !seen
}

func (h *PageHandler) render(w http.ResponseWriter, name string, data map[string]interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		if h.logger != nil {
			h.logger.Error().Str("template", name).Str("error", err.Error()).Msg("failed to render page")
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// StaticFileHandler serves static files (CSS, JS, images).
func (h *PageHandler) StaticFileHandler(w http.ResponseWriter, r *http.Request) {
	staticDir := filepath.Join(FindPagesDir(), "static")

	path := strings.TrimPrefix(r.URL.Path, "/static/")
	fullPath := filepath.Join(staticDir, filepath.FromSlash(path))

	// Security: prevent directory traversal
	absStaticDir, _ := filepath.Abs(staticDir)
	absFullPath, _ := filepath.Abs(fullPath)
	if !strings.HasPrefix(absFullPath, absStaticDir+string(filepath.Separator)) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, fullPath)
}
