package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bobmcallan/brief-portal/internal/briefs"
	"github.com/bobmcallan/brief-portal/internal/interfaces"
	"github.com/bobmcallan/brief-portal/internal/models"
	"github.com/bobmcallan/brief-portal/internal/quotes"
)

// --- fakes ---

type fakeStore struct {
	state   briefs.State
	loadErr error
	loads   int
}

func newFakeStore(list ...models.Brief) *fakeStore {
	return &fakeStore{state: briefs.State{Briefs: list}}
}

func (f *fakeStore) State() briefs.State { return f.state }

func (f *fakeStore) Get(id string) (models.Brief, error) {
	for _, b := range f.state.Briefs {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Brief{}, briefs.ErrNotFound
}

func (f *fakeStore) Latest() (models.Brief, bool) {
	if len(f.state.Briefs) == 0 {
		return models.Brief{}, false
	}
	return f.state.Briefs[0], true
}

func (f *fakeStore) Load(context.Context) error {
	f.loads++
	return f.loadErr
}

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", interfaces.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) List(_ context.Context, prefix string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]string{}
	for k, v := range m.data {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out, nil
}

type fakeLookup struct {
	res *quotes.Result
	err error
}

func (f *fakeLookup) Lookup(_ context.Context, ticker string, window quotes.Window) (*quotes.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	r := *f.res
	r.Symbol = strings.ToUpper(ticker)
	r.Window = window
	return &r, nil
}

func sampleBriefs() []models.Brief {
	return []models.Brief{
		{ID: "b2", Date: "2024-03-02", Subject: "Energy day", Content: models.BriefContent{
			Summary:  "Oil moved higher.",
			Insights: []models.Insight{{Ticker: "XOM", Bullet: "Upstream strength", Conviction: "high"}},
		}},
		{ID: "b1", Date: "2024-03-01", Subject: "Chip day", Content: models.BriefContent{
			Summary:   "Semis rallied.",
			Insights:  []models.Insight{{Ticker: "NVDA", Bullet: "Beat", Conviction: "medium"}},
			Watchlist: []models.WatchlistItem{{Ticker: "AMD", Why: "Catch-up"}},
		}},
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to unmarshal response: %v (%s)", err, w.Body.String())
	}
}

// --- health / version / helpers ---

func TestHealthHandler_ReturnsOK(t *testing.T) {
	handler := NewHealthHandler(nil, nil)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	var body map[string]interface{}
	decode(t, w, &body)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestHealthHandler_ReportsFeedFailure(t *testing.T) {
	store := newFakeStore()
	store.state.Err = "feed returned 500"
	handler := NewHealthHandler(nil, store)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("feed failure must not fail health, got %d", w.Code)
	}
	var body struct {
		Feed map[string]interface{} `json:"feed"`
	}
	decode(t, w, &body)
	if body.Feed["error"] != "feed returned 500" {
		t.Errorf("feed = %v", body.Feed)
	}
}

func TestHealthHandler_RejectsNonGET(t *testing.T) {
	handler := NewHealthHandler(nil, nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/api/health", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestVersionHandler_ReturnsJSON(t *testing.T) {
	handler := NewVersionHandler(nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/version", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}
	var body map[string]string
	decode(t, w, &body)
	for _, k := range []string{"version", "build", "git_commit"} {
		if _, ok := body[k]; !ok {
			t.Errorf("expected %s field in response", k)
		}
	}
}

func TestRequireMethod(t *testing.T) {
	w := httptest.NewRecorder()
	if !RequireMethod(w, httptest.NewRequest("HEAD", "/x", nil), "GET") {
		t.Error("HEAD should satisfy GET")
	}

	w = httptest.NewRecorder()
	if RequireMethod(w, httptest.NewRequest("POST", "/x", nil), "GET") {
		t.Error("POST should not satisfy GET")
	}
	if w.Code != http.StatusMethodNotAllowed || w.Header().Get("Allow") != "GET" {
		t.Errorf("got %d allow=%q", w.Code, w.Header().Get("Allow"))
	}
}

func TestPathTail(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"/api/briefs/abc", "abc"},
		{"/api/briefs/", ""},
		{"/api/briefs/a/b", ""},
		{"/other/abc", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.path, nil)
		if got := PathTail(r, "/api/briefs/"); got != tt.want {
			t.Errorf("PathTail(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusTeapot, "nope")

	var body map[string]string
	decode(t, w, &body)
	if w.Code != http.StatusTeapot || body["status"] != "error" || body["error"] != "nope" {
		t.Errorf("got %d %v", w.Code, body)
	}
}

// --- briefs API ---

func TestBriefsHandler_List(t *testing.T) {
	h := NewBriefsHandler(nil, newFakeStore(sampleBriefs()...))

	w := httptest.NewRecorder()
	h.HandleList(w, httptest.NewRequest("GET", "/api/briefs", nil))
	var all briefListResponse
	decode(t, w, &all)
	if all.Count != 2 || all.Total != 2 || all.Briefs[0].ID != "b2" {
		t.Errorf("unexpected list %+v", all)
	}
	if all.Briefs[0].DisplayDate != "March 2, 2024" {
		t.Errorf("display date = %q", all.Briefs[0].DisplayDate)
	}

	w = httptest.NewRecorder()
	h.HandleList(w, httptest.NewRequest("GET", "/api/briefs?q=amd", nil))
	var filtered briefListResponse
	decode(t, w, &filtered)
	if filtered.Count != 1 || filtered.Briefs[0].ID != "b1" {
		t.Errorf("unexpected filtered list %+v", filtered)
	}

	w = httptest.NewRecorder()
	h.HandleList(w, httptest.NewRequest("GET", "/api/briefs?q=tsla", nil))
	var none briefListResponse
	decode(t, w, &none)
	if none.Count != 0 || none.EmptyMessage != `No briefs found matching "tsla"` {
		t.Errorf("unexpected empty list %+v", none)
	}
}

func TestBriefsHandler_LoadingAndError(t *testing.T) {
	store := newFakeStore()
	store.state.Loading = true
	h := NewBriefsHandler(nil, store)

	w := httptest.NewRecorder()
	h.HandleList(w, httptest.NewRequest("GET", "/api/briefs", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("loading: expected 503, got %d", w.Code)
	}

	store.state = briefs.State{Err: "feed returned 404"}
	w = httptest.NewRecorder()
	h.HandleList(w, httptest.NewRequest("GET", "/api/briefs", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("error: expected 503, got %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["error"] != "feed returned 404" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestBriefsHandler_Get(t *testing.T) {
	h := NewBriefsHandler(nil, newFakeStore(sampleBriefs()...))

	w := httptest.NewRecorder()
	h.HandleGet(w, httptest.NewRequest("GET", "/api/briefs/b1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]interface{}
	decode(t, w, &body)
	if body["id"] != "b1" || body["is_latest"] != false {
		t.Errorf("unexpected brief %v", body)
	}

	w = httptest.NewRecorder()
	h.HandleGet(w, httptest.NewRequest("GET", "/api/briefs/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestBriefsHandler_Reload(t *testing.T) {
	store := newFakeStore(sampleBriefs()...)
	h := NewBriefsHandler(nil, store)

	w := httptest.NewRecorder()
	h.HandleReload(w, httptest.NewRequest("GET", "/api/briefs/reload", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET reload: expected 405, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.HandleReload(w, httptest.NewRequest("POST", "/api/briefs/reload", nil))
	if w.Code != http.StatusOK || store.loads != 1 {
		t.Errorf("reload: got %d loads=%d", w.Code, store.loads)
	}

	store.loadErr = errors.New("feed down")
	w = httptest.NewRecorder()
	h.HandleReload(w, httptest.NewRequest("POST", "/api/briefs/reload", nil))
	if w.Code != http.StatusBadGateway {
		t.Errorf("failed reload: expected 502, got %d", w.Code)
	}

	req := httptest.NewRequest("POST", "/api/briefs/reload", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	h.HandleReload(w, req)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Errorf("form reload: got %d location=%q", w.Code, w.Header().Get("Location"))
	}
}

// --- quote API ---

func TestQuoteHandler_Success(t *testing.T) {
	lookup := &fakeLookup{res: &quotes.Result{
		Quote:   models.Quote{Price: 101, Change: 1, ChangePercent: 1, PreviousClose: 100},
		History: []models.HistoricalPoint{{Display: "Mar 1", Close: 100}, {Display: "Mar 2", Close: 101}},
	}}
	h := NewQuoteHandler(nil, lookup, nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/quote/aapl?window=1m", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Symbol   string `json:"symbol"`
		Window   string `json:"window"`
		Price    string `json:"price"`
		Positive bool   `json:"positive"`
		Points   []struct {
			Label string `json:"label"`
		} `json:"points"`
	}
	decode(t, w, &body)
	if body.Symbol != "AAPL" || body.Window != "1M" || body.Price != "$101.00" || !body.Positive || len(body.Points) != 2 {
		t.Errorf("unexpected body %+v", body)
	}

	var visitor bool
	for _, c := range w.Result().Cookies() {
		if c.Name == VisitorCookie {
			visitor = true
		}
	}
	if !visitor {
		t.Error("expected a visitor cookie to be issued")
	}
}

func TestQuoteHandler_BadInput(t *testing.T) {
	h := NewQuoteHandler(nil, &fakeLookup{res: &quotes.Result{}}, nil)

	for _, path := range []string{"/api/quote/", "/api/quote/AAPL?window=5Y"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestQuoteHandler_LookupFailure(t *testing.T) {
	lerr := &quotes.LookupError{Symbol: "ZZZZ", Window: quotes.Intraday, Stage: quotes.StageQuote, Err: errors.New("upstream returned 404")}
	h := NewQuoteHandler(nil, &fakeLookup{err: lerr}, nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/quote/ZZZZ", nil))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["hint"] != quotes.Hint || !strings.Contains(body["error"], "ZZZZ") {
		t.Errorf("unexpected body %v", body)
	}
}

// --- onboarding API ---

func TestOnboardingHandler_Lifecycle(t *testing.T) {
	kv := newMemKV()
	h := NewOnboardingHandler(nil, kv, 1000*1e6, 300*1e6)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/onboarding", nil))
	var first onboardingResponse
	decode(t, w, &first)
	if !first.Show || first.ShowDelayMs != 1000 || first.DetachDelayMs != 300 {
		t.Errorf("unexpected first state %+v", first)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected visitor cookie")
	}

	req := httptest.NewRequest("POST", "/api/onboarding/dismiss", strings.NewReader(`{"reason":"ticker"}`))
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	h.HandleDismiss(w, req)
	var dismissed onboardingResponse
	decode(t, w, &dismissed)
	if dismissed.Show || dismissed.State != "dismissed" {
		t.Errorf("unexpected dismissed state %+v", dismissed)
	}
	if kv.data["onboarding:"+cookies[0].Value+":ticker_tooltip_seen"] != "true" {
		t.Errorf("flag not persisted: %v", kv.data)
	}

	req = httptest.NewRequest("GET", "/api/onboarding", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var again onboardingResponse
	decode(t, w, &again)
	if again.Show {
		t.Error("seen tooltip must not show again")
	}

	req = httptest.NewRequest("DELETE", "/api/onboarding", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if len(kv.data) != 0 {
		t.Errorf("reset should clear the flag, got %v", kv.data)
	}
}

func TestOnboardingHandler_DismissEmptyBody(t *testing.T) {
	h := NewOnboardingHandler(nil, newMemKV(), 0, 0)

	w := httptest.NewRecorder()
	h.HandleDismiss(w, httptest.NewRequest("POST", "/api/onboarding/dismiss", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.HandleDismiss(w, httptest.NewRequest("POST", "/api/onboarding/dismiss", strings.NewReader("{bad")))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestVisitorID_ReusesValidCookie(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"})
	w := httptest.NewRecorder()
	if got := VisitorID(w, req); got != "6ba7b810-9dad-11d1-80b4-00c04fd430c8" {
		t.Errorf("VisitorID = %q", got)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("valid cookie should not be reissued")
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: "not-a-uuid"})
	w = httptest.NewRecorder()
	if got := VisitorID(w, req); got == "not-a-uuid" {
		t.Error("invalid cookie should be replaced")
	}
}
