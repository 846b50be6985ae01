package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bobmcallan/brief-portal/internal/cache"
)

// fakeProvider serves v8 chart payloads. quote answers range=1d&interval=1d;
// history answers everything else.
type fakeProvider struct {
	quote     map[string]any
	history   map[string]any
	status    int
	histFail  atomic.Int32
	delay     time.Duration
	calls     atomic.Int32
	mu        sync.Mutex
	lastPaths []string
}

func (f *fakeProvider) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lastPaths...)
}

func (f *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-r.Context().Done():
			return
		}
	}
	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	q := r.URL.Query()
	if q.Get("range") == "1d" && q.Get("interval") == "1d" {
		json.NewEncoder(w).Encode(f.quote)
		return
	}
	if code := f.histFail.Load(); code != 0 {
		w.WriteHeader(int(code))
		return
	}
	json.NewEncoder(w).Encode(f.history)
}

func f64(v float64) *float64 { return &v }

func quotePayload(price, prev float64, high, low, open *float64) map[string]any {
	return map[string]any{
		"chart": map[string]any{
			"result": []any{map[string]any{
				"meta": map[string]any{
					"symbol":               "AAPL",
					"regularMarketPrice":   price,
					"chartPreviousClose":   prev,
					"regularMarketDayHigh": high,
					"regularMarketDayLow":  low,
				},
				"timestamp":  []int64{1709300000},
				"indicators": map[string]any{"quote": []any{map[string]any{"open": []*float64{open}, "close": []*float64{f64(price)}}}},
			}},
			"error": nil,
		},
	}
}

func historyPayload(ts []int64, closes []*float64) map[string]any {
	return map[string]any{
		"chart": map[string]any{
			"result": []any{map[string]any{
				"meta":       map[string]any{"symbol": "AAPL"},
				"timestamp":  ts,
				"indicators": map[string]any{"quote": []any{map[string]any{"close": closes}}},
			}},
			"error": nil,
		},
	}
}

func dailySeries(n int, start float64) ([]int64, []*float64) {
	base := time.Date(2024, 2, 1, 21, 0, 0, 0, time.UTC)
	ts := make([]int64, n)
	closes := make([]*float64, n)
	for i := 0; i < n; i++ {
		ts[i] = base.AddDate(0, 0, i).Unix()
		closes[i] = f64(start + float64(i))
	}
	return ts, closes
}

func newTestClient(t *testing.T, fp *fakeProvider, relay bool) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(fp)
	t.Cleanup(srv.Close)

	opts := Options{
		ProviderURL: srv.URL + "/v8/finance",
		Timeout:     2 * time.Second,
		Location:    time.UTC,
	}
	if relay {
		mux := http.NewServeMux()
		mux.HandleFunc("/raw", func(w http.ResponseWriter, r *http.Request) {
			target := r.URL.Query().Get("url")
			u, err := url.Parse(target)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			fp.mu.Lock()
			fp.lastPaths = append(fp.lastPaths, u.Path)
			fp.mu.Unlock()
			r2 := r.Clone(r.Context())
			r2.URL = u
			fp.ServeHTTP(w, r2)
		})
		rs := httptest.NewServer(mux)
		t.Cleanup(rs.Close)
		opts.RelayURL = rs.URL + "/raw"
	}
	return NewClient(opts, nil), srv
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLookup_IntradayQuoteStats(t *testing.T) {
	ts := []int64{
		time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC).Unix(),
		time.Date(2024, 3, 1, 14, 35, 0, 0, time.UTC).Unix(),
	}
	fp := &fakeProvider{
		quote:   quotePayload(110, 100, f64(112), f64(99), f64(101)),
		history: historyPayload(ts, []*float64{f64(100.5), f64(101)}),
	}
	c, _ := newTestClient(t, fp, false)

	res, err := c.Lookup(context.Background(), "aapl", Intraday)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if res.Symbol != "AAPL" {
		t.Errorf("symbol = %q, want AAPL", res.Symbol)
	}
	q := res.Quote
	if q.Price != 110 || q.PreviousClose != 100 || q.High != 112 || q.Low != 99 || q.Open != 101 {
		t.Errorf("unexpected quote %+v", q)
	}
	if !approx(q.Change, 10) || !approx(q.ChangePercent, 10) {
		t.Errorf("change = %v (%v%%), want 10 (10%%)", q.Change, q.ChangePercent)
	}
	if len(res.History) != 2 {
		t.Fatalf("intraday history must not be trimmed, got %d points", len(res.History))
	}
	if res.History[0].Display != "Mar 1, 2:30 PM" {
		t.Errorf("display = %q", res.History[0].Display)
	}
}

func TestLookup_MissingStatsDefaultToPrice(t *testing.T) {
	fp := &fakeProvider{
		quote:   quotePayload(50, 0, nil, f64(0), nil),
		history: historyPayload(nil, nil),
	}
	c, _ := newTestClient(t, fp, false)

	res, err := c.Lookup(context.Background(), "XYZ", Intraday)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	q := res.Quote
	if q.High != 50 || q.Low != 50 || q.Open != 50 {
		t.Errorf("high/low/open should default to price, got %+v", q)
	}
	if q.ChangePercent != 0 {
		t.Errorf("zero previous close must give 0%%, got %v", q.ChangePercent)
	}
	if len(res.History) != 0 {
		t.Errorf("expected empty history, got %d", len(res.History))
	}
}

func TestLookup_OneMonthTrimsFirstPointAndRecomputesChange(t *testing.T) {
	ts, closes := dailySeries(22, 180)
	fp := &fakeProvider{
		quote:   quotePayload(250, 200, nil, nil, nil),
		history: historyPayload(ts, closes),
	}
	c, _ := newTestClient(t, fp, false)

	res, err := c.Lookup(context.Background(), "AAPL", OneMonth)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(res.History) != 21 {
		t.Fatalf("expected 21 charted points, got %d", len(res.History))
	}
	// point[1] and point[21] of the raw series
	first, last := *closes[1], *closes[21]
	if res.History[0].Close != first {
		t.Errorf("first charted close = %v, want %v", res.History[0].Close, first)
	}
	if !approx(res.Quote.Change, last-first) {
		t.Errorf("change = %v, want %v", res.Quote.Change, last-first)
	}
	if !approx(res.Quote.ChangePercent, (last-first)/first*100) {
		t.Errorf("percent = %v", res.Quote.ChangePercent)
	}
	if res.History[0].Display != "Feb 2" {
		t.Errorf("display = %q, want Feb 2", res.History[0].Display)
	}
	// price still comes from the quote call
	if res.Quote.Price != 250 {
		t.Errorf("price = %v", res.Quote.Price)
	}
}

func TestLookup_SinglePointIsKept(t *testing.T) {
	ts, closes := dailySeries(1, 10)
	fp := &fakeProvider{
		quote:   quotePayload(12, 11, nil, nil, nil),
		history: historyPayload(ts, closes),
	}
	c, _ := newTestClient(t, fp, false)

	res, err := c.Lookup(context.Background(), "AAPL", OneYear)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(res.History) != 1 {
		t.Fatalf("expected 1 point, got %d", len(res.History))
	}
	if res.Quote.Change != 0 {
		t.Errorf("single point change = %v, want 0", res.Quote.Change)
	}
}

func TestLookup_NullClosesAreDropped(t *testing.T) {
	ts, closes := dailySeries(5, 10)
	closes[2] = nil
	fp := &fakeProvider{
		quote:   quotePayload(12, 11, nil, nil, nil),
		history: historyPayload(ts, closes),
	}
	c, _ := newTestClient(t, fp, false)

	res, err := c.Lookup(context.Background(), "AAPL", OneWeek)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	// 5 raw, 1 null, first trimmed
	if len(res.History) != 3 {
		t.Fatalf("expected 3 points, got %d", len(res.History))
	}
	for _, p := range res.History {
		if p.Close == 12 {
			t.Error("null close leaked into history")
		}
	}
}

func TestLookup_ThroughRelay(t *testing.T) {
	ts, closes := dailySeries(3, 10)
	fp := &fakeProvider{
		quote:   quotePayload(12, 11, nil, nil, nil),
		history: historyPayload(ts, closes),
	}
	c, _ := newTestClient(t, fp, true)

	if _, err := c.Lookup(context.Background(), "brk.b", ThreeMonth); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	paths := fp.paths()
	if len(paths) != 2 {
		t.Fatalf("expected 2 relayed calls, got %d", len(paths))
	}
	for _, p := range paths {
		if p != "/v8/finance/chart/BRK.B" {
			t.Errorf("relayed path = %q", p)
		}
	}
}

func TestLookup_FailureFailsWholeLookup(t *testing.T) {
	fp := &fakeProvider{status: http.StatusTooManyRequests}
	c, _ := newTestClient(t, fp, false)

	res, err := c.Lookup(context.Background(), "AAPL", OneMonth)
	if err == nil {
		t.Fatal("expected error")
	}
	if res != nil {
		t.Error("no partial result may be returned")
	}
	var le *LookupError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LookupError, got %T", err)
	}
	if le.Symbol != "AAPL" {
		t.Errorf("symbol = %q", le.Symbol)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry upstream status: %v", err)
	}
}

func TestLookup_MalformedPayload(t *testing.T) {
	fp := &fakeProvider{
		quote:   map[string]any{"chart": map[string]any{"result": []any{}}},
		history: historyPayload(nil, nil),
	}
	c, _ := newTestClient(t, fp, false)

	_, err := c.Lookup(context.Background(), "AAPL", Intraday)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestLookup_ProviderErrorObject(t *testing.T) {
	notFound := map[string]any{"chart": map[string]any{
		"result": nil,
		"error":  map[string]any{"code": "Not Found", "description": "No data found, symbol may be delisted"},
	}}
	fp := &fakeProvider{quote: notFound, history: notFound}
	c, _ := newTestClient(t, fp, false)

	_, err := c.Lookup(context.Background(), "ZZZZ", Intraday)
	if err == nil || !strings.Contains(err.Error(), "delisted") {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestLookup_Timeout(t *testing.T) {
	fp := &fakeProvider{delay: time.Second}
	srv := httptest.NewServer(fp)
	defer srv.Close()
	c := NewClient(Options{
		ProviderURL: srv.URL,
		Timeout:     50 * time.Millisecond,
		HTTPClient:  &http.Client{},
	}, nil)

	start := time.Now()
	_, err := c.Lookup(context.Background(), "AAPL", Intraday)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded in chain, got %v", err)
	}
	if time.Since(start) > 900*time.Millisecond {
		t.Error("lookup did not respect its timeout")
	}
}

func TestLookup_EmptySymbol(t *testing.T) {
	c := NewClient(Options{ProviderURL: "http://127.0.0.1:0"}, nil)
	if _, err := c.Lookup(context.Background(), "  ", Intraday); !errors.Is(err, ErrEmptySymbol) {
		t.Fatalf("expected ErrEmptySymbol, got %v", err)
	}
}

func TestLookup_UsesPayloadCache(t *testing.T) {
	ts, closes := dailySeries(3, 10)
	fp := &fakeProvider{
		quote:   quotePayload(12, 11, nil, nil, nil),
		history: historyPayload(ts, closes),
	}
	srv := httptest.NewServer(fp)
	defer srv.Close()
	c := NewClient(Options{ProviderURL: srv.URL, Cache: cache.New(time.Minute, 16)}, nil)

	for i := 0; i < 3; i++ {
		if _, err := c.Lookup(context.Background(), "AAPL", OneMonth); err != nil {
			t.Fatalf("Lookup %d: %v", i, err)
		}
	}
	if got := fp.calls.Load(); got != 2 {
		t.Errorf("expected 2 upstream calls with caching, got %d", got)
	}
}

func TestLookupError_Message(t *testing.T) {
	err := &LookupError{Symbol: "AAPL", Window: OneMonth, Stage: StageHistory, Err: fmt.Errorf("boom")}
	if !strings.Contains(err.Error(), "historical data for AAPL (1M)") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestLookup_FailureDropsCachedPayloads(t *testing.T) {
	ts, closes := dailySeries(3, 10)
	fp := &fakeProvider{
		quote:   quotePayload(12, 11, nil, nil, nil),
		history: historyPayload(ts, closes),
	}
	fp.histFail.Store(http.StatusBadGateway)
	srv := httptest.NewServer(fp)
	defer srv.Close()
	pc := cache.New(time.Minute, 16)
	c := NewClient(Options{ProviderURL: srv.URL, Cache: pc}, nil)

	if _, err := c.Lookup(context.Background(), "AAPL", OneMonth); err == nil {
		t.Fatal("expected history failure to fail the lookup")
	}
	if pc.Len() != 0 {
		t.Errorf("expected quote payload dropped after failed lookup, cache len=%d", pc.Len())
	}

	fp.histFail.Store(0)
	before := fp.calls.Load()
	if _, err := c.Lookup(context.Background(), "AAPL", OneMonth); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := fp.calls.Load() - before; got != 2 {
		t.Errorf("expected retry to refetch both payloads, got %d upstream calls", got)
	}
	if pc.Len() != 2 {
		t.Errorf("expected both payloads cached after success, len=%d", pc.Len())
	}
}
