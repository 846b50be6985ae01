// Package quotes looks up current and historical prices for a ticker from a
// chart provider, optionally reached through a relay that echoes the target
// URL's response verbatim.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bobmcallan/brief-portal/internal/cache"
	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/bobmcallan/brief-portal/internal/models"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	maxPayloadBytes = 4 << 20
	intradayLayout  = "Jan 2, 3:04 PM"
	dailyLayout     = "Jan 2"
)

// Result is the outcome of one lookup.
type Result struct {
	Symbol  string                   `json:"symbol"`
	Window  Window                   `json:"window"`
	Quote   models.Quote             `json:"quote"`
	History []models.HistoricalPoint `json:"history"`
}

// Lookuper is the lookup operation, satisfied by *Client.
type Lookuper interface {
	Lookup(ctx context.Context, ticker string, window Window) (*Result, error)
}

// Options configures a Client.
type Options struct {
	ProviderURL       string // e.g. https://query1.finance.yahoo.com/v8/finance
	RelayURL          string // empty calls the provider directly
	Timeout           time.Duration
	RequestsPerMinute int // <= 0 disables limiting
	Burst             int
	Cache             *cache.PayloadCache
	Location          *time.Location // display zone for chart timestamps
	HTTPClient        *http.Client
}

// Client fetches quote data.
type Client struct {
	providerURL string
	relayURL    string
	timeout     time.Duration
	httpClient  *http.Client
	limiter     *rate.Limiter
	cache       *cache.PayloadCache
	loc         *time.Location
	logger      *common.Logger
}

// NewClient creates a quote client.
func NewClient(opts Options, logger *common.Logger) *Client {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	burst := opts.Burst
	if opts.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(opts.RequestsPerMinute) / 60.0)
		if burst <= 0 {
			burst = 1
		}
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		providerURL: strings.TrimRight(opts.ProviderURL, "/"),
		relayURL:    opts.RelayURL,
		timeout:     timeout,
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(limit, burst),
		cache:       opts.Cache,
		loc:         loc,
		logger:      logger,
	}
}

// Lookup returns current stats and the chart series for ticker over window.
//
// Both upstream calls run under one deadline; if either fails the lookup
// fails as a whole, no partial result is returned and any payload cached for
// the symbol is dropped so a retry goes upstream. For every window except
// Intraday the first historical point is dropped and Change/ChangePercent are
// recomputed from the first and last remaining closes, since the session
// price may include after-hours trading that the regular-session closes do not.
func (c *Client) Lookup(ctx context.Context, ticker string, window Window) (*Result, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	if symbol == "" {
		return nil, ErrEmptySymbol
	}
	if window == "" {
		window = Intraday
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	var (
		quote   models.Quote
		history []models.HistoricalPoint
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := c.fetchQuote(gctx, symbol)
		if err != nil {
			return &LookupError{Symbol: symbol, Window: window, Stage: StageQuote, Err: err}
		}
		quote = q
		return nil
	})
	g.Go(func() error {
		h, err := c.fetchHistory(gctx, symbol, window)
		if err != nil {
			return &LookupError{Symbol: symbol, Window: window, Stage: StageHistory, Err: err}
		}
		history = h
		return nil
	})
	if err := g.Wait(); err != nil {
		c.cache.InvalidateSymbol(symbol)
		c.logger.Warn().
			Str("symbol", symbol).
			Str("window", string(window)).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("error", err.Error()).
			Msg("quote lookup failed")
		return nil, err
	}

	if !window.IsIntraday() {
		if len(history) > 1 {
			history = history[1:]
		}
		if len(history) > 0 {
			first := history[0].Close
			last := history[len(history)-1].Close
			quote.Change = last - first
			quote.ChangePercent = percent(quote.Change, first)
		}
	}

	c.logger.Debug().
		Str("symbol", symbol).
		Str("window", string(window)).
		Int("points", len(history)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("quote lookup complete")

	return &Result{Symbol: symbol, Window: window, Quote: quote, History: history}, nil
}

func (c *Client) fetchQuote(ctx context.Context, symbol string) (models.Quote, error) {
	var resp chartResponse
	if err := c.getJSON(ctx, c.chartURL(symbol, "1d", "1d"), &resp); err != nil {
		return models.Quote{}, err
	}
	res, ok := resp.firstResult()
	if !ok {
		return models.Quote{}, fmt.Errorf("%w: no chart result for %s", ErrMalformed, symbol)
	}
	if res.Meta.RegularMarketPrice == nil || res.Meta.ChartPreviousClose == nil {
		return models.Quote{}, fmt.Errorf("%w: missing price fields for %s", ErrMalformed, symbol)
	}

	price := *res.Meta.RegularMarketPrice
	prev := *res.Meta.ChartPreviousClose
	open := price
	if len(res.Indicators.Quote) > 0 && len(res.Indicators.Quote[0].Open) > 0 {
		open = valueOr(res.Indicators.Quote[0].Open[0], price)
	}

	change := price - prev
	return models.Quote{
		Price:         price,
		Change:        change,
		ChangePercent: percent(change, prev),
		PreviousClose: prev,
		High:          valueOr(res.Meta.RegularMarketDayHigh, price),
		Low:           valueOr(res.Meta.RegularMarketDayLow, price),
		Open:          open,
		Currency:      res.Meta.Currency,
	}, nil
}

func (c *Client) fetchHistory(ctx context.Context, symbol string, window Window) ([]models.HistoricalPoint, error) {
	rangeParam, interval := window.Params()

	var resp chartResponse
	if err := c.getJSON(ctx, c.chartURL(symbol, interval, rangeParam), &resp); err != nil {
		return nil, err
	}
	res, ok := resp.firstResult()
	if !ok {
		return nil, fmt.Errorf("%w: no chart result for %s", ErrMalformed, symbol)
	}
	if len(res.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: no price indicators for %s", ErrMalformed, symbol)
	}

	layout := dailyLayout
	if window.IsIntraday() {
		layout = intradayLayout
	}

	closes := res.Indicators.Quote[0].Close
	points := make([]models.HistoricalPoint, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		t := time.Unix(ts, 0).In(c.loc)
		points = append(points, models.HistoricalPoint{
			Timestamp: t,
			Display:   t.Format(layout),
			Close:     *closes[i],
		})
	}
	return points, nil
}

// chartURL returns the URL actually requested, wrapped by the relay if one is set.
func (c *Client) chartURL(symbol, interval, rangeParam string) string {
	target := fmt.Sprintf("%s/chart/%s?interval=%s&range=%s",
		c.providerURL, url.PathEscape(symbol), url.QueryEscape(interval), url.QueryEscape(rangeParam))
	return c.relay(target)
}

func (c *Client) relay(target string) string {
	if c.relayURL == "" {
		return target
	}
	u, err := url.Parse(c.relayURL)
	if err != nil {
		return c.relayURL + "?url=" + url.QueryEscape(target)
	}
	q := u.Query()
	q.Set("url", target)
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) getJSON(ctx context.Context, rawURL string, dest any) error {
	key := cache.MakeKey(rawURL)
	body, ok := c.cache.Get(key)
	if !ok {
		var err error
		body, err = c.get(ctx, rawURL)
		if err != nil {
			return err
		}
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if r, ok := dest.(*chartResponse); ok && r.Chart.Error != nil {
		return fmt.Errorf("provider error %s: %s", r.Chart.Error.Code, r.Chart.Error.Description)
	}

	if !ok {
		c.cache.Set(key, body)
	}
	return nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned %d", resp.StatusCode)
	}
	return body, nil
}

func percent(change, base float64) float64 {
	if base == 0 {
		return 0
	}
	return change / base * 100
}
