package quotes

// chartResponse wraps the v8 chart API response. Numeric fields are pointers
// because the provider sends null for missing samples.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta       `json:"meta"`
	Timestamp  []int64         `json:"timestamp"`
	Indicators chartIndicators `json:"indicators"`
}

type chartMeta struct {
	Symbol               string   `json:"symbol"`
	Currency             string   `json:"currency"`
	RegularMarketPrice   *float64 `json:"regularMarketPrice"`
	ChartPreviousClose   *float64 `json:"chartPreviousClose"`
	RegularMarketDayHigh *float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  *float64 `json:"regularMarketDayLow"`
}

type chartIndicators struct {
	Quote []chartOHLCV `json:"quote"`
}

type chartOHLCV struct {
	Open  []*float64 `json:"open"`
	Close []*float64 `json:"close"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// firstResult returns the single result the chart endpoint sends for one symbol.
func (r *chartResponse) firstResult() (*chartResult, bool) {
	if len(r.Chart.Result) == 0 {
		return nil, false
	}
	return &r.Chart.Result[0], true
}

// valueOr returns *p, or def when p is nil or zero. The provider uses zero
// and null interchangeably for fields it has not filled in yet.
func valueOr(p *float64, def float64) float64 {
	if p == nil || *p == 0 {
		return def
	}
	return *p
}
