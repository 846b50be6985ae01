package models

import "time"

// Quote holds current-session stats for a ticker. Change and ChangePercent
// are relative to the active window, see quotes.Client.Lookup.
type Quote struct {
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	PreviousClose float64 `json:"previous_close"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Open          float64 `json:"open"`
	Currency      string  `json:"currency,omitempty"` // ISO 4217, as reported by the provider
}

// IsPositive reports whether the change is zero or above.
func (q Quote) IsPositive() bool {
	return q.Change >= 0
}

// HistoricalPoint is one close in a chart series.
type HistoricalPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Display   string    `json:"display"`
	Close     float64   `json:"close"`
}
