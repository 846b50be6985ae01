package quotes

import (
	"errors"
	"fmt"
)

// Hint is shown alongside any lookup failure.
const Hint = "This ticker may not be available or the API limit has been reached."

var (
	// ErrEmptySymbol is returned when the ticker is blank.
	ErrEmptySymbol = errors.New("ticker symbol is required")
	// ErrMalformed marks a payload that does not have the expected shape.
	ErrMalformed = errors.New("unexpected response format")
	// ErrSuperseded marks a lookup whose result was discarded for a newer one.
	ErrSuperseded = errors.New("lookup superseded by a newer request")
)

// Stage names the upstream call that failed.
type Stage string

const (
	StageQuote   Stage = "quote"
	StageHistory Stage = "history"
)

// LookupError describes a failed lookup. The whole lookup fails when either
// upstream call does.
type LookupError struct {
	Symbol string
	Window Window
	Stage  Stage
	Err    error
}

func (e *LookupError) Error() string {
	what := "stock data"
	if e.Stage == StageHistory {
		what = "historical data"
	}
	return fmt.Sprintf("failed to fetch %s for %s (%s): %v", what, e.Symbol, e.Window, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
