package quotes

import (
	"fmt"
	"strings"
)

// Window is the historical span requested for a quote chart.
type Window string

const (
	Intraday   Window = "1D"
	OneWeek    Window = "1W"
	OneMonth   Window = "1M"
	ThreeMonth Window = "3M"
	OneYear    Window = "1Y"
)

// Windows lists the selectable windows in display order.
var Windows = []Window{Intraday, OneWeek, OneMonth, ThreeMonth, OneYear}

// ParseWindow accepts "1D", "1w", etc. An empty string selects Intraday.
func ParseWindow(s string) (Window, error) {
	if strings.TrimSpace(s) == "" {
		return Intraday, nil
	}
	w := Window(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Windows {
		if w == known {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown window %q (want one of 1D, 1W, 1M, 3M, 1Y)", s)
}

// Params returns the provider range and sampling interval for w.
func (w Window) Params() (rangeParam, interval string) {
	switch w {
	case OneWeek:
		return "5d", "1h"
	case OneMonth:
		return "1mo", "1d"
	case ThreeMonth:
		return "3mo", "1d"
	case OneYear:
		return "1y", "1wk"
	default:
		return "1d", "5m"
	}
}

// IsIntraday reports whether w is the shortest window.
func (w Window) IsIntraday() bool {
	return w == Intraday
}

func (w Window) String() string {
	return string(w)
}
