package handlers

import (
	"net/http"

	"github.com/bobmcallan/brief-portal/internal/selection"
)

// BriefParam carries the selected brief id in page URLs. The page script
// mirrors it into location.hash and maps hash changes back onto it.
const BriefParam = "brief"

// requestLocation adapts one page request to selection.Location. A request
// is a single snapshot, so there is nothing to subscribe to.
type requestLocation struct {
	fragment string
}

var _ selection.Location = (*requestLocation)(nil)

func newRequestLocation(r *http.Request) *requestLocation {
	return &requestLocation{fragment: r.URL.Query().Get(BriefParam)}
}

func (l *requestLocation) Fragment() string              { return l.fragment }
func (l *requestLocation) SetFragment(id string)         { l.fragment = id }
func (l *requestLocation) Subscribe(func(string)) func() { return func() {} }
