package briefs

import (
	"strings"

	"github.com/bobmcallan/brief-portal/internal/models"
)

// Matches reports whether query occurs, case-insensitively, in any ticker,
// the summary, any insight bullet or any watchlist reason. A blank query
// matches every brief.
func Matches(b models.Brief, query string) bool {
	if strings.TrimSpace(query) == "" {
		return true
	}
	q := strings.ToLower(query)
	contains := func(s string) bool {
		return strings.Contains(strings.ToLower(s), q)
	}

	c := b.Content
	for _, in := range c.Insights {
		if contains(in.Ticker) {
			return true
		}
	}
	for _, w := range c.Watchlist {
		if contains(w.Ticker) {
			return true
		}
	}
	if contains(c.Summary) {
		return true
	}
	for _, in := range c.Insights {
		if contains(in.Bullet) {
			return true
		}
	}
	for _, w := range c.Watchlist {
		if contains(w.Why) {
			return true
		}
	}
	return false
}

// Filter returns the briefs matching query in their original order. The
// input slice is not modified.
func Filter(list []models.Brief, query string) []models.Brief {
	if strings.TrimSpace(query) == "" {
		out := make([]models.Brief, len(list))
		copy(out, list)
		return out
	}
	out := make([]models.Brief, 0, len(list))
	for _, b := range list {
		if Matches(b, query) {
			out = append(out, b)
		}
	}
	return out
}
