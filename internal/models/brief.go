// Package models defines data structures for the brief portal.
package models

import (
	"encoding/json"
	"regexp"
)

// Brief is one day's synthesized market-insight document.
type Brief struct {
	ID      string       `json:"id"`
	Date    string       `json:"date"` // ISO-8601 calendar date, e.g. "2024-10-12"
	Subject string       `json:"subject"`
	Content BriefContent `json:"json"`
	HTML    string       `json:"html,omitempty"`
	Text    string       `json:"text,omitempty"`
}

// UnmarshalJSON accepts the feed's "json" key for content and "content" as an alias.
func (b *Brief) UnmarshalJSON(data []byte) error {
	type briefAlias Brief
	var raw struct {
		briefAlias
		Alt *BriefContent `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Brief(raw.briefAlias)
	if raw.Alt != nil && b.Content.isZero() {
		b.Content = *raw.Alt
	}
	return nil
}

// BriefContent holds the structured body of a brief.
type BriefContent struct {
	Summary   string          `json:"summary"`
	Insights  []Insight       `json:"insights"`
	Watchlist []WatchlistItem `json:"watchlist"`
	Sources   []Source        `json:"sources"`
}

func (c BriefContent) isZero() bool {
	return c.Summary == "" && len(c.Insights) == 0 && len(c.Watchlist) == 0 && len(c.Sources) == 0
}

// Insight is a ticker-level observation with a conviction label.
type Insight struct {
	Ticker         string `json:"ticker"`
	Bullet         string `json:"bullet"`
	Horizon        string `json:"horizon"`    // short-term, long-term, uncertain
	Conviction     string `json:"conviction"` // low, medium, high
	Recommendation string `json:"recommendation"`
}

// WatchlistItem is a ticker worth following, without a conviction label.
type WatchlistItem struct {
	Ticker         string `json:"ticker"`
	Why            string `json:"why"`
	Horizon        string `json:"horizon"`
	Recommendation string `json:"recommendation"`
}

// Source is a social-media post the brief was derived from.
type Source struct {
	URL  string `json:"url"`
	Note string `json:"note"`
}

var statusSuffix = regexp.MustCompile(`/status/\d+.*$`)

// ProfileURL returns the author's profile link, dropping any post path.
func (s Source) ProfileURL() string {
	return statusSuffix.ReplaceAllString(s.URL, "")
}

// EntryKind discriminates the two card shapes.
type EntryKind int

const (
	KindInsight EntryKind = iota
	KindWatchlist
)

func (k EntryKind) String() string {
	if k == KindWatchlist {
		return "watchlist"
	}
	return "insight"
}

// Entry is either an Insight or a WatchlistItem. Exactly one pointer is set,
// matching Kind.
type Entry struct {
	Kind      EntryKind
	Insight   *Insight
	Watchlist *WatchlistItem
}

// Ticker returns the entry's symbol.
func (e Entry) Ticker() string {
	if e.Kind == KindWatchlist {
		return e.Watchlist.Ticker
	}
	return e.Insight.Ticker
}

// Text returns the bullet for insights and the reason for watchlist items.
func (e Entry) Text() string {
	if e.Kind == KindWatchlist {
		return e.Watchlist.Why
	}
	return e.Insight.Bullet
}

// Horizon returns the entry's time-frame label.
func (e Entry) Horizon() string {
	if e.Kind == KindWatchlist {
		return e.Watchlist.Horizon
	}
	return e.Insight.Horizon
}

// Conviction returns the conviction label; watchlist items have none.
func (e Entry) Conviction() string {
	if e.Kind == KindWatchlist {
		return ""
	}
	return e.Insight.Conviction
}

// Recommendation returns the entry's recommendation text.
func (e Entry) Recommendation() string {
	if e.Kind == KindWatchlist {
		return e.Watchlist.Recommendation
	}
	return e.Insight.Recommendation
}

// InsightEntries wraps the insights as tagged entries.
func (c BriefContent) InsightEntries() []Entry {
	out := make([]Entry, len(c.Insights))
	for i := range c.Insights {
		out[i] = Entry{Kind: KindInsight, Insight: &c.Insights[i]}
	}
	return out
}

// WatchlistEntries wraps the watchlist as tagged entries.
func (c BriefContent) WatchlistEntries() []Entry {
	out := make([]Entry, len(c.Watchlist))
	for i := range c.Watchlist {
		out[i] = Entry{Kind: KindWatchlist, Watchlist: &c.Watchlist[i]}
	}
	return out
}

// Entries returns insights followed by watchlist items.
func (c BriefContent) Entries() []Entry {
	return append(c.InsightEntries(), c.WatchlistEntries()...)
}
