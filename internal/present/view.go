// Package present turns briefs and quotes into view models for the HTML
// pages, the JSON API and the command line.
package present

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/bobmcallan/brief-portal/internal/dates"
	"github.com/bobmcallan/brief-portal/internal/models"
	"github.com/bobmcallan/brief-portal/internal/quotes"
)

// Disclaimer is shown beneath every brief.
const Disclaimer = "Note: This brief is synthesized from social posts. It is not investment advice."

// convictionColors maps a lower-cased conviction level to its chart colour.
var convictionColors = map[string]string{
	"high":   "#10b981",
	"medium": "#f59e0b",
	"low":    "#ef4444",
}

// EntryView is one insight or watchlist card.
type EntryView struct {
	Kind           string `json:"kind"`
	Ticker         string `json:"ticker"`
	Text           string `json:"text"`
	Horizon        string `json:"horizon,omitempty"`
	Conviction     string `json:"conviction,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
	ShowTooltip    bool   `json:"show_tooltip,omitempty"`
}

// SourceView is a source link reduced to the author's profile.
type SourceView struct {
	Note string `json:"note,omitempty"`
	URL  string `json:"url"`
}

// ConvictionSlice is one wedge of the conviction chart.
type ConvictionSlice struct {
	Level   string  `json:"level"`
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
	Color   string  `json:"color,omitempty"`
	// Dash is the SVG stroke-dasharray for a circle of circumference 100.
	Dash   string `json:"-"`
	Offset string `json:"-"`
}

// BriefView is a fully rendered brief.
type BriefView struct {
	ID          string            `json:"id"`
	Date        string            `json:"date"`
	DisplayDate string            `json:"display_date"`
	Subject     string            `json:"subject"`
	Summary     string            `json:"summary"`
	SummaryHTML template.HTML     `json:"-"`
	Insights    []EntryView       `json:"insights"`
	Watchlist   []EntryView       `json:"watchlist"`
	Sources     []SourceView      `json:"sources"`
	Conviction  []ConvictionSlice `json:"conviction"`
	IsLatest    bool              `json:"is_latest"`
}

// ArchiveItem is one row of the brief list.
type ArchiveItem struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	Date        string `json:"date"`
	DisplayDate string `json:"display_date"`
	Active      bool   `json:"active,omitempty"`
}

// NewBriefView renders b. showTooltip marks the first insight as the
// onboarding anchor; it only applies to the latest brief.
func NewBriefView(b models.Brief, isLatest, showTooltip bool) BriefView {
	v := BriefView{
		ID:          b.ID,
		Date:        b.Date,
		DisplayDate: dates.FormatDate(b.Date),
		Subject:     b.Subject,
		Summary:     b.Content.Summary,
		SummaryHTML: RenderSummary(b.Content.Summary),
		Insights:    entryViews(b.Content.InsightEntries()),
		Watchlist:   entryViews(b.Content.WatchlistEntries()),
		Sources:     sourceViews(b.Content.Sources),
		Conviction:  ConvictionDistribution(b.Content.Insights),
		IsLatest:    isLatest,
	}
	if isLatest && showTooltip && len(v.Insights) > 0 {
		v.Insights[0].ShowTooltip = true
	}
	return v
}

func entryViews(entries []models.Entry) []EntryView {
	out := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryView{
			Kind:           e.Kind.String(),
			Ticker:         strings.ToUpper(e.Ticker()),
			Text:           e.Text(),
			Horizon:        e.Horizon(),
			Conviction:     e.Conviction(),
			Recommendation: e.Recommendation(),
		})
	}
	return out
}

func sourceViews(sources []models.Source) []SourceView {
	out := make([]SourceView, 0, len(sources))
	for _, s := range sources {
		out = append(out, SourceView{Note: s.Note, URL: s.ProfileURL()})
	}
	return out
}

// ConvictionDistribution counts insights per conviction level, in order of
// first appearance. Insights without a conviction are not counted.
func ConvictionDistribution(insights []models.Insight) []ConvictionSlice {
	counts := map[string]int{}
	var order []string
	total := 0
	for _, in := range insights {
		level := strings.ToLower(strings.TrimSpace(in.Conviction))
		if level == "" {
			continue
		}
		if _, ok := counts[level]; !ok {
			order = append(order, level)
		}
		counts[level]++
		total++
	}

	out := make([]ConvictionSlice, 0, len(order))
	offset := 0.0
	for _, level := range order {
		pct := float64(counts[level]) / float64(total) * 100
		out = append(out, ConvictionSlice{
			Level:   level,
			Label:   strings.ToUpper(level[:1]) + level[1:],
			Count:   counts[level],
			Percent: math.Round(pct),
			Color:   convictionColors[level],
			Dash:    fmt.Sprintf("%.2f %.2f", pct, 100-pct),
			Offset:  fmt.Sprintf("%.2f", 25-offset),
		})
		offset += pct
	}
	return out
}

// Archive lists briefs for the sidebar, marking selectedID active.
func Archive(list []models.Brief, selectedID string) []ArchiveItem {
	out := make([]ArchiveItem, 0, len(list))
	for _, b := range list {
		out = append(out, ArchiveItem{
			ID:          b.ID,
			Subject:     b.Subject,
			Date:        b.Date,
			DisplayDate: dates.FormatDate(b.Date),
			Active:      b.ID == selectedID,
		})
	}
	return out
}

// EmptyMessage is shown in place of a brief when none is selected.
func EmptyMessage(query string) string {
	if q := strings.TrimSpace(query); q != "" {
		return fmt.Sprintf("No briefs found matching %q", q)
	}
	return "Select a brief from the archive"
}

// PointView is one chart point.
type PointView struct {
	Label string  `json:"label"`
	Close float64 `json:"close"`
}

// QuoteView is the price modal's content.
type QuoteView struct {
	Symbol        string         `json:"symbol"`
	Window        string         `json:"window"`
	Windows       []string       `json:"windows"`
	Price         string         `json:"price"`
	Change        string         `json:"change"`
	Positive      bool           `json:"positive"`
	Open          string         `json:"open"`
	PreviousClose string         `json:"previous_close"`
	High          string         `json:"high"`
	Low           string         `json:"low"`
	Points        []PointView    `json:"points"`
	NoData        bool           `json:"no_data,omitempty"`
	Raw           *quotes.Result `json:"raw"`
}

// NewQuoteView formats a lookup result.
func NewQuoteView(r *quotes.Result) QuoteView {
	q := r.Quote
	v := QuoteView{
		Symbol:        r.Symbol,
		Window:        r.Window.String(),
		Windows:       windowNames(),
		Price:         FormatPrice(q.Price, q.Currency),
		Change:        FormatChange(q.Change, q.ChangePercent),
		Positive:      q.IsPositive(),
		Open:          FormatPrice(q.Open, q.Currency),
		PreviousClose: FormatPrice(q.PreviousClose, q.Currency),
		High:          FormatPrice(q.High, q.Currency),
		Low:           FormatPrice(q.Low, q.Currency),
		Points:        make([]PointView, 0, len(r.History)),
		NoData:        len(r.History) == 0,
		Raw:           r,
	}
	for _, p := range r.History {
		v.Points = append(v.Points, PointView{Label: p.Display, Close: p.Close})
	}
	return v
}

func windowNames() []string {
	out := make([]string, len(quotes.Windows))
	for i, w := range quotes.Windows {
		out[i] = w.String()
	}
	return out
}
