package present

import (
	"fmt"
	"strings"
)

// BriefMarkdown renders a brief as a markdown document for terminals and
// MCP clients.
func BriefMarkdown(v BriefView) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", orDefault(v.Subject, v.ID))
	fmt.Fprintf(&sb, "_%s_", v.DisplayDate)
	if v.IsLatest {
		sb.WriteString(" · latest")
	}
	sb.WriteString("\n\n")

	if strings.TrimSpace(v.Summary) != "" {
		sb.WriteString("## Summary\n\n")
		sb.WriteString(strings.TrimSpace(v.Summary))
		sb.WriteString("\n\n")
	}

	if len(v.Insights) > 0 {
		sb.WriteString("## Insights\n\n")
		writeEntries(&sb, v.Insights)

		sb.WriteString("### Conviction\n\n")
		sb.WriteString("| Level | Count | Share |\n|---|---:|---:|\n")
		for _, s := range v.Conviction {
			fmt.Fprintf(&sb, "| %s | %d | %.0f%% |\n", s.Label, s.Count, s.Percent)
		}
		sb.WriteString("\n")
	}

	if len(v.Watchlist) > 0 {
		sb.WriteString("## Watchlist\n\n")
		writeEntries(&sb, v.Watchlist)
	}

	if len(v.Sources) > 0 {
		sb.WriteString("## Sources\n\n")
		for _, s := range v.Sources {
			if s.Note != "" {
				fmt.Fprintf(&sb, "- %s: <%s>\n", s.Note, s.URL)
			} else {
				fmt.Fprintf(&sb, "- <%s>\n", s.URL)
			}
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "> %s\n", Disclaimer)
	return sb.String()
}

func writeEntries(sb *strings.Builder, entries []EntryView) {
	for _, e := range entries {
		fmt.Fprintf(sb, "- **%s** %s", e.Ticker, e.Text)
		var chips []string
		if e.Horizon != "" {
			chips = append(chips, "Horizon: "+e.Horizon)
		}
		if e.Conviction != "" {
			chips = append(chips, "Conviction: "+e.Conviction)
		}
		if len(chips) > 0 {
			fmt.Fprintf(sb, " `%s`", strings.Join(chips, " · "))
		}
		sb.WriteString("\n")
		if e.Recommendation != "" {
			fmt.Fprintf(sb, "  _%s_\n", e.Recommendation)
		}
	}
	sb.WriteString("\n")
}

// ArchiveMarkdown renders the brief list as a table.
func ArchiveMarkdown(items []ArchiveItem, query string) string {
	if len(items) == 0 {
		return EmptyMessage(query) + "\n"
	}
	var sb strings.Builder
	sb.WriteString("| ID | Date | Subject |\n|---|---|---|\n")
	for _, it := range items {
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", it.ID, it.DisplayDate, escapeCell(it.Subject))
	}
	return sb.String()
}

// QuoteMarkdown renders a price lookup.
func QuoteMarkdown(v QuoteView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s (%s)\n\n", v.Symbol, v.Window)
	fmt.Fprintf(&sb, "**%s** %s\n\n", v.Price, v.Change)
	sb.WriteString("| Open | Prev Close | High | Low |\n|---:|---:|---:|---:|\n")
	fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n\n", v.Open, v.PreviousClose, v.High, v.Low)
	if v.NoData {
		sb.WriteString("_No chart data for this window._\n")
		return sb.String()
	}
	first, last := v.Points[0], v.Points[len(v.Points)-1]
	fmt.Fprintf(&sb, "%d points, %s → %s\n", len(v.Points), first.Label, last.Label)
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
