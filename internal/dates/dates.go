// Package dates formats brief dates for display without timezone drift.
//
// A calendar date such as "2024-10-12" is built from its year, month and day
// components so the displayed day never shifts when the viewer is west of UTC.
package dates

import (
	"strconv"
	"strings"
	"time"
)

const (
	longLayout  = "January 2, 2006"
	shortLayout = "Jan 2"
	isoLayout   = "2006-01-02"
)

// fallbackLayouts are tried when the input is not a plain Y-M-D triple.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
}

// FormatDate renders "2024-10-12" as "October 12, 2024". Unparseable input
// is returned unchanged.
func FormatDate(s string) string {
	return format(s, longLayout)
}

// FormatShortDate renders "2024-10-12" as "Oct 12". Unparseable input is
// returned unchanged.
func FormatShortDate(s string) string {
	return format(s, shortLayout)
}

// LocalDate returns t's calendar date in its own location as "2006-01-02".
func LocalDate(t time.Time) string {
	return t.Format(isoLayout)
}

// Parse returns the calendar date for s at midnight UTC. The location is
// irrelevant to callers that only compare or format the date portion.
func Parse(s string) (time.Time, bool) {
	if t, ok := parseComponents(s); ok {
		return t, true
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func format(s, layout string) string {
	t, ok := Parse(s)
	if !ok {
		return s
	}
	return t.Format(layout)
}

// parseComponents splits "Y-M-D" and builds the date directly. Out-of-range
// months and days normalise the way time.Date does.
func parseComponents(s string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}
	return time.Date(nums[0], time.Month(nums[1]), nums[2], 0, 0, 0, 0, time.UTC), true
}
