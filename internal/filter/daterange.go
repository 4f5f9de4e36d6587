// Package filter holds the pure building blocks the event query engine
// compiles criteria with: the relative date-range resolver and the
// price/attendance comparator. Everything here is a pure function of its
// input and the supplied instant, which keeps tests deterministic.
package filter

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fenway-events/eventhub-api/internal/models"
)

// Range is a concrete inclusive date window with day-boundary bounds.
type Range struct {
	Start time.Time
	End   time.Time
}

var (
	nextDaysRe     = regexp.MustCompile(`(?i)next\s+(\d+)\s+days?`)
	explicitSpanRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s+to\s+(\d{4}-\d{2}-\d{2})`)
)

// ResolveRange maps a DateSpec to a concrete [start, end] window relative to
// now. Keyword resolution follows the local calendar day; unrecognized
// keywords fall back to today's range rather than erroring, so an ambiguous
// phrase degrades to a broad-but-valid filter.
func ResolveRange(spec models.DateSpec, now time.Time) Range {
	if spec.Explicit() {
		return Range{Start: StartOfDay(spec.Start), End: EndOfDay(spec.End)}
	}

	keyword := strings.ToLower(strings.TrimSpace(spec.Keyword))
	switch keyword {
	case "today":
		return dayRange(now)
	case "tomorrow":
		return dayRange(now.AddDate(0, 0, 1))
	case "weekend":
		// Upcoming Saturday through Sunday. Weekday is 0-indexed on Sunday,
		// matching the (6 - weekday) mod 7 offset.
		saturday := now.AddDate(0, 0, (6-int(now.Weekday()))%7)
		return Range{Start: StartOfDay(saturday), End: EndOfDay(saturday.AddDate(0, 0, 1))}
	case "next week":
		start := now.AddDate(0, 0, 7-int(now.Weekday()))
		return Range{Start: StartOfDay(start), End: EndOfDay(start.AddDate(0, 0, 6))}
	case "next month":
		y, m, _ := now.Date()
		first := time.Date(y, m+1, 1, 0, 0, 0, 0, now.Location())
		last := time.Date(y, m+2, 0, 0, 0, 0, 0, now.Location())
		return Range{Start: first, End: EndOfDay(last)}
	case "last month":
		y, m, _ := now.Date()
		first := time.Date(y, m-1, 1, 0, 0, 0, 0, now.Location())
		last := time.Date(y, m, 0, 0, 0, 0, 0, now.Location())
		return Range{Start: first, End: EndOfDay(last)}
	}

	if m := nextDaysRe.FindStringSubmatch(keyword); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return Range{Start: StartOfDay(now), End: EndOfDay(now.AddDate(0, 0, n))}
		}
	}

	if m := explicitSpanRe.FindStringSubmatch(keyword); m != nil {
		start, errStart := models.ParseDate(m[1])
		end, errEnd := models.ParseDate(m[2])
		if errStart == nil && errEnd == nil {
			return Range{Start: StartOfDay(start), End: EndOfDay(end)}
		}
	}

	return dayRange(now)
}

// StartOfDay truncates t to 00:00:00.000 in its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay moves t to 23:59:59.999 in its location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func dayRange(t time.Time) Range {
	return Range{Start: StartOfDay(t), End: EndOfDay(t)}
}
