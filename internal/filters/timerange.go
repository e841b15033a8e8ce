package filters

import (
	"strings"
	"time"

	"github.com/beatwatch/complaint-server/internal/models"
)

// All "today" computations use Arizona civil time, not UTC or host-local
// time. America/Phoenix observes no daylight saving, so the UTC-7 fallback is
// exact when the zone database is unavailable.
var arizonaTZ = loadArizona()

func loadArizona() *time.Location {
	loc, err := time.LoadLocation("America/Phoenix")
	if err != nil {
		return time.FixedZone("MST", -7*60*60)
	}
	return loc
}

// Today returns the current calendar date in Arizona time.
func Today() time.Time {
	return time.Now().In(arizonaTZ)
}

// ResolveRange converts relative time phrases into an absolute
// [start, end] date range in Arizona time. The end date is always today.
// The start date is the earliest date implied by any of the phrases, so a
// combined request like {"Yesterday", "Last month"} covers the union of both
// windows. Unrecognized phrases have no effect.
func ResolveRange(phrases []string) models.DateRange {
	return resolveRangeAt(phrases, Today())
}

func resolveRangeAt(phrases []string, today time.Time) models.DateRange {
	const layout = "2006-01-02"

	end := today
	start := today

	for _, phrase := range phrases {
		var candidate time.Time
		switch strings.ToLower(strings.TrimSpace(phrase)) {
		case "today":
			candidate = today
		case "yesterday":
			candidate = today.AddDate(0, 0, -1)
		case "this week", "current week":
			candidate = today.AddDate(0, 0, -daysSinceMonday(today))
		case "last week", "previous week":
			candidate = today.AddDate(0, 0, -(daysSinceMonday(today) + 7))
		case "this month", "current month":
			candidate = firstOfMonth(today)
		case "last month", "previous month":
			// Month arithmetic by hand: AddDate(0, -1, 0) on e.g. March 31
			// would normalize into March again.
			y, m := today.Year(), today.Month()
			if m == time.January {
				y, m = y-1, time.December
			} else {
				m--
			}
			candidate = time.Date(y, m, 1, 0, 0, 0, 0, today.Location())
		default:
			continue
		}
		if candidate.Before(start) {
			start = candidate
		}
	}

	return models.DateRange{Start: start.Format(layout), End: end.Format(layout)}
}

// daysSinceMonday counts days back to the most recent Monday (0 on Monday).
func daysSinceMonday(t time.Time) int {
	// time.Weekday has Sunday=0; the week here starts on Monday.
	return (int(t.Weekday()) + 6) % 7
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
