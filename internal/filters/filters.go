package filters

import (
	"strings"

	"github.com/beatwatch/complaint-server/internal/models"
)

// Valid option sets, defined once at process start. Order matters: it is the
// tie-break order for fuzzy matching and the status iteration order for a
// search with no status filter.
var (
	BeatNumbers = []string{
		"1", "2", "3", "4", "5", "6", "7", "8", "9",
		"10", "11", "12", "13", "14", "15", "16", "17",
	}
	ProblemCategories = []string{
		"Stop sign", "School traffic complaint", "Racing",
		"Speed", "Red light", "Reckless Driving",
	}
	ComplaintStatuses = []string{"Open", "Follow-Up", "Closed", "Red-Star"}
	DaysOfWeek        = []string{
		"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
	}
	RelativeTimes = []string{
		"Today", "Yesterday", "This week", "Last week", "This month", "Last month",
	}
)

// Normalize maps raw filter values onto the valid-option sets. Beat numbers
// must match exactly after trimming; all other categories go through fuzzy
// matching at DefaultThreshold. Values that match nothing are dropped, and
// duplicates keep their first occurrence. Pure function: same input, same
// output.
func Normalize(raw models.RawFilterInput) models.NormalizedFilterSet {
	var out models.NormalizedFilterSet

	// Beat numbers arrive as strings from slots; only whitespace is forgiven,
	// no fuzzy matching ("05" does not match "5").
	for _, beat := range raw.BeatNums {
		beat = strings.TrimSpace(beat)
		if containsString(BeatNumbers, beat) && !containsString(out.BeatNums, beat) {
			out.BeatNums = append(out.BeatNums, beat)
		}
	}

	out.Categories = matchAll(raw.Categories, ProblemCategories)
	out.Statuses = matchAll(raw.Statuses, ComplaintStatuses)
	out.DaysOfWeek = matchAll(raw.DaysOfWeek, DaysOfWeek)
	out.RelativeTimes = matchAll(raw.RelativeTimes, RelativeTimes)

	return out
}

// matchAll fuzzy-matches each raw value against options, dropping misses and
// post-match duplicates.
func matchAll(raw, options []string) []string {
	var matched []string
	for _, value := range raw {
		match, ok := BestMatch(value, options, DefaultThreshold)
		if ok && !containsString(matched, match) {
			matched = append(matched, match)
		}
	}
	return matched
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
