package filters

import (
	"reflect"
	"testing"

	"github.com/beatwatch/complaint-server/internal/models"
)

func TestNormalizeBeatNumbers(t *testing.T) {
	// Beats are exact-match only: "18" is out of range and "05" is not a
	// string-equal member of the set.
	got := Normalize(models.RawFilterInput{BeatNums: []string{"18", "5", "05"}})
	want := []string{"5"}
	if !reflect.DeepEqual(got.BeatNums, want) {
		t.Errorf("BeatNums = %v; want %v", got.BeatNums, want)
	}
}

func TestNormalizeFuzzyCategories(t *testing.T) {
	got := Normalize(models.RawFilterInput{
		Categories: []string{"speeed", "racing", "total nonsense", "Speed"},
	})
	// "speeed" and "Speed" both resolve to "Speed"; the duplicate and the
	// unmatched noise are dropped.
	want := []string{"Speed", "Racing"}
	if !reflect.DeepEqual(got.Categories, want) {
		t.Errorf("Categories = %v; want %v", got.Categories, want)
	}
}

func TestNormalizeStatusesAndDays(t *testing.T) {
	got := Normalize(models.RawFilterInput{
		Statuses:   []string{"open", "follow up", "closed", "open"},
		DaysOfWeek: []string{"monday", "Tuesdy", "noday"},
	})

	wantStatuses := []string{"Open", "Follow-Up", "Closed"}
	if !reflect.DeepEqual(got.Statuses, wantStatuses) {
		t.Errorf("Statuses = %v; want %v", got.Statuses, wantStatuses)
	}

	wantDays := []string{"Monday", "Tuesday"}
	if !reflect.DeepEqual(got.DaysOfWeek, wantDays) {
		t.Errorf("DaysOfWeek = %v; want %v", got.DaysOfWeek, wantDays)
	}
}

func TestNormalizeRelativeTimes(t *testing.T) {
	got := Normalize(models.RawFilterInput{
		RelativeTimes: []string{"last weak", "This Month"},
	})
	want := []string{"Last week", "This month"}
	if !reflect.DeepEqual(got.RelativeTimes, want) {
		t.Errorf("RelativeTimes = %v; want %v", got.RelativeTimes, want)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	got := Normalize(models.RawFilterInput{})
	if len(got.BeatNums)+len(got.Categories)+len(got.Statuses)+len(got.DaysOfWeek)+len(got.RelativeTimes) != 0 {
		t.Errorf("Normalize(empty) = %+v; want all categories empty", got)
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	raw := models.RawFilterInput{
		BeatNums:   []string{"3", "3", "12"},
		Categories: []string{"red lite", "stop sgn"},
		Statuses:   []string{"red star"},
	}
	first := Normalize(raw)
	second := Normalize(raw)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Normalize not deterministic: %+v vs %+v", first, second)
	}
}
