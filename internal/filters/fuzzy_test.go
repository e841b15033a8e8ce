package filters

import "testing"

func TestBestMatchExact(t *testing.T) {
	// Every canonical value must match itself, case-insensitively.
	for _, set := range [][]string{ProblemCategories, ComplaintStatuses, DaysOfWeek, RelativeTimes} {
		for _, want := range set {
			got, ok := BestMatch(want, set, DefaultThreshold)
			if !ok || got != want {
				t.Errorf("BestMatch(%q) = %q, %v; want exact match", want, got, ok)
			}
		}
	}

	got, ok := BestMatch("  red light ", ProblemCategories, DefaultThreshold)
	if !ok || got != "Red light" {
		t.Errorf("BestMatch(\"  red light \") = %q, %v; want \"Red light\"", got, ok)
	}
}

func TestBestMatchThreshold(t *testing.T) {
	candidates := []string{"Speed"}

	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		// distance 1, similarity 1 - 1/6 ≈ 0.833
		{"one insertion above threshold", "Speeed", "Speed", true},
		// distance 3, similarity 1 - 3/5 = 0.4
		{"too short below threshold", "Sp", "", false},
		{"single substitution", "Spead", "Speed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BestMatch(tt.input, candidates, DefaultThreshold)
			if ok != tt.ok || got != tt.want {
				t.Errorf("BestMatch(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestBestMatchTieKeepsFirstCandidate(t *testing.T) {
	// "abcx" is distance 1 from both candidates; the first in candidate
	// order must win because ties never overwrite the current best.
	candidates := []string{"abcd", "abce"}
	got, ok := BestMatch("abcx", candidates, DefaultThreshold)
	if !ok || got != "abcd" {
		t.Errorf("BestMatch tie = %q, %v; want first candidate \"abcd\"", got, ok)
	}
}

func TestBestMatchEmptyInput(t *testing.T) {
	if got, ok := BestMatch("", ProblemCategories, DefaultThreshold); ok {
		t.Errorf("BestMatch(\"\") = %q; want no match", got)
	}
	if got, ok := BestMatch("   ", ProblemCategories, DefaultThreshold); ok {
		t.Errorf("BestMatch(whitespace) = %q; want no match", got)
	}
}

func TestLevenshteinSimilarity(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   float64
	}{
		{"speed", "speed", 1},
		{"speeed", "speed", 1 - 1.0/6.0},
		{"", "speed", 0},
		{"speed", "", 0},
		{"abc", "xyz", 0},
	}

	for _, tt := range tests {
		if got := levenshteinSimilarity(tt.s1, tt.s2); !closeEnough(got, tt.want) {
			t.Errorf("levenshteinSimilarity(%q, %q) = %v; want %v", tt.s1, tt.s2, got, tt.want)
		}
	}
}

func closeEnough(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
