// Package filters turns noisy user-supplied filter values into canonical
// query parameters: fuzzy matching against the valid-option sets, beat-number
// validation, and resolution of relative time phrases into absolute dates.
package filters

import "strings"

// DefaultThreshold is the minimum similarity score for a fuzzy match.
const DefaultThreshold = 0.7

// BestMatch finds the candidate closest to input using Levenshtein
// similarity. A case-insensitive exact match wins immediately. Otherwise the
// candidate with the strictly highest score at or above threshold is
// returned; when two candidates tie on score, the first one in the candidate
// list wins. The second return value is false when nothing reaches the
// threshold.
func BestMatch(input string, candidates []string, threshold float64) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))

	for _, option := range candidates {
		if normalized == strings.ToLower(option) {
			return option, true
		}
	}

	bestScore := 0.0
	bestMatch := ""
	found := false
	for _, option := range candidates {
		score := levenshteinSimilarity(normalized, strings.ToLower(option))
		if score > bestScore && score >= threshold {
			bestScore = score
			bestMatch = option
			found = true
		}
	}

	return bestMatch, found
}

// levenshteinSimilarity scores how close s1 and s2 are, from 0 (completely
// different) to 1 (identical): 1 - distance/max(len). Either string being
// empty scores 0.
func levenshteinSimilarity(s1, s2 string) float64 {
	r1, r2 := []rune(s1), []rune(s2)
	m, n := len(r1), len(r2)
	if m == 0 || n == 0 {
		return 0
	}

	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			if r1[i-1] == r2[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = min(prev[j], curr[j-1], prev[j-1]) + 1
			}
		}
		prev, curr = curr, prev
	}

	maxLen := m
	if n > maxLen {
		maxLen = n
	}
	return 1 - float64(prev[n])/float64(maxLen)
}
