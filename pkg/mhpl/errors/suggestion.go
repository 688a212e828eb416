package errors

import (
	"fmt"
	"strings"
)

// SuggestFunctionName suggests a registered function when an unknown name is
// called. It uses Levenshtein distance to find the closest candidate and
// returns the empty string when nothing is reasonably close.
func SuggestFunctionName(unknown string, known []string) string {
	if len(known) == 0 || unknown == "" {
		return ""
	}

	minDistance := -1
	var bestMatch string

	for _, name := range known {
		dist := levenshteinDistance(strings.ToLower(unknown), name)
		if minDistance < 0 || dist < minDistance {
			minDistance = dist
			bestMatch = name
		}
	}

	// Allow roughly one edit per three characters of the candidate.
	limit := len(bestMatch)/3 + 1
	if minDistance <= limit {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}
	return ""
}

// levenshteinDistance calculates the Levenshtein distance between two strings.
// This is the minimum number of single-character edits (insertions, deletions,
// or substitutions) required to change one string into the other.
func levenshteinDistance(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
