// Package similarity provides string similarity primitives for merchant name
// comparison. Jaccard is the metric on the matcher's decision path;
// Levenshtein is an available companion primitive.
package similarity

import "strings"

// Jaccard returns the token-set Jaccard index of two names in [0,1]: the
// names are split on whitespace into word sets and the intersection size is
// divided by the union size. Two empty token sets score 0, not 0/0.
func Jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	union := make(map[string]struct{}, len(setA)+len(setB))
	for tok := range setA {
		union[tok] = struct{}{}
	}
	for tok := range setB {
		union[tok] = struct{}{}
	}
	if len(union) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}

	return float64(intersection) / float64(len(union))
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

// Levenshtein returns the classic edit distance between a and b, counting
// single-character insertions, deletions, and substitutions.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	ra := []rune(a)
	rb := []rune(b)

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(rb); i++ {
		curr[0] = i
		for j := 1; j <= len(ra); j++ {
			cost := 1
			if rb[i-1] == ra[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j-1]+cost, min(prev[j]+1, curr[j-1]+1))
		}
		prev, curr = curr, prev
	}

	return prev[len(ra)]
}
