package engine

import (
	"strings"
)

// CombinedSimilarity is the default string-similarity collaborator for
// duplicate clustering: the mean of a normalized edit-distance similarity
// and a token-overlap coefficient, in [0,1]. The overlap coefficient (the
// intersection over the smaller token set) keeps rephrasings that merely
// insert filler words ("bei Siemens" vs "bei der Firma Siemens") above the
// clustering threshold where plain Jaccard would not.
func CombinedSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	return (levenshteinSimilarity(a, b) + tokenOverlap(a, b)) / 2
}

// levenshteinSimilarity is 1 - distance/maxLen over runes
func levenshteinSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(maxLen)
}

// levenshtein computes edit distance with the two-row dynamic program
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// tokenOverlap is |A ∩ B| / min(|A|, |B|) over whitespace tokens
func tokenOverlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	smaller := setA
	larger := setB
	if len(setB) < len(setA) {
		smaller, larger = setB, setA
	}

	common := 0
	for token := range smaller {
		if _, ok := larger[token]; ok {
			common++
		}
	}

	return float64(common) / float64(len(smaller))
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, field := range strings.Fields(s) {
		token := normalizeToken(field)
		if token != "" {
			set[token] = struct{}{}
		}
	}
	return set
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
