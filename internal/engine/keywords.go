package engine

import (
	"strings"
	"unicode"
)

// minKeywordLength drops tokens that are too short to carry meaning
// ("zu", "ab", single letters left over from punctuation stripping).
const minKeywordLength = 3

// ExtractKeywords tokenizes a free-text query into content tokens:
// lower-cased, punctuation-stripped (accented letters preserved), stop
// words removed, tokens shorter than three runes discarded. Duplicates and
// order are kept. Empty input yields an empty slice.
func (e *Engine) ExtractKeywords(query string) []string {
	fields := strings.Fields(query)
	keywords := make([]string, 0, len(fields))

	for _, field := range fields {
		token := normalizeToken(field)
		if token == "" {
			continue
		}
		if _, stop := e.stopWords[token]; stop {
			continue
		}
		if len([]rune(token)) < minKeywordLength {
			continue
		}
		keywords = append(keywords, token)
	}

	return keywords
}

// normalizeToken lower-cases a token and strips every rune that is not a
// letter or digit. Language-specific accented letters survive because they
// are letters.
func normalizeToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
