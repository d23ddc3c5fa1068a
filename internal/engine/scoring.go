package engine

import (
	"strings"
	"time"

	"github.com/buddemax/kontext/internal/models"
)

// ScoringConfig holds the relevance scoring weights and thresholds
type ScoringConfig struct {
	KeywordWeight float64 // Default: 0.5
	RecencyWeight float64 // Default: 0.3
	AccessWeight  float64 // Default: 0.2
	AccessMax     int64   // Default: 100, access count treated as "well used"
}

// DefaultScoringConfig returns the default scoring configuration
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		KeywordWeight: 0.5,
		RecencyWeight: 0.3,
		AccessWeight:  0.2,
		AccessMax:     100,
	}
}

// ScoreEntry combines keyword overlap, recency and access frequency into a
// single relevance score in [0,1], and returns the subset of keywords that
// matched the entry's content. Scoring is intentionally cheap and
// explainable; there is no semantic component.
func (e *Engine) ScoreEntry(entry models.KnowledgeEntry, keywords []string, now time.Time) (float64, []string) {
	config := DefaultScoringConfig()

	keywordScore, matched := keywordScore(entry.Content, keywords)
	recencyScore := recencyScore(entryAge(entry, now))
	accessScore := accessScore(entry.Metadata.AccessCount, config.AccessMax)

	score := config.KeywordWeight*keywordScore +
		config.RecencyWeight*recencyScore +
		config.AccessWeight*accessScore

	return score, matched
}

// keywordScore is (keywords found as substrings of the lower-cased
// content) / (total keywords), 0 when there are no keywords.
func keywordScore(content string, keywords []string) (float64, []string) {
	if len(keywords) == 0 {
		return 0, nil
	}

	lowered := strings.ToLower(content)
	matched := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))

	hits := 0
	for _, kw := range keywords {
		if !strings.Contains(lowered, kw) {
			continue
		}
		hits++
		if _, dup := seen[kw]; !dup {
			seen[kw] = struct{}{}
			matched = append(matched, kw)
		}
	}

	return float64(hits) / float64(len(keywords)), matched
}

// recencyScore is a step function of entry age:
//   - <=24h: 1.0
//   - <=7d:  0.8
//   - <=30d: 0.5
//   - older: 0.2
func recencyScore(age time.Duration) float64 {
	switch {
	case age <= 24*time.Hour:
		return 1.0
	case age <= 7*24*time.Hour:
		return 0.8
	case age <= 30*24*time.Hour:
		return 0.5
	default:
		return 0.2
	}
}

// accessScore saturates at AccessMax accesses: min(1, count/max)
func accessScore(count, max int64) float64 {
	if count <= 0 {
		return 0
	}
	score := float64(count) / float64(max)
	if score > 1 {
		score = 1
	}
	return score
}

// entryAge measures from the last content change, so an edit or a
// maintenance rewrite refreshes an entry's recency.
func entryAge(entry models.KnowledgeEntry, now time.Time) time.Duration {
	ref := entry.CreatedAt
	if entry.UpdatedAt.After(ref) {
		ref = entry.UpdatedAt
	}
	age := now.Sub(ref)
	if age < 0 {
		age = 0
	}
	return age
}
