package engine

import (
	"sort"

	"github.com/buddemax/kontext/internal/models"
)

// Retrieval defaults
const (
	DefaultKnowledgeLimit       = 5
	DefaultMinRelevance         = 0.3
	snippetMaxLength            = 150
	snippetEllipsis             = "..."
)

// RetrieveOptions configures a knowledge retrieval call. Zero values fall
// back to the defaults (limit 5, minimum relevance 0.3).
type RetrieveOptions struct {
	Query        string
	Mode         string
	Limit        int
	EntityTypes  []string // restrict to these entity types when non-empty
	MinRelevance float64
}

// RetrieveResult is the outcome of a knowledge retrieval call
type RetrieveResult struct {
	Context         []models.KnowledgeReference
	MatchedKeywords []string
	TotalMatches    int // matches above the relevance bar, before the limit
}

// RetrieveContext filters the supplied entries by mode (and entity types,
// when given), scores every survivor, and returns the top matches as
// snippet references sorted by descending relevance. Ties keep their input
// order (stable sort; relative order among equal scores is otherwise
// unspecified). Entries are never mutated.
func (e *Engine) RetrieveContext(entries []models.KnowledgeEntry, opts RetrieveOptions) RetrieveResult {
	if opts.Limit <= 0 {
		opts.Limit = DefaultKnowledgeLimit
	}
	if opts.MinRelevance <= 0 {
		opts.MinRelevance = DefaultMinRelevance
	}

	keywords := e.ExtractKeywords(opts.Query)
	now := e.now()

	var typeFilter map[string]struct{}
	if len(opts.EntityTypes) > 0 {
		typeFilter = make(map[string]struct{}, len(opts.EntityTypes))
		for _, t := range opts.EntityTypes {
			typeFilter[t] = struct{}{}
		}
	}

	type scored struct {
		entry   models.KnowledgeEntry
		score   float64
		matched []string
	}

	candidates := make([]scored, 0, len(entries))
	for _, entry := range entries {
		if entry.Mode != opts.Mode {
			continue
		}
		if typeFilter != nil {
			if _, ok := typeFilter[entry.Metadata.EntityType]; !ok {
				continue
			}
		}

		score, matched := e.ScoreEntry(entry, keywords, now)
		if score < opts.MinRelevance {
			continue
		}
		candidates = append(candidates, scored{entry: entry, score: score, matched: matched})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	result := RetrieveResult{TotalMatches: len(candidates)}

	seenKeywords := make(map[string]struct{})
	for i, c := range candidates {
		if i >= opts.Limit {
			break
		}
		result.Context = append(result.Context, models.KnowledgeReference{
			ID:             c.entry.ID,
			Snippet:        Snippet(c.entry.Content),
			RelevanceScore: c.score,
			Source:         models.ReferenceSourceKnowledge,
		})
		for _, kw := range c.matched {
			if _, dup := seenKeywords[kw]; dup {
				continue
			}
			seenKeywords[kw] = struct{}{}
			result.MatchedKeywords = append(result.MatchedKeywords, kw)
		}
	}

	return result
}

// Snippet trims content to at most 150 characters. Longer content is cut
// to 147 characters plus an ellipsis; shorter content passes through
// unchanged, so re-snippeting is idempotent. Counting is rune-based to
// avoid splitting multi-byte letters.
func Snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= snippetMaxLength {
		return content
	}
	return string(runes[:snippetMaxLength-len(snippetEllipsis)]) + snippetEllipsis
}
