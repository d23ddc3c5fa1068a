package engine

import (
	"sort"
	"strings"

	"github.com/buddemax/kontext/internal/models"
)

// Live suggestion tuning. Candidate searches run at a higher relevance bar
// than the broad fallback, and fallback hits are discounted so a direct
// entity match always outranks them.
const (
	DefaultSuggestionLimit   = 5
	maxCandidates            = 3
	perCandidateLimit        = 2
	candidateMinRelevance    = 0.4
	fallbackMinRelevance     = 0.3
	fallbackScoreDiscount    = 0.8
	fallbackWindowWords      = 5
	minPartialLength         = 3
)

// SuggestionOptions configures a live suggestion fetch
type SuggestionOptions struct {
	Mode  string
	Limit int // default 5
}

// SuggestionResult carries the ranked suggestions plus the entity
// candidates that produced them (for highlighting in the side panel).
type SuggestionResult struct {
	Suggestions []models.KnowledgeReference
	Candidates  []string
}

// FetchLiveSuggestions extracts candidate entities from a still-growing
// partial utterance and retrieves knowledge matches for them, plus one
// broader discounted search over the trailing words. Results are merged,
// deduplicated by id (keeping the higher score), sorted and capped.
func (e *Engine) FetchLiveSuggestions(entries []models.KnowledgeEntry, partial string, opts SuggestionOptions) SuggestionResult {
	if opts.Limit <= 0 {
		opts.Limit = DefaultSuggestionLimit
	}

	candidates := e.ExtractEntityCandidates(partial)

	best := make(map[string]models.KnowledgeReference)

	searchCandidates := candidates
	if len(searchCandidates) > maxCandidates {
		searchCandidates = searchCandidates[:maxCandidates]
	}
	for _, candidate := range searchCandidates {
		res := e.RetrieveContext(entries, RetrieveOptions{
			Query:        candidate,
			Mode:         opts.Mode,
			Limit:        perCandidateLimit,
			MinRelevance: candidateMinRelevance,
		})
		mergeReferences(best, res.Context, 1.0)
	}

	// Broad fallback over the last few words catches entities the
	// candidate patterns missed, at a discount.
	words := strings.Fields(partial)
	if len(words) > fallbackWindowWords {
		words = words[len(words)-fallbackWindowWords:]
	}
	if len(words) > 0 {
		res := e.RetrieveContext(entries, RetrieveOptions{
			Query:        strings.Join(words, " "),
			Mode:         opts.Mode,
			Limit:        opts.Limit,
			MinRelevance: fallbackMinRelevance,
		})
		mergeReferences(best, res.Context, fallbackScoreDiscount)
	}

	merged := make([]models.KnowledgeReference, 0, len(best))
	for _, ref := range best {
		merged = append(merged, ref)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].RelevanceScore > merged[j].RelevanceScore
	})
	if len(merged) > opts.Limit {
		merged = merged[:opts.Limit]
	}

	return SuggestionResult{Suggestions: merged, Candidates: candidates}
}

// ExtractEntityCandidates pulls likely entity mentions out of partial
// text: capitalized phrases, quoted substrings, and preposition-triggered
// patterns from the locale table. Deduplicated, order of first appearance.
func (e *Engine) ExtractEntityCandidates(partial string) []string {
	seen := make(map[string]struct{})
	var candidates []string

	add := func(candidate string) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			return
		}
		key := strings.ToLower(candidate)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		candidates = append(candidates, candidate)
	}

	for _, phrase := range e.capitalizedPhrase.FindAllString(partial, -1) {
		add(phrase)
	}
	for _, m := range e.quotedText.FindAllStringSubmatch(partial, -1) {
		add(m[1])
	}
	for _, re := range e.candidateRes {
		for _, m := range re.FindAllStringSubmatch(partial, -1) {
			add(m[1])
		}
	}

	return candidates
}

func mergeReferences(best map[string]models.KnowledgeReference, refs []models.KnowledgeReference, discount float64) {
	for _, ref := range refs {
		ref.RelevanceScore *= discount
		existing, ok := best[ref.ID]
		if !ok || ref.RelevanceScore > existing.RelevanceScore {
			best[ref.ID] = ref
		}
	}
}
