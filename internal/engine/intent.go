package engine

import (
	"strings"

	"github.com/buddemax/kontext/internal/models"
)

// Classifier confidence levels. Table matches are confident; the generic
// question fallback and the final unknown fallback are not, but the
// classifier always returns some intent.
const (
	intentConfidenceMatched  = 0.9
	intentConfidenceQuestion = 0.7
	intentConfidenceUnknown  = 0.5
)

// DetectIntent tests the utterance against the ordered intent table; the
// first rule with a matching pattern wins. Unmatched utterances fall back
// to general_question when they look like a question at all, otherwise to
// unknown. Never fails.
func (e *Engine) DetectIntent(utterance string) models.Intent {
	trimmed := strings.TrimSpace(utterance)

	for _, ci := range e.intents {
		for _, re := range ci.patterns {
			if !re.MatchString(trimmed) {
				continue
			}
			intent := models.Intent{
				Name:       ci.rule.Name,
				Confidence: intentConfidenceMatched,
			}
			if ci.entity != nil {
				if m := ci.entity.FindStringSubmatch(trimmed); len(m) > 1 {
					intent.ExtractedEntity = strings.TrimSpace(m[1])
				}
			}
			return intent
		}
	}

	for _, re := range e.questionRes {
		if re.MatchString(trimmed) {
			return models.Intent{Name: models.IntentGeneralQuestion, Confidence: intentConfidenceQuestion}
		}
	}

	return models.Intent{Name: models.IntentUnknown, Confidence: intentConfidenceUnknown}
}

// RequiresContextRetrieval reports whether retrieval should run for an
// intent. Commands that only mutate the knowledge base (store, delete,
// todo) skip retrieval; queries and the low-confidence fallbacks run it.
func (e *Engine) RequiresContextRetrieval(intent models.Intent) bool {
	for _, ci := range e.intents {
		if ci.rule.Name == intent.Name {
			return ci.rule.RequiresRetrieval
		}
	}
	// general_question and unknown both retrieve: a wrong extra lookup is
	// cheaper than a missing one.
	return true
}

// RelevantEntityTypes returns the entity types retrieval should be
// restricted to for an intent, or nil for an unrestricted search.
func (e *Engine) RelevantEntityTypes(intent models.Intent) []string {
	for _, ci := range e.intents {
		if ci.rule.Name == intent.Name {
			if len(ci.rule.EntityTypes) == 0 {
				return nil
			}
			types := make([]string, len(ci.rule.EntityTypes))
			copy(types, ci.rule.EntityTypes)
			return types
		}
	}
	return nil
}
