package engine

import (
	"github.com/buddemax/kontext/internal/models"
)

// maxCarriedReferences caps how many references from earlier assistant
// turns are merged back into a new retrieval.
const maxCarriedReferences = 5

// AssembleOptions configures the unified context assembly
type AssembleOptions struct {
	Query          string
	Mode           string
	KnowledgeLimit int
	DocumentLimit  int
	Conversation   *models.Conversation // optional
}

// AssembledContext is the unified result the rest of the system consumes
type AssembledContext struct {
	References       []models.KnowledgeReference
	TotalMatches     int
	KnowledgeMatches int
	DocumentMatches  int
	MatchedKeywords  []string
	Prompt           string

	// Conversation fields, empty when no conversation was supplied
	ConversationContext     string
	ConversationInstruction string
	Topics                  []string
	IsFollowUp              bool
}

// AssembleContext is the single entry point for context assembly: combined
// knowledge+document retrieval, conversation windowing, and carry-over of
// references used on earlier assistant turns (so a document cited two turns
// ago stays available without the user re-mentioning it).
func (e *Engine) AssembleContext(
	entries []models.KnowledgeEntry,
	documents []models.DocumentEntry,
	opts AssembleOptions,
) AssembledContext {
	combined := e.RetrieveCombinedContext(entries, documents, CombinedOptions{
		Query:          opts.Query,
		Mode:           opts.Mode,
		KnowledgeLimit: opts.KnowledgeLimit,
		DocumentLimit:  opts.DocumentLimit,
	})

	result := AssembledContext{
		References:       combined.References,
		KnowledgeMatches: combined.KnowledgeMatches,
		DocumentMatches:  combined.DocumentMatches,
		MatchedKeywords:  combined.MatchedKeywords,
		Prompt:           combined.Prompt,
	}

	conv := opts.Conversation
	if conv != nil && len(conv.Messages) >= 1 {
		window := e.BuildConversationContext(conv, ConversationContextOptions{})
		result.ConversationContext = window.Context
		result.Topics = window.Topics
		result.IsFollowUp = e.IsFollowUpQuery(opts.Query)
		result.ConversationInstruction = e.BuildConversationInstruction(conv, opts.Query, ConversationContextOptions{})

		carried := carriedReferences(conv, result.References)
		result.References = append(result.References, carried...)
	}

	result.TotalMatches = result.KnowledgeMatches + result.DocumentMatches

	return result
}

// carriedReferences scans the conversation newest-first for references
// recorded as used on earlier assistant turns, skipping ids already present
// in the current reference list, capped at maxCarriedReferences.
func carriedReferences(conv *models.Conversation, current []models.KnowledgeReference) []models.KnowledgeReference {
	seen := make(map[string]struct{}, len(current))
	for _, ref := range current {
		seen[ref.ID] = struct{}{}
	}

	var carried []models.KnowledgeReference
	for i := len(conv.Messages) - 1; i >= 0 && len(carried) < maxCarriedReferences; i-- {
		msg := conv.Messages[i]
		if msg.Role != models.RoleAssistant || msg.Metadata == nil {
			continue
		}
		for _, ref := range msg.Metadata.UsedReferences {
			if len(carried) >= maxCarriedReferences {
				break
			}
			if _, dup := seen[ref.ID]; dup {
				continue
			}
			seen[ref.ID] = struct{}{}
			carried = append(carried, ref)
		}
	}

	return carried
}
