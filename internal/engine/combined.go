package engine

import (
	"sort"
	"strings"

	"github.com/buddemax/kontext/internal/models"
)

// CombinedOptions configures a combined knowledge+document retrieval
type CombinedOptions struct {
	Query          string
	Mode           string
	KnowledgeLimit int
	DocumentLimit  int
}

// CombinedResult merges knowledge and document references into one
// relevance-sorted list plus a rendered prompt block.
type CombinedResult struct {
	References       []models.KnowledgeReference
	KnowledgeMatches int
	DocumentMatches  int
	MatchedKeywords  []string
	Prompt           string
}

// RetrieveCombinedContext runs knowledge and document retrieval
// independently (each with its own limit), tags every reference with its
// source, and re-sorts the union by relevance. Pure function; no state.
func (e *Engine) RetrieveCombinedContext(
	entries []models.KnowledgeEntry,
	documents []models.DocumentEntry,
	opts CombinedOptions,
) CombinedResult {
	knowledge := e.RetrieveContext(entries, RetrieveOptions{
		Query: opts.Query,
		Mode:  opts.Mode,
		Limit: opts.KnowledgeLimit,
	})

	docs := e.RetrieveDocumentContext(documents, DocumentRetrieveOptions{
		Query: opts.Query,
		Mode:  opts.Mode,
		Limit: opts.DocumentLimit,
	})

	merged := make([]models.KnowledgeReference, 0, len(knowledge.Context)+len(docs.References))
	merged = append(merged, knowledge.Context...)
	merged = append(merged, docs.References...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].RelevanceScore > merged[j].RelevanceScore
	})

	return CombinedResult{
		References:       merged,
		KnowledgeMatches: knowledge.TotalMatches,
		DocumentMatches:  docs.TotalMatches,
		MatchedKeywords:  knowledge.MatchedKeywords,
		Prompt:           renderCombinedPrompt(knowledge.Context, docs.References),
	}
}

// renderCombinedPrompt renders the two-part context block, omitting either
// section when it is empty.
func renderCombinedPrompt(knowledge, documents []models.KnowledgeReference) string {
	var sb strings.Builder

	if len(knowledge) > 0 {
		sb.WriteString("Relevant context from the knowledge base:\n")
		for _, ref := range knowledge {
			sb.WriteString("- " + ref.Snippet + "\n")
		}
	}

	if len(documents) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("Relevant context from documents:\n")
		for _, ref := range documents {
			sb.WriteString(ref.Snippet + "\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
