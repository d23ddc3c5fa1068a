package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/buddemax/kontext/internal/models"
)

// Document retrieval defaults
const (
	DefaultDocumentLimit        = 3
	DefaultDocumentMinRelevance = 0.1
)

// Sub-field weights for document scoring. Fields absent from a document do
// not penalize it: the weighted sum is divided by the weight actually
// present.
const (
	weightSummary  = 0.30
	weightTopics   = 0.20
	weightEntities = 0.20
	weightFacts    = 0.15
	weightActions  = 0.15 // action items, decisions and deadlines together
)

// Caps for the rendered document snippet block
const (
	snippetMaxFacts          = 8
	snippetMaxActions        = 5
	snippetMaxDecisions      = 5
	snippetMaxEntitiesPerTyp = 5
)

// DocumentRetrieveOptions configures a document retrieval call
type DocumentRetrieveOptions struct {
	Query        string
	Mode         string
	Limit        int
	MinRelevance float64
}

// DocumentRetrieveResult is the outcome of a document retrieval call
type DocumentRetrieveResult struct {
	References       []models.KnowledgeReference
	MatchedDocuments []string // IDs of documents above the relevance bar
	TotalMatches     int
}

// RetrieveDocumentContext scores completed document analyses against the
// query using weighted sub-field matching (summary, topics, entities, key
// facts, actions/decisions/deadlines) instead of raw text. A query whose
// keyword extraction yields no usable terms matches nothing.
func (e *Engine) RetrieveDocumentContext(documents []models.DocumentEntry, opts DocumentRetrieveOptions) DocumentRetrieveResult {
	if opts.Limit <= 0 {
		opts.Limit = DefaultDocumentLimit
	}
	if opts.MinRelevance <= 0 {
		opts.MinRelevance = DefaultDocumentMinRelevance
	}

	keywords := e.ExtractKeywords(opts.Query)
	if len(keywords) == 0 {
		return DocumentRetrieveResult{}
	}

	peopleQuery := e.isPeopleQuery(keywords)

	type scored struct {
		doc   models.DocumentEntry
		score float64
	}

	var candidates []scored
	for _, doc := range documents {
		if doc.Mode != opts.Mode || doc.Status != models.DocumentStatusComplete || doc.Context == nil {
			continue
		}
		score := scoreDocument(doc.Context, keywords)
		if score < opts.MinRelevance {
			continue
		}
		candidates = append(candidates, scored{doc: doc, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	result := DocumentRetrieveResult{TotalMatches: len(candidates)}
	for _, c := range candidates {
		result.MatchedDocuments = append(result.MatchedDocuments, c.doc.ID)
	}

	for i, c := range candidates {
		if i >= opts.Limit {
			break
		}
		result.References = append(result.References, models.KnowledgeReference{
			ID:             c.doc.ID,
			Snippet:        e.buildDocumentSnippet(c.doc, peopleQuery),
			RelevanceScore: c.score,
			Source:         models.ReferenceSourceFiles,
		})
	}

	return result
}

// isPeopleQuery reports whether the keyword set suggests a people-oriented
// question (interrogative/role words from the locale table).
func (e *Engine) isPeopleQuery(keywords []string) bool {
	for _, kw := range keywords {
		if _, ok := e.peopleWord[kw]; ok {
			return true
		}
	}
	return false
}

// scoreDocument computes the weighted sub-field score for one document.
// Each sub-score is matched-keyword-count over total-keyword-count,
// computed independently per field.
func scoreDocument(ctx *models.DocumentContext, keywords []string) float64 {
	var weightedSum, presentWeight float64

	if ctx.Summary != "" {
		weightedSum += weightSummary * fieldScore(ctx.Summary, keywords)
		presentWeight += weightSummary
	}

	if len(ctx.Topics) > 0 {
		weightedSum += weightTopics * fieldScore(strings.Join(ctx.Topics, " "), keywords)
		presentWeight += weightTopics
	}

	if len(ctx.Entities) > 0 {
		names := make([]string, len(ctx.Entities))
		for i, ent := range ctx.Entities {
			names[i] = ent.Name
		}
		weightedSum += weightEntities * fieldScore(strings.Join(names, " "), keywords)
		presentWeight += weightEntities
	}

	if len(ctx.KeyFacts) > 0 {
		weightedSum += weightFacts * fieldScore(strings.Join(ctx.KeyFacts, " "), keywords)
		presentWeight += weightFacts
	}

	actionText := actionFieldText(ctx)
	if actionText != "" {
		weightedSum += weightActions * fieldScore(actionText, keywords)
		presentWeight += weightActions
	}

	if presentWeight == 0 {
		return 0
	}
	return weightedSum / presentWeight
}

func actionFieldText(ctx *models.DocumentContext) string {
	parts := make([]string, 0, len(ctx.ActionItems)+len(ctx.Decisions)+len(ctx.Deadlines))
	parts = append(parts, ctx.ActionItems...)
	parts = append(parts, ctx.Decisions...)
	for _, d := range ctx.Deadlines {
		parts = append(parts, d.Description+" "+d.Date)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func fieldScore(text string, keywords []string) float64 {
	lowered := strings.ToLower(text)
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

// buildDocumentSnippet renders a multi-line context block for one document:
// entities grouped by type, key facts, action items, decisions and all
// deadlines. For people-oriented questions, person entities move to the
// front and are listed in full instead of the truncated sample.
func (e *Engine) buildDocumentSnippet(doc models.DocumentEntry, peopleQuery bool) string {
	ctx := doc.Context
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Document: %s\n", doc.Filename))
	if ctx.Summary != "" {
		sb.WriteString(fmt.Sprintf("Summary: %s\n", ctx.Summary))
	}

	if len(ctx.Entities) > 0 {
		e.writeEntityGroups(&sb, ctx.Entities, peopleQuery)
	}

	writeListSection(&sb, "Key facts", ctx.KeyFacts, snippetMaxFacts)
	writeListSection(&sb, "Action items", ctx.ActionItems, snippetMaxActions)
	writeListSection(&sb, "Decisions", ctx.Decisions, snippetMaxDecisions)

	if len(ctx.Deadlines) > 0 {
		sb.WriteString("Deadlines:\n")
		for _, d := range ctx.Deadlines {
			if d.Date != "" {
				sb.WriteString(fmt.Sprintf("- %s (%s)\n", d.Description, d.Date))
			} else {
				sb.WriteString(fmt.Sprintf("- %s\n", d.Description))
			}
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (e *Engine) writeEntityGroups(sb *strings.Builder, entities []models.DocumentEntity, peopleQuery bool) {
	groups := make(map[string][]string)
	order := make([]string, 0, 4)
	for _, ent := range entities {
		typ := ent.Type
		if typ == "" {
			typ = models.EntityUnknown
		}
		if _, seen := groups[typ]; !seen {
			order = append(order, typ)
		}
		groups[typ] = append(groups[typ], ent.Name)
	}

	// Person entries first for people-oriented questions
	if peopleQuery {
		for i, typ := range order {
			if typ == models.EntityPerson && i > 0 {
				order = append([]string{typ}, append(order[:i:i], order[i+1:]...)...)
				break
			}
		}
	}

	for _, typ := range order {
		names := groups[typ]
		// People questions get every person, everything else stays a sample
		if !(peopleQuery && typ == models.EntityPerson) && len(names) > snippetMaxEntitiesPerTyp {
			names = names[:snippetMaxEntitiesPerTyp]
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", entityTypeLabel(typ), strings.Join(names, ", ")))
	}
}

func entityTypeLabel(typ string) string {
	if typ == "" {
		return "Entities"
	}
	return strings.ToUpper(typ[:1]) + typ[1:]
}

func writeListSection(sb *strings.Builder, label string, items []string, max int) {
	if len(items) == 0 {
		return
	}
	if len(items) > max {
		items = items[:max]
	}
	sb.WriteString(label + ":\n")
	for _, item := range items {
		sb.WriteString("- " + item + "\n")
	}
}
