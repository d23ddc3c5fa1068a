package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/buddemax/kontext/internal/engine"
	"github.com/buddemax/kontext/internal/models"
	"github.com/buddemax/kontext/internal/store"
)

// ContextService assembles the full retrieval context for an utterance:
// intent classification, knowledge and document retrieval, conversation
// windowing, and reference carry-over across turns.
type ContextService struct {
	knowledge     *KnowledgeService
	documents     *store.DocumentStore
	conversations *store.ConversationStore
	provider      *EngineProvider
	metrics       *Metrics

	knowledgeLimit int
	documentLimit  int
}

// NewContextService creates a new context service
func NewContextService(
	knowledge *KnowledgeService,
	documents *store.DocumentStore,
	conversations *store.ConversationStore,
	provider *EngineProvider,
	metrics *Metrics,
	knowledgeLimit, documentLimit int,
) *ContextService {
	return &ContextService{
		knowledge:      knowledge,
		documents:      documents,
		conversations:  conversations,
		provider:       provider,
		metrics:        metrics,
		knowledgeLimit: knowledgeLimit,
		documentLimit:  documentLimit,
	}
}

// AssembleRequest is one context assembly call
type AssembleRequest struct {
	Query          string
	Mode           string
	ConversationID string // optional
}

// AssembleResponse carries the assembled context plus the classified intent
type AssembleResponse struct {
	Intent    models.Intent
	Retrieved bool
	Context   engine.AssembledContext
}

// Assemble classifies the utterance, decides whether retrieval should run
// at all, and builds the unified context over the mode's knowledge and
// document collections. When a conversation is supplied, the query and the
// assembled references are appended to it as a new turn.
func (s *ContextService) Assemble(ctx context.Context, req AssembleRequest) (AssembleResponse, error) {
	if !models.ValidMode(req.Mode) {
		return AssembleResponse{}, fmt.Errorf("invalid mode %q", req.Mode)
	}

	start := time.Now()
	eng := s.provider.Engine()

	intent := eng.DetectIntent(req.Query)
	if s.metrics != nil {
		s.metrics.RecordIntent(intent.Name)
	}

	resp := AssembleResponse{Intent: intent}

	var conversation *models.Conversation
	if req.ConversationID != "" {
		conv, err := s.conversations.Get(ctx, req.ConversationID)
		if err != nil {
			return AssembleResponse{}, fmt.Errorf("failed to load conversation: %w", err)
		}
		conversation = &conv
	}

	if !eng.RequiresContextRetrieval(intent) {
		// Store/delete/todo commands carry their payload in the utterance;
		// the conversation window still applies.
		if conversation != nil {
			window := eng.BuildConversationContext(conversation, engine.ConversationContextOptions{})
			resp.Context.ConversationContext = window.Context
			resp.Context.Topics = window.Topics
		}
		if err := s.recordTurn(ctx, req); err != nil {
			log.Printf("⚠️ [CONTEXT] Failed to record conversation turn: %v", err)
		}
		return resp, nil
	}
	resp.Retrieved = true

	entries, err := s.knowledge.List(ctx, req.Mode)
	if err != nil {
		return AssembleResponse{}, err
	}
	documents, err := s.documents.ListByMode(ctx, req.Mode)
	if err != nil {
		return AssembleResponse{}, err
	}

	// Entity-type narrowing from the intent applies to the knowledge side
	// only; documents are already sub-field scored.
	if types := eng.RelevantEntityTypes(intent); types != nil {
		entries = filterByEntityType(entries, types)
	}

	resp.Context = eng.AssembleContext(entries, documents, engine.AssembleOptions{
		Query:          req.Query,
		Mode:           req.Mode,
		KnowledgeLimit: s.knowledgeLimit,
		DocumentLimit:  s.documentLimit,
		Conversation:   conversation,
	})

	if err := s.knowledge.recordAccess(ctx, entries, knowledgeRefs(resp.Context.References)); err != nil {
		log.Printf("⚠️ [CONTEXT] Failed to record access counts: %v", err)
	}

	if err := s.recordTurn(ctx, req); err != nil {
		log.Printf("⚠️ [CONTEXT] Failed to record conversation turn: %v", err)
	}

	if s.metrics != nil {
		s.metrics.RecordRetrieval(req.Mode, time.Since(start).Seconds(), resp.Context.TotalMatches)
	}

	return resp, nil
}

// recordTurn appends the user query to the conversation. The assembled
// references are attached to the assistant reply later, when the caller
// reports it back through the conversation service.
func (s *ContextService) recordTurn(ctx context.Context, req AssembleRequest) error {
	if req.ConversationID == "" {
		return nil
	}

	msg := models.ConversationMessage{
		ID:        uuid.New().String(),
		Role:      models.RoleUser,
		Content:   req.Query,
		Timestamp: time.Now(),
	}

	return s.conversations.AppendMessage(ctx, req.ConversationID, msg)
}

func knowledgeRefs(refs []models.KnowledgeReference) []models.KnowledgeReference {
	var out []models.KnowledgeReference
	for _, ref := range refs {
		if ref.Source == models.ReferenceSourceKnowledge {
			out = append(out, ref)
		}
	}
	return out
}

func filterByEntityType(entries []models.KnowledgeEntry, types []string) []models.KnowledgeEntry {
	allowed := make(map[string]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}

	var filtered []models.KnowledgeEntry
	for _, entry := range entries {
		if _, ok := allowed[entry.Metadata.EntityType]; ok {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}
