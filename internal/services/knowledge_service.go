package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/buddemax/kontext/internal/engine"
	"github.com/buddemax/kontext/internal/models"
	"github.com/buddemax/kontext/internal/store"
)

// KnowledgeService manages the knowledge base: capture, retrieval with
// access tracking, and deletion. Retrieval itself is delegated to the
// engine; this service owns the persistence side effects the engine
// deliberately stays free of.
type KnowledgeService struct {
	knowledge *store.KnowledgeStore
	provider  *EngineProvider
	metrics   *Metrics
}

// NewKnowledgeService creates a new knowledge service
func NewKnowledgeService(knowledge *store.KnowledgeStore, provider *EngineProvider, metrics *Metrics) *KnowledgeService {
	return &KnowledgeService{
		knowledge: knowledge,
		provider:  provider,
		metrics:   metrics,
	}
}

// Capture stores a new fact in the knowledge base
func (s *KnowledgeService) Capture(ctx context.Context, mode, content, source, entityType string) (models.KnowledgeEntry, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.KnowledgeEntry{}, fmt.Errorf("content must not be empty")
	}
	if !models.ValidMode(mode) {
		return models.KnowledgeEntry{}, fmt.Errorf("invalid mode %q", mode)
	}
	if source == "" {
		source = models.SourceVoice
	}
	if entityType == "" {
		entityType = models.EntityUnknown
	}

	now := time.Now()
	entry := models.KnowledgeEntry{
		ID:      uuid.New().String(),
		Mode:    mode,
		Content: content,
		Metadata: models.KnowledgeMetadata{
			Source:     source,
			EntityType: entityType,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.knowledge.Create(ctx, entry); err != nil {
		return models.KnowledgeEntry{}, err
	}

	log.Printf("✅ [KNOWLEDGE] Captured entry %s (%s, %s)", entry.ID, mode, entityType)
	return entry, nil
}

// CaptureFromUtterance classifies an utterance and, when it is a store
// command, captures the extracted fact. Returns the detected intent either
// way so the caller can route other commands.
func (s *KnowledgeService) CaptureFromUtterance(ctx context.Context, mode, utterance string) (models.Intent, *models.KnowledgeEntry, error) {
	eng := s.provider.Engine()
	intent := eng.DetectIntent(utterance)
	if s.metrics != nil {
		s.metrics.RecordIntent(intent.Name)
	}

	if intent.Name != models.IntentKnowledgeStore {
		return intent, nil, nil
	}

	content := intent.ExtractedEntity
	if content == "" {
		content = utterance
	}
	entry, err := s.Capture(ctx, mode, content, models.SourceVoice, models.EntityUnknown)
	if err != nil {
		return intent, nil, err
	}
	return intent, &entry, nil
}

// RetrieveOptions narrows a knowledge retrieval
type RetrieveOptions struct {
	Query        string
	Mode         string
	Limit        int
	EntityTypes  []string
	MinRelevance float64
}

// Retrieve runs relevance-ranked retrieval over the mode's collection and
// records an access on every returned entry. The bump happens here, after
// scoring, so reading an entry never changes the ranking that produced it.
func (s *KnowledgeService) Retrieve(ctx context.Context, opts RetrieveOptions) (engine.RetrieveResult, error) {
	start := time.Now()

	entries, err := s.knowledge.ListByMode(ctx, opts.Mode)
	if err != nil {
		return engine.RetrieveResult{}, err
	}

	eng := s.provider.Engine()
	result := eng.RetrieveContext(entries, engine.RetrieveOptions{
		Query:        opts.Query,
		Mode:         opts.Mode,
		Limit:        opts.Limit,
		EntityTypes:  opts.EntityTypes,
		MinRelevance: opts.MinRelevance,
	})

	if err := s.recordAccess(ctx, entries, result.Context); err != nil {
		log.Printf("⚠️ [KNOWLEDGE] Failed to record access counts: %v", err)
	}

	if s.metrics != nil {
		s.metrics.RecordRetrieval(opts.Mode, time.Since(start).Seconds(), result.TotalMatches)
	}

	return result, nil
}

// Get returns one entry by id
func (s *KnowledgeService) Get(ctx context.Context, id string) (models.KnowledgeEntry, error) {
	return s.knowledge.Get(ctx, id)
}

// List returns all entries for a mode
func (s *KnowledgeService) List(ctx context.Context, mode string) ([]models.KnowledgeEntry, error) {
	if !models.ValidMode(mode) {
		return nil, fmt.Errorf("invalid mode %q", mode)
	}
	return s.knowledge.ListByMode(ctx, mode)
}

// Delete removes an entry by id
func (s *KnowledgeService) Delete(ctx context.Context, id string) error {
	if err := s.knowledge.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("🗑️ [KNOWLEDGE] Deleted entry %s", id)
	return nil
}

// recordAccess increments access counts for the entries behind the
// returned references.
func (s *KnowledgeService) recordAccess(ctx context.Context, entries []models.KnowledgeEntry, refs []models.KnowledgeReference) error {
	if len(refs) == 0 {
		return nil
	}

	byID := make(map[string]models.KnowledgeEntry, len(entries))
	for _, entry := range entries {
		byID[entry.ID] = entry
	}

	now := time.Now()
	for _, ref := range refs {
		entry, ok := byID[ref.ID]
		if !ok {
			continue
		}
		entry.Metadata.AccessCount++
		entry.Metadata.LastAccessedAt = &now
		if err := s.knowledge.Update(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}
