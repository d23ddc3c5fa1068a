package services

import (
	"context"
	"log"
	"time"

	"github.com/buddemax/kontext/internal/engine"
	"github.com/buddemax/kontext/internal/models"
	"github.com/buddemax/kontext/internal/store"
)

// MaintenanceService runs the knowledge cleanup pass (duplicate clustering
// and relative-date enrichment) and persists its outcome.
type MaintenanceService struct {
	knowledge *store.KnowledgeStore
	provider  *EngineProvider
	metrics   *Metrics

	similarityThreshold float64
}

// MaintenanceSummary is the persisted outcome of one maintenance pass
type MaintenanceSummary struct {
	StartedAt       time.Time               `json:"started_at"`
	Duration        time.Duration           `json:"duration"`
	TotalEntries    int                     `json:"total_entries"`
	DuplicateGroups []models.DuplicateGroup `json:"duplicate_groups"`
	RemovedCount    int                     `json:"removed_count"`
	EnrichedCount   int                     `json:"enriched_count"`
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(knowledge *store.KnowledgeStore, provider *EngineProvider, metrics *Metrics, similarityThreshold float64) *MaintenanceService {
	return &MaintenanceService{
		knowledge:           knowledge,
		provider:            provider,
		metrics:             metrics,
		similarityThreshold: similarityThreshold,
	}
}

// Run executes one maintenance pass over the whole knowledge base and
// persists removals and enrichments. Safe to run repeatedly; a pass over
// already-clean data changes nothing.
func (s *MaintenanceService) Run(ctx context.Context) (MaintenanceSummary, error) {
	start := time.Now()
	log.Println("🧹 [MAINTENANCE] Starting knowledge cleanup pass...")

	entries, err := s.knowledge.ListAll(ctx)
	if err != nil {
		return MaintenanceSummary{}, err
	}

	result := s.provider.Engine().CleanupKnowledgeEntries(entries, engine.MaintenanceOptions{
		SimilarityThreshold: s.similarityThreshold,
	})

	var removedIDs []string
	for _, group := range result.Duplicates {
		for _, entry := range group.Removed {
			removedIDs = append(removedIDs, entry.ID)
		}
	}
	if err := s.knowledge.DeleteBatch(ctx, removedIDs); err != nil {
		return MaintenanceSummary{}, err
	}

	for _, entry := range result.Enriched {
		if err := s.knowledge.Update(ctx, entry); err != nil {
			return MaintenanceSummary{}, err
		}
	}

	summary := MaintenanceSummary{
		StartedAt:       start,
		Duration:        time.Since(start),
		TotalEntries:    len(entries),
		DuplicateGroups: result.Duplicates,
		RemovedCount:    len(removedIDs),
		EnrichedCount:   len(result.Enriched),
	}

	if s.metrics != nil {
		s.metrics.MaintenanceRuns.Inc()
		s.metrics.MaintenanceDuplicates.Add(float64(summary.RemovedCount))
		s.metrics.MaintenanceEnriched.Add(float64(summary.EnrichedCount))
	}

	log.Printf("✅ [MAINTENANCE] Cleanup finished in %v: %d entries scanned, %d duplicates removed, %d enriched",
		summary.Duration, summary.TotalEntries, summary.RemovedCount, summary.EnrichedCount)

	return summary, nil
}
