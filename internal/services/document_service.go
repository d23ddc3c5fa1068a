package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/buddemax/kontext/internal/models"
	"github.com/buddemax/kontext/internal/store"
)

// DocumentService manages the document collection. Parsing and analysis
// happen in an external collaborator; this service registers uploads and
// attaches the finished analysis when it arrives.
type DocumentService struct {
	documents *store.DocumentStore
}

func NewDocumentService(documents *store.DocumentStore) *DocumentService {
	return &DocumentService{documents: documents}
}

// Register records a freshly uploaded document in pending state.
func (s *DocumentService) Register(ctx context.Context, mode, filename, mimeType string) (models.DocumentEntry, error) {
	if !models.ValidMode(mode) {
		return models.DocumentEntry{}, fmt.Errorf("invalid mode %q", mode)
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return models.DocumentEntry{}, fmt.Errorf("filename must not be empty")
	}

	now := time.Now().UTC()
	doc := models.DocumentEntry{
		ID:         uuid.New().String(),
		Mode:       mode,
		Filename:   filename,
		MimeType:   mimeType,
		Status:     models.DocumentStatusPending,
		UploadedAt: now,
		UpdatedAt:  now,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return models.DocumentEntry{}, err
	}

	log.Printf("📄 [DOCUMENTS] Registered document %s (%s, mode=%s)", doc.ID, filename, mode)
	return doc, nil
}

// AttachAnalysis stores the structured analysis of a document and marks it
// complete. A nil analysis marks the document failed instead.
func (s *DocumentService) AttachAnalysis(ctx context.Context, id string, analysis *models.DocumentContext) (models.DocumentEntry, error) {
	status := models.DocumentStatusComplete
	if analysis == nil {
		status = models.DocumentStatusFailed
	}
	if err := s.documents.UpdateAnalysis(ctx, id, status, analysis, time.Now().UTC()); err != nil {
		return models.DocumentEntry{}, err
	}
	return s.documents.Get(ctx, id)
}

func (s *DocumentService) Get(ctx context.Context, id string) (models.DocumentEntry, error) {
	return s.documents.Get(ctx, id)
}

func (s *DocumentService) List(ctx context.Context, mode string) ([]models.DocumentEntry, error) {
	if !models.ValidMode(mode) {
		return nil, fmt.Errorf("invalid mode %q", mode)
	}
	return s.documents.ListByMode(ctx, mode)
}

func (s *DocumentService) Delete(ctx context.Context, id string) error {
	return s.documents.Delete(ctx, id)
}
