package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/buddemax/kontext/internal/models"
)

// DocumentStore persists document entries and their analysis results
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new document store
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Create inserts a new document entry
func (s *DocumentStore) Create(ctx context.Context, doc models.DocumentEntry) error {
	docContext, err := marshalDocumentContext(doc.Context)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, mode, filename, mime_type, status, context, uploaded_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Mode, doc.Filename, doc.MimeType, doc.Status, docContext,
		formatTime(doc.UploadedAt), formatTime(doc.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// Get returns a single document by id
func (s *DocumentStore) Get(ctx context.Context, id string) (models.DocumentEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, mode, filename, mime_type, status, context, uploaded_at, updated_at
		FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DocumentEntry{}, ErrNotFound
	}
	return doc, err
}

// ListByMode returns all documents for one mode
func (s *DocumentStore) ListByMode(ctx context.Context, mode string) ([]models.DocumentEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mode, filename, mime_type, status, context, uploaded_at, updated_at
		FROM documents WHERE mode = ? ORDER BY uploaded_at`, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.DocumentEntry
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// UpdateAnalysis attaches an analysis result to a document and moves it to
// the given status.
func (s *DocumentStore) UpdateAnalysis(ctx context.Context, id string, status string, docContext *models.DocumentContext, updatedAt time.Time) error {
	data, err := marshalDocumentContext(docContext)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET status = ?, context = ?, updated_at = ? WHERE id = ?`,
		status, data, formatTime(updatedAt), id)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document by id
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDocument(row rowScanner) (models.DocumentEntry, error) {
	var doc models.DocumentEntry
	var docContext sql.NullString
	var uploadedAt, updatedAt string

	if err := row.Scan(&doc.ID, &doc.Mode, &doc.Filename, &doc.MimeType, &doc.Status, &docContext, &uploadedAt, &updatedAt); err != nil {
		return models.DocumentEntry{}, err
	}

	if docContext.Valid && docContext.String != "" {
		doc.Context = &models.DocumentContext{}
		if err := json.Unmarshal([]byte(docContext.String), doc.Context); err != nil {
			return models.DocumentEntry{}, fmt.Errorf("failed to unmarshal document context: %w", err)
		}
	}

	var err error
	if doc.UploadedAt, err = parseTime(uploadedAt); err != nil {
		return models.DocumentEntry{}, err
	}
	if doc.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.DocumentEntry{}, err
	}

	return doc, nil
}

func marshalDocumentContext(ctx *models.DocumentContext) (any, error) {
	if ctx == nil {
		return nil, nil
	}
	data, err := json.Marshal(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document context: %w", err)
	}
	return string(data), nil
}
