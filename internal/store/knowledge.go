package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buddemax/kontext/internal/models"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// KnowledgeStore persists knowledge entries
type KnowledgeStore struct {
	db *DB
}

// NewKnowledgeStore creates a new knowledge store
func NewKnowledgeStore(db *DB) *KnowledgeStore {
	return &KnowledgeStore{db: db}
}

// Create inserts a new knowledge entry
func (s *KnowledgeStore) Create(ctx context.Context, entry models.KnowledgeEntry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	embedding, err := marshalEmbedding(entry.Embedding)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO knowledge_entries (id, mode, content, metadata, embedding, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Mode, entry.Content, string(metadata), embedding,
		formatTime(entry.CreatedAt), formatTime(entry.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert knowledge entry: %w", err)
	}
	return nil
}

// Get returns a single entry by id
func (s *KnowledgeStore) Get(ctx context.Context, id string) (models.KnowledgeEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, mode, content, metadata, embedding, created_at, updated_at
		FROM knowledge_entries WHERE id = ?`, id)

	entry, err := scanKnowledgeEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.KnowledgeEntry{}, ErrNotFound
	}
	return entry, err
}

// ListByMode returns all entries for one mode
func (s *KnowledgeStore) ListByMode(ctx context.Context, mode string) ([]models.KnowledgeEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mode, content, metadata, embedding, created_at, updated_at
		FROM knowledge_entries WHERE mode = ? ORDER BY created_at`, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge entries: %w", err)
	}
	defer rows.Close()

	return collectKnowledgeEntries(rows)
}

// ListAll returns the full collection across modes, for maintenance
func (s *KnowledgeStore) ListAll(ctx context.Context) ([]models.KnowledgeEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mode, content, metadata, embedding, created_at, updated_at
		FROM knowledge_entries ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge entries: %w", err)
	}
	defer rows.Close()

	return collectKnowledgeEntries(rows)
}

// Update rewrites content, metadata and updated_at of an existing entry
func (s *KnowledgeStore) Update(ctx context.Context, entry models.KnowledgeEntry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE knowledge_entries SET content = ?, metadata = ?, updated_at = ? WHERE id = ?`,
		entry.Content, string(metadata), formatTime(entry.UpdatedAt), entry.ID)
	if err != nil {
		return fmt.Errorf("failed to update knowledge entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an entry by id
func (s *KnowledgeStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM knowledge_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete knowledge entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBatch removes multiple entries in one transaction, used by the
// maintenance pass to drop a duplicate cluster atomically.
func (s *KnowledgeStore) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM knowledge_entries WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete knowledge entry %s: %w", id, err)
		}
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKnowledgeEntry(row rowScanner) (models.KnowledgeEntry, error) {
	var entry models.KnowledgeEntry
	var metadata string
	var embedding sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(&entry.ID, &entry.Mode, &entry.Content, &metadata, &embedding, &createdAt, &updatedAt); err != nil {
		return models.KnowledgeEntry{}, err
	}

	if err := json.Unmarshal([]byte(metadata), &entry.Metadata); err != nil {
		return models.KnowledgeEntry{}, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	if embedding.Valid && embedding.String != "" {
		if err := json.Unmarshal([]byte(embedding.String), &entry.Embedding); err != nil {
			return models.KnowledgeEntry{}, fmt.Errorf("failed to unmarshal embedding: %w", err)
		}
	}

	var err error
	if entry.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.KnowledgeEntry{}, err
	}
	if entry.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.KnowledgeEntry{}, err
	}

	return entry, nil
}

func collectKnowledgeEntries(rows *sql.Rows) ([]models.KnowledgeEntry, error) {
	var entries []models.KnowledgeEntry
	for rows.Next() {
		entry, err := scanKnowledgeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func marshalEmbedding(embedding []float32) (any, error) {
	if len(embedding) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding: %w", err)
	}
	return string(data), nil
}
