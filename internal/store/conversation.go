package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buddemax/kontext/internal/models"
)

// ConversationStore persists conversations and their messages
type ConversationStore struct {
	db *DB
}

// NewConversationStore creates a new conversation store
func NewConversationStore(db *DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// Create inserts a new conversation without messages
func (s *ConversationStore) Create(ctx context.Context, conv models.Conversation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, mode, title, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		conv.ID, conv.Mode, conv.Title, boolToInt(conv.Active),
		formatTime(conv.CreatedAt), formatTime(conv.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}
	return nil
}

// Get returns a conversation with its messages in chronological order
func (s *ConversationStore) Get(ctx context.Context, id string) (models.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, mode, title, active, created_at, updated_at
		FROM conversations WHERE id = ?`, id)

	var conv models.Conversation
	var active int
	var createdAt, updatedAt string
	if err := row.Scan(&conv.ID, &conv.Mode, &conv.Title, &active, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Conversation{}, ErrNotFound
		}
		return models.Conversation{}, fmt.Errorf("failed to load conversation: %w", err)
	}
	conv.Active = active != 0

	var err error
	if conv.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Conversation{}, err
	}
	if conv.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Conversation{}, err
	}

	if conv.Messages, err = s.listMessages(ctx, id); err != nil {
		return models.Conversation{}, err
	}

	return conv, nil
}

// ListByMode returns conversations for one mode, most recent first,
// without their message bodies.
func (s *ConversationStore) ListByMode(ctx context.Context, mode string) ([]models.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mode, title, active, created_at, updated_at
		FROM conversations WHERE mode = ? ORDER BY updated_at DESC`, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		var active int
		var createdAt, updatedAt string
		if err := rows.Scan(&conv.ID, &conv.Mode, &conv.Title, &active, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		conv.Active = active != 0
		if conv.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if conv.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}

// AppendMessage adds a message to a conversation and bumps its updated_at
func (s *ConversationStore) AppendMessage(ctx context.Context, conversationID string, msg models.ConversationMessage) error {
	var metadata any
	if msg.Metadata != nil {
		data, err := json.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal message metadata: %w", err)
		}
		metadata = string(data)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, metadata, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, conversationID, msg.Role, msg.Content, metadata, formatTime(msg.Timestamp)); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE conversations SET updated_at = ? WHERE id = ?`,
		formatTime(msg.Timestamp), conversationID)
	if err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// SetActive flips the active flag of a conversation
func (s *ConversationStore) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE conversations SET active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a conversation; messages cascade
func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ConversationStore) listMessages(ctx context.Context, conversationID string) ([]models.ConversationMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, metadata, timestamp
		FROM messages WHERE conversation_id = ? ORDER BY timestamp, id`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ConversationMessage
	for rows.Next() {
		var msg models.ConversationMessage
		var metadata sql.NullString
		var timestamp string
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &metadata, &timestamp); err != nil {
			return nil, err
		}
		if metadata.Valid && metadata.String != "" {
			msg.Metadata = &models.MessageMetadata{}
			if err := json.Unmarshal([]byte(metadata.String), msg.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal message metadata: %w", err)
			}
		}
		if msg.Timestamp, err = parseTime(timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
