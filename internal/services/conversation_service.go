package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/buddemax/kontext/internal/models"
	"github.com/buddemax/kontext/internal/store"
)

// ConversationService manages conversation lifecycle and turn recording
type ConversationService struct {
	conversations *store.ConversationStore
}

// NewConversationService creates a new conversation service
func NewConversationService(conversations *store.ConversationStore) *ConversationService {
	return &ConversationService{conversations: conversations}
}

// Start creates a new active conversation in the given mode
func (s *ConversationService) Start(ctx context.Context, mode, title string) (models.Conversation, error) {
	if !models.ValidMode(mode) {
		return models.Conversation{}, fmt.Errorf("invalid mode %q", mode)
	}

	now := time.Now()
	conv := models.Conversation{
		ID:        uuid.New().String(),
		Mode:      mode,
		Title:     title,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return models.Conversation{}, err
	}

	log.Printf("✅ [CONVERSATION] Started conversation %s (%s)", conv.ID, mode)
	return conv, nil
}

// Get returns a conversation with its messages
func (s *ConversationService) Get(ctx context.Context, id string) (models.Conversation, error) {
	return s.conversations.Get(ctx, id)
}

// List returns conversations for a mode without message bodies
func (s *ConversationService) List(ctx context.Context, mode string) ([]models.Conversation, error) {
	if !models.ValidMode(mode) {
		return nil, fmt.Errorf("invalid mode %q", mode)
	}
	return s.conversations.ListByMode(ctx, mode)
}

// RecordAssistantReply appends the generated answer to the conversation,
// tagged with the references that informed it. These tags are what makes
// reference carry-over across turns work.
func (s *ConversationService) RecordAssistantReply(ctx context.Context, conversationID, content string, usedRefs []models.KnowledgeReference) error {
	msg := models.ConversationMessage{
		ID:        uuid.New().String(),
		Role:      models.RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}
	if len(usedRefs) > 0 {
		msg.Metadata = &models.MessageMetadata{UsedReferences: usedRefs}
	}

	return s.conversations.AppendMessage(ctx, conversationID, msg)
}

// Close marks a conversation inactive
func (s *ConversationService) Close(ctx context.Context, id string) error {
	return s.conversations.SetActive(ctx, id, false)
}

// Delete removes a conversation and its messages
func (s *ConversationService) Delete(ctx context.Context, id string) error {
	return s.conversations.Delete(ctx, id)
}
