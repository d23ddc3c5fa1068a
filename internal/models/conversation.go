package models

import (
	"time"
)

// Message role constants
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is an ordered, append-only sequence of turns. A conversation
// is marked inactive when the user moves on; the engine never hard-deletes.
type Conversation struct {
	ID       string                `json:"id"`
	Mode     string                `json:"mode"`
	Title    string                `json:"title,omitempty"`
	Messages []ConversationMessage `json:"messages"`
	Active   bool                  `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationMessage is a single turn in a conversation
type ConversationMessage struct {
	ID        string           `json:"id"`
	Role      string           `json:"role"` // "user" or "assistant"
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
}

// MessageMetadata records which references were used to answer a turn, so a
// document cited two turns ago stays available without being re-mentioned.
type MessageMetadata struct {
	UsedReferences []KnowledgeReference `json:"used_references,omitempty"`
}

// LastMessage returns the most recent message, or nil for an empty conversation.
func (c *Conversation) LastMessage() *ConversationMessage {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}
