package models

import (
	"time"
)

// Document processing status constants
const (
	DocumentStatusPending    = "pending"
	DocumentStatusProcessing = "processing"
	DocumentStatusComplete   = "complete"
	DocumentStatusFailed     = "failed"
)

// DocumentEntry represents an uploaded document with its extracted analysis.
// The engine consumes these read-only; parsing and structuring happen in an
// external document-processing collaborator.
type DocumentEntry struct {
	ID       string           `json:"id"`
	Mode     string           `json:"mode"`
	Filename string           `json:"filename"`
	MimeType string           `json:"mime_type,omitempty"`
	Status   string           `json:"status"` // pending, processing, complete, failed
	Context  *DocumentContext `json:"context,omitempty"`

	UploadedAt time.Time `json:"uploaded_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DocumentContext is the structured analysis of a document
type DocumentContext struct {
	Summary       string                 `json:"summary,omitempty"`
	Topics        []string               `json:"topics,omitempty"`
	Entities      []DocumentEntity       `json:"entities,omitempty"`
	KeyFacts      []string               `json:"key_facts,omitempty"`
	Relationships []DocumentRelationship `json:"relationships,omitempty"`
	ActionItems   []string               `json:"action_items,omitempty"`
	Decisions     []string               `json:"decisions,omitempty"`
	Deadlines     []DocumentDeadline     `json:"deadlines,omitempty"`
	Confidence    float64                `json:"confidence,omitempty"`
}

// DocumentEntity is a named entity found in a document
type DocumentEntity struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"` // person, company, project, technology, ...
	Relevance float64 `json:"relevance,omitempty"`
}

// DocumentRelationship links two entities mentioned in a document
type DocumentRelationship struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Relation string `json:"relation"`
}

// DocumentDeadline is a dated obligation extracted from a document
type DocumentDeadline struct {
	Description string `json:"description"`
	Date        string `json:"date,omitempty"`
}
