package models

import (
	"time"
)

// Mode partitions the knowledge collection into two isolated namespaces.
// An entry never moves between modes and no retrieval mixes them.
const (
	ModePrivate = "private"
	ModeWork    = "work"
)

// ValidMode reports whether s is one of the two supported modes.
func ValidMode(s string) bool {
	return s == ModePrivate || s == ModeWork
}

// EntityType constants for KnowledgeMetadata.EntityType
const (
	EntityPerson     = "person"
	EntityProject    = "project"
	EntityTechnology = "technology"
	EntityCompany    = "company"
	EntityDeadline   = "deadline"
	EntityDecision   = "decision"
	EntityFact       = "fact"
	EntityPreference = "preference"
	EntityUnknown    = "unknown"
)

// KnowledgeSource constants for KnowledgeMetadata.Source
const (
	SourceVoice     = "voice"
	SourceImport    = "import"
	SourceGenerated = "generated"
)

// KnowledgeEntry represents a single stored personal fact
type KnowledgeEntry struct {
	ID       string            `json:"id"`
	Mode     string            `json:"mode"` // "private" or "work", immutable after creation
	Content  string            `json:"content"`
	Metadata KnowledgeMetadata `json:"metadata"`

	// Reserved for semantic search; never populated or consulted by the
	// engine. All ranking is keyword/heuristic based.
	Embedding []float32 `json:"embedding,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KnowledgeMetadata carries the scoring and provenance fields of an entry
type KnowledgeMetadata struct {
	Source         string     `json:"source"` // "voice", "import", "generated"
	Tags           []string   `json:"tags,omitempty"`
	EntityType     string     `json:"entity_type,omitempty"` // person, project, technology, ...
	AccessCount    int64      `json:"access_count"`          // how often the entry was selected for context
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	RelevanceDecay float64    `json:"relevance_decay"`
}

// KnowledgeReference is an ephemeral, derived view of an entry produced by
// retrieval. It is never persisted as its own record; assistant turns may
// carry the references that informed them in their message metadata.
type KnowledgeReference struct {
	ID             string  `json:"id"`
	Snippet        string  `json:"snippet"` // <=150 chars, ellipsis-truncated
	RelevanceScore float64 `json:"relevance_score"`
	Source         string  `json:"source"` // "knowledge" or "files"
}

// Reference source tags
const (
	ReferenceSourceKnowledge = "knowledge"
	ReferenceSourceFiles     = "files"
)

// DuplicateGroup is the ephemeral result of duplicate clustering: one
// surviving entry and the entries folded into it. The engine computes the
// grouping; the caller persists the removals.
type DuplicateGroup struct {
	Kept    KnowledgeEntry   `json:"kept"`
	Removed []KnowledgeEntry `json:"removed"`
}
