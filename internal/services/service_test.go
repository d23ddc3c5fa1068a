package services

import (
	"context"
	"testing"
	"time"

	"github.com/buddemax/kontext/internal/models"
	"github.com/buddemax/kontext/internal/store"
)

type testEnv struct {
	db            *store.DB
	knowledge     *store.KnowledgeStore
	documents     *store.DocumentStore
	conversations *store.ConversationStore
	provider      *EngineProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Initialize(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	provider, err := NewEngineProvider("")
	if err != nil {
		t.Fatalf("failed to build engine provider: %v", err)
	}
	t.Cleanup(provider.Close)

	return &testEnv{
		db:            db,
		knowledge:     store.NewKnowledgeStore(db),
		documents:     store.NewDocumentStore(db),
		conversations: store.NewConversationStore(db),
		provider:      provider,
	}
}

func (env *testEnv) seedKnowledge(t *testing.T, id, mode, content string, age time.Duration) models.KnowledgeEntry {
	t.Helper()
	created := time.Now().Add(-age)
	entry := models.KnowledgeEntry{
		ID:      id,
		Mode:    mode,
		Content: content,
		Metadata: models.KnowledgeMetadata{
			Source:     models.SourceVoice,
			EntityType: models.EntityUnknown,
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
	if err := env.knowledge.Create(context.Background(), entry); err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}
	return entry
}
