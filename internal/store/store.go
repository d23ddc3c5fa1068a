package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	*sql.DB
}

// timeFormat is how timestamps are persisted. Stored in UTC.
const timeFormat = time.RFC3339Nano

// New opens (or creates) the SQLite database at path. ":memory:" gives an
// ephemeral database, used by tests.
func New(path string) (*DB, error) {
	// Pragmas go into the DSN so every pooled connection gets them.
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The sqlite driver serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ SQLite database connected")

	return &DB{db}, nil
}

// Initialize creates all required tables
func (db *DB) Initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS knowledge_entries (
		id         TEXT PRIMARY KEY,
		mode       TEXT NOT NULL,
		content    TEXT NOT NULL,
		metadata   TEXT NOT NULL DEFAULT '{}',
		embedding  TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_knowledge_mode ON knowledge_entries(mode);

	CREATE TABLE IF NOT EXISTS documents (
		id          TEXT PRIMARY KEY,
		mode        TEXT NOT NULL,
		filename    TEXT NOT NULL,
		mime_type   TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL,
		context     TEXT,
		uploaded_at TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_mode ON documents(mode);

	CREATE TABLE IF NOT EXISTS conversations (
		id         TEXT PRIMARY KEY,
		mode       TEXT NOT NULL,
		title      TEXT NOT NULL DEFAULT '',
		active     INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_mode ON conversations(mode);

	CREATE TABLE IF NOT EXISTS messages (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		role            TEXT NOT NULL,
		content         TEXT NOT NULL,
		metadata        TEXT,
		timestamp       TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, timestamp);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log.Println("✅ Database initialized successfully")
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}
