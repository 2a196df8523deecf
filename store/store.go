// Package store is a local SQLite cache of server conversations. It
// backs offline browsing and the `strata serve` viewer, and carries
// local-only annotations (pins, tags) the server knows nothing about.
package store

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/strataai/strata/internal/api"
)

// Conversation is a cached conversation with its active thread
// snapshot and local annotations.
type Conversation struct {
	// ID of the conversation on the server.
	ID string
	// Title at the time of the last sync.
	Title *string
	// Server creation time, unix micros.
	CreationTimestamp int64
	// Server update time, unix micros.
	UpdateTimestamp int64
	// Time of the last sync, unix micros.
	SyncedTimestamp int64
	// The active thread as last seen.
	Messages []api.Message
	// Local-only pin.
	Pinned bool
	// Local-only tags.
	Tags []string
}

// Store implements the SQLite cache.
type Store struct {
	db *sql.DB
}

// New opens or creates the cache database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			title TEXT,
			creation_timestamp INTEGER NOT NULL,
			update_timestamp INTEGER NOT NULL,
			synced_timestamp INTEGER NOT NULL,
			messages TEXT NOT NULL,
			pinned INTEGER NOT NULL DEFAULT 0,
			tags TEXT NOT NULL DEFAULT '[]'
		)
	`)
	if err != nil {
		return nil, errors.Wrap(err, "creating conversations table")
	}

	_, err = db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS conversations_fts USING fts5(
			id UNINDEXED,
			searchable_content
		)
	`)
	if err != nil {
		return nil, errors.Wrap(err, "creating search table")
	}

	return &Store{db: db}, nil
}

// FromServer builds a cache row from server objects.
func FromServer(conversation *api.Conversation, messages []api.Message) *Conversation {
	title := conversation.Title
	return &Conversation{
		ID:                conversation.ID,
		Title:             &title,
		CreationTimestamp: conversation.CreatedAt.UnixMicro(),
		UpdateTimestamp:   conversation.UpdatedAt.UnixMicro(),
		SyncedTimestamp:   time.Now().UnixMicro(),
		Messages:          messages,
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
