package store

import (
	"database/sql"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a conversation is not in the cache.
var ErrNotFound = errors.New("conversation not found")

// Get returns a cached conversation.
func (s *Store) Get(id string) (*Conversation, error) {
	row := s.db.QueryRow(`
		SELECT id, title, creation_timestamp, update_timestamp, synced_timestamp, messages, pinned, tags
		FROM conversations
		WHERE id = ?
	`, id)

	conversation, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "querying conversation")
	}
	return conversation, nil
}
