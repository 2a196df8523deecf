package store

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Save upserts a conversation and refreshes its search index entry.
// Local annotations on an existing row survive a re-sync.
func (s *Store) Save(conversation *Conversation) error {
	if conversation == nil {
		return errors.New("conversation cannot be nil")
	}
	conversation.SyncedTimestamp = time.Now().UnixMicro()

	// Preserve local annotations across syncs.
	if existing, err := s.Get(conversation.ID); err == nil {
		if !conversation.Pinned {
			conversation.Pinned = existing.Pinned
		}
		if len(conversation.Tags) == 0 {
			conversation.Tags = existing.Tags
		}
	}

	messagesJSON, err := json.Marshal(conversation.Messages)
	if err != nil {
		return errors.Wrap(err, "marshaling messages")
	}
	tags := dedupeStringsSorted(conversation.Tags)
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return errors.Wrap(err, "marshaling tags")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		REPLACE INTO conversations (
			id, title, creation_timestamp, update_timestamp, synced_timestamp, messages, pinned, tags
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		conversation.ID,
		conversation.Title,
		conversation.CreationTimestamp,
		conversation.UpdateTimestamp,
		conversation.SyncedTimestamp,
		string(messagesJSON),
		boolToInt(conversation.Pinned),
		string(tagsJSON),
	)
	if err != nil {
		return errors.Wrap(err, "writing conversation")
	}

	if _, err := tx.Exec(`DELETE FROM conversations_fts WHERE id = ?`, conversation.ID); err != nil {
		return errors.Wrap(err, "clearing search entry")
	}
	_, err = tx.Exec(`INSERT INTO conversations_fts (id, searchable_content) VALUES (?, ?)`,
		conversation.ID, searchableContent(conversation))
	if err != nil {
		return errors.Wrap(err, "indexing conversation")
	}

	return tx.Commit()
}

// SetPinned toggles the local pin.
func (s *Store) SetPinned(id string, pinned bool) error {
	result, err := s.db.Exec(`UPDATE conversations SET pinned = ? WHERE id = ?`, boolToInt(pinned), id)
	if err != nil {
		return errors.Wrap(err, "updating pin")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "checking rows affected")
	}
	if affected == 0 {
		return errors.New("conversation not found")
	}
	return nil
}

// SetTags replaces the local tags and refreshes the search entry.
func (s *Store) SetTags(id string, tags []string) error {
	conversation, err := s.Get(id)
	if err != nil {
		return err
	}
	conversation.Tags = dedupeStringsSorted(tags)
	if conversation.Tags == nil {
		conversation.Tags = []string{}
	}

	tagsJSON, err := json.Marshal(conversation.Tags)
	if err != nil {
		return errors.Wrap(err, "marshaling tags")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE conversations SET tags = ? WHERE id = ?`, string(tagsJSON), id); err != nil {
		return errors.Wrap(err, "updating tags")
	}
	if _, err := tx.Exec(`DELETE FROM conversations_fts WHERE id = ?`, id); err != nil {
		return errors.Wrap(err, "clearing search entry")
	}
	_, err = tx.Exec(`INSERT INTO conversations_fts (id, searchable_content) VALUES (?, ?)`,
		id, searchableContent(conversation))
	if err != nil {
		return errors.Wrap(err, "indexing conversation")
	}

	return tx.Commit()
}
