package store

import (
	"github.com/pkg/errors"
)

// Delete removes a conversation and its search entry.
func (s *Store) Delete(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "deleting conversation")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "checking rows affected")
	}
	if affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM conversations_fts WHERE id = ?`, id); err != nil {
		return errors.Wrap(err, "deleting search entry")
	}

	return errors.Wrap(tx.Commit(), "committing transaction")
}
