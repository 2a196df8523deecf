package store

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ListRequest filters and paginates cached conversations.
type ListRequest struct {
	PinnedOnly bool
	Tags       []string
	Page       int
	PageSize   int
}

// ListResponse is one page of cached conversations.
type ListResponse struct {
	Conversations []*Conversation
	TotalCount    int
	PageCount     int
}

// List returns cached conversations, most recently updated first.
// With Tags set, only conversations carrying all of them match.
func (s *Store) List(req *ListRequest) (*ListResponse, error) {
	if req.PageSize == 0 {
		req.PageSize = 100
	}
	if req.Page == 0 {
		req.Page = 1
	}

	whereClause := strings.Builder{}
	var args []interface{}

	if req.PinnedOnly {
		whereClause.WriteString("pinned = 1")
	}

	if len(req.Tags) > 0 {
		if whereClause.Len() > 0 {
			whereClause.WriteString(" AND ")
		}
		tagsJSON, err := json.Marshal(dedupeStringsSorted(req.Tags))
		if err != nil {
			return nil, errors.Wrap(err, "marshaling tags filter")
		}
		whereClause.WriteString(`
			(
				SELECT COUNT(DISTINCT value)
				FROM json_each(?)
			) = (
				SELECT COUNT(*)
				FROM json_each(?)
				WHERE value IN (
					SELECT value FROM json_each(tags)
				)
			)
		`)
		args = append(args, string(tagsJSON), string(tagsJSON))
	}

	countQuery := "SELECT COUNT(*) FROM conversations"
	if whereClause.Len() > 0 {
		countQuery += " WHERE " + whereClause.String()
	}
	var total int
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, errors.Wrap(err, "counting conversations")
	}

	pageCount := (total + req.PageSize - 1) / req.PageSize
	offset := (req.Page - 1) * req.PageSize

	query := `
		SELECT id, title, creation_timestamp, update_timestamp, synced_timestamp, messages, pinned, tags
		FROM conversations
	`
	if whereClause.Len() > 0 {
		query += " WHERE " + whereClause.String()
	}
	query += ` ORDER BY pinned DESC, update_timestamp DESC LIMIT ? OFFSET ?`
	args = append(args, req.PageSize, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying conversations")
	}
	defer rows.Close()

	conversations, err := scanConversations(rows)
	if err != nil {
		return nil, err
	}

	return &ListResponse{
		Conversations: conversations,
		TotalCount:    total,
		PageCount:     pageCount,
	}, nil
}

// Tags returns every tag in use, sorted.
func (s *Store) Tags() ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM conversations`)
	if err != nil {
		return nil, errors.Wrap(err, "querying tags")
	}
	defer rows.Close()

	var all []string
	for rows.Next() {
		var tagsJSON string
		if err := rows.Scan(&tagsJSON); err != nil {
			return nil, errors.Wrap(err, "scanning tags")
		}
		var tags []string
		if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
			return nil, errors.Wrap(err, "unmarshaling tags")
		}
		all = append(all, tags...)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating rows")
	}
	return dedupeStringsSorted(all), nil
}
