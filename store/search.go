package store

import (
	"github.com/pkg/errors"
)

// SearchRequest is a full-text query over titles, tags and message
// content.
type SearchRequest struct {
	Query    string
	Page     int
	PageSize int
}

// Search runs the query against the FTS index.
func (s *Store) Search(req *SearchRequest) (*ListResponse, error) {
	if req.Query == "" {
		return &ListResponse{Conversations: []*Conversation{}}, nil
	}
	if req.PageSize == 0 {
		req.PageSize = 100
	}
	if req.Page == 0 {
		req.Page = 1
	}

	var total int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM conversations_fts
		WHERE conversations_fts MATCH ?
	`, req.Query).Scan(&total)
	if err != nil {
		return nil, errors.Wrap(err, "counting search results")
	}

	pageCount := (total + req.PageSize - 1) / req.PageSize
	offset := (req.Page - 1) * req.PageSize

	rows, err := s.db.Query(`
		SELECT c.id, c.title, c.creation_timestamp, c.update_timestamp, c.synced_timestamp, c.messages, c.pinned, c.tags
		FROM conversations c
		JOIN conversations_fts fts ON c.id = fts.id
		WHERE fts.searchable_content MATCH ?
		ORDER BY c.update_timestamp DESC
		LIMIT ? OFFSET ?
	`, req.Query, req.PageSize, offset)
	if err != nil {
		return nil, errors.Wrap(err, "querying search results")
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
