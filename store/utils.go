package store

import (
	"database/sql"
	"encoding/json"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

func boolToInt(val bool) int {
	if val {
		return 1
	}
	return 0
}

func dedupeStringsSorted(values []string) []string {
	if len(values) == 0 {
		return values
	}

	copied := make([]string, len(values))
	copy(copied, values)
	sort.Strings(copied)

	j := 0
	for i := 1; i < len(copied); i++ {
		if copied[j] != copied[i] {
			j++
			copied[j] = copied[i]
		}
	}
	return copied[:j+1]
}

// searchableContent flattens a conversation for the FTS index.
func searchableContent(conversation *Conversation) string {
	var sb strings.Builder
	if conversation.Title != nil {
		sb.WriteString(*conversation.Title)
		sb.WriteString("\n")
	}
	for _, tag := range conversation.Tags {
		sb.WriteString(tag)
		sb.WriteString("\n")
	}
	for _, message := range conversation.Messages {
		sb.WriteString(message.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

func scanConversation(row interface{ Scan(...interface{}) error }) (*Conversation, error) {
	conversation := &Conversation{}
	var messagesJSON, tagsJSON string
	var pinned int

	if err := row.Scan(&conversation.ID, &conversation.Title, &conversation.CreationTimestamp,
		&conversation.UpdateTimestamp, &conversation.SyncedTimestamp, &messagesJSON, &pinned, &tagsJSON); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(messagesJSON), &conversation.Messages); err != nil {
		return nil, errors.Wrap(err, "unmarshaling messages")
	}
	if err := json.Unmarshal([]byte(tagsJSON), &conversation.Tags); err != nil {
		return nil, errors.Wrap(err, "unmarshaling tags")
	}
	conversation.Pinned = pinned != 0

	return conversation, nil
}

func scanConversations(rows *sql.Rows) ([]*Conversation, error) {
	var conversations []*Conversation
	for rows.Next() {
		conversation, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, conversation)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating rows")
	}
	return conversations, nil
}
