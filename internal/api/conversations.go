package api

import (
	"context"
	"net/url"
)

// CreateConversationRequest creates a new conversation.
type CreateConversationRequest struct {
	Title           string `json:"title,omitempty"`
	AssistantID     string `json:"assistant_id,omitempty"`
	ModelProviderID string `json:"model_provider_id,omitempty"`
	ModelID         string `json:"model_id,omitempty"`
}

// ListConversations returns a page of the caller's conversations,
// most recently updated first.
func (c *Client) ListConversations(ctx context.Context, page, perPage int) (*ConversationList, error) {
	list := &ConversationList{}
	if err := c.get(ctx, "/api/conversations", pageQuery(page, perPage), list); err != nil {
		return nil, err
	}
	return list, nil
}

// SearchConversations searches conversation titles and content.
func (c *Client) SearchConversations(ctx context.Context, queryText string, page, perPage int) (*ConversationList, error) {
	query := pageQuery(page, perPage)
	query.Set("q", queryText)
	list := &ConversationList{}
	if err := c.get(ctx, "/api/conversations/search", query, list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetConversation fetches a single conversation.
func (c *Client) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	conversation := &Conversation{}
	if err := c.get(ctx, "/api/conversations/"+url.PathEscape(id), nil, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// GetMessages returns the active thread of a conversation in server
// order. Inactive siblings are not included; fetch those per message
// with Branches.
func (c *Client) GetMessages(ctx context.Context, conversationID string) ([]Message, error) {
	var messages []Message
	if err := c.get(ctx, "/api/conversations/"+url.PathEscape(conversationID)+"/messages", nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// CreateConversation creates a conversation.
func (c *Client) CreateConversation(ctx context.Context, request *CreateConversationRequest) (*Conversation, error) {
	conversation := &Conversation{}
	if err := c.post(ctx, "/api/conversations", request, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// UpdateConversationTitle renames a conversation.
func (c *Client) UpdateConversationTitle(ctx context.Context, id, title string) (*Conversation, error) {
	conversation := &Conversation{}
	body := map[string]string{"title": title}
	if err := c.put(ctx, "/api/conversations/"+url.PathEscape(id), body, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// DeleteConversation deletes a conversation and its messages.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/conversations/"+url.PathEscape(id))
}
