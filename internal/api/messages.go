package api

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/pkg/errors"
)

// Chat stream event types, as named on the wire.
const (
	ChatEventConnected           = "connected"
	ChatEventNewUserMessage      = "new_user_message"
	ChatEventNewAssistantMessage = "new_assistant_message"
	ChatEventContentChunk        = "message_content_chunk"
	ChatEventTitleUpdated        = "title_updated"
	ChatEventEditedMessage       = "edited_message"
	ChatEventCreatedBranch       = "created_branch"
	ChatEventComplete            = "complete"
	ChatEventError               = "error"
)

// ChatEvent is a decoded event from a send or edit stream. Exactly
// one payload field is set, depending on Type.
type ChatEvent struct {
	Type    string
	Message *Message
	Delta   string
	Title   string
	Err     error
}

// ChatStream decodes the server's chat events off a raw SSE stream.
type ChatStream struct {
	stream *Stream
}

// SendMessage appends a user message to the conversation and streams
// the assistant's response.
func (c *Client) SendMessage(ctx context.Context, conversationID, content string) (*ChatStream, error) {
	body := map[string]string{"content": content}
	stream, err := c.stream(ctx, "POST", "/api/conversations/"+url.PathEscape(conversationID)+"/messages", body)
	if err != nil {
		return nil, err
	}
	return &ChatStream{stream: stream}, nil
}

// EditMessage creates a sibling branch of a user message with new
// content and streams the regenerated assistant response. Only user
// messages can be edited.
func (c *Client) EditMessage(ctx context.Context, messageID, content string) (*ChatStream, error) {
	body := map[string]string{"content": content}
	stream, err := c.stream(ctx, "POST", "/api/messages/"+url.PathEscape(messageID)+"/edit", body)
	if err != nil {
		return nil, err
	}
	return &ChatStream{stream: stream}, nil
}

// Recv returns the next chat event. io.EOF signals the stream ended
// without a complete event, which callers should treat as an abort.
func (s *ChatStream) Recv() (*ChatEvent, error) {
	raw, err := s.stream.Recv()
	if err != nil {
		return nil, err
	}

	event := &ChatEvent{Type: raw.Name}
	switch raw.Name {
	case ChatEventConnected, ChatEventComplete:
		// No payload.

	case ChatEventNewUserMessage, ChatEventNewAssistantMessage, ChatEventEditedMessage, ChatEventCreatedBranch:
		message := &Message{}
		if err := json.Unmarshal(raw.Data, message); err != nil {
			return nil, errors.Wrapf(err, "unmarshaling %s event", raw.Name)
		}
		event.Message = message

	case ChatEventContentChunk:
		payload := struct {
			Delta string `json:"delta"`
		}{}
		if err := json.Unmarshal(raw.Data, &payload); err != nil {
			return nil, errors.Wrap(err, "unmarshaling content chunk")
		}
		event.Delta = payload.Delta

	case ChatEventTitleUpdated:
		payload := struct {
			Title string `json:"title"`
		}{}
		if err := json.Unmarshal(raw.Data, &payload); err != nil {
			return nil, errors.Wrap(err, "unmarshaling title update")
		}
		event.Title = payload.Title

	case ChatEventError:
		payload := struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}{}
		if err := json.Unmarshal(raw.Data, &payload); err != nil {
			return nil, errors.Wrap(err, "unmarshaling error event")
		}
		event.Err = &Error{Code: payload.Code, Message: payload.Error}
	}
	return event, nil
}

// Close aborts the stream.
func (s *ChatStream) Close() error {
	return s.stream.Close()
}
