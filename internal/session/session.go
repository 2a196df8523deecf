// Package session holds the client-side state of one open
// conversation: the active message thread, optimistic sends, and
// branch navigation. The server owns branch bookkeeping; this package
// never guesses at it, it reloads.
package session

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/strataai/strata/internal/api"
)

// Container is the state of one open conversation.
type Container struct {
	client *api.Client

	mu           sync.Mutex
	conversation *api.Conversation
	messages     []api.Message
	generation   int64
}

// New creates a container for a conversation.
func New(client *api.Client, conversation *api.Conversation) *Container {
	return &Container{client: client, conversation: conversation}
}

// Conversation returns the conversation, with any title updates
// received while streaming.
func (c *Container) Conversation() *api.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	conversation := *c.conversation
	return &conversation
}

// Messages returns the active thread in server order.
func (c *Container) Messages() []api.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	messages := make([]api.Message, len(c.messages))
	copy(messages, c.messages)
	return messages
}

// Load fetches the active thread. Server order is preserved as-is.
// Concurrent loads may finish out of order; only the latest one to
// start is allowed to install its result.
func (c *Container) Load(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	generation := c.generation
	c.mu.Unlock()

	messages, err := c.client.GetMessages(ctx, c.conversation.ID)
	if err != nil {
		return errors.Wrap(err, "loading messages")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		// A newer load started while this one was in flight.
		return nil
	}
	c.messages = messages
	return nil
}

// EventHandler receives chat events as a stream progresses. Content
// deltas have already been applied to the container when called.
type EventHandler func(event *api.ChatEvent)

// Send appends a user message and streams the assistant response.
// Whitespace-only content is a no-op. The user message and an empty
// assistant message are inserted optimistically with placeholder IDs
// and replaced by the server's copies as they arrive; if the send
// fails before the server acknowledges, both are removed and the
// thread is exactly as it was.
func (c *Container) Send(ctx context.Context, content string, onEvent EventHandler) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	c.mu.Lock()
	snapshotLen := len(c.messages)
	userPlaceholder := api.Message{
		ID:             uuid.NewString(),
		ConversationID: c.conversation.ID,
		Role:           api.RoleUser,
		Content:        content,
		IsActiveBranch: true,
	}
	assistantPlaceholder := api.Message{
		ID:             uuid.NewString(),
		ConversationID: c.conversation.ID,
		Role:           api.RoleAssistant,
		IsActiveBranch: true,
	}
	c.messages = append(c.messages, userPlaceholder, assistantPlaceholder)
	c.mu.Unlock()

	rollback := func() {
		c.mu.Lock()
		c.messages = c.messages[:snapshotLen]
		c.mu.Unlock()
	}

	stream, err := c.client.SendMessage(ctx, c.conversation.ID, content)
	if err != nil {
		rollback()
		return errors.Wrap(err, "sending message")
	}
	defer stream.Close()

	acknowledged := false
	for {
		event, err := stream.Recv()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			if !acknowledged {
				rollback()
			}
			return errors.Wrap(err, "receiving chat event")
		}

		switch event.Type {
		case api.ChatEventNewUserMessage:
			acknowledged = true
			c.replaceMessage(userPlaceholder.ID, event.Message)
		case api.ChatEventNewAssistantMessage:
			c.replaceMessage(assistantPlaceholder.ID, event.Message)
			assistantPlaceholder.ID = event.Message.ID
		case api.ChatEventContentChunk:
			c.appendContent(assistantPlaceholder.ID, event.Delta)
		case api.ChatEventTitleUpdated:
			c.setTitle(event.Title)
		case api.ChatEventError:
			if !acknowledged {
				rollback()
			}
			if onEvent != nil {
				onEvent(event)
			}
			return errors.Wrap(event.Err, "streaming response")
		case api.ChatEventComplete:
			if onEvent != nil {
				onEvent(event)
			}
			return nil
		}

		if onEvent != nil {
			onEvent(event)
		}
	}
}

// Edit submits new content for a user message, creating a sibling
// branch server-side, and streams the regenerated response. The
// thread is stale afterwards; callers reload via Load once the stream
// completes. Whitespace-only content is a no-op.
func (c *Container) Edit(ctx context.Context, messageID, content string, onEvent EventHandler) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	target, ok := c.findMessage(messageID)
	if !ok {
		return errors.Errorf("message %s not in thread", messageID)
	}
	if target.Role != api.RoleUser {
		return errors.New("only user messages can be edited")
	}

	stream, err := c.client.EditMessage(ctx, messageID, content)
	if err != nil {
		return errors.Wrap(err, "editing message")
	}
	defer stream.Close()

	for {
		event, err := stream.Recv()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrap(err, "receiving chat event")
		}

		switch event.Type {
		case api.ChatEventTitleUpdated:
			c.setTitle(event.Title)
		case api.ChatEventError:
			if onEvent != nil {
				onEvent(event)
			}
			return errors.Wrap(event.Err, "streaming response")
		case api.ChatEventComplete:
			if onEvent != nil {
				onEvent(event)
			}
			return nil
		}

		if onEvent != nil {
			onEvent(event)
		}
	}
}

func (c *Container) findMessage(id string) (api.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, message := range c.messages {
		if message.ID == id {
			return message, true
		}
	}
	return api.Message{}, false
}

func (c *Container) replaceMessage(placeholderID string, message *api.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.messages {
		if c.messages[i].ID == placeholderID {
			c.messages[i] = *message
			return
		}
	}
}

func (c *Container) appendContent(messageID, delta string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.messages {
		if c.messages[i].ID == messageID {
			c.messages[i].Content += delta
			return
		}
	}
}

func (c *Container) setTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conversation.Title = title
}
