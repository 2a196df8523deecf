package api

import (
	"context"
	"net/url"
)

// Branches returns all sibling versions of a message, active branch
// first then by creation time. Siblings share the original message's
// position in the thread.
func (c *Client) Branches(ctx context.Context, messageID string) ([]Message, error) {
	var branches []Message
	if err := c.get(ctx, "/api/messages/"+url.PathEscape(messageID)+"/branches", nil, &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

// SwitchBranch makes the given message the active sibling at its
// position. The server deactivates every message at and after that
// position, then reactivates the chain descending from the target, so
// the caller must reload the thread afterwards.
func (c *Client) SwitchBranch(ctx context.Context, messageID string) error {
	return c.post(ctx, "/api/messages/"+url.PathEscape(messageID)+"/switch", nil, nil)
}
