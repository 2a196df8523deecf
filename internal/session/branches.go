package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/strataai/strata/internal/api"
)

// ErrSwitchInFlight is returned when a branch switch is requested
// while another is still running. Last request wins; callers keep the
// controls disabled until the running switch settles.
var ErrSwitchInFlight = errors.New("branch switch already in flight")

// Navigator answers branch questions for messages in a container and
// performs switches. Sibling lists are cached per message and dropped
// wholesale after any switch, since a switch rewrites activity flags
// across the whole thread.
type Navigator struct {
	client    *api.Client
	container *Container

	mu       sync.Mutex
	cache    map[string][]api.Message
	inFlight bool
}

// NewNavigator creates a navigator over a container.
func NewNavigator(client *api.Client, container *Container) *Navigator {
	return &Navigator{
		client:    client,
		container: container,
		cache:     map[string][]api.Message{},
	}
}

// Branches returns the sibling versions of a message, served from
// cache when available.
func (n *Navigator) Branches(ctx context.Context, messageID string) ([]api.Message, error) {
	n.mu.Lock()
	if siblings, ok := n.cache[messageID]; ok {
		n.mu.Unlock()
		return siblings, nil
	}
	n.mu.Unlock()

	siblings, err := n.client.Branches(ctx, messageID)
	if err != nil {
		return nil, errors.Wrap(err, "loading branches")
	}

	n.mu.Lock()
	n.cache[messageID] = siblings
	n.mu.Unlock()
	return siblings, nil
}

// HasBranches reports whether a message has siblings to navigate.
func HasBranches(siblings []api.Message) bool {
	return len(siblings) > 1
}

// CurrentIndex returns the position of the active sibling, or -1 if
// none is marked active.
func CurrentIndex(siblings []api.Message) int {
	for i, sibling := range siblings {
		if sibling.IsActiveBranch {
			return i
		}
	}
	return -1
}

// SwitchPrev activates the sibling before the current one.
func (n *Navigator) SwitchPrev(ctx context.Context, messageID string) error {
	return n.switchRelative(ctx, messageID, -1)
}

// SwitchNext activates the sibling after the current one.
func (n *Navigator) SwitchNext(ctx context.Context, messageID string) error {
	return n.switchRelative(ctx, messageID, +1)
}

// switchRelative resolves the target sibling and switches to it. The
// thread is reloaded from the server afterwards; there is no
// optimistic flip of activity flags.
func (n *Navigator) switchRelative(ctx context.Context, messageID string, offset int) error {
	n.mu.Lock()
	if n.inFlight {
		n.mu.Unlock()
		return ErrSwitchInFlight
	}
	n.inFlight = true
	n.mu.Unlock()
	defer func() {
		n.mu.Lock()
		n.inFlight = false
		n.mu.Unlock()
	}()

	siblings, err := n.Branches(ctx, messageID)
	if err != nil {
		return err
	}
	if !HasBranches(siblings) {
		return nil
	}
	current := CurrentIndex(siblings)
	if current < 0 {
		return errors.New("no active branch among siblings")
	}
	target := current + offset
	if target < 0 || target >= len(siblings) {
		return nil
	}

	if err := n.client.SwitchBranch(ctx, siblings[target].ID); err != nil {
		return errors.Wrap(err, "switching branch")
	}

	// Activity flags changed across the thread; every cached sibling
	// list is stale now.
	n.mu.Lock()
	n.cache = map[string][]api.Message{}
	n.mu.Unlock()

	return n.container.Load(ctx)
}

// Invalidate drops all cached sibling lists. Called after edits,
// which create new siblings server-side.
func (n *Navigator) Invalidate() {
	n.mu.Lock()
	n.cache = map[string][]api.Message{}
	n.mu.Unlock()
}
