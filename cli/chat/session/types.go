package session

import (
	"github.com/strataai/strata/internal/api"
)

// streamRenderMsg triggers a viewport re-render while streaming.
type streamRenderMsg struct{}

// streamDoneMsg indicates the send or edit stream finished.
type streamDoneMsg struct {
	err    error
	edited bool
}

// threadReloadedMsg indicates the active thread was refetched.
type threadReloadedMsg struct {
	err error
}

// branchesLoadedMsg carries the sibling versions of a message.
type branchesLoadedMsg struct {
	messageID string
	siblings  []api.Message
	err       error
}

// branchSwitchedMsg indicates a branch switch settled.
type branchSwitchedMsg struct {
	err error
}

// cacheSavedMsg indicates the local cache sync finished.
type cacheSavedMsg struct {
	err error
}
