package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/store"
)

func (m *Model) sendMessage() tea.Cmd {
	userInput := strings.TrimSpace(m.textarea.Value())
	if userInput == "" {
		return nil
	}

	m.history.Add(userInput)
	m.historyNavigating = false
	m.textarea.Reset()

	m.streaming = true
	m.err = nil
	m.recalculateLayout()
	m.viewport.GotoBottom()

	streamCtx, cancel := context.WithCancel(m.ctx)
	m.cancelStream = cancel

	p := m.getProgram()
	if p == nil {
		return func() tea.Msg {
			return streamDoneMsg{err: fmt.Errorf("program not set")}
		}
	}

	container := m.container
	go func() {
		throttle := newRenderThrottle(p)
		err := container.Send(streamCtx, userInput, func(event *api.ChatEvent) {
			throttle.check(event)
		})
		throttle.flush()
		p.Send(streamDoneMsg{err: err})
	}()

	return m.spinner.Tick
}

func (m *Model) submitEdit() tea.Cmd {
	newContent := strings.TrimSpace(m.textarea.Value())
	if newContent == "" {
		return nil
	}
	messageID := m.editingMessageID

	m.editing = false
	m.editingMessageID = ""
	m.navigationMessageIndex = -1
	m.textarea.Reset()
	m.textarea.Placeholder = "Type your message... (Ctrl+J to send, Alt+{/} to navigate, Ctrl+B/N for branches, Ctrl+C to quit)"

	m.streaming = true
	m.err = nil
	m.recalculateLayout()
	m.viewport.GotoBottom()

	streamCtx, cancel := context.WithCancel(m.ctx)
	m.cancelStream = cancel

	p := m.getProgram()
	if p == nil {
		return func() tea.Msg {
			return streamDoneMsg{err: fmt.Errorf("program not set")}
		}
	}

	container := m.container
	go func() {
		throttle := newRenderThrottle(p)
		err := container.Edit(streamCtx, messageID, newContent, func(event *api.ChatEvent) {
			throttle.check(event)
		})
		throttle.flush()
		p.Send(streamDoneMsg{err: err, edited: true})
	}()

	return m.spinner.Tick
}

// reloadThread refetches the active thread, e.g. after an edit or a
// branch switch settled.
func (m *Model) reloadThread() tea.Cmd {
	container := m.container
	ctx := m.ctx
	return func() tea.Msg {
		return threadReloadedMsg{err: container.Load(ctx)}
	}
}

// loadBranches fetches the sibling versions of a message.
func (m *Model) loadBranches(messageID string) tea.Cmd {
	navigator := m.navigator
	ctx := m.ctx
	return func() tea.Msg {
		siblings, err := navigator.Branches(ctx, messageID)
		return branchesLoadedMsg{messageID: messageID, siblings: siblings, err: err}
	}
}

// switchBranch activates the previous or next sibling of the selected
// message. The navigator reloads the thread before this settles.
func (m *Model) switchBranch(messageID string, offset int) tea.Cmd {
	navigator := m.navigator
	ctx := m.ctx
	return func() tea.Msg {
		var err error
		if offset < 0 {
			err = navigator.SwitchPrev(ctx, messageID)
		} else {
			err = navigator.SwitchNext(ctx, messageID)
		}
		return branchSwitchedMsg{err: err}
	}
}

// saveToCache snapshots the thread into the local store.
func (m *Model) saveToCache() tea.Cmd {
	cache := m.cache
	container := m.container
	return func() tea.Msg {
		if cache == nil {
			return cacheSavedMsg{}
		}
		err := cache.Save(store.FromServer(container.Conversation(), container.Messages()))
		return cacheSavedMsg{err: err}
	}
}

// renderThrottle coalesces render notifications from the stream
// goroutine so the UI repaints at most ~15 times a second.
type renderThrottle struct {
	program    *tea.Program
	lastRender time.Time
	pending    bool
}

func newRenderThrottle(p *tea.Program) *renderThrottle {
	return &renderThrottle{program: p}
}

func (t *renderThrottle) check(event *api.ChatEvent) {
	switch event.Type {
	case api.ChatEventContentChunk:
		if time.Since(t.lastRender) >= renderThrottleInterval {
			t.send()
		} else {
			t.pending = true
		}
	default:
		t.send()
	}
}

func (t *renderThrottle) flush() {
	if t.pending {
		t.send()
	}
}

func (t *renderThrottle) send() {
	t.program.Send(streamRenderMsg{})
	t.lastRender = time.Now()
	t.pending = false
}
