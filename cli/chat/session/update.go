package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"
	"golang.design/x/clipboard"

	"github.com/strataai/strata/internal/api"
	state "github.com/strataai/strata/internal/session"
)

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Always update the alert model with every message
	outAlert, alertCmd := m.alertClipboardWrite.Update(msg)
	m.alertClipboardWrite = outAlert.(bubbleup.AlertModel)
	if alertCmd != nil {
		cmds = append(cmds, alertCmd)
	}

	// Log for non-tick messages only
	defer func() {
		switch msg.(type) {
		case spinner.TickMsg, cursor.BlinkMsg, tea.MouseMsg:
		// Skip logging for spinner ticks
		default:
			log.Info("update completed", "msg_type", fmt.Sprintf("%T", msg), "navigation_index", m.navigationMessageIndex)
		}
	}()

	switch msg := msg.(type) {
	case tea.FocusMsg:
		m.windowFocused = true
		m.textarea.Focus()
		cmds = append(cmds, textarea.Blink)
		return m, tea.Batch(cmds...)

	case tea.BlurMsg:
		m.windowFocused = false
		m.textarea.Blur()
		return m, nil

	case tea.KeyMsg:
		if model, cmd, handled := m.handleKey(msg, &cmds); handled {
			return model, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalculateLayout()

	case streamRenderMsg:
		wasAtBottom := m.viewport.AtBottom()
		m.viewport.SetContent(m.renderMessages())
		if wasAtBottom {
			m.viewport.GotoBottom()
		}
		return m, nil

	case streamDoneMsg:
		m.streaming = false
		m.cancelStream = nil
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) && !errors.Is(msg.err, errUserInterrupt) {
			m.err = msg.err
		}
		m.recalculateLayout()
		m.viewport.GotoBottom()
		if msg.edited {
			// The edit created a sibling branch server-side.
			// Reload the thread and discard stale sibling caches.
			m.navigator.Invalidate()
			m.branches = map[string][]api.Message{}
			return m, tea.Batch(m.reloadThread(), m.saveToCache())
		}
		return m, m.saveToCache()

	case threadReloadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if m.navigationMessageIndex >= len(m.container.Messages()) {
			m.navigationMessageIndex = -1
		}
		m.viewport.SetContent(m.renderMessages())
		if m.navigationMessageIndex != -1 {
			m.scrollToNavigatedMessage()
			if message, ok := m.navigatedMessage(); ok {
				return m, m.loadBranches(message.ID)
			}
		} else {
			m.viewport.GotoBottom()
		}
		return m, nil

	case branchesLoadedMsg:
		if msg.err != nil {
			log.Error("loading branches", "message_id", msg.messageID, "error", msg.err)
			return m, nil
		}
		m.branches[msg.messageID] = msg.siblings
		m.viewport.SetContent(m.renderMessages())
		return m, nil

	case branchSwitchedMsg:
		m.branchSwitching = false
		if msg.err != nil {
			if !errors.Is(msg.err, state.ErrSwitchInFlight) {
				m.err = msg.err
			}
			return m, nil
		}
		// The navigator already reloaded the thread. Sibling IDs
		// changed, so refetch the navigated message's branches.
		m.branches = map[string][]api.Message{}
		if m.navigationMessageIndex >= len(m.container.Messages()) {
			m.navigationMessageIndex = -1
		}
		m.viewport.SetContent(m.renderMessages())
		if message, ok := m.navigatedMessage(); ok {
			m.scrollToNavigatedMessage()
			return m, tea.Batch(m.loadBranches(message.ID), m.saveToCache())
		}
		m.viewport.GotoBottom()
		return m, m.saveToCache()

	case cacheSavedMsg:
		if msg.err != nil {
			log.Error("saving conversation cache", "error", msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.streaming {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		m.adjustTextareaHeight()
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.streaming {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			switch msg.String() {
			case "j", "k", "g", "G", "u", "d", "b", "ctrl+u", "ctrl+d", "f", " ":
				// Don't pass vim navigation keys to viewport while typing
			default:
				var cmd tea.Cmd
				m.viewport, cmd = m.viewport.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes key presses. It returns handled=false for keys
// that should fall through to the textarea and viewport.
func (m *Model) handleKey(msg tea.KeyMsg, cmds *[]tea.Cmd) (tea.Model, tea.Cmd, bool) {
	// Handle navigation commands.
	if msg.String() == "alt+{" && !m.editing {
		messages := m.container.Messages()
		if m.navigationMessageIndex == -1 {
			m.navigationMessageIndex = len(messages)
		}
		if m.navigationMessageIndex > 0 {
			m.navigationMessageIndex-- // Go up one message.
			m.viewport.SetContent(m.renderMessages())
			m.scrollToNavigatedMessage()
			if message, ok := m.navigatedMessage(); ok {
				if _, loaded := m.branches[message.ID]; !loaded {
					return m, m.loadBranches(message.ID), true
				}
			}
		}
		return m, nil, true
	}
	if msg.String() == "alt+}" && !m.editing {
		if m.navigationMessageIndex != -1 {
			m.navigationMessageIndex++ // Go to next message.
			if m.navigationMessageIndex == len(m.container.Messages()) {
				m.navigationMessageIndex = -1
				m.viewport.GotoBottom()
			}
			m.viewport.SetContent(m.renderMessages())
			if m.navigationMessageIndex != -1 {
				m.scrollToNavigatedMessage()
				if message, ok := m.navigatedMessage(); ok {
					if _, loaded := m.branches[message.ID]; !loaded {
						return m, m.loadBranches(message.ID), true
					}
				}
			}
		}
		return m, nil, true
	}

	// Copy navigated message content to clipboard
	if msg.String() == "alt+w" && m.navigationMessageIndex != -1 {
		if message, ok := m.navigatedMessage(); ok {
			clipboard.Write(clipboard.FmtText, []byte(message.Content))
			*cmds = append(*cmds, m.alertClipboardWrite.NewAlertCmd(bubbleup.InfoKey, "Copied to clipboard!"))
		}
		return m, tea.Batch(*cmds...), true
	}

	// Edit the navigated user message.
	if msg.String() == "alt+e" && !m.streaming && !m.editing {
		message, ok := m.navigatedMessage()
		if !ok || message.Role != api.RoleUser {
			return m, nil, true
		}
		m.editing = true
		m.editingMessageID = message.ID
		m.textarea.SetValue(message.Content)
		m.textarea.Focus()
		m.textarea.CursorEnd()
		m.adjustTextareaHeight()
		return m, textarea.Blink, true
	}

	if msg.Alt && !m.streaming && !m.editing {
		switch msg.String() {
		case "alt+p":
			if entry, ok := m.history.Previous(m.textarea.Value()); ok {
				m.textarea.SetValue(entry)
				m.historyNavigating = true
				m.adjustTextareaHeight()
				return m, nil, true
			}
		case "alt+n":
			if entry, ok := m.history.Next(); ok {
				m.textarea.SetValue(entry)
				m.historyNavigating = true
				m.adjustTextareaHeight()
				return m, nil, true
			}
		}
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.streaming {
			if m.cancelStream != nil {
				m.cancelStream()
			}
			return m, nil, true
		}
		m.quitting = true
		return m, tea.Quit, true

	case tea.KeyCtrlJ:
		if m.streaming || strings.TrimSpace(m.textarea.Value()) == "" {
			return m, nil, true
		}
		if m.editing {
			return m, m.submitEdit(), true
		}
		return m, m.sendMessage(), true

	case tea.KeyCtrlB:
		return m, m.startBranchSwitch(-1), true

	case tea.KeyCtrlN:
		return m, m.startBranchSwitch(1), true

	case tea.KeyEnter:
		if m.historyNavigating {
			m.history.Reset()
			m.historyNavigating = false
		}

	case tea.KeyEsc:
		if m.streaming {
			if m.cancelStream != nil {
				m.cancelStream()
			}
			return m, nil, true
		}
		if m.editing {
			m.editing = false
			m.editingMessageID = ""
			m.textarea.Reset()
			m.adjustTextareaHeight()
			return m, nil, true
		}
		if m.navigationMessageIndex != -1 {
			m.navigationMessageIndex = -1
			m.viewport.SetContent(m.renderMessages())
			m.viewport.GotoBottom()
			return m, nil, true
		}
	}

	if !m.streaming && m.historyNavigating {
		switch msg.Type {
		case tea.KeyRunes, tea.KeyBackspace, tea.KeyDelete:
			m.history.Reset()
			m.historyNavigating = false
		}
	}

	return m, nil, false
}

// startBranchSwitch kicks off a sibling switch for the navigated
// message, if it has other versions.
func (m *Model) startBranchSwitch(offset int) tea.Cmd {
	if m.streaming || m.branchSwitching || m.editing {
		return nil
	}
	message, ok := m.navigatedMessage()
	if !ok {
		return nil
	}
	if !state.HasBranches(m.branches[message.ID]) {
		return nil
	}
	m.branchSwitching = true
	m.viewport.SetContent(m.renderMessages())
	return tea.Batch(m.spinner.Tick, m.switchBranch(message.ID, offset))
}

func (m *Model) filter(model tea.Model, msg tea.Msg) tea.Msg {
	return msg
}

// Filter returns the filter function for the tea.Program.
func (m *Model) Filter() func(tea.Model, tea.Msg) tea.Msg {
	return m.filter
}
