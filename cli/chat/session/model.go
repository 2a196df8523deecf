package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.dalton.dog/bubbleup"

	"github.com/strataai/strata/cli/chat/styles"
	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/configuration"
	"github.com/strataai/strata/internal/debug"
	"github.com/strataai/strata/internal/history"
	"github.com/strataai/strata/internal/markdown"
	state "github.com/strataai/strata/internal/session"
	"github.com/strataai/strata/store"
)

const (
	renderThrottleInterval = 66 * time.Millisecond
)

var (
	log              = debug.GetLogger()
	errUserInterrupt = errors.New("user interrupt")
)

// Model represents the Bubble Tea model for the chat session.
type Model struct {
	// Core dependencies
	ctx       context.Context
	config    *configuration.Config
	client    *api.Client
	cache     *store.Store
	container *state.Container
	navigator *state.Navigator

	// UI components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *markdown.Renderer

	// UI state
	width                  int
	height                 int
	ready                  bool
	streaming              bool
	err                    error
	quitting               bool
	windowFocused          bool
	messageViewportOffsets []int

	// Alert notifications.
	alertClipboardWrite bubbleup.AlertModel

	// Navigation: index of the selected message, -1 when none.
	navigationMessageIndex int

	// Branch state for the selected message.
	branches        map[string][]api.Message
	branchSwitching bool

	// Edit state. While editing, the textarea holds the new content
	// of editingMessageID.
	editing          bool
	editingMessageID string

	// Stream control
	cancelStream context.CancelFunc

	// Program reference for sending messages from goroutines
	program   *tea.Program
	programMu sync.Mutex

	// Input history
	history           *history.History
	historyNavigating bool
}

// New creates a new chat session model. The container should already
// hold the loaded thread.
func New(
	ctx context.Context,
	config *configuration.Config,
	client *api.Client,
	cache *store.Store,
	container *state.Container,
) (*Model, error) {
	ta := textarea.New()
	ta.Placeholder = "Type your message... (Ctrl+J to send, Alt+{/} to navigate, Ctrl+B/N for branches, Ctrl+C to quit)"
	ta.Focus()
	ta.CharLimit = 0
	ta.SetWidth(styles.DefaultTextareaWidth)
	ta.SetHeight(styles.MinTextareaHeight)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(true)
	ta.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	alertClipboardWrite := bubbleup.NewAlertModel(25, true, 1)

	renderer, err := markdown.NewRenderer(styles.DefaultTextareaWidth)
	if err != nil {
		return nil, err
	}

	return &Model{
		ctx:                    ctx,
		config:                 config,
		client:                 client,
		cache:                  cache,
		container:              container,
		navigator:              state.NewNavigator(client, container),
		windowFocused:          true,
		textarea:               ta,
		spinner:                sp,
		history:                history.NewHistory(),
		renderer:               renderer,
		alertClipboardWrite:    *alertClipboardWrite,
		navigationMessageIndex: -1,
		branches:               map[string][]api.Message{},
	}, nil
}

// SetProgram sets the tea.Program reference for async message sending.
func (m *Model) SetProgram(p *tea.Program) {
	m.programMu.Lock()
	defer m.programMu.Unlock()
	m.program = p
}

// getProgram safely gets the program reference.
func (m *Model) getProgram() *tea.Program {
	m.programMu.Lock()
	defer m.programMu.Unlock()
	return m.program
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.alertClipboardWrite.Init(),
	)
}

// navigatedMessage returns the selected message, if any.
func (m *Model) navigatedMessage() (api.Message, bool) {
	messages := m.container.Messages()
	if m.navigationMessageIndex < 0 || m.navigationMessageIndex >= len(messages) {
		return api.Message{}, false
	}
	return messages[m.navigationMessageIndex], true
}

// navigatedBranches returns the cached siblings of the selected
// message, nil if not loaded yet.
func (m *Model) navigatedBranches() []api.Message {
	message, ok := m.navigatedMessage()
	if !ok {
		return nil
	}
	return m.branches[message.ID]
}
