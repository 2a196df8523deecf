package rag

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/ragmon"
)

var (
	watchTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	watchConnectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	watchOfflineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	watchCompletedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	watchFailedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	watchPendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	watchHelpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// newWatchCmd instantiates and returns the rag watch command.
func newWatchCmd(client *api.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <instance-id>",
		Short: "Follow the ingestion status of a retrieval index live",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			monitor := ragmon.New(client, args[0])
			model := newWatchModel(monitor)

			p := tea.NewProgram(model, tea.WithContext(ctx))
			monitor.OnUpdate(func(status *api.RAGStatus) {
				p.Send(statusUpdateMsg{status: status})
			})
			if err := monitor.Start(ctx); err != nil {
				return errors.Wrap(err, "starting monitor")
			}
			defer monitor.Close()

			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running watch: %w", err)
			}
			return nil
		},
	}
	return cmd
}

type statusUpdateMsg struct {
	status *api.RAGStatus
}

type watchModel struct {
	monitor  *ragmon.Monitor
	spinner  spinner.Model
	progress progress.Model
	status   *api.RAGStatus
	width    int
	quitting bool
}

func newWatchModel(monitor *ragmon.Monitor) *watchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &watchModel{
		monitor:  monitor,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
		status:   monitor.Status(),
	}
}

func (m *watchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			m.monitor.Close()
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		progressWidth := msg.Width - 20
		if progressWidth < 20 {
			progressWidth = 20
		}
		if progressWidth > 100 {
			progressWidth = 100
		}
		m.progress.Width = progressWidth
		return m, m.spinner.Tick

	case statusUpdateMsg:
		m.status = msg.status
		if m.status.TotalFiles > 0 {
			return m, m.progress.SetPercent(float64(m.status.ProcessedFiles) / float64(m.status.TotalFiles))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		var cmd tea.Cmd
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *watchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(watchTitleStyle.Render("Ingestion"))
	b.WriteString(" ")
	if m.monitor.Connected() {
		b.WriteString(watchConnectedStyle.Render("● live"))
	} else {
		b.WriteString(watchOfflineStyle.Render(fmt.Sprintf("%s reconnecting", m.spinner.View())))
	}
	b.WriteString("\n\n")

	// The initial snapshot can land before the program starts.
	if m.status == nil {
		m.status = m.monitor.Status()
	}
	if m.status == nil {
		b.WriteString(watchPendingStyle.Render("Waiting for status..."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.progress.View())
	b.WriteString("\n")
	summary := fmt.Sprintf("%d/%d processed", m.status.ProcessedFiles, m.status.TotalFiles)
	if m.status.ProcessingFiles > 0 {
		summary += fmt.Sprintf(", %d processing", m.status.ProcessingFiles)
	}
	if m.status.FailedFiles > 0 {
		summary += fmt.Sprintf(", %d failed", m.status.FailedFiles)
	}
	b.WriteString(summary)
	b.WriteString("\n\n")

	for _, file := range m.status.Files {
		switch file.ProcessingStatus {
		case api.FileStatusCompleted:
			b.WriteString(watchCompletedStyle.Render(fmt.Sprintf("  ✓ %s", file.Filename)))
		case api.FileStatusFailed:
			b.WriteString(watchFailedStyle.Render(fmt.Sprintf("  ✗ %s: %s", file.Filename, file.ProcessingError)))
		case api.FileStatusProcessing:
			b.WriteString(fmt.Sprintf("  %s %s", m.spinner.View(), file.Filename))
		default:
			b.WriteString(watchPendingStyle.Render(fmt.Sprintf("  · %s", file.Filename)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(watchHelpStyle.Render("q to quit"))
	return b.String()
}
