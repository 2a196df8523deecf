package session

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/strataai/strata/cli/chat/styles"
	"github.com/strataai/strata/internal/api"
	state "github.com/strataai/strata/internal/session"
)

// View renders the model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(m.renderTitle())
	b.WriteString("\n")

	b.WriteString(styles.ViewportStyle.Render(m.viewport.View()))
	b.WriteString("\n")

	if m.streaming {
		b.WriteString(fmt.Sprintf("%s Generating...\n", m.spinner.View()))
	} else if m.editing {
		b.WriteString(styles.EditBannerStyle.Render("✏️  Editing message (Ctrl+J to submit, Esc to cancel)"))
		b.WriteString("\n")
		b.WriteString(styles.EditTextAreaStyle.Render(m.textarea.View()))
		b.WriteString("\n")
	} else {
		b.WriteString(styles.TextAreaStyle.Render(m.textarea.View()))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return b.String()
}

func (m *Model) renderTitle() string {
	conversation := m.container.Conversation()

	title := conversation.Title
	if title == "" {
		title = "New conversation"
	}
	title = styles.Truncate(title, styles.TruncateLength)

	model := "default"
	if conversation.ModelID != "" {
		model = fmt.Sprintf("%s/%s", conversation.ModelProviderID, conversation.ModelID)
	} else if m.config.Chat != nil && m.config.Chat.DefaultModelID != "" {
		model = fmt.Sprintf("%s/%s", m.config.Chat.DefaultProviderID, m.config.Chat.DefaultModelID)
	}

	id := conversation.ID
	if len(id) > 8 {
		id = id[:8]
	}

	header := fmt.Sprintf(" 💬 %s │ 🤖 %s │ %s ", title, model, id)
	return styles.TitleStyle.Width(m.width).Render(header)
}

func (m *Model) renderMessages() string {
	var b strings.Builder

	messages := m.container.Messages()
	m.messageViewportOffsets = make([]int, len(messages))
	lineOffset := 0

	for i, message := range messages {
		if i > 0 {
			b.WriteString("\n\n")
			lineOffset += 2
		}
		m.messageViewportOffsets[i] = lineOffset

		rendered := m.renderMessage(message, i)
		b.WriteString(rendered)
		lineOffset += lipgloss.Height(rendered)
	}

	return b.String()
}

// renderMessage renders a single message with its decorations. The
// last assistant message renders unfinalized while streaming so that
// partial markdown does not break glamour.
func (m *Model) renderMessage(message api.Message, index int) string {
	messages := m.container.Messages()
	selected := index == m.navigationMessageIndex
	isLast := index == len(messages)-1

	switch message.Role {
	case api.RoleSystem:
		return styles.SystemStyle.Render(fmt.Sprintf("System: %s", styles.Truncate(message.Content, styles.TruncateLength)))

	case api.RoleUser, api.RoleAssistant:
		finalized := !(m.streaming && isLast && message.Role == api.RoleAssistant)
		rendered := m.renderer.ToMarkdown(message.Content, index, finalized)
		if !finalized {
			rendered += styles.SpinnerStyle.Render("▋")
		}

		var style lipgloss.Style
		switch {
		case selected:
			style = styles.SelectedMessageStyle
		case message.Role == api.RoleUser:
			style = styles.UserMessageStyle
		default:
			style = styles.AssistantMessageStyle
		}
		body := style.Render(rendered)

		var badges []string
		if message.EditCount > 0 {
			badges = append(badges, styles.EditedBadgeStyle.Render(fmt.Sprintf("(edited ×%d)", message.EditCount)))
		}
		if selected {
			if indicator := m.renderBranchIndicator(message); indicator != "" {
				badges = append(badges, indicator)
			}
		}
		if len(badges) > 0 {
			body += "\n" + strings.Join(badges, " ")
		}
		return body

	default:
		return styles.SystemStyle.Render(styles.Truncate(message.Content, styles.TruncateLength))
	}
}

// renderBranchIndicator shows the position of the selected message among
// its sibling versions, once they are loaded.
func (m *Model) renderBranchIndicator(message api.Message) string {
	siblings := m.branches[message.ID]
	if !state.HasBranches(siblings) {
		return ""
	}
	index := state.CurrentIndex(siblings)
	if index < 0 {
		return ""
	}
	indicator := styles.BranchIndicatorStyle.Render(fmt.Sprintf("‹ %d/%d ›", index+1, len(siblings)))
	if m.branchSwitching {
		return indicator + " " + styles.BranchHintStyle.Render("switching...")
	}
	return indicator + " " + styles.BranchHintStyle.Render("ctrl+b/ctrl+n to switch")
}
