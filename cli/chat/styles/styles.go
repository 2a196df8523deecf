package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Layout constants
const (
	// Textarea
	MinTextareaHeight    = 3
	MaxTextareaHeight    = 20
	DefaultTextareaWidth = 80
	TextAreaPaddingLeft  = 1

	// Viewport
	MinViewportHeight = 1

	// Layout
	InputBorderHeight  = 2
	HeaderHeight       = 2
	MessagePaddingLeft = 2

	// Truncation
	TruncateLength       = 100
	TruncateSuffix       = "..."
	TruncateSuffixLength = 3
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7C3AED") // Purple
	SecondaryColor = lipgloss.Color("#06B6D4") // Cyan
	AccentColor    = lipgloss.Color("#F59E0B") // Amber
	SuccessColor   = lipgloss.Color("#10B981") // Green
	ErrorColor     = lipgloss.Color("#EF4444") // Red
	MutedColor     = lipgloss.Color("#6B7280") // Gray
	TextColor      = lipgloss.Color("#F9FAFB") // Light gray
	DimTextColor   = lipgloss.Color("#9CA3AF") // Dim gray
	BranchColor    = lipgloss.Color("#F472B6") // Pink
	DividerColor   = lipgloss.Color("#374151")
	SelectedColor  = lipgloss.Color("#10B981")
)

// Title bar
var (
	TitleStyle = lipgloss.NewStyle().
			Background(PrimaryColor).
			Foreground(TextColor).
			Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(DimTextColor).
			Background(PrimaryColor)
)

// Messages.
var (
	messageStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder())

	UserMessageStyle = lipgloss.NewStyle().
				Inherit(messageStyle).
				BorderForeground(PrimaryColor).
				MarginLeft(10)

	AssistantMessageStyle = lipgloss.NewStyle().
				Inherit(messageStyle).
				BorderForeground(SecondaryColor).
				MarginRight(10)

	SelectedMessageStyle = lipgloss.NewStyle().
				Inherit(messageStyle).
				BorderForeground(SelectedColor)

	MessageErrorStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Italic(true).
				PaddingLeft(MessagePaddingLeft)

	MessageInterruptStyle = lipgloss.NewStyle().
				Foreground(AccentColor).
				Italic(true).
				PaddingLeft(MessagePaddingLeft)
)

// Branch indicators
var (
	BranchIndicatorStyle = lipgloss.NewStyle().
				Foreground(BranchColor).
				Bold(true)

	BranchHintStyle = lipgloss.NewStyle().
			Foreground(DimTextColor).
			Italic(true)

	EditedBadgeStyle = lipgloss.NewStyle().
				Foreground(AccentColor).
				Italic(true)
)

// Edit banner
var (
	EditBannerStyle = lipgloss.NewStyle().
			Foreground(AccentColor).
			Bold(true)
)

// System message
var (
	SystemStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)
)

// Error
var (
	ErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)
)

// Input area
var (
	TextAreaStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			PaddingLeft(TextAreaPaddingLeft)

	EditTextAreaStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(AccentColor).
				PaddingLeft(TextAreaPaddingLeft)
)

// Spinner
var (
	SpinnerStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor)
)

// Help
var (
	HelpStyle = lipgloss.NewStyle().
		Foreground(DimTextColor)
)

// Viewport
var (
	ViewportStyle = lipgloss.NewStyle().Margin(0).Padding(0)
)

// Divider
var (
	DividerStyle = lipgloss.NewStyle().
		Foreground(DividerColor)
)

// MessageHorizontalFrameSize returns the horizontal frame size of assistant messages.
func MessageHorizontalFrameSize() int {
	return AssistantMessageStyle.GetHorizontalFrameSize()
}

// Truncate truncates a string to the specified length with a suffix.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-TruncateSuffixLength] + TruncateSuffix
}
