package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	tint "github.com/lrstanley/bubbletint"

	"udaan-chat/internal/models"
)

// Theme registry for the application
var Theme *tint.Registry

var (
	TitleStyle                   lipgloss.Style
	HeaderStyle                  lipgloss.Style
	errorStyle                   lipgloss.Style
	statusBarStyle               lipgloss.Style
	helpStyle                    lipgloss.Style
	ActiveButtonStyle            lipgloss.Style
	InactiveButtonStyle          lipgloss.Style
	UserMessageLabelStyle        lipgloss.Style
	AssistantMessageLabelStyle   lipgloss.Style
	UserMessageContentStyle      lipgloss.Style
	AssistantMessageContentStyle lipgloss.Style
	SpinnerStyle                 lipgloss.Style
	ViewportBorderStyle          lipgloss.Style
	InputBorderStyle             lipgloss.Style
	ScrollIndicatorStyle         lipgloss.Style

	// Sidebar
	SidebarStyle        lipgloss.Style
	SidebarFocusedStyle lipgloss.Style
	SidebarTitleStyle   lipgloss.Style
	EmptyHistoryStyle   lipgloss.Style

	// Transcript overlay
	TranscriptBorderStyle lipgloss.Style
	TranscriptTitleStyle  lipgloss.Style
	TranscriptMetaStyle   lipgloss.Style
)

func init() {
	tint.NewDefaultRegistry()
	tint.SetTint(tint.TintChalk)
	Theme = tint.DefaultRegistry

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(tint.Purple())

	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(tint.Bg()).
		Background(tint.Blue()).
		Align(lipgloss.Center).
		Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
		Foreground(tint.Red()).
		Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Padding(0, 0, 0, 1)

	ActiveButtonStyle = lipgloss.NewStyle().
		Foreground(tint.Bg()).
		Background(tint.Blue()).
		Bold(true)

	InactiveButtonStyle = lipgloss.NewStyle().
		Foreground(tint.Blue())

	UserMessageLabelStyle = lipgloss.NewStyle().
		Foreground(tint.Blue()).
		Bold(true)

	AssistantMessageLabelStyle = lipgloss.NewStyle().
		Foreground(tint.Purple()).
		Bold(true)

	UserMessageContentStyle = lipgloss.NewStyle().
		Foreground(tint.Fg()).
		Padding(0, 1).
		MarginBottom(1)

	AssistantMessageContentStyle = lipgloss.NewStyle().
		Foreground(tint.Fg()).
		Padding(0, 1).
		MarginBottom(1)

	SpinnerStyle = lipgloss.NewStyle().
		Foreground(tint.Purple())

	ViewportBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tint.White()).
		Padding(0, 1)

	InputBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tint.Blue()).
		Padding(0, 1)

	ScrollIndicatorStyle = lipgloss.NewStyle().
		Foreground(tint.White())

	SidebarStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tint.BrightBlack()).
		Padding(0, 1)

	SidebarFocusedStyle = SidebarStyle.
		BorderForeground(tint.Purple())

	SidebarTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(tint.Fg()).
		MarginBottom(1)

	EmptyHistoryStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Italic(true)

	TranscriptBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tint.Yellow()).
		Padding(1, 2)

	TranscriptTitleStyle = lipgloss.NewStyle().
		Foreground(tint.Yellow()).
		Bold(true)

	TranscriptMetaStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack())
}

// ConfigureListStyles configures all list styles to match the application theme
func ConfigureListStyles(l *list.Model) {
	l.Styles.Title = TitleStyle
	l.Styles.TitleBar = lipgloss.NewStyle()

	l.Styles.PaginationStyle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack())

	l.Styles.HelpStyle = helpStyle

	l.Styles.FilterPrompt = lipgloss.NewStyle().
		Foreground(tint.Yellow())
	l.Styles.FilterCursor = lipgloss.NewStyle().
		Foreground(tint.Purple())

	l.Styles.StatusBar = lipgloss.NewStyle().
		Foreground(tint.BrightBlack())

	l.Styles.NoItems = EmptyHistoryStyle
}

// CreateThemedDelegate creates a themed list delegate with application colors
func CreateThemedDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()

	d.Styles.SelectedTitle = lipgloss.NewStyle().
		Foreground(tint.Purple()).
		Bold(true).
		BorderLeft(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(tint.Purple()).
		Padding(0, 0, 0, 1)

	d.Styles.SelectedDesc = lipgloss.NewStyle().
		Foreground(tint.Yellow()).
		BorderLeft(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(tint.Purple()).
		Padding(0, 0, 0, 1)

	d.Styles.NormalTitle = lipgloss.NewStyle().
		Foreground(tint.Fg()).
		Padding(0, 0, 0, 2)

	d.Styles.NormalDesc = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Padding(0, 0, 0, 2)

	d.Styles.DimmedTitle = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Padding(0, 0, 0, 2)

	d.Styles.DimmedDesc = lipgloss.NewStyle().
		Foreground(tint.BrightBlack()).
		Padding(0, 0, 0, 2)

	return d
}

// RenderButton renders a button with the appropriate style
func RenderButton(label string, isActive bool) string {
	if isActive {
		return ActiveButtonStyle.Render(" " + label + " ")
	}
	return InactiveButtonStyle.Render("[ " + label + " ]")
}

// RenderError renders an error message
func RenderError(msg string) string {
	return errorStyle.Render("✗ " + msg)
}

// GetUserMessageContentStyle returns a style for user message content with given width
func GetUserMessageContentStyle(width int) lipgloss.Style {
	return UserMessageContentStyle.
		Width(width).
		Align(lipgloss.Right)
}

// GetAssistantMessageContentStyle returns a style for assistant message content with given width
func GetAssistantMessageContentStyle(width int) lipgloss.Style {
	return AssistantMessageContentStyle.
		Width(width).
		Align(lipgloss.Left)
}

// MessageStyle picks the content style for a message: user messages sit on
// the right of the thread, everything else on the left.
func MessageStyle(role models.Role, width int) lipgloss.Style {
	if role == models.RoleUser {
		return GetUserMessageContentStyle(width)
	}
	return GetAssistantMessageContentStyle(width)
}

// MessageLabel returns the rendered speaker label for a message
func MessageLabel(role models.Role) string {
	if role == models.RoleUser {
		return UserMessageLabelStyle.Render("You:")
	}
	return AssistantMessageLabelStyle.Render("Assistant:")
}
