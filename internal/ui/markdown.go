package ui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"

	"udaan-chat/internal/logging"
)

// createMarkdownRenderer creates a markdown renderer with fallback handling
func createMarkdownRenderer(width int) *glamour.TermRenderer {
	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		return renderer
	}

	logging.Error("Failed to create markdown renderer with auto style: %v, trying fallback", err)

	renderer, err = glamour.NewTermRenderer(
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		return renderer
	}

	logging.Error("Failed to create markdown renderer with basic style: %v, using plain text", err)
	return nil
}

// renderMarkdown renders content with r, falling back to the raw text when
// there is no renderer or rendering fails.
func renderMarkdown(r *glamour.TermRenderer, content string) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.Error("Panic in markdown rendering: %v", rec)
			out = content
		}
	}()

	if r == nil || content == "" {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		logging.Error("Markdown rendering error: %v, falling back to plain text", err)
		return content
	}

	return trimLinePadding(strings.Trim(rendered, "\n"))
}

// glamour pads every line to the wrap width, often with styled spaces
var linePadding = regexp.MustCompile(`(?:[ \t]|\x1b\[[0-9;]*m)+$`)

// trimLinePadding strips trailing padding from each line so the message
// style can align the text itself.
func trimLinePadding(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := linePadding.ReplaceAllString(line, "")
		if strings.Contains(trimmed, "\x1b[") {
			trimmed += "\x1b[0m"
		}
		lines[i] = trimmed
	}
	return strings.Join(lines, "\n")
}
