package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"udaan-chat/internal/models"
)

// TranscriptModel shows the messages of one recorded session
type TranscriptModel struct {
	entry    models.HistoryEntry
	viewport viewport.Model
	width    int
	height   int
}

// TranscriptClosed is sent when the transcript overlay is dismissed
type TranscriptClosed struct{}

func NewTranscriptModel() TranscriptModel {
	vp := viewport.New(40, 10)
	vp.KeyMap.Down = key.NewBinding(key.WithKeys("down", "j"))
	vp.KeyMap.Up = key.NewBinding(key.WithKeys("up", "k"))
	vp.KeyMap.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	vp.KeyMap.PageUp = key.NewBinding(key.WithKeys("pgup"))
	vp.KeyMap.HalfPageDown = key.NewBinding()
	vp.KeyMap.HalfPageUp = key.NewBinding()

	return TranscriptModel{viewport: vp}
}

func (m TranscriptModel) Init() tea.Cmd {
	return nil
}

// boxSize returns the overlay content width and height for the screen size
func (m TranscriptModel) boxSize() (int, int) {
	w := m.width * 2 / 3
	if w < 40 {
		w = 40
	}
	h := m.height - 8
	if h < 5 {
		h = 5
	}
	return w, h
}

func (m *TranscriptModel) setContent(entry models.HistoryEntry, body string) {
	m.entry = entry
	w, h := m.boxSize()
	m.viewport.Width = w
	m.viewport.Height = h
	m.viewport.SetContent(body)
	m.viewport.GotoTop()
}

func (m TranscriptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "q", "enter":
			return m, func() tea.Msg { return TranscriptClosed{} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m TranscriptModel) View() string {
	w, _ := m.boxSize()

	var b strings.Builder
	b.WriteString(TranscriptTitleStyle.Render(m.entry.Title))
	b.WriteString("\n")
	b.WriteString(TranscriptMetaStyle.Render(fmt.Sprintf("Started %s", m.entry.Date)))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(TranscriptMetaStyle.Render("↑/↓: Scroll • Esc: Close"))

	return TranscriptBorderStyle.Width(w + 4).Render(b.String())
}

// TranscriptOverlayModel wraps the transcript with the overlay library
type TranscriptOverlayModel struct {
	transcript TranscriptModel
	visible    bool
}

func NewTranscriptOverlayModel() TranscriptOverlayModel {
	return TranscriptOverlayModel{
		transcript: NewTranscriptModel(),
	}
}

// Show opens the overlay with an already rendered transcript body
func (m *TranscriptOverlayModel) Show(entry models.HistoryEntry, body string) {
	m.transcript.setContent(entry, body)
	m.visible = true
}

func (m *TranscriptOverlayModel) Hide() {
	m.visible = false
}

func (m *TranscriptOverlayModel) IsVisible() bool {
	return m.visible
}

// Entry returns the session currently shown
func (m *TranscriptOverlayModel) Entry() models.HistoryEntry {
	return m.transcript.entry
}

func (m *TranscriptOverlayModel) UpdateSize(width, height int) {
	m.transcript.width = width
	m.transcript.height = height
}

func (m *TranscriptOverlayModel) UpdateTranscript(msg tea.Msg) tea.Cmd {
	if !m.visible {
		return nil
	}

	mdl, cmd := m.transcript.Update(msg)
	m.transcript = mdl.(TranscriptModel)
	return cmd
}

func (m TranscriptOverlayModel) RenderOverlay(backgroundView string) string {
	if !m.visible {
		return backgroundView
	}

	overlayModel := overlay.New(
		m.transcript,
		&staticViewModel{content: backgroundView},
		overlay.Center, // horizontal position
		overlay.Center, // vertical position
		0,
		0,
	)

	return overlayModel.View()
}

// staticViewModel is a simple model that renders static content (background)
type staticViewModel struct {
	content string
}

func (m staticViewModel) Init() tea.Cmd {
	return nil
}

func (m staticViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

func (m staticViewModel) View() string {
	return m.content
}
