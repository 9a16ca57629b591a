package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"udaan-chat/internal/chat"
	"udaan-chat/internal/logging"
	"udaan-chat/internal/models"
	"udaan-chat/internal/session"
	"udaan-chat/internal/store"
)

const (
	headerHeight = 1
	inputHeight  = 3
	statusHeight = 1
	helpHeight   = 1
	borderHeight = 2
)

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// ViewOptions configures the chat view
type ViewOptions struct {
	Title           string
	Locale          string
	SidebarRatio    float64
	SidebarMinWidth int
	// PlainText disables markdown rendering
	PlainText bool
}

type ChatViewModel struct {
	hook       chat.Hook
	tracker    *session.Tracker
	store      store.TranscriptStore
	opts       ViewOptions
	sidebar    HistoryListModel
	viewport   viewport.Model
	input      textinput.Model
	spinner    spinner.Model
	transcript TranscriptOverlayModel
	mdRenderer *glamour.TermRenderer
	printer    *message.Printer
	focus      focusArea
	width      int
	height     int
	err        error
	ctx        context.Context
	cancelFunc context.CancelFunc

	// number of messages last rendered into the viewport, used to decide
	// whether to follow the bottom of the thread
	renderedCount      int
	tokenCount         int
	thinkingStartTime  time.Time
	lastResponseTokens int
	lastResponseTPS    float64
}

// ChatChunkReceived carries one piece of a streamed reply
type ChatChunkReceived struct {
	Stream *chat.Stream
	Text   string
}

type ChatResponseComplete struct {
	StreamID uint64
}

type ChatResponseError struct {
	StreamID uint64
	Err      error
}

// TranscriptLoaded opens a recorded session in the overlay
type TranscriptLoaded struct {
	Entry    models.HistoryEntry
	Messages []models.Message
}

func NewChatViewModel(hook chat.Hook, tracker *session.Tracker, transcripts store.TranscriptStore, opts ViewOptions, width, height int) ChatViewModel {
	ti := textinput.New()
	ti.Placeholder = "Type your message..."
	ti.Prompt = "› "
	ti.CharLimit = 4000
	ti.Focus()

	vp := viewport.New(width, height)
	vp.MouseWheelDelta = 2
	vp.KeyMap.Down = key.NewBinding(key.WithKeys("down"))
	vp.KeyMap.Up = key.NewBinding(key.WithKeys("up"))
	vp.KeyMap.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	vp.KeyMap.PageUp = key.NewBinding(key.WithKeys("pgup"))
	vp.KeyMap.HalfPageDown = key.NewBinding()
	vp.KeyMap.HalfPageUp = key.NewBinding()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	tag, err := language.Parse(opts.Locale)
	if err != nil {
		tag = language.AmericanEnglish
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := ChatViewModel{
		hook:       hook,
		tracker:    tracker,
		store:      transcripts,
		opts:       opts,
		sidebar:    NewHistoryListModel(tracker.History(), 20, 10),
		viewport:   vp,
		input:      ti,
		spinner:    sp,
		transcript: NewTranscriptOverlayModel(),
		printer:    message.NewPrinter(tag),
		ctx:        ctx,
		cancelFunc: cancel,
	}
	m.resize(width, height)
	m.renderMessages()

	return m
}

func (m ChatViewModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

// sidebarWidth is zero when the terminal is too narrow for the sidebar
func (m ChatViewModel) sidebarWidth() int {
	if m.opts.SidebarRatio <= 0 || m.width < m.opts.SidebarMinWidth {
		return 0
	}
	return int(float64(m.width) * m.opts.SidebarRatio)
}

func (m ChatViewModel) mainWidth() int {
	return m.width - m.sidebarWidth()
}

// threadWidth is the usable width inside the message viewport border
func (m ChatViewModel) threadWidth() int {
	w := m.mainWidth() - 4
	if w < 10 {
		w = 10
	}
	return w
}

func (m *ChatViewModel) resize(width, height int) {
	m.width = width
	m.height = height

	vpHeight := height - headerHeight - borderHeight - inputHeight - statusHeight - helpHeight
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = m.threadWidth()
	m.viewport.Height = vpHeight
	m.input.Width = m.mainWidth() - 8

	if sw := m.sidebarWidth(); sw > 0 {
		// border, padding, title and button rows
		m.sidebar.SetSize(sw-4, height-6)
	} else if m.focus == focusSidebar {
		m.focusInput()
	}

	m.transcript.UpdateSize(width, height)

	if !m.opts.PlainText {
		m.mdRenderer = createMarkdownRenderer(m.threadWidth())
	}
}

func (m *ChatViewModel) focusInput() {
	m.focus = focusInput
	m.input.Focus()
}

func (m *ChatViewModel) focusSidebar() {
	m.focus = focusSidebar
	m.input.Blur()
}

func (m ChatViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)

	// Any update may have changed the message list; record the session the
	// moment the list stops being empty.
	if entry, ok := m.tracker.Observe(m.hook.Messages()); ok {
		cmd = tea.Batch(cmd, m.sidebar.AppendEntry(entry))
	}

	return m, cmd
}

func (m ChatViewModel) update(msg tea.Msg) (ChatViewModel, tea.Cmd) {
	if m.transcript.IsVisible() {
		switch msg := msg.(type) {
		case TranscriptClosed:
			m.transcript.Hide()
			return m, nil
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m.quit()
			}
			return m, m.transcript.UpdateTranscript(msg)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.renderMessages()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ChatChunkReceived:
		if !m.hook.ApplyChunk(chat.Chunk{StreamID: msg.Stream.ID, Text: msg.Text}) {
			// Stream was reset or stopped; its reader exits on cancellation
			return m, nil
		}
		if m.thinkingStartTime.IsZero() {
			m.thinkingStartTime = time.Now()
		}
		m.tokenCount++
		m.renderMessages()
		return m, waitForChunk(msg.Stream)

	case ChatResponseComplete:
		if !m.hook.Finish(msg.StreamID) {
			return m, nil
		}
		if m.tokenCount > 0 && !m.thinkingStartTime.IsZero() {
			if d := time.Since(m.thinkingStartTime).Seconds(); d > 0 {
				m.lastResponseTokens = m.tokenCount
				m.lastResponseTPS = float64(m.tokenCount) / d
			}
		}
		m.resetStreamStats()
		m.renderMessages()
		return m, m.saveTranscript()

	case ChatResponseError:
		if !m.hook.Finish(msg.StreamID) {
			logging.Debug("Ignoring error from stale stream %d: %v", msg.StreamID, msg.Err)
			return m, nil
		}
		logging.Error("Reply failed: %v", msg.Err)
		m.err = msg.Err
		m.resetStreamStats()
		m.renderMessages()
		return m, m.saveTranscript()

	case TranscriptLoaded:
		width, _ := m.transcript.transcript.boxSize()
		m.transcript.Show(msg.Entry, m.renderThread(msg.Messages, width))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.focus == focusInput {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m ChatViewModel) handleKey(msg tea.KeyMsg) (ChatViewModel, tea.Cmd) {
	// A filter being typed in the sidebar gets every key
	if m.focus == focusSidebar && m.sidebar.Filtering() {
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c":
		return m.quit()

	case "ctrl+n":
		return m.newChat()

	case "tab", "shift+tab":
		if m.focus == focusInput && m.sidebarWidth() > 0 {
			m.focusSidebar()
		} else {
			m.focusInput()
		}
		return m, nil

	case "esc":
		if m.hook.Busy() {
			m.hook.Stop()
			m.resetStreamStats()
			m.renderMessages()
			return m, m.saveTranscript()
		}
		if m.focus == focusSidebar {
			m.focusInput()
		}
		m.err = nil
		return m, nil

	case "enter":
		if m.focus == focusSidebar {
			return m, m.openSelectedTranscript()
		}
		return m.submit()

	case "up", "down", "pgup", "pgdown":
		if m.focus == focusSidebar {
			var cmd tea.Cmd
			m.sidebar, cmd = m.sidebar.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.focus == focusSidebar {
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.hook.HandleInputChange(m.input.Value())
	return m, cmd
}

func (m ChatViewModel) quit() (ChatViewModel, tea.Cmd) {
	m.hook.Stop()
	m.cancelFunc()
	return m, tea.Quit
}

// submit hands the input to the hook; the hook decides whether there is
// anything to send.
func (m ChatViewModel) submit() (ChatViewModel, tea.Cmd) {
	m.hook.HandleInputChange(m.input.Value())

	stream, err := m.hook.HandleSubmit(m.ctx)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyInput) || errors.Is(err, chat.ErrBusy) {
			return m, nil
		}
		m.err = err
		m.input.SetValue(m.hook.Input())
		m.renderMessages()
		return m, nil
	}

	m.err = nil
	m.input.SetValue(m.hook.Input())
	m.lastResponseTokens = 0
	m.lastResponseTPS = 0
	m.renderMessages()
	m.viewport.GotoBottom()

	return m, waitForChunk(stream)
}

// newChat saves the active session's transcript, starts a new session and
// clears the conversation. Recorded history stays in the sidebar.
func (m ChatViewModel) newChat() (ChatViewModel, tea.Cmd) {
	save := m.saveTranscript()

	m.tracker.NewChat()
	m.hook.SetMessages(nil)
	m.resetStreamStats()
	m.lastResponseTokens = 0
	m.lastResponseTPS = 0
	m.err = nil
	m.focusInput()
	m.renderMessages()

	logging.Info("Started new chat, %d sessions in history", len(m.tracker.History()))
	return m, save
}

func (m *ChatViewModel) resetStreamStats() {
	m.tokenCount = 0
	m.thinkingStartTime = time.Time{}
}

// saveTranscript stores a snapshot of the active session under its history entry
func (m ChatViewModel) saveTranscript() tea.Cmd {
	entry, ok := m.tracker.Current()
	if !ok || m.store == nil {
		return nil
	}
	messages := m.hook.Messages()
	transcripts := m.store
	ctx := m.ctx

	return func() tea.Msg {
		if err := transcripts.SaveTranscript(ctx, entry.ID, messages); err != nil {
			logging.Error("Failed to save transcript %s: %v", entry.ID, err)
		}
		return nil
	}
}

// openSelectedTranscript loads the highlighted session. The active session is
// read from the hook so it is never stale.
func (m ChatViewModel) openSelectedTranscript() tea.Cmd {
	entry, ok := m.sidebar.SelectedEntry()
	if !ok {
		return nil
	}

	if current, ok := m.tracker.Current(); ok && current.ID == entry.ID {
		messages := m.hook.Messages()
		return func() tea.Msg {
			return TranscriptLoaded{Entry: entry, Messages: messages}
		}
	}

	transcripts := m.store
	ctx := m.ctx
	return func() tea.Msg {
		fallback := []models.Message{models.NewMessage(entry.ID, models.RoleUser, entry.Content)}
		if transcripts == nil {
			return TranscriptLoaded{Entry: entry, Messages: fallback}
		}

		t, err := transcripts.GetTranscript(ctx, entry.ID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				logging.Error("Failed to load transcript %s: %v", entry.ID, err)
			}
			return TranscriptLoaded{Entry: entry, Messages: fallback}
		}
		return TranscriptLoaded{Entry: entry, Messages: t.Messages}
	}
}

// waitForChunk creates a command that waits for the next piece of a reply
func waitForChunk(stream *chat.Stream) tea.Cmd {
	return func() tea.Msg {
		select {
		case token, ok := <-stream.Tokens:
			if !ok {
				return streamEnded(stream)
			}
			return ChatChunkReceived{Stream: stream, Text: token}

		case err, ok := <-stream.Errs:
			if ok && err != nil {
				return ChatResponseError{StreamID: stream.ID, Err: err}
			}
			// Error channel closed cleanly, only tokens are left
			token, ok := <-stream.Tokens
			if !ok {
				return ChatResponseComplete{StreamID: stream.ID}
			}
			return ChatChunkReceived{Stream: stream, Text: token}
		}
	}
}

func streamEnded(stream *chat.Stream) tea.Msg {
	if err, ok := <-stream.Errs; ok && err != nil {
		return ChatResponseError{StreamID: stream.ID, Err: err}
	}
	return ChatResponseComplete{StreamID: stream.ID}
}

// renderThread renders messages for a column of the given width
func (m ChatViewModel) renderThread(messages []models.Message, width int) string {
	var b strings.Builder

	for _, msg := range messages {
		if msg.Role == models.RoleSystem {
			continue
		}

		content := renderMarkdown(m.mdRenderer, msg.Content)
		b.WriteString(MessageStyle(msg.Role, width).Render(MessageLabel(msg.Role) + "\n" + content))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *ChatViewModel) renderMessages() {
	messages := m.hook.Messages()
	atBottom := m.viewport.AtBottom()

	m.viewport.SetContent(m.renderThread(messages, m.viewport.Width))

	if atBottom || len(messages) != m.renderedCount {
		m.viewport.GotoBottom()
	}
	m.renderedCount = len(messages)
}

func (m ChatViewModel) View() string {
	main := m.renderMain()

	var screen string
	if sw := m.sidebarWidth(); sw > 0 {
		screen = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(sw), main)
	} else {
		screen = main
	}

	return m.transcript.RenderOverlay(screen)
}

func (m ChatViewModel) renderSidebar(width int) string {
	style := SidebarStyle
	if m.focus == focusSidebar {
		style = SidebarFocusedStyle
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		SidebarTitleStyle.Render("Chat History"),
		RenderButton("New Chat (Ctrl+N)", m.focus == focusSidebar),
		"",
		m.sidebar.View(),
	)

	return style.
		Width(width - 2).
		Height(m.height - 2).
		Render(content)
}

func (m ChatViewModel) renderMain() string {
	width := m.mainWidth()

	var b strings.Builder

	b.WriteString(HeaderStyle.Width(width).Render(m.opts.Title))
	b.WriteString("\n")

	b.WriteString(ViewportBorderStyle.Width(width - 2).Render(m.viewport.View()))
	b.WriteString("\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	b.WriteString(InputBorderStyle.Width(width - 2).Render(m.input.View()))
	b.WriteString("\n")

	helpText := "Enter: Send • Ctrl+N: New Chat • Tab: History • Esc: Stop • Ctrl+C: Quit"
	if m.focus == focusSidebar {
		helpText = "↑/↓: Navigate • Enter: Open • /: Filter • Tab: Back to input • Ctrl+C: Quit"
	}
	b.WriteString(helpStyle.Render(helpText))

	return b.String()
}

func (m ChatViewModel) renderStatus() string {
	if m.err != nil {
		return statusBarStyle.Render(RenderError(m.err.Error()))
	}

	if m.hook.Busy() {
		return statusBarStyle.Render(m.spinner.View() + m.printer.Sprintf(" Thinking... (%d tokens)", m.tokenCount))
	}

	if m.lastResponseTokens > 0 {
		return statusBarStyle.Render(m.printer.Sprintf("Last response: %d tokens, %.1f tok/s", m.lastResponseTokens, m.lastResponseTPS))
	}

	if m.viewport.TotalLineCount() > m.viewport.Height {
		return ScrollIndicatorStyle.Render(fmt.Sprintf(" Scroll: %d%% ↕", int(m.viewport.ScrollPercent()*100)))
	}

	return ""
}
