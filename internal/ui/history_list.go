package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"udaan-chat/internal/models"
)

// HistoryListModel is the sidebar list of recorded sessions
type HistoryListModel struct {
	list list.Model
}

type historyItem struct {
	entry models.HistoryEntry
}

func (i historyItem) Title() string       { return i.entry.Title }
func (i historyItem) Description() string { return i.entry.Date + " · " + i.entry.Content }
func (i historyItem) FilterValue() string { return i.entry.Title + " " + i.entry.Content }

func NewHistoryListModel(entries []models.HistoryEntry, width, height int) HistoryListModel {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = historyItem{entry: e}
	}

	l := list.New(items, CreateThemedDelegate(), width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	ConfigureListStyles(&l)

	// Keep navigation and filtering only; everything else belongs to the chat view
	l.KeyMap.CursorUp = key.NewBinding(key.WithKeys("up"))
	l.KeyMap.CursorDown = key.NewBinding(key.WithKeys("down"))
	l.KeyMap.NextPage = key.NewBinding(key.WithKeys("pgdown"))
	l.KeyMap.PrevPage = key.NewBinding(key.WithKeys("pgup"))
	l.KeyMap.GoToStart = key.NewBinding(key.WithKeys("home"))
	l.KeyMap.GoToEnd = key.NewBinding(key.WithKeys("end"))
	l.KeyMap.Filter = key.NewBinding(key.WithKeys("/"))
	l.KeyMap.ClearFilter = key.NewBinding(key.WithKeys("esc"))
	l.KeyMap.CancelWhileFiltering = key.NewBinding(key.WithKeys("esc"))
	l.KeyMap.AcceptWhileFiltering = key.NewBinding(key.WithKeys("enter"))
	l.KeyMap.ShowFullHelp = key.NewBinding()
	l.KeyMap.CloseFullHelp = key.NewBinding()

	return HistoryListModel{list: l}
}

// AppendEntry adds a session at the bottom of the list
func (m *HistoryListModel) AppendEntry(entry models.HistoryEntry) tea.Cmd {
	return m.list.InsertItem(len(m.list.Items()), historyItem{entry: entry})
}

// SelectedEntry returns the highlighted session
func (m HistoryListModel) SelectedEntry() (models.HistoryEntry, bool) {
	item, ok := m.list.SelectedItem().(historyItem)
	if !ok {
		return models.HistoryEntry{}, false
	}
	return item.entry, true
}

// Filtering reports whether the user is typing a filter
func (m HistoryListModel) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m HistoryListModel) Len() int {
	return len(m.list.Items())
}

func (m *HistoryListModel) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

func (m HistoryListModel) Update(msg tea.Msg) (HistoryListModel, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m HistoryListModel) View() string {
	if m.Len() == 0 {
		return EmptyHistoryStyle.Render("No chats yet")
	}
	return m.list.View()
}
