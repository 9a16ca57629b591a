package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"udaan-chat/internal/models"
)

func TestHistoryList_AppendAndSelect(t *testing.T) {
	m := NewHistoryListModel(nil, 30, 20)
	assert.Equal(t, 0, m.Len())
	assert.Contains(t, m.View(), "No chats yet")

	_, ok := m.SelectedEntry()
	assert.False(t, ok)

	m.AppendEntry(models.HistoryEntry{ID: "1", Title: "Chat on 1/1/2026", Content: "first", Date: "9:00:00 AM"})
	m.AppendEntry(models.HistoryEntry{ID: "2", Title: "Chat on 1/2/2026", Content: "second", Date: "9:00:00 AM"})
	require.Equal(t, 2, m.Len())

	entry, ok := m.SelectedEntry()
	require.True(t, ok)
	assert.Equal(t, "1", entry.ID)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	entry, ok = m.SelectedEntry()
	require.True(t, ok)
	assert.Equal(t, "2", entry.ID, "entries keep insertion order")
}

func TestHistoryItem_Text(t *testing.T) {
	item := historyItem{entry: models.HistoryEntry{
		Title:   "Chat on 10/19/2026",
		Content: "What is a goroutine?",
		Date:    "2:05:09 PM",
	}}

	assert.Equal(t, "Chat on 10/19/2026", item.Title())
	assert.Equal(t, "2:05:09 PM · What is a goroutine?", item.Description())
	assert.Contains(t, item.FilterValue(), "goroutine")
}
