package models

import (
	"time"
)

const historyTitlePrefix = "Chat on "

// HistoryEntry summarises one session in the sidebar. Entries are snapshots
// and are never modified after creation.
type HistoryEntry struct {
	ID      string
	Title   string
	Content string
	Date    string
}

// NewHistoryEntry builds the sidebar entry for a session from its first message.
func NewHistoryEntry(first Message, now time.Time, format DateFormat) HistoryEntry {
	return HistoryEntry{
		ID:      first.ID,
		Title:   historyTitlePrefix + format.Date(now),
		Content: first.Content,
		Date:    format.Time(now),
	}
}
