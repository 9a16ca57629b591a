// Package session tracks which chat sessions have been recorded in the
// history sidebar.
//
// A session runs from one New Chat to the next. The first message of each
// session produces exactly one history entry; New Chat starts a fresh session
// without touching the entries already recorded.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/qmuntal/stateless"

	"udaan-chat/internal/logging"
	"udaan-chat/internal/models"
)

// Session flag states
const (
	StateUnrecorded = "unrecorded"
	StateRecorded   = "recorded"
)

// Triggers
const (
	TriggerFirstMessage = "first_message"
	TriggerNewChat      = "new_chat"
)

// Tracker records the first message of each chat session into history
type Tracker struct {
	fsm     *stateless.StateMachine
	history []models.HistoryEntry
	now     func() time.Time
	format  models.DateFormat
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithDateFormat sets how entry titles and times are written
func WithDateFormat(format models.DateFormat) Option {
	return func(t *Tracker) {
		t.format = format
	}
}

// NewTracker creates a tracker with an empty history and no recorded session
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		now:    time.Now,
		format: models.DefaultDateFormat(),
	}
	for _, opt := range opts {
		opt(t)
	}

	fsm := stateless.NewStateMachine(StateUnrecorded)

	fsm.Configure(StateUnrecorded).
		Permit(TriggerFirstMessage, StateRecorded).
		Ignore(TriggerNewChat)

	fsm.Configure(StateRecorded).
		OnEntryFrom(TriggerFirstMessage, func(_ context.Context, args ...any) error {
			entry, ok := args[0].(models.HistoryEntry)
			if !ok {
				return fmt.Errorf("unexpected first message argument %T", args[0])
			}
			t.history = append(t.history, entry)
			return nil
		}).
		Permit(TriggerNewChat, StateUnrecorded).
		Ignore(TriggerFirstMessage)

	t.fsm = fsm
	return t
}

// Observe is called whenever the message list changes. When the list is
// non-empty and the current session has not been recorded yet, it appends a
// history entry built from the first message and returns it.
//
// The entry is a snapshot: later changes to the first message are not
// reflected in it.
func (t *Tracker) Observe(messages []models.Message) (models.HistoryEntry, bool) {
	if len(messages) == 0 || t.Recorded() {
		return models.HistoryEntry{}, false
	}

	entry := models.NewHistoryEntry(messages[0], t.now(), t.format)
	if err := t.fsm.Fire(TriggerFirstMessage, entry); err != nil {
		logging.Error("Failed to record session: %v", err)
		return models.HistoryEntry{}, false
	}

	logging.Debug("Recorded session %s (%d entries)", entry.ID, len(t.history))
	return entry, true
}

// NewChat starts a new session. Recorded history is kept.
func (t *Tracker) NewChat() {
	if err := t.fsm.Fire(TriggerNewChat); err != nil {
		logging.Error("Failed to reset session: %v", err)
	}
}

// Recorded reports whether the active session already has a history entry
func (t *Tracker) Recorded() bool {
	return t.fsm.MustState() == StateRecorded
}

// Current returns the entry of the active session, if it has been recorded
func (t *Tracker) Current() (models.HistoryEntry, bool) {
	if !t.Recorded() || len(t.history) == 0 {
		return models.HistoryEntry{}, false
	}
	return t.history[len(t.history)-1], true
}

// History returns a copy of all entries in the order they were recorded
func (t *Tracker) History() []models.HistoryEntry {
	out := make([]models.HistoryEntry, len(t.history))
	copy(out, t.history)
	return out
}
