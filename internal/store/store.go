package store

import (
	"context"
	"errors"
	"time"

	"udaan-chat/internal/models"
)

var ErrNotFound = errors.New("transcript not found")

// TranscriptStore keeps the messages of past sessions so they can be reopened
// from the history sidebar.
type TranscriptStore interface {
	// SaveTranscript stores (or replaces) the messages of a session
	SaveTranscript(ctx context.Context, sessionID string, messages []models.Message) error

	// GetTranscript returns the messages of a session in order
	GetTranscript(ctx context.Context, sessionID string) (*Transcript, error)

	// ListTranscriptIDs returns session IDs, oldest save first
	ListTranscriptIDs(ctx context.Context) ([]string, error)

	// DeleteTranscript removes a session's transcript
	DeleteTranscript(ctx context.Context, sessionID string) error

	// Close releases the underlying database
	Close() error
}

type Transcript struct {
	SessionID string
	Messages  []models.Message
	SavedAt   time.Time
}
