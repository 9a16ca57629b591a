package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"udaan-chat/internal/models"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetTranscript(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	msgs := []models.Message{
		{ID: "1", Role: models.RoleUser, Content: "hi"},
		{ID: "2", Role: models.RoleAssistant, Content: "hello **there**"},
	}
	require.NoError(t, s.SaveTranscript(ctx, "1", msgs))

	got, err := s.GetTranscript(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "1", got.SessionID)
	assert.Equal(t, msgs, got.Messages)
	assert.False(t, got.SavedAt.IsZero())
}

func TestSaveTranscript_Replaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTranscript(ctx, "a", []models.Message{{ID: "1", Role: models.RoleUser, Content: "v1"}}))
	require.NoError(t, s.SaveTranscript(ctx, "a", []models.Message{
		{ID: "1", Role: models.RoleUser, Content: "v1"},
		{ID: "2", Role: models.RoleAssistant, Content: "v2"},
	}))

	got, err := s.GetTranscript(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, got.Messages, 2)

	ids, err := s.ListTranscriptIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}

func TestSaveTranscript_EmptyID(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.SaveTranscript(context.Background(), "", nil))
}

func TestGetTranscript_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTranscript(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTranscriptIDs_Order(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for _, id := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, s.SaveTranscript(ctx, id, nil))
	}

	ids, err := s.ListTranscriptIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, ids)
}

func TestDeleteTranscript(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTranscript(ctx, "gone", nil))
	require.NoError(t, s.DeleteTranscript(ctx, "gone"))
	require.NoError(t, s.DeleteTranscript(ctx, "never-existed"))

	_, err := s.GetTranscript(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}
