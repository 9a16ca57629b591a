package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"udaan-chat/internal/models"
)

const transcriptPrefix = "transcript:"

type BadgerStore struct {
	db  *badger.DB
	now func() time.Time
}

// NewMemoryStore opens an in-memory badger database. Nothing is written to
// disk and everything is gone once the store is closed.
func NewMemoryStore() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &BadgerStore{db: db, now: time.Now}, nil
}

func transcriptKey(sessionID string) []byte {
	return []byte(transcriptPrefix + sessionID)
}

func (s *BadgerStore) SaveTranscript(ctx context.Context, sessionID string, messages []models.Message) error {
	if sessionID == "" {
		return fmt.Errorf("session id must not be empty")
	}

	t := Transcript{
		SessionID: sessionID,
		Messages:  messages,
		SavedAt:   s.now(),
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(transcriptKey(sessionID), data)
	})
}

func (s *BadgerStore) GetTranscript(ctx context.Context, sessionID string) (*Transcript, error) {
	var t Transcript

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(transcriptKey(sessionID))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &t)
		})
	})

	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve transcript: %w", err)
	}

	return &t, nil
}

func (s *BadgerStore) ListTranscriptIDs(ctx context.Context) ([]string, error) {
	var transcripts []Transcript
	prefix := []byte(transcriptPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var t Transcript
				if err := json.Unmarshal(val, &t); err != nil {
					return err
				}
				transcripts = append(transcripts, t)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}

	sort.SliceStable(transcripts, func(i, j int) bool {
		return transcripts[i].SavedAt.Before(transcripts[j].SavedAt)
	})

	ids := make([]string, len(transcripts))
	for i, t := range transcripts {
		ids[i] = t.SessionID
	}
	return ids, nil
}

func (s *BadgerStore) DeleteTranscript(ctx context.Context, sessionID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(transcriptKey(sessionID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to delete transcript: %w", err)
		}
		return nil
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
