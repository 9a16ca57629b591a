// Package chat holds the conversation capability the chat view is built on:
// the message list, the pending input, and sending input to a completion
// service.
package chat

import (
	"context"
	"errors"

	"udaan-chat/internal/models"
)

var (
	// ErrEmptyInput is returned by HandleSubmit when there is nothing to send
	ErrEmptyInput = errors.New("input is empty")

	// ErrBusy is returned by HandleSubmit while a reply is still streaming
	ErrBusy = errors.New("a reply is already in progress")
)

// Hook is what the chat view needs from a conversation. The view reads
// messages and input, forwards edits and submissions, and resets the
// conversation through SetMessages. It never changes messages itself.
type Hook interface {
	Messages() []models.Message
	Input() string
	HandleInputChange(value string)
	HandleSubmit(ctx context.Context) (*Stream, error)
	SetMessages(messages []models.Message)

	// ApplyChunk adds streamed text to the reply of the given stream. It
	// returns false when the stream is no longer current and the text was
	// dropped.
	ApplyChunk(chunk Chunk) bool

	// Finish marks a stream as complete. It returns false when the stream
	// had already been replaced or stopped.
	Finish(streamID uint64) bool

	// Stop cancels the reply in progress, keeping what has arrived so far
	Stop()

	Busy() bool
}

// Stream is a reply in progress
type Stream struct {
	ID     uint64
	Tokens <-chan string
	Errs   <-chan error
}

// Chunk is a piece of streamed reply text
type Chunk struct {
	StreamID uint64
	Text     string
}
