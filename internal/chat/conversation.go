package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"udaan-chat/internal/completion"
	"udaan-chat/internal/logging"
	"udaan-chat/internal/models"
)

// Conversation is the Hook backed by a completion service. It is not safe for
// concurrent use; the UI event loop is its only caller.
type Conversation struct {
	streamer     completion.Streamer
	systemPrompt string
	newID        func() string

	messages []models.Message
	input    string

	// current stream; 0 means idle
	streamID uint64
	lastID   uint64
	replyIdx int
	cancel   context.CancelFunc
}

var _ Hook = (*Conversation)(nil)

// ConversationOption configures a Conversation
type ConversationOption func(*Conversation)

// WithSystemPrompt prefixes every request with a system message
func WithSystemPrompt(prompt string) ConversationOption {
	return func(c *Conversation) {
		c.systemPrompt = prompt
	}
}

// WithIDGenerator replaces the UUID message IDs
func WithIDGenerator(newID func() string) ConversationOption {
	return func(c *Conversation) {
		c.newID = newID
	}
}

// NewConversation creates an empty conversation that asks streamer for replies
func NewConversation(streamer completion.Streamer, opts ...ConversationOption) *Conversation {
	c := &Conversation{
		streamer: streamer,
		newID:    func() string { return uuid.New().String() },
		replyIdx: -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Messages returns a copy of the conversation
func (c *Conversation) Messages() []models.Message {
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Input() string {
	return c.input
}

func (c *Conversation) HandleInputChange(value string) {
	c.input = value
}

func (c *Conversation) Busy() bool {
	return c.streamID != 0
}

// HandleSubmit sends the current input as a user message and starts streaming
// the assistant reply.
func (c *Conversation) HandleSubmit(ctx context.Context) (*Stream, error) {
	if strings.TrimSpace(c.input) == "" {
		return nil, ErrEmptyInput
	}
	if c.Busy() {
		return nil, ErrBusy
	}

	userMsg := models.NewMessage(c.newID(), models.RoleUser, c.input)
	c.messages = append(c.messages, userMsg)
	c.input = ""

	streamCtx, cancel := context.WithCancel(ctx)

	tokens, errs, err := c.streamer.Stream(streamCtx, c.prompt())
	if err != nil {
		cancel()
		logging.Error("Failed to start reply for message %s: %v", userMsg.ID, err)
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	c.lastID++
	c.streamID = c.lastID
	c.replyIdx = -1
	c.cancel = cancel

	logging.Info("Sent message %s, stream %d", userMsg.ID, c.streamID)

	return &Stream{ID: c.streamID, Tokens: tokens, Errs: errs}, nil
}

// prompt is the conversation as sent to the completion service
func (c *Conversation) prompt() []models.Message {
	if c.systemPrompt == "" {
		return c.Messages()
	}
	out := make([]models.Message, 0, len(c.messages)+1)
	out = append(out, models.NewMessage("system", models.RoleSystem, c.systemPrompt))
	return append(out, c.messages...)
}

func (c *Conversation) ApplyChunk(chunk Chunk) bool {
	if chunk.StreamID == 0 || chunk.StreamID != c.streamID {
		logging.Debug("Dropping chunk for stale stream %d (current %d)", chunk.StreamID, c.streamID)
		return false
	}

	if c.replyIdx < 0 {
		c.messages = append(c.messages, models.NewMessage(c.newID(), models.RoleAssistant, chunk.Text))
		c.replyIdx = len(c.messages) - 1
		return true
	}

	c.messages[c.replyIdx].Content += chunk.Text
	return true
}

func (c *Conversation) Finish(streamID uint64) bool {
	if streamID == 0 || streamID != c.streamID {
		return false
	}
	c.endStream()
	return true
}

func (c *Conversation) Stop() {
	if !c.Busy() {
		return
	}
	logging.Info("Stopping stream %d", c.streamID)
	c.endStream()
}

// SetMessages replaces the conversation. Any reply in progress is cancelled
// and its remaining chunks are dropped.
func (c *Conversation) SetMessages(messages []models.Message) {
	c.endStream()
	c.messages = make([]models.Message, len(messages))
	copy(c.messages, messages)
}

func (c *Conversation) endStream() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.streamID = 0
	c.replyIdx = -1
}
