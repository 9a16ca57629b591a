package completion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/sashabaranov/go-openai"

	"udaan-chat/internal/config"
	"udaan-chat/internal/logging"
	"udaan-chat/internal/models"
)

// Streamer produces an assistant reply for a conversation, token by token.
//
// The token channel is closed when the reply is complete. The error channel
// receives at most one error and is closed together with the token channel.
type Streamer interface {
	Stream(ctx context.Context, messages []models.Message) (<-chan string, <-chan error, error)
}

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAIClient(cfg config.CompletionConfig) *OpenAIClient {
	return newOpenAIClient(cfg, nil)
}

func newOpenAIClient(cfg config.CompletionConfig, httpClient openai.HTTPDoer) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		clientCfg.HTTPClient = httpClient
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
	}
}

func (c *OpenAIClient) Model() string {
	return c.model
}

func toOpenAIMessages(messages []models.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case models.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		case models.RoleSystem:
			role = openai.ChatMessageRoleSystem
		}
		out = append(out, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}
	return out
}

func (c *OpenAIClient) Stream(ctx context.Context, messages []models.Message) (<-chan string, <-chan error, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      true,
	}

	logging.Debug("Starting completion stream: model=%s, messages=%d", c.model, len(messages))

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start chat completion: %w", err)
	}

	streamChan := make(chan string, 10)
	errChan := make(chan error, 1)

	go func() {
		defer stream.Close()
		defer close(streamChan)
		defer close(errChan)

		for {
			resp, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				if ctx.Err() != nil {
					// Cancelled by the caller, not a failure
					return
				}
				logging.Error("Completion stream failed: %v", err)
				errChan <- fmt.Errorf("error reading stream: %w", err)
				return
			}

			if len(resp.Choices) == 0 {
				continue
			}

			delta := resp.Choices[0].Delta.Content
			if delta != "" {
				select {
				case streamChan <- delta:
				case <-ctx.Done():
					return
				}
			}

			if resp.Choices[0].FinishReason != "" {
				return
			}
		}
	}()

	return streamChan, errChan, nil
}

// ListModels returns the model IDs served by the endpoint, sorted
func (c *OpenAIClient) ListModels(ctx context.Context) ([]string, error) {
	list, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	return ids, nil
}
