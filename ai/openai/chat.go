package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mediqa/mediqa/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChatModel implements ai.ChatModel using OpenAI-compatible chat APIs.
type ChatModel struct {
	client      llms.Model
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// newChatModel is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newChatModel(config *ai.Config) (*ChatModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &ChatModel{
		client:      client,
		temperature: config.Temperature,
		maxTokens:   config.MaxTokens,
		logger:      slog.Default().With("component", "openai-chat"),
	}, nil
}

// NewChatModel creates a new chat model using the provided configuration.
//
// Returns ai.ChatModel interface to enforce abstraction.
func NewChatModel(config *ai.Config) (ai.ChatModel, error) {
	return newChatModel(config)
}

// Complete sends the system and user prompts to the model and returns the
// trimmed reply text. A reply without choices or with empty content is
// reported as ai.ErrMalformedResponse.
func (m *ChatModel) Complete(ctx context.Context, system, user string) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(system),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(user),
			},
		},
	}

	response, err := m.client.GenerateContent(ctx, content,
		llms.WithTemperature(m.temperature),
		llms.WithMaxTokens(m.maxTokens))
	if err != nil {
		m.logger.Error("failed to generate content", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		m.logger.Warn("no choices returned from model")
		return "", fmt.Errorf("%w: no choices", ai.ErrMalformedResponse)
	}

	answer := strings.TrimSpace(response.Choices[0].Content)
	if answer == "" {
		m.logger.Warn("model returned empty content")
		return "", fmt.Errorf("%w: empty content", ai.ErrMalformedResponse)
	}

	return answer, nil
}
