package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/emsi-platform/studyhub/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// Client sends conversation turns to an OpenAI-compatible chat completion endpoint.
type Client struct {
	llm   llms.Model
	model string
}

type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient overrides the transport used for completion requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func New(baseURL, token, model string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	openaiOpts := []openai.Option{
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	}
	if o.httpClient != nil {
		openaiOpts = append(openaiOpts, openai.WithHTTPClient(o.httpClient))
	}
	llm, err := openai.New(openaiOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm, model: model}, nil
}

// Complete requests a single completion for msgs, sent in order and unmodified.
func (c *Client) Complete(ctx context.Context, msgs []models.ChatMessage) (string, error) {
	content := make([]llms.MessageContent, 0, len(msgs))
	for _, m := range msgs {
		content = append(content, llms.TextParts(messageType(m.Role), m.Content))
	}

	resp, err := c.llm.GenerateContent(ctx, content, llms.WithModel(c.model))
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Content, nil
}

func messageType(r models.Role) schema.ChatMessageType {
	switch r {
	case models.RoleAssistant:
		return schema.ChatMessageTypeAI
	case models.RoleSystem:
		return schema.ChatMessageTypeSystem
	default:
		return schema.ChatMessageTypeHuman
	}
}
