// Package llm talks to the language-model service. The core treats
// the model as an opaque, fallible remote collaborator: ordered
// role-tagged messages in, free text out.
package llm

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Message is one role-tagged prompt message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Invoker sends an ordered message list to the model and returns its
// response text. Implementations must honor context cancellation.
type Invoker interface {
	Invoke(ctx context.Context, messages []Message) (string, error)
}

// Config holds model service settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Client is the HTTP Invoker speaking a chat-completions wire format.
type Client struct {
	http  *resty.Client
	model string
}

// NewClient creates a model client.
func NewClient(cfg Config) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		httpClient.SetAuthToken(cfg.APIKey)
	}

	return &Client{http: httpClient, model: cfg.Model}
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Invoke sends the messages and returns the model's response text.
func (c *Client) Invoke(ctx context.Context, messages []Message) (string, error) {
	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{Model: c.model, Messages: messages}).
		SetResult(&out).
		SetError(&out).
		Post("/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("model invocation failed: %w", err)
	}
	if resp.IsError() {
		if out.Error != nil {
			return "", fmt.Errorf("model service error: %s", out.Error.Message)
		}
		return "", fmt.Errorf("model service error: %s", resp.Status())
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
