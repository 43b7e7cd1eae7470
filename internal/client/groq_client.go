package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/intellijobs/api/internal/config"
)

// ErrNotConfigured is returned by clients that have no credentials.
var ErrNotConfigured = errors.New("client not configured")

// ChatMessage represents a message in the chat completion request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest describes one chat completion call.
type CompletionRequest struct {
	Model       string // empty uses the client default
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

// Completer is the text-completion contract used by the services.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// GroqClient talks to the Groq OpenAI-compatible chat API
type GroqClient struct {
	http  *resty.Client
	model string
	ready bool
}

// NewGroqClient creates a new Groq API client
func NewGroqClient(cfg *config.GroqConfig) *GroqClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(cfg.APIKey)

	return &GroqClient{
		http:  httpClient,
		model: cfg.Model,
		ready: cfg.APIKey != "" && cfg.BaseURL != "",
	}
}

// Complete sends a chat completion request and returns the first choice text.
func (c *GroqClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if !c.ready {
		return "", ErrNotConfigured
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	body := map[string]interface{}{
		"model":       model,
		"messages":    req.Messages,
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("groq API error (status %d): %s", resp.StatusCode(), resp.String())
	}

	choices := gjson.Get(resp.String(), "choices")
	if !choices.Exists() || len(choices.Array()) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return gjson.Get(resp.String(), "choices.0.message.content").String(), nil
}

// IsConfigured returns true if the client has valid configuration
func (c *GroqClient) IsConfigured() bool {
	return c.ready
}
