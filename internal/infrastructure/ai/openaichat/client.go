// Package openaichat implements the completion client for the OpenAI chat
// completions wire protocol.
package openaichat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/forkcast/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client calls the OpenAI chat completions endpoint.
type Client struct {
	baseURL   string
	maxTokens int
	client    *http.Client
	logger    *zap.Logger
}

// NewClient creates an OpenAI protocol client.
func NewClient(logger *zap.Logger, timeout time.Duration, maxTokens int) *Client {
	return &Client{
		baseURL:   defaultBaseURL,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// WithBaseURL overrides the endpoint, used by tests and proxies.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Message      message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Complete implements outbound.CompletionClient. System instructions travel
// as a leading system-role message; JSON-only output is requested through
// response_format.
func (c *Client) Complete(ctx context.Context, model, apiKey string, conversation []outbound.ChatMessage, system string) (string, error) {
	messages := make([]message, 0, len(conversation)+1)
	if system != "" {
		messages = append(messages, message{Role: outbound.RoleSystem, Content: system})
	}
	for _, m := range conversation {
		messages = append(messages, message{Role: m.Role, Content: m.Content})
	}

	reqBody := chatCompletionRequest{
		Model:          model,
		Messages:       messages,
		Temperature:    0.7,
		MaxTokens:      c.maxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &outbound.ProviderError{Provider: "openai", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", &outbound.ProviderError{Provider: "openai", StatusCode: resp.StatusCode, Body: "no response choices returned"}
	}

	c.logger.Info("OpenAI completion succeeded",
		zap.String("model", model),
		zap.Int("prompt_tokens", chatResp.Usage.PromptTokens),
		zap.Int("completion_tokens", chatResp.Usage.CompletionTokens),
	)

	return chatResp.Choices[0].Message.Content, nil
}
