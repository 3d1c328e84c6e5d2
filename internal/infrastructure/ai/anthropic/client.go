// Package anthropic implements the completion client for the Anthropic
// messages wire protocol.
package anthropic

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

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
)

// Client calls the Anthropic messages endpoint.
type Client struct {
	baseURL   string
	maxTokens int
	client    *http.Client
	logger    *zap.Logger
}

// NewClient creates an Anthropic protocol client.
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

type messagesRequest struct {
	Model     string    `json:"model"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Usage   usage          `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Complete implements outbound.CompletionClient. System instructions travel
// in the top-level system field; the protocol has no JSON response mode, so
// JSON-only output relies on the instructions themselves.
func (c *Client) Complete(ctx context.Context, model, apiKey string, conversation []outbound.ChatMessage, system string) (string, error) {
	messages := make([]message, 0, len(conversation))
	for _, m := range conversation {
		if m.Role == outbound.RoleSystem {
			// System turns are hoisted into the top-level field.
			continue
		}
		messages = append(messages, message{Role: m.Role, Content: m.Content})
	}

	reqBody := messagesRequest{
		Model:     model,
		System:    system,
		Messages:  messages,
		MaxTokens: c.maxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", apiVersion)

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
		return "", &outbound.ProviderError{Provider: "anthropic", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(msgResp.Content) == 0 {
		return "", &outbound.ProviderError{Provider: "anthropic", StatusCode: resp.StatusCode, Body: "empty content in response"}
	}

	c.logger.Info("Anthropic completion succeeded",
		zap.String("model", model),
		zap.Int("input_tokens", msgResp.Usage.InputTokens),
		zap.Int("output_tokens", msgResp.Usage.OutputTokens),
	)

	return msgResp.Content[0].Text, nil
}
