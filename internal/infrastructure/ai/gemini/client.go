// Package gemini implements the completion client for the Google Gemini
// generateContent wire protocol.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/forkcast/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client calls the Gemini generateContent endpoint.
type Client struct {
	baseURL   string
	maxTokens int
	client    *http.Client
	logger    *zap.Logger
}

// NewClient creates a Gemini protocol client.
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

type generateRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

// Complete implements outbound.CompletionClient. The conversation becomes a
// single contents array; the protocol names the assistant role "model", so
// internal roles are remapped on the way out. JSON-only output is requested
// through responseMimeType.
func (c *Client) Complete(ctx context.Context, model, apiKey string, conversation []outbound.ChatMessage, system string) (string, error) {
	contents := make([]content, 0, len(conversation))
	for _, m := range conversation {
		role := m.Role
		if role == outbound.RoleAssistant {
			role = "model"
		}
		if role == outbound.RoleSystem {
			continue
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: m.Content}}})
	}

	reqBody := generateRequest{
		Contents: contents,
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			MaxOutputTokens:  c.maxTokens,
			Temperature:      0.7,
		},
	}
	if system != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, url.QueryEscape(apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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
		return "", &outbound.ProviderError{Provider: "gemini", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", &outbound.ProviderError{Provider: "gemini", StatusCode: resp.StatusCode, Body: "no candidates in response"}
	}

	c.logger.Info("Gemini completion succeeded",
		zap.String("model", model),
		zap.String("finish_reason", genResp.Candidates[0].FinishReason),
	)

	return genResp.Candidates[0].Content.Parts[0].Text, nil
}
