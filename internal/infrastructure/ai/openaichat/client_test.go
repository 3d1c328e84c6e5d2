package openaichat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/forkcast/v1/internal/ports/outbound"
	"github.com/forkcast/v1/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteSendsSystemAsLeadingMessage(t *testing.T) {
	var got chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(chatCompletionResponse{
			Choices: []choice{{Message: message{Role: "assistant", Content: `{"reply":"hi"}`}}},
		})
	}))
	defer srv.Close()

	client := NewClient(logger.NewNop(), 5*time.Second, 1000).WithBaseURL(srv.URL)
	out, err := client.Complete(context.Background(), "gpt-4o-mini", "sk-test",
		[]outbound.ChatMessage{{Role: "user", Content: "dinner?"}}, "be helpful")

	require.NoError(t, err)
	assert.Equal(t, `{"reply":"hi"}`, out)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "be helpful", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	assert.Equal(t, 1000, got.MaxTokens)
}

func TestCompleteReturnsProviderErrorOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer srv.Close()

	client := NewClient(logger.NewNop(), 5*time.Second, 1000).WithBaseURL(srv.URL)
	_, err := client.Complete(context.Background(), "gpt-4o-mini", "sk-test",
		[]outbound.ChatMessage{{Role: "user", Content: "hi"}}, "")

	var perr *outbound.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "openai", perr.Provider)
	assert.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
	assert.Contains(t, perr.Body, "rate limited")
}

func TestCompleteErrorsOnEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatCompletionResponse{})
	}))
	defer srv.Close()

	client := NewClient(logger.NewNop(), 5*time.Second, 1000).WithBaseURL(srv.URL)
	_, err := client.Complete(context.Background(), "gpt-4o-mini", "sk-test",
		[]outbound.ChatMessage{{Role: "user", Content: "hi"}}, "")

	var perr *outbound.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Body, "no response choices")
}
