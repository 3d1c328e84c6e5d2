package anthropic

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

func TestCompleteHoistsSystemToTopLevel(t *testing.T) {
	var got messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(messagesResponse{
			Content: []contentBlock{{Type: "text", Text: `{"reply":"hello"}`}},
		})
	}))
	defer srv.Close()

	client := NewClient(logger.NewNop(), 5*time.Second, 1500).WithBaseURL(srv.URL)
	out, err := client.Complete(context.Background(), "claude-sonnet", "sk-ant",
		[]outbound.ChatMessage{
			{Role: "system", Content: "stray system turn"},
			{Role: "user", Content: "dinner?"},
		}, "be helpful")

	require.NoError(t, err)
	assert.Equal(t, `{"reply":"hello"}`, out)
	assert.Equal(t, "be helpful", got.System)
	assert.Equal(t, 1500, got.MaxTokens)
	// System turns never appear in the messages array.
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestCompleteReturnsProviderErrorOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream overloaded"))
	}))
	defer srv.Close()

	client := NewClient(logger.NewNop(), 5*time.Second, 1000).WithBaseURL(srv.URL)
	_, err := client.Complete(context.Background(), "claude-sonnet", "sk-ant",
		[]outbound.ChatMessage{{Role: "user", Content: "hi"}}, "")

	var perr *outbound.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "anthropic", perr.Provider)
	assert.Equal(t, http.StatusBadGateway, perr.StatusCode)
}
