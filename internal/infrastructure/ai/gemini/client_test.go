package gemini

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

func TestCompleteRemapsRolesAndCarriesKeyInQuery(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-pro:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(generateResponse{
			Candidates: []candidate{{
				Content:      content{Role: "model", Parts: []part{{Text: `{"reply":"ok"}`}}},
				FinishReason: "STOP",
			}},
		})
	}))
	defer srv.Close()

	client := NewClient(logger.NewNop(), 5*time.Second, 1200).WithBaseURL(srv.URL)
	out, err := client.Complete(context.Background(), "gemini-pro", "g-key",
		[]outbound.ChatMessage{
			{Role: "user", Content: "dinner?"},
			{Role: "assistant", Content: "how about thai?"},
			{Role: "user", Content: "yes"},
		}, "be helpful")

	require.NoError(t, err)
	assert.Equal(t, `{"reply":"ok"}`, out)
	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "be helpful", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 3)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "model", got.Contents[1].Role)
	require.NotNil(t, got.GenerationConfig)
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMIMEType)
	assert.Equal(t, 1200, got.GenerationConfig.MaxOutputTokens)
}

func TestCompleteReturnsProviderErrorOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"status": "PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	client := NewClient(logger.NewNop(), 5*time.Second, 1000).WithBaseURL(srv.URL)
	_, err := client.Complete(context.Background(), "gemini-pro", "bad-key",
		[]outbound.ChatMessage{{Role: "user", Content: "hi"}}, "")

	var perr *outbound.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "gemini", perr.Provider)
	assert.Equal(t, http.StatusForbidden, perr.StatusCode)
}

func TestCompleteErrorsOnNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{})
	}))
	defer srv.Close()

	client := NewClient(logger.NewNop(), 5*time.Second, 1000).WithBaseURL(srv.URL)
	_, err := client.Complete(context.Background(), "gemini-pro", "g-key",
		[]outbound.ChatMessage{{Role: "user", Content: "hi"}}, "")

	var perr *outbound.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Body, "no candidates")
}
