package outbound

import (
	"context"
	"fmt"
	"time"
)

// ChatMessage is one turn of the conversation passed to a provider. Roles use
// the engine's internal vocabulary (system, user, assistant); protocol
// adapters remap as their wire format requires.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CompletionClient is the uniform call interface over one LLM wire protocol.
// Implementations must request JSON-only output where the protocol supports
// it and cap generated length.
type CompletionClient interface {
	// Complete sends the conversation plus system instructions and returns
	// the raw completion text. Non-success HTTP statuses surface as
	// *ProviderError and are never swallowed.
	Complete(ctx context.Context, model, apiKey string, conversation []ChatMessage, system string) (string, error)
}

// ProviderError carries the upstream status and provider-reported body for a
// failed completion call. It propagates untouched to the fallback logic.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// CompletionCache is an optional response cache consulted before provider
// calls. A nil cache disables caching entirely.
type CompletionCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
