// Package ai wires the per-protocol completion clients behind a single
// dispatch point keyed by provider tag.
package ai

import (
	"time"

	"github.com/forkcast/v1/internal/domain/modelconfig"
	"github.com/forkcast/v1/internal/infrastructure/ai/anthropic"
	"github.com/forkcast/v1/internal/infrastructure/ai/gemini"
	"github.com/forkcast/v1/internal/infrastructure/ai/openaichat"
	"github.com/forkcast/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

// Registry maps provider tags to their protocol clients. Provider-specific
// branching lives here and nowhere else.
type Registry struct {
	clients map[modelconfig.Provider]outbound.CompletionClient
}

// NewRegistry constructs clients for every supported wire protocol.
func NewRegistry(logger *zap.Logger, timeout time.Duration, maxTokens int) *Registry {
	return &Registry{
		clients: map[modelconfig.Provider]outbound.CompletionClient{
			modelconfig.ProviderOpenAI:    openaichat.NewClient(logger.Named("openai"), timeout, maxTokens),
			modelconfig.ProviderAnthropic: anthropic.NewClient(logger.Named("anthropic"), timeout, maxTokens),
			modelconfig.ProviderGemini:    gemini.NewClient(logger.Named("gemini"), timeout, maxTokens),
		},
	}
}

// NewRegistryWith builds a registry from explicit clients, used by tests.
func NewRegistryWith(clients map[modelconfig.Provider]outbound.CompletionClient) *Registry {
	return &Registry{clients: clients}
}

// For returns the client for a provider tag, or false when the tag is not
// registered.
func (r *Registry) For(p modelconfig.Provider) (outbound.CompletionClient, bool) {
	c, ok := r.clients[p]
	return c, ok
}
