// Package modelconfig defines the administrator-managed records that select
// which LLM provider and model serve a user.
package modelconfig

import (
	"errors"

	"github.com/google/uuid"
)

// Provider identifies a supported LLM wire protocol.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// IsValid reports whether the tag names a supported wire protocol.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		return true
	}
	return false
}

// ModelConfig identifies a usable LLM endpoint. Administrator managed and
// read-only to the orchestration engine. Exactly one active config carries
// IsDefault across the system for resolution to function.
type ModelConfig struct {
	ID        uuid.UUID
	Provider  Provider
	ModelID   string // provider-specific model identifier
	Name      string // human readable
	IsActive  bool
	IsDefault bool
}

var (
	ErrUnknownProvider = errors.New("unknown provider tag")
	ErrMissingModelID  = errors.New("model identifier must not be empty")
)

// Validate checks the config invariants that do not require store access.
func (m *ModelConfig) Validate() error {
	if !m.Provider.IsValid() {
		return ErrUnknownProvider
	}
	if m.ModelID == "" {
		return ErrMissingModelID
	}
	return nil
}
