package recommend

import (
	"context"

	"github.com/forkcast/v1/internal/domain/modelconfig"
	"github.com/forkcast/v1/internal/infrastructure/config"
	"github.com/forkcast/v1/internal/ports/outbound"
	apperrors "github.com/forkcast/v1/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ModelSelector resolves which model configuration serves a user and which
// API key authorizes the call.
type ModelSelector struct {
	configs outbound.ModelConfigRepository
	prefs   outbound.PreferenceRepository
	keys    config.AIConfig
	logger  *zap.Logger
}

// NewModelSelector creates a model selector.
func NewModelSelector(configs outbound.ModelConfigRepository, prefs outbound.PreferenceRepository, keys config.AIConfig, logger *zap.Logger) *ModelSelector {
	return &ModelSelector{configs: configs, prefs: prefs, keys: keys, logger: logger}
}

// Resolve returns the user's explicitly assigned model when it exists and is
// active, otherwise the unique active default. When neither resolves the
// error is a terminal configuration error, never a silent guess.
func (s *ModelSelector) Resolve(ctx context.Context, userID uuid.UUID) (*modelconfig.ModelConfig, error) {
	if userID != uuid.Nil {
		if prefs, err := s.prefs.FindByUserID(ctx, userID); err == nil && prefs != nil && prefs.AssignedModelID != nil {
			cfg, err := s.configs.FindByID(ctx, *prefs.AssignedModelID)
			if err == nil && cfg != nil && cfg.IsActive {
				return cfg, nil
			}
			s.logger.Info("assigned model unusable, falling back to default",
				zap.String("user_id", userID.String()),
				zap.String("model_id", prefs.AssignedModelID.String()))
		}
	}
	return s.Default(ctx)
}

// Default returns the system-wide default model config.
func (s *ModelSelector) Default(ctx context.Context) (*modelconfig.ModelConfig, error) {
	cfg, err := s.configs.FindDefault(ctx)
	if err != nil || cfg == nil {
		return nil, apperrors.NewConfig("no active default model configured").WithCause(err)
	}
	return cfg, nil
}

// APIKey resolves the key for a provider call. A caller-supplied key takes
// precedence over environment-configured per-provider keys; having neither
// is a configuration error distinct from provider failure.
func (s *ModelSelector) APIKey(cfg *modelconfig.ModelConfig, requestKey string) (string, error) {
	if requestKey != "" {
		return requestKey, nil
	}
	if key := s.keys.KeyFor(cfg.Provider); key != "" {
		return key, nil
	}
	return "", apperrors.NewConfig("no API key available for provider " + string(cfg.Provider))
}
