package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/forkcast/v1/internal/ports/outbound"
	apperrors "github.com/forkcast/v1/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RescaleRequest asks for a recipe rewritten to a different serving count.
// The recipe text comes from the caller; nothing is looked up by ID.
type RescaleRequest struct {
	UserID     uuid.UUID
	APIKey     string
	Title      string
	RecipeText string
	Servings   int
}

// RescaledRecipe is the distinct response shape of the rescale action. It is
// not a suggestion list: one recipe in, one adjusted recipe out.
type RescaledRecipe struct {
	Title        string   `json:"title"`
	Rationale    string   `json:"rationale"`
	Servings     int      `json:"servings"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Timing       string   `json:"timing"`
	ModelUsed    string   `json:"modelUsed"`
	UsedFallback bool     `json:"usedFallback"`
}

// Rescale rewrites the given recipe for the requested serving count using the
// same model resolution and fallback policy as recommendations.
func (o *Orchestrator) Rescale(ctx context.Context, req RescaleRequest) (*RescaledRecipe, error) {
	if strings.TrimSpace(req.RecipeText) == "" {
		return nil, apperrors.NewBadRequest("rescale requires the recipe text")
	}
	if req.Servings < 1 {
		return nil, apperrors.NewBadRequest("servings must be at least 1")
	}

	cfg, err := o.selector.Resolve(ctx, req.UserID)
	if err != nil {
		o.metrics.Requests.WithLabelValues("rescale", "config_error").Inc()
		return nil, err
	}

	prompt := fmt.Sprintf("Rescale this recipe to serve %d.\n\nTitle: %s\n\n%s",
		req.Servings, req.Title, req.RecipeText)
	conversation := []outbound.ChatMessage{{Role: outbound.RoleUser, Content: prompt}}

	raw, used, fellBack, err := o.completeWithFallback(ctx, cfg, req.APIKey, conversation, rescaleContract)
	if err != nil {
		o.metrics.Requests.WithLabelValues("rescale", "provider_error").Inc()
		return nil, err
	}

	var recipe RescaledRecipe
	if uerr := json.Unmarshal([]byte(StripCodeFence(raw)), &recipe); uerr != nil {
		o.logger.Warn("rescale output was not JSON", zap.Error(uerr))
		o.metrics.Requests.WithLabelValues("rescale", "invalid_output").Inc()
		return nil, apperrors.NewProvider("rescale output could not be parsed", uerr)
	}
	if recipe.Servings == 0 {
		recipe.Servings = req.Servings
	}
	recipe.ModelUsed = used.Name
	recipe.UsedFallback = fellBack

	o.metrics.Requests.WithLabelValues("rescale", "ok").Inc()
	return &recipe, nil
}
