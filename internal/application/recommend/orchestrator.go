// Package recommend implements the recommendation orchestration engine: it
// resolves a model, assembles the personalization/safety/diversity context,
// calls the provider with single-retry fallback, and validates the output
// with graceful degradation.
package recommend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/forkcast/v1/internal/domain/modelconfig"
	"github.com/forkcast/v1/internal/domain/profile"
	"github.com/forkcast/v1/internal/domain/recommendation"
	"github.com/forkcast/v1/internal/infrastructure/ai"
	"github.com/forkcast/v1/internal/ports/outbound"
	apperrors "github.com/forkcast/v1/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const ratingHistoryLimit = 20

// Orchestrator coordinates one recommendation request end to end. It holds
// no cross-request state; every instance is safe for concurrent use.
type Orchestrator struct {
	selector    *ModelSelector
	registry    *ai.Registry
	validator   *OutputValidator
	diversity   *DiversityFilter
	cuisines    outbound.CuisineRepository
	prefsRepo   outbound.PreferenceRepository
	ratings     outbound.RatingRepository
	suggestions outbound.SuggestionRepository
	weekly      outbound.WeeklyPlanRepository
	email       outbound.EmailService
	cache       outbound.CompletionCache
	cacheTTL    time.Duration
	metrics     *Metrics
	logger      *zap.Logger
}

// OrchestratorDeps bundles the collaborators for construction.
type OrchestratorDeps struct {
	Selector    *ModelSelector
	Registry    *ai.Registry
	Cuisines    outbound.CuisineRepository
	Preferences outbound.PreferenceRepository
	Ratings     outbound.RatingRepository
	Suggestions outbound.SuggestionRepository
	Weekly      outbound.WeeklyPlanRepository
	Email       outbound.EmailService
	Cache       outbound.CompletionCache
	CacheTTL    time.Duration
	Metrics     *Metrics
	Logger      *zap.Logger
}

// NewOrchestrator creates the recommendation orchestrator.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	logger := deps.Logger.Named("orchestrator")
	metrics := deps.Metrics
	if metrics == nil {
		metrics = NewNopMetrics()
	}
	return &Orchestrator{
		selector:    deps.Selector,
		registry:    deps.Registry,
		validator:   NewOutputValidator(logger.Named("validator")),
		diversity:   NewDiversityFilter(deps.Suggestions, deps.Weekly, logger.Named("diversity")),
		cuisines:    deps.Cuisines,
		prefsRepo:   deps.Preferences,
		ratings:     deps.Ratings,
		suggestions: deps.Suggestions,
		weekly:      deps.Weekly,
		email:       deps.Email,
		cache:       deps.Cache,
		cacheTTL:    deps.CacheTTL,
		metrics:     metrics,
		logger:      logger,
	}
}

// Request is the inbound recommendation contract. Preferences and rating
// history supplied on the request take precedence over stored state.
type Request struct {
	Messages      []outbound.ChatMessage
	UserID        uuid.UUID
	APIKey        string
	Preferences   *profile.UserPreferences
	RatingHistory []profile.RatingHistoryItem
	ForceCuisine  string
	WantDetails   bool
}

// Result is the structured response plus provenance metadata: which model
// served the request, whether fallback occurred, and detection telemetry.
type Result struct {
	Data         *StructuredResult  `json:"data"`
	ModelUsed    string             `json:"modelUsed"`
	ModelID      string             `json:"modelId"`
	Provider     string             `json:"provider"`
	UsedFallback bool               `json:"usedFallback"`
	Cuisine      *CuisineDetection  `json:"cuisineMetadata,omitempty"`
	Diversity    RecencyConstraints `json:"-"`
}

// Recommend runs the full orchestration flow for a chat/recommend request.
func (o *Orchestrator) Recommend(ctx context.Context, req Request) (*Result, error) {
	cfg, err := o.selector.Resolve(ctx, req.UserID)
	if err != nil {
		o.metrics.Requests.WithLabelValues("chat", "config_error").Inc()
		return nil, err
	}

	prefs := o.loadPreferences(ctx, req)
	history := o.loadRatings(ctx, req)

	system, detection, constraints := o.buildSystemInstructions(ctx, req, prefs, history)

	raw, used, fellBack, err := o.completeWithFallback(ctx, cfg, req.APIKey, req.Messages, system)
	if err != nil {
		o.metrics.Requests.WithLabelValues("chat", "provider_error").Inc()
		return nil, err
	}

	result := o.validator.Validate(raw)
	o.metrics.Degradations.WithLabelValues(string(result.Tier)).Inc()
	o.metrics.Requests.WithLabelValues("chat", "ok").Inc()

	o.persistSuggestions(ctx, req.UserID, result.Suggestions)

	return &Result{
		Data:         result,
		ModelUsed:    used.Name,
		ModelID:      used.ModelID,
		Provider:     string(used.Provider),
		UsedFallback: fellBack,
		Cuisine:      detection,
		Diversity:    constraints,
	}, nil
}

// loadPreferences prefers request-supplied preferences over stored ones. A
// missing profile row is not an error; recommendations degrade to generic.
func (o *Orchestrator) loadPreferences(ctx context.Context, req Request) *profile.UserPreferences {
	if req.Preferences != nil {
		return req.Preferences
	}
	if req.UserID == uuid.Nil {
		return nil
	}
	prefs, err := o.prefsRepo.FindByUserID(ctx, req.UserID)
	if err != nil {
		o.logger.Debug("no stored preferences", zap.String("user_id", req.UserID.String()), zap.Error(err))
		return nil
	}
	return prefs
}

func (o *Orchestrator) loadRatings(ctx context.Context, req Request) []profile.RatingHistoryItem {
	if req.RatingHistory != nil {
		return req.RatingHistory
	}
	if req.UserID == uuid.Nil {
		return nil
	}
	history, err := o.ratings.FindByUserID(ctx, req.UserID, ratingHistoryLimit)
	if err != nil {
		o.logger.Debug("no rating history", zap.String("user_id", req.UserID.String()), zap.Error(err))
		return nil
	}
	return history
}

// buildSystemInstructions assembles the ordered context fragments: base
// contract, personalization (safety block last within it), cuisine
// guardrails when forced, diversity constraints. Each fragment is a pure
// function of its inputs; they are concatenated exactly once here.
func (o *Orchestrator) buildSystemInstructions(ctx context.Context, req Request, prefs *profile.UserPreferences, history []profile.RatingHistoryItem) (string, *CuisineDetection, RecencyConstraints) {
	contract := baseSystemContract
	if req.WantDetails {
		contract = detailsContract
	}

	fragments := []string{contract}

	if personalization := BuildPersonalizationContext(prefs, history); personalization != "" {
		fragments = append(fragments, "About this user:\n"+personalization)
	}

	profiles, err := o.cuisines.ListActive(ctx)
	if err != nil {
		o.logger.Warn("cuisine taxonomy unavailable", zap.Error(err))
	}

	var favorites []string
	if prefs != nil {
		favorites = prefs.FavoriteCuisines
	}

	var detection *CuisineDetection
	if req.ForceCuisine != "" {
		for _, p := range profiles {
			if p.IsActive && strings.EqualFold(p.Name, req.ForceCuisine) {
				detection = &CuisineDetection{
					Cuisine:    p.Name,
					Confidence: ConfidenceHigh,
					Rationale:  "cuisine forced by caller",
					Profile:    p,
				}
				break
			}
		}
		if detection != nil {
			fragments = append(fragments, GuardrailText(detection.Profile))
		}
	} else {
		// Advisory mode: detection is telemetry only; guardrail text is not
		// injected unless the caller forces a cuisine.
		detection = DetectCuisine(profiles, req.Messages, favorites)
	}

	constraints := o.diversity.RecentConstraints(ctx, req.UserID)
	if text := constraints.InstructionText(); text != "" {
		fragments = append(fragments, text)
	}

	return strings.Join(fragments, "\n\n"), detection, constraints
}

// completeWithFallback calls the resolved model and, when the call fails and
// the model is not already the system default, retries exactly once against
// the default. No backoff loop: this is a user-facing request.
func (o *Orchestrator) completeWithFallback(ctx context.Context, primary *modelconfig.ModelConfig, requestKey string, conversation []outbound.ChatMessage, system string) (string, *modelconfig.ModelConfig, bool, error) {
	raw, err := o.completeOnce(ctx, primary, requestKey, conversation, system)
	if err == nil {
		return raw, primary, false, nil
	}
	if apperrors.Is(err, apperrors.CodeConfig) {
		return "", nil, false, err
	}

	o.logger.Warn("primary model call failed",
		zap.String("provider", string(primary.Provider)),
		zap.String("model", primary.ModelID),
		zap.Error(err))

	if primary.IsDefault {
		return "", nil, false, apperrors.NewProvider("default model call failed", err)
	}

	fallback, derr := o.selector.Default(ctx)
	if derr != nil || fallback.ID == primary.ID {
		return "", nil, false, apperrors.NewProvider("primary model call failed and no distinct default exists", err)
	}

	o.metrics.Fallbacks.Inc()
	raw, ferr := o.completeOnce(ctx, fallback, requestKey, conversation, system)
	if ferr != nil {
		if apperrors.Is(ferr, apperrors.CodeConfig) {
			return "", nil, false, ferr
		}
		return "", nil, false, apperrors.NewProvider("primary and fallback model calls both failed", ferr)
	}
	return raw, fallback, true, nil
}

func (o *Orchestrator) completeOnce(ctx context.Context, cfg *modelconfig.ModelConfig, requestKey string, conversation []outbound.ChatMessage, system string) (string, error) {
	client, ok := o.registry.For(cfg.Provider)
	if !ok {
		return "", apperrors.NewConfig("no client registered for provider " + string(cfg.Provider))
	}
	apiKey, err := o.selector.APIKey(cfg, requestKey)
	if err != nil {
		return "", err
	}

	cacheKey := completionCacheKey(cfg, conversation, system)
	if o.cache != nil {
		if cached, hit, cerr := o.cache.Get(ctx, cacheKey); cerr == nil && hit {
			o.logger.Debug("completion cache hit", zap.String("provider", string(cfg.Provider)))
			return cached, nil
		}
	}

	start := time.Now()
	raw, err := client.Complete(ctx, cfg.ModelID, apiKey, conversation, system)
	o.metrics.ProviderLatency.WithLabelValues(string(cfg.Provider)).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}

	if o.cache != nil {
		if cerr := o.cache.Set(ctx, cacheKey, raw, o.cacheTTL); cerr != nil {
			o.logger.Warn("completion cache write failed", zap.Error(cerr))
		}
	}
	return raw, nil
}

// persistSuggestions saves emitted suggestions as history. Failures are
// logged and swallowed; a request that produced a valid user-facing result
// never fails on history persistence.
func (o *Orchestrator) persistSuggestions(ctx context.Context, userID uuid.UUID, suggestions []recommendation.Suggestion) {
	if userID == uuid.Nil || len(suggestions) == 0 {
		return
	}
	now := time.Now().UTC()
	records := make([]*recommendation.Suggestion, 0, len(suggestions))
	for i := range suggestions {
		s := suggestions[i]
		s.ID = uuid.New()
		s.UserID = userID
		s.CreatedAt = now
		records = append(records, &s)
	}
	if err := o.suggestions.BulkCreate(ctx, records); err != nil {
		perr := apperrors.NewPersistence("save suggestion history", err)
		o.logger.Error("suggestion history persistence failed",
			zap.String("user_id", userID.String()),
			zap.Int("count", len(records)),
			zap.Error(perr))
	}
}

// completionCacheKey hashes everything that determines a completion.
func completionCacheKey(cfg *modelconfig.ModelConfig, conversation []outbound.ChatMessage, system string) string {
	h := sha256.New()
	h.Write([]byte(cfg.Provider))
	h.Write([]byte{0})
	h.Write([]byte(cfg.ModelID))
	h.Write([]byte{0})
	h.Write([]byte(system))
	for _, m := range conversation {
		h.Write([]byte{0})
		h.Write([]byte(m.Role))
		h.Write([]byte{0})
		h.Write([]byte(m.Content))
	}
	return "completion:" + hex.EncodeToString(h.Sum(nil))
}
