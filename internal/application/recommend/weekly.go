package recommend

import (
	"context"
	"strings"
	"time"

	"github.com/forkcast/v1/internal/domain/recommendation"
	"github.com/forkcast/v1/internal/ports/outbound"
	apperrors "github.com/forkcast/v1/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WeeklyBriefResult summarizes one weekly batch run.
type WeeklyBriefResult struct {
	Success   bool      `json:"success"`
	WeekStart time.Time `json:"date"`
	Count     int       `json:"count"`
	ModelUsed string    `json:"modelUsed"`
	Emailed   bool      `json:"emailed"`
}

// WeeklyBrief generates the five-slot dinner batch for the current week,
// upserts it keyed on (user, week start), and, when notifyEmail is set,
// emails a summary. Re-running within the same week replaces that week's
// set; it never duplicates it.
func (o *Orchestrator) WeeklyBrief(ctx context.Context, userID uuid.UUID, apiKey, notifyEmail string) (*WeeklyBriefResult, error) {
	if userID == uuid.Nil {
		return nil, apperrors.NewBadRequest("weekly brief requires a user")
	}

	cfg, err := o.selector.Resolve(ctx, userID)
	if err != nil {
		o.metrics.Requests.WithLabelValues("weekly", "config_error").Inc()
		return nil, err
	}

	prefs := o.loadPreferences(ctx, Request{UserID: userID})
	history := o.loadRatings(ctx, Request{UserID: userID})

	fragments := []string{baseSystemContract}
	if personalization := BuildPersonalizationContext(prefs, history); personalization != "" {
		fragments = append(fragments, "About this user:\n"+personalization)
	}
	constraints := o.diversity.WeeklyBatchConstraints(ctx, userID)
	fragments = append(fragments, constraints.InstructionText())

	conversation := []outbound.ChatMessage{{
		Role:    outbound.RoleUser,
		Content: "Plan my dinners for the coming week.",
	}}

	raw, used, fellBack, err := o.completeWithFallback(ctx, cfg, apiKey, conversation, strings.Join(fragments, "\n\n"))
	if err != nil {
		o.metrics.Requests.WithLabelValues("weekly", "provider_error").Inc()
		return nil, err
	}
	if fellBack {
		o.logger.Info("weekly brief served by fallback model", zap.String("model", used.ModelID))
	}

	result := o.validator.Validate(raw)
	o.metrics.Degradations.WithLabelValues(string(result.Tier)).Inc()
	if len(result.Suggestions) == 0 {
		o.metrics.Requests.WithLabelValues("weekly", "empty_batch").Inc()
		return nil, apperrors.NewProvider("weekly batch produced no structured suggestions", recommendation.ErrEmptyWeeklySet)
	}

	weekStart := recommendation.WeekStartOf(time.Now().UTC())
	set := &recommendation.WeeklyMealSet{
		ID:          uuid.New(),
		UserID:      userID,
		WeekStart:   weekStart,
		Suggestions: result.Suggestions,
		ModelID:     used.ModelID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := o.weekly.Upsert(ctx, set); err != nil {
		o.metrics.Requests.WithLabelValues("weekly", "persist_error").Inc()
		return nil, apperrors.NewPersistence("save weekly meal set", err)
	}

	o.persistSuggestions(ctx, userID, result.Suggestions)

	emailed := false
	if notifyEmail != "" && o.email != nil {
		if err := o.email.SendWeeklySummary(ctx, notifyEmail, set); err != nil {
			o.logger.Error("weekly summary email failed",
				zap.String("user_id", userID.String()), zap.Error(err))
		} else {
			emailed = true
		}
	}

	o.metrics.Requests.WithLabelValues("weekly", "ok").Inc()
	return &WeeklyBriefResult{
		Success:   true,
		WeekStart: weekStart,
		Count:     len(result.Suggestions),
		ModelUsed: used.Name,
		Emailed:   emailed,
	}, nil
}

// WeeklySet returns the stored meal set for the week containing the given
// time, or a not-found error when none exists.
func (o *Orchestrator) WeeklySet(ctx context.Context, userID uuid.UUID, at time.Time) (*recommendation.WeeklyMealSet, error) {
	set, err := o.weekly.FindByUserAndWeek(ctx, userID, recommendation.WeekStartOf(at))
	if err != nil {
		return nil, apperrors.NewNotFound("weekly meal set").WithCause(err)
	}
	return set, nil
}
