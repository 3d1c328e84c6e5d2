// Package outbound defines the interfaces for outbound ports (secondary/driven
// adapters). The orchestration engine holds no durable state of its own; all
// cross-request memory goes through these interfaces.
package outbound

import (
	"context"
	"time"

	"github.com/forkcast/v1/internal/domain/modelconfig"
	"github.com/forkcast/v1/internal/domain/profile"
	"github.com/forkcast/v1/internal/domain/recommendation"
	"github.com/forkcast/v1/internal/domain/taxonomy"
	"github.com/google/uuid"
)

// ModelConfigRepository reads administrator-managed model configs.
type ModelConfigRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*modelconfig.ModelConfig, error)
	// FindDefault returns the unique active default config, or an error when
	// none exists.
	FindDefault(ctx context.Context) (*modelconfig.ModelConfig, error)
}

// PreferenceRepository reads per-user structured preferences.
type PreferenceRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*profile.UserPreferences, error)
}

// RatingRepository reads a user's recommendation rating history, most recent
// first.
type RatingRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]profile.RatingHistoryItem, error)
}

// CuisineRepository reads the cuisine taxonomy.
type CuisineRepository interface {
	ListActive(ctx context.Context) ([]*taxonomy.CuisineProfile, error)
}

// SuggestionRepository persists emitted suggestions and serves them back as
// diversity-filter input.
type SuggestionRepository interface {
	Create(ctx context.Context, s *recommendation.Suggestion) error
	BulkCreate(ctx context.Context, suggestions []*recommendation.Suggestion) error
	// FindRecentByUser returns suggestions created at or after since, newest
	// first, capped at limit.
	FindRecentByUser(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]*recommendation.Suggestion, error)
}

// WeeklyPlanRepository persists weekly meal sets with upsert-on-conflict
// semantics on (user, week start).
type WeeklyPlanRepository interface {
	// Upsert writes the set as a single conditional write; a concurrent
	// trigger for the same (user, week) must never produce a second row.
	Upsert(ctx context.Context, set *recommendation.WeeklyMealSet) error
	FindByUserAndWeek(ctx context.Context, userID uuid.UUID, weekStart time.Time) (*recommendation.WeeklyMealSet, error)
	// FindRecentTitles returns recipe titles from sets created at or after
	// since, for exclusion-list building.
	FindRecentTitles(ctx context.Context, userID uuid.UUID, since time.Time) ([]string, error)
}

// EmailService delivers the optional weekly summary notification. Delivery
// failure is never fatal to the request that triggered it.
type EmailService interface {
	SendWeeklySummary(ctx context.Context, to string, set *recommendation.WeeklyMealSet) error
}
