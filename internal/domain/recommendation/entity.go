// Package recommendation contains the core domain types for emitted
// recommendations and weekly meal planning.
package recommendation

import (
	"time"

	"github.com/google/uuid"
)

// SuggestionType distinguishes food from drink recommendations.
type SuggestionType string

const (
	TypeRecipe   SuggestionType = "recipe"
	TypeCocktail SuggestionType = "cocktail"
)

// IsValid reports whether the type is one of the supported kinds.
func (t SuggestionType) IsValid() bool {
	return t == TypeRecipe || t == TypeCocktail
}

// TagTriple is the fixed categorical tag set attached to every suggestion.
// Protein and carb feed the diversity filter's rotation counters; method
// feeds the weekly cooking-method mix.
type TagTriple struct {
	Protein string `json:"protein"`
	Carb    string `json:"carb"`
	Method  string `json:"method"`
}

// FullDetails holds the expanded recipe body. It is populated only when the
// caller explicitly requests details, never during normal recommendation.
type FullDetails struct {
	Ingredients    []string `json:"ingredients"`
	Instructions   []string `json:"instructions"`
	NutritionNotes string   `json:"nutrition_notes,omitempty"`
}

// Suggestion is one emitted recommendation. Immutable once persisted; later
// requests read it back as diversity-filter input.
type Suggestion struct {
	ID           uuid.UUID      `json:"id"`
	UserID       uuid.UUID      `json:"-"`
	Title        string         `json:"title"`
	Type         SuggestionType `json:"type"`
	Description  string         `json:"description"`
	Difficulty   string         `json:"difficulty"`
	Reason       string         `json:"reason_for_recommendation"`
	TimeEstimate string         `json:"time_estimate,omitempty"`
	Cuisine      string         `json:"cuisine,omitempty"`
	Tags         TagTriple      `json:"tags"`
	FullDetails  *FullDetails   `json:"full_details,omitempty"`
	CreatedAt    time.Time      `json:"-"`
}

// WeeklyMealSet is one batch of archetype-constrained suggestions keyed by
// user and week-start date. At most one set exists per (user, week); writers
// must upsert on conflict.
type WeeklyMealSet struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	WeekStart   time.Time
	Suggestions []Suggestion
	ModelID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WeekStartOf truncates a timestamp to the Monday of its week in UTC, the
// canonical key for weekly meal sets.
func WeekStartOf(t time.Time) time.Time {
	t = t.UTC()
	day := t.Truncate(24 * time.Hour)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}
