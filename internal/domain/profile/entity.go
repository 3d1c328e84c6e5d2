// Package profile holds the per-user state the orchestration engine reads:
// structured preferences and past recommendation ratings. Both are owned and
// mutated elsewhere; the engine never writes them.
package profile

import (
	"time"

	"github.com/forkcast/v1/internal/domain/recommendation"
	"github.com/google/uuid"
)

// UserPreferences is the structured per-user profile. FoodRestrictions is
// authoritative: no other field may override it.
type UserPreferences struct {
	UserID           uuid.UUID  `json:"-"`
	FavoriteCuisines []string   `json:"favorite_cuisines,omitempty"`
	FavoriteDishes   []string   `json:"favorite_dishes,omitempty"`
	DietaryStyle     string     `json:"dietary_style,omitempty"`
	FoodRestrictions []string   `json:"food_restrictions,omitempty"`
	TimePreference   string     `json:"time_preference,omitempty"`
	SkillLevel       string     `json:"skill_level,omitempty"`
	SpicePreference  string     `json:"spice_preference,omitempty"`
	Equipment        []string   `json:"equipment,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	AssignedModelID  *uuid.UUID `json:"assigned_model_id,omitempty"`
}

// RatingHistoryItem is a past recommendation plus the user's verdict. Read
// only input context for personalization.
type RatingHistoryItem struct {
	SuggestionTitle string                   `json:"suggestion_title"`
	Tags            recommendation.TagTriple `json:"tags"`
	Liked           bool                     `json:"liked"`
	Feedback        string                   `json:"feedback,omitempty"`
	RatedAt         time.Time                `json:"rated_at"`
}
