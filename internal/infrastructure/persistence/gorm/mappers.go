// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"github.com/forkcast/v1/internal/domain/modelconfig"
	"github.com/forkcast/v1/internal/domain/profile"
	"github.com/forkcast/v1/internal/domain/recommendation"
	"github.com/forkcast/v1/internal/domain/taxonomy"
)

// ModelToModelConfig converts a GORM model to the domain entity.
func ModelToModelConfig(m *ModelConfigModel) *modelconfig.ModelConfig {
	return &modelconfig.ModelConfig{
		ID:        m.ID,
		Provider:  modelconfig.Provider(m.Provider),
		ModelID:   m.ModelID,
		Name:      m.Name,
		IsActive:  m.IsActive,
		IsDefault: m.IsDefault,
	}
}

// ModelConfigToModel converts the domain entity to a GORM model.
func ModelConfigToModel(c *modelconfig.ModelConfig) *ModelConfigModel {
	return &ModelConfigModel{
		ID:        c.ID,
		Provider:  string(c.Provider),
		ModelID:   c.ModelID,
		Name:      c.Name,
		IsActive:  c.IsActive,
		IsDefault: c.IsDefault,
	}
}

// ModelToPreferences converts a GORM model to the domain entity.
func ModelToPreferences(m *UserPreferencesModel) *profile.UserPreferences {
	return &profile.UserPreferences{
		UserID:           m.UserID,
		FavoriteCuisines: m.FavoriteCuisines,
		FavoriteDishes:   m.FavoriteDishes,
		DietaryStyle:     m.DietaryStyle,
		FoodRestrictions: m.FoodRestrictions,
		TimePreference:   m.TimePreference,
		SkillLevel:       m.SkillLevel,
		SpicePreference:  m.SpicePreference,
		Equipment:        m.Equipment,
		Notes:            m.Notes,
		AssignedModelID:  m.AssignedModelID,
	}
}

// PreferencesToModel converts the domain entity to a GORM model.
func PreferencesToModel(p *profile.UserPreferences) *UserPreferencesModel {
	return &UserPreferencesModel{
		UserID:           p.UserID,
		FavoriteCuisines: p.FavoriteCuisines,
		FavoriteDishes:   p.FavoriteDishes,
		DietaryStyle:     p.DietaryStyle,
		FoodRestrictions: p.FoodRestrictions,
		TimePreference:   p.TimePreference,
		SkillLevel:       p.SkillLevel,
		SpicePreference:  p.SpicePreference,
		Equipment:        p.Equipment,
		Notes:            p.Notes,
		AssignedModelID:  p.AssignedModelID,
	}
}

// ModelToCuisineProfile converts a GORM model to the domain entity.
func ModelToCuisineProfile(m *CuisineProfileModel) *taxonomy.CuisineProfile {
	return &taxonomy.CuisineProfile{
		ID:         m.ID,
		Name:       m.Name,
		Keywords:   m.Keywords,
		Style:      m.Style,
		Guardrails: m.Guardrails.Guardrails,
		IsActive:   m.IsActive,
	}
}

// CuisineProfileToModel converts the domain entity to a GORM model.
func CuisineProfileToModel(p *taxonomy.CuisineProfile) *CuisineProfileModel {
	return &CuisineProfileModel{
		ID:         p.ID,
		Name:       p.Name,
		Keywords:   p.Keywords,
		Style:      p.Style,
		Guardrails: GuardrailsField{Guardrails: p.Guardrails},
		IsActive:   p.IsActive,
	}
}

// ModelToSuggestion converts a GORM model to the domain entity.
func ModelToSuggestion(m *SuggestionModel) *recommendation.Suggestion {
	return &recommendation.Suggestion{
		ID:           m.ID,
		UserID:       m.UserID,
		Title:        m.Title,
		Type:         recommendation.SuggestionType(m.Type),
		Description:  m.Description,
		Difficulty:   m.Difficulty,
		Reason:       m.Reason,
		TimeEstimate: m.TimeEstimate,
		Cuisine:      m.Cuisine,
		Tags: recommendation.TagTriple{
			Protein: m.TagProtein,
			Carb:    m.TagCarb,
			Method:  m.TagMethod,
		},
		FullDetails: m.FullDetails.Details,
		CreatedAt:   m.CreatedAt,
	}
}

// SuggestionToModel converts the domain entity to a GORM model.
func SuggestionToModel(s *recommendation.Suggestion) *SuggestionModel {
	return &SuggestionModel{
		ID:           s.ID,
		UserID:       s.UserID,
		Title:        s.Title,
		Type:         string(s.Type),
		Description:  s.Description,
		Difficulty:   s.Difficulty,
		Reason:       s.Reason,
		TimeEstimate: s.TimeEstimate,
		Cuisine:      s.Cuisine,
		TagProtein:   s.Tags.Protein,
		TagCarb:      s.Tags.Carb,
		TagMethod:    s.Tags.Method,
		FullDetails:  DetailsField{Details: s.FullDetails},
		CreatedAt:    s.CreatedAt,
	}
}

// ModelToWeeklySet converts a GORM model to the domain entity.
func ModelToWeeklySet(m *WeeklyMealSetModel) *recommendation.WeeklyMealSet {
	return &recommendation.WeeklyMealSet{
		ID:          m.ID,
		UserID:      m.UserID,
		WeekStart:   m.WeekStart,
		Suggestions: m.Suggestions,
		ModelID:     m.ModelID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// WeeklySetToModel converts the domain entity to a GORM model.
func WeeklySetToModel(set *recommendation.WeeklyMealSet) *WeeklyMealSetModel {
	return &WeeklyMealSetModel{
		ID:          set.ID,
		UserID:      set.UserID,
		WeekStart:   set.WeekStart,
		Suggestions: set.Suggestions,
		ModelID:     set.ModelID,
	}
}

// ModelToRatingItem converts a GORM model to the domain value.
func ModelToRatingItem(m *RatingModel) profile.RatingHistoryItem {
	return profile.RatingHistoryItem{
		SuggestionTitle: m.SuggestionTitle,
		Tags: recommendation.TagTriple{
			Protein: m.TagProtein,
			Carb:    m.TagCarb,
			Method:  m.TagMethod,
		},
		Liked:    m.Liked,
		Feedback: m.Feedback,
		RatedAt:  m.RatedAt,
	}
}
