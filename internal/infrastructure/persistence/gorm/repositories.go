package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/forkcast/v1/internal/domain/modelconfig"
	"github.com/forkcast/v1/internal/domain/profile"
	"github.com/forkcast/v1/internal/domain/recommendation"
	"github.com/forkcast/v1/internal/domain/taxonomy"
	"github.com/forkcast/v1/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ModelConfigRepository implements the model config store using GORM.
type ModelConfigRepository struct {
	db *gorm.DB
}

// NewModelConfigRepository creates a new model config repository.
func NewModelConfigRepository(db *gorm.DB) outbound.ModelConfigRepository {
	return &ModelConfigRepository{db: db}
}

// FindByID finds a model config by ID.
func (r *ModelConfigRepository) FindByID(ctx context.Context, id uuid.UUID) (*modelconfig.ModelConfig, error) {
	var model ModelConfigModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}

	return ModelToModelConfig(&model), nil
}

// FindDefault finds the unique active default model config.
func (r *ModelConfigRepository) FindDefault(ctx context.Context) (*modelconfig.ModelConfig, error) {
	var model ModelConfigModel

	result := r.db.WithContext(ctx).
		Where("is_default = ? AND is_active = ?", true, true).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}

	return ModelToModelConfig(&model), nil
}

// Create inserts a model config.
func (r *ModelConfigRepository) Create(ctx context.Context, cfg *modelconfig.ModelConfig) error {
	return r.db.WithContext(ctx).Create(ModelConfigToModel(cfg)).Error
}

// PreferenceRepository implements the user preference store using GORM.
type PreferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository creates a new preference repository.
func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// FindByUserID finds a user's stored preferences.
func (r *PreferenceRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*profile.UserPreferences, error) {
	var model UserPreferencesModel

	result := r.db.WithContext(ctx).First(&model, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}

	return ModelToPreferences(&model), nil
}

// Save writes a user's preferences, replacing any existing row.
func (r *PreferenceRepository) Save(ctx context.Context, prefs *profile.UserPreferences) error {
	model := PreferencesToModel(prefs)

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// RatingRepository implements the rating history store using GORM.
type RatingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a new rating repository.
func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// FindByUserID returns a user's rating history, most recent first.
func (r *RatingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]profile.RatingHistoryItem, error) {
	var models []RatingModel

	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("rated_at DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	items := make([]profile.RatingHistoryItem, len(models))
	for i := range models {
		items[i] = ModelToRatingItem(&models[i])
	}
	return items, nil
}

// Create records one rating.
func (r *RatingRepository) Create(ctx context.Context, userID uuid.UUID, item profile.RatingHistoryItem) error {
	model := &RatingModel{
		UserID:          userID,
		SuggestionTitle: item.SuggestionTitle,
		TagProtein:      item.Tags.Protein,
		TagCarb:         item.Tags.Carb,
		TagMethod:       item.Tags.Method,
		Liked:           item.Liked,
		Feedback:        item.Feedback,
		RatedAt:         item.RatedAt,
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// CuisineRepository implements the cuisine taxonomy store using GORM.
type CuisineRepository struct {
	db *gorm.DB
}

// NewCuisineRepository creates a new cuisine repository.
func NewCuisineRepository(db *gorm.DB) *CuisineRepository {
	return &CuisineRepository{db: db}
}

// ListActive returns every active cuisine profile, ordered by name.
func (r *CuisineRepository) ListActive(ctx context.Context) ([]*taxonomy.CuisineProfile, error) {
	var models []CuisineProfileModel

	result := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	profiles := make([]*taxonomy.CuisineProfile, len(models))
	for i := range models {
		profiles[i] = ModelToCuisineProfile(&models[i])
	}
	return profiles, nil
}

// Create inserts a cuisine profile.
func (r *CuisineRepository) Create(ctx context.Context, p *taxonomy.CuisineProfile) error {
	return r.db.WithContext(ctx).Create(CuisineProfileToModel(p)).Error
}

// SuggestionRepository implements the suggestion history store using GORM.
type SuggestionRepository struct {
	db *gorm.DB
}

// NewSuggestionRepository creates a new suggestion repository.
func NewSuggestionRepository(db *gorm.DB) outbound.SuggestionRepository {
	return &SuggestionRepository{db: db}
}

// Create inserts one suggestion.
func (r *SuggestionRepository) Create(ctx context.Context, s *recommendation.Suggestion) error {
	return r.db.WithContext(ctx).Create(SuggestionToModel(s)).Error
}

// BulkCreate inserts a batch of suggestions in one statement.
func (r *SuggestionRepository) BulkCreate(ctx context.Context, suggestions []*recommendation.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}
	models := make([]*SuggestionModel, len(suggestions))
	for i, s := range suggestions {
		models[i] = SuggestionToModel(s)
	}
	return r.db.WithContext(ctx).Create(&models).Error
}

// FindRecentByUser returns a user's suggestions created at or after since,
// newest first, capped at limit.
func (r *SuggestionRepository) FindRecentByUser(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]*recommendation.Suggestion, error) {
	var models []SuggestionModel

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	suggestions := make([]*recommendation.Suggestion, len(models))
	for i := range models {
		suggestions[i] = ModelToSuggestion(&models[i])
	}
	return suggestions, nil
}

// WeeklyPlanRepository implements the weekly meal set store using GORM.
type WeeklyPlanRepository struct {
	db *gorm.DB
}

// NewWeeklyPlanRepository creates a new weekly plan repository.
func NewWeeklyPlanRepository(db *gorm.DB) outbound.WeeklyPlanRepository {
	return &WeeklyPlanRepository{db: db}
}

// Upsert writes the set as a single conditional insert: on a (user_id,
// week_start) conflict the existing row's content is replaced in place.
// Concurrent triggers for the same week therefore converge on one row.
func (r *WeeklyPlanRepository) Upsert(ctx context.Context, set *recommendation.WeeklyMealSet) error {
	model := WeeklySetToModel(set)

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "week_start"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"suggestions", "model_id", "updated_at",
			}),
		}).
		Create(model).Error
}

// FindByUserAndWeek returns the set stored for the given week start.
func (r *WeeklyPlanRepository) FindByUserAndWeek(ctx context.Context, userID uuid.UUID, weekStart time.Time) (*recommendation.WeeklyMealSet, error) {
	var model WeeklyMealSetModel

	result := r.db.WithContext(ctx).
		First(&model, "user_id = ? AND week_start = ?", userID, weekStart)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}

	return ModelToWeeklySet(&model), nil
}

// FindRecentTitles returns every suggestion title from sets created at or
// after since, newest set first.
func (r *WeeklyPlanRepository) FindRecentTitles(ctx context.Context, userID uuid.UUID, since time.Time) ([]string, error) {
	var models []WeeklyMealSetModel

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	var titles []string
	for i := range models {
		for _, s := range models[i].Suggestions {
			titles = append(titles, s.Title)
		}
	}
	return titles, nil
}
