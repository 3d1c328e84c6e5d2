// Package gorm provides GORM model definitions and repository
// implementations for the orchestration engine's stores.
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/forkcast/v1/internal/domain/recommendation"
	"github.com/forkcast/v1/internal/domain/taxonomy"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ModelConfigModel represents the GORM model for administrator-managed LLM
// model configurations.
type ModelConfigModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	Provider  string    `gorm:"type:varchar(50);not null;index"`
	ModelID   string    `gorm:"type:varchar(100);not null"`
	Name      string    `gorm:"type:varchar(255);not null"`
	IsActive  bool      `gorm:"default:true;index"`
	IsDefault bool      `gorm:"default:false;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserPreferencesModel represents the GORM model for per-user structured
// preferences. One row per user.
type UserPreferencesModel struct {
	UserID           uuid.UUID   `gorm:"type:char(36);primaryKey"`
	FavoriteCuisines StringSlice `gorm:"type:json"`
	FavoriteDishes   StringSlice `gorm:"type:json"`
	DietaryStyle     string      `gorm:"type:varchar(100)"`
	FoodRestrictions StringSlice `gorm:"type:json"`
	TimePreference   string      `gorm:"type:varchar(100)"`
	SkillLevel       string      `gorm:"type:varchar(50)"`
	SpicePreference  string      `gorm:"type:varchar(50)"`
	Equipment        StringSlice `gorm:"type:json"`
	Notes            string      `gorm:"type:text"`
	AssignedModelID  *uuid.UUID  `gorm:"type:char(36)"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CuisineProfileModel represents the GORM model for the cuisine taxonomy.
type CuisineProfileModel struct {
	ID         uuid.UUID       `gorm:"type:char(36);primaryKey"`
	Name       string          `gorm:"type:varchar(100);uniqueIndex;not null"`
	Keywords   StringSlice     `gorm:"type:json"`
	Style      string          `gorm:"type:text"`
	Guardrails GuardrailsField `gorm:"type:json"`
	IsActive   bool            `gorm:"default:true;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SuggestionModel represents the GORM model for emitted suggestions. Rows are
// immutable once written; later requests read them back as diversity input.
type SuggestionModel struct {
	ID           uuid.UUID    `gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID    `gorm:"type:char(36);not null;index:idx_suggestions_user_created"`
	Title        string       `gorm:"type:varchar(255);not null"`
	Type         string       `gorm:"type:varchar(20);not null"`
	Description  string       `gorm:"type:text"`
	Difficulty   string       `gorm:"type:varchar(20)"`
	Reason       string       `gorm:"type:text"`
	TimeEstimate string       `gorm:"type:varchar(100)"`
	Cuisine      string       `gorm:"type:varchar(100);index"`
	TagProtein   string       `gorm:"type:varchar(100);index"`
	TagCarb      string       `gorm:"type:varchar(100);index"`
	TagMethod    string       `gorm:"type:varchar(100)"`
	FullDetails  DetailsField `gorm:"type:json"`
	CreatedAt    time.Time    `gorm:"index:idx_suggestions_user_created"`
}

// WeeklyMealSetModel represents the GORM model for weekly meal sets. The
// unique index on (user_id, week_start) backs the upsert-on-conflict write.
type WeeklyMealSetModel struct {
	ID          uuid.UUID      `gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID      `gorm:"type:char(36);not null;uniqueIndex:idx_weekly_user_week"`
	WeekStart   time.Time      `gorm:"not null;uniqueIndex:idx_weekly_user_week"`
	Suggestions SuggestionList `gorm:"type:json;not null"`
	ModelID     string         `gorm:"type:varchar(100)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RatingModel represents the GORM model for suggestion ratings.
type RatingModel struct {
	ID              uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID          uuid.UUID `gorm:"type:char(36);not null;index:idx_ratings_user_rated"`
	SuggestionTitle string    `gorm:"type:varchar(255);not null"`
	TagProtein      string    `gorm:"type:varchar(100)"`
	TagCarb         string    `gorm:"type:varchar(100)"`
	TagMethod       string    `gorm:"type:varchar(100)"`
	Liked           bool      `gorm:"not null"`
	Feedback        string    `gorm:"type:text"`
	RatedAt         time.Time `gorm:"index:idx_ratings_user_rated"`
	CreatedAt       time.Time
}

// StringSlice custom type for handling string slices in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

// GuardrailsField custom type for storing cuisine guardrails as JSON
type GuardrailsField struct {
	Guardrails *taxonomy.Guardrails
}

// Scan implements the sql.Scanner interface
func (g *GuardrailsField) Scan(value interface{}) error {
	if value == nil {
		g.Guardrails = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into GuardrailsField", value)
	}
	if len(data) == 0 || string(data) == "null" {
		g.Guardrails = nil
		return nil
	}
	return json.Unmarshal(data, &g.Guardrails)
}

// Value implements the driver.Valuer interface
func (g GuardrailsField) Value() (driver.Value, error) {
	if g.Guardrails == nil {
		return "null", nil
	}
	return json.Marshal(g.Guardrails)
}

// DetailsField custom type for storing expanded recipe details as JSON
type DetailsField struct {
	Details *recommendation.FullDetails
}

// Scan implements the sql.Scanner interface
func (d *DetailsField) Scan(value interface{}) error {
	if value == nil {
		d.Details = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into DetailsField", value)
	}
	if len(data) == 0 || string(data) == "null" {
		d.Details = nil
		return nil
	}
	return json.Unmarshal(data, &d.Details)
}

// Value implements the driver.Valuer interface
func (d DetailsField) Value() (driver.Value, error) {
	if d.Details == nil {
		return "null", nil
	}
	return json.Marshal(d.Details)
}

// SuggestionList custom type for storing a weekly set's suggestions as JSON
type SuggestionList []recommendation.Suggestion

// Scan implements the sql.Scanner interface
func (l *SuggestionList) Scan(value interface{}) error {
	if value == nil {
		*l = SuggestionList{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into SuggestionList", value)
	}
}

// Value implements the driver.Valuer interface
func (l SuggestionList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

// BeforeCreate hook for ModelConfigModel
func (m *ModelConfigModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for CuisineProfileModel
func (c *CuisineProfileModel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for SuggestionModel
func (s *SuggestionModel) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for WeeklyMealSetModel
func (w *WeeklyMealSetModel) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for RatingModel
func (r *RatingModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName methods for custom table names
func (ModelConfigModel) TableName() string {
	return "model_configs"
}

func (UserPreferencesModel) TableName() string {
	return "user_preferences"
}

func (CuisineProfileModel) TableName() string {
	return "cuisine_profiles"
}

func (SuggestionModel) TableName() string {
	return "suggestions"
}

func (WeeklyMealSetModel) TableName() string {
	return "weekly_meal_sets"
}

func (RatingModel) TableName() string {
	return "ratings"
}

// AutoMigrate creates or updates the engine's tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&ModelConfigModel{},
		&UserPreferencesModel{},
		&CuisineProfileModel{},
		&SuggestionModel{},
		&WeeklyMealSetModel{},
		&RatingModel{},
	)
}
