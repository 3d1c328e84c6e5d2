// Package handlers provides the HTTP handlers for the recommendation API.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/forkcast/v1/internal/application/recommend"
	"github.com/forkcast/v1/internal/domain/profile"
	"github.com/forkcast/v1/internal/ports/outbound"
	apperrors "github.com/forkcast/v1/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecommendHandlers serves the recommendation endpoints.
type RecommendHandlers struct {
	orchestrator *recommend.Orchestrator
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewRecommendHandlers creates the recommendation API handlers.
func NewRecommendHandlers(orchestrator *recommend.Orchestrator, logger *zap.Logger) *RecommendHandlers {
	return &RecommendHandlers{
		orchestrator: orchestrator,
		validate:     validator.New(),
		logger:       logger,
	}
}

// messageDTO is one conversation turn on the wire.
type messageDTO struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

// recommendRequest is the inbound contract for POST /api/v1/recommend. One
// endpoint serves chat recommendations, detail expansion, recipe rescaling,
// and the weekly brief trigger, switched by action/weeklyBrief.
type recommendRequest struct {
	Messages       []messageDTO                `json:"messages" validate:"omitempty,dive"`
	APIKey         string                      `json:"apiKey,omitempty"`
	UserID         string                      `json:"userId,omitempty"`
	Preferences    *profile.UserPreferences    `json:"userPreferences,omitempty"`
	RatingHistory  []profile.RatingHistoryItem `json:"ratingHistory,omitempty"`
	ForceCuisine   string                      `json:"forceCuisine,omitempty"`
	Action         string                      `json:"action,omitempty" validate:"omitempty,oneof=recommend details rescale"`
	WeeklyBrief    bool                        `json:"weeklyBrief,omitempty"`
	IsAdmin        bool                        `json:"isAdmin,omitempty"`
	NotifyEmail    string                      `json:"notifyEmail,omitempty" validate:"omitempty,email"`
	Recipe         *rescaleRecipeDTO           `json:"recipe,omitempty"`
	TargetServings int                         `json:"targetServings,omitempty"`
}

type rescaleRecipeDTO struct {
	Title string `json:"title"`
	Text  string `json:"text" validate:"required"`
}

// weeklyBriefRequest is the inbound contract for POST /api/v1/weekly-brief.
type weeklyBriefRequest struct {
	UserID      string `json:"userId" validate:"required"`
	APIKey      string `json:"apiKey,omitempty"`
	IsAdmin     bool   `json:"isAdmin,omitempty"`
	NotifyEmail string `json:"notifyEmail,omitempty" validate:"omitempty,email"`
}

// Recommend handles POST /api/v1/recommend.
func (h *RecommendHandlers) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.NewBadRequest("Invalid JSON payload"))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.writeError(w, apperrors.New(apperrors.CodeValidationFailed, "Request validation failed", err.Error()))
		return
	}

	userID, err := parseUserID(req.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	switch {
	case req.WeeklyBrief:
		h.runWeeklyBrief(w, r, userID, req.APIKey, req.NotifyEmail, req.IsAdmin)
	case req.Action == "rescale":
		h.runRescale(w, r, userID, &req)
	default:
		h.runRecommend(w, r, userID, &req)
	}
}

func (h *RecommendHandlers) runRecommend(w http.ResponseWriter, r *http.Request, userID uuid.UUID, req *recommendRequest) {
	if len(req.Messages) == 0 {
		h.writeError(w, apperrors.NewBadRequest("messages are required"))
		return
	}

	result, err := h.orchestrator.Recommend(r.Context(), recommend.Request{
		Messages:      toChatMessages(req.Messages),
		UserID:        userID,
		APIKey:        req.APIKey,
		Preferences:   req.Preferences,
		RatingHistory: req.RatingHistory,
		ForceCuisine:  req.ForceCuisine,
		WantDetails:   req.Action == "details",
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *RecommendHandlers) runRescale(w http.ResponseWriter, r *http.Request, userID uuid.UUID, req *recommendRequest) {
	if req.Recipe == nil {
		h.writeError(w, apperrors.NewBadRequest("rescale requires a recipe"))
		return
	}

	recipe, err := h.orchestrator.Rescale(r.Context(), recommend.RescaleRequest{
		UserID:     userID,
		APIKey:     req.APIKey,
		Title:      req.Recipe.Title,
		RecipeText: req.Recipe.Text,
		Servings:   req.TargetServings,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, recipe)
}

// WeeklyBrief handles POST /api/v1/weekly-brief, the scheduler-facing
// trigger for the weekly batch.
func (h *RecommendHandlers) WeeklyBrief(w http.ResponseWriter, r *http.Request) {
	var req weeklyBriefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.NewBadRequest("Invalid JSON payload"))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.writeError(w, apperrors.New(apperrors.CodeValidationFailed, "Request validation failed", err.Error()))
		return
	}

	userID, err := parseUserID(req.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.runWeeklyBrief(w, r, userID, req.APIKey, req.NotifyEmail, req.IsAdmin)
}

// runWeeklyBrief generates a weekly batch on behalf of a user. Batch
// generation is an administrative operation, triggered by a scheduler or an
// admin console, never by end-user traffic.
func (h *RecommendHandlers) runWeeklyBrief(w http.ResponseWriter, r *http.Request, userID uuid.UUID, apiKey, notifyEmail string, isAdmin bool) {
	if !isAdmin {
		h.writeError(w, apperrors.NewForbidden("weekly brief generation requires administrator access"))
		return
	}

	result, err := h.orchestrator.WeeklyBrief(r.Context(), userID, apiKey, notifyEmail)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": result.Success,
		"date":    result.WeekStart.Format("2006-01-02"),
		"count":   result.Count,
	})
}

// WeeklySet handles GET /api/v1/weekly-brief/{userID}, returning the stored
// set for the current week.
func (h *RecommendHandlers) WeeklySet(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if userID == uuid.Nil {
		h.writeError(w, apperrors.NewBadRequest("userId is required"))
		return
	}

	set, err := h.orchestrator.WeeklySet(r.Context(), userID, time.Now().UTC())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, set)
}

func parseUserID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewBadRequest("userId must be a valid UUID")
	}
	return id, nil
}

func toChatMessages(dtos []messageDTO) []outbound.ChatMessage {
	messages := make([]outbound.ChatMessage, len(dtos))
	for i, m := range dtos {
		messages[i] = outbound.ChatMessage{Role: m.Role, Content: m.Content}
	}
	return messages
}

// writeJSON writes a JSON response with the given status.
func (h *RecommendHandlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError maps an error onto the {error} body contract. AppError status
// codes are honored; anything else is an opaque 500.
func (h *RecommendHandlers) writeError(w http.ResponseWriter, err error) {
	appErr := apperrors.Wrap(err, "An unexpected error occurred")

	status := appErr.StatusCode()
	message := appErr.Message
	if appErr.Details != "" {
		message = message + ": " + appErr.Details
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.Error(err),
			zap.String("code", string(apperrors.GetCode(err))),
			zap.Int("status", status))
	}

	h.writeJSON(w, status, map[string]string{"error": message})
}
