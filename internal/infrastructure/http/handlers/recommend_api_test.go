package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/forkcast/v1/internal/application/recommend"
	"github.com/forkcast/v1/internal/domain/modelconfig"
	"github.com/forkcast/v1/internal/domain/profile"
	"github.com/forkcast/v1/internal/domain/recommendation"
	"github.com/forkcast/v1/internal/domain/taxonomy"
	"github.com/forkcast/v1/internal/infrastructure/ai"
	"github.com/forkcast/v1/internal/infrastructure/config"
	"github.com/forkcast/v1/internal/ports/outbound"
	"github.com/forkcast/v1/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stubPayload = `{
  "reply": "One idea for tonight.",
  "suggestions": [
    {"title": "Roast Chicken", "type": "recipe", "description": "d", "difficulty": "easy", "reason_for_recommendation": "r", "tags": {"protein": "chicken", "carb": "potato", "method": "roast"}}
  ]
}`

type stubConfigs struct{ def *modelconfig.ModelConfig }

func (s *stubConfigs) FindByID(context.Context, uuid.UUID) (*modelconfig.ModelConfig, error) {
	return nil, context.Canceled
}
func (s *stubConfigs) FindDefault(context.Context) (*modelconfig.ModelConfig, error) {
	return s.def, nil
}

type stubPrefs struct{}

func (stubPrefs) FindByUserID(context.Context, uuid.UUID) (*profile.UserPreferences, error) {
	return nil, context.Canceled
}

type stubRatings struct{}

func (stubRatings) FindByUserID(context.Context, uuid.UUID, int) ([]profile.RatingHistoryItem, error) {
	return nil, nil
}

type stubCuisines struct{}

func (stubCuisines) ListActive(context.Context) ([]*taxonomy.CuisineProfile, error) {
	return nil, nil
}

type stubSuggestions struct{}

func (stubSuggestions) Create(context.Context, *recommendation.Suggestion) error { return nil }
func (stubSuggestions) BulkCreate(context.Context, []*recommendation.Suggestion) error {
	return nil
}
func (stubSuggestions) FindRecentByUser(context.Context, uuid.UUID, time.Time, int) ([]*recommendation.Suggestion, error) {
	return nil, nil
}

type stubWeekly struct{ sets int }

func (s *stubWeekly) Upsert(context.Context, *recommendation.WeeklyMealSet) error {
	s.sets++
	return nil
}
func (s *stubWeekly) FindByUserAndWeek(context.Context, uuid.UUID, time.Time) (*recommendation.WeeklyMealSet, error) {
	return nil, context.Canceled
}
func (s *stubWeekly) FindRecentTitles(context.Context, uuid.UUID, time.Time) ([]string, error) {
	return nil, nil
}

type stubClient struct {
	response string
	err      error
}

func (c stubClient) Complete(context.Context, string, string, []outbound.ChatMessage, string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func newTestRouter(t *testing.T, response string) (*chi.Mux, *stubWeekly) {
	return newTestRouterWithClient(t, stubClient{response: response})
}

func newTestRouterWithClient(t *testing.T, client stubClient) (*chi.Mux, *stubWeekly) {
	t.Helper()
	log := logger.NewNop()
	def := &modelconfig.ModelConfig{
		ID: uuid.New(), Provider: modelconfig.ProviderOpenAI,
		ModelID: "gpt-4o-mini", Name: "Default", IsActive: true, IsDefault: true,
	}
	weekly := &stubWeekly{}
	selector := recommend.NewModelSelector(&stubConfigs{def: def}, stubPrefs{}, config.AIConfig{OpenAIKey: "k"}, log)
	registry := ai.NewRegistryWith(map[modelconfig.Provider]outbound.CompletionClient{
		modelconfig.ProviderOpenAI: client,
	})
	orch := recommend.NewOrchestrator(recommend.OrchestratorDeps{
		Selector:    selector,
		Registry:    registry,
		Cuisines:    stubCuisines{},
		Preferences: stubPrefs{},
		Ratings:     stubRatings{},
		Suggestions: stubSuggestions{},
		Weekly:      weekly,
		Logger:      log,
	})

	h := NewRecommendHandlers(orch, log)
	r := chi.NewRouter()
	r.Post("/api/v1/recommend", h.Recommend)
	r.Post("/api/v1/weekly-brief", h.WeeklyBrief)
	return r, weekly
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRecommendEndpointHappyPath(t *testing.T) {
	router, _ := newTestRouter(t, stubPayload)

	rec := postJSON(t, router, "/api/v1/recommend",
		`{"messages": [{"role": "user", "content": "dinner?"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Reply       string                      `json:"reply"`
			Suggestions []recommendation.Suggestion `json:"suggestions"`
		} `json:"data"`
		ModelUsed    string `json:"modelUsed"`
		Provider     string `json:"provider"`
		UsedFallback bool   `json:"usedFallback"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "One idea for tonight.", body.Data.Reply)
	require.Len(t, body.Data.Suggestions, 1)
	assert.Equal(t, "Default", body.ModelUsed)
	assert.Equal(t, "openai", body.Provider)
	assert.False(t, body.UsedFallback)
}

func TestRecommendEndpointInvalidJSON(t *testing.T) {
	router, _ := newTestRouter(t, stubPayload)

	rec := postJSON(t, router, "/api/v1/recommend", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestRecommendEndpointMissingMessages(t *testing.T) {
	router, _ := newTestRouter(t, stubPayload)

	rec := postJSON(t, router, "/api/v1/recommend", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendEndpointBadUserID(t *testing.T) {
	router, _ := newTestRouter(t, stubPayload)

	rec := postJSON(t, router, "/api/v1/recommend",
		`{"messages": [{"role": "user", "content": "hi"}], "userId": "not-a-uuid"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWeeklyBriefEndpointRequiresAdmin(t *testing.T) {
	router, weekly := newTestRouter(t, stubPayload)

	rec := postJSON(t, router, "/api/v1/weekly-brief",
		`{"userId": "`+uuid.NewString()+`"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, weekly.sets)
}

func TestWeeklyBriefEndpointHappyPath(t *testing.T) {
	router, weekly := newTestRouter(t, stubPayload)

	rec := postJSON(t, router, "/api/v1/weekly-brief",
		`{"userId": "`+uuid.NewString()+`", "isAdmin": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Date    string `json:"date"`
		Count   int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Count)
	assert.NotEmpty(t, body.Date)
	assert.Equal(t, 1, weekly.sets)
}

func TestRecommendEndpointProviderFailureIs500(t *testing.T) {
	router, _ := newTestRouterWithClient(t, stubClient{err: errors.New("upstream timeout")})

	rec := postJSON(t, router, "/api/v1/recommend",
		`{"messages": [{"role": "user", "content": "dinner?"}]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestRecommendEndpointRescaleAction(t *testing.T) {
	router, _ := newTestRouter(t, `{"title": "Soup (rescaled)", "rationale": "doubled", "servings": 8, "ingredients": ["2 l stock"], "instructions": ["Simmer."], "timing": "30 min"}`)

	rec := postJSON(t, router, "/api/v1/recommend",
		`{"action": "rescale", "recipe": {"title": "Soup", "text": "1 l stock. Simmer."}, "targetServings": 8}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Title    string `json:"title"`
		Servings int    `json:"servings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Soup (rescaled)", body.Title)
	assert.Equal(t, 8, body.Servings)
}
