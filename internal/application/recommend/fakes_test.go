package recommend

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/forkcast/v1/internal/domain/modelconfig"
	"github.com/forkcast/v1/internal/domain/profile"
	"github.com/forkcast/v1/internal/domain/recommendation"
	"github.com/forkcast/v1/internal/domain/taxonomy"
	"github.com/forkcast/v1/internal/infrastructure/ai"
	"github.com/forkcast/v1/internal/infrastructure/config"
	"github.com/forkcast/v1/internal/ports/outbound"
	"github.com/forkcast/v1/pkg/logger"
	"github.com/google/uuid"
)

var errNotFound = errors.New("not found")

type fakeModelConfigs struct {
	byID       map[uuid.UUID]*modelconfig.ModelConfig
	defaultCfg *modelconfig.ModelConfig
}

func (f *fakeModelConfigs) FindByID(_ context.Context, id uuid.UUID) (*modelconfig.ModelConfig, error) {
	if cfg, ok := f.byID[id]; ok {
		return cfg, nil
	}
	return nil, errNotFound
}

func (f *fakeModelConfigs) FindDefault(context.Context) (*modelconfig.ModelConfig, error) {
	if f.defaultCfg == nil {
		return nil, errNotFound
	}
	return f.defaultCfg, nil
}

type fakePreferences struct {
	byUser map[uuid.UUID]*profile.UserPreferences
}

func (f *fakePreferences) FindByUserID(_ context.Context, userID uuid.UUID) (*profile.UserPreferences, error) {
	if f == nil || f.byUser == nil {
		return nil, errNotFound
	}
	if prefs, ok := f.byUser[userID]; ok {
		return prefs, nil
	}
	return nil, errNotFound
}

type fakeRatings struct {
	items []profile.RatingHistoryItem
}

func (f *fakeRatings) FindByUserID(_ context.Context, _ uuid.UUID, limit int) ([]profile.RatingHistoryItem, error) {
	if len(f.items) > limit {
		return f.items[:limit], nil
	}
	return f.items, nil
}

type fakeCuisines struct {
	profiles []*taxonomy.CuisineProfile
	err      error
}

func (f *fakeCuisines) ListActive(context.Context) ([]*taxonomy.CuisineProfile, error) {
	return f.profiles, f.err
}

type fakeSuggestions struct {
	mu      sync.Mutex
	created []*recommendation.Suggestion
	recent  []*recommendation.Suggestion
	findErr error
	saveErr error
}

func (f *fakeSuggestions) Create(_ context.Context, s *recommendation.Suggestion) error {
	return f.BulkCreate(context.Background(), []*recommendation.Suggestion{s})
}

func (f *fakeSuggestions) BulkCreate(_ context.Context, suggestions []*recommendation.Suggestion) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, suggestions...)
	return nil
}

func (f *fakeSuggestions) FindRecentByUser(_ context.Context, _ uuid.UUID, _ time.Time, limit int) ([]*recommendation.Suggestion, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

type fakeWeekly struct {
	mu     sync.Mutex
	sets   map[string]*recommendation.WeeklyMealSet
	titles []string
	err    error
}

func weeklyKey(userID uuid.UUID, weekStart time.Time) string {
	return userID.String() + "|" + weekStart.Format("2006-01-02")
}

func (f *fakeWeekly) Upsert(_ context.Context, set *recommendation.WeeklyMealSet) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sets == nil {
		f.sets = make(map[string]*recommendation.WeeklyMealSet)
	}
	f.sets[weeklyKey(set.UserID, set.WeekStart)] = set
	return nil
}

func (f *fakeWeekly) FindByUserAndWeek(_ context.Context, userID uuid.UUID, weekStart time.Time) (*recommendation.WeeklyMealSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if set, ok := f.sets[weeklyKey(userID, weekStart)]; ok {
		return set, nil
	}
	return nil, errNotFound
}

func (f *fakeWeekly) FindRecentTitles(context.Context, uuid.UUID, time.Time) ([]string, error) {
	return f.titles, f.err
}

type fakeEmail struct {
	sent []string
	err  error
}

func (f *fakeEmail) SendWeeklySummary(_ context.Context, to string, _ *recommendation.WeeklyMealSet) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

// fakeClient scripts completion responses per call.
type fakeClient struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
	systems   []string
	models    []string
}

func (f *fakeClient) Complete(_ context.Context, model, _ string, _ []outbound.ChatMessage, system string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	f.systems = append(f.systems, system)
	f.models = append(f.models, model)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	gets    int
	hits    int
}

func (f *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if v, ok := f.entries[key]; ok {
		f.hits++
		return v, true, nil
	}
	return "", false, nil
}

func (f *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entries == nil {
		f.entries = make(map[string]string)
	}
	f.entries[key] = value
	return nil
}

type testEnv struct {
	orch        *Orchestrator
	configs     *fakeModelConfigs
	prefs       *fakePreferences
	ratings     *fakeRatings
	cuisines    *fakeCuisines
	suggestions *fakeSuggestions
	weekly      *fakeWeekly
	email       *fakeEmail
	client      *fakeClient
	cache       *fakeCache
	defaultCfg  *modelconfig.ModelConfig
}

func newTestEnv(client *fakeClient) *testEnv {
	defaultCfg := &modelconfig.ModelConfig{
		ID:        uuid.New(),
		Provider:  modelconfig.ProviderOpenAI,
		ModelID:   "gpt-4o-mini",
		Name:      "Default",
		IsActive:  true,
		IsDefault: true,
	}
	env := &testEnv{
		configs:     &fakeModelConfigs{byID: map[uuid.UUID]*modelconfig.ModelConfig{defaultCfg.ID: defaultCfg}, defaultCfg: defaultCfg},
		prefs:       &fakePreferences{byUser: map[uuid.UUID]*profile.UserPreferences{}},
		ratings:     &fakeRatings{},
		cuisines:    &fakeCuisines{},
		suggestions: &fakeSuggestions{},
		weekly:      &fakeWeekly{},
		email:       &fakeEmail{},
		client:      client,
		defaultCfg:  defaultCfg,
	}

	log := logger.NewNop()
	registry := ai.NewRegistryWith(map[modelconfig.Provider]outbound.CompletionClient{
		modelconfig.ProviderOpenAI:    client,
		modelconfig.ProviderAnthropic: client,
		modelconfig.ProviderGemini:    client,
	})
	selector := NewModelSelector(env.configs, env.prefs, config.AIConfig{OpenAIKey: "test-key", AnthropicKey: "test-key", GeminiKey: "test-key"}, log)

	env.orch = NewOrchestrator(OrchestratorDeps{
		Selector:    selector,
		Registry:    registry,
		Cuisines:    env.cuisines,
		Preferences: env.prefs,
		Ratings:     env.ratings,
		Suggestions: env.suggestions,
		Weekly:      env.weekly,
		Email:       env.email,
		Metrics:     NewNopMetrics(),
		Logger:      log,
	})
	return env
}

const validPayload = `{
  "reply": "Here are two ideas for tonight.",
  "suggestions": [
    {
      "title": "Lemon Herb Roast Chicken",
      "type": "recipe",
      "description": "Juicy roast chicken with a bright lemon pan sauce",
      "difficulty": "medium",
      "reason_for_recommendation": "Matches your preference for poultry and weeknight roasts",
      "time_estimate": "60 minutes",
      "cuisine": "French",
      "tags": {"protein": "chicken", "carb": "potato", "method": "roast"}
    },
    {
      "title": "Paloma",
      "type": "cocktail",
      "description": "Tequila and grapefruit soda over ice",
      "difficulty": "easy",
      "reason_for_recommendation": "A light pairing for the roast",
      "tags": {"protein": "", "carb": "", "method": "stir"}
    }
  ]
}`
