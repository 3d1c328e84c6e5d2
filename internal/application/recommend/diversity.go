package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/forkcast/v1/internal/domain/recommendation"
	"github.com/forkcast/v1/internal/ports/outbound"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Diversity windows and limits.
const (
	// RecencyWindow bounds the single-session must-avoid lookback.
	RecencyWindow = 14 * 24 * time.Hour
	// WeeklyWindow bounds the weekly-batch exclusion lookback.
	WeeklyWindow = 35 * 24 * time.Hour
	// HeavyRotationThreshold flags a protein or carb category appearing this
	// many times or more inside the recency window.
	HeavyRotationThreshold = 2
	// ExclusionCap limits the weekly exclusion list for prompt-size control.
	ExclusionCap = 50
	// recencyFetchLimit bounds the store read; two weeks of suggestions for
	// one user stays well under this.
	recencyFetchLimit = 200
)

// RecencyConstraints is the single-session diversity output: names to avoid
// outright and categories in heavy rotation.
type RecencyConstraints struct {
	Avoid         []string `json:"avoid"`
	HeavyProteins []string `json:"heavy_proteins"`
	HeavyCarbs    []string `json:"heavy_carbs"`
}

// WeeklyConstraints is the batch-mode diversity output. The constraint text
// instructs archetype coverage; nothing verifies the returned batch against
// the slots post-hoc.
type WeeklyConstraints struct {
	Exclusions []string `json:"exclusions"`
}

// DiversityFilter consults recent recommendation history and emits
// constraint text for the generation prompt.
type DiversityFilter struct {
	suggestions outbound.SuggestionRepository
	weekly      outbound.WeeklyPlanRepository
	logger      *zap.Logger
}

// NewDiversityFilter creates a diversity filter over the history stores.
func NewDiversityFilter(suggestions outbound.SuggestionRepository, weekly outbound.WeeklyPlanRepository, logger *zap.Logger) *DiversityFilter {
	return &DiversityFilter{suggestions: suggestions, weekly: weekly, logger: logger}
}

// RecentConstraints fetches the user's suggestions inside the recency window
// and reduces them to constraints. Store failures degrade to no constraints;
// a missing history must never fail a recommendation.
func (f *DiversityFilter) RecentConstraints(ctx context.Context, userID uuid.UUID) RecencyConstraints {
	if userID == uuid.Nil {
		return RecencyConstraints{}
	}
	since := time.Now().UTC().Add(-RecencyWindow)
	history, err := f.suggestions.FindRecentByUser(ctx, userID, since, recencyFetchLimit)
	if err != nil {
		f.logger.Warn("diversity history fetch failed, continuing without constraints",
			zap.String("user_id", userID.String()), zap.Error(err))
		return RecencyConstraints{}
	}
	return ReduceRecency(history)
}

// ReduceRecency computes recency constraints from fetched history. Pure over
// its input and independently testable.
func ReduceRecency(history []*recommendation.Suggestion) RecencyConstraints {
	var c RecencyConstraints
	proteinCounts := make(map[string]int)
	carbCounts := make(map[string]int)

	for _, s := range history {
		c.Avoid = append(c.Avoid, s.Title)
		if p := strings.ToLower(s.Tags.Protein); p != "" {
			proteinCounts[p]++
		}
		if cb := strings.ToLower(s.Tags.Carb); cb != "" {
			carbCounts[cb]++
		}
	}

	c.HeavyProteins = heavyCategories(proteinCounts)
	c.HeavyCarbs = heavyCategories(carbCounts)
	return c
}

func heavyCategories(counts map[string]int) []string {
	var heavy []string
	for category, n := range counts {
		if n >= HeavyRotationThreshold {
			heavy = append(heavy, category)
		}
	}
	sort.Strings(heavy)
	return heavy
}

// InstructionText renders the recency constraints for the system prompt.
// Categories below the threshold remain allowed and are not mentioned.
func (c RecencyConstraints) InstructionText() string {
	if len(c.Avoid) == 0 && len(c.HeavyProteins) == 0 && len(c.HeavyCarbs) == 0 {
		return ""
	}
	var b strings.Builder
	if len(c.Avoid) > 0 {
		fmt.Fprintf(&b, "Do not recommend these recently suggested dishes again: %s.\n", strings.Join(c.Avoid, "; "))
	}
	if len(c.HeavyProteins) > 0 {
		fmt.Fprintf(&b, "These proteins are in heavy rotation lately, steer away from them: %s.\n", strings.Join(c.HeavyProteins, ", "))
	}
	if len(c.HeavyCarbs) > 0 {
		fmt.Fprintf(&b, "These carb bases are in heavy rotation lately, steer away from them: %s.\n", strings.Join(c.HeavyCarbs, ", "))
	}
	return b.String()
}

// WeeklyBatchConstraints builds the exclusion list for a weekly batch from
// suggestion history and prior weekly-set titles inside the weekly window,
// capped to the most recent entries.
func (f *DiversityFilter) WeeklyBatchConstraints(ctx context.Context, userID uuid.UUID) WeeklyConstraints {
	since := time.Now().UTC().Add(-WeeklyWindow)

	var exclusions []string
	history, err := f.suggestions.FindRecentByUser(ctx, userID, since, ExclusionCap)
	if err != nil {
		f.logger.Warn("weekly suggestion history fetch failed",
			zap.String("user_id", userID.String()), zap.Error(err))
	} else {
		for _, s := range history {
			exclusions = append(exclusions, s.Title)
		}
	}

	titles, err := f.weekly.FindRecentTitles(ctx, userID, since)
	if err != nil {
		f.logger.Warn("weekly set title fetch failed",
			zap.String("user_id", userID.String()), zap.Error(err))
	} else {
		exclusions = append(exclusions, titles...)
	}

	// Newest entries are the most relevant to exclude.
	if len(exclusions) > ExclusionCap {
		exclusions = exclusions[:ExclusionCap]
	}
	return WeeklyConstraints{Exclusions: exclusions}
}

// InstructionText renders the weekly batch constraints: the archetype slots,
// the cooking-method mix, and the exclusion list.
func (c WeeklyConstraints) InstructionText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d dinner suggestions for the coming week.\n", recommendation.WeeklyBatchSize)
	b.WriteString("The batch must cover these five archetype slots, one suggestion each:\n")
	for i, a := range recommendation.WeeklyArchetypes() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a)
	}
	b.WriteString("Across the batch, include this cooking-method mix: ")
	b.WriteString(strings.Join(recommendation.MethodMix(), "; "))
	b.WriteString(".\n")
	if len(c.Exclusions) > 0 {
		fmt.Fprintf(&b, "Do not repeat any of these recent dishes: %s.\n", strings.Join(c.Exclusions, "; "))
	}
	return b.String()
}
