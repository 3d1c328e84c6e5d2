package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/forkcast/v1/internal/domain/recommendation"
	"github.com/forkcast/v1/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagged(title, protein, carb string) *recommendation.Suggestion {
	return &recommendation.Suggestion{
		Title: title,
		Tags:  recommendation.TagTriple{Protein: protein, Carb: carb},
	}
}

func TestReduceRecencyEmptyHistory(t *testing.T) {
	c := ReduceRecency(nil)
	assert.Empty(t, c.Avoid)
	assert.Empty(t, c.HeavyProteins)
	assert.Empty(t, c.HeavyCarbs)
	assert.Empty(t, c.InstructionText())
}

func TestReduceRecencyAvoidListsEveryTitle(t *testing.T) {
	c := ReduceRecency([]*recommendation.Suggestion{
		tagged("Chicken Tikka", "chicken", "rice"),
		tagged("Mushroom Risotto", "", "rice"),
	})
	assert.Equal(t, []string{"Chicken Tikka", "Mushroom Risotto"}, c.Avoid)
}

func TestReduceRecencyHeavyRotationThreshold(t *testing.T) {
	c := ReduceRecency([]*recommendation.Suggestion{
		tagged("A", "chicken", "rice"),
		tagged("B", "Chicken", "pasta"),
		tagged("C", "beef", "rice"),
	})
	// chicken appears twice (case-folded), beef once; rice twice, pasta once.
	assert.Equal(t, []string{"chicken"}, c.HeavyProteins)
	assert.Equal(t, []string{"rice"}, c.HeavyCarbs)

	text := c.InstructionText()
	assert.Contains(t, text, "chicken")
	assert.Contains(t, text, "rice")
	assert.NotContains(t, text, "beef")
	assert.NotContains(t, text, "pasta")
}

func TestRecentConstraintsStoreFailureDegrades(t *testing.T) {
	suggestions := &fakeSuggestions{findErr: errors.New("db down")}
	f := NewDiversityFilter(suggestions, &fakeWeekly{}, logger.NewNop())

	c := f.RecentConstraints(context.Background(), uuid.New())
	assert.Empty(t, c.Avoid)
	assert.Empty(t, c.InstructionText())
}

func TestRecentConstraintsAnonymousUser(t *testing.T) {
	f := NewDiversityFilter(&fakeSuggestions{recent: []*recommendation.Suggestion{tagged("X", "", "")}}, &fakeWeekly{}, logger.NewNop())
	c := f.RecentConstraints(context.Background(), uuid.Nil)
	assert.Empty(t, c.Avoid)
}

func TestWeeklyBatchConstraintsMergesSources(t *testing.T) {
	suggestions := &fakeSuggestions{recent: []*recommendation.Suggestion{
		tagged("Chicken Tikka", "chicken", "rice"),
	}}
	weekly := &fakeWeekly{titles: []string{"Last Week Lasagna"}}
	f := NewDiversityFilter(suggestions, weekly, logger.NewNop())

	c := f.WeeklyBatchConstraints(context.Background(), uuid.New())
	assert.Equal(t, []string{"Chicken Tikka", "Last Week Lasagna"}, c.Exclusions)
}

func TestWeeklyBatchConstraintsCapped(t *testing.T) {
	var recent []*recommendation.Suggestion
	for i := 0; i < ExclusionCap; i++ {
		recent = append(recent, tagged(fmt.Sprintf("Dish %02d", i), "", ""))
	}
	suggestions := &fakeSuggestions{recent: recent}
	weekly := &fakeWeekly{titles: []string{"Overflow 1", "Overflow 2"}}
	f := NewDiversityFilter(suggestions, weekly, logger.NewNop())

	c := f.WeeklyBatchConstraints(context.Background(), uuid.New())
	assert.Len(t, c.Exclusions, ExclusionCap)
}

func TestWeeklyConstraintsInstructionText(t *testing.T) {
	text := WeeklyConstraints{Exclusions: []string{"Old Dish"}}.InstructionText()
	require.Contains(t, text, fmt.Sprintf("exactly %d dinner suggestions", recommendation.WeeklyBatchSize))
	for _, a := range recommendation.WeeklyArchetypes() {
		assert.Contains(t, text, string(a))
	}
	assert.Contains(t, text, "Old Dish")
}
