package recommendation

// Archetype is a required category slot that a weekly batch must cover.
type Archetype string

// The five fixed archetype slots for a weekly batch. Coverage is instructed
// through the generation prompt; the engine does not verify the returned
// batch post-hoc.
const (
	ArchetypePoultry     Archetype = "poultry"
	ArchetypeRedMeat     Archetype = "red meat or heavy plant protein"
	ArchetypeFish        Archetype = "fish or light plant protein"
	ArchetypeVegetarian  Archetype = "vegetarian or vegan"
	ArchetypeWildcard    Archetype = "wildcard"
)

// WeeklyArchetypes lists the slots in prompt order.
func WeeklyArchetypes() []Archetype {
	return []Archetype{
		ArchetypePoultry,
		ArchetypeRedMeat,
		ArchetypeFish,
		ArchetypeVegetarian,
		ArchetypeWildcard,
	}
}

// MethodMix lists the cooking-method spread a weekly batch should include.
func MethodMix() []string {
	return []string{
		"one sheet-pan or one-pot meal",
		"one slow-cook or simmer dish",
		"one quick sauté or grill dish",
	}
}

// WeeklyBatchSize is the number of suggestions in a weekly set, one per
// archetype slot.
const WeeklyBatchSize = 5
