package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/forkcast/v1/internal/domain/profile"
)

// allergenGuidance maps an allergen category to the named unsafe ingredients
// and the substitution guidance rendered into the safety block.
type allergenGuidance struct {
	Unsafe      string
	Substitutes string
}

var allergenCategories = map[string]allergenGuidance{
	"shellfish": {
		Unsafe:      "shrimp, prawns, crab, lobster, crayfish, scallops, mussels, clams, oysters, squid, octopus, fish sauce made with shellfish, shrimp paste, oyster sauce",
		Substitutes: "use firm white fish (if fish is tolerated), chicken, tofu, or king oyster mushrooms for texture; replace oyster sauce with mushroom-based vegetarian stir-fry sauce",
	},
	"gluten": {
		Unsafe:      "wheat, barley, rye, spelt, farro, semolina, couscous, regular soy sauce, most beers, standard pasta and bread",
		Substitutes: "use rice, corn, quinoa, certified gluten-free oats, rice noodles, tamari instead of soy sauce, and gluten-free flour blends for baking",
	},
	"dairy": {
		Unsafe:      "milk, butter, cream, cheese, yogurt, ghee, whey, casein, many chocolates and baked goods",
		Substitutes: "use olive or coconut oil for butter, oat/soy/almond milk for milk, coconut cream for heavy cream, and nutritional yeast for cheesy flavor",
	},
	"nuts": {
		Unsafe:      "peanuts, almonds, cashews, walnuts, pecans, hazelnuts, pistachios, pine nuts, nut butters, nut oils, marzipan, many pestos and Asian sauces",
		Substitutes: "use toasted seeds (pumpkin, sunflower, sesame) for crunch, sunflower seed butter for nut butter, and seed-based pesto",
	},
	"soy": {
		Unsafe:      "soy sauce, tofu, tempeh, edamame, miso, soybean oil in dressings, many processed sauces",
		Substitutes: "use coconut aminos for soy sauce, chickpeas or white beans for tofu, and chickpea miso where fermented depth is needed",
	},
	"egg": {
		Unsafe:      "eggs in all forms, mayonnaise, most fresh pasta, meringue, many baked goods and breaded coatings",
		Substitutes: "use flax or chia eggs for binding in baking, aquafaba for whipping, and vegan mayonnaise; bread with flour and plant milk instead of egg wash",
	},
	"fish": {
		Unsafe:      "all finned fish, anchovies, fish sauce, Worcestershire sauce, Caesar dressing, dashi",
		Substitutes: "use chicken, tofu, or mushrooms for the protein; replace fish sauce with coconut aminos plus a little salt, and dashi with kombu-shiitake broth",
	},
}

// allergenSynonyms folds common restriction spellings into a category key.
var allergenSynonyms = map[string]string{
	"shrimp": "shellfish", "prawn": "shellfish", "crab": "shellfish",
	"lobster": "shellfish", "crustacean": "shellfish", "mollusc": "shellfish",
	"wheat": "gluten", "celiac": "gluten", "coeliac": "gluten",
	"milk": "dairy", "lactose": "dairy", "cheese": "dairy",
	"peanut": "nuts", "peanuts": "nuts", "tree nut": "nuts",
	"tree nuts": "nuts", "almond": "nuts", "cashew": "nuts", "walnut": "nuts",
	"soya": "soy", "soybean": "soy",
	"eggs": "egg",
	"seafood": "shellfish",
}

// categoryFor resolves a freeform restriction to a known allergen category.
// The substring passes try longer terms first so "shellfish (severe)" lands
// on shellfish, not fish.
func categoryFor(restriction string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(restriction))
	if _, ok := allergenCategories[key]; ok {
		return key, true
	}
	if cat, ok := allergenSynonyms[key]; ok {
		return cat, true
	}
	for _, name := range termsByLength(allergenCategories) {
		if strings.Contains(key, name) {
			return name, true
		}
	}
	for _, syn := range termsByLength(allergenSynonyms) {
		if strings.Contains(key, syn) {
			return allergenSynonyms[syn], true
		}
	}
	return "", false
}

func termsByLength[V any](m map[string]V) []string {
	terms := make([]string, 0, len(m))
	for term := range m {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})
	return terms
}

// BuildPersonalizationContext renders the personalization instruction block
// from preferences and rating history. The output is deterministic for equal
// inputs: fragments appear in a fixed order, and the allergy safety block is
// always last so it reads as overriding everything before it.
func BuildPersonalizationContext(prefs *profile.UserPreferences, history []profile.RatingHistoryItem) string {
	var b strings.Builder

	if prefs != nil {
		if len(prefs.FavoriteCuisines) > 0 {
			fmt.Fprintf(&b, "Favorite cuisines: %s.\n", strings.Join(prefs.FavoriteCuisines, ", "))
		}
		if len(prefs.FavoriteDishes) > 0 {
			fmt.Fprintf(&b, "Favorite dishes: %s.\n", strings.Join(prefs.FavoriteDishes, ", "))
		}
		if prefs.DietaryStyle != "" {
			fmt.Fprintf(&b, "Dietary style: %s.\n", prefs.DietaryStyle)
		}
		if prefs.TimePreference != "" {
			fmt.Fprintf(&b, "Preferred cooking time: %s.\n", prefs.TimePreference)
		}
		if prefs.SkillLevel != "" {
			fmt.Fprintf(&b, "Cooking skill level: %s.\n", prefs.SkillLevel)
		}
		if prefs.SpicePreference != "" {
			fmt.Fprintf(&b, "Spice preference: %s.\n", prefs.SpicePreference)
		}
		if len(prefs.Equipment) > 0 {
			fmt.Fprintf(&b, "Available equipment: %s.\n", strings.Join(prefs.Equipment, ", "))
		}
		if prefs.Notes != "" {
			fmt.Fprintf(&b, "Additional notes from the user: %s\n", prefs.Notes)
		}
	}

	if len(history) > 0 {
		var liked, disliked []string
		for _, item := range history {
			entry := item.SuggestionTitle
			if item.Tags.Protein != "" || item.Tags.Carb != "" || item.Tags.Method != "" {
				entry += fmt.Sprintf(" (protein: %s, carb: %s, method: %s)",
					item.Tags.Protein, item.Tags.Carb, item.Tags.Method)
			}
			if item.Feedback != "" {
				entry += fmt.Sprintf(" — feedback: %q", item.Feedback)
			}
			if item.Liked {
				liked = append(liked, entry)
			} else {
				disliked = append(disliked, entry)
			}
		}
		if len(liked) > 0 {
			fmt.Fprintf(&b, "Recipes the user liked: %s.\n", strings.Join(liked, "; "))
		}
		if len(disliked) > 0 {
			fmt.Fprintf(&b, "Recipes the user disliked: %s.\n", strings.Join(disliked, "; "))
		}
	}

	if prefs != nil && len(prefs.FoodRestrictions) > 0 {
		b.WriteString(buildSafetyBlock(prefs.FoodRestrictions))
	}

	return b.String()
}

// buildSafetyBlock renders the unconditional allergy block. FoodRestrictions
// is authoritative: the block states that it overrides every other
// preference above it.
func buildSafetyBlock(restrictions []string) string {
	var b strings.Builder

	b.WriteString("\nABSOLUTE SAFETY REQUIREMENT — FOOD ALLERGIES. ")
	b.WriteString("This section OVERRIDES all preferences above. ")
	fmt.Fprintf(&b, "The user has hard food restrictions: %s. ", strings.Join(restrictions, ", "))
	b.WriteString("Never suggest these ingredients, any derivative of them, or any preparation with cross-contamination risk. This applies to every suggestion without exception.\n")

	seen := make(map[string]bool)
	for _, restriction := range restrictions {
		cat, ok := categoryFor(restriction)
		if !ok || seen[cat] {
			continue
		}
		seen[cat] = true
		guidance := allergenCategories[cat]
		fmt.Fprintf(&b, "For the %s allergy — unsafe ingredients: %s. Safe substitutions: %s.\n",
			cat, guidance.Unsafe, guidance.Substitutes)
	}

	return b.String()
}
