// Package taxonomy defines the cuisine reference data consulted during
// intent detection and guardrail injection.
package taxonomy

import "github.com/google/uuid"

// Guardrails are the optional structured boundaries attached to a cuisine.
// They are rendered into the generation prompt when a cuisine is forced or
// detected with enough confidence.
type Guardrails struct {
	DoSuggest         []string `json:"do_suggest,omitempty"`
	DontSuggest       []string `json:"dont_suggest,omitempty"`
	IngredientBounds  []string `json:"ingredient_boundaries,omitempty"`
	TechniqueDefaults []string `json:"technique_defaults,omitempty"`
}

// CuisineProfile is one taxonomy entry: a canonical cuisine name plus the
// weighted keyword list the intent detector scores against. Read-only
// reference data, administrator managed.
type CuisineProfile struct {
	ID         uuid.UUID
	Name       string
	Keywords   []string
	Style      string
	Guardrails *Guardrails
	IsActive   bool
}

// HasGuardrails reports whether any structured boundary is present.
func (p *CuisineProfile) HasGuardrails() bool {
	if p.Guardrails == nil {
		return false
	}
	g := p.Guardrails
	return len(g.DoSuggest) > 0 || len(g.DontSuggest) > 0 ||
		len(g.IngredientBounds) > 0 || len(g.TechniqueDefaults) > 0
}
