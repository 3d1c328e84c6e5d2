package recommend

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/forkcast/v1/internal/domain/taxonomy"
	"github.com/forkcast/v1/internal/ports/outbound"
)

// Detection confidence levels.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Scoring constants: a keyword that equals the cuisine's own name weighs
// more than a generic keyword; confidence is thresholded on the total score.
const (
	nameKeywordWeight     = 3
	genericKeywordWeight  = 1
	highConfidenceScore   = 5
	mediumConfidenceScore = 2
)

// CuisineDetection is the advisory output of intent detection. Unless the
// caller forces a cuisine it is surfaced as telemetry without necessarily
// injecting guardrail text.
type CuisineDetection struct {
	Cuisine    string                   `json:"cuisine"`
	Confidence string                   `json:"confidence"`
	Rationale  string                   `json:"rationale"`
	Score      int                      `json:"score"`
	Profile    *taxonomy.CuisineProfile `json:"-"`
}

// Keyword matching is word-boundary strict: "curry" never matches
// "currying". Multi-word keywords get boundaries at both ends.
func wordPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
}

// DetectCuisine scores the tail of the conversation against the cuisine
// taxonomy. The scored text is the most recent user turn plus the
// immediately preceding assistant turn, if any. Ties break by profile
// iteration order; that ordering is stable but otherwise unspecified.
func DetectCuisine(profiles []*taxonomy.CuisineProfile, conversation []outbound.ChatMessage, favorites []string) *CuisineDetection {
	text := conversationTail(conversation)

	type scored struct {
		profile *taxonomy.CuisineProfile
		score   int
		hits    []string
	}

	var ranked []scored
	for _, p := range profiles {
		if !p.IsActive {
			continue
		}
		name := strings.ToLower(p.Name)
		score := 0
		var hits []string
		for _, kw := range p.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			n := len(wordPattern(kw).FindAllStringIndex(text, -1))
			if n == 0 {
				continue
			}
			weight := genericKeywordWeight
			if kw == name {
				weight = nameKeywordWeight
			}
			score += n * weight
			hits = append(hits, kw)
		}
		if score > 0 {
			ranked = append(ranked, scored{profile: p, score: score, hits: hits})
		}
	}

	if len(ranked) > 0 {
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].score > ranked[j].score
		})
		top := ranked[0]
		return &CuisineDetection{
			Cuisine:    top.profile.Name,
			Confidence: confidenceFor(top.score),
			Rationale:  fmt.Sprintf("matched keywords %s in recent conversation", strings.Join(top.hits, ", ")),
			Score:      top.score,
			Profile:    top.profile,
		}
	}

	// Nothing scored: fall back to the user's declared favorites, matched
	// case-insensitively against known profile names.
	for _, fav := range favorites {
		for _, p := range profiles {
			if !p.IsActive {
				continue
			}
			if strings.EqualFold(strings.TrimSpace(fav), p.Name) {
				return &CuisineDetection{
					Cuisine:    p.Name,
					Confidence: ConfidenceMedium,
					Rationale:  "no cuisine signal in conversation; using declared favorite cuisine",
					Profile:    p,
				}
			}
		}
	}

	return nil
}

func confidenceFor(score int) string {
	switch {
	case score >= highConfidenceScore:
		return ConfidenceHigh
	case score >= mediumConfidenceScore:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// conversationTail concatenates the most recent user turn with the assistant
// turn immediately before it, lowercased.
func conversationTail(conversation []outbound.ChatMessage) string {
	lastUser := -1
	for i := len(conversation) - 1; i >= 0; i-- {
		if conversation[i].Role == outbound.RoleUser {
			lastUser = i
			break
		}
	}
	if lastUser == -1 {
		return ""
	}
	text := conversation[lastUser].Content
	if lastUser > 0 && conversation[lastUser-1].Role == outbound.RoleAssistant {
		text = conversation[lastUser-1].Content + " " + text
	}
	return strings.ToLower(text)
}

// GuardrailText renders a detected or forced cuisine's guardrails into
// instruction text. Empty when the profile carries no structured bounds.
func GuardrailText(p *taxonomy.CuisineProfile) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Cuisine focus: %s.", p.Name)
	if p.Style != "" {
		fmt.Fprintf(&b, " Style: %s.", p.Style)
	}
	if p.HasGuardrails() {
		g := p.Guardrails
		if len(g.DoSuggest) > 0 {
			fmt.Fprintf(&b, " Lean into: %s.", strings.Join(g.DoSuggest, ", "))
		}
		if len(g.DontSuggest) > 0 {
			fmt.Fprintf(&b, " Avoid suggesting: %s.", strings.Join(g.DontSuggest, ", "))
		}
		if len(g.IngredientBounds) > 0 {
			fmt.Fprintf(&b, " Ingredient boundaries: %s.", strings.Join(g.IngredientBounds, ", "))
		}
		if len(g.TechniqueDefaults) > 0 {
			fmt.Fprintf(&b, " Default techniques: %s.", strings.Join(g.TechniqueDefaults, ", "))
		}
	}
	b.WriteString("\n")
	return b.String()
}
