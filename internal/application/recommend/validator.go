package recommend

import (
	"encoding/json"
	"strings"

	"github.com/forkcast/v1/internal/domain/recommendation"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// DegradationTier names the outcome of output validation, strictest first.
type DegradationTier string

const (
	// TierStrict: the output parsed and passed full schema validation.
	TierStrict DegradationTier = "strict"
	// TierPermissive: the output parsed as JSON but failed schema
	// validation; the result is best-effort from the raw parse.
	TierPermissive DegradationTier = "permissive"
	// TierFallback: the output was not JSON at all; the whole text becomes
	// the reply and the suggestion list is empty.
	TierFallback DegradationTier = "fallback"
)

// StructuredResult is the validated recommendation payload plus the tier it
// was recovered at. Validation never fails terminally: malformed generator
// output degrades, it does not error.
type StructuredResult struct {
	Reply       string                      `json:"reply,omitempty"`
	Suggestions []recommendation.Suggestion `json:"suggestions"`
	Tier        DegradationTier             `json:"-"`
}

// Wire shapes for the recommendation contract. Validation tags define the
// strict tier's schema.
type suggestionPayload struct {
	Title        string               `json:"title" validate:"required"`
	Type         string               `json:"type" validate:"required,oneof=recipe cocktail"`
	Description  string               `json:"description" validate:"required"`
	Difficulty   string               `json:"difficulty" validate:"required"`
	Reason       string               `json:"reason_for_recommendation" validate:"required"`
	TimeEstimate string               `json:"time_estimate,omitempty"`
	Cuisine      string               `json:"cuisine,omitempty"`
	Tags         *tagsPayload         `json:"tags,omitempty"`
	FullDetails  *fullDetailsPayload  `json:"full_details,omitempty"`
}

type tagsPayload struct {
	Protein string `json:"protein"`
	Carb    string `json:"carb"`
	Method  string `json:"method"`
}

type fullDetailsPayload struct {
	Ingredients    []string `json:"ingredients" validate:"required,min=1"`
	Instructions   []string `json:"instructions" validate:"required,min=1"`
	NutritionNotes string   `json:"nutrition_notes,omitempty"`
}

type recommendationPayload struct {
	Reply       string              `json:"reply"`
	Suggestions []suggestionPayload `json:"suggestions" validate:"dive"`
}

// OutputValidator parses, repairs, and validates raw model text against the
// recommendation contract.
type OutputValidator struct {
	validate *validator.Validate
	logger   *zap.Logger
}

// NewOutputValidator creates an output validator.
func NewOutputValidator(logger *zap.Logger) *OutputValidator {
	return &OutputValidator{
		validate: validator.New(),
		logger:   logger,
	}
}

// Validate runs the three-tier pipeline: strip one optional wrapping code
// fence, parse, schema-validate. Each failure falls to the next tier; no
// tier raises.
func (v *OutputValidator) Validate(raw string) *StructuredResult {
	text := StripCodeFence(raw)

	var payload recommendationPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		v.logger.Warn("model output was not JSON, degrading to raw reply",
			zap.Error(err), zap.Int("raw_len", len(raw)))
		return &StructuredResult{
			Reply:       strings.TrimSpace(raw),
			Suggestions: []recommendation.Suggestion{},
			Tier:        TierFallback,
		}
	}

	tier := TierStrict
	if err := v.validate.Struct(&payload); err != nil {
		v.logger.Warn("model output failed schema validation, using best-effort result",
			zap.Error(err), zap.Int("suggestions", len(payload.Suggestions)))
		tier = TierPermissive
	}

	return &StructuredResult{
		Reply:       payload.Reply,
		Suggestions: toDomainSuggestions(payload.Suggestions),
		Tier:        tier,
	}
}

func toDomainSuggestions(payloads []suggestionPayload) []recommendation.Suggestion {
	suggestions := make([]recommendation.Suggestion, 0, len(payloads))
	for _, p := range payloads {
		s := recommendation.Suggestion{
			Title:        p.Title,
			Type:         recommendation.SuggestionType(p.Type),
			Description:  p.Description,
			Difficulty:   p.Difficulty,
			Reason:       p.Reason,
			TimeEstimate: p.TimeEstimate,
			Cuisine:      p.Cuisine,
		}
		if p.Tags != nil {
			s.Tags = recommendation.TagTriple{
				Protein: p.Tags.Protein,
				Carb:    p.Tags.Carb,
				Method:  p.Tags.Method,
			}
		}
		if p.FullDetails != nil {
			s.FullDetails = &recommendation.FullDetails{
				Ingredients:    p.FullDetails.Ingredients,
				Instructions:   p.FullDetails.Instructions,
				NutritionNotes: p.FullDetails.NutritionNotes,
			}
		}
		suggestions = append(suggestions, s)
	}
	return suggestions
}

// StripCodeFence removes a single wrapping Markdown code fence, with or
// without a language marker. Text that is not fenced passes through
// unchanged.
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	// Drop the opening fence line (``` or ```json).
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[idx+1:]
	} else {
		return strings.TrimSpace(strings.TrimPrefix(text, "```"))
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
