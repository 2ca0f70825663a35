package domain

// Category tags a property by the strongest scoring tier that matched.
type Category string

// Category values, strongest first.
const (
	CategoryDistressed Category = "Distressed"
	CategoryFixerUpper Category = "Fixer Upper"
	CategoryLand       Category = "Land"
	CategoryStandard   Category = "Standard"
)

// ScoreResult is the investment score attached to a Property.
// It is owned exclusively by the property it scores.
type ScoreResult struct {
	// Score is the final investment score, clamped to [0, 10].
	Score float64

	// Raw is the accumulated score before clamping. Kept for
	// explainability; rule weights may push it outside [0, 10].
	Raw float64

	// Category is derived from which rule tiers matched.
	Category Category

	// Matched lists the rule terms that contributed, in rule-table order.
	Matched []string

	// SemanticDelta is the adjustment contributed by the semantic
	// analyzer. Zero when rescoring was not requested or unavailable.
	SemanticDelta float64

	// Rationale is the semantic analyzer's explanation, empty otherwise.
	Rationale string
}

// Clamp bounds a score to the [0, 10] scale.
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
