package driven

import "context"

// Analysis is the semantic analyzer's verdict on a listing description.
type Analysis struct {
	// ScoreDelta is blended into (not substituted for) the heuristic
	// score before the final clamp.
	ScoreDelta float64

	// Rationale is a short human-readable explanation.
	Rationale string
}

// SemanticAnalyzer provides deeper scoring of listing descriptions.
// This is an optional service - when nil or unreachable, rescoring is
// skipped and heuristic scores are kept.
//
// Implementations may include:
//   - Ollama (local models)
//   - A deterministic rule-based analyzer (always available)
type SemanticAnalyzer interface {
	// Analyze inspects a listing description and returns an adjustment.
	Analyze(ctx context.Context, text string) (Analysis, error)

	// Name returns the provider name for logging.
	Name() string

	// Ping validates the provider is reachable by making a lightweight
	// test request. Used before a run to decide whether to rescore.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
