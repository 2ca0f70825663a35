// Package rules provides a deterministic, always-available semantic
// analysis adapter. It exists so semantic scoring works with no model
// installed: the verdict comes from fixed text rules, which also makes
// it the fallback when Ollama is unreachable.
package rules

import (
	"context"
	"math"
	"strings"

	"github.com/propscout/propscout-cli/internal/core/ports/driven"
)

// Ensure Analyzer implements the interface.
var _ driven.SemanticAnalyzer = (*Analyzer)(nil)

var (
	auctionTerms = []string{
		"auction",
		"guide price",
		"starting bid",
		"lot ",
		"buyers premium",
		"buyer's premium",
		"reserve price",
	}
	caveatTerms = []string{
		"cash buyers only",
		"cash buyer only",
		"tenant in situ",
		"tenanted",
		"shared ownership",
		"short lease",
		"leasehold",
		"subject to contract",
	}
	severeDistressTerms = []string{
		"fire damage",
		"derelict",
		"uninhabitable",
		"unlivable",
		"unliveable",
		"condemned",
		"structural",
		"subsidence",
		"gutted",
		"shell",
		"unsafe",
		"dangerous",
		"rebuild",
		"major works",
		"complete renovation",
	}
	mediumWorksTerms = []string{
		"modernisation",
		"modernization",
		"refurbishment",
		"renovation",
		"updating",
		"project",
		"in need of",
		"requires",
	}
)

// Analyzer is the rule-based semantic provider.
type Analyzer struct{}

// New creates a rules analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze derives a 1-10 verdict from fixed text rules and maps it to
// a score delta the same way the model-backed analyzer does.
func (a *Analyzer) Analyze(_ context.Context, text string) (driven.Analysis, error) {
	lower := strings.ToLower(text)

	isAuction := containsAny(lower, auctionTerms)
	hasCaveat := containsAny(lower, caveatTerms)
	severe := containsAny(lower, severeDistressTerms)
	mediumWorks := containsAny(lower, mediumWorksTerms)

	// Base verdict from condition.
	score := 3.0
	if mediumWorks {
		score = 5.0
	}
	if severe {
		score = 7.0
	}

	// Penalties.
	if isAuction {
		score -= 1.0
	}
	if hasCaveat {
		score -= 2.0
	}

	// Without a severe-distress signal the verdict stays mid-table.
	if !severe {
		score = math.Min(score, 6.0)
	}

	// A clean severe-distress listing is a near-perfect verdict.
	if severe && !isAuction && !hasCaveat {
		score = math.Max(score, 9.0)
	}

	score = math.Max(1.0, math.Min(10.0, score))
	score = math.Round(score)

	return driven.Analysis{
		ScoreDelta: verdictDelta(score),
		Rationale:  rationale(severe, mediumWorks, isAuction, hasCaveat),
	}, nil
}

// verdictDelta matches the ollama adapter's mapping so the providers
// are interchangeable.
func verdictDelta(score float64) float64 {
	switch {
	case score >= 10:
		return 1.0
	case score >= 9:
		return 0.5
	default:
		return 0
	}
}

func rationale(severe, mediumWorks, isAuction, hasCaveat bool) string {
	var reasons []string
	switch {
	case severe:
		reasons = append(reasons, "severe distress")
	case mediumWorks:
		reasons = append(reasons, "needs work")
	default:
		reasons = append(reasons, "no major works signaled")
	}
	if isAuction {
		reasons = append(reasons, "auction mentioned")
	}
	if hasCaveat {
		reasons = append(reasons, "caveats mentioned")
	}
	return strings.Join(reasons, ", ")
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// Name returns the analyzer identifier.
func (a *Analyzer) Name() string {
	return "rules"
}

// Ping always succeeds; the rules provider has no external dependency.
func (a *Analyzer) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (a *Analyzer) Close() error {
	return nil
}
