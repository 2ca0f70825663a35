package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
	"github.com/propscout/propscout-cli/internal/logger"
)

// Price band bonuses. A cheap asking price is itself a below-market
// signal, independent of listing wording.
const (
	bargainPriceBand  = 50000
	bargainBonus      = 2.0
	affordablePricing = 80000
	affordableBonus   = 1.0
)

// DefaultSemanticTopN bounds how many heuristic-ranked candidates get
// the semantic rescoring pass. Semantic calls are slow; the long tail
// of low scorers rarely changes rank.
const DefaultSemanticTopN = 20

// Scorer computes investment scores from the rule table, with an
// optional semantic rescoring pass over the top candidates.
type Scorer struct {
	analyzer driven.SemanticAnalyzer
	topN     int
}

// NewScorer creates a scorer. The analyzer may be nil, which disables
// semantic rescoring regardless of the requested mode. topN <= 0 uses
// DefaultSemanticTopN.
func NewScorer(analyzer driven.SemanticAnalyzer, topN int) *Scorer {
	if topN <= 0 {
		topN = DefaultSemanticTopN
	}
	return &Scorer{analyzer: analyzer, topN: topN}
}

// Score computes the heuristic score for a single property.
// Pure function over the property's text, price and inferred type.
func (s *Scorer) Score(p *domain.Property) domain.ScoreResult {
	text := p.Title + " " + p.Description

	var raw float64
	var matched []string
	anyHigh := false
	keywordMatches := 0
	for _, rule := range MatchRules(text) {
		raw += rule.Tier.Weight()
		matched = append(matched, rule.Term)
		keywordMatches++
		if rule.Tier == TierHigh {
			anyHigh = true
		}
	}

	if p.Price != nil {
		switch {
		case *p.Price < bargainPriceBand:
			raw += bargainBonus
			matched = append(matched, fmt.Sprintf("price under £%d", bargainPriceBand))
		case *p.Price < affordablePricing:
			raw += affordableBonus
			matched = append(matched, fmt.Sprintf("price under £%d", affordablePricing))
		}
	}

	if p.Type == domain.TypeLand {
		raw += LandPenalty
	}

	return domain.ScoreResult{
		Score:    domain.Clamp(raw),
		Raw:      raw,
		Category: s.categorise(anyHigh, keywordMatches > 0, p.Type),
		Matched:  matched,
	}
}

// categorise derives the category tag from which keyword tiers
// matched. Price-band bonuses never change the category.
func (s *Scorer) categorise(anyHigh, anyMatch bool, typ domain.PropertyType) domain.Category {
	switch {
	case anyHigh:
		return domain.CategoryDistressed
	case anyMatch:
		return domain.CategoryFixerUpper
	case typ == domain.TypeLand:
		return domain.CategoryLand
	default:
		return domain.CategoryStandard
	}
}

// ScoreAll scores every property in place. In semantic mode the top
// candidates by heuristic score additionally get an analyzer pass; the
// semantic delta is added to the raw score before the final clamp.
// Analyzer unavailability degrades to heuristic-only, never fails.
func (s *Scorer) ScoreAll(ctx context.Context, props []domain.Property, mode domain.ScoringMode) {
	for i := range props {
		result := s.Score(&props[i])
		props[i].Score = &result
	}

	if mode != domain.ScoringSemantic {
		return
	}
	if s.analyzer == nil {
		logger.Debug("Semantic scoring requested but no analyzer configured")
		return
	}
	if err := s.analyzer.Ping(ctx); err != nil {
		logger.Warn("Semantic analyzer %s unavailable, keeping heuristic scores: %v", s.analyzer.Name(), err)
		return
	}

	s.rescoreTop(ctx, props)
}

// rescoreTop runs the analyzer over the top candidates by heuristic
// score. Per-property analyzer failures are skipped, not propagated.
func (s *Scorer) rescoreTop(ctx context.Context, props []domain.Property) {
	idx := make([]int, len(props))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return props[idx[a]].Score.Score > props[idx[b]].Score.Score
	})

	limit := s.topN
	if limit > len(idx) {
		limit = len(idx)
	}

	for _, i := range idx[:limit] {
		if ctx.Err() != nil {
			return
		}
		p := &props[i]
		analysis, err := s.analyzer.Analyze(ctx, p.Title+" "+p.Description)
		if err != nil {
			logger.Debug("Semantic analysis failed for %s: %v", p.Key, err)
			continue
		}
		p.Score.SemanticDelta = analysis.ScoreDelta
		p.Score.Raw += analysis.ScoreDelta
		p.Score.Score = domain.Clamp(p.Score.Raw)
		p.Score.Rationale = analysis.Rationale
	}
}
