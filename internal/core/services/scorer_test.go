package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
)

// mockAnalyzer implements driven.SemanticAnalyzer for testing.
type mockAnalyzer struct {
	analysis   driven.Analysis
	analyzeErr error
	pingErr    error
	calls      int
}

func (m *mockAnalyzer) Analyze(_ context.Context, _ string) (driven.Analysis, error) {
	m.calls++
	if m.analyzeErr != nil {
		return driven.Analysis{}, m.analyzeErr
	}
	return m.analysis, nil
}

func (m *mockAnalyzer) Name() string { return "mock" }

func (m *mockAnalyzer) Ping(_ context.Context) error { return m.pingErr }

func (m *mockAnalyzer) Close() error { return nil }

func intPtr(v int) *int { return &v }

func TestScorer_Score_KeywordTiers(t *testing.T) {
	scorer := NewScorer(nil, 0)

	p := &domain.Property{
		Title:       "Derelict cottage",
		Description: "Requires full modernisation",
		Type:        domain.TypeHouse,
	}

	result := scorer.Score(p)
	// derelict +3, modernisation +1.5
	assert.InDelta(t, 4.5, result.Raw, 0.001)
	assert.Equal(t, domain.CategoryDistressed, result.Category)
	assert.Contains(t, result.Matched, "derelict")
	assert.Contains(t, result.Matched, "modernisation")
}

func TestScorer_Score_Monotonicity(t *testing.T) {
	scorer := NewScorer(nil, 0)

	base := &domain.Property{Description: "needs refurbishment", Type: domain.TypeHouse}
	more := &domain.Property{Description: "needs refurbishment after fire damage", Type: domain.TypeHouse}

	assert.Greater(t, scorer.Score(more).Raw, scorer.Score(base).Raw,
		"an extra high-priority match never decreases the raw score")
}

func TestScorer_Score_LandPenalty(t *testing.T) {
	scorer := NewScorer(nil, 0)

	asHouse := &domain.Property{Description: "development opportunity", Type: domain.TypeHouse}
	asLand := &domain.Property{Description: "development opportunity", Type: domain.TypeLand}

	assert.Less(t, scorer.Score(asLand).Raw, scorer.Score(asHouse).Raw,
		"land penalty strictly decreases the score for the same text")
}

func TestScorer_Score_Clamped(t *testing.T) {
	scorer := NewScorer(nil, 0)

	loaded := &domain.Property{
		Description: "derelict fire damage repossession condemned unsafe gutted squatters structural",
		Price:       intPtr(30000),
		Type:        domain.TypeHouse,
	}
	result := scorer.Score(loaded)
	assert.Greater(t, result.Raw, 10.0)
	assert.Equal(t, 10.0, result.Score)

	bare := &domain.Property{Description: "plot of land", Type: domain.TypeLand}
	result = scorer.Score(bare)
	assert.Less(t, result.Raw, 0.0)
	assert.Equal(t, 0.0, result.Score)
}

func TestScorer_Score_PriceBands(t *testing.T) {
	scorer := NewScorer(nil, 0)

	cheap := scorer.Score(&domain.Property{Price: intPtr(45000), Type: domain.TypeHouse})
	assert.InDelta(t, 2.0, cheap.Raw, 0.001)

	mid := scorer.Score(&domain.Property{Price: intPtr(75000), Type: domain.TypeHouse})
	assert.InDelta(t, 1.0, mid.Raw, 0.001)

	poa := scorer.Score(&domain.Property{Type: domain.TypeHouse})
	assert.InDelta(t, 0.0, poa.Raw, 0.001)
}

func TestScorer_Score_Categories(t *testing.T) {
	scorer := NewScorer(nil, 0)

	tests := []struct {
		name string
		prop domain.Property
		want domain.Category
	}{
		{
			name: "high tier match",
			prop: domain.Property{Description: "repossession sale", Type: domain.TypeHouse},
			want: domain.CategoryDistressed,
		},
		{
			name: "medium tier only",
			prop: domain.Property{Description: "ripe for refurbishment", Type: domain.TypeHouse},
			want: domain.CategoryFixerUpper,
		},
		{
			name: "land without matches",
			prop: domain.Property{Title: "Paddock", Type: domain.TypeLand},
			want: domain.CategoryLand,
		},
		{
			name: "nothing matched",
			prop: domain.Property{Description: "immaculate family home", Type: domain.TypeHouse},
			want: domain.CategoryStandard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.Score(&tt.prop).Category)
		})
	}
}

func TestScorer_ScoreAll_SemanticBlend(t *testing.T) {
	analyzer := &mockAnalyzer{analysis: driven.Analysis{ScoreDelta: 2.0, Rationale: "severe distress"}}
	scorer := NewScorer(analyzer, 10)

	props := []domain.Property{
		{Key: "a", Description: "derelict shell", Type: domain.TypeHouse},
	}
	scorer.ScoreAll(context.Background(), props, domain.ScoringSemantic)

	require.NotNil(t, props[0].Score)
	assert.Equal(t, 2.0, props[0].Score.SemanticDelta)
	assert.Equal(t, "severe distress", props[0].Score.Rationale)
	// derelict +3, shell +1.5, delta +2
	assert.InDelta(t, 6.5, props[0].Score.Raw, 0.001)
}

func TestScorer_ScoreAll_TopNOnly(t *testing.T) {
	analyzer := &mockAnalyzer{analysis: driven.Analysis{ScoreDelta: 1.0}}
	scorer := NewScorer(analyzer, 2)

	props := []domain.Property{
		{Key: "low", Description: "nothing special", Type: domain.TypeHouse},
		{Key: "high", Description: "derelict repossession", Type: domain.TypeHouse},
		{Key: "mid", Description: "needs refurbishment", Type: domain.TypeHouse},
	}
	scorer.ScoreAll(context.Background(), props, domain.ScoringSemantic)

	assert.Equal(t, 2, analyzer.calls, "only the top candidates get a semantic pass")
	assert.Zero(t, props[0].Score.SemanticDelta, "lowest scorer was skipped")
}

func TestScorer_ScoreAll_DegradesWhenUnavailable(t *testing.T) {
	analyzer := &mockAnalyzer{pingErr: errors.New("connection refused")}
	scorer := NewScorer(analyzer, 10)

	props := []domain.Property{
		{Key: "a", Description: "derelict", Type: domain.TypeHouse},
	}
	scorer.ScoreAll(context.Background(), props, domain.ScoringSemantic)

	require.NotNil(t, props[0].Score)
	assert.Equal(t, 0, analyzer.calls)
	assert.InDelta(t, 3.0, props[0].Score.Raw, 0.001, "heuristic score retained")
}

func TestScorer_ScoreAll_HeuristicModeSkipsAnalyzer(t *testing.T) {
	analyzer := &mockAnalyzer{analysis: driven.Analysis{ScoreDelta: 5.0}}
	scorer := NewScorer(analyzer, 10)

	props := []domain.Property{{Key: "a", Description: "derelict", Type: domain.TypeHouse}}
	scorer.ScoreAll(context.Background(), props, domain.ScoringHeuristic)

	assert.Equal(t, 0, analyzer.calls)
}

func TestScorer_ScoreAll_AnalyzeFailureSkipsProperty(t *testing.T) {
	analyzer := &mockAnalyzer{analyzeErr: domain.ErrAnalyzerUnavailable}
	scorer := NewScorer(analyzer, 10)

	props := []domain.Property{{Key: "a", Description: "derelict", Type: domain.TypeHouse}}
	scorer.ScoreAll(context.Background(), props, domain.ScoringSemantic)

	require.NotNil(t, props[0].Score)
	assert.InDelta(t, 3.0, props[0].Score.Raw, 0.001)
	assert.Empty(t, props[0].Score.Rationale)
}
