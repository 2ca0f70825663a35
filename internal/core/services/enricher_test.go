package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
)

// mockStatsProvider implements driven.AreaStatsProvider for testing.
type mockStatsProvider struct {
	stats map[string]driven.AreaStats
	err   error
	calls int
}

func (m *mockStatsProvider) Stats(_ context.Context, outcode string) (driven.AreaStats, error) {
	m.calls++
	if m.err != nil {
		return driven.AreaStats{}, m.err
	}
	s, ok := m.stats[outcode]
	if !ok {
		return driven.AreaStats{}, domain.ErrNotFound
	}
	return s, nil
}

// mockStatsCache implements driven.AreaStatsCache for testing.
type mockStatsCache struct {
	entries map[string]driven.AreaStats
	puts    int
}

func (m *mockStatsCache) Get(_ context.Context, outcode string) (driven.AreaStats, error) {
	s, ok := m.entries[outcode]
	if !ok {
		return driven.AreaStats{}, domain.ErrNotFound
	}
	return s, nil
}

func (m *mockStatsCache) Put(_ context.Context, stats driven.AreaStats) error {
	if m.entries == nil {
		m.entries = make(map[string]driven.AreaStats)
	}
	m.entries[stats.Outcode] = stats
	m.puts++
	return nil
}

func floatPtr(v float64) *float64 { return &v }

func TestOutcode(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{address: "1 High Street, Liverpool L1 4AA", want: "L1"},
		{address: "Flat 2, Deansgate, Manchester M3", want: "M3"},
		{address: "10 Downing Street, London SW1A 2AA", want: "SW1A"},
		{address: "The Old Mill, B12 Industrial Estate, Sheffield S9 1XX", want: "S9"},
		{address: "No postcode here", want: ""},
		{address: "", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcode(tt.address), tt.address)
	}
}

func docWith(records ...domain.PropertyRecord) *domain.ResultDocument {
	return &domain.ResultDocument{
		Properties: records,
		TotalCount: len(records),
	}
}

func TestEnricher_Enrich_AttachesROI(t *testing.T) {
	provider := &mockStatsProvider{stats: map[string]driven.AreaStats{
		"L1": {AvgPrice: floatPtr(134000), AvgRent: floatPtr(750)},
	}}
	enricher := NewEnricher(provider, &mockStatsCache{})

	doc := docWith(domain.PropertyRecord{
		Address: "1 High St, Liverpool L1 4AA",
		Price:   intPtr(60000),
	})
	enricher.Enrich(context.Background(), doc)

	record := doc.Properties[0]
	require.NotNil(t, record.AvgAreaPrice)
	assert.Equal(t, 134000.0, *record.AvgAreaPrice)
	require.NotNil(t, record.AvgAreaRent)
	assert.Equal(t, 750.0, *record.AvgAreaRent)
	require.NotNil(t, record.ROI)
	// 750 * 12 / 60000 * 100 = 15
	assert.Equal(t, 15.0, *record.ROI)
}

func TestEnricher_Enrich_NoPriceNoROI(t *testing.T) {
	provider := &mockStatsProvider{stats: map[string]driven.AreaStats{
		"L1": {AvgPrice: floatPtr(134000), AvgRent: floatPtr(750)},
	}}
	enricher := NewEnricher(provider, nil)

	doc := docWith(domain.PropertyRecord{Address: "Liverpool L1 4AA"})
	enricher.Enrich(context.Background(), doc)

	record := doc.Properties[0]
	assert.NotNil(t, record.AvgAreaPrice)
	assert.Nil(t, record.ROI, "POA entries get area figures but no ROI")
}

func TestEnricher_Enrich_SharesLookupsPerOutcode(t *testing.T) {
	provider := &mockStatsProvider{stats: map[string]driven.AreaStats{
		"L1": {AvgPrice: floatPtr(100000), AvgRent: floatPtr(500)},
	}}
	enricher := NewEnricher(provider, nil)

	doc := docWith(
		domain.PropertyRecord{Address: "1 High St, L1 4AA", Price: intPtr(50000)},
		domain.PropertyRecord{Address: "2 High St, L1 4AB", Price: intPtr(80000)},
	)
	enricher.Enrich(context.Background(), doc)

	assert.Equal(t, 1, provider.calls, "one lookup per distinct outcode")
	assert.NotNil(t, doc.Properties[0].ROI)
	assert.NotNil(t, doc.Properties[1].ROI)
}

func TestEnricher_Enrich_PrefersFreshCache(t *testing.T) {
	provider := &mockStatsProvider{}
	cache := &mockStatsCache{entries: map[string]driven.AreaStats{
		"L1": {
			Outcode:   "L1",
			AvgPrice:  floatPtr(120000),
			AvgRent:   floatPtr(600),
			FetchedAt: time.Now().Add(-time.Hour),
		},
	}}
	enricher := NewEnricher(provider, cache)

	doc := docWith(domain.PropertyRecord{Address: "L1 4AA", Price: intPtr(60000)})
	enricher.Enrich(context.Background(), doc)

	assert.Equal(t, 0, provider.calls, "fresh cache entry avoids the external lookup")
	require.NotNil(t, doc.Properties[0].ROI)
	assert.Equal(t, 12.0, *doc.Properties[0].ROI)
}

func TestEnricher_Enrich_RefetchesStaleCache(t *testing.T) {
	provider := &mockStatsProvider{stats: map[string]driven.AreaStats{
		"L1": {AvgPrice: floatPtr(140000), AvgRent: floatPtr(700)},
	}}
	cache := &mockStatsCache{entries: map[string]driven.AreaStats{
		"L1": {
			Outcode:   "L1",
			AvgPrice:  floatPtr(120000),
			AvgRent:   floatPtr(600),
			FetchedAt: time.Now().Add(-8 * 24 * time.Hour),
		},
	}}
	enricher := NewEnricher(provider, cache)

	doc := docWith(domain.PropertyRecord{Address: "L1 4AA", Price: intPtr(60000)})
	enricher.Enrich(context.Background(), doc)

	assert.Equal(t, 1, provider.calls, "stale entry triggers a refetch")
	assert.Equal(t, 1, cache.puts, "refetched stats written back")
	require.NotNil(t, doc.Properties[0].AvgAreaPrice)
	assert.Equal(t, 140000.0, *doc.Properties[0].AvgAreaPrice)
}

func TestEnricher_Enrich_ProviderFailureSkipsRecord(t *testing.T) {
	provider := &mockStatsProvider{err: errors.New("blocked")}
	enricher := NewEnricher(provider, nil)

	doc := docWith(domain.PropertyRecord{Address: "L1 4AA", Price: intPtr(60000)})
	enricher.Enrich(context.Background(), doc)

	assert.Nil(t, doc.Properties[0].ROI)
	assert.Nil(t, doc.Properties[0].AvgAreaPrice)
}

func TestEnricher_Enrich_NothingConfigured(t *testing.T) {
	enricher := NewEnricher(nil, nil)

	doc := docWith(domain.PropertyRecord{Address: "L1 4AA", Price: intPtr(60000)})
	enricher.Enrich(context.Background(), doc)

	assert.Nil(t, doc.Properties[0].ROI)
}
