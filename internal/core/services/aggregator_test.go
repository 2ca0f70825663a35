package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
)

func newTestAggregator(auctionSources ...string) *Aggregator {
	registry := NewAdapterRegistry()
	for _, id := range auctionSources {
		registry.Register(&mockAdapter{id: id, caps: driven.AdapterCapabilities{Auction: true}})
	}
	return NewAggregator(registry)
}

func scored(p domain.Property, score float64, cat domain.Category) domain.Property {
	p.Score = &domain.ScoreResult{Score: score, Raw: score, Category: cat}
	return p
}

func TestAggregator_Apply_LeaseholdExclusion(t *testing.T) {
	agg := newTestAggregator()

	props := []domain.Property{
		scored(domain.Property{Key: "lease", Tenure: domain.TenureLeasehold, Type: domain.TypeFlat, Price: intPtr(40000)}, 9, domain.CategoryDistressed),
		scored(domain.Property{Key: "free", Tenure: domain.TenureFreehold, Type: domain.TypeHouse, Price: intPtr(60000)}, 2, domain.CategoryStandard),
	}

	kept := agg.Apply(domain.SearchRequest{}, props)
	require.Len(t, kept, 1)
	assert.Equal(t, "free", kept[0].Key, "leasehold removed regardless of score")

	allowed := agg.Apply(domain.SearchRequest{AllowLeasehold: true}, props)
	assert.Len(t, allowed, 2)
}

func TestAggregator_Apply_SharedOwnershipExcludedDespiteStatedFreehold(t *testing.T) {
	agg := newTestAggregator()
	canon := NewCanonicaliser()

	merged, _ := canon.Merge([]domain.RawListing{{
		SourceID:    "rightmove",
		URL:         "https://x.com/share",
		Title:       "2 bed flat",
		Description: "Available via shared ownership scheme, 50% share",
		PriceText:   "£55,000",
		Tenure:      "Freehold",
	}})
	require.Len(t, merged, 1)
	for i := range merged {
		merged[i] = scored(merged[i], 1, domain.CategoryStandard)
	}

	kept := agg.Apply(domain.SearchRequest{}, merged)
	assert.Empty(t, kept, "shared ownership falls under the hard exclusion")

	allowed := agg.Apply(domain.SearchRequest{AllowLeasehold: true}, merged)
	assert.Len(t, allowed, 1)
}

func TestAggregator_Apply_PriceBounds(t *testing.T) {
	agg := newTestAggregator()

	props := []domain.Property{
		scored(domain.Property{Key: "cheap", Type: domain.TypeHouse, Tenure: domain.TenureUnknown, Price: intPtr(30000)}, 1, domain.CategoryStandard),
		scored(domain.Property{Key: "mid", Type: domain.TypeHouse, Tenure: domain.TenureUnknown, Price: intPtr(90000)}, 1, domain.CategoryStandard),
		scored(domain.Property{Key: "dear", Type: domain.TypeHouse, Tenure: domain.TenureUnknown, Price: intPtr(200000)}, 1, domain.CategoryStandard),
		scored(domain.Property{Key: "poa", Type: domain.TypeHouse, Tenure: domain.TenureUnknown}, 1, domain.CategoryStandard),
	}

	kept := agg.Apply(domain.SearchRequest{MinPrice: 50000, MaxPrice: 100000}, props)
	keys := make([]string, 0, len(kept))
	for _, p := range kept {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"mid", "poa"}, keys, "POA entries pass price bounds")
}

func TestAggregator_Apply_ExcludeLand(t *testing.T) {
	agg := newTestAggregator()

	props := []domain.Property{
		scored(domain.Property{Key: "plot", Type: domain.TypeLand, Tenure: domain.TenureUnknown}, 0, domain.CategoryLand),
		scored(domain.Property{Key: "house", Type: domain.TypeHouse, Tenure: domain.TenureUnknown}, 0, domain.CategoryStandard),
	}

	kept := agg.Apply(domain.SearchRequest{ExcludeLand: true}, props)
	require.Len(t, kept, 1)
	assert.Equal(t, "house", kept[0].Key)
}

func TestAggregator_Apply_ExcludeAuctions(t *testing.T) {
	agg := newTestAggregator("auctionhouse")

	props := []domain.Property{
		scored(domain.Property{Key: "by-source", Type: domain.TypeHouse, Tenure: domain.TenureUnknown, Sources: []string{"auctionhouse"}}, 5, domain.CategoryDistressed),
		scored(domain.Property{Key: "by-text", Type: domain.TypeHouse, Tenure: domain.TenureUnknown, Sources: []string{"rightmove"}, Description: "For sale by auction, guide price £20,000"}, 5, domain.CategoryDistressed),
		scored(domain.Property{Key: "plain", Type: domain.TypeHouse, Tenure: domain.TenureUnknown, Sources: []string{"rightmove"}}, 1, domain.CategoryStandard),
	}

	kept := agg.Apply(domain.SearchRequest{ExcludeAuctions: true}, props)
	require.Len(t, kept, 1)
	assert.Equal(t, "plain", kept[0].Key)
}

func TestAggregator_Apply_Ordering(t *testing.T) {
	agg := newTestAggregator()

	props := []domain.Property{
		scored(domain.Property{Key: "poa", Type: domain.TypeHouse, Tenure: domain.TenureUnknown}, 8, domain.CategoryDistressed),
		scored(domain.Property{Key: "b", Type: domain.TypeHouse, Tenure: domain.TenureUnknown, Price: intPtr(80000)}, 2, domain.CategoryStandard),
		scored(domain.Property{Key: "a-low", Type: domain.TypeHouse, Tenure: domain.TenureUnknown, Price: intPtr(50000)}, 1, domain.CategoryStandard),
		scored(domain.Property{Key: "a-high", Type: domain.TypeHouse, Tenure: domain.TenureUnknown, Price: intPtr(50000)}, 7, domain.CategoryFixerUpper),
	}

	kept := agg.Apply(domain.SearchRequest{}, props)
	keys := make([]string, 0, len(kept))
	for _, p := range kept {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"a-high", "a-low", "b", "poa"}, keys,
		"price ascending, score breaks ties, POA last")
}

func TestAggregator_Document(t *testing.T) {
	agg := newTestAggregator()

	props := []domain.Property{
		scored(domain.Property{
			Key:          "1",
			URL:          "https://x.com/1",
			Title:        "Derelict cottage",
			Price:        intPtr(45000),
			PriceDisplay: "£45,000",
			Address:      "1 High St, Liverpool L1 4AA",
			Location:     "Liverpool",
			Tenure:       domain.TenureFreehold,
			Type:         domain.TypeHouse,
			Sources:      []string{"rightmove"},
		}, 7.5, domain.CategoryDistressed),
		scored(domain.Property{
			Key:      "2",
			Location: "Liverpool",
			Type:     domain.TypeHouse,
			Tenure:   domain.TenureUnknown,
			Sources:  []string{"zoopla"},
		}, 0, domain.CategoryStandard),
		scored(domain.Property{
			Key:      "3",
			Location: "Manchester",
			Type:     domain.TypeHouse,
			Tenure:   domain.TenureUnknown,
			Sources:  []string{"zoopla"},
		}, 1.5, domain.CategoryFixerUpper),
	}

	doc := agg.Document(props)

	assert.Equal(t, 3, doc.TotalCount)
	assert.Equal(t, []string{"Liverpool", "Manchester"}, doc.Locations)
	assert.Equal(t, 1, doc.Categories[domain.CategoryDistressed])
	assert.Equal(t, 1, doc.Categories[domain.CategoryStandard])
	assert.Equal(t, 1, doc.Categories[domain.CategoryFixerUpper])
	assert.False(t, doc.LastUpdated.IsZero())

	first := doc.Properties[0]
	assert.Equal(t, "Derelict cottage", first.Title)
	require.NotNil(t, first.Price)
	assert.Equal(t, 45000, *first.Price)
	assert.Equal(t, "£45,000", first.PriceDisplay)
	assert.Equal(t, 7.5, first.Score)
	assert.Equal(t, domain.CategoryDistressed, first.Category)
}

func TestAggregator_Document_Empty(t *testing.T) {
	agg := newTestAggregator()

	doc := agg.Document(nil)
	assert.Equal(t, 0, doc.TotalCount)
	assert.Empty(t, doc.Properties)
}
