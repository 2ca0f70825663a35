package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
)

// mockAdapter implements driven.SourceAdapter for testing.
type mockAdapter struct {
	id      string
	caps    driven.AdapterCapabilities
	err     error
	fetchFn func(location string, filters driven.FetchFilters) []domain.RawListing

	mu    sync.Mutex
	calls []string
}

func (m *mockAdapter) ID() string { return m.id }

func (m *mockAdapter) Capabilities() driven.AdapterCapabilities { return m.caps }

func (m *mockAdapter) Fetch(_ context.Context, location string, filters driven.FetchFilters) ([]domain.RawListing, error) {
	m.mu.Lock()
	m.calls = append(m.calls, fmt.Sprintf("%s@%.2f", location, filters.Radius))
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if m.fetchFn != nil {
		return m.fetchFn(location, filters), nil
	}
	return nil, nil
}

func (m *mockAdapter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// residentialListings returns n house listings with distinct URLs.
func residentialListings(n int, prefix string) []domain.RawListing {
	listings := make([]domain.RawListing, 0, n)
	for i := 0; i < n; i++ {
		listings = append(listings, domain.RawListing{
			URL:       fmt.Sprintf("https://example.com/%s/%d", prefix, i),
			Title:     "3 bed terraced house",
			PriceText: "£60,000",
		})
	}
	return listings
}

func newTestOrchestrator(adapters ...driven.SourceAdapter) (*Orchestrator, *AdapterRegistry) {
	registry := NewAdapterRegistry()
	for _, a := range adapters {
		registry.Register(a)
	}
	return NewOrchestrator(registry, NewCanonicaliser(), 2, time.Second), registry
}

func baseRequest(sources ...string) domain.SearchRequest {
	return domain.SearchRequest{
		Locations: []string{"Manchester"},
		Radius:    10,
		MaxPrice:  100000,
		Sources:   sources,
	}
}

func TestOrchestrator_Collect_FanOut(t *testing.T) {
	a := &mockAdapter{id: "a", fetchFn: func(loc string, _ driven.FetchFilters) []domain.RawListing {
		return residentialListings(3, "a-"+loc)
	}}
	b := &mockAdapter{id: "b", fetchFn: func(loc string, _ driven.FetchFilters) []domain.RawListing {
		return residentialListings(2, "b-"+loc)
	}}
	orch, _ := newTestOrchestrator(a, b)

	req := baseRequest("a", "b")
	req.Locations = []string{"Manchester", "Liverpool"}

	result := orch.Collect(context.Background(), req)

	assert.NotEmpty(t, result.RunID)
	assert.Len(t, result.Properties, 10, "3+2 listings per location, distinct URLs")
	assert.Len(t, result.Outcomes, 4, "one outcome per (source, location)")
	for _, o := range result.Outcomes {
		assert.Equal(t, domain.UnitOK, o.Status)
		assert.Equal(t, result.RunID, o.RunID)
	}
}

func TestOrchestrator_Collect_StampsSourceAndLocation(t *testing.T) {
	a := &mockAdapter{id: "a", fetchFn: func(loc string, _ driven.FetchFilters) []domain.RawListing {
		return residentialListings(3, loc)
	}}
	orch, _ := newTestOrchestrator(a)

	result := orch.Collect(context.Background(), baseRequest("a"))

	require.NotEmpty(t, result.Properties)
	for _, p := range result.Properties {
		assert.Equal(t, []string{"a"}, p.Sources)
		assert.Equal(t, "Manchester", p.Location)
	}
}

func TestOrchestrator_Collect_PartialFailure(t *testing.T) {
	good := &mockAdapter{id: "good", fetchFn: func(loc string, _ driven.FetchFilters) []domain.RawListing {
		return residentialListings(3, loc)
	}}
	bad := &mockAdapter{id: "bad", err: fmt.Errorf("%w: selectors no longer match", domain.ErrSourceFailed)}
	orch, _ := newTestOrchestrator(good, bad)

	result := orch.Collect(context.Background(), baseRequest("good", "bad"))

	assert.Len(t, result.Properties, 3, "good source results survive the bad source")

	byStatus := make(map[domain.UnitStatus]int)
	for _, o := range result.Outcomes {
		byStatus[o.Status]++
	}
	assert.Equal(t, 1, byStatus[domain.UnitOK])
	assert.Equal(t, 1, byStatus[domain.UnitError])
}

func TestOrchestrator_Collect_TimeoutClassified(t *testing.T) {
	slow := &mockAdapter{id: "slow", err: domain.ErrSourceTimeout}
	orch, _ := newTestOrchestrator(slow)

	result := orch.Collect(context.Background(), baseRequest("slow"))

	assert.Empty(t, result.Properties)
	require.NotEmpty(t, result.Outcomes)
	assert.Equal(t, domain.UnitTimeout, result.Outcomes[0].Status)
	assert.True(t, result.Outcomes[0].Failed())
}

func TestOrchestrator_Collect_AllSourcesFail(t *testing.T) {
	a := &mockAdapter{id: "a", err: domain.ErrSourceFailed}
	b := &mockAdapter{id: "b", err: domain.ErrSourceFailed}
	orch, _ := newTestOrchestrator(a, b)

	result := orch.Collect(context.Background(), baseRequest("a", "b"))

	assert.Empty(t, result.Properties, "total failure yields an empty result, not an error")
	assert.NotEmpty(t, result.Outcomes)
}

func TestOrchestrator_Collect_AuctionSourcesQueriedOnce(t *testing.T) {
	portal := &mockAdapter{
		id:   "portal",
		caps: driven.AdapterCapabilities{RadiusScoped: true},
		fetchFn: func(loc string, _ driven.FetchFilters) []domain.RawListing {
			return residentialListings(3, loc)
		},
	}
	auction := &mockAdapter{id: "auction", caps: driven.AdapterCapabilities{Auction: true}}
	orch, _ := newTestOrchestrator(portal, auction)

	req := baseRequest("portal", "auction")
	req.Locations = []string{"Manchester", "Liverpool", "Leeds"}

	orch.Collect(context.Background(), req)

	assert.Equal(t, 3, portal.callCount(), "portal queried per location")
	assert.Equal(t, 1, auction.callCount(), "auction source queried exactly once")
}

func TestOrchestrator_Collect_RadiusExpansion(t *testing.T) {
	// The same single listing at every radius: the residential count
	// never reaches the threshold, so expansion walks the ladder to
	// the ceiling.
	portal := &mockAdapter{id: "portal", fetchFn: func(loc string, _ driven.FetchFilters) []domain.RawListing {
		return []domain.RawListing{{
			URL:       "https://example.com/" + loc + "/only-one",
			Title:     "2 bed house",
			PriceText: "£55,000",
		}}
	}}
	auction := &mockAdapter{id: "auction", caps: driven.AdapterCapabilities{Auction: true}}
	orch, _ := newTestOrchestrator(portal, auction)

	req := baseRequest("portal", "auction")
	req.Radius = 10

	result := orch.Collect(context.Background(), req)

	assert.Equal(t, domain.RadiusCeiling, result.FinalRadius, "expansion halts exactly at the ceiling")
	// Ladder from 10mi: 10, 15, 20, 30, 40.
	assert.Equal(t, 5, portal.callCount())
	assert.Equal(t, 1, auction.callCount(), "auction source never re-run on expansion")
	assert.Len(t, result.Properties, 1, "rounds re-merge into the same identity key")
}

func TestOrchestrator_Collect_ExpansionStopsWhenSatisfied(t *testing.T) {
	portal := &mockAdapter{id: "portal", fetchFn: func(loc string, _ driven.FetchFilters) []domain.RawListing {
		return residentialListings(3, loc)
	}}
	orch, _ := newTestOrchestrator(portal)

	result := orch.Collect(context.Background(), baseRequest("portal"))

	assert.Equal(t, 1, portal.callCount(), "threshold met in the first round")
	assert.Equal(t, 10.0, result.FinalRadius)
}

func TestOrchestrator_Collect_CancelledContext(t *testing.T) {
	a := &mockAdapter{id: "a", fetchFn: func(loc string, _ driven.FetchFilters) []domain.RawListing {
		return residentialListings(3, loc)
	}}
	orch, _ := newTestOrchestrator(a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := orch.Collect(ctx, baseRequest("a"))

	assert.Empty(t, result.Properties)
	require.NotEmpty(t, result.Outcomes)
	for _, o := range result.Outcomes {
		assert.Equal(t, domain.UnitSkipped, o.Status)
	}
}

func TestOrchestrator_Collect_DropsListingsWithoutURL(t *testing.T) {
	a := &mockAdapter{id: "a", fetchFn: func(loc string, _ driven.FetchFilters) []domain.RawListing {
		listings := residentialListings(3, loc)
		listings = append(listings, domain.RawListing{Title: "no url"})
		return listings
	}}
	orch, _ := newTestOrchestrator(a)

	result := orch.Collect(context.Background(), baseRequest("a"))

	assert.Len(t, result.Properties, 3)
	assert.Equal(t, 1, result.Dropped)
}
