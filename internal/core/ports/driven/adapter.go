package driven

import (
	"context"

	"github.com/propscout/propscout-cli/internal/core/domain"
)

// FetchFilters narrows a source fetch. Adapters pass what the upstream
// site supports and leave the rest to the aggregation pipeline.
type FetchFilters struct {
	// MinPrice and MaxPrice bound the asking price in pounds.
	// Zero MaxPrice means unbounded.
	MinPrice int
	MaxPrice int

	// Radius is the search radius in miles. Ignored by adapters that
	// are not radius-scoped.
	Radius float64

	// PropertyTypes restricts the fetch where the source supports it.
	PropertyTypes []domain.PropertyType
}

// SourceAdapter fetches raw listings from one portal or auction house.
// Each source (rightmove, zoopla, pugh, ...) implements this interface.
//
// Adapters are stateless and safe to invoke repeatedly and concurrently.
// Zero results is a valid, non-error outcome. Failures are reported as
// domain.ErrSourceTimeout (deadline exceeded) or domain.ErrSourceFailed
// (transport failure or page layout mismatch), wrapped with context.
type SourceAdapter interface {
	// ID returns the source identifier, e.g. "rightmove".
	ID() string

	// Capabilities returns what this adapter supports.
	Capabilities() AdapterCapabilities

	// Fetch returns the raw listings for a location under the filters.
	// The context carries the per-unit deadline; implementations must
	// honour cancellation.
	Fetch(ctx context.Context, location string, filters FetchFilters) ([]domain.RawListing, error)
}

// AdapterCapabilities describes what a source adapter supports.
type AdapterCapabilities struct {
	// RadiusScoped indicates the source accepts a search radius and
	// participates in smart radius expansion. Auction houses are keyword
	// searched and are queried exactly once per run instead.
	RadiusScoped bool

	// Auction indicates the source is an auction house. Its listings are
	// flagged for the exclude-auctions policy filter.
	Auction bool

	// SupportsPriceFilter indicates the source applies price bounds
	// upstream. When false the pipeline filters locally.
	SupportsPriceFilter bool
}

// AdapterRegistry resolves source adapters by identifier.
// It maintains the lookup table of registered sources so new sources can
// be added without touching the orchestrator.
type AdapterRegistry interface {
	// Get returns the adapter for the given source ID.
	// Returns domain.ErrUnsupportedSource if the ID is unknown.
	Get(sourceID string) (SourceAdapter, error)

	// Register adds an adapter under its ID, replacing any previous one.
	Register(adapter SourceAdapter)

	// IDs returns all registered source IDs, sorted.
	IDs() []string
}
