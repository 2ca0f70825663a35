package driven

import (
	"context"
	"time"
)

// AreaStats holds market averages for one UK outcode.
type AreaStats struct {
	// Outcode is the first half of the postcode, e.g. "L1" or "M14".
	Outcode string

	// AvgPrice is the average sold price in pounds. Nil when the
	// provider could not determine one.
	AvgPrice *float64

	// AvgRent is the average monthly rent in pounds. Nil when unknown.
	AvgRent *float64

	// FetchedAt is when the figures were obtained.
	FetchedAt time.Time
}

// AreaStatsProvider looks up market averages for an outcode.
// This is an optional service - when nil, ROI enrichment is skipped.
type AreaStatsProvider interface {
	// Stats returns the market averages for an outcode.
	Stats(ctx context.Context, outcode string) (AreaStats, error)
}

// AreaStatsCache persists area stats between runs so external lookups
// are only repeated once the entry has gone stale.
type AreaStatsCache interface {
	// Get returns the cached stats for an outcode.
	// Returns domain.ErrNotFound when absent.
	Get(ctx context.Context, outcode string) (AreaStats, error)

	// Put stores stats for an outcode, replacing any previous entry.
	Put(ctx context.Context, stats AreaStats) error
}
