package memory

import (
	"context"
	"sync"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
)

// Ensure AreaStatsCache implements the interface.
var _ driven.AreaStatsCache = (*AreaStatsCache)(nil)

// AreaStatsCache is an in-memory implementation of driven.AreaStatsCache.
type AreaStatsCache struct {
	mu    sync.RWMutex
	stats map[string]driven.AreaStats
}

// NewAreaStatsCache creates a new in-memory area stats cache.
func NewAreaStatsCache() *AreaStatsCache {
	return &AreaStatsCache{
		stats: make(map[string]driven.AreaStats),
	}
}

// Get returns the cached stats for an outcode.
func (c *AreaStatsCache) Get(_ context.Context, outcode string) (driven.AreaStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats, ok := c.stats[outcode]
	if !ok {
		return driven.AreaStats{}, domain.ErrNotFound
	}
	return stats, nil
}

// Put stores stats for an outcode, replacing any previous entry.
func (c *AreaStatsCache) Put(_ context.Context, stats driven.AreaStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats[stats.Outcode] = stats
	return nil
}
