package services

import (
	"fmt"
	"sort"
	"sync"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
)

// Ensure AdapterRegistry implements the interface.
var _ driven.AdapterRegistry = (*AdapterRegistry)(nil)

// AdapterRegistry is the lookup table of source adapters keyed by ID.
// Adding a source means registering an adapter here; the orchestrator
// never changes.
type AdapterRegistry struct {
	mu       sync.RWMutex
	adapters map[string]driven.SourceAdapter
}

// NewAdapterRegistry creates an empty registry.
func NewAdapterRegistry() *AdapterRegistry {
	return &AdapterRegistry{adapters: make(map[string]driven.SourceAdapter)}
}

// Register adds an adapter, replacing any previous entry with its ID.
func (r *AdapterRegistry) Register(adapter driven.SourceAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.ID()] = adapter
}

// Get returns the adapter for a source ID.
func (r *AdapterRegistry) Get(sourceID string) (driven.SourceAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[sourceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedSource, sourceID)
	}
	return adapter, nil
}

// IDs returns all registered source IDs, sorted.
func (r *AdapterRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
