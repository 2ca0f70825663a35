package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string][]domain.SourceRunOutcome
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string][]domain.SourceRunOutcome),
	}
}

// RecordOutcomes stores the outcomes of one orchestrator run.
func (s *RunStore) RecordOutcomes(_ context.Context, outcomes []domain.SourceRunOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range outcomes {
		s.runs[o.RunID] = append(s.runs[o.RunID], o)
	}
	return nil
}

// RunOutcomes returns all outcomes recorded for a run ID.
func (s *RunStore) RunOutcomes(_ context.Context, runID string) ([]domain.SourceRunOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	outcomes := s.runs[runID]
	result := make([]domain.SourceRunOutcome, len(outcomes))
	copy(result, outcomes)
	return result, nil
}

// PruneRuns removes outcome history beyond the most recent 'keep' runs.
// Recency is judged by the earliest StartedAt within each run.
func (s *RunStore) PruneRuns(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 0 {
		keep = 0
	}
	if len(s.runs) <= keep {
		return nil
	}

	type runAge struct {
		id      string
		started int64
	}
	ages := make([]runAge, 0, len(s.runs))
	for id, outcomes := range s.runs {
		var earliest int64
		for i, o := range outcomes {
			ts := o.StartedAt.UnixNano()
			if i == 0 || ts < earliest {
				earliest = ts
			}
		}
		ages = append(ages, runAge{id: id, started: earliest})
	}
	sort.Slice(ages, func(i, j int) bool { return ages[i].started > ages[j].started })

	for _, a := range ages[keep:] {
		delete(s.runs, a.id)
	}
	return nil
}
