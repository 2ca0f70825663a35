package driven

import (
	"context"

	"github.com/propscout/propscout-cli/internal/core/domain"
)

// RunStore persists per-unit execution records for observability.
// This is an optional service - when nil, outcomes are only returned
// in-memory to the caller.
type RunStore interface {
	// RecordOutcomes stores the outcomes of one orchestrator run.
	RecordOutcomes(ctx context.Context, outcomes []domain.SourceRunOutcome) error

	// RunOutcomes returns all outcomes recorded for a run ID.
	RunOutcomes(ctx context.Context, runID string) ([]domain.SourceRunOutcome, error)

	// PruneRuns removes outcome history beyond the most recent 'keep' runs.
	PruneRuns(ctx context.Context, keep int) error
}
