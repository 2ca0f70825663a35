package driving

import (
	"context"

	"github.com/propscout/propscout-cli/internal/core/domain"
)

// RunResult is everything one pipeline run produced.
type RunResult struct {
	// RunID identifies the run.
	RunID string

	// Properties is the scored, filtered, ordered result set.
	Properties []domain.Property

	// Outcomes holds one record per (source, location) unit executed,
	// across all radius-expansion rounds.
	Outcomes []domain.SourceRunOutcome

	// Dropped counts raw listings discarded for lacking an identity key.
	Dropped int

	// FinalRadius is the radius in miles the run settled on.
	FinalRadius float64
}

// Pipeline runs the full aggregation and scoring pipeline for a request.
type Pipeline interface {
	// Run validates the request, fans it out across sources and
	// locations, and returns the scored result set plus per-unit
	// outcomes. Per-unit source failures never fail the run; only
	// domain.ErrInvalidRequest is returned as an error. Cancelling the
	// context abandons outstanding fetches and returns what completed.
	Run(ctx context.Context, req domain.SearchRequest) (*RunResult, error)

	// Document assembles the persisted result document for a completed
	// run, applying area-stats enrichment when available.
	Document(ctx context.Context, req domain.SearchRequest, result *RunResult) *domain.ResultDocument
}
