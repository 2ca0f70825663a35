package services

import (
	"context"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
	"github.com/propscout/propscout-cli/internal/core/ports/driving"
	"github.com/propscout/propscout-cli/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.Pipeline = (*Pipeline)(nil)

// Pipeline composes the full aggregation and scoring run:
// orchestrator fan-out, canonicalisation, scoring, policy filtering
// and document assembly with optional area enrichment.
type Pipeline struct {
	registry     driven.AdapterRegistry
	orchestrator *Orchestrator
	scorer       *Scorer
	aggregator   *Aggregator
	enricher     *Enricher
	runs         driven.RunStore
}

// NewPipeline wires the pipeline services together. enricher and runs
// may be nil; enrichment and run history are then skipped.
func NewPipeline(
	registry driven.AdapterRegistry,
	orchestrator *Orchestrator,
	scorer *Scorer,
	aggregator *Aggregator,
	enricher *Enricher,
	runs driven.RunStore,
) *Pipeline {
	return &Pipeline{
		registry:     registry,
		orchestrator: orchestrator,
		scorer:       scorer,
		aggregator:   aggregator,
		enricher:     enricher,
		runs:         runs,
	}
}

// Run executes one pipeline run. The only error it returns is request
// validation; source unreliability is captured in the outcomes, and a
// run where every fetch failed yields a valid empty result.
func (p *Pipeline) Run(ctx context.Context, req domain.SearchRequest) (*driving.RunResult, error) {
	if err := p.validate(req); err != nil {
		return nil, err
	}

	collected := p.orchestrator.Collect(ctx, req)
	if collected.Dropped > 0 {
		logger.Warn("Dropped %d listings without a usable URL", collected.Dropped)
	}

	p.scorer.ScoreAll(ctx, collected.Properties, req.Mode)
	kept := p.aggregator.Apply(req, collected.Properties)

	if p.runs != nil {
		if err := p.runs.RecordOutcomes(ctx, collected.Outcomes); err != nil {
			logger.Warn("Failed to record run history: %v", err)
		}
	}

	return &driving.RunResult{
		RunID:       collected.RunID,
		Properties:  kept,
		Outcomes:    collected.Outcomes,
		Dropped:     collected.Dropped,
		FinalRadius: collected.FinalRadius,
	}, nil
}

// Document builds the result document for a completed run, applying
// area enrichment when configured.
func (p *Pipeline) Document(ctx context.Context, req domain.SearchRequest, result *driving.RunResult) *domain.ResultDocument {
	doc := p.aggregator.Document(result.Properties)
	if p.enricher != nil {
		p.enricher.Enrich(ctx, doc)
	}

	// Requested locations that yielded nothing still appear, so an
	// empty document says what was searched.
	doc.Locations = mergeLocationLabels(doc.Locations, domain.ResolveLocations(req.Locations))
	return doc
}

// validate extends request validation with a registry check: every
// selected source must be registered. Unknown sources are a
// configuration error, reported before any fetch begins.
func (p *Pipeline) validate(req domain.SearchRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	for _, id := range req.Sources {
		if _, err := p.registry.Get(id); err != nil {
			return err
		}
	}
	return nil
}

// mergeLocationLabels keeps result-order labels first, then appends
// requested locations that produced no properties.
func mergeLocationLabels(present, requested []string) []string {
	seen := make(map[string]bool, len(present))
	for _, l := range present {
		seen[l] = true
	}
	out := present
	for _, l := range requested {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
