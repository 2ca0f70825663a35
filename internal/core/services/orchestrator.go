package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/propscout/propscout-cli/internal/core/domain"
	"github.com/propscout/propscout-cli/internal/core/ports/driven"
	"github.com/propscout/propscout-cli/internal/logger"
)

// Defaults for the fan-out. Worker count stays low out of politeness
// to the external sites; the timeout bounds a single adapter fetch.
const (
	DefaultWorkers      = 4
	DefaultFetchTimeout = 20 * time.Second
)

// unit is one (source, location) fetch in a round.
type unit struct {
	adapter  driven.SourceAdapter
	location string
	filters  driven.FetchFilters
	round    int
}

// CollectResult is everything one orchestrator run produced.
type CollectResult struct {
	RunID       string
	Properties  []domain.Property
	Outcomes    []domain.SourceRunOutcome
	Dropped     int
	FinalRadius float64
}

// Orchestrator fans a search request out across the cross-product of
// sources and locations under a bounded worker pool, tolerates
// per-unit failure, and drives smart radius expansion.
type Orchestrator struct {
	registry driven.AdapterRegistry
	canon    *Canonicaliser
	workers  int
	timeout  time.Duration
}

// NewOrchestrator creates an orchestrator. workers <= 0 and
// timeout <= 0 fall back to the defaults.
func NewOrchestrator(registry driven.AdapterRegistry, canon *Canonicaliser, workers int, timeout time.Duration) *Orchestrator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Orchestrator{
		registry: registry,
		canon:    canon,
		workers:  workers,
		timeout:  timeout,
	}
}

// Collect runs the fan-out for a validated request and returns the
// merged property set plus one outcome per executed unit. A failed
// unit is recorded and skipped, never fatal: when every unit fails the
// result is simply empty. Cancelling ctx abandons outstanding fetches
// and returns what completed so far.
func (o *Orchestrator) Collect(ctx context.Context, req domain.SearchRequest) CollectResult {
	runID := uuid.NewString()
	locations := domain.ResolveLocations(req.Locations)

	residential, auctions := o.partition(req.Sources)
	plan := domain.NewRadiusPlan(req.Radius)

	var allRaws []domain.RawListing
	var allOutcomes []domain.SourceRunOutcome
	dropped := 0

	var merged []domain.Property
	for {
		filters := driven.FetchFilters{
			MinPrice:      req.MinPrice,
			MaxPrice:      req.MaxPrice,
			Radius:        plan.Current(),
			PropertyTypes: req.PropertyTypes,
		}

		units := o.roundUnits(residential, locations, filters, plan.Round())
		if plan.Round() == 0 {
			// Auction sources are location-independent: queried exactly
			// once, never re-run on expansion.
			for _, a := range auctions {
				units = append(units, unit{adapter: a, location: "", filters: filters, round: 0})
			}
		}

		logger.Info("Round %d: radius %.2f miles, %d fetches", plan.Round(), plan.Current(), len(units))

		raws, outcomes := o.runRound(ctx, runID, units)
		allRaws = append(allRaws, raws...)
		allOutcomes = append(allOutcomes, outcomes...)

		merged, dropped = o.canon.Merge(allRaws)
		if ctx.Err() != nil {
			break
		}

		count := residentialCount(merged)
		state := plan.Observe(count)
		if state.Done() {
			if state == domain.ExpansionCeiling && count < domain.ResidentialThreshold {
				logger.Info("Radius ceiling reached with %d residential results", count)
			}
			break
		}
		logger.Info("Only %d residential results, expanding radius to %.2f miles", count, plan.Current())
	}

	return CollectResult{
		RunID:       runID,
		Properties:  merged,
		Outcomes:    allOutcomes,
		Dropped:     dropped,
		FinalRadius: plan.Current(),
	}
}

// partition splits the requested source IDs into radius-scoped
// residential adapters and location-independent auction adapters.
// Unknown IDs are skipped here; request validation catches them first.
func (o *Orchestrator) partition(sourceIDs []string) (residential, auctions []driven.SourceAdapter) {
	for _, id := range sourceIDs {
		adapter, err := o.registry.Get(id)
		if err != nil {
			logger.Warn("Skipping unknown source %q", id)
			continue
		}
		if adapter.Capabilities().Auction {
			auctions = append(auctions, adapter)
		} else {
			residential = append(residential, adapter)
		}
	}
	return residential, auctions
}

// roundUnits builds the (source, location) units for one round.
func (o *Orchestrator) roundUnits(adapters []driven.SourceAdapter, locations []string, filters driven.FetchFilters, round int) []unit {
	units := make([]unit, 0, len(adapters)*len(locations))
	for _, a := range adapters {
		for _, loc := range locations {
			units = append(units, unit{adapter: a, location: loc, filters: filters, round: round})
		}
	}
	return units
}

// runRound executes one round's units on the worker pool. Listings
// and outcomes are appended only after a unit completes; a unit never
// dispatched after cancellation is recorded as skipped.
func (o *Orchestrator) runRound(ctx context.Context, runID string, units []unit) ([]domain.RawListing, []domain.SourceRunOutcome) {
	jobs := make(chan unit)

	var mu sync.Mutex
	var raws []domain.RawListing
	outcomes := make([]domain.SourceRunOutcome, 0, len(units))

	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				listings, outcome := o.fetchUnit(ctx, runID, u)
				mu.Lock()
				raws = append(raws, listings...)
				outcomes = append(outcomes, outcome)
				mu.Unlock()
			}
		}()
	}

	skip := func(u unit) {
		mu.Lock()
		defer mu.Unlock()
		outcomes = append(outcomes, domain.SourceRunOutcome{
			RunID:     runID,
			SourceID:  u.adapter.ID(),
			Location:  u.location,
			Radius:    u.filters.Radius,
			Round:     u.round,
			Status:    domain.UnitSkipped,
			Err:       ctx.Err().Error(),
			StartedAt: time.Now(),
		})
	}

	for _, u := range units {
		if ctx.Err() != nil {
			skip(u)
			continue
		}
		select {
		case <-ctx.Done():
			skip(u)
		case jobs <- u:
		}
	}
	close(jobs)
	wg.Wait()

	return raws, outcomes
}

// fetchUnit runs a single adapter fetch under the hard timeout and
// classifies the outcome. Zero listings is a valid success.
func (o *Orchestrator) fetchUnit(ctx context.Context, runID string, u unit) ([]domain.RawListing, domain.SourceRunOutcome) {
	outcome := domain.SourceRunOutcome{
		RunID:     runID,
		SourceID:  u.adapter.ID(),
		Location:  u.location,
		Radius:    u.filters.Radius,
		Round:     u.round,
		StartedAt: time.Now(),
	}

	fetchCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	listings, err := u.adapter.Fetch(fetchCtx, u.location, u.filters)
	outcome.Elapsed = time.Since(outcome.StartedAt)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrSourceTimeout) {
			outcome.Status = domain.UnitTimeout
		} else {
			outcome.Status = domain.UnitError
		}
		outcome.Err = err.Error()
		logger.Debug("Fetch %s/%s failed: %v", u.adapter.ID(), u.location, err)
		return nil, outcome
	}

	for i := range listings {
		listings[i].SourceID = u.adapter.ID()
		listings[i].Location = u.location
	}

	outcome.Status = domain.UnitOK
	outcome.Listings = len(listings)
	return listings, outcome
}

// residentialCount counts merged properties of residential type.
func residentialCount(props []domain.Property) int {
	n := 0
	for i := range props {
		if props[i].Type.Residential() {
			n++
		}
	}
	return n
}
