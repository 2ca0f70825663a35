package domain

import "time"

// UnitStatus is the terminal state of one (source, location) fetch.
type UnitStatus string

// UnitStatus values.
const (
	UnitOK      UnitStatus = "ok"
	UnitTimeout UnitStatus = "timeout"
	UnitError   UnitStatus = "error"
	UnitSkipped UnitStatus = "skipped"
)

// SourceRunOutcome records the execution of one (source, location) unit.
// Outcomes are surfaced for observability and drive radius expansion;
// they are not part of the final result set.
type SourceRunOutcome struct {
	// RunID groups outcomes belonging to the same orchestrator run.
	RunID string

	// SourceID and Location identify the unit.
	SourceID string
	Location string

	// Radius is the radius in miles the unit was fetched with.
	// Zero for location-independent auction sources.
	Radius float64

	// Round is the expansion round the unit ran in, starting at 0.
	Round int

	// Status is the terminal state of the fetch.
	Status UnitStatus

	// Listings is the count of raw listings returned. Zero is a valid,
	// non-error outcome.
	Listings int

	// Elapsed is the wall-clock fetch duration.
	Elapsed time.Duration

	// Err holds the failure message for timeout/error units.
	Err string

	// StartedAt is when the unit began fetching.
	StartedAt time.Time
}

// Failed reports whether the unit ended in timeout or error.
func (o *SourceRunOutcome) Failed() bool {
	return o.Status == UnitTimeout || o.Status == UnitError
}
