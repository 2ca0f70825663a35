package domain

import "fmt"

// ScoringMode selects how properties are scored.
type ScoringMode int

// Scoring modes.
const (
	// ScoringHeuristic applies the keyword rule table only.
	ScoringHeuristic ScoringMode = iota

	// ScoringSemantic applies the rule table, then blends in a semantic
	// analysis pass over top candidates. Degrades to heuristic-only when
	// the analyzer is unavailable.
	ScoringSemantic
)

// SearchRequest is the immutable input to a pipeline run.
// Construct it once, validate it, and thread it through every call;
// it is never mutated after construction.
type SearchRequest struct {
	// Locations holds one or more place names. The named set "england"
	// expands to the nationwide city catalogue.
	Locations []string

	// Radius is the search radius in miles around each location.
	Radius float64

	// MinPrice and MaxPrice bound the asking price in pounds.
	// Zero MaxPrice means unbounded.
	MinPrice int
	MaxPrice int

	// PropertyTypes restricts results to the given types. Empty = all.
	PropertyTypes []PropertyType

	// Tenures restricts results to the given tenures. Empty = all.
	Tenures []Tenure

	// Sources selects the adapters to query by ID.
	Sources []string

	// AllowLeasehold disables the hard leasehold/shared-ownership
	// exclusion applied during scoring.
	AllowLeasehold bool

	// ExcludeLand removes land-typed properties from the result set.
	ExcludeLand bool

	// ExcludeAuctions removes auction listings from the result set.
	ExcludeAuctions bool

	// Mode selects heuristic-only or heuristic+semantic scoring.
	Mode ScoringMode
}

// Validate checks the request invariants. All violations are reported as
// ErrInvalidRequest; this is the only fatal error class in the pipeline
// and is raised before any fetch begins.
func (r *SearchRequest) Validate() error {
	if len(r.Locations) == 0 {
		return fmt.Errorf("%w: at least one location is required", ErrInvalidRequest)
	}
	if len(r.Sources) == 0 {
		return fmt.Errorf("%w: at least one source must be selected", ErrInvalidRequest)
	}
	if r.Radius <= 0 {
		return fmt.Errorf("%w: radius must be positive, got %.2f", ErrInvalidRequest, r.Radius)
	}
	if r.MinPrice < 0 {
		return fmt.Errorf("%w: min price must not be negative", ErrInvalidRequest)
	}
	if r.MaxPrice > 0 && r.MinPrice > r.MaxPrice {
		return fmt.Errorf("%w: min price %d exceeds max price %d", ErrInvalidRequest, r.MinPrice, r.MaxPrice)
	}
	return nil
}

// WantsType reports whether the request's type filter admits t.
func (r *SearchRequest) WantsType(t PropertyType) bool {
	if len(r.PropertyTypes) == 0 {
		return true
	}
	for _, pt := range r.PropertyTypes {
		if pt == t {
			return true
		}
	}
	return false
}

// WantsTenure reports whether the request's tenure filter admits t.
func (r *SearchRequest) WantsTenure(t Tenure) bool {
	if len(r.Tenures) == 0 {
		return true
	}
	for _, tn := range r.Tenures {
		if tn == t {
			return true
		}
	}
	return false
}
