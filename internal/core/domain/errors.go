package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRequest indicates a malformed search request.
	// It is the only fatal error class: it is reported before any fetch begins.
	ErrInvalidRequest = errors.New("invalid search request")

	// ErrUnsupportedSource indicates an unknown source adapter identifier.
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrSourceTimeout indicates a single (source, location) fetch exceeded
	// its deadline. Recorded per unit, never fatal to the run.
	ErrSourceTimeout = errors.New("source timed out")

	// ErrSourceFailed indicates a structural per-unit failure: the external
	// page no longer matches expected selectors, or transport failed.
	// Recorded per unit, never fatal to the run.
	ErrSourceFailed = errors.New("source failed")

	// ErrMissingIdentityKey indicates a listing without a usable detail URL.
	// Such records cannot be deduplicated and are dropped, counted not raised.
	ErrMissingIdentityKey = errors.New("listing has no usable identity key")

	// ErrAnalyzerUnavailable indicates the semantic analysis provider is not
	// reachable. Semantic rescoring is skipped; heuristic scores are kept.
	ErrAnalyzerUnavailable = errors.New("semantic analyzer unavailable")

	// ErrRunInProgress indicates a scheduled refresh is already running.
	ErrRunInProgress = errors.New("run already in progress")

	// ErrRateLimited indicates an external site rejected us for making
	// requests too quickly.
	ErrRateLimited = errors.New("rate limited")
)
