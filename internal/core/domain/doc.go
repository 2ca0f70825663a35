// Package domain defines the core business entities for Propscout.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawListing: A source-scoped listing as returned by a source adapter
//   - Property: A canonical, deduplicated property with typed fields
//   - ScoreResult: The investment score attached to a property
//   - SearchRequest: The immutable input to a pipeline run
//   - SourceRunOutcome: The execution record for one (source, location) unit
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
