// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The pipeline service composes the other services in order:
// orchestrator (fan-out across sources with radius expansion),
// canonicaliser (identity keys and merging), scorer (keyword and
// semantic scoring), enricher (area yield stats) and aggregator
// (filtering, ordering and the result document).
//
// Services are pure Go with no CGO or external dependencies.
package services
