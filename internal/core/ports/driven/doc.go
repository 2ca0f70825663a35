// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - SourceAdapter: Fetches raw listings from one portal or auction house
//   - AdapterRegistry: Selects adapters by source identifier
//   - ConfigStore: Application configuration
//   - ResultExporter: Writes the result document for consumers
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - SemanticAnalyzer: Semantic rescoring. Without it, scores stay heuristic.
//   - AreaStatsProvider: Area price/rent lookups. Without it, no ROI fields.
//   - RunStore: Run history persistence. Without it, outcomes are not kept.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or source package
package driven
