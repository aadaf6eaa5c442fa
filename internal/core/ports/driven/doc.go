// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: Document and segment persistence
//   - LexicalRanker: Full-text ranking over the store's FTS projection
//   - ManifestStore: Ingestion idempotency ledger
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingProvider: Generates vector embeddings. Without it,
//     semantic search is disabled and ingestion stores segments
//     without vectors.
//   - SemanticRanker: Vector similarity ranking. Only useful when an
//     EmbeddingProvider is configured.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or service package
package driven
