// Package driving defines interfaces that external actors (the CLI) use
// to interact with core services. These are the "driving" ports in hexagonal
// architecture terminology - they drive the application.
//
// Implementations of these interfaces live in internal/core/services:
//
//   - IngestOrchestrator: artifact batches in, documents + report out
//   - SearchService: hybrid and semantic-only retrieval
//   - DocumentService: document inspection and curation
//   - SettingsService: typed access to persisted configuration
package driving
