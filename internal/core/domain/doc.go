// Package domain defines the core business entities for Satchel.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A stored unit of retrievable content
//   - Segment: An embeddable, searchable slice of a document
//   - Artifact: Converter output entering the ingestion pipeline
//   - Manifest: The ingestion idempotency ledger
//   - SearchResult: A ranked segment with display fields
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
