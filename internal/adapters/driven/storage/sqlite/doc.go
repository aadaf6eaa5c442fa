// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements three store interfaces
// through a single database connection:
//
//   - DocumentStore: Document and segment persistence
//   - LexicalRanker: Full-text retrieval over an FTS5 index
//   - SemanticRanker: Vector retrieval over stored segment embeddings
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. The FTS5 index is an external-content table over
// documents(title, body), kept current by triggers so writers never touch
// it directly.
//
// Segment embeddings are stored as little-endian float32 BLOBs on the
// segments table. Semantic ranking is an exact cosine scan, which is the
// right trade at the corpus sizes a personal knowledge base reaches.
//
// # Data Location
//
// By default, the database is stored at ~/.satchel/data/satchel.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode, which also serialises concurrent writes to the same
// document.
package sqlite
