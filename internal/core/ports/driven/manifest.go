package driven

import "github.com/custodia-labs/satchel/internal/core/domain"

// ManifestStore persists the ingestion idempotency ledger.
// Implementations must serialise access so two concurrent workers can
// never both observe a hash as absent and double-record it; writes are
// load-merge-save per completed artifact, not per batch.
type ManifestStore interface {
	// Has reports whether the content hash is already recorded.
	Has(hash string) (bool, error)

	// Get retrieves the entry for a content hash, or ErrNotFound.
	Get(hash string) (*domain.ManifestEntry, error)

	// Record stores an entry for a content hash, persisting
	// immediately. Recording an existing hash overwrites its entry.
	Record(hash string, entry domain.ManifestEntry) error

	// Remove deletes the entry for a content hash, persisting
	// immediately. Removing an absent hash is a no-op.
	Remove(hash string) error

	// Entries returns a copy of the hash to entry mapping.
	Entries() (map[string]domain.ManifestEntry, error)
}
