package domain

import "time"

// ManifestVersion is the manifest schema version this build reads and
// writes. A manifest with any other version is treated as absent.
const ManifestVersion = 1

// ManifestEntry correlates a content hash with the document it produced.
// Its presence means ingestion for that exact content completed.
type ManifestEntry struct {
	// DocumentID is the document created for this content.
	DocumentID string `json:"documentId"`

	// SourceFile is the artifact path at ingestion time.
	SourceFile string `json:"sourceFile"`

	// SegmentCount is the number of segments created.
	SegmentCount int `json:"segmentCount"`

	// UploadedAt is when ingestion completed.
	UploadedAt time.Time `json:"uploadedAt"`
}

// Manifest is the persisted idempotency ledger for one ingestion root.
type Manifest struct {
	// Version is the schema version, currently 1.
	Version int `json:"version"`

	// Entries maps content hash (SHA-256 hex) to its entry.
	Entries map[string]ManifestEntry `json:"entries"`

	// UpdatedAt is when the manifest was last written.
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewManifest returns an empty manifest at the current version.
func NewManifest() *Manifest {
	return &Manifest{
		Version: ManifestVersion,
		Entries: make(map[string]ManifestEntry),
	}
}
