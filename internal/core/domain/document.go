package domain

import "time"

// SourceKind classifies where a document's content came from.
type SourceKind string

// Available source kinds.
const (
	// SourceKindNote is directly captured text.
	SourceKindNote SourceKind = "note"

	// SourceKindFile is content extracted from a local file.
	SourceKindFile SourceKind = "file"

	// SourceKindURL is content extracted from a web page.
	SourceKindURL SourceKind = "url"
)

// IsValid returns true if the source kind is recognised.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindNote, SourceKindFile, SourceKindURL:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k SourceKind) String() string {
	return string(k)
}

// AllSourceKinds returns every recognised source kind.
func AllSourceKinds() []SourceKind {
	return []SourceKind{SourceKindNote, SourceKindFile, SourceKindURL}
}

// Document is a unit of retrievable content.
// Its body is immutable after creation; only title and tags may change.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable title.
	Title string

	// SourceKind classifies the document's origin.
	SourceKind SourceKind

	// Body is the full normalised text content.
	// Body never changes after creation; new content means a new Document.
	Body string

	// ContentHash is the SHA-256 hex digest of Body, used for
	// ingestion dedup and crash recovery.
	ContentHash string

	// Tags are free-form labels used for filtering.
	Tags []string

	// Metadata contains arbitrary key-value pairs from the converter.
	Metadata map[string]any

	// CreatedAt is when the document was first stored.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// HasTags returns true if the document carries every tag in want.
func (d *Document) HasTags(want []string) bool {
	if len(want) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(d.Tags))
	for _, t := range d.Tags {
		have[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := have[t]; !ok {
			return false
		}
	}
	return true
}

// MergeTags unions new tags into the document's tag set,
// preserving the order of existing tags.
func (d *Document) MergeTags(tags []string) {
	have := make(map[string]struct{}, len(d.Tags))
	for _, t := range d.Tags {
		have[t] = struct{}{}
	}
	for _, t := range tags {
		if _, ok := have[t]; !ok {
			d.Tags = append(d.Tags, t)
			have[t] = struct{}{}
		}
	}
}

// Segment is a contiguous, possibly overlapping slice of a document's
// body sized for embedding. Segments are the unit of search.
type Segment struct {
	// ID is the unique identifier for the segment.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Index is the zero-based ordinal within the document.
	Index int

	// StartOffset is the starting character offset into the
	// normalised body (inclusive).
	StartOffset int

	// EndOffset is the ending character offset (exclusive).
	EndOffset int

	// Text is the segment content, always equal to the
	// normalised body sliced at [StartOffset, EndOffset).
	Text string

	// TokenCount is the approximate token count of Text.
	TokenCount int

	// Embedding is the vector representation, nil until embedded.
	Embedding []float32

	// Metadata contains segment-specific key-value pairs.
	Metadata map[string]any
}
