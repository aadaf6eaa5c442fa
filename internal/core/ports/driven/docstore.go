package driven

import (
	"context"

	"github.com/custodia-labs/satchel/internal/core/domain"
)

// ListQuery narrows and pages a document listing.
type ListQuery struct {
	// Limit is the maximum number of documents to return.
	Limit int

	// Offset is the number of documents to skip.
	Offset int

	// SourceKind filters by origin when non-empty.
	SourceKind domain.SourceKind

	// Tags filters to documents carrying ALL listed tags.
	Tags []string
}

// DocumentUpdate describes the only mutable document fields.
// The body is immutable; new content means a new document.
type DocumentUpdate struct {
	// Title replaces the document title when non-nil.
	Title *string

	// Tags are merged into the existing tag set.
	Tags []string
}

// DocumentStore persists documents and segments.
// Backed by SQLite for metadata storage.
type DocumentStore interface {
	// CreateDocument stores a new document, assigning its ID and
	// timestamps. The returned document carries the assigned fields.
	CreateDocument(ctx context.Context, doc *domain.Document) (*domain.Document, error)

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns matching documents newest-first plus the
	// total match count ignoring pagination.
	ListDocuments(ctx context.Context, q ListQuery) ([]*domain.Document, int, error)

	// UpdateDocument changes the title and/or merges tags.
	UpdateDocument(ctx context.Context, id string, upd DocumentUpdate) (*domain.Document, error)

	// DeleteDocument removes a document and cascades to its segments.
	DeleteDocument(ctx context.Context, id string) error

	// FindDocumentByHash retrieves the document with the given content
	// hash, or ErrNotFound. Used for ingestion dedup recovery.
	FindDocumentByHash(ctx context.Context, contentHash string) (*domain.Document, error)

	// CreateSegments stores a document's segment batch atomically:
	// either every segment is written or none are.
	CreateSegments(ctx context.Context, segments []domain.Segment) ([]domain.Segment, error)

	// GetSegments retrieves a document's segments ordered by index.
	GetSegments(ctx context.Context, documentID string) ([]domain.Segment, error)

	// GetSegment retrieves a specific segment by ID.
	GetSegment(ctx context.Context, id string) (*domain.Segment, error)
}
