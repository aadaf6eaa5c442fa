package driving

import (
	"context"

	"github.com/custodia-labs/satchel/internal/core/domain"
)

// ListDocumentsRequest narrows and pages a document listing.
type ListDocumentsRequest struct {
	// Limit is the maximum number of documents to return. Default 20.
	Limit int

	// Offset is the number of documents to skip.
	Offset int

	// SourceKind filters by origin when non-empty.
	SourceKind domain.SourceKind

	// Tags filters to documents carrying ALL listed tags.
	Tags []string
}

// DocumentService manages stored documents.
type DocumentService interface {
	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns matching documents newest-first plus the total
	// match count ignoring pagination.
	List(ctx context.Context, req ListDocumentsRequest) ([]*domain.Document, int, error)

	// Update changes a document's title and/or merges tags. The body
	// is immutable; re-ingest to change content.
	Update(ctx context.Context, id string, title *string, tags []string) (*domain.Document, error)

	// Delete removes a document, its segments, and its manifest entry
	// so the content can be ingested again.
	Delete(ctx context.Context, id string) error

	// Segments retrieves a document's segments ordered by index.
	Segments(ctx context.Context, id string) ([]domain.Segment, error)
}
