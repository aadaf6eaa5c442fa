package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/satchel/internal/core/domain"
	"github.com/custodia-labs/satchel/internal/core/ports/driven"
	"github.com/custodia-labs/satchel/internal/core/ports/driving"
	"github.com/custodia-labs/satchel/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DefaultListLimit pages document listings when the caller does not
// choose a page size.
const DefaultListLimit = 20

// DocumentService manages stored documents: inspection, curation of
// title and tags, and removal. Content changes go through ingestion,
// never through this service.
type DocumentService struct {
	docStore driven.DocumentStore
	manifest driven.ManifestStore
}

// NewDocumentService creates a new document service. The manifest is
// optional; without one, deletes leave stale manifest entries behind.
func NewDocumentService(docStore driven.DocumentStore, manifest driven.ManifestStore) *DocumentService {
	return &DocumentService{
		docStore: docStore,
		manifest: manifest,
	}
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	if s.docStore == nil {
		return nil, fmt.Errorf("document store is not configured: %w", domain.ErrNotConfigured)
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("document id is required: %w", domain.ErrInvalidArgument)
	}
	return s.docStore.GetDocument(ctx, id)
}

// List returns matching documents newest-first plus the total match
// count ignoring pagination.
func (s *DocumentService) List(ctx context.Context, req driving.ListDocumentsRequest) ([]*domain.Document, int, error) {
	if s.docStore == nil {
		return nil, 0, fmt.Errorf("document store is not configured: %w", domain.ErrNotConfigured)
	}
	if req.Limit < 0 || req.Offset < 0 {
		return nil, 0, fmt.Errorf("limit and offset must not be negative: %w", domain.ErrInvalidArgument)
	}
	if req.Limit == 0 {
		req.Limit = DefaultListLimit
	}
	if req.SourceKind != "" && !req.SourceKind.IsValid() {
		return nil, 0, fmt.Errorf("unknown source kind %q: %w", req.SourceKind, domain.ErrInvalidArgument)
	}

	return s.docStore.ListDocuments(ctx, driven.ListQuery{
		Limit:      req.Limit,
		Offset:     req.Offset,
		SourceKind: req.SourceKind,
		Tags:       req.Tags,
	})
}

// Update changes a document's title and/or merges tags. Passing a nil
// title leaves it untouched; tags are unioned into the existing set.
func (s *DocumentService) Update(ctx context.Context, id string, title *string, tags []string) (*domain.Document, error) {
	if s.docStore == nil {
		return nil, fmt.Errorf("document store is not configured: %w", domain.ErrNotConfigured)
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("document id is required: %w", domain.ErrInvalidArgument)
	}
	if title == nil && len(tags) == 0 {
		return nil, fmt.Errorf("nothing to update: %w", domain.ErrInvalidArgument)
	}
	if title != nil && strings.TrimSpace(*title) == "" {
		return nil, fmt.Errorf("title must not be empty: %w", domain.ErrInvalidArgument)
	}

	updated, err := s.docStore.UpdateDocument(ctx, id, driven.DocumentUpdate{
		Title: title,
		Tags:  tags,
	})
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	logger.Debug("Updated document %s", id)
	return updated, nil
}

// Delete removes a document, its segments, and its manifest entry so
// the same content can be ingested again later.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if s.docStore == nil {
		return fmt.Errorf("document store is not configured: %w", domain.ErrNotConfigured)
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("document id is required: %w", domain.ErrInvalidArgument)
	}

	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	if err := s.docStore.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	// A stale manifest entry would make re-ingestion of the same
	// content a silent no-op.
	if s.manifest != nil && doc.ContentHash != "" {
		if err := s.manifest.Remove(doc.ContentHash); err != nil {
			logger.Warn("Could not remove manifest entry for deleted document %s: %v", id, err)
		}
	}

	logger.Debug("Deleted document %s", id)
	return nil
}

// Segments retrieves a document's segments ordered by index.
func (s *DocumentService) Segments(ctx context.Context, id string) ([]domain.Segment, error) {
	if s.docStore == nil {
		return nil, fmt.Errorf("document store is not configured: %w", domain.ErrNotConfigured)
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("document id is required: %w", domain.ErrInvalidArgument)
	}

	// Check the document exists so an unknown ID is NotFound rather
	// than an empty slice.
	if _, err := s.docStore.GetDocument(ctx, id); err != nil {
		return nil, err
	}
	return s.docStore.GetSegments(ctx, id)
}
