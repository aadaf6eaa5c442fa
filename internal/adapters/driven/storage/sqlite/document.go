package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/satchel/internal/core/domain"
	"github.com/custodia-labs/satchel/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// scanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

const documentColumns = "id, title, source_kind, body, content_hash, tags, metadata, created_at, updated_at"

const segmentColumns = "id, document_id, position, start_offset, end_offset, content, token_count, embedding, metadata"

// CreateDocument stores a new document, assigning ID and timestamps.
func (s *documentStore) CreateDocument(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	created := *doc
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	tagsJSON, err := marshalTags(created.Tags)
	if err != nil {
		return nil, err
	}
	metadataJSON, err := json.Marshal(created.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshalling metadata: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, created.ID, created.Title, string(created.SourceKind), created.Body,
		created.ContentHash, tagsJSON, string(metadataJSON),
		created.CreatedAt, created.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("inserting document: %w", err)
	}
	return &created, nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+` FROM documents WHERE id = ?
	`, id)

	return scanDocument(row)
}

// ListDocuments returns matching documents newest-first plus the total
// match count ignoring pagination.
func (s *documentStore) ListDocuments(ctx context.Context, q driven.ListQuery) ([]*domain.Document, int, error) {
	where, args := listFilter(q)

	var total int
	if err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting documents: %w", err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+documentColumns+` FROM documents`+where+`
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, total, nil
}

// listFilter builds the WHERE clause for a ListQuery.
func listFilter(q driven.ListQuery) (string, []any) {
	var conds []string
	var args []any

	if q.SourceKind != "" {
		conds = append(conds, "source_kind = ?")
		args = append(args, string(q.SourceKind))
	}
	for _, tag := range q.Tags {
		conds = append(conds, "EXISTS (SELECT 1 FROM json_each(documents.tags) WHERE json_each.value = ?)")
		args = append(args, tag)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// UpdateDocument changes the title and/or merges tags. The body is
// immutable.
func (s *documentStore) UpdateDocument(ctx context.Context, id string, upd driven.DocumentUpdate) (*domain.Document, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		doc.Title = *upd.Title
	}
	doc.MergeTags(upd.Tags)
	doc.UpdatedAt = time.Now().UTC()

	tagsJSON, err := marshalTags(doc.Tags)
	if err != nil {
		return nil, err
	}

	_, err = s.store.db.ExecContext(ctx, `
		UPDATE documents SET title = ?, tags = ?, updated_at = ?
		WHERE id = ?
	`, doc.Title, tagsJSON, doc.UpdatedAt, id)

	if err != nil {
		return nil, fmt.Errorf("updating document: %w", err)
	}
	return doc, nil
}

// DeleteDocument removes a document; segments cascade.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindDocumentByHash retrieves the newest document with the given
// content hash.
func (s *documentStore) FindDocumentByHash(ctx context.Context, contentHash string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE content_hash = ?
		ORDER BY created_at DESC, id
		LIMIT 1
	`, contentHash)

	return scanDocument(row)
}

// CreateSegments stores a document's segment batch in one transaction.
func (s *documentStore) CreateSegments(ctx context.Context, segments []domain.Segment) ([]domain.Segment, error) {
	if len(segments) == 0 {
		return nil, nil
	}

	docID := segments[0].DocumentID
	for _, seg := range segments[1:] {
		if seg.DocumentID != docID {
			return nil, fmt.Errorf("segment batch spans documents %s and %s: %w",
				docID, seg.DocumentID, domain.ErrInvalidArgument)
		}
	}

	if err := s.checkDimensions(ctx, segments); err != nil {
		return nil, err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segments (`+segmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	created := make([]domain.Segment, len(segments))
	for i, seg := range segments {
		if seg.ID == "" {
			seg.ID = uuid.NewString()
		}
		metadataJSON, err := json.Marshal(seg.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshalling segment metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, seg.ID, seg.DocumentID, seg.Index,
			seg.StartOffset, seg.EndOffset, seg.Text, seg.TokenCount,
			float32SliceToBytes(seg.Embedding), string(metadataJSON)); err != nil {
			return nil, fmt.Errorf("inserting segment %d: %w", seg.Index, err)
		}
		created[i] = seg
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return created, nil
}

// checkDimensions rejects a batch whose embeddings disagree with each
// other or with what the store already holds.
func (s *documentStore) checkDimensions(ctx context.Context, segments []domain.Segment) error {
	dims := 0
	for _, seg := range segments {
		if len(seg.Embedding) == 0 {
			continue
		}
		if dims == 0 {
			dims = len(seg.Embedding)
			continue
		}
		if len(seg.Embedding) != dims {
			return fmt.Errorf("batch mixes %d and %d dimension embeddings: %w",
				dims, len(seg.Embedding), domain.ErrDimensionMismatch)
		}
	}
	if dims == 0 {
		return nil
	}

	var stored int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT length(embedding)/4 FROM segments WHERE embedding IS NOT NULL LIMIT 1").Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking stored dimensions: %w", err)
	}
	if stored != dims {
		return fmt.Errorf("store holds %d dimension embeddings, batch has %d: %w",
			stored, dims, domain.ErrDimensionMismatch)
	}
	return nil
}

// GetSegments retrieves a document's segments ordered by position.
func (s *documentStore) GetSegments(ctx context.Context, documentID string) ([]domain.Segment, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+segmentColumns+` FROM segments
		WHERE document_id = ?
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying segments: %w", err)
	}
	defer rows.Close()

	var segments []domain.Segment //nolint:prealloc // size unknown from query
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, *seg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating segments: %w", err)
	}

	return segments, nil
}

// GetSegment retrieves a specific segment by ID.
func (s *documentStore) GetSegment(ctx context.Context, id string) (*domain.Segment, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+segmentColumns+` FROM segments WHERE id = ?
	`, id)

	return scanSegment(row)
}

// marshalTags serialises tags as a JSON array, never null.
func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("marshalling tags: %w", err)
	}
	return string(b), nil
}

// scanDocument scans a document from a row or rows.
func scanDocument(sc scanner) (*domain.Document, error) {
	var doc domain.Document
	var sourceKind, tagsJSON string
	var metadataJSON sql.NullString

	if err := sc.Scan(&doc.ID, &doc.Title, &sourceKind, &doc.Body, &doc.ContentHash,
		&tagsJSON, &metadataJSON, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.SourceKind = domain.SourceKind(sourceKind)

	if err := json.Unmarshal([]byte(tagsJSON), &doc.Tags); err != nil {
		return nil, fmt.Errorf("unmarshalling tags: %w", err)
	}
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
	}

	return &doc, nil
}

// scanSegment scans a segment from a row or rows.
func scanSegment(sc scanner) (*domain.Segment, error) {
	var seg domain.Segment
	var embeddingBlob []byte
	var metadataJSON sql.NullString

	if err := sc.Scan(&seg.ID, &seg.DocumentID, &seg.Index, &seg.StartOffset,
		&seg.EndOffset, &seg.Text, &seg.TokenCount, &embeddingBlob, &metadataJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning segment: %w", err)
	}

	seg.Embedding = bytesToFloat32Slice(embeddingBlob)

	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &seg.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling segment metadata: %w", err)
		}
	}

	return &seg, nil
}
