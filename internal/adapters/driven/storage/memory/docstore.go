// Package memory provides in-memory implementations of the storage
// ports. They back tests and require no setup; data is lost on exit.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/satchel/internal/core/domain"
	"github.com/custodia-labs/satchel/internal/core/ports/driven"
)

// Ensure DocumentStore implements the storage ports.
var (
	_ driven.DocumentStore  = (*DocumentStore)(nil)
	_ driven.LexicalRanker  = (*DocumentStore)(nil)
	_ driven.SemanticRanker = (*DocumentStore)(nil)
)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// It also serves both ranker ports over the same data.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	segments  map[string][]domain.Segment
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		segments:  make(map[string][]domain.Segment),
	}
}

// CreateDocument stores a new document, assigning ID and timestamps.
func (s *DocumentStore) CreateDocument(_ context.Context, doc *domain.Document) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *doc
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	s.documents[created.ID] = created
	return &created, nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns matching documents newest-first plus the total
// match count ignoring pagination.
func (s *DocumentStore) ListDocuments(_ context.Context, q driven.ListQuery) ([]*domain.Document, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.Document
	for _, doc := range s.documents {
		if q.SourceKind != "" && doc.SourceKind != q.SourceKind {
			continue
		}
		if !doc.HasTags(q.Tags) {
			continue
		}
		matched = append(matched, doc)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)

	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	matched = matched[offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	docs := make([]*domain.Document, len(matched))
	for i := range matched {
		docs[i] = &matched[i]
	}
	return docs, total, nil
}

// UpdateDocument changes the title and/or merges tags.
func (s *DocumentStore) UpdateDocument(_ context.Context, id string, upd driven.DocumentUpdate) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	if upd.Title != nil {
		doc.Title = *upd.Title
	}
	doc.MergeTags(upd.Tags)
	doc.UpdatedAt = time.Now().UTC()

	s.documents[id] = doc
	return &doc, nil
}

// DeleteDocument removes a document and its segments.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	delete(s.segments, id)
	return nil
}

// FindDocumentByHash retrieves the newest document with the given
// content hash.
func (s *DocumentStore) FindDocumentByHash(_ context.Context, contentHash string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if doc.ContentHash != contentHash {
			continue
		}
		if found == nil || doc.CreatedAt.After(found.CreatedAt) {
			found = &doc
		}
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return found, nil
}

// CreateSegments stores a document's segment batch.
func (s *DocumentStore) CreateSegments(_ context.Context, segments []domain.Segment) ([]domain.Segment, error) {
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

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkDimensions(segments); err != nil {
		return nil, err
	}

	created := make([]domain.Segment, len(segments))
	for i, seg := range segments {
		if seg.ID == "" {
			seg.ID = uuid.NewString()
		}
		created[i] = seg
	}

	stored := append(s.segments[docID], created...)
	sort.Slice(stored, func(i, j int) bool { return stored[i].Index < stored[j].Index })
	s.segments[docID] = stored

	return created, nil
}

// checkDimensions rejects a batch whose embeddings disagree with each
// other or with what the store already holds. Caller holds the lock.
func (s *DocumentStore) checkDimensions(segments []domain.Segment) error {
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

	for _, segs := range s.segments {
		for _, seg := range segs {
			if len(seg.Embedding) == 0 {
				continue
			}
			if len(seg.Embedding) != dims {
				return fmt.Errorf("store holds %d dimension embeddings, batch has %d: %w",
					len(seg.Embedding), dims, domain.ErrDimensionMismatch)
			}
			return nil
		}
	}
	return nil
}

// GetSegments retrieves a document's segments ordered by index.
func (s *DocumentStore) GetSegments(_ context.Context, documentID string) ([]domain.Segment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	segs, ok := s.segments[documentID]
	if !ok {
		return nil, nil
	}
	out := make([]domain.Segment, len(segs))
	copy(out, segs)
	return out, nil
}

// GetSegment retrieves a specific segment by ID.
func (s *DocumentStore) GetSegment(_ context.Context, id string) (*domain.Segment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, segs := range s.segments {
		for _, seg := range segs {
			if seg.ID == id {
				return &seg, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// RankLexical scores documents by how many query terms appear in their
// title or body, then emits every segment of each matching document.
func (s *DocumentStore) RankLexical(_ context.Context, query string, limit int) ([]driven.SegmentHit, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type docScore struct {
		id    string
		score float64
	}
	var scored []docScore
	for id, doc := range s.documents {
		haystack := strings.ToLower(doc.Title + " " + doc.Body)
		matched := 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				matched++
			}
		}
		if matched > 0 {
			scored = append(scored, docScore{id: id, score: float64(matched)})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].id < scored[j].id
	})

	var hits []driven.SegmentHit
	for _, ds := range scored {
		for _, seg := range s.segments[ds.id] {
			hits = append(hits, driven.SegmentHit{
				SegmentID:  seg.ID,
				DocumentID: ds.id,
				Index:      seg.Index,
				Score:      ds.score,
			})
			if len(hits) == limit {
				return hits, nil
			}
		}
	}
	return hits, nil
}

// RankSemantic scans stored embeddings and ranks by cosine similarity.
func (s *DocumentStore) RankSemantic(_ context.Context, embedding []float32, limit int) ([]driven.SegmentHit, error) {
	if len(embedding) == 0 || limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []driven.SegmentHit
	for docID, segs := range s.segments {
		for _, seg := range segs {
			if len(seg.Embedding) != len(embedding) {
				continue
			}
			hits = append(hits, driven.SegmentHit{
				SegmentID:  seg.ID,
				DocumentID: docID,
				Index:      seg.Index,
				Score:      cosineSimilarity(embedding, seg.Embedding),
			})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].DocumentID != hits[j].DocumentID {
			return hits[i].DocumentID < hits[j].DocumentID
		}
		return hits[i].Index < hits[j].Index
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// or 0 when lengths differ or either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
