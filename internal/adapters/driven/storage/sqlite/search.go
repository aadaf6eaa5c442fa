package sqlite

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/satchel/internal/core/ports/driven"
)

// lexicalRanker implements driven.LexicalRanker over the FTS5 index.
// Documents match as a whole; their segments are returned in document
// relevance order, then by position within the document.
type lexicalRanker struct {
	store *Store
}

var _ driven.LexicalRanker = (*lexicalRanker)(nil)

// RankLexical returns up to limit segments of documents matching the
// query, best document first.
func (r *lexicalRanker) RankLexical(ctx context.Context, query string, limit int) ([]driven.SegmentHit, error) {
	match := ftsQuery(query)
	if match == "" || limit <= 0 {
		return nil, nil
	}

	// bm25() is lower-is-better, so ascending order puts the best
	// match first. The hit score negates it to read higher-is-better.
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT s.id, s.document_id, s.position, -bm25(documents_fts) AS score
		FROM documents_fts
		JOIN documents d ON d.rowid = documents_fts.rowid
		JOIN segments s ON s.document_id = d.id
		WHERE documents_fts MATCH ?
		ORDER BY bm25(documents_fts), s.document_id, s.position
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("querying full-text index: %w", err)
	}
	defer rows.Close()

	var hits []driven.SegmentHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var hit driven.SegmentHit
		if err := rows.Scan(&hit.SegmentID, &hit.DocumentID, &hit.Index, &hit.Score); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hits: %w", err)
	}

	return hits, nil
}

// ftsQuery rewrites free text into an FTS5 OR query of quoted terms,
// so user input cannot inject FTS5 syntax.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(term, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " OR ")
}

// semanticRanker implements driven.SemanticRanker with an exact cosine
// scan over stored segment embeddings.
type semanticRanker struct {
	store *Store
}

var _ driven.SemanticRanker = (*semanticRanker)(nil)

// RankSemantic returns up to limit segments nearest to the query
// vector. Segments without an embedding, or with an embedding of a
// different dimension, do not participate.
func (r *semanticRanker) RankSemantic(ctx context.Context, embedding []float32, limit int) ([]driven.SegmentHit, error) {
	if len(embedding) == 0 || limit <= 0 {
		return nil, nil
	}

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, document_id, position, embedding
		FROM segments
		WHERE embedding IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("querying segment embeddings: %w", err)
	}
	defer rows.Close()

	var hits []driven.SegmentHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var hit driven.SegmentHit
		var blob []byte
		if err := rows.Scan(&hit.SegmentID, &hit.DocumentID, &hit.Index, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}

		candidate := bytesToFloat32Slice(blob)
		if len(candidate) != len(embedding) {
			continue
		}

		hit.Score = cosineSimilarity(embedding, candidate)
		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
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
