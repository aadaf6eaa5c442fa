package driven

import "context"

// SegmentHit is one ranked segment from a single retrieval leg.
// Hits arrive best-first; callers assign 1-based ranks by position.
type SegmentHit struct {
	// SegmentID is the matched segment.
	SegmentID string

	// DocumentID is the segment's parent document.
	DocumentID string

	// Index is the segment's ordinal within its document, carried so
	// fusion can tie-break deterministically without a fetch.
	Index int

	// Score is the leg-specific relevance (BM25 weight or cosine
	// similarity). Informational; fusion uses rank position only.
	Score float64
}

// LexicalRanker ranks segments by full-text relevance of their parent
// document. The lexical index is a derived projection of document
// title + body, maintained by the store itself, so there are no index
// mutation methods here.
type LexicalRanker interface {
	// RankLexical returns up to limit segments whose parent document
	// matches the query, best match first.
	RankLexical(ctx context.Context, query string, limit int) ([]SegmentHit, error)
}
