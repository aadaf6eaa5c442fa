package driven

import "context"

// SemanticRanker ranks segments by vector distance to a query
// embedding. Only segments with a stored embedding participate.
// Backed by an exact scan over the store's vectors; the corpus sizes
// this tool targets make an approximate index unnecessary.
type SemanticRanker interface {
	// RankSemantic returns up to limit segments nearest to the query
	// vector, nearest first.
	RankSemantic(ctx context.Context, embedding []float32, limit int) ([]SegmentHit, error)
}
