package driving

import (
	"context"

	"github.com/custodia-labs/satchel/internal/core/domain"
)

// Bounds for SearchRequest validation.
const (
	// MaxQueryLength is the longest accepted query string.
	MaxQueryLength = 10000

	// MaxSearchLimit is the largest accepted result limit.
	MaxSearchLimit = 50

	// MaxWeight is the largest accepted fusion weight.
	MaxWeight = 2.0
)

// SearchRequest carries a query and its knobs. Build one with
// DefaultSearchRequest to get the documented defaults; the zero value
// fails validation.
type SearchRequest struct {
	// Query is the search text, 1 to MaxQueryLength characters.
	Query string

	// Limit is the maximum number of results, 1 to MaxSearchLimit.
	Limit int

	// FullTextWeight scales the lexical leg's fused contribution, 0-2.
	FullTextWeight float64

	// SemanticWeight scales the semantic leg's fused contribution, 0-2.
	SemanticWeight float64

	// Tags filters results to documents carrying ALL listed tags.
	Tags []string

	// SourceKind filters results by document origin when non-empty.
	SourceKind domain.SourceKind

	// MinScore drops results whose fused score is below it, 0-1.
	MinScore float64
}

// HasFilter reports whether any post-fusion filter is set.
func (r SearchRequest) HasFilter() bool {
	return len(r.Tags) > 0 || r.SourceKind != "" || r.MinScore > 0
}

// DefaultSearchRequest returns a request for query with the documented
// defaults: limit 10, both weights 1.0, no filters.
func DefaultSearchRequest(query string) SearchRequest {
	return SearchRequest{
		Query:          query,
		Limit:          10,
		FullTextWeight: 1.0,
		SemanticWeight: 1.0,
	}
}

// SearchService provides retrieval to external actors.
type SearchService interface {
	// Search performs hybrid search across all stored documents,
	// embedding the query itself when a provider is available. A
	// missing provider degrades to lexical-only rather than failing.
	Search(ctx context.Context, req SearchRequest) ([]domain.SearchResult, error)

	// SearchSemantic ranks purely by vector similarity to a
	// caller-supplied embedding. Used when lexical matching is
	// inapplicable, e.g. an empty query string.
	SearchSemantic(ctx context.Context, embedding []float32, limit int) ([]domain.SearchResult, error)
}
