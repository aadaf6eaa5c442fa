package domain

// SearchResult is one ranked segment with its parent document's
// denormalised display fields. Derived, never persisted.
type SearchResult struct {
	// Segment is the matched segment.
	Segment Segment

	// Score is the fused relevance score.
	Score float64

	// Title is the parent document's title.
	Title string

	// SourceKind is the parent document's origin.
	SourceKind SourceKind

	// Tags are the parent document's tags.
	Tags []string

	// Highlights contains snippets with matched terms.
	Highlights []string
}
