package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/satchel/internal/core/domain"
	"github.com/custodia-labs/satchel/internal/core/ports/driven"
	"github.com/custodia-labs/satchel/internal/core/ports/driving"
	"github.com/custodia-labs/satchel/internal/logger"
)

// DefaultRRFK is the reciprocal rank fusion constant used when the
// config leaves it unset.
const DefaultRRFK = 60

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchConfig tunes the fusion stage.
type SearchConfig struct {
	// RRFK is the rank fusion smoothing constant. Zero means DefaultRRFK.
	RRFK int
}

// fusedHit holds a segment's fused score before hydration.
type fusedHit struct {
	segmentID  string
	documentID string
	index      int
	score      float64
}

// SearchService provides hybrid retrieval over the document store.
// The embedding provider is optional; without one, searches degrade to
// the lexical leg.
type SearchService struct {
	docStore driven.DocumentStore
	lexical  driven.LexicalRanker
	semantic driven.SemanticRanker
	provider driven.EmbeddingProvider
	rrfK     int
}

// NewSearchService creates a new search service.
// The provider parameter is optional (can be nil).
func NewSearchService(
	docStore driven.DocumentStore,
	lexical driven.LexicalRanker,
	semantic driven.SemanticRanker,
	provider driven.EmbeddingProvider,
	cfg SearchConfig,
) *SearchService {
	rrfK := cfg.RRFK
	if rrfK <= 0 {
		rrfK = DefaultRRFK
	}
	return &SearchService{
		docStore: docStore,
		lexical:  lexical,
		semantic: semantic,
		provider: provider,
		rrfK:     rrfK,
	}
}

// Search performs hybrid search across all stored documents.
func (s *SearchService) Search(ctx context.Context, req driving.SearchRequest) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")

	if s.docStore == nil || s.lexical == nil || s.semantic == nil {
		return nil, fmt.Errorf("document store is not configured: %w", domain.ErrNotConfigured)
	}
	if err := validateSearchRequest(&req); err != nil {
		return nil, err
	}
	logger.Debug("Query: %q, limit: %d, weights: lexical=%.2f semantic=%.2f",
		req.Query, req.Limit, req.FullTextWeight, req.SemanticWeight)

	// Fetch past the limit so post-filtering and vanished documents
	// cannot starve the result set.
	fetchLimit := req.Limit * 2
	if req.HasFilter() {
		fetchLimit = req.Limit * 3
	}
	logger.Debug("Fetch limit: %d", fetchLimit)

	runLex := req.FullTextWeight > 0
	runSem := req.SemanticWeight > 0

	var lexHits, semHits []driven.SegmentHit
	var lexErr, semErr error

	var wg sync.WaitGroup
	if runLex {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lexHits, lexErr = s.lexicalLeg(ctx, req.Query, fetchLimit)
		}()
	}
	if runSem {
		wg.Add(1)
		go func() {
			defer wg.Done()
			semHits, semErr = s.semanticLeg(ctx, req.Query, fetchLimit)
		}()
	}
	wg.Wait()

	// Degrade to the surviving leg when exactly one fails.
	switch {
	case lexErr != nil && semErr != nil:
		return nil, fmt.Errorf("search: %w", lexErr)
	case !runLex && semErr != nil:
		return nil, fmt.Errorf("search: %w", semErr)
	case !runSem && lexErr != nil:
		return nil, fmt.Errorf("search: %w", lexErr)
	case lexErr != nil:
		logger.Warn("Lexical search failed, using semantic results only: %v", lexErr)
		lexHits = nil
	case semErr != nil:
		logger.Warn("Semantic search failed, using lexical results only: %v", semErr)
		semHits = nil
	}

	logger.Debug("Leg results: %d lexical, %d semantic", len(lexHits), len(semHits))

	fused := s.fuse(lexHits, semHits, req.FullTextWeight, req.SemanticWeight)
	logger.Debug("Fused to %d candidates", len(fused))

	results, err := s.hydrate(ctx, fused, req.Query, req)
	if err != nil {
		return nil, fmt.Errorf("hydrate results: %w", err)
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}

// SearchSemantic ranks purely by vector similarity to a caller-supplied
// embedding.
func (s *SearchService) SearchSemantic(ctx context.Context, embedding []float32, limit int) ([]domain.SearchResult, error) {
	if s.docStore == nil || s.semantic == nil {
		return nil, fmt.Errorf("document store is not configured: %w", domain.ErrNotConfigured)
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("embedding is required: %w", domain.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > driving.MaxSearchLimit {
		return nil, fmt.Errorf("limit must be 1 to %d: %w", driving.MaxSearchLimit, domain.ErrInvalidArgument)
	}

	hits, err := s.semantic.RankSemantic(ctx, embedding, limit*2)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	fused := make([]fusedHit, len(hits))
	for i, hit := range hits {
		fused[i] = fusedHit{
			segmentID:  hit.SegmentID,
			documentID: hit.DocumentID,
			index:      hit.Index,
			score:      hit.Score,
		}
	}

	req := driving.SearchRequest{Limit: limit}
	return s.hydrate(ctx, fused, "", req)
}

// validateSearchRequest applies defaults and range checks in place.
func validateSearchRequest(req *driving.SearchRequest) error {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return fmt.Errorf("query is required: %w", domain.ErrInvalidArgument)
	}
	if len(req.Query) > driving.MaxQueryLength {
		return fmt.Errorf("query exceeds %d characters: %w", driving.MaxQueryLength, domain.ErrInvalidArgument)
	}

	if req.Limit == 0 {
		req.Limit = 10
	}
	if req.Limit < 1 || req.Limit > driving.MaxSearchLimit {
		return fmt.Errorf("limit must be 1 to %d: %w", driving.MaxSearchLimit, domain.ErrInvalidArgument)
	}

	if req.FullTextWeight < 0 || req.FullTextWeight > driving.MaxWeight {
		return fmt.Errorf("full-text weight must be 0 to %v: %w", driving.MaxWeight, domain.ErrInvalidArgument)
	}
	if req.SemanticWeight < 0 || req.SemanticWeight > driving.MaxWeight {
		return fmt.Errorf("semantic weight must be 0 to %v: %w", driving.MaxWeight, domain.ErrInvalidArgument)
	}
	if req.FullTextWeight == 0 && req.SemanticWeight == 0 {
		return fmt.Errorf("at least one weight must be positive: %w", domain.ErrInvalidArgument)
	}

	if req.MinScore < 0 || req.MinScore > 1 {
		return fmt.Errorf("min score must be 0 to 1: %w", domain.ErrInvalidArgument)
	}
	if req.SourceKind != "" && !req.SourceKind.IsValid() {
		return fmt.Errorf("unknown source kind %q: %w", req.SourceKind, domain.ErrInvalidArgument)
	}
	return nil
}

// lexicalLeg ranks segments by full-text relevance.
func (s *SearchService) lexicalLeg(ctx context.Context, query string, limit int) ([]driven.SegmentHit, error) {
	hits, err := s.lexical.RankLexical(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	logger.Debug("Lexical leg: %d hits", len(hits))
	return hits, nil
}

// semanticLeg embeds the query and ranks segments by vector distance.
func (s *SearchService) semanticLeg(ctx context.Context, query string, limit int) ([]driven.SegmentHit, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("embedding provider not configured: %w", domain.ErrNotConfigured)
	}

	embedding, err := s.provider.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	hits, err := s.semantic.RankSemantic(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	logger.Debug("Semantic leg: %d hits", len(hits))
	return hits, nil
}

// fuse merges the two ranked legs with weighted Reciprocal Rank Fusion.
// Each leg contributes weight/(k+rank) per hit, rank counted from 1; a
// segment absent from a leg contributes nothing for that leg.
func (s *SearchService) fuse(lexHits, semHits []driven.SegmentHit, fullTextWeight, semanticWeight float64) []fusedHit {
	byID := make(map[string]*fusedHit)
	ensure := func(hit driven.SegmentHit) *fusedHit {
		f, ok := byID[hit.SegmentID]
		if !ok {
			f = &fusedHit{
				segmentID:  hit.SegmentID,
				documentID: hit.DocumentID,
				index:      hit.Index,
			}
			byID[hit.SegmentID] = f
		}
		return f
	}

	for rank, hit := range lexHits {
		ensure(hit).score += fullTextWeight / float64(s.rrfK+rank+1)
	}
	for rank, hit := range semHits {
		ensure(hit).score += semanticWeight / float64(s.rrfK+rank+1)
	}

	fused := make([]fusedHit, 0, len(byID))
	for _, f := range byID {
		fused = append(fused, *f)
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].score != fused[j].score {
			return fused[i].score > fused[j].score
		}
		if fused[i].documentID != fused[j].documentID {
			return fused[i].documentID < fused[j].documentID
		}
		return fused[i].index < fused[j].index
	})

	return fused
}

// hydrate turns fused hits into full results, applying the post-fusion
// filters and the limit. Hits whose segment or document vanished are
// skipped rather than failing the search.
func (s *SearchService) hydrate(ctx context.Context, hits []fusedHit, query string, req driving.SearchRequest) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0, req.Limit)

	for _, hit := range hits {
		if req.MinScore > 0 && hit.score < req.MinScore {
			continue
		}

		seg, err := s.docStore.GetSegment(ctx, hit.segmentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get segment %s: %w", hit.segmentID, err)
		}

		doc, err := s.docStore.GetDocument(ctx, seg.DocumentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get document %s: %w", seg.DocumentID, err)
		}

		if req.SourceKind != "" && doc.SourceKind != req.SourceKind {
			continue
		}
		if !doc.HasTags(req.Tags) {
			continue
		}

		results = append(results, domain.SearchResult{
			Segment:    *seg,
			Score:      hit.score,
			Title:      doc.Title,
			SourceKind: doc.SourceKind,
			Tags:       doc.Tags,
			Highlights: generateHighlights(seg.Text, query),
		})

		if len(results) == req.Limit {
			break
		}
	}

	return results, nil
}

// generateHighlights creates up to three sentence snippets containing
// query terms, each capped at 200 characters.
func generateHighlights(content, query string) []string {
	queryTerms := strings.Fields(strings.ToLower(query))
	if len(queryTerms) == 0 {
		return nil
	}

	var highlights []string
	for _, sentence := range splitSentences(content) {
		sentenceLower := strings.ToLower(sentence)
		for _, term := range queryTerms {
			if strings.Contains(sentenceLower, term) {
				highlight := sentence
				if len(highlight) > 200 {
					highlight = highlight[:200] + "..."
				}
				highlights = append(highlights, highlight)
				break
			}
		}
		if len(highlights) >= 3 {
			break
		}
	}

	return highlights
}

// splitSentences splits content into sentences by common terminators.
func splitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
