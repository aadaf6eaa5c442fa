package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/satchel/internal/core/domain"
	"github.com/custodia-labs/satchel/internal/core/ports/driving"
)

var (
	searchLimit    int
	searchFTWeight float64
	searchSWeight  float64
	searchTags     []string
	searchKind     string
	searchMinScore float64
	searchSemantic bool
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the knowledge store",
	Long: `Performs hybrid search across all stored documents.
Combines keyword (FTS5) and semantic (vector) relevance with
reciprocal rank fusion; weights tune the balance between the two.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results (unset: search.default_limit)")
	searchCmd.Flags().Float64Var(&searchFTWeight, "full-text-weight", 1.0, "weight of the keyword ranking (0-2)")
	searchCmd.Flags().Float64Var(&searchSWeight, "semantic-weight", 1.0, "weight of the semantic ranking (0-2)")
	searchCmd.Flags().StringArrayVarP(&searchTags, "tag", "t", nil, "only match documents carrying this tag (repeatable, all must match)")
	searchCmd.Flags().StringVar(&searchKind, "kind", "", "only match documents of this source kind (note|file|url)")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", 0, "drop results scoring below this (0-1)")
	searchCmd.Flags().BoolVar(&searchSemantic, "semantic", false, "rank purely by vector similarity, skipping the keyword leg")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	limit := searchLimit
	if !cmd.Flags().Changed("limit") && appSettings != nil && appSettings.Search.DefaultLimit > 0 {
		limit = appSettings.Search.DefaultLimit
	}

	if searchSemantic {
		return runSemanticSearch(cmd, args[0], limit)
	}

	req := driving.SearchRequest{
		Query:          args[0],
		Limit:          limit,
		FullTextWeight: searchFTWeight,
		SemanticWeight: searchSWeight,
		Tags:           searchTags,
		SourceKind:     domain.SourceKind(searchKind),
		MinScore:       searchMinScore,
	}

	results, err := searchService.Search(cmd.Context(), req)
	if err != nil {
		if domain.IsUnreachable(err) {
			return fmt.Errorf("search failed: %w (is the embedding service running?)", err)
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

// runSemanticSearch embeds the query and ranks by vector similarity
// alone.
func runSemanticSearch(cmd *cobra.Command, query string, limit int) error {
	if provider == nil {
		return fmt.Errorf("semantic search needs an embedding provider: %w", domain.ErrEmbeddingUnavailable)
	}

	vector, err := provider.EmbedOne(cmd.Context(), query)
	if err != nil {
		if domain.IsUnreachable(err) {
			return fmt.Errorf("embed query: %w (is the embedding service running?)", err)
		}
		return fmt.Errorf("embed query: %w", err)
	}

	results, err := searchService.SearchSemantic(cmd.Context(), vector, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		title := results[i].Title
		if title == "" {
			title = results[i].Segment.DocumentID
		}

		snippet := ""
		if len(results[i].Highlights) > 0 {
			snippet = results[i].Highlights[0]
		}

		cmd.Printf("  [%d] %s (%.4f)\n", i+1, title, results[i].Score)
		cmd.Printf("      %s  segment %d", results[i].SourceKind, results[i].Segment.Index)
		if len(results[i].Tags) > 0 {
			cmd.Printf("  tags: %v", results[i].Tags)
		}
		cmd.Println()
		if snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}

	return nil
}
