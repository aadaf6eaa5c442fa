package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/satchel/internal/core/domain"
	"github.com/custodia-labs/satchel/internal/core/ports/driving"
)

var (
	docsLimit    int
	docsOffset   int
	docsKind     string
	docsTags     []string
	docsJSON     bool
	docsSegments bool
	docsTitle    string
	docsAddTags  []string
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage stored documents",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
}

var docsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsShow,
}

var docsTagCmd = &cobra.Command{
	Use:   "tag [id]",
	Short: "Retitle a document or add tags",
	Long: `Changes a document's title and/or merges tags into its tag set.
The body is immutable; re-ingest to change content.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocsTag,
}

var docsRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a document and its segments",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsRm,
}

func init() {
	docsListCmd.Flags().IntVarP(&docsLimit, "limit", "n", 20, "maximum number of documents")
	docsListCmd.Flags().IntVar(&docsOffset, "offset", 0, "number of documents to skip")
	docsListCmd.Flags().StringVar(&docsKind, "kind", "", "only list documents of this source kind (note|file|url)")
	docsListCmd.Flags().StringArrayVarP(&docsTags, "tag", "t", nil, "only list documents carrying this tag (repeatable, all must match)")
	docsListCmd.Flags().BoolVar(&docsJSON, "json", false, "output as JSON")

	docsShowCmd.Flags().BoolVar(&docsSegments, "segments", false, "include the document's segments")

	docsTagCmd.Flags().StringVar(&docsTitle, "title", "", "new document title")
	docsTagCmd.Flags().StringArrayVarP(&docsAddTags, "tag", "t", nil, "tag to merge into the document (repeatable)")

	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsShowCmd)
	docsCmd.AddCommand(docsTagCmd)
	docsCmd.AddCommand(docsRmCmd)
	rootCmd.AddCommand(docsCmd)
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	docs, total, err := documentService.List(cmd.Context(), driving.ListDocumentsRequest{
		Limit:      docsLimit,
		Offset:     docsOffset,
		SourceKind: domain.SourceKind(docsKind),
		Tags:       docsTags,
	})
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	if docsJSON {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Println("No documents stored.")
		return nil
	}

	for _, doc := range docs {
		line := fmt.Sprintf("  %s  %-4s  %s", doc.ID, doc.SourceKind, doc.Title)
		if len(doc.Tags) > 0 {
			line += "  [" + strings.Join(doc.Tags, ", ") + "]"
		}
		cmd.Println(line)
	}
	cmd.Printf("\n%d of %d documents\n", len(docs), total)
	return nil
}

func runDocsShow(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	cmd.Printf("ID:      %s\n", doc.ID)
	cmd.Printf("Title:   %s\n", doc.Title)
	cmd.Printf("Kind:    %s\n", doc.SourceKind)
	if len(doc.Tags) > 0 {
		cmd.Printf("Tags:    %s\n", strings.Join(doc.Tags, ", "))
	}
	cmd.Printf("Created: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("Updated: %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	cmd.Println()
	cmd.Println(doc.Body)

	if !docsSegments {
		return nil
	}

	segments, err := documentService.Segments(cmd.Context(), doc.ID)
	if err != nil {
		return fmt.Errorf("get segments: %w", err)
	}
	cmd.Println()
	cmd.Printf("Segments (%d):\n", len(segments))
	for _, seg := range segments {
		embedded := "no embedding"
		if len(seg.Embedding) > 0 {
			embedded = fmt.Sprintf("%d-dim embedding", len(seg.Embedding))
		}
		cmd.Printf("  [%d] chars %d-%d, ~%d tokens, %s\n",
			seg.Index, seg.StartOffset, seg.EndOffset, seg.TokenCount, embedded)
	}
	return nil
}

func runDocsTag(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	var title *string
	if docsTitle != "" {
		title = &docsTitle
	}

	doc, err := documentService.Update(cmd.Context(), args[0], title, docsAddTags)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	cmd.Printf("Updated %s: %s", doc.ID, doc.Title)
	if len(doc.Tags) > 0 {
		cmd.Printf("  [%s]", strings.Join(doc.Tags, ", "))
	}
	cmd.Println()
	return nil
}

func runDocsRm(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	if err := documentService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}
