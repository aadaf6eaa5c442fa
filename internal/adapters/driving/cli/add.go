package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/satchel/internal/core/domain"
)

var (
	addTitle string
	addTags  []string
)

var addCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Capture a note directly",
	Long: `Stores a note in the knowledge store. The note text comes from the
argument, or from stdin when no argument is given:

  satchel add "remember to rotate the backup keys"
  pbpaste | satchel add --title "clipboard dump"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addTitle, "title", "", "note title (default: first line of the text)")
	addCmd.Flags().StringArrayVarP(&addTags, "tag", "t", nil, "tag to attach (repeatable)")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	var body string
	if len(args) == 1 {
		body = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		body = string(data)
	}
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("note text is required: %w", domain.ErrInvalidArgument)
	}

	title := addTitle
	if title == "" {
		title = firstLine(body)
	}

	artifact := domain.Artifact{
		SourceFile: "note",
		Title:      title,
		Body:       body,
		SourceKind: domain.SourceKindNote,
		Tags:       addTags,
	}

	result, err := ingestService.IngestOne(cmd.Context(), artifact, settingsIngestOptions())
	if err != nil {
		return fmt.Errorf("add note: %w", err)
	}

	switch result.State {
	case domain.IngestStatePersisted:
		cmd.Printf("Stored note %s (%d segments)\n", result.DocumentID, result.SegmentCount)
	case domain.IngestStateSkippedDuplicate:
		cmd.Printf("Identical note already stored as %s\n", result.DocumentID)
	default:
		return fmt.Errorf("add note: %s", result.Err)
	}
	return nil
}

// firstLine returns the first non-empty line, truncated to a title.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > 80 {
			return line[:80]
		}
		return line
	}
	return "untitled"
}
