package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/satchel/internal/converters/textfile"
	"github.com/custodia-labs/satchel/internal/core/domain"
	"github.com/custodia-labs/satchel/internal/core/ports/driving"
	"github.com/custodia-labs/satchel/internal/logger"
)

var (
	ingestRecursive bool
	ingestForce     bool
	ingestWorkers   int
	ingestTimeout   time.Duration
	ingestTags      []string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]...",
	Short: "Ingest text files into the knowledge store",
	Long: `Converts text files to documents, segments them, attaches embeddings,
and stores them. Unchanged content is skipped via content-hash dedup;
use --force to re-ingest. Per-file failures are reported in the summary
and never abort the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestRecursive, "recursive", "r", false, "descend into subdirectories")
	ingestCmd.Flags().BoolVarP(&ingestForce, "force", "f", false, "re-ingest content whose hash is already recorded")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 0, "concurrent pipeline count (default from settings)")
	ingestCmd.Flags().DurationVar(&ingestTimeout, "embed-timeout", 0, "per-file embedding timeout (default from settings)")
	ingestCmd.Flags().StringArrayVarP(&ingestTags, "tag", "t", nil, "tag to attach to every document (repeatable)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	converter := textfile.New(textfile.WithTags(ingestTags))
	var artifacts []domain.Artifact
	for _, path := range args {
		converted, err := converter.ConvertPath(path, ingestRecursive)
		if err != nil {
			return fmt.Errorf("convert %s: %w", path, err)
		}
		artifacts = append(artifacts, converted...)
	}
	if len(artifacts) == 0 {
		cmd.Println("Nothing to ingest.")
		return nil
	}

	opts := ingestOptions()
	opts.Progress = func(p domain.IngestProgress) {
		logger.Debug("[%3d%%] %s: %s", p.Percent(), p.SourceFile, p.State)
	}

	report, err := ingestService.IngestBatch(cmd.Context(), artifacts, opts)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	printIngestReport(cmd, report)
	return nil
}

// ingestOptions starts from the configured defaults and applies any
// explicitly set flags on top.
func ingestOptions() driving.IngestOptions {
	opts := settingsIngestOptions()
	opts.Force = ingestForce
	if ingestWorkers > 0 {
		opts.Workers = ingestWorkers
	}
	if ingestTimeout > 0 {
		opts.EmbedTimeout = ingestTimeout
	}
	return opts
}

func printIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	cmd.Printf("Ingested %d files: %d stored, %d skipped, %d failed\n",
		report.Total(), report.Succeeded, report.Skipped, report.Failed)

	if report.Failed == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Failures:")
	for _, result := range report.Results {
		if result.State == domain.IngestStateFailed {
			cmd.Printf("  %s: %s\n", result.SourceFile, result.Err)
		}
	}
}
