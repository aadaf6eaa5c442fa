// Package cli implements the satchel command line interface.
// Commands are thin: they parse flags, call the driving ports, and
// format output. All wiring of adapters to services happens here, in
// one place, so every dependency is explicitly constructed.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/satchel/internal/adapters/driven/config/file"
	"github.com/custodia-labs/satchel/internal/adapters/driven/embedding"
	manifestfile "github.com/custodia-labs/satchel/internal/adapters/driven/manifest/file"
	"github.com/custodia-labs/satchel/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/satchel/internal/core/domain"
	"github.com/custodia-labs/satchel/internal/core/ports/driven"
	"github.com/custodia-labs/satchel/internal/core/ports/driving"
	"github.com/custodia-labs/satchel/internal/core/services"
	"github.com/custodia-labs/satchel/internal/logger"
	"github.com/custodia-labs/satchel/internal/segmenter"
)

// Build information, set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Services consumed by the commands. Wired by ensureServices at first
// use; tests substitute fakes directly.
var (
	searchService   driving.SearchService
	documentService driving.DocumentService
	ingestService   driving.IngestOrchestrator
	settingsService driving.SettingsService
)

// Infrastructure handles kept for cleanup on exit, and the settings
// snapshot commands fall back to for unset flags.
var (
	store       *sqlite.Store
	provider    driven.EmbeddingProvider
	appSettings *domain.AppSettings
)

var (
	dataDir string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "satchel",
	Short: "A local knowledge store with hybrid search",
	Long: `Satchel ingests your notes and text files into a local, searchable
knowledge store. Queries combine keyword (FTS5) and semantic (vector)
relevance with reciprocal rank fusion.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.satchel, env SATCHEL_DATA_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// SetVersionInfo records build information for the version command.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// resolveDataDir picks the data directory: flag, environment, then
// the home default.
func resolveDataDir() (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	if env := os.Getenv("SATCHEL_DATA_DIR"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".satchel"), nil
}

// ensureServices wires adapters to services on first use. Tests that
// pre-populate the service vars skip wiring entirely.
func ensureServices() error {
	if searchService != nil && documentService != nil && ingestService != nil && settingsService != nil {
		return nil
	}

	dir, err := resolveDataDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create data directory %s: %w", dir, err)
	}
	logger.Debug("Data directory: %s", dir)

	configStore, err := configfile.NewConfigStore(dir)
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}
	settingsService = services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return err
	}
	appSettings = settings

	// An OPENAI_API_KEY in the environment covers a missing config key.
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	store, err = sqlite.NewStore(dir)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}

	manifest, err := manifestfile.NewStore(dir)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}

	// A misconfigured or unreachable provider degrades to lexical-only
	// operation rather than blocking every command.
	provider, err = embedding.NewValidatedProvider(&settings.Embedding)
	if err != nil {
		logger.Warn("Embedding provider unavailable, running lexical-only: %v", err)
		provider = nil
	}

	seg := segmenter.New(
		segmenter.WithMaxTokens(settings.Ingest.MaxTokens),
		segmenter.WithOverlapTokens(settings.Ingest.OverlapTokens),
	)

	docStore := store.DocumentStore()
	searchService = services.NewSearchService(
		docStore,
		store.LexicalRanker(),
		store.SemanticRanker(),
		provider,
		services.SearchConfig{RRFK: settings.Search.RRFK},
	)
	documentService = services.NewDocumentService(docStore, manifest)
	ingestService = services.NewIngestOrchestrator(docStore, manifest, provider, seg)

	return nil
}

// settingsIngestOptions seeds ingestion options from the configured
// settings. Commands override individual fields with explicit flags.
func settingsIngestOptions() driving.IngestOptions {
	var opts driving.IngestOptions
	if appSettings == nil {
		return opts
	}
	opts.Workers = appSettings.Ingest.Workers
	opts.EmbedTimeout = time.Duration(appSettings.Ingest.EmbedTimeoutSecs) * time.Second
	return opts
}

// closeServices releases infrastructure handles held by the wiring.
func closeServices() {
	if provider != nil {
		if err := provider.Close(); err != nil {
			logger.Debug("Closing embedding provider: %v", err)
		}
		provider = nil
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Debug("Closing document store: %v", err)
		}
		store = nil
	}
}
