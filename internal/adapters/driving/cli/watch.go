package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/satchel/internal/converters/textfile"
	"github.com/custodia-labs/satchel/internal/core/domain"
	"github.com/custodia-labs/satchel/internal/logger"
)

// watchDebounce coalesces the event burst editors emit per save into
// one ingestion.
const watchDebounce = 500 * time.Millisecond

var watchTags []string

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and ingest changed files",
	Long: `Watches a directory tree and re-ingests text files as they are
created or modified. Content-hash dedup makes saves without content
changes a no-op. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringArrayVarP(&watchTags, "tag", "t", nil, "tag to attach to every document (repeatable)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	root := args[0]
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory: %w", root, domain.ErrInvalidArgument)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchTree(watcher, root); err != nil {
		return err
	}
	cmd.Printf("Watching %s (ctrl-c to stop)\n", root)

	converter := textfile.New(textfile.WithTags(watchTags))
	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
	)

	ingestPath := func(path string) {
		mu.Lock()
		delete(timers, path)
		mu.Unlock()

		artifact, err := converter.ConvertFile(path)
		if err != nil {
			logger.Debug("Skipping %s: %v", path, err)
			return
		}
		result, err := ingestService.IngestOne(cmd.Context(), *artifact, settingsIngestOptions())
		if err != nil {
			logger.Warn("Ingest %s: %v", path, err)
			return
		}
		switch result.State {
		case domain.IngestStatePersisted:
			cmd.Printf("Stored %s (%d segments)\n", path, result.SegmentCount)
		case domain.IngestStateSkippedDuplicate:
			logger.Debug("Unchanged: %s", path)
		case domain.IngestStateFailed:
			cmd.Printf("Failed %s: %s\n", path, result.Err)
		}
	}

	for {
		select {
		case <-cmd.Context().Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) {
				// New subdirectories join the watch set.
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if err := watchTree(watcher, event.Name); err != nil {
						logger.Warn("Watch %s: %v", event.Name, err)
					}
					continue
				}
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}

			// Restart the per-path debounce timer on every event.
			path := event.Name
			mu.Lock()
			if timer, exists := timers[path]; exists {
				timer.Stop()
			}
			timers[path] = time.AfterFunc(watchDebounce, func() { ingestPath(path) })
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// watchTree registers dir and every non-hidden subdirectory.
func watchTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
