package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/refassist/refassist-cli/internal/core/services"
	"github.com/refassist/refassist-cli/internal/logger"
)

// watchDebounce coalesces bursts of filesystem events into one re-index.
const watchDebounce = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Index a directory and re-index it whenever files change",
	Long: `Indexes the directory, then watches it (recursively) for changes and
re-runs ingestion after each burst of writes. Content-hash deduplication
keeps unchanged files free; only changed documents are re-embedded.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]

	rag, err := newRAG()
	if err != nil {
		return err
	}
	defer rag.Close()

	if _, err := rag.Initialize(cmd.Context(), path); err != nil {
		return fmt.Errorf("initial indexing failed: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchRecursive(watcher, path); err != nil {
		return err
	}

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", path)
	return watchLoop(cmd.Context(), rag, watcher, path)
}

// watchRecursive registers the path and all nested directories.
func watchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := watcher.Add(p); err != nil {
				return fmt.Errorf("watch %s: %w", p, err)
			}
		}
		return nil
	})
}

// watchLoop re-indexes after each debounced burst of events.
func watchLoop(ctx context.Context, rag *services.RAGService, watcher *fsnotify.Watcher, path string) error {
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			logger.Debug("Filesystem event: %s", event)

			// New directories need their own watches.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchRecursive(watcher, event.Name)
				}
			}

			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerCh = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil

			report, err := rag.Initialize(ctx, path)
			if err != nil {
				logger.Warn("Re-index failed: %v", err)
				continue
			}
			if report.Indexed+report.Updated > 0 {
				logger.Info("Re-indexed: %d new, %d updated", report.Indexed, report.Updated)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}
