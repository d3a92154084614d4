package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// watchDebounce batches the burst of events an editor produces on save.
const watchDebounce = 200 * time.Millisecond

var watchQuery string

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Re-ingest a document whenever it changes",
	Long: `Loads the document, then rebuilds the corpus each time the file is written.
With --query the question is asked again after every rebuild.

A failed rebuild keeps the previous corpus. Press ctrl+c to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchQuery, "query", "q", "", "question to re-run after each rebuild")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if domain.LooksLikeURL(args[0]) {
		return fmt.Errorf("%w: watch needs a local file", domain.ErrUnsupportedSourceType)
	}

	k := domain.DefaultTopK
	if watchQuery != "" {
		settings, err := resolveSettings(cmd)
		if err != nil {
			return err
		}
		k = settings.TopK
	}

	corpus, err := getCorpusService(cmd)
	if err != nil {
		return err
	}

	source, err := services.ResolveSource(args[0])
	if err != nil {
		return err
	}
	path, err := filepath.Abs(services.ExpandHome(args[0]))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}

	result, err := corpus.Ingest(cmd.Context(), source)
	if err != nil {
		return err
	}
	cmd.Println(result.Summary())
	runWatchQuery(cmd, corpus, k)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file on save are still seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	cmd.Printf("Watching %s (ctrl+c to stop)\n", path)
	return watchFile(cmd.Context(), watcher, path, func() {
		refresh(cmd, corpus, args[0], k)
	})
}

// refresh rebuilds the corpus, reporting failures without stopping the watch.
func refresh(cmd *cobra.Command, corpus driving.CorpusService, input string, k int) {
	source, err := services.ResolveSource(input)
	if err == nil {
		var result domain.IngestResult
		result, err = corpus.Refresh(cmd.Context(), source)
		if err == nil {
			cmd.Println(result.Summary())
			runWatchQuery(cmd, corpus, k)
			return
		}
	}

	logger.Debug("refresh %s failed: %v", input, err)
	cmd.PrintErrln("Error:", domain.Describe(err))
}

func runWatchQuery(cmd *cobra.Command, corpus driving.CorpusService, k int) {
	if watchQuery == "" {
		return
	}

	results, err := corpus.Query(cmd.Context(), watchQuery, k)
	if err != nil {
		cmd.PrintErrln("Error:", domain.Describe(err))
		return
	}
	outputChunks(cmd, results)
}

// watchFile calls onChange once per burst of write or create events on path.
// It returns when ctx is cancelled or the watcher is closed.
func watchFile(ctx context.Context, watcher *fsnotify.Watcher, path string, onChange func()) error {
	path = filepath.Clean(path)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("detected change to %s, debouncing", event.Name)
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Stop()
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher: %v", err)
		}
	}
}
