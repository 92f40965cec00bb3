package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"codeatlas/internal/language"
	"codeatlas/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Index a source tree and keep the index current as files change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		logger := newLogger()
		idx, be, err := buildIndexer(root, logger)
		if err != nil {
			return err
		}
		defer be.Close()

		ctx := cmd.Context()
		summary, err := idx.IndexDirectory(ctx, root, true, nil)
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %d files (%d chunks), watching for changes...\n",
			summary.IndexedFiles, summary.TotalChunks)

		w, err := watcher.New(root, logger)
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer w.Close()
		go w.Start()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case batch, ok := <-w.Events():
				if !ok {
					return nil
				}
				for _, ev := range batch {
					// Only created/modified feed the updater. Deletions
					// and moves are left to the surrounding service layer.
					if ev.Type != watcher.Created && ev.Type != watcher.Modified {
						logger.Debug("ignoring event", "type", ev.Type, "path", ev.Path)
						continue
					}
					if language.Classify(ev.Path) == language.Unknown {
						continue
					}
					if err := idx.UpdateFile(ctx, ev.Path); err != nil {
						logger.Warn("incremental update failed", "path", ev.Path, "error", err)
					}
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
