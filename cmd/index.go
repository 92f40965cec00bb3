package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	flagRecursive bool
	flagPatterns  []string
)

var indexCmd = &cobra.Command{
	Use:   "index <path>",
	Short: "Index a source tree for retrieval",
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

		fmt.Printf("Indexing %s...\n", root)
		start := time.Now()

		summary, err := idx.IndexDirectory(cmd.Context(), root, flagRecursive, flagPatterns)
		if err != nil {
			return err
		}

		fmt.Printf("\nDone in %s\n", time.Since(start).Round(time.Millisecond))
		fmt.Printf("  Files:     %d\n", summary.IndexedFiles)
		fmt.Printf("  Chunks:    %d\n", summary.TotalChunks)
		fmt.Printf("  Languages: %s\n", strings.Join(summary.Languages, ", "))
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVar(&flagRecursive, "recursive", true, "descend into subdirectories")
	indexCmd.Flags().StringSliceVar(&flagPatterns, "pattern", nil, "glob pattern(s) to select files (default: all known extensions)")
	rootCmd.AddCommand(indexCmd)
}
