package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagDB      string
	flagOllama  string
	flagModel   string
	flagWorkers int
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "codeatlas",
	Short: "Index a source tree into retrievable code chunks",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default <project>/.codeatlas/index.db)")
	rootCmd.PersistentFlags().StringVar(&flagOllama, "ollama", "http://localhost:11434", "ollama base URL")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "nomic-embed-text", "embedding model")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 4, "parallel extraction workers")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "debug logging")
}

// newLogger builds the process logger. MCP mode must keep stdout clean,
// so logs always go to stderr.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
