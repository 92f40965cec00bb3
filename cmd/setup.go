package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"codeatlas/internal/backend"
	"codeatlas/internal/embedder"
	"codeatlas/internal/index"
)

// buildIndexer wires the embedder, backend, store, and indexer for a
// project root. The caller owns closing the returned backend.
func buildIndexer(root string, logger *slog.Logger) (*index.Indexer, *backend.SQLiteVec, error) {
	dbPath := flagDB
	if dbPath == "" {
		dbPath = filepath.Join(root, ".codeatlas", "index.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create db directory: %w", err)
	}

	emb := embedder.NewOllamaEmbedder(flagOllama, flagModel)
	be, err := backend.OpenSQLiteVec(dbPath, emb)
	if err != nil {
		return nil, nil, fmt.Errorf("open backend: %w", err)
	}
	logger.Debug("retrieval backend ready", "db", dbPath, "model", emb.Model())

	store := index.NewStore()
	idx := index.New(store, be, index.Config{
		Workers: flagWorkers,
		Logger:  logger,
	})
	return idx, be, nil
}
