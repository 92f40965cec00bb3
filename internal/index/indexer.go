package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"codeatlas/internal/backend"
	"codeatlas/internal/chunker"
	"codeatlas/internal/language"
)

// defaultWorkers bounds concurrent file extraction to limit memory and
// I/O contention.
const defaultWorkers = 4

var (
	// ErrRootNotFound reports a missing root directory.
	ErrRootNotFound = errors.New("root directory not found")
	// ErrUpdateInFlight reports a concurrent update of the same file.
	ErrUpdateInFlight = errors.New("update already in flight for file")
)

// Summary reports a directory indexing pass.
type Summary struct {
	IndexedFiles int
	TotalChunks  int
	Languages    []string
}

// Config holds the indexer configuration.
type Config struct {
	Workers int
	Logger  *slog.Logger
}

// Indexer coordinates extraction, backend publishing, and the store.
type Indexer struct {
	store    *Store
	backend  backend.Backend
	registry *chunker.Registry
	workers  int
	logger   *slog.Logger
}

// New creates an Indexer over the given store and backend.
func New(store *Store, be backend.Backend, cfg Config) *Indexer {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		store:    store,
		backend:  be,
		registry: chunker.NewDefaultRegistry(),
		workers:  workers,
		logger:   logger,
	}
}

// fileResult is the extraction outcome for one candidate file. A read
// failure leaves Chunks empty; the file is still recorded.
type fileResult struct {
	path    string
	lang    language.Language
	chunks  []chunker.Chunk
	size    int64
	modTime time.Time
}

// IndexDirectory discovers candidate files under root, extracts them on a
// bounded worker pool, publishes all chunks to the backend in one batch,
// and records a fresh FileRecord per file. A per-file failure degrades to
// a fallback; a missing root or a backend failure aborts the whole call.
func (idx *Indexer) IndexDirectory(ctx context.Context, root string, recursive bool, patterns []string) (*Summary, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}

	paths, err := discoverFiles(root, recursive, patterns)
	if err != nil {
		return nil, fmt.Errorf("discover files: %w", err)
	}

	// Extraction fan-out. Results are re-assembled per input index, so
	// aggregation preserves discovery order regardless of completion order.
	results := make([]fileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = idx.extractFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Cancelled before publish: nothing is committed.
		return nil, err
	}

	var docs []backend.Document
	totalChunks := 0
	langs := make(map[string]bool)
	for _, res := range results {
		docs = append(docs, documentsFor(res.path, res.chunks)...)
		totalChunks += len(res.chunks)
		langs[string(res.lang)] = true
	}

	if len(docs) > 0 {
		if _, err := idx.backend.AddDocuments(ctx, docs); err != nil {
			return nil, fmt.Errorf("publish chunks: %w", err)
		}
	}

	for _, res := range results {
		idx.store.Put(recordFor(res))
	}

	summary := &Summary{
		IndexedFiles: len(paths),
		TotalChunks:  totalChunks,
	}
	for lang := range langs {
		summary.Languages = append(summary.Languages, lang)
	}
	sort.Strings(summary.Languages)

	idx.logger.Info("directory indexed",
		"root", root,
		"files", summary.IndexedFiles,
		"chunks", summary.TotalChunks,
	)
	return summary, nil
}

// UpdateFile re-indexes a single file: retract the prior chunks from the
// backend, re-extract, publish, then replace the store record. The
// retract/publish pair is not transactional; a backend failure leaves the
// store's previous record untouched so a retry self-heals.
func (idx *Indexer) UpdateFile(ctx context.Context, path string) error {
	if !idx.store.TryBeginUpdate(path) {
		return fmt.Errorf("%w: %s", ErrUpdateInFlight, path)
	}
	defer idx.store.EndUpdate(path)

	if prior, ok := idx.store.Get(path); ok && len(prior.Chunks) > 0 {
		ids := recordChunkIDs(prior)
		if _, err := idx.backend.DeleteDocuments(ctx, ids); err != nil {
			return fmt.Errorf("retract chunks for %s: %w", path, err)
		}
	}

	res := idx.extractFile(path)
	if docs := documentsFor(res.path, res.chunks); len(docs) > 0 {
		if _, err := idx.backend.AddDocuments(ctx, docs); err != nil {
			return fmt.Errorf("publish chunks for %s: %w", path, err)
		}
	}

	idx.store.Put(recordFor(res))
	return nil
}

// Stats returns current index statistics.
func (idx *Indexer) Stats() Stats {
	return idx.store.Stats()
}

// extractFile reads and chunks one file. Failures never propagate: a read
// failure yields zero chunks, a parse failure yields the fallback result,
// both logged.
func (idx *Indexer) extractFile(path string) fileResult {
	res := fileResult{path: path, lang: language.Classify(path)}

	if info, err := os.Stat(path); err == nil {
		res.size = info.Size()
		res.modTime = info.ModTime()
	}

	// Unrecognized extensions are skipped entirely: no chunk is emitted,
	// nothing reaches the backend.
	if res.lang == language.Unknown {
		idx.logger.Debug("unrecognized extension, skipping extraction", "path", path)
		return res
	}

	src, err := os.ReadFile(path)
	if err != nil {
		idx.logger.Warn("read failed, recording empty index entry", "path", path, "error", err)
		return res
	}
	if len(src) == 0 {
		return res
	}

	extracted := idx.registry.ForLanguage(res.lang).Extract(path, src)
	if extracted.Degraded {
		idx.logger.Warn("extraction degraded to fallback", "path", path, "reason", extracted.Reason)
	}
	res.chunks = extracted.Chunks
	return res
}

func recordFor(res fileResult) FileRecord {
	return FileRecord{
		Path:        res.path,
		Language:    res.lang,
		ModTime:     res.modTime,
		Chunks:      res.chunks,
		TotalChunks: len(res.chunks),
		SizeBytes:   res.size,
	}
}

// documentsFor converts a file's chunk sequence into backend documents
// with per-file ordinal IDs.
func documentsFor(path string, chunks []chunker.Chunk) []backend.Document {
	docs := make([]backend.Document, 0, len(chunks))
	for i, c := range chunks {
		docs = append(docs, backend.Document{
			ID:   chunkID(path, c.Type, i),
			Text: documentText(c),
			Metadata: backend.Metadata{
				FilePath:     c.FilePath,
				StartLine:    c.StartLine,
				EndLine:      c.EndLine,
				Language:     string(c.Language),
				ChunkType:    string(c.Type),
				Name:         c.Name,
				Dependencies: c.Dependencies,
			},
		})
	}
	return docs
}

// documentText appends a short provenance trailer to the chunk content so
// the embedding carries file and symbol context.
func documentText(c chunker.Chunk) string {
	text := fmt.Sprintf("%s\n\nFile: %s\nType: %s", c.Content, c.FilePath, c.Type)
	if c.Name != "" {
		text += "\nName: " + c.Name
	}
	return text
}
