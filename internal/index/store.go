// Package index holds the in-memory file index and the indexing
// orchestration over it: directory passes and incremental updates.
package index

import (
	"sort"
	"sync"
	"time"

	"codeatlas/internal/chunker"
	"codeatlas/internal/language"
)

// FileRecord is the per-file index entry. Records are immutable once
// stored; re-indexing replaces the record wholesale.
type FileRecord struct {
	Path        string
	Language    language.Language
	ModTime     time.Time
	Chunks      []chunker.Chunk
	TotalChunks int
	SizeBytes   int64
}

// Stats is a point-in-time aggregation over the store.
type Stats struct {
	IndexedFiles int
	TotalChunks  int
	Languages    []string
	// FileTypes counts indexed files per language.
	FileTypes map[string]int
}

// Store maps file paths to their index records. It is constructed
// explicitly and passed by reference; all access goes through the lock.
type Store struct {
	mu    sync.RWMutex
	files map[string]FileRecord

	// inFlight marks paths with an incremental update in progress, so
	// two updates of the same file never interleave.
	flightMu sync.Mutex
	inFlight map[string]bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		files:    make(map[string]FileRecord),
		inFlight: make(map[string]bool),
	}
}

// Get returns the record for a path.
func (s *Store) Get(path string) (FileRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.files[path]
	return rec, ok
}

// Put inserts or replaces the record for rec.Path.
func (s *Store) Put(rec FileRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[rec.Path] = rec
}

// Delete removes the record for a path, returning the prior record.
func (s *Store) Delete(path string) (FileRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.files[path]
	if ok {
		delete(s.files, path)
	}
	return rec, ok
}

// Len returns the number of indexed files.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Stats recomputes aggregate statistics from the live map. Never cached.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		IndexedFiles: len(s.files),
		FileTypes:    make(map[string]int),
	}
	for _, rec := range s.files {
		stats.TotalChunks += rec.TotalChunks
		stats.FileTypes[string(rec.Language)]++
	}
	for lang := range stats.FileTypes {
		stats.Languages = append(stats.Languages, lang)
	}
	sort.Strings(stats.Languages)
	return stats
}

// TryBeginUpdate marks path as having an update in flight. Returns false
// if another update of the same path is already running.
func (s *Store) TryBeginUpdate(path string) bool {
	s.flightMu.Lock()
	defer s.flightMu.Unlock()
	if s.inFlight[path] {
		return false
	}
	s.inFlight[path] = true
	return true
}

// EndUpdate clears the in-flight mark for path.
func (s *Store) EndUpdate(path string) {
	s.flightMu.Lock()
	defer s.flightMu.Unlock()
	delete(s.inFlight, path)
}
