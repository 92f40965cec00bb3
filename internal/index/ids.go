package index

import (
	"fmt"
	"path/filepath"
	"strings"

	"codeatlas/internal/chunker"
)

// chunkID derives the deterministic backend document ID for a chunk:
// file stem, chunk type, and the chunk's ordinal within its file's
// sequence. Both publish and retract use the per-file ordinal, so the
// IDs issued for a record always match the IDs retracted from it.
func chunkID(path string, t chunker.Type, ordinal int) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_%s_%d", stem, t, ordinal)
}

// recordChunkIDs returns the backend IDs for every chunk in a record, in
// chunk order.
func recordChunkIDs(rec FileRecord) []string {
	ids := make([]string, len(rec.Chunks))
	for i, c := range rec.Chunks {
		ids[i] = chunkID(rec.Path, c.Type, i)
	}
	return ids
}
