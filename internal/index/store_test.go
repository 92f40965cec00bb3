package index

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeatlas/internal/chunker"
	"codeatlas/internal/language"
)

func record(path string, lang language.Language, chunks int) FileRecord {
	cs := make([]chunker.Chunk, chunks)
	for i := range cs {
		cs[i] = chunker.Chunk{
			Content:   "body",
			FilePath:  path,
			StartLine: i + 1,
			EndLine:   i + 1,
			Language:  lang,
			Type:      chunker.TypeFunction,
			Name:      fmt.Sprintf("fn%d", i),
		}
	}
	return FileRecord{
		Path:        path,
		Language:    lang,
		Chunks:      cs,
		TotalChunks: len(cs),
	}
}

func TestStore_PutGetReplace(t *testing.T) {
	s := NewStore()

	_, ok := s.Get("a.py")
	assert.False(t, ok)

	s.Put(record("a.py", language.Python, 2))
	rec, ok := s.Get("a.py")
	require.True(t, ok)
	assert.Equal(t, 2, rec.TotalChunks)

	// Re-index replaces wholesale.
	s.Put(record("a.py", language.Python, 5))
	rec, _ = s.Get("a.py")
	assert.Equal(t, 5, rec.TotalChunks)
	assert.Equal(t, 1, s.Len())
}

func TestStore_Stats(t *testing.T) {
	s := NewStore()
	s.Put(record("a.py", language.Python, 3))
	s.Put(record("b.py", language.Python, 1))
	s.Put(record("c.js", language.JavaScript, 2))

	stats := s.Stats()
	assert.Equal(t, 3, stats.IndexedFiles)
	assert.Equal(t, 6, stats.TotalChunks)
	assert.Equal(t, []string{"javascript", "python"}, stats.Languages)
	assert.Equal(t, map[string]int{"python": 2, "javascript": 1}, stats.FileTypes)
}

func TestStore_StatsRecomputed(t *testing.T) {
	s := NewStore()
	s.Put(record("a.py", language.Python, 3))
	before := s.Stats()

	s.Put(record("a.py", language.Python, 7))
	after := s.Stats()

	assert.Equal(t, 3, before.TotalChunks)
	assert.Equal(t, 7, after.TotalChunks)
	assert.Equal(t, before.IndexedFiles, after.IndexedFiles)
}

func TestStore_ConcurrentPuts(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path := fmt.Sprintf("file%d.py", i)
			s.Put(record(path, language.Python, 1))
			_, _ = s.Get(path)
			_ = s.Stats()
		}()
	}
	wg.Wait()

	stats := s.Stats()
	assert.Equal(t, 50, stats.IndexedFiles)
	assert.Equal(t, 50, stats.TotalChunks)
}

func TestStore_UpdateSerialization(t *testing.T) {
	s := NewStore()

	require.True(t, s.TryBeginUpdate("a.py"))
	assert.False(t, s.TryBeginUpdate("a.py"), "same path must not admit a second update")
	assert.True(t, s.TryBeginUpdate("b.py"), "different path is independent")

	s.EndUpdate("a.py")
	assert.True(t, s.TryBeginUpdate("a.py"))
}

func TestStore_Delete(t *testing.T) {
	s := NewStore()
	s.Put(record("a.py", language.Python, 2))

	rec, ok := s.Delete("a.py")
	require.True(t, ok)
	assert.Equal(t, 2, rec.TotalChunks)

	_, ok = s.Get("a.py")
	assert.False(t, ok)

	_, ok = s.Delete("a.py")
	assert.False(t, ok)
}
