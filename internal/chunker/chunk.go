// Package chunker extracts retrievable code chunks from source files.
//
// Extraction is polymorphic over two strategies: a precise tree-sitter
// extractor for Python and a line-pattern heuristic for every other
// recognized language. Both guarantee that a non-empty file yields at
// least one chunk.
package chunker

import (
	"strings"

	"codeatlas/internal/language"
)

// Type classifies what a chunk represents.
type Type string

const (
	TypeFunction Type = "function"
	TypeClass    Type = "class"
	TypeImport   Type = "import"
	// TypeFile is the fallback when no structural unit is found.
	TypeFile Type = "file"
)

// Chunk is a contiguous, line-addressed fragment of a source file.
type Chunk struct {
	Content   string
	FilePath  string
	StartLine int // 1-based, inclusive
	EndLine   int // 1-based, inclusive, >= StartLine
	Language  language.Language
	Type      Type
	Name      string // symbol name for function/class chunks
	// Dependencies holds identifier names referenced within the chunk.
	// Only the precise extractor populates it; deduplicated and sorted.
	Dependencies []string
}

// Result is the outcome of one extraction. Degraded distinguishes a full
// parse from a best-effort fallback without error control flow; the chunks
// are usable either way.
type Result struct {
	Chunks   []Chunk
	Degraded bool
	Reason   string
}

// fileChunk builds the whole-file fallback chunk.
func fileChunk(path string, lang language.Language, src []byte) Chunk {
	lines := strings.Split(string(src), "\n")
	return Chunk{
		Content:   string(src),
		FilePath:  path,
		StartLine: 1,
		EndLine:   len(lines),
		Language:  lang,
		Type:      TypeFile,
	}
}
