package chunker

import (
	"regexp"
	"strings"

	"codeatlas/internal/language"
)

// Heuristic declaration patterns. Intentionally shallow: single-line
// signatures only, good enough for coarse retrieval context.
var (
	// function name / def name / name(...) {
	genericFuncRe = regexp.MustCompile(`function\s+(\w+)|def\s+(\w+)|\w+\s+(\w+)\s*\([^)]*\)\s*\{`)
	// class/interface/struct name
	genericTypeRe = regexp.MustCompile(`class\s+(\w+)|interface\s+(\w+)|struct\s+(\w+)`)
)

// GenericExtractor scans line by line for declaration-shaped patterns.
// Lines matching neither pattern are not chunked; a file with no match at
// all becomes a single whole-file chunk.
type GenericExtractor struct{}

// NewGenericExtractor creates the heuristic extractor.
func NewGenericExtractor() *GenericExtractor {
	return &GenericExtractor{}
}

// Extract applies the heuristic scan using the language resolved from the
// file extension.
func (e *GenericExtractor) Extract(path string, src []byte) Result {
	return e.extract(path, src, language.Classify(path))
}

func (e *GenericExtractor) extract(path string, src []byte, lang language.Language) Result {
	if len(src) == 0 {
		return Result{}
	}

	lines := strings.Split(string(src), "\n")
	var chunks []Chunk
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := genericFuncRe.FindStringSubmatch(trimmed); m != nil {
			chunks = append(chunks, Chunk{
				Content:   trimmed,
				FilePath:  path,
				StartLine: i + 1,
				EndLine:   i + 1,
				Language:  lang,
				Type:      TypeFunction,
				Name:      firstGroup(m),
			})
		}
		if m := genericTypeRe.FindStringSubmatch(trimmed); m != nil {
			chunks = append(chunks, Chunk{
				Content:   trimmed,
				FilePath:  path,
				StartLine: i + 1,
				EndLine:   i + 1,
				Language:  lang,
				Type:      TypeClass,
				Name:      firstGroup(m),
			})
		}
	}

	if len(chunks) == 0 {
		chunks = append(chunks, fileChunk(path, lang, src))
	}
	return Result{Chunks: chunks}
}

// firstGroup returns the first non-empty capture group.
func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
