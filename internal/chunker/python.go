package chunker

import (
	"context"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"codeatlas/internal/language"
)

// pythonQuery captures top-level and nested definitions plus import
// statements. @chunk is the outer node; @name the identifier when present.
const pythonQuery = `
	(function_definition name: (identifier) @name) @chunk
	(class_definition name: (identifier) @name) @chunk
	(import_statement) @chunk
	(import_from_statement) @chunk
`

// PythonExtractor parses Python sources with tree-sitter and emits
// function, class, and import chunks with accurate line spans.
type PythonExtractor struct {
	lang *sitter.Language
}

// NewPythonExtractor creates the precise Python extractor.
func NewPythonExtractor() *PythonExtractor {
	return &PythonExtractor{lang: python.GetLanguage()}
}

// Extract parses src and walks every definition node. A source that fails
// to parse cleanly is handed to the generic extractor instead; a clean
// parse with zero definitions yields one whole-file chunk.
func (e *PythonExtractor) Extract(path string, src []byte) Result {
	if len(src) == 0 {
		return Result{}
	}

	parser := sitter.NewParser()
	parser.SetLanguage(e.lang)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return degradeToGeneric(path, src, "parse: "+err.Error())
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return degradeToGeneric(path, src, "syntax error")
	}

	q, err := sitter.NewQuery([]byte(pythonQuery), e.lang)
	if err != nil {
		return degradeToGeneric(path, src, "compile query: "+err.Error())
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	lines := strings.Split(string(src), "\n")
	var chunks []Chunk
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		var node *sitter.Node
		var name string
		for _, cap := range m.Captures {
			switch q.CaptureNameForId(cap.Index) {
			case "chunk":
				node = cap.Node
			case "name":
				name = cap.Node.Content(src)
			}
		}
		if node == nil {
			continue
		}

		start := int(node.StartPoint().Row) + 1
		end := int(node.EndPoint().Row) + 1
		if end > len(lines) {
			end = len(lines)
		}

		switch node.Type() {
		case "function_definition":
			chunks = append(chunks, Chunk{
				Content:      strings.Join(lines[start-1:end], "\n"),
				FilePath:     path,
				StartLine:    start,
				EndLine:      end,
				Language:     language.Python,
				Type:         TypeFunction,
				Name:         name,
				Dependencies: referencedIdentifiers(e.lang, node, src),
			})
		case "class_definition":
			chunks = append(chunks, Chunk{
				Content:   strings.Join(lines[start-1:end], "\n"),
				FilePath:  path,
				StartLine: start,
				EndLine:   end,
				Language:  language.Python,
				Type:      TypeClass,
				Name:      name,
			})
		case "import_statement", "import_from_statement":
			chunks = append(chunks, Chunk{
				Content:   strings.TrimSpace(lines[start-1]),
				FilePath:  path,
				StartLine: start,
				EndLine:   start,
				Language:  language.Python,
				Type:      TypeImport,
			})
		}
	}

	if len(chunks) == 0 {
		chunks = append(chunks, fileChunk(path, language.Python, src))
	}
	return Result{Chunks: chunks}
}

// referencedIdentifiers collects the deduplicated identifier names that
// appear in a function body. Sorted so re-extraction is deterministic.
func referencedIdentifiers(lang *sitter.Language, fn *sitter.Node, src []byte) []string {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	q, err := sitter.NewQuery([]byte(`(identifier) @id`), lang)
	if err != nil {
		return nil
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, body)

	seen := make(map[string]bool)
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, cap := range m.Captures {
			seen[cap.Node.Content(src)] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}

	deps := make([]string, 0, len(seen))
	for id := range seen {
		deps = append(deps, id)
	}
	sort.Strings(deps)
	return deps
}

// degradeToGeneric falls back to the heuristic strategy, preserving the
// reason the precise parse was abandoned.
func degradeToGeneric(path string, src []byte, reason string) Result {
	res := NewGenericExtractor().extract(path, src, language.Python)
	res.Degraded = true
	res.Reason = reason
	return res
}
