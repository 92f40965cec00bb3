// Package language maps file paths to language identifiers by extension.
package language

import (
	"path/filepath"
	"sort"
	"strings"
)

// Language identifies a programming language recognized by the indexer.
type Language string

// Unknown is returned for extensions with no table entry. Callers skip
// such files entirely.
const Unknown Language = ""

const (
	Python     Language = "python"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Java       Language = "java"
	C          Language = "c"
	CPP        Language = "cpp"
	Go         Language = "go"
	Rust       Language = "rust"
	PHP        Language = "php"
	Ruby       Language = "ruby"
	Swift      Language = "swift"
	Kotlin     Language = "kotlin"
	CSharp     Language = "csharp"
)

// extensions maps a lowercase file extension (with dot) to its language.
var extensions = map[string]Language{
	".py":    Python,
	".pyi":   Python,
	".js":    JavaScript,
	".jsx":   JavaScript,
	".mjs":   JavaScript,
	".ts":    TypeScript,
	".tsx":   TypeScript,
	".java":  Java,
	".c":     C,
	".h":     C,
	".cpp":   CPP,
	".cc":    CPP,
	".hpp":   CPP,
	".go":    Go,
	".rs":    Rust,
	".php":   PHP,
	".rb":    Ruby,
	".swift": Swift,
	".kt":    Kotlin,
	".cs":    CSharp,
}

// Classify returns the language for a file path, or Unknown.
func Classify(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	return extensions[ext]
}

// Extensions returns every known extension (with leading dot), sorted for
// deterministic candidate discovery.
func Extensions() []string {
	exts := make([]string, 0, len(extensions))
	for ext := range extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
