package chunker

import (
	"sync"

	"codeatlas/internal/language"
)

// Extractor turns file content into a chunk sequence. Implementations never
// return an error: any parse problem degrades into fallback chunks with the
// condition carried in the Result.
type Extractor interface {
	Extract(path string, src []byte) Result
}

// Registry selects an Extractor by language. Languages without a registered
// precise extractor get the generic fallback, so new precise extractors can
// be added without touching call sites.
type Registry struct {
	mu       sync.RWMutex
	precise  map[language.Language]Extractor
	fallback Extractor
}

// NewRegistry creates a registry with the generic extractor as fallback.
func NewRegistry() *Registry {
	return &Registry{
		precise:  make(map[language.Language]Extractor),
		fallback: NewGenericExtractor(),
	}
}

// Register installs a precise extractor for a language.
func (r *Registry) Register(lang language.Language, e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.precise[lang] = e
}

// ForLanguage returns the extractor to use for a language.
func (r *Registry) ForLanguage(lang language.Language) Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.precise[lang]; ok {
		return e
	}
	return r.fallback
}

// NewDefaultRegistry registers the shipped precise extractors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(language.Python, NewPythonExtractor())
	return r
}
