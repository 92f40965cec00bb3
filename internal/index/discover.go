package index

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"codeatlas/internal/language"
)

// maxFileSize is the largest file considered for indexing (1 MB).
const maxFileSize = 1 << 20

// discoverFiles resolves the candidate file set under root. Explicit
// patterns are globbed as given; otherwise every known language extension
// is globbed. Paths are deduplicated and sorted for deterministic
// ordering. Files whose extension the classifier does not recognize are
// skipped entirely.
func discoverFiles(root string, recursive bool, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		for _, ext := range language.Extensions() {
			patterns = append(patterns, "*"+ext)
		}
	}

	seen := make(map[string]bool)
	for _, pat := range patterns {
		glob := filepath.Join(root, pat)
		if recursive {
			glob = filepath.Join(root, "**", pat)
		}
		matches, err := doublestar.FilepathGlob(glob)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			seen[m] = true
		}
	}

	var paths []string
	for path := range seen {
		if language.Classify(path) == language.Unknown {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() || info.Size() > maxFileSize {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}
