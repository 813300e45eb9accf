package fs

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoDocuments is returned when a pattern matches no file.
var ErrNoDocuments = errors.New("no documents match")

// Discover expands glob patterns ("docs/**/*.xml") into a sorted, de-duplicated
// list of document paths. Every pattern must match at least one file.
func Discover(patterns ...string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return nil, fmt.Errorf("invalid pattern: %s", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to expand %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoDocuments, pattern)
		}
		for _, m := range matches {
			m = filepath.Clean(m)
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Match reports whether path is selected by pattern. An empty pattern matches everything.
func Match(pattern, path string) bool {
	if pattern == "" {
		return true
	}
	ok, err := doublestar.PathMatch(pattern, path)
	if err != nil {
		return false
	}
	if ok {
		return true
	}
	// Patterns without a directory part match base names anywhere ("*.xml").
	ok, _ = doublestar.PathMatch(pattern, filepath.Base(path))
	return ok
}

// WatchRoot returns the directory to observe for pattern.
func WatchRoot(pattern string) string {
	base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
	if base == "" || base == "." {
		return "."
	}
	return filepath.FromSlash(base)
}
