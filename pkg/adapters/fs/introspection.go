package fs

import (
	"sort"

	"github.com/aretw0/introspection"
)

// CacheState exposes the cache for observability.
type CacheState struct {
	Path      string   `json:"path,omitempty"`
	Documents int      `json:"documents"`
	Records   int      `json:"records"`
	Dirty     bool     `json:"dirty"`
	Paths     []string `json:"paths,omitempty"`
}

// State implements introspection.Introspectable.
func (c *Cache) State() any {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	state := CacheState{
		Path:      c.Path,
		Documents: len(c.index.Entries),
		Dirty:     c.index.dirty,
		Paths:     make([]string, 0, len(c.index.Entries)),
	}
	for path, e := range c.index.Entries {
		state.Records += len(e.Records)
		state.Paths = append(state.Paths, path)
	}
	sort.Strings(state.Paths)
	return state
}

// ComponentType implements introspection.Component.
func (c *Cache) ComponentType() string {
	return "record-cache"
}

var _ introspection.Introspectable = (*Cache)(nil)
var _ introspection.Component = (*Cache)(nil)
