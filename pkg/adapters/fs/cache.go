package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/kiln/pkg/core"
)

// IndexFile is the name of the persisted cache inside the system directory.
const IndexFile = "index.json"

// indexEntry holds the records built from a single document.
type indexEntry struct {
	Path         string         `json:"path"`
	Fingerprint  string         `json:"fingerprint"`
	LastModified time.Time      `json:"lastModified"`
	Records      []*core.Record `json:"records"`
}

// index represents the persistent cache state.
type index struct {
	Version int                    `json:"version"`
	Entries map[string]*indexEntry `json:"entries"` // Key is the cleaned document path
	dirty   bool
	mu      sync.RWMutex
}

// Cache keeps the records built from documents, keyed by path, modification
// time and a read key identifying the schema and read settings. An empty Path
// keeps the cache in memory only.
type Cache struct {
	Path  string // Path to {systemDir}/index.json
	index *index
}

// NewCache initializes a cache persisted under dir. An empty dir disables persistence.
func NewCache(dir string) *Cache {
	c := &Cache{
		index: &index{
			Version: 1,
			Entries: make(map[string]*indexEntry),
		},
	}
	if dir != "" {
		c.Path = filepath.Join(dir, IndexFile)
	}
	return c
}

// Load reads the cache from disk. If not found or invalid, the cache starts empty (no error).
func (c *Cache) Load() error {
	if c.Path == "" {
		return nil
	}
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	var loaded struct {
		Version int                    `json:"version"`
		Entries map[string]*indexEntry `json:"entries"`
	}
	if err := json.Unmarshal(data, &loaded); err != nil || loaded.Version != c.index.Version {
		// Corrupted or outdated caches self-heal as empty.
		c.index.Entries = make(map[string]*indexEntry)
		return nil
	}
	for _, e := range loaded.Entries {
		for _, r := range e.Records {
			normalize(r)
		}
	}
	if loaded.Entries == nil {
		loaded.Entries = make(map[string]*indexEntry)
	}
	c.index.Entries = loaded.Entries
	c.index.dirty = false
	return nil
}

// Save persists the cache to disk if it is dirty.
func (c *Cache) Save() error {
	if c.Path == "" {
		return nil
	}
	c.index.mu.RLock()
	if !c.index.dirty {
		c.index.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(c.index, "", "  ")
	c.index.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return err
	}
	if err := writeFileAtomic(c.Path, data, 0644); err != nil {
		return err
	}

	c.index.mu.Lock()
	c.index.dirty = false
	c.index.mu.Unlock()
	return nil
}

// Get returns copies of the cached records when the entry is fresh for
// mtime and key.
func (c *Cache) Get(path string, mtime time.Time, key string) ([]*core.Record, bool) {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()

	entry, ok := c.index.Entries[filepath.Clean(path)]
	if !ok {
		return nil, false
	}
	if !entry.LastModified.Equal(mtime) || entry.Fingerprint != key {
		return nil, false
	}
	return cloneRecords(entry.Records), true
}

// Set stores the records built from path.
func (c *Cache) Set(path string, mtime time.Time, key string, records []*core.Record) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	clean := filepath.Clean(path)
	c.index.Entries[clean] = &indexEntry{
		Path:         clean,
		Fingerprint:  key,
		LastModified: mtime,
		Records:      cloneRecords(records),
	}
	c.index.dirty = true
}

// Delete removes a single entry from the cache.
func (c *Cache) Delete(path string) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	key := filepath.Clean(path)
	if _, ok := c.index.Entries[key]; ok {
		delete(c.index.Entries, key)
		c.index.dirty = true
	}
}

// Prune removes entries that are not in the keep set.
func (c *Cache) Prune(keep map[string]bool) {
	c.index.mu.Lock()
	defer c.index.mu.Unlock()

	for path := range c.index.Entries {
		if !keep[path] {
			delete(c.index.Entries, path)
			c.index.dirty = true
		}
	}
}

// Len returns the number of cached documents.
func (c *Cache) Len() int {
	c.index.mu.RLock()
	defer c.index.mu.RUnlock()
	return len(c.index.Entries)
}

func cloneRecords(records []*core.Record) []*core.Record {
	if records == nil {
		return nil
	}
	out := make([]*core.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
