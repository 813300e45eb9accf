package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/kiln/pkg/adapters/fs"
	"github.com/aretw0/kiln/pkg/adapters/markup"
	"github.com/aretw0/kiln/pkg/collect"
	"github.com/aretw0/kiln/pkg/core"
	"github.com/aretw0/kiln/pkg/resolve"
)

// Reader builds records from documents for one entity definition.
// It is safe for concurrent use; every read runs its own collector.
type Reader struct {
	def      *core.EntityDefinition
	resolver core.Resolver
	logger   *slog.Logger
	maxDepth int
	cache    *fs.Cache
	config   *options
	// cacheKey identifies the read configuration cached records were built
	// under. Empty when records must not be cached.
	cacheKey string

	mu        sync.RWMutex
	documents int
	hits      int
	lastRead  *time.Time
	watching  bool
	lastStats collect.Stats
}

// ReaderState exposes internal state for observability.
type ReaderState struct {
	Entity      string        `json:"entity"`
	Fingerprint string        `json:"fingerprint"`
	SchemaFile  string        `json:"schema_file,omitempty"`
	Strict      bool          `json:"strict"`
	MaxDepth    int           `json:"max_depth"`
	Documents   int           `json:"documents_read"`
	CacheHits   int           `json:"cache_hits"`
	Watching    bool          `json:"watching"`
	LastRead    *time.Time    `json:"last_read,omitempty"`
	LastStats   collect.Stats `json:"last_stats"`
	Cached      bool          `json:"cached"`
	Cache       any           `json:"cache"`
}

// Definition returns the entity definition records are built for.
func (r *Reader) Definition() *core.EntityDefinition {
	return r.def
}

func (r *Reader) collector() *collect.Collector {
	return collect.New(r.def,
		collect.WithResolver(r.resolver),
		collect.WithLogger(r.logger),
		collect.WithMaxDepth(r.maxDepth),
	)
}

// ReadDocument parses a single markup document and returns its records in
// document order.
func (r *Reader) ReadDocument(ctx context.Context, src io.Reader) ([]*core.Record, error) {
	var out []*core.Record
	for rec, err := range r.Records(ctx, src) {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Records parses a document and yields its records lazily. Breaking out of
// the loop stops the traversal.
func (r *Reader) Records(ctx context.Context, src io.Reader) iter.Seq2[*core.Record, error] {
	return func(yield func(*core.Record, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return
		}
		root, err := markup.Parse(src)
		if err != nil {
			yield(nil, err)
			return
		}

		c := r.collector()
		defer func() {
			r.mu.Lock()
			r.lastStats = c.Stats()
			r.mu.Unlock()
		}()
		for rec, err := range c.ProduceRecords(root.Children) {
			if err == nil {
				err = ctx.Err()
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// ReadFile returns the records of the document at path. Results are cached
// until the file, the schema or the read configuration changes. Readers with
// a custom resolver never use the cache.
func (r *Reader) ReadFile(ctx context.Context, path string) ([]*core.Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat document: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	if r.cacheKey != "" {
		if records, ok := r.cache.Get(path, info.ModTime(), r.cacheKey); ok {
			r.recordRead(true)
			if r.logger != nil {
				r.logger.Debug("cache hit", "path", path, "records", len(records))
			}
			return records, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	records, err := r.ReadDocument(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if r.cacheKey != "" {
		r.cache.Set(path, info.ModTime(), r.cacheKey, records)
	}
	r.recordRead(false)
	if r.logger != nil {
		r.logger.Debug("document read", "path", path, "records", len(records))
	}
	return records, nil
}

// ReadGlob reads every document matched by patterns, in path order, and
// persists the cache afterwards.
func (r *Reader) ReadGlob(ctx context.Context, patterns ...string) ([]*core.Record, error) {
	paths, err := fs.Discover(patterns...)
	if err != nil {
		return nil, err
	}
	var out []*core.Record
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := r.ReadFile(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, records...)
	}
	if err := r.cache.Save(); err != nil {
		return nil, fmt.Errorf("failed to save cache: %w", err)
	}
	return out, nil
}

// Save persists the record cache when a cache directory is configured.
func (r *Reader) Save() error {
	return r.cache.Save()
}

// Forget drops the cached records of path.
func (r *Reader) Forget(path string) {
	r.cache.Delete(path)
}

func (r *Reader) recordRead(hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.lastRead = &now
	r.documents++
	if hit {
		r.hits++
	}
}

func (r *Reader) setWatching(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watching = active
}

// State implements introspection.Introspectable.
func (r *Reader) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return ReaderState{
		Entity:      r.def.Name,
		Fingerprint: r.def.Fingerprint(),
		SchemaFile:  r.config.schemaFile,
		Strict:      r.config.strict,
		MaxDepth:    effectiveDepth(r.maxDepth),
		Documents:   r.documents,
		CacheHits:   r.hits,
		Watching:    r.watching,
		LastRead:    r.lastRead,
		LastStats:   r.lastStats,
		Cached:      r.cacheKey != "",
		Cache:       r.cache.State(),
	}
}

// ComponentType implements introspection.Component.
func (r *Reader) ComponentType() string {
	return "reader"
}

var _ introspection.Introspectable = (*Reader)(nil)
var _ introspection.Component = (*Reader)(nil)

// IsNodeError reports whether err points at a location in a document.
func IsNodeError(err error) bool {
	var nodeErr *core.NodeError
	return errors.As(err, &nodeErr)
}

func effectiveDepth(depth int) int {
	if depth <= 0 {
		return collect.DefaultMaxDepth
	}
	return depth
}

// readKey combines the schema fingerprint with the settings that change the
// records built from a document. Custom resolvers cannot be identified, so
// they disable caching.
func readKey(def *core.EntityDefinition, resolver core.Resolver, maxDepth int) string {
	if _, ok := resolver.(resolve.Substitution); !ok {
		return ""
	}
	return fmt.Sprintf("%s:substitution:depth=%d", def.Fingerprint(), effectiveDepth(maxDepth))
}
