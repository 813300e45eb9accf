package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/kiln/pkg/core"
)

// DefaultSystemDir is the directory holding the persisted record cache.
const DefaultSystemDir = ".kiln"

// options holds the internal configuration for a Reader.
type options struct {
	definition   *core.EntityDefinition
	schemaFile   string
	resolver     core.Resolver
	logger       *slog.Logger
	maxDepth     int
	cacheDir     string
	strict       bool
	debounce     time.Duration
	errorHandler func(error)
}

// Option defines a functional option for configuring a Reader.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		strict: true,
	}
}

// WithSchema uses an already built entity definition. It takes precedence
// over WithSchemaFile.
func WithSchema(def *core.EntityDefinition) Option {
	return func(o *options) {
		o.definition = def
	}
}

// WithSchemaFile loads the entity definition from a YAML schema file.
func WithSchemaFile(path string) Option {
	return func(o *options) {
		o.schemaFile = path
	}
}

// WithResolver replaces the default ${name} substitution resolver.
func WithResolver(r core.Resolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithLogger sets the logger for the reader and its collectors.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxDepth bounds document nesting. Zero keeps the collector default.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithCacheDir persists built records under dir (e.g. ".kiln").
// Without it records are cached in memory for the lifetime of the Reader.
func WithCacheDir(dir string) Option {
	return func(o *options) {
		o.cacheDir = dir
	}
}

// WithStrict controls whether unknown schema fields are rejected.
// Strict mode is the default.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithDebounce sets the delay used to coalesce document changes while watching.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithWatcherErrorHandler registers a callback to handle errors occurring during the Watch loop.
// This allows applications to react to runtime watcher failures (e.g. permission denied)
// which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
