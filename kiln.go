package kiln

import (
	"log/slog"
	"time"

	"github.com/aretw0/kiln/internal/platform"
	"github.com/aretw0/kiln/pkg/core"
)

// Version exposes the version of the library.
// See version.go for the implementation using go:embed.

// --- Types ---

// Reader builds records from documents. See platform.Reader.
type Reader = platform.Reader

// ReaderState is the introspection snapshot of a Reader.
type ReaderState = platform.ReaderState

// Record is a built record.
type Record = core.Record

// --- Configuration ---

// Option defines a functional option for configuring a Reader.
type Option = platform.Option

// WithSchema uses an already built entity definition.
func WithSchema(def *core.EntityDefinition) Option {
	return platform.WithSchema(def)
}

// WithSchemaFile loads the entity definition from a YAML file.
func WithSchemaFile(path string) Option {
	return platform.WithSchemaFile(path)
}

// WithResolver replaces the default ${name} substitution resolver.
func WithResolver(r core.Resolver) Option {
	return platform.WithResolver(r)
}

// WithLogger sets the logger for the reader.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithMaxDepth bounds document nesting.
func WithMaxDepth(depth int) Option {
	return platform.WithMaxDepth(depth)
}

// WithCacheDir persists built records under dir.
func WithCacheDir(dir string) Option {
	return platform.WithCacheDir(dir)
}

// WithStrict controls whether unknown schema fields are rejected.
func WithStrict(strict bool) Option {
	return platform.WithStrict(strict)
}

// WithDebounce sets the delay used to coalesce document changes while watching.
func WithDebounce(d time.Duration) Option {
	return platform.WithDebounce(d)
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates a new Reader.
func New(opts ...Option) (*Reader, error) {
	return platform.New(opts...)
}

// --- Utils ---

// FindRoot recursively looks upwards for a .kiln directory or a .kiln.yaml file.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
