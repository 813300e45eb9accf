package platform

import (
	"fmt"

	"github.com/aretw0/kiln/pkg/adapters/fs"
	"github.com/aretw0/kiln/pkg/adapters/schema"
	"github.com/aretw0/kiln/pkg/resolve"
)

// New creates a Reader.
//
//	r, err := kiln.New(kiln.WithSchemaFile("task.yaml"), kiln.WithCacheDir(".kiln"))
//
// A schema is required, either built (WithSchema) or loaded (WithSchemaFile).
func New(opts ...Option) (*Reader, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	def := o.definition
	if def == nil {
		if o.schemaFile == "" {
			return nil, fmt.Errorf("no schema configured")
		}
		loaded, err := schema.NewLoader(o.strict).Load(o.schemaFile)
		if err != nil {
			return nil, err
		}
		def = loaded
	}

	resolver := o.resolver
	if resolver == nil {
		resolver = resolve.Default
	}

	cache := fs.NewCache(o.cacheDir)
	if err := cache.Load(); err != nil {
		return nil, err
	}

	if o.logger != nil {
		o.logger.Debug("reader ready",
			"entity", def.Name,
			"fingerprint", def.Fingerprint(),
			"cache", cache.Path,
		)
	}

	return &Reader{
		def:      def,
		resolver: resolver,
		logger:   o.logger,
		maxDepth: o.maxDepth,
		cache:    cache,
		config:   o,
		cacheKey: readKey(def, resolver, o.maxDepth),
	}, nil
}
