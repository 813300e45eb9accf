// Package collect builds records from a markup node tree.
//
// A document is walked depth-first. Elements named after the entity declare
// records; the command elements (set, append, prefix, tag, add) declare
// command scopes that apply to every record in their subtree; var declares a
// variable scope visible to every value resolved in its subtree.
//
// A record is built by applying, in order: the commands derived from its own
// attributes, the commands derived from its child elements, the commands of
// every enclosing scope (outermost first), and finally the schema defaults of
// properties that are still absent.
package collect

import (
	"errors"
	"iter"
	"log/slog"

	"github.com/aretw0/kiln/pkg/core"
	"github.com/aretw0/kiln/pkg/resolve"
)

// DefaultMaxDepth bounds document nesting.
const DefaultMaxDepth = 512

// Sink receives the records built by a Collector.
// Both hooks are invoked exactly once per record declaration, in document order.
type Sink interface {
	// CreateRecordShell allocates an empty record. id is nil for anonymous records.
	CreateRecordShell(id *string) *core.Record
	// AddRecord takes ownership of a finished record.
	AddRecord(r *core.Record) error
}

// Stats describes the last traversal run by a Collector.
type Stats struct {
	Records     int
	ScopePushes int
	ScopePops   int
	MaxDepth    int
}

// Balanced reports whether every pushed scope was popped.
func (s Stats) Balanced() bool {
	return s.ScopePushes == s.ScopePops
}

// Option configures a Collector.
type Option func(*Collector)

// WithResolver sets the value resolver. Defaults to resolve.Default.
func WithResolver(r core.Resolver) Option {
	return func(c *Collector) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithLogger sets the logger used for debug traces.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// WithSink sets the record sink used by Collect.
func WithSink(s Sink) Option {
	return func(c *Collector) {
		c.sink = s
	}
}

// WithMaxDepth bounds document nesting. Zero or less keeps DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(c *Collector) {
		if depth > 0 {
			c.maxDepth = depth
		}
	}
}

// Collector walks documents and builds records for one entity definition.
// A Collector is not safe for concurrent use; every traversal owns its own
// scope stacks.
type Collector struct {
	def      *core.EntityDefinition
	resolver core.Resolver
	logger   *slog.Logger
	sink     Sink
	maxDepth int
	stats    Stats
}

// New creates a Collector for def.
func New(def *core.EntityDefinition, opts ...Option) *Collector {
	c := &Collector{
		def:      def,
		resolver: resolve.Default,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Definition returns the entity definition records are built for.
func (c *Collector) Definition() *core.EntityDefinition {
	return c.def
}

// Stats returns the statistics of the last traversal.
func (c *Collector) Stats() Stats {
	return c.stats
}

// Collect walks nodes and hands every record to the configured sink.
func (c *Collector) Collect(nodes []*core.Node) error {
	if c.sink == nil {
		return errors.New("collector has no sink")
	}
	w := c.newWalk(c.sink, nil)
	err := w.run(nodes)
	c.stats = w.stats
	return err
}

// ProduceRecords walks nodes lazily, yielding every record once it is built.
// If a sink is configured it still receives every record before it is yielded.
// Stopping the iteration ends the traversal; an error is yielded once and ends it too.
func (c *Collector) ProduceRecords(nodes []*core.Node) iter.Seq2[*core.Record, error] {
	return func(yield func(*core.Record, error) bool) {
		sink := c.sink
		if sink == nil {
			sink = shells{}
		}
		w := c.newWalk(sink, func(r *core.Record) bool {
			return yield(r, nil)
		})
		err := w.run(nodes)
		c.stats = w.stats
		if err != nil && !errors.Is(err, errStopped) {
			yield(nil, err)
		}
	}
}

// Records walks nodes and returns every record built, in document order.
func (c *Collector) Records(nodes []*core.Node) ([]*core.Record, error) {
	var out []*core.Record
	for r, err := range c.ProduceRecords(nodes) {
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (c *Collector) newWalk(sink Sink, emit func(*core.Record) bool) *walk {
	return &walk{
		def:        c.def,
		properties: c.def.Properties(),
		resolver:   c.resolver,
		logger:     c.logger,
		maxDepth:   c.maxDepth,
		sink:       sink,
		emit:       emit,
		vars:       core.NewVariableStack(c.def),
		cmds:       &core.CommandStack{},
	}
}
