package collect

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/kiln/pkg/core"
)

// errStopped ends a traversal whose consumer stopped pulling records.
var errStopped = errors.New("traversal stopped")

type nodeKind int

const (
	kindUnknown nodeKind = iota
	kindRecord
	kindCommand
	kindVariable
)

// walk is the state of a single traversal.
type walk struct {
	def        *core.EntityDefinition
	properties []core.PropertyDefinition
	resolver   core.Resolver
	logger     *slog.Logger
	maxDepth   int
	sink       Sink
	emit       func(*core.Record) bool

	vars    *core.VariableStack
	cmds    *core.CommandStack
	current *core.Node
	stats   Stats
}

func (w *walk) run(nodes []*core.Node) error {
	err := w.collect(nodes, 1)
	vp, vq := w.vars.Balance()
	cp, cq := w.cmds.Balance()
	w.stats.ScopePushes = vp + cp
	w.stats.ScopePops = vq + cq
	return err
}

func (w *walk) classify(n *core.Node) nodeKind {
	switch {
	case n.Name == w.def.Name:
		return kindRecord
	case isCommand(n.Name):
		return kindCommand
	case n.Name == core.VariableElement:
		return kindVariable
	}
	return kindUnknown
}

func (w *walk) collect(nodes []*core.Node, depth int) error {
	if len(nodes) == 0 {
		return nil
	}
	if depth > w.maxDepth {
		return core.NewNodeError(nodes[0], fmt.Errorf("%w: limit is %d", core.ErrDocumentTooDeep, w.maxDepth))
	}
	if depth > w.stats.MaxDepth {
		w.stats.MaxDepth = depth
	}
	for _, n := range nodes {
		w.current = n
		if err := w.visit(n, depth); err != nil {
			return err
		}
		w.current = nil
	}
	return nil
}

func (w *walk) visit(n *core.Node, depth int) error {
	switch w.classify(n) {
	case kindRecord:
		r, err := w.build(n)
		if err != nil {
			return err
		}
		if err := w.sink.AddRecord(r); err != nil {
			return core.NewNodeError(w.current, err)
		}
		w.stats.Records++
		if w.logger != nil {
			w.logger.Debug("record built", "id", r.Identity(), "node", n.Path())
		}
		if w.emit != nil && !w.emit(r) {
			return errStopped
		}
		return nil

	case kindCommand:
		if !n.HasChildren() {
			return nil
		}
		cmds, err := w.commandsFor(n)
		if err != nil {
			return err
		}
		pop := w.cmds.Push(cmds.Group())
		defer pop()
		if w.logger != nil {
			w.logger.Debug("command scope pushed", "command", n.Name, "node", n.Path(), "depth", w.cmds.Depth())
		}
		return w.collect(n.Children, depth+1)

	case kindVariable:
		if !n.HasChildren() {
			return nil
		}
		v, err := w.variable(n)
		if err != nil {
			return err
		}
		pop := w.vars.Push(v)
		defer pop()
		if w.logger != nil {
			w.logger.Debug("variable scope pushed", "name", v.Name, "node", n.Path(), "depth", w.vars.Depth())
		}
		return w.collect(n.Children, depth+1)
	}
	return core.NewNodeError(n, fmt.Errorf("%w: %s", core.ErrUnknownElement, n.Name))
}

func (w *walk) variable(n *core.Node) (core.Variable, error) {
	name, ok := n.Attr("name")
	if !ok || name == "" {
		return core.Variable{}, core.NewNodeError(n, fmt.Errorf("%w: name", core.ErrMissingAttribute))
	}
	raw, ok := n.Attr("value")
	if !ok {
		return core.Variable{}, core.NewNodeError(n, fmt.Errorf("%w: value", core.ErrMissingAttribute))
	}
	value, err := w.resolve(n, raw)
	if err != nil {
		return core.Variable{}, err
	}
	return core.Variable{Name: name, Value: value}, nil
}

// build constructs the record declared by n.
func (w *walk) build(n *core.Node) (*core.Record, error) {
	var id *string
	var local core.Commands
	for _, a := range n.Attrs {
		if a.Name == core.IdentityName {
			v, err := w.resolve(n, a.Value)
			if err != nil {
				return nil, err
			}
			id = &v
			continue
		}
		cmd, err := w.attributeCommand(n, a.Name, a.Value)
		if err != nil {
			return nil, err
		}
		local = append(local, cmd)
	}

	r := w.sink.CreateRecordShell(id)
	if r == nil {
		return nil, core.NewNodeError(n, errors.New("sink returned no record shell"))
	}
	if r.Properties == nil {
		r.Properties = make(core.Properties)
	}
	local.Apply(r)

	children, err := w.childCommands(n)
	if err != nil {
		return nil, err
	}
	children.Apply(r)

	w.cmds.Apply(r)
	w.fillDefaults(r)
	return r, nil
}

func (w *walk) fillDefaults(r *core.Record) {
	for _, p := range w.properties {
		if p.Default == nil || r.Has(p.Name) {
			continue
		}
		if p.IsCollection {
			r.Properties[p.Name] = []string{*p.Default}
		} else {
			r.Properties[p.Name] = *p.Default
		}
	}
}

func (w *walk) resolve(n *core.Node, raw string) (string, error) {
	v, err := w.resolver.Resolve(raw, w.vars.Lookup)
	if err != nil {
		if !errors.Is(err, core.ErrInvalidValue) {
			err = fmt.Errorf("%w: %v", core.ErrInvalidValue, err)
		}
		return "", core.NewNodeError(n, err)
	}
	return v, nil
}

// shells allocates records for a lazy traversal without a sink.
type shells struct{}

func (shells) CreateRecordShell(id *string) *core.Record { return core.NewRecord(id) }
func (shells) AddRecord(*core.Record) error              { return nil }
