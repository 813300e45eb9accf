package collect

import (
	"fmt"

	"github.com/aretw0/kiln/pkg/core"
)

// Command element names.
const (
	CommandSet    = "set"
	CommandAppend = "append"
	CommandPrefix = "prefix"
	CommandTag    = "tag"
	CommandAdd    = "add"
)

func isCommand(name string) bool {
	switch name {
	case CommandSet, CommandAppend, CommandPrefix, CommandTag, CommandAdd:
		return true
	}
	return false
}

// attributeCommand translates name=raw into AddTag, AddItem or Set.
func (w *walk) attributeCommand(n *core.Node, name, raw string) (core.Command, error) {
	if name == core.TagName {
		v, err := w.resolve(n, raw)
		if err != nil {
			return nil, err
		}
		return core.AddTag{Value: v}, nil
	}
	prop, err := w.property(n, name)
	if err != nil {
		return nil, err
	}
	v, err := w.resolve(n, raw)
	if err != nil {
		return nil, err
	}
	if prop.IsCollection {
		return core.AddItem{Property: name, Value: v, Default: prop.Default}, nil
	}
	return core.Set{Property: name, Value: v}, nil
}

// commandsFor translates the attributes of a command element.
func (w *walk) commandsFor(n *core.Node) (core.Commands, error) {
	var out core.Commands
	switch n.Name {
	case CommandSet:
		for _, a := range n.Attrs {
			cmd, err := w.attributeCommand(n, a.Name, a.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, cmd)
		}

	case CommandAppend, CommandPrefix:
		for _, a := range n.Attrs {
			if _, err := w.property(n, a.Name); err != nil {
				return nil, err
			}
			v, err := w.resolve(n, a.Value)
			if err != nil {
				return nil, err
			}
			if n.Name == CommandAppend {
				out = append(out, core.Append{Property: a.Name, Value: v})
			} else {
				out = append(out, core.Prefix{Property: a.Name, Value: v})
			}
		}

	case CommandTag:
		raw, ok := n.Attr("value")
		if !ok {
			return nil, nil
		}
		v, err := w.resolve(n, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, core.AddTag{Value: v})

	case CommandAdd:
		for _, a := range n.Attrs {
			prop, err := w.property(n, a.Name)
			if err != nil {
				return nil, err
			}
			if !prop.IsCollection {
				return nil, core.NewNodeError(n, fmt.Errorf("%w: %s", core.ErrCannotAddItemToNonCollectionProperty, a.Name))
			}
			v, err := w.resolve(n, a.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, core.AddItem{Property: a.Name, Value: v, Default: prop.Default})
		}

	default:
		return nil, core.NewNodeError(n, fmt.Errorf("%w: %s", core.ErrCommandIsNotDefined, n.Name))
	}
	return out, nil
}

// childCommands derives the commands declared by the children of a record element.
func (w *walk) childCommands(n *core.Node) (core.Commands, error) {
	var out core.Commands
	for _, child := range n.Children {
		if len(child.Attrs) > 0 {
			if !isCommand(child.Name) {
				return nil, core.NewNodeError(child, fmt.Errorf("%w: %s", core.ErrCommandIsNotDefined, child.Name))
			}
			cmds, err := w.commandsFor(child)
			if err != nil {
				return nil, err
			}
			out = append(out, cmds...)
			continue
		}
		cmd, err := w.attributeCommand(child, child.Name, child.Text)
		if err != nil {
			return nil, err
		}
		out = append(out, cmd)
	}
	return out, nil
}

func (w *walk) property(n *core.Node, name string) (core.PropertyDefinition, error) {
	prop, ok := w.def.Property(name)
	if !ok {
		return core.PropertyDefinition{}, core.NewNodeError(n, fmt.Errorf("%w: %s", core.ErrPropertyIsNotDefined, name))
	}
	return prop, nil
}
