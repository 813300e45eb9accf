package core

// Command is a deferred mutation of a record.
// The set of commands is closed: Set, AddItem, Append, Prefix, AddTag and Group.
type Command interface {
	Apply(r *Record)
	command()
}

// Set overwrites a property with a scalar value.
type Set struct {
	Property string
	Value    string
}

// AddItem appends a value to a collection property.
type AddItem struct {
	Property string
	Value    string
	// Default seeds an absent collection before the value is appended, so
	// schema defaults are kept alongside explicit items.
	Default *string
}

// Append concatenates a value onto the end of a property.
type Append struct {
	Property string
	Value    string
}

// Prefix concatenates a value onto the start of a property.
type Prefix struct {
	Property string
	Value    string
}

// AddTag adds a value to the record tag set.
type AddTag struct {
	Value string
}

// Group applies several commands as one unit.
type Group []Command

func (Set) command()     {}
func (AddItem) command() {}
func (Append) command()  {}
func (Prefix) command()  {}
func (AddTag) command()  {}
func (Group) command()   {}

// Apply implements Command.
func (c Set) Apply(r *Record) {
	r.ensure()
	r.Properties[c.Property] = c.Value
}

// Apply implements Command.
func (c AddItem) Apply(r *Record) {
	r.ensure()
	var items []string
	switch v := r.Properties[c.Property].(type) {
	case []string:
		items = v
	case string:
		items = []string{v}
	default:
		if c.Default != nil {
			items = []string{*c.Default}
		}
	}
	r.Properties[c.Property] = append(items, c.Value)
}

// Apply implements Command.
func (c Append) Apply(r *Record) {
	concat(r, c.Property, func(cur string) string { return cur + c.Value }, c.Value)
}

// Apply implements Command.
func (c Prefix) Apply(r *Record) {
	concat(r, c.Property, func(cur string) string { return c.Value + cur }, c.Value)
}

// concat rewrites a scalar value, or the last item of a sequence.
func concat(r *Record, name string, fn func(string) string, value string) {
	r.ensure()
	switch v := r.Properties[name].(type) {
	case []string:
		if len(v) == 0 {
			r.Properties[name] = []string{value}
			return
		}
		v[len(v)-1] = fn(v[len(v)-1])
	case string:
		r.Properties[name] = fn(v)
	default:
		r.Properties[name] = fn("")
	}
}

// Apply implements Command.
func (c AddTag) Apply(r *Record) {
	if r.HasTag(c.Value) {
		return
	}
	r.Tags = append(r.Tags, c.Value)
}

// Apply implements Command.
func (g Group) Apply(r *Record) {
	for _, c := range g {
		c.Apply(r)
	}
}

// Commands is an ordered collection of commands. Later commands observe the
// mutations of earlier ones.
type Commands []Command

// Apply runs every command in order.
func (cs Commands) Apply(r *Record) {
	for _, c := range cs {
		c.Apply(r)
	}
}

// Group wraps the collection as a single command.
func (cs Commands) Group() Command {
	if len(cs) == 1 {
		return cs[0]
	}
	return Group(cs)
}
