package core

// Resolver substitutes variable references inside a raw value.
// Implementations report failures wrapping ErrInvalidValue.
type Resolver interface {
	Resolve(raw string, lookup func(name string) (string, bool)) (string, error)
}

// VariableStack holds the variables declared by enclosing scopes.
type VariableStack struct {
	entries []Variable
	global  *EntityDefinition
	pushes  int
	pops    int
}

// NewVariableStack creates a stack falling back to the entity-level variables of def.
func NewVariableStack(def *EntityDefinition) *VariableStack {
	return &VariableStack{global: def}
}

// Push binds v until the returned function is called.
// The pop function must be called exactly once, in LIFO order.
func (s *VariableStack) Push(v Variable) (pop func()) {
	s.entries = append(s.entries, v)
	s.pushes++
	depth := len(s.entries)
	return func() {
		s.entries = s.entries[:depth-1]
		s.pops++
	}
}

// Lookup finds the nearest enclosing binding of name, then the entity-level one.
func (s *VariableStack) Lookup(name string) (string, bool) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Name == name {
			return s.entries[i].Value, true
		}
	}
	if s.global != nil {
		return s.global.Variable(name)
	}
	return "", false
}

// Depth returns the number of bindings currently in scope.
func (s *VariableStack) Depth() int {
	return len(s.entries)
}

// Balance returns the number of pushes and pops performed so far.
func (s *VariableStack) Balance() (pushes, pops int) {
	return s.pushes, s.pops
}

// CommandStack holds the command groups declared by enclosing scopes.
type CommandStack struct {
	entries []Command
	pushes  int
	pops    int
}

// Push keeps c in scope until the returned function is called.
func (s *CommandStack) Push(c Command) (pop func()) {
	s.entries = append(s.entries, c)
	s.pushes++
	depth := len(s.entries)
	return func() {
		s.entries = s.entries[:depth-1]
		s.pops++
	}
}

// Apply runs every command in scope, outermost first.
func (s *CommandStack) Apply(r *Record) {
	for _, c := range s.entries {
		c.Apply(r)
	}
}

// Depth returns the number of groups currently in scope.
func (s *CommandStack) Depth() int {
	return len(s.entries)
}

// Balance returns the number of pushes and pops performed so far.
func (s *CommandStack) Balance() (pushes, pops int) {
	return s.pushes, s.pops
}
