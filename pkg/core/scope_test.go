package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/kiln/pkg/core"
)

func TestVariableStack_NearestWins(t *testing.T) {
	def, err := core.NewEntityDefinition("Task", nil, []core.Variable{{Name: "v", Value: "global"}})
	require.NoError(t, err)

	s := core.NewVariableStack(def)
	v, ok := s.Lookup("v")
	assert.True(t, ok)
	assert.Equal(t, "global", v)

	pop1 := s.Push(core.Variable{Name: "v", Value: "1"})
	pop2 := s.Push(core.Variable{Name: "other", Value: "o"})
	pop3 := s.Push(core.Variable{Name: "v", Value: "2"})

	v, _ = s.Lookup("v")
	assert.Equal(t, "2", v)
	assert.Equal(t, 3, s.Depth())

	pop3()
	v, _ = s.Lookup("v")
	assert.Equal(t, "1", v)

	pop2()
	pop1()
	v, _ = s.Lookup("v")
	assert.Equal(t, "global", v)

	_, ok = s.Lookup("missing")
	assert.False(t, ok)

	pushes, pops := s.Balance()
	assert.Equal(t, 3, pushes)
	assert.Equal(t, 3, pops)
}

func TestVariableStack_WithoutDefinition(t *testing.T) {
	s := core.NewVariableStack(nil)
	_, ok := s.Lookup("v")
	assert.False(t, ok)
}

func TestCommandStack_AppliesOutermostFirst(t *testing.T) {
	var s core.CommandStack
	popOuter := s.Push(core.Set{Property: "p", Value: "outer"})
	popInner := s.Push(core.Group{core.Append{Property: "p", Value: "+inner"}, core.AddTag{Value: "t"}})

	r := core.NewRecord(nil)
	s.Apply(r)
	assert.Equal(t, "outer+inner", r.Properties["p"])
	assert.Equal(t, []string{"t"}, r.Tags)

	popInner()
	r = core.NewRecord(nil)
	s.Apply(r)
	assert.Equal(t, "outer", r.Properties["p"])
	assert.Empty(t, r.Tags)

	popOuter()
	assert.Equal(t, 0, s.Depth())
}

func TestEntityDefinition(t *testing.T) {
	d := "x"
	props := []core.PropertyDefinition{{Name: "A", Default: &d}, {Name: "B", IsCollection: true}}
	def, err := core.NewEntityDefinition("Task", props, nil)
	require.NoError(t, err)

	d = "mutated"
	a, ok := def.Property("A")
	require.True(t, ok)
	assert.Equal(t, "x", *a.Default, "definitions do not alias caller memory")

	_, ok = def.Property("C")
	assert.False(t, ok)
	assert.Len(t, def.Properties(), 2)

	other, err := core.NewEntityDefinition("Task", props[:1], nil)
	require.NoError(t, err)
	assert.NotEqual(t, def.Fingerprint(), other.Fingerprint())
}

func TestEntityDefinition_Reserved(t *testing.T) {
	for _, name := range []string{core.IdentityName, core.TagName} {
		_, err := core.NewEntityDefinition("Task", []core.PropertyDefinition{{Name: name}}, nil)
		assert.ErrorIs(t, err, core.ErrPropertyNameIsReserved)
	}

	_, err := core.NewEntityDefinition("", nil, nil)
	assert.ErrorIs(t, err, core.ErrEntityNameRequired)
}

func TestNodeError(t *testing.T) {
	root := &core.Node{Name: "doc"}
	set := root.Append(&core.Node{Name: "set", Line: 3})
	root.Append(&core.Node{Name: "set"})

	err := core.NewNodeError(set, core.ErrUnknownElement)
	assert.ErrorIs(t, err, core.ErrUnknownElement)
	assert.Equal(t, "<doc/set[1]> at line 3: unknown element", err.Error())

	again := core.NewNodeError(root, err)
	var ne *core.NodeError
	require.True(t, errors.As(again, &ne))
	assert.Same(t, set, ne.Node, "the innermost node is kept")
}
