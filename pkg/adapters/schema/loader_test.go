package schema_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/kiln/pkg/adapters/schema"
	"github.com/aretw0/kiln/pkg/core"
)

const taskSchema = `
entity: Task
properties:
  - name: Title
    type: string
  - name: Tags
    type: string
    collection: true
    default: core
  - name: Owners
    type: string[]
  - name: Notes
    default: ""
variables:
  team: platform
  region: eu
`

func TestLoader_Parse(t *testing.T) {
	def, err := schema.NewLoader(true).Parse(strings.NewReader(taskSchema))
	require.NoError(t, err)

	assert.Equal(t, "Task", def.Name)

	tags, ok := def.Property("Tags")
	require.True(t, ok)
	assert.True(t, tags.IsCollection)
	require.NotNil(t, tags.Default)
	assert.Equal(t, "core", *tags.Default)

	owners, _ := def.Property("Owners")
	assert.True(t, owners.IsCollection, "[] type suffix marks a collection")

	notes, _ := def.Property("Notes")
	require.NotNil(t, notes.Default, "explicit empty default is kept")
	assert.Equal(t, "", *notes.Default)

	title, _ := def.Property("Title")
	assert.False(t, title.HasDefault())

	v, ok := def.Variable("team")
	assert.True(t, ok)
	assert.Equal(t, "platform", v)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		strict bool
		target error
	}{
		{
			name:   "reserved id",
			input:  "entity: Task\nproperties:\n  - name: id\n",
			target: core.ErrPropertyNameIsReserved,
		},
		{
			name:   "reserved tag",
			input:  "entity: Task\nproperties:\n  - name: tag\n",
			target: core.ErrPropertyNameIsReserved,
		},
		{
			name:   "duplicate",
			input:  "entity: Task\nproperties:\n  - name: A\n  - name: A\n",
			target: core.ErrDuplicateProperty,
		},
		{
			name:   "unknown field in strict mode",
			input:  "entity: Task\ncolour: red\n",
			strict: true,
		},
		{
			name:  "missing entity",
			input: "properties: []\n",
		},
		{
			name:  "empty",
			input: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := schema.NewLoader(tc.strict).Parse(strings.NewReader(tc.input))
			require.Error(t, err)
			if tc.target != nil {
				assert.ErrorIs(t, err, tc.target)
			}
		})
	}
}

func TestLoader_LoadAndMarshal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task.yaml")
	require.NoError(t, os.WriteFile(path, []byte(taskSchema), 0644))

	loader := schema.NewLoader(true)
	def, err := loader.Load(path)
	require.NoError(t, err)

	data, err := schema.Marshal(def)
	require.NoError(t, err)

	again, err := loader.Parse(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, def.Fingerprint(), again.Fingerprint())

	_, err = loader.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
