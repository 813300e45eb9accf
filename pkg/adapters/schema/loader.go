// Package schema loads entity definitions from YAML files.
//
//	entity: Task
//	properties:
//	  - name: Title
//	    type: string
//	  - name: Tags
//	    type: string[]
//	    collection: true
//	    default: core
//	variables:
//	  team: platform
package schema

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/kiln/pkg/core"
)

// File is the on-disk form of an entity definition.
type File struct {
	Entity     string            `yaml:"entity"`
	Properties []Property        `yaml:"properties"`
	Variables  map[string]string `yaml:"variables,omitempty"`
}

// Property is the on-disk form of a property definition.
type Property struct {
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"`
	// Default is a pointer so an explicit empty default is kept.
	Default    *string `yaml:"default,omitempty"`
	Collection bool    `yaml:"collection,omitempty"`
}

// Loader reads entity definitions.
type Loader struct {
	// Strict rejects unknown keys.
	Strict bool
}

// NewLoader creates a loader.
func NewLoader(strict bool) *Loader {
	return &Loader{Strict: strict}
}

// Parse reads a definition from r.
func (l *Loader) Parse(r io.Reader) (*core.EntityDefinition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(l.Strict)

	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("invalid schema: empty document")
		}
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return f.Definition()
}

// Load reads the definition stored at path.
func (l *Loader) Load(path string) (*core.EntityDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	def, err := l.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Definition validates the file and builds the entity definition.
func (f File) Definition() (*core.EntityDefinition, error) {
	props := make([]core.PropertyDefinition, 0, len(f.Properties))
	for _, p := range f.Properties {
		collection := p.Collection || strings.HasSuffix(p.Type, "[]")
		props = append(props, core.PropertyDefinition{
			Name:         p.Name,
			Type:         p.Type,
			Default:      p.Default,
			IsCollection: collection,
		})
	}

	names := make([]string, 0, len(f.Variables))
	for name := range f.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	vars := make([]core.Variable, 0, len(names))
	for _, name := range names {
		vars = append(vars, core.Variable{Name: name, Value: f.Variables[name]})
	}

	return core.NewEntityDefinition(f.Entity, props, vars)
}

// FromDefinition converts a definition back into its on-disk form.
func FromDefinition(def *core.EntityDefinition) File {
	f := File{Entity: def.Name}
	for _, p := range def.Properties() {
		f.Properties = append(f.Properties, Property{
			Name:       p.Name,
			Type:       p.Type,
			Default:    p.Default,
			Collection: p.IsCollection,
		})
	}
	if vars := def.Variables(); len(vars) > 0 {
		f.Variables = make(map[string]string, len(vars))
		for _, v := range vars {
			f.Variables[v.Name] = v.Value
		}
	}
	return f
}

// Marshal renders a definition as YAML.
func Marshal(def *core.EntityDefinition) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(FromDefinition(def)); err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
