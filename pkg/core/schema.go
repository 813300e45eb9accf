package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
)

const (
	// IdentityName is the attribute that carries a record's id.
	IdentityName = "id"
	// TagName is the attribute, element and pseudo-property used to add tags.
	TagName = "tag"
	// VariableElement declares a variable scope.
	VariableElement = "var"
)

// PropertyDefinition describes a single property records may carry.
type PropertyDefinition struct {
	Name string
	// Type is informational; values are not checked against it.
	Type         string
	Default      *string
	IsCollection bool
}

// HasDefault reports whether the property declares a default value.
func (p PropertyDefinition) HasDefault() bool {
	return p.Default != nil
}

// Variable is a named string binding.
type Variable struct {
	Name  string
	Value string
}

// EntityDefinition is the schema records are validated against.
// It is read-only once built by NewEntityDefinition.
type EntityDefinition struct {
	Name       string
	properties []PropertyDefinition
	byName     map[string]int
	variables  map[string]string
	varOrder   []string
}

// NewEntityDefinition validates and builds an entity definition.
func NewEntityDefinition(name string, props []PropertyDefinition, vars []Variable) (*EntityDefinition, error) {
	if name == "" {
		return nil, ErrEntityNameRequired
	}
	def := &EntityDefinition{
		Name:      name,
		byName:    make(map[string]int, len(props)),
		variables: make(map[string]string, len(vars)),
	}
	for _, p := range props {
		if p.Name == "" {
			return nil, fmt.Errorf("entity %s: property name is required", name)
		}
		if IsReservedName(p.Name) {
			return nil, fmt.Errorf("entity %s: %w: %s", name, ErrPropertyNameIsReserved, p.Name)
		}
		if _, ok := def.byName[p.Name]; ok {
			return nil, fmt.Errorf("entity %s: %w: %s", name, ErrDuplicateProperty, p.Name)
		}
		if p.Default != nil {
			v := *p.Default
			p.Default = &v
		}
		def.byName[p.Name] = len(def.properties)
		def.properties = append(def.properties, p)
	}
	for _, v := range vars {
		if _, ok := def.variables[v.Name]; !ok {
			def.varOrder = append(def.varOrder, v.Name)
		}
		def.variables[v.Name] = v.Value
	}
	return def, nil
}

// IsReservedName reports whether name cannot be used for a property.
func IsReservedName(name string) bool {
	return name == IdentityName || name == TagName
}

// Property returns the property definition by name.
func (d *EntityDefinition) Property(name string) (PropertyDefinition, bool) {
	i, ok := d.byName[name]
	if !ok {
		return PropertyDefinition{}, false
	}
	return d.properties[i], true
}

// Properties returns the properties in declaration order.
func (d *EntityDefinition) Properties() []PropertyDefinition {
	out := make([]PropertyDefinition, len(d.properties))
	copy(out, d.properties)
	return out
}

// Variable returns an entity-level variable.
func (d *EntityDefinition) Variable(name string) (string, bool) {
	v, ok := d.variables[name]
	return v, ok
}

// Variables returns the entity-level variables in declaration order.
func (d *EntityDefinition) Variables() []Variable {
	out := make([]Variable, 0, len(d.varOrder))
	for _, name := range d.varOrder {
		out = append(out, Variable{Name: name, Value: d.variables[name]})
	}
	return out
}

// Fingerprint returns a stable digest of the definition, used to key cached reads.
func (d *EntityDefinition) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "entity=%q\n", d.Name)
	for _, p := range d.properties {
		def := "-"
		if p.Default != nil {
			def = strconv.Quote(*p.Default)
		}
		fmt.Fprintf(h, "prop=%q type=%q default=%s collection=%t\n", p.Name, p.Type, def, p.IsCollection)
	}
	names := make([]string, 0, len(d.variables))
	for name := range d.variables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(h, "var=%q value=%q\n", name, d.variables[name])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
