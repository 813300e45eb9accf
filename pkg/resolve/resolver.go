// Package resolve implements the default value substitution grammar.
//
// A raw value may reference variables as ${name}. "$$" produces a literal
// dollar sign and a "$" not followed by "{" or "$" is kept as is. Values are
// substituted in a single pass: a resolved value is never scanned again.
package resolve

import (
	"fmt"
	"strings"

	"github.com/aretw0/kiln/pkg/core"
)

// Default is the ${name} resolver.
var Default core.Resolver = Substitution{}

// Identity returns raw values untouched.
var Identity core.Resolver = ResolverFunc(func(raw string, _ func(string) (string, bool)) (string, error) {
	return raw, nil
})

// ResolverFunc adapts a function to core.Resolver.
type ResolverFunc func(raw string, lookup func(string) (string, bool)) (string, error)

// Resolve implements core.Resolver.
func (f ResolverFunc) Resolve(raw string, lookup func(string) (string, bool)) (string, error) {
	return f(raw, lookup)
}

// Substitution resolves ${name} references.
type Substitution struct{}

// Resolve implements core.Resolver.
func (Substitution) Resolve(raw string, lookup func(string) (string, bool)) (string, error) {
	if !strings.Contains(raw, "$") {
		return raw, nil
	}

	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '$' || i+1 >= len(raw) {
			b.WriteByte(c)
			continue
		}
		switch raw[i+1] {
		case '$':
			b.WriteByte('$')
			i++
		case '{':
			end := strings.IndexByte(raw[i+2:], '}')
			if end < 0 {
				return "", fmt.Errorf("%w: unterminated reference at offset %d in %q", core.ErrInvalidValue, i, raw)
			}
			name := strings.TrimSpace(raw[i+2 : i+2+end])
			if name == "" {
				return "", fmt.Errorf("%w: empty reference at offset %d in %q", core.ErrInvalidValue, i, raw)
			}
			value, ok := lookup(name)
			if !ok {
				return "", fmt.Errorf("%w: variable %q is not defined", core.ErrInvalidValue, name)
			}
			b.WriteString(value)
			i += end + 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
