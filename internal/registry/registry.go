// Package registry holds kind definitions. A Registry is an explicit value
// passed to every pipeline; there is no package-level kind table.
package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/blockc/internal/ir"
)

// Shape is the position a kind is built to occupy.
type Shape string

const (
	ShapeTop       Shape = "top"
	ShapeStatement Shape = "statement"
	ShapeValue     Shape = "value"
)

// Definition describes one node kind.
type Definition struct {
	Kind            string   `json:"kind"`
	Label           string   `json:"label"`
	Shape           Shape    `json:"shape"`
	Fields          []string `json:"fields,omitempty"`
	ValueInputs     []string `json:"value_inputs,omitempty"`
	StatementInputs []string `json:"statement_inputs,omitempty"`

	// Call names the runtime API function a call kind maps to.
	Call string `json:"call,omitempty"`
	// Await marks runtime calls that must be awaited.
	Await bool `json:"await,omitempty"`
	// Enum names the selection list an enumeration kind draws from.
	Enum string `json:"enum,omitempty"`

	// Placeholder marks definitions synthesized for unknown kinds.
	Placeholder bool `json:"placeholder,omitempty"`
}

// Arity is the declared input count of the definition.
func (d Definition) Arity() ir.Arity {
	return ir.Arity{Values: len(d.ValueInputs), Statements: len(d.StatementInputs)}
}

// ErrDuplicate is returned when registering a kind that already has a
// non-placeholder definition.
var ErrDuplicate = errors.New("kind already registered")

// Registry maps kinds to definitions. It is not safe for concurrent
// mutation; pipelines register during import and only read afterwards.
type Registry struct {
	defs map[string]Definition
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// NewDefault returns a registry holding the built-in vocabulary.
func NewDefault() *Registry {
	r := New()
	for _, def := range Builtins() {
		// Builtins are unique by construction.
		r.defs[def.Kind] = def
	}
	return r
}

// Lookup returns the definition for kind.
func (r *Registry) Lookup(kind string) (Definition, bool) {
	def, ok := r.defs[kind]
	return def, ok
}

// Has reports whether kind is defined, placeholders included.
func (r *Registry) Has(kind string) bool {
	_, ok := r.defs[kind]
	return ok
}

// Register adds a definition. A placeholder may always be replaced; any
// other existing definition makes Register fail with ErrDuplicate.
func (r *Registry) Register(def Definition) error {
	if def.Kind == "" {
		return fmt.Errorf("register: definition has no kind")
	}
	if existing, ok := r.defs[def.Kind]; ok && !existing.Placeholder {
		return fmt.Errorf("register %q: %w", def.Kind, ErrDuplicate)
	}
	if def.Label == "" {
		def.Label = def.Kind
	}
	r.defs[def.Kind] = def
	return nil
}

// Kinds returns every defined kind, sorted.
func (r *Registry) Kinds() []string {
	return slices.Sorted(maps.Keys(r.defs))
}

// Placeholders returns the placeholder definitions, sorted by kind.
func (r *Registry) Placeholders() []Definition {
	var out []Definition
	for _, kind := range r.Kinds() {
		if def := r.defs[kind]; def.Placeholder {
			out = append(out, def)
		}
	}
	return out
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	return &Registry{defs: maps.Clone(r.defs)}
}
