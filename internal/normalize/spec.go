package normalize

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/cases"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/registry"
)

// KindSpec declares the inputs of one canonical kind, in canonical order.
type KindSpec struct {
	Values     []string `json:"values"`
	Statements []string `json:"statements"`
}

// Arity is the declared input count.
func (k KindSpec) Arity() ir.Arity {
	return ir.Arity{Values: len(k.Values), Statements: len(k.Statements)}
}

// CanonicalSpec is the set of canonical kind names and their input shapes.
type CanonicalSpec struct {
	kinds  map[string]KindSpec
	byFold map[string][]string
}

// builtinShapes are the canonical shapes of the override targets, used
// when a spec does not declare them.
var builtinShapes = map[string]KindSpec{
	registry.CanonicalMod:            {Statements: []string{"RULES"}},
	registry.CanonicalRule:           {Values: []string{"CONDITIONS"}, Statements: []string{"ACTIONS"}},
	registry.CanonicalCondition:      {Values: []string{"CONDITION"}},
	registry.CanonicalSubroutine:     {Values: []string{"CONDITION"}, Statements: []string{"ACTIONS"}},
	registry.CanonicalSubroutineCall: {},
}

// NewSpec builds a spec from declared kinds plus the built-in shapes.
func NewSpec(kinds map[string]KindSpec) *CanonicalSpec {
	s := &CanonicalSpec{
		kinds:  maps.Clone(builtinShapes),
		byFold: make(map[string][]string),
	}
	for name, k := range kinds {
		s.kinds[name] = k
	}
	fold := cases.Fold()
	for _, name := range s.Kinds() {
		key := fold.String(name)
		s.byFold[key] = append(s.byFold[key], name)
	}
	return s
}

// DefaultSpec holds only the built-in shapes.
func DefaultSpec() *CanonicalSpec {
	return NewSpec(nil)
}

// Lookup returns the shape of a canonical kind.
func (s *CanonicalSpec) Lookup(kind string) (KindSpec, bool) {
	k, ok := s.kinds[kind]
	return k, ok
}

// Has reports whether kind is a canonical name.
func (s *CanonicalSpec) Has(kind string) bool {
	_, ok := s.kinds[kind]
	return ok
}

// Kinds returns every canonical name, sorted.
func (s *CanonicalSpec) Kinds() []string {
	return slices.Sorted(maps.Keys(s.kinds))
}

// FoldMatches returns the canonical names equal to kind ignoring case.
func (s *CanonicalSpec) FoldMatches(kind string) []string {
	return slices.Clone(s.byFold[cases.Fold().String(kind)])
}

// SpecError reports an invalid canonical spec with its source position.
type SpecError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *SpecError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadSpec reads a canonical spec from a CUE or JSON file. JSON is valid
// CUE, so both go through the CUE compiler.
func LoadSpec(path string) (*CanonicalSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read canonical spec: %w", err)
	}
	return ParseSpec(data, path)
}

// ParseSpec compiles spec source of the form
//
//	kinds: { Wait: { values: ["SECONDS"], statements: [] } }
func ParseSpec(data []byte, filename string) (*CanonicalSpec, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	kindsVal := v.LookupPath(cue.ParsePath("kinds"))
	if !kindsVal.Exists() {
		return nil, &SpecError{Field: "kinds", Message: "kinds is required", Pos: v.Pos()}
	}

	iter, err := kindsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	kinds := make(map[string]KindSpec)
	for iter.Next() {
		name := iter.Label()
		k := KindSpec{}
		if k.Values, err = parseNames(iter.Value(), "values"); err != nil {
			return nil, err
		}
		if k.Statements, err = parseNames(iter.Value(), "statements"); err != nil {
			return nil, err
		}
		kinds[name] = k
	}
	return NewSpec(kinds), nil
}

// parseNames reads an optional list of input names.
func parseNames(v cue.Value, field string) ([]string, error) {
	listVal := v.LookupPath(cue.ParsePath(field))
	if !listVal.Exists() {
		return nil, nil
	}
	iter, err := listVal.List()
	if err != nil {
		return nil, &SpecError{Field: field, Message: "expected a list of input names", Pos: listVal.Pos()}
	}

	var names []string
	for iter.Next() {
		name, err := iter.Value().String()
		if err != nil {
			return nil, &SpecError{Field: field, Message: "input names must be strings", Pos: iter.Value().Pos()}
		}
		if slices.Contains(names, name) {
			return nil, &SpecError{Field: field, Message: fmt.Sprintf("duplicate input %q", name), Pos: iter.Value().Pos()}
		}
		names = append(names, name)
	}
	return names, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &SpecError{Field: "cue", Message: err.Error()}
	}
	first := errs[0]
	specErr := &SpecError{Field: "cue", Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		specErr.Pos = positions[0]
	}
	return specErr
}
