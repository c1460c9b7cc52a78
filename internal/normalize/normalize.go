// Package normalize converts documents between the internal vocabulary and
// the canonical interchange vocabulary.
//
// Renames are conservative: a kind is only renamed when the match is
// unambiguous and its observed arity agrees with the declared shape, and
// no rename ever overwrites an existing field or input.
package normalize

import (
	"slices"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/registry"
)

// overrides maps internal structural kinds to canonical names. They take
// precedence over any matching.
var overrides = map[string]string{
	registry.KindMod:            registry.CanonicalMod,
	registry.KindRule:           registry.CanonicalRule,
	registry.KindCondition:      registry.CanonicalCondition,
	registry.KindSubroutine:     registry.CanonicalSubroutine,
	registry.KindSubroutineCall: registry.CanonicalSubroutineCall,
}

type fieldRename struct{ from, to string }

// fieldRenames applies per canonical kind on the way out.
var fieldRenames = map[string][]fieldRename{
	registry.CanonicalRule: {
		{"RULE_NAME", "NAME"},
		{"SCOPE_TYPE", "SCOPE"},
		{"EVENT_TYPE", "EVENT"},
	},
	registry.CanonicalSubroutine:     {{"SUBROUTINE_NAME", "NAME"}},
	registry.CanonicalSubroutineCall: {{"SUBROUTINE_NAME", "NAME"}},
}

// ToCanonical returns a canonical copy of doc. The input is not modified.
func ToCanonical(doc ir.Document, spec *CanonicalSpec) ir.Document {
	if spec == nil {
		spec = DefaultSpec()
	}
	usage := ir.Observe(doc)
	out := ir.Clone(doc)
	builtins := registry.NewDefault()

	ir.Walk(out, func(n *ir.Node, _ ir.Link) bool {
		toCanonicalNode(n, spec, usage, builtins)
		return true
	})
	return out
}

func toCanonicalNode(n *ir.Node, spec *CanonicalSpec, usage *ir.Usage, builtins *registry.Registry) {
	from := n.Type
	to, ok := canonicalKind(from, spec, usage)
	if !ok {
		return
	}
	n.Type = to

	for _, r := range fieldRenames[to] {
		n.RenameField(r.from, r.to)
	}
	if to != from {
		if shape, ok := spec.Lookup(to); ok {
			remapInputs(n, usage, builtins, from, shape)
		}
	}

	switch to {
	case registry.CanonicalSubroutine, registry.CanonicalSubroutineCall:
		synthesizeSubroutineMeta(n)
	case registry.CanonicalRule:
		synthesizeRuleMeta(n)
	}
}

// canonicalKind picks the canonical name of kind: the override table, then
// an exact canonical name, then a unique case-insensitive match whose
// declared arity equals the arity observed in this document.
func canonicalKind(kind string, spec *CanonicalSpec, usage *ir.Usage) (string, bool) {
	if to, ok := overrides[kind]; ok {
		return to, true
	}
	if spec.Has(kind) {
		return kind, true
	}
	matches := spec.FoldMatches(kind)
	if len(matches) != 1 {
		return "", false
	}
	shape, _ := spec.Lookup(matches[0])
	if shape.Arity() != usage.Arity(kind) {
		return "", false
	}
	return matches[0], true
}

// remapInputs renames inputs of the old kind positionally onto the
// declared inputs of the new one: values with values, statements with
// statements. Builtin kinds use their declared roles; other kinds use the
// roles observed in the document. Absent slots are skipped and renames
// never overwrite.
func remapInputs(n *ir.Node, usage *ir.Usage, builtins *registry.Registry, oldKind string, shape KindSpec) {
	values, statements := observedInputs(usage, oldKind)
	if def, ok := builtins.Lookup(oldKind); ok {
		values, statements = def.ValueInputs, def.StatementInputs
	}
	keep := slices.Concat(shape.Values, shape.Statements)
	zipRename(n, values, shape.Values, keep)
	zipRename(n, statements, shape.Statements, keep)
}

// zipRename renames observed[i] to declared[i]. Names in keep already
// belong to the target kind and are never moved.
func zipRename(n *ir.Node, observed, declared, keep []string) {
	for i := 0; i < len(observed) && i < len(declared); i++ {
		if n.Slot(observed[i]) == nil || slices.Contains(keep, observed[i]) {
			continue
		}
		n.RenameInput(observed[i], declared[i])
	}
}

// synthesizeSubroutineMeta writes the canonical structural metadata
// {name, parameters: [{name, type}]} of a definition or call. Existing
// canonical data is preferred over legacy params/arguments shapes.
func synthesizeSubroutineMeta(n *ir.Node) {
	params := ir.IRArray{}
	for _, p := range registry.Parameters(n) {
		typ := p.Type
		if typ == "" {
			typ = "Any"
		}
		params = append(params, ir.IRObject{"name": ir.IRString(p.Name), "type": ir.IRString(typ)})
	}

	meta := ir.IRObject{}
	if existing, ok := n.ExtraState.(ir.IRObject); ok {
		meta = ir.CloneValue(existing).(ir.IRObject)
	}
	meta["name"] = ir.IRString(registry.SubroutineName(n))
	meta["parameters"] = params
	delete(meta, "params")
	delete(meta, "arguments")
	n.ExtraState = meta
}

// synthesizeRuleMeta fills missing scope/event metadata of a rule from its
// fields, defaulting to Global/Ongoing.
func synthesizeRuleMeta(n *ir.Node) {
	meta := ir.IRObject{}
	if existing, ok := n.ExtraState.(ir.IRObject); ok {
		meta = ir.CloneValue(existing).(ir.IRObject)
	}
	if _, ok := meta["scope"]; ok {
		return
	}
	meta["scope"] = ir.IRString(registry.RuleScope(n))
	if _, ok := meta["event"]; !ok {
		meta["event"] = ir.IRString(registry.RuleEvent(n))
	}
	n.ExtraState = meta
}
