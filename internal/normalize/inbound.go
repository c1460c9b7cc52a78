package normalize

import (
	"slices"

	"golang.org/x/text/cases"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/registry"
)

// FromCanonical maps a canonical document back onto the internal
// vocabulary of reg for import. Override targets map back to their internal
// kinds with the field renames inverted; other kinds unknown to reg that
// match one registry kind ignoring case, with equal arity, are renamed and
// their inputs mapped positionally. Everything else is left alone.
func FromCanonical(doc ir.Document, spec *CanonicalSpec, reg *registry.Registry) ir.Document {
	if spec == nil {
		spec = DefaultSpec()
	}
	usage := ir.Observe(doc)
	out := ir.Clone(doc)

	inverse := make(map[string]string, len(overrides))
	for internal, canonical := range overrides {
		inverse[canonical] = internal
	}
	index := foldIndex(reg)

	ir.Walk(out, func(n *ir.Node, _ ir.Link) bool {
		if internal, ok := inverse[n.Type]; ok {
			for _, r := range fieldRenames[n.Type] {
				n.RenameField(r.to, r.from)
			}
			n.Type = internal
			return true
		}
		if reg.Has(n.Type) {
			return true
		}

		matches := index[cases.Fold().String(n.Type)]
		if len(matches) != 1 {
			return true
		}
		def, _ := reg.Lookup(matches[0])
		observed := usage.Arity(n.Type)
		if def.Arity() != observed {
			return true
		}

		// Declared canonical order wins over first-seen order.
		values, statements := observedInputs(usage, n.Type)
		if shape, ok := spec.Lookup(n.Type); ok && shape.Arity() == observed {
			values, statements = shape.Values, shape.Statements
		}
		n.Type = def.Kind
		keep := slices.Concat(def.ValueInputs, def.StatementInputs)
		zipRename(n, values, def.ValueInputs, keep)
		zipRename(n, statements, def.StatementInputs, keep)
		return true
	})
	return out
}

func observedInputs(usage *ir.Usage, kind string) ([]string, []string) {
	ku, ok := usage.Kind(kind)
	if !ok {
		return nil, nil
	}
	return ku.ValueInputs, ku.StatementInputs
}

// foldIndex groups the non-placeholder registry kinds by folded name.
func foldIndex(reg *registry.Registry) map[string][]string {
	fold := cases.Fold()
	index := make(map[string][]string)
	for _, kind := range reg.Kinds() {
		if def, _ := reg.Lookup(kind); def.Placeholder {
			continue
		}
		key := fold.String(kind)
		index[key] = append(index[key], kind)
	}
	return index
}
