// Package infer synthesizes placeholder definitions for kinds a registry
// does not know, so that loading a document never fails on vocabulary.
//
// Inference is a property of the sample document: the same kind may infer
// differently from another document.
package infer

import (
	"slices"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/registry"
)

// Result reports what InferAndRegister added.
type Result struct {
	Registered  int                   `json:"registered"`
	Definitions []registry.Definition `json:"definitions"`
}

// Infer builds placeholder definitions for every kind of doc missing from
// reg, in first-seen order. The registry is not modified.
func Infer(doc ir.Document, reg *registry.Registry) []registry.Definition {
	usage := ir.Observe(doc)

	var defs []registry.Definition
	for _, kind := range usage.Kinds() {
		if reg.Has(kind) {
			continue
		}
		ku, _ := usage.Kind(kind)
		defs = append(defs, registry.Definition{
			Kind:            kind,
			Label:           kind,
			Shape:           inferShape(ku),
			Fields:          slices.Clone(ku.Fields),
			ValueInputs:     slices.Clone(ku.ValueInputs),
			StatementInputs: slices.Clone(ku.StatementInputs),
			Placeholder:     true,
		})
	}
	return defs
}

// InferAndRegister registers a placeholder for every unknown kind of doc.
// The document itself is never touched.
func InferAndRegister(doc ir.Document, reg *registry.Registry) Result {
	res := Result{}
	for _, def := range Infer(doc, reg) {
		if err := reg.Register(def); err != nil {
			continue
		}
		res.Registered++
		res.Definitions = append(res.Definitions, def)
	}
	return res
}

func inferShape(ku *ir.KindUsage) registry.Shape {
	if shape, ok := registry.StructuralShape(ku.Kind); ok {
		return shape
	}
	if ku.Chained || ku.AsStatement {
		return registry.ShapeStatement
	}
	return registry.ShapeValue
}
