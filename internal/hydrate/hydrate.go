// Package hydrate reconciles a document's variable table with the variable
// references embedded in its fields.
package hydrate

import (
	"github.com/roach88/blockc/internal/ir"
)

// Report counts the entries a hydration run created.
type Report struct {
	Declared   int `json:"declared"`
	Discovered int `json:"discovered"`
}

// Hydrator fills Table from documents. A Hydrator reused across documents
// keeps one running table; IDs names variables found without an id.
type Hydrator struct {
	Table *Table
	IDs   IDGenerator
}

// New returns a hydrator with an empty table and UUIDv7 ids.
func New() *Hydrator {
	return &Hydrator{Table: NewTable(), IDs: UUIDv7Generator{}}
}

// Hydrate upserts the declared variables of doc, then every embedded
// reference not yet in the table. It returns a copy of doc carrying the
// table's variables in insertion order. Running it again on its own output
// creates nothing.
func (h *Hydrator) Hydrate(doc ir.Document) (ir.Document, Report) {
	if h.Table == nil {
		h.Table = NewTable()
	}
	if h.IDs == nil {
		h.IDs = UUIDv7Generator{}
	}

	var rep Report
	for _, v := range doc.Variables {
		if _, created := h.Table.Upsert(v, h.IDs); created {
			rep.Declared++
		}
	}

	ir.Walk(doc, func(n *ir.Node, _ ir.Link) bool {
		for _, name := range n.FieldNames() {
			ref, ok := ir.AsVariableRef(n.Fields[name])
			if !ok {
				continue
			}
			if _, created := h.Table.Upsert(ref.Variable(), h.IDs); created {
				rep.Discovered++
			}
		}
		return true
	})

	out := ir.Clone(doc)
	out.Variables = h.Table.Variables()
	return out, rep
}
