package hydrate

import (
	"slices"

	"golang.org/x/text/cases"

	"github.com/roach88/blockc/internal/ir"
)

// Table is a running variable table. Id is authoritative: two entries with
// the same name but different ids are distinct variables. Entries without
// an id match by case-insensitive name.
type Table struct {
	vars   []ir.Variable
	byID   map[string]int
	byName map[string]int // folded name -> first entry
	fold   cases.Caser
}

// NewTable returns a table seeded with vars.
func NewTable(vars ...ir.Variable) *Table {
	t := &Table{
		byID:   make(map[string]int),
		byName: make(map[string]int),
		fold:   cases.Fold(),
	}
	for _, v := range vars {
		t.insert(v)
	}
	return t
}

func (t *Table) insert(v ir.Variable) ir.Variable {
	idx := len(t.vars)
	t.vars = append(t.vars, v)
	if v.ID != "" {
		t.byID[v.ID] = idx
	}
	if v.Name != "" {
		key := t.fold.String(v.Name)
		if _, ok := t.byName[key]; !ok {
			t.byName[key] = idx
		}
	}
	return v
}

// Upsert returns the entry matching v, inserting v when nothing matches.
// A variable without an id matches by name; if it is new it receives an
// id from ids. The boolean reports whether an entry was created.
func (t *Table) Upsert(v ir.Variable, ids IDGenerator) (ir.Variable, bool) {
	if v.ID != "" {
		if idx, ok := t.byID[v.ID]; ok {
			return t.vars[idx], false
		}
		return t.insert(v), true
	}
	if existing, ok := t.ByName(v.Name); ok {
		return existing, false
	}
	v.ID = ids.Generate()
	return t.insert(v), true
}

// ByID returns the entry with the given id.
func (t *Table) ByID(id string) (ir.Variable, bool) {
	idx, ok := t.byID[id]
	if !ok {
		return ir.Variable{}, false
	}
	return t.vars[idx], true
}

// ByName returns the first entry whose name matches case-insensitively.
func (t *Table) ByName(name string) (ir.Variable, bool) {
	if name == "" {
		return ir.Variable{}, false
	}
	idx, ok := t.byName[t.fold.String(name)]
	if !ok {
		return ir.Variable{}, false
	}
	return t.vars[idx], true
}

// Variables returns the entries in insertion order.
func (t *Table) Variables() []ir.Variable {
	return slices.Clone(t.vars)
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.vars)
}
