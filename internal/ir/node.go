package ir

import (
	"slices"
	"sort"

	json "github.com/goccy/go-json"
)

// Document is a serialized block program: the workspace tree plus its
// variable table.
type Document struct {
	Blocks    Blocks     `json:"blocks"`
	Variables []Variable `json:"variables"`
}

// Blocks is the workspace container holding the root nodes.
type Blocks struct {
	LanguageVersion int     `json:"languageVersion"`
	Blocks          []*Node `json:"blocks"`
}

// Variable is one entry of the document variable table.
// ID is authoritative; Name is expected but not guaranteed to be unique.
type Variable struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// NewDocument builds a document from root nodes and variables.
func NewDocument(roots []*Node, vars ...Variable) Document {
	return Document{
		Blocks:    Blocks{Blocks: roots},
		Variables: vars,
	}
}

// Roots returns the top-level nodes of the document.
func (d Document) Roots() []*Node {
	return d.Blocks.Blocks
}

// VariableByID returns the variable with the given id.
func (d Document) VariableByID(id string) (Variable, bool) {
	for _, v := range d.Variables {
		if v.ID == id {
			return v, true
		}
	}
	return Variable{}, false
}

// MarshalJSON keeps "variables" an array even when the table is empty.
func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	p := plain(d)
	if p.Variables == nil {
		p.Variables = []Variable{}
	}
	if p.Blocks.Blocks == nil {
		p.Blocks.Blocks = []*Node{}
	}
	return json.Marshal(p)
}

// Slot is a named attachment point. A well-formed slot holds either a real
// block or a shadow default, never both.
type Slot struct {
	Block  *Node `json:"block,omitempty"`
	Shadow *Node `json:"shadow,omitempty"`
}

// Node returns the connected block, falling back to the shadow.
func (s *Slot) Node() *Node {
	if s == nil {
		return nil
	}
	if s.Block != nil {
		return s.Block
	}
	return s.Shadow
}

// Empty reports whether the slot holds nothing.
func (s *Slot) Empty() bool {
	return s == nil || (s.Block == nil && s.Shadow == nil)
}

// Node is one instance of a typed unit in the tree.
//
// Fields and Inputs are open maps: a kind unknown to the running build may
// carry any names. The order names were first seen in is kept so that
// re-serialization and positional remapping are stable.
type Node struct {
	Type       string
	ID         string
	Fields     map[string]IRValue
	Inputs     map[string]*Slot
	Next       *Slot
	ExtraState IRValue
	Mutation   IRValue

	// Extra holds every other node key (x, y, collapsed, ...) verbatim.
	Extra map[string]json.RawMessage

	fieldOrder []string
	inputOrder []string
}

// NewNode creates a node of the given kind.
func NewNode(kind string) *Node {
	return &Node{Type: kind}
}

// Field returns the raw value of a field.
func (n *Node) Field(name string) (IRValue, bool) {
	v, ok := n.Fields[name]
	return v, ok
}

// FieldText returns a primitive field as text, "" if absent.
func (n *Node) FieldText(name string) string {
	return Text(n.Fields[name])
}

// SetField sets a field value, appending new names to the field order.
func (n *Node) SetField(name string, v IRValue) *Node {
	if n.Fields == nil {
		n.Fields = make(map[string]IRValue)
	}
	if _, exists := n.Fields[name]; !exists {
		n.fieldOrder = append(n.fieldOrder, name)
	}
	n.Fields[name] = v
	return n
}

// RenameField moves a field to a new name in place. It never overwrites an
// existing target and reports whether the rename happened.
func (n *Node) RenameField(from, to string) bool {
	v, ok := n.Fields[from]
	if !ok || from == to {
		return false
	}
	if _, taken := n.Fields[to]; taken {
		return false
	}
	delete(n.Fields, from)
	n.Fields[to] = v
	n.fieldOrder = renameInOrder(n.fieldOrder, from, to)
	return true
}

// FieldNames returns field names in first-seen order.
func (n *Node) FieldNames() []string {
	return orderedKeys(n.fieldOrder, n.Fields)
}

// Input returns the node attached to an input (block, else shadow).
func (n *Node) Input(name string) *Node {
	return n.Inputs[name].Node()
}

// Slot returns the slot for an input name.
func (n *Node) Slot(name string) *Slot {
	return n.Inputs[name]
}

// SetInput attaches a slot, appending new names to the input order.
func (n *Node) SetInput(name string, s *Slot) *Node {
	if n.Inputs == nil {
		n.Inputs = make(map[string]*Slot)
	}
	if _, exists := n.Inputs[name]; !exists {
		n.inputOrder = append(n.inputOrder, name)
	}
	n.Inputs[name] = s
	return n
}

// SetBlock attaches child as the real block of an input.
func (n *Node) SetBlock(name string, child *Node) *Node {
	return n.SetInput(name, &Slot{Block: child})
}

// SetShadow attaches child as the shadow default of an input.
func (n *Node) SetShadow(name string, child *Node) *Node {
	return n.SetInput(name, &Slot{Shadow: child})
}

// RenameInput moves an input slot to a new name, keeping its position.
// It never overwrites an existing target and reports whether it renamed.
func (n *Node) RenameInput(from, to string) bool {
	s, ok := n.Inputs[from]
	if !ok || from == to {
		return false
	}
	if _, taken := n.Inputs[to]; taken {
		return false
	}
	delete(n.Inputs, from)
	n.Inputs[to] = s
	n.inputOrder = renameInOrder(n.inputOrder, from, to)
	return true
}

// InputNames returns input names in first-seen order.
func (n *Node) InputNames() []string {
	return orderedKeys(n.inputOrder, n.Inputs)
}

// NextNode returns the following node in the statement chain.
func (n *Node) NextNode() *Node {
	return n.Next.Node()
}

// SetNext links next after n and returns next for chaining.
func (n *Node) SetNext(next *Node) *Node {
	if next == nil {
		n.Next = nil
		return nil
	}
	n.Next = &Slot{Block: next}
	return next
}

// StructuralMeta returns the node's structural metadata object: extraState
// when it is an object, else mutation, else nil.
func (n *Node) StructuralMeta() IRObject {
	if obj, ok := n.ExtraState.(IRObject); ok {
		return obj
	}
	if obj, ok := n.Mutation.(IRObject); ok {
		return obj
	}
	return nil
}

// Chain returns n followed by every node reachable through next.
func (n *Node) Chain() []*Node {
	var out []*Node
	for cur := n; cur != nil; cur = cur.NextNode() {
		out = append(out, cur)
	}
	return out
}

func orderedKeys[V any](order []string, m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, name := range order {
		if _, ok := m[name]; ok && !seen[name] {
			out = append(out, name)
			seen[name] = true
		}
	}
	if len(out) == len(m) {
		return out
	}
	var rest []string
	for name := range m {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func renameInOrder(order []string, from, to string) []string {
	out := slices.Clone(order)
	for i, name := range out {
		if name == from {
			out[i] = to
			return out
		}
	}
	return append(out, to)
}
