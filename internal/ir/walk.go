package ir

import json "github.com/goccy/go-json"

// LinkKind says how a visited node is attached to its parent.
type LinkKind int

const (
	LinkRoot LinkKind = iota
	LinkInput
	LinkNext
)

// Link describes the position of a visited node.
type Link struct {
	Kind   LinkKind
	Parent *Node  // nil for roots
	Input  string // input name for LinkInput
	Shadow bool   // attached as a shadow default
	Depth  int    // input nesting depth; next links keep the depth
}

// Walk visits every node of the document: each root, then depth-first its
// inputs in order (block before shadow), then its next chain.
// Returning false from fn skips the node's inputs and next chain.
func Walk(doc Document, fn func(n *Node, link Link) bool) {
	for _, root := range doc.Roots() {
		WalkNode(root, Link{Kind: LinkRoot}, fn)
	}
}

// WalkNode walks n and everything reachable from it.
func WalkNode(n *Node, link Link, fn func(n *Node, link Link) bool) {
	// Next chains are walked iteratively; long statement lists are common.
	for cur := n; cur != nil; {
		if !fn(cur, link) {
			return
		}
		for _, name := range cur.InputNames() {
			s := cur.Inputs[name]
			if s == nil {
				continue
			}
			if s.Block != nil {
				WalkNode(s.Block, Link{Kind: LinkInput, Parent: cur, Input: name, Depth: link.Depth + 1}, fn)
			}
			if s.Shadow != nil {
				WalkNode(s.Shadow, Link{Kind: LinkInput, Parent: cur, Input: name, Shadow: true, Depth: link.Depth + 1}, fn)
			}
		}
		next := cur.NextNode()
		link = Link{Kind: LinkNext, Parent: cur, Depth: link.Depth}
		cur = next
	}
}

// Clone returns a deep copy of the document.
func Clone(doc Document) Document {
	out := Document{
		Blocks: Blocks{LanguageVersion: doc.Blocks.LanguageVersion},
	}
	if doc.Blocks.Blocks != nil {
		out.Blocks.Blocks = make([]*Node, len(doc.Blocks.Blocks))
		for i, root := range doc.Blocks.Blocks {
			out.Blocks.Blocks[i] = CloneNode(root)
		}
	}
	if doc.Variables != nil {
		out.Variables = append([]Variable(nil), doc.Variables...)
	}
	return out
}

// CloneNode deep-copies n including its inputs and next chain.
func CloneNode(n *Node) *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Type:       n.Type,
		ID:         n.ID,
		ExtraState: CloneValue(n.ExtraState),
		Mutation:   CloneValue(n.Mutation),
	}
	for _, name := range n.FieldNames() {
		c.SetField(name, CloneValue(n.Fields[name]))
	}
	for _, name := range n.InputNames() {
		c.SetInput(name, cloneSlot(n.Inputs[name]))
	}
	if !n.Next.Empty() {
		c.Next = cloneSlot(n.Next)
	}
	if n.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(n.Extra))
		for k, v := range n.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return c
}

func cloneSlot(s *Slot) *Slot {
	if s == nil {
		return nil
	}
	return &Slot{Block: CloneNode(s.Block), Shadow: CloneNode(s.Shadow)}
}

// Equal reports structural equality: kinds, ids, fields, inputs, next
// chains, structural metadata, and the variable table. Layout keys in
// Extra are ignored.
func Equal(a, b Document) bool {
	if len(a.Roots()) != len(b.Roots()) || len(a.Variables) != len(b.Variables) {
		return false
	}
	for i := range a.Variables {
		if a.Variables[i] != b.Variables[i] {
			return false
		}
	}
	for i := range a.Roots() {
		if !EqualNodes(a.Roots()[i], b.Roots()[i]) {
			return false
		}
	}
	return true
}

// EqualNodes compares two subtrees structurally.
func EqualNodes(a, b *Node) bool {
	for a != nil && b != nil {
		if a.Type != b.Type || a.ID != b.ID {
			return false
		}
		if len(a.Fields) != len(b.Fields) || len(a.Inputs) != len(b.Inputs) {
			return false
		}
		for name, v := range a.Fields {
			other, ok := b.Fields[name]
			if !ok || !EqualValues(v, other) {
				return false
			}
		}
		for name, s := range a.Inputs {
			other, ok := b.Inputs[name]
			if !ok || !equalSlots(s, other) {
				return false
			}
		}
		if !EqualValues(a.ExtraState, b.ExtraState) || !EqualValues(a.Mutation, b.Mutation) {
			return false
		}
		if a.Next.Empty() != b.Next.Empty() {
			return false
		}
		if !a.Next.Empty() && !EqualNodes(a.Next.Shadow, b.Next.Shadow) {
			return false
		}
		a, b = a.Next.blockOrNil(), b.Next.blockOrNil()
	}
	return a == nil && b == nil
}

func equalSlots(a, b *Slot) bool {
	if a.Empty() || b.Empty() {
		return a.Empty() == b.Empty()
	}
	return EqualNodes(a.Block, b.Block) && EqualNodes(a.Shadow, b.Shadow)
}

func (s *Slot) blockOrNil() *Node {
	if s == nil {
		return nil
	}
	return s.Block
}
