package ir

import (
	"regexp"
	"slices"
)

// Role is the position a kind occupies in a document.
type Role string

const (
	RoleTop       Role = "top"
	RoleStatement Role = "statement"
	RoleValue     Role = "value"
	RoleUnknown   Role = "unknown"
)

// statementInputPattern matches input names that conventionally hold a
// statement body.
var statementInputPattern = regexp.MustCompile(
	`(?i)^(DO\d*|ELSE|STACK|SUBSTACK\d*|BODY|ACTIONS?|STATEMENTS?|RULES|THEN\d*|LOOP)$|_(DO|ACTIONS|BODY|STACK)$`)

// IsStatementInputName reports whether an input name follows the
// statement-body naming convention.
func IsStatementInputName(name string) bool {
	return statementInputPattern.MatchString(name)
}

// ClassifySlot infers the role of an input slot from its name and content:
// statement when the name follows the body convention or when the attached
// node is itself chained through next, value otherwise.
func ClassifySlot(name string, s *Slot) Role {
	if IsStatementInputName(name) {
		return RoleStatement
	}
	if n := s.Node(); n != nil && !n.Next.Empty() {
		return RoleStatement
	}
	return RoleValue
}

// KindUsage is everything observed about one kind in one document.
type KindUsage struct {
	Kind            string
	Count           int
	Fields          []string
	ValueInputs     []string
	StatementInputs []string

	AtTop       bool
	Chained     bool
	AsValue     bool
	AsStatement bool
}

// Arity counts the distinct input names observed for a kind.
type Arity struct {
	Values     int
	Statements int
}

// Total is the combined input count.
func (a Arity) Total() int {
	return a.Values + a.Statements
}

// Usage is the per-document observation table produced by Observe.
type Usage struct {
	kinds map[string]*KindUsage
	order []string
}

// Observe walks every node of doc and records per-kind usage.
func Observe(doc Document) *Usage {
	u := &Usage{kinds: make(map[string]*KindUsage)}
	Walk(doc, func(n *Node, link Link) bool {
		u.record(n, link)
		return true
	})
	return u
}

func (u *Usage) entry(kind string) *KindUsage {
	ku, ok := u.kinds[kind]
	if !ok {
		ku = &KindUsage{Kind: kind}
		u.kinds[kind] = ku
		u.order = append(u.order, kind)
	}
	return ku
}

func (u *Usage) record(n *Node, link Link) {
	ku := u.entry(n.Type)
	ku.Count++

	for _, name := range n.FieldNames() {
		ku.Fields = appendUnique(ku.Fields, name)
	}

	switch link.Kind {
	case LinkRoot:
		ku.AtTop = true
	case LinkNext:
		ku.Chained = true
	case LinkInput:
		if ClassifySlot(link.Input, link.Parent.Slot(link.Input)) == RoleStatement {
			ku.AsStatement = true
		} else {
			ku.AsValue = true
		}
	}
	if !n.Next.Empty() {
		ku.Chained = true
	}

	for _, name := range n.InputNames() {
		if ClassifySlot(name, n.Inputs[name]) == RoleStatement {
			// Statement evidence wins over an earlier value sighting.
			if i := slices.Index(ku.ValueInputs, name); i >= 0 {
				ku.ValueInputs = slices.Delete(ku.ValueInputs, i, i+1)
			}
			ku.StatementInputs = appendUnique(ku.StatementInputs, name)
			continue
		}
		if !slices.Contains(ku.StatementInputs, name) {
			ku.ValueInputs = appendUnique(ku.ValueInputs, name)
		}
	}
}

// Kinds returns observed kinds in first-seen order.
func (u *Usage) Kinds() []string {
	return slices.Clone(u.order)
}

// Kind returns the usage record of one kind.
func (u *Usage) Kind(kind string) (*KindUsage, bool) {
	ku, ok := u.kinds[kind]
	return ku, ok
}

// Role derives a kind's role from the evidence in this document:
// statement if chained or seen in a statement slot, else value if seen in a
// value slot, else top if seen as a root, else unknown.
func (u *Usage) Role(kind string) Role {
	ku, ok := u.kinds[kind]
	switch {
	case !ok:
		return RoleUnknown
	case ku.Chained || ku.AsStatement:
		return RoleStatement
	case ku.AsValue:
		return RoleValue
	case ku.AtTop:
		return RoleTop
	}
	return RoleUnknown
}

// Arity returns the number of distinct value and statement input names
// observed for kind.
func (u *Usage) Arity(kind string) Arity {
	ku, ok := u.kinds[kind]
	if !ok {
		return Arity{}
	}
	return Arity{Values: len(ku.ValueInputs), Statements: len(ku.StatementInputs)}
}

func appendUnique(list []string, name string) []string {
	if slices.Contains(list, name) {
		return list
	}
	return append(list, name)
}
