package codegen

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/text/cases"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/registry"
)

// program is the top-level structure found in a document.
type program struct {
	rules       []*ir.Node
	subroutines []*subroutine
	collections []*collection

	ruleIdent map[*ir.Node]string
}

type subroutine struct {
	node   *ir.Node
	name   string
	ident  string
	params []param
}

type param struct {
	name  string
	ident string
}

type collection struct {
	node *ir.Node
	name string
}

// collect finds rules, subroutine definitions, and named collections among
// the roots and in the chain under each top container. Anything else at
// the top level is not part of the program.
func collect(doc ir.Document) *program {
	p := &program{ruleIdent: make(map[*ir.Node]string)}

	visit := func(n *ir.Node) {
		switch n.Type {
		case registry.KindRule:
			p.rules = append(p.rules, n)
		case registry.KindSubroutine:
			sub := &subroutine{node: n, name: registry.SubroutineName(n)}
			for _, prm := range registry.Parameters(n) {
				sub.params = append(sub.params, param{name: prm.Name})
			}
			p.subroutines = append(p.subroutines, sub)
		case registry.KindCollection:
			p.collections = append(p.collections, &collection{node: n, name: n.FieldText("NAME")})
		}
	}

	for _, root := range doc.Roots() {
		if root.Type == registry.KindMod {
			for _, item := range root.Input("RULES").Chain() {
				visit(item)
			}
			continue
		}
		for _, item := range root.Chain() {
			visit(item)
		}
	}
	return p
}

// assignNames fixes every global identifier before any body is rendered:
// variables, then subroutines, then rules.
func (c *Context) assignNames() {
	for _, v := range c.doc.Variables {
		if v.Name == "" {
			continue
		}
		key := c.fold.String(v.Name)
		if _, ok := c.varIdent[key]; ok {
			continue
		}
		c.varIdent[key] = c.globals.unique(Identifier(v.Name))
	}

	for _, sub := range c.program.subroutines {
		sub.ident = c.globals.unique("Subroutine_" + Identifier(sub.name))
		local := nameSet{}
		for i := range sub.params {
			sub.params[i].ident = local.unique(Identifier(sub.params[i].name))
		}
	}

	for _, rule := range c.program.rules {
		base := Identifier(registry.RuleScope(rule)) + "_" + Identifier(registry.RuleName(rule))
		c.program.ruleIdent[rule] = c.globals.uniqueWith(base, "_Action")
	}
}

// declarations declares each table variable once.
func (c *Context) declarations() []string {
	var lines []string
	seen := make(map[string]bool)
	for _, v := range c.doc.Variables {
		if v.Name == "" {
			continue
		}
		ident := c.varIdent[c.fold.String(v.Name)]
		if seen[ident] {
			continue
		}
		seen[ident] = true
		lines = append(lines, "let "+ident+";")
	}
	return lines
}

func (c *Context) subroutine(sub *subroutine) []string {
	inner := *c
	inner.sub = sub

	idents := make([]string, len(sub.params))
	for i, p := range sub.params {
		idents[i] = p.ident
	}

	lines := []string{fmt.Sprintf("async function %s(%s) {", sub.ident, strings.Join(idents, ", "))}
	if cond := sub.node.Input("CONDITION"); cond != nil {
		guard := Unary("!", inner.ValueOf(cond))
		lines = append(lines, "  if ("+guard.Expr+") return;")
	}
	lines = append(lines, inner.Block(sub.node, "ACTIONS")...)
	return append(lines, "}")
}

func (c *Context) rule(rule *ir.Node) []string {
	ident := c.program.ruleIdent[rule]
	header := fmt.Sprintf("// rule %s (%s, %s)",
		quote(registry.RuleName(rule)),
		markerText(registry.RuleScope(rule)),
		markerText(registry.RuleEvent(rule)))

	lines := []string{header, "async function " + ident + "_Action() {"}
	lines = append(lines, c.Block(rule, "ACTIONS")...)
	lines = append(lines,
		"}",
		"",
		"export async function "+ident+"() {",
		"  if ("+Unary("!", c.ruleCondition(rule)).Expr+") return;",
		"  await "+ident+"_Action();",
		"}",
	)
	return lines
}

// ruleCondition combines the CONDITIONS slot: a single expression, a
// condition block, or a chain of condition blocks joined with &&.
func (c *Context) ruleCondition(rule *ir.Node) Fragment {
	var parts []Fragment
	for _, n := range rule.Input("CONDITIONS").Chain() {
		if n.Type == registry.KindCondition {
			if inner := n.Input("CONDITION"); inner != nil {
				parts = append(parts, c.ValueOf(inner))
			}
			continue
		}
		parts = append(parts, c.ValueOf(n))
	}

	switch len(parts) {
	case 0:
		return Atom("true")
	case 1:
		return parts[0]
	}
	operands := make([]string, len(parts))
	for i, p := range parts {
		operands[i] = p.Operand()
	}
	return Value(strings.Join(operands, " && "), PowerAnd)
}

// quote renders s as a double-quoted string literal.
func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}

// foldEqual compares names case-insensitively.
func foldEqual(fold cases.Caser, a, b string) bool {
	return fold.String(a) == fold.String(b)
}
