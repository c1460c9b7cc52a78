// Package testutil provides deterministic helpers for tests: sequential
// ids and terse document builders.
package testutil

import (
	"strconv"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/registry"
)

// Mod wraps rules (and definitions) in a top container chained under RULES.
func Mod(items ...*ir.Node) *ir.Node {
	mod := ir.NewNode(registry.KindMod)
	if head := Chain(items...); head != nil {
		mod.SetBlock("RULES", head)
	}
	return mod
}

// Chain links nodes through next and returns the first.
func Chain(nodes ...*ir.Node) *ir.Node {
	if len(nodes) == 0 {
		return nil
	}
	for i := 0; i+1 < len(nodes); i++ {
		nodes[i].SetNext(nodes[i+1])
	}
	return nodes[0]
}

// Rule builds a rule with an optional condition and a statement body.
func Rule(name string, cond *ir.Node, actions ...*ir.Node) *ir.Node {
	n := ir.NewNode(registry.KindRule).SetField("RULE_NAME", ir.IRString(name))
	if cond != nil {
		n.SetBlock("CONDITIONS", cond)
	}
	if head := Chain(actions...); head != nil {
		n.SetBlock("ACTIONS", head)
	}
	return n
}

// Condition wraps a value in a condition block.
func Condition(value *ir.Node) *ir.Node {
	n := ir.NewNode(registry.KindCondition)
	if value != nil {
		n.SetBlock("CONDITION", value)
	}
	return n
}

// Subroutine builds a definition whose parameters are stored in extraState.
func Subroutine(name string, params []string, actions ...*ir.Node) *ir.Node {
	n := ir.NewNode(registry.KindSubroutine).SetField("SUBROUTINE_NAME", ir.IRString(name))
	if len(params) > 0 {
		list := make(ir.IRArray, len(params))
		for i, p := range params {
			list[i] = ir.IRObject{"name": ir.IRString(p), "type": ir.IRString("Any")}
		}
		n.ExtraState = ir.IRObject{"name": ir.IRString(name), "parameters": list}
	}
	if head := Chain(actions...); head != nil {
		n.SetBlock("ACTIONS", head)
	}
	return n
}

// Call builds a subroutine call with positional ARGi inputs.
func Call(name string, args ...*ir.Node) *ir.Node {
	n := ir.NewNode(registry.KindSubroutineCall).SetField("SUBROUTINE_NAME", ir.IRString(name))
	for i, a := range args {
		if a != nil {
			n.SetBlock(argName(i), a)
		}
	}
	return n
}

// Collection builds a named collection definition.
func Collection(name string, body ...*ir.Node) *ir.Node {
	n := ir.NewNode(registry.KindCollection).SetField("NAME", ir.IRString(name))
	if head := Chain(body...); head != nil {
		n.SetBlock("STACK", head)
	}
	return n
}

// UseCollection builds a collection call.
func UseCollection(name string) *ir.Node {
	return ir.NewNode(registry.KindCollectionCall).SetField("NAME", ir.IRString(name))
}

// Num builds a number literal.
func Num(lit string) *ir.Node {
	return ir.NewNode("Number").SetField("NUM", ir.IRNumber(lit))
}

// Str builds a string literal.
func Str(s string) *ir.Node {
	return ir.NewNode("String").SetField("TEXT", ir.IRString(s))
}

// Bool builds a boolean literal.
func Bool(b bool) *ir.Node {
	return ir.NewNode("Boolean").SetField("BOOL", ir.IRBool(b))
}

// Op builds a two-operand operator node.
func Op(kind string, a, b *ir.Node) *ir.Node {
	n := ir.NewNode(kind)
	if a != nil {
		n.SetBlock("VALUE-0", a)
	}
	if b != nil {
		n.SetBlock("VALUE-1", b)
	}
	return n
}

// Var builds a variable reference block.
func Var(id, name string) *ir.Node {
	return ir.NewNode(registry.KindVariableReference).
		SetField("VAR", ir.VariableRef{ID: id, Name: name}.Value())
}

// Wait builds a Wait call with a shadow number.
func Wait(seconds string) *ir.Node {
	return ir.NewNode("Wait").SetShadow("SECONDS", Num(seconds))
}

// Doc builds a document from roots and variables.
func Doc(roots []*ir.Node, vars ...ir.Variable) ir.Document {
	return ir.NewDocument(roots, vars...)
}

func argName(i int) string {
	return "ARG" + strconv.Itoa(i)
}
