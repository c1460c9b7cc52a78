package codegen

import (
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/registry"
)

// resolveSubroutine finds a definition by exact name, then by
// case-insensitive name.
func (c *Context) resolveSubroutine(name string) *subroutine {
	for _, sub := range c.program.subroutines {
		if sub.name == name {
			return sub
		}
	}
	for _, sub := range c.program.subroutines {
		if foldEqual(c.fold, sub.name, name) {
			return sub
		}
	}
	return nil
}

func (c *Context) resolveCollection(name string) *collection {
	for _, col := range c.program.collections {
		if col.name == name {
			return col
		}
	}
	for _, col := range c.program.collections {
		if foldEqual(c.fold, col.name, name) {
			return col
		}
	}
	return nil
}

// callSubroutine emits an awaited call. Arguments come from ARGi inputs or
// inputs named after the parameters.
func callSubroutine(c *Context, n *ir.Node) Fragment {
	name := registry.SubroutineName(n)
	sub := c.resolveSubroutine(name)
	if sub == nil {
		return Stmt(c.Marker("// unknown subroutine: " + markerText(name)))
	}

	inputs := make([]string, len(sub.params))
	for i, p := range sub.params {
		positional := "ARG" + strconv.Itoa(i)
		if n.Slot(positional).Empty() && !n.Slot(p.name).Empty() {
			inputs[i] = p.name
			continue
		}
		inputs[i] = positional
	}
	args := c.Args(n, inputs)
	return Stmt("await " + sub.ident + "(" + strings.Join(args, ", ") + ");")
}

func subroutineArgument(c *Context, n *ir.Node) Fragment {
	name := n.FieldText("ARGUMENT_NAME")
	if c.sub != nil {
		for _, p := range c.sub.params {
			if foldEqual(c.fold, p.name, name) {
				return Atom(p.ident)
			}
		}
	}
	return Atom(c.Marker("/* unknown argument: " + markerText(name) + " */ undefined"))
}

// useCollection splices a named collection's body in place. Entering a
// collection already being inlined stops that branch with a marker.
func useCollection(c *Context, n *ir.Node) Fragment {
	name := n.FieldText("NAME")
	col := c.resolveCollection(name)
	if col == nil {
		return Stmt(c.Marker("// unknown collection: " + markerText(name)))
	}
	if slices.Contains(c.inlining, col.name) {
		return Stmt(c.Marker("// recursive collection: " + markerText(name)))
	}
	return Stmt(c.inline(col.name).Body(col.node.Input("STACK"))...)
}

// variableIdent resolves a VAR field: a reference object resolves by id in
// the document table, else by the name it carries; a plain string resolves
// as an id, then as a table name. The id itself is never emitted.
func (c *Context) variableIdent(v ir.IRValue) (string, bool) {
	if ref, ok := ir.AsVariableRef(v); ok {
		if ref.ID != "" {
			if tv, ok := c.doc.VariableByID(ref.ID); ok && tv.Name != "" {
				return c.identFor(tv.Name), true
			}
		}
		if ref.Name != "" {
			return c.identFor(ref.Name), true
		}
		return "", false
	}

	s, ok := v.(ir.IRString)
	if !ok || s == "" {
		return "", false
	}
	if tv, ok := c.doc.VariableByID(string(s)); ok && tv.Name != "" {
		return c.identFor(tv.Name), true
	}
	if ident, ok := c.varIdent[c.fold.String(string(s))]; ok {
		return ident, true
	}
	return "", false
}

func (c *Context) identFor(name string) string {
	if ident, ok := c.varIdent[c.fold.String(name)]; ok {
		return ident
	}
	return Identifier(name)
}
