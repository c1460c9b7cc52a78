// Package check reports structural problems in a document without
// modifying it. Generation never fails on these; check surfaces what would
// become markers or silently dropped references.
package check

import (
	"fmt"
	"strconv"

	"golang.org/x/text/cases"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/registry"
)

// Issue codes (W2xx warnings, E2xx errors).
const (
	CodeUnknownKind        = "W201" // kind not in the registry or only a placeholder
	CodeBlockAndShadow     = "W202" // slot holds both a block and a shadow
	CodeUndefinedSubCall   = "E203" // call to a subroutine with no definition
	CodeUndefinedColl      = "E204" // call to a collection with no definition
	CodeRecursiveColl      = "E205" // collections that call themselves
	CodeUnresolvedVariable = "W206" // variable reference not in the table
	CodeUnnamedRule        = "W207" // rule without a name
)

// Issue levels.
const (
	LevelWarning = "warning"
	LevelError   = "error"
)

// Issue is one finding. Path locates the node: roots are blocks[i], inputs
// are appended by name and the k-th statement of a chain gets [k].
type Issue struct {
	Code    string `json:"code"`
	Level   string `json:"level"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return fmt.Sprintf("[%s] %s", i.Code, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Code, i.Path, i.Message)
}

// HasErrors reports whether any issue is error level.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Level == LevelError {
			return true
		}
	}
	return false
}

// Check validates doc against reg. Returns all issues found (does not
// fail fast), in document order with cycle findings last.
func Check(doc ir.Document, reg *registry.Registry) []Issue {
	c := &checker{
		doc:   doc,
		reg:   reg,
		fold:  cases.Fold(),
		paths: make(map[*ir.Node]position),
	}
	c.index()

	for i, root := range doc.Roots() {
		c.paths[root] = position{base: "blocks[" + strconv.Itoa(i) + "]"}
		ir.WalkNode(root, ir.Link{Kind: ir.LinkRoot}, c.visit)
	}
	c.issues = append(c.issues, c.collectionCycles()...)
	return c.issues
}

type position struct {
	base  string
	index int
}

func (p position) String() string {
	if p.index == 0 {
		return p.base
	}
	return p.base + "[" + strconv.Itoa(p.index) + "]"
}

type checker struct {
	doc   ir.Document
	reg   *registry.Registry
	fold  cases.Caser
	paths map[*ir.Node]position

	subroutines map[string]bool
	collections map[string]*ir.Node
	varIDs      map[string]bool
	varNames    map[string]bool

	issues []Issue
}

// index records the definitions a generator can see: top-level chains and
// the items chained under a Mod's RULES. Definitions nested anywhere else
// are not callable.
func (c *checker) index() {
	c.subroutines = make(map[string]bool)
	c.collections = make(map[string]*ir.Node)
	for _, n := range definitions(c.doc) {
		switch n.Type {
		case registry.KindSubroutine, registry.CanonicalSubroutine:
			if name := registry.SubroutineName(n); name != "" {
				c.subroutines[c.fold.String(name)] = true
			}
		case registry.KindCollection:
			if name := n.FieldText("NAME"); name != "" {
				key := c.fold.String(name)
				if _, dup := c.collections[key]; !dup {
					c.collections[key] = n
				}
			}
		}
	}

	c.varIDs = make(map[string]bool)
	c.varNames = make(map[string]bool)
	for _, v := range c.doc.Variables {
		if v.ID != "" {
			c.varIDs[v.ID] = true
		}
		if v.Name != "" {
			c.varNames[c.fold.String(v.Name)] = true
		}
	}
}

func definitions(doc ir.Document) []*ir.Node {
	var out []*ir.Node
	for _, root := range doc.Roots() {
		switch root.Type {
		case registry.KindMod, registry.CanonicalMod:
			out = append(out, root.Input("RULES").Chain()...)
		default:
			out = append(out, root.Chain()...)
		}
	}
	return out
}

func (c *checker) add(code, level string, n *ir.Node, format string, args ...any) {
	c.issues = append(c.issues, Issue{
		Code:    code,
		Level:   level,
		Path:    c.paths[n].String(),
		Message: fmt.Sprintf(format, args...),
	})
}

func (c *checker) visit(n *ir.Node, link ir.Link) bool {
	switch link.Kind {
	case ir.LinkInput:
		c.paths[n] = position{base: c.paths[link.Parent].String() + "." + link.Input}
	case ir.LinkNext:
		prev := c.paths[link.Parent]
		c.paths[n] = position{base: prev.base, index: prev.index + 1}
	}

	if def, ok := c.reg.Lookup(n.Type); !ok {
		c.add(CodeUnknownKind, LevelWarning, n, "unknown kind %q", n.Type)
	} else if def.Placeholder {
		c.add(CodeUnknownKind, LevelWarning, n, "kind %q has only a placeholder definition", n.Type)
	}

	for _, name := range n.InputNames() {
		if s := n.Slot(name); s != nil && s.Block != nil && s.Shadow != nil {
			c.add(CodeBlockAndShadow, LevelWarning, n, "input %q holds both a block and a shadow", name)
		}
	}

	switch n.Type {
	case registry.KindRule, registry.CanonicalRule:
		if registry.RuleName(n) == "" {
			c.add(CodeUnnamedRule, LevelWarning, n, "rule has no name")
		}
	case registry.KindSubroutineCall, registry.CanonicalSubroutineCall:
		name := registry.SubroutineName(n)
		if !c.subroutines[c.fold.String(name)] {
			c.add(CodeUndefinedSubCall, LevelError, n, "call to undefined subroutine %q", name)
		}
	case registry.KindCollectionCall:
		name := n.FieldText("NAME")
		if _, ok := c.collections[c.fold.String(name)]; !ok {
			c.add(CodeUndefinedColl, LevelError, n, "use of undefined collection %q", name)
		}
	}

	c.checkVariables(n)
	return true
}

// checkVariables flags embedded references in any field, and plain string
// VAR fields, that resolve neither by id nor by name.
func (c *checker) checkVariables(n *ir.Node) {
	for _, field := range n.FieldNames() {
		v := n.Fields[field]
		if ref, ok := ir.AsVariableRef(v); ok {
			if !c.varIDs[ref.ID] && !c.varNames[c.fold.String(ref.Name)] {
				c.add(CodeUnresolvedVariable, LevelWarning, n, "variable %s is not in the variable table", describe(ref))
			}
			continue
		}
		if s, ok := v.(ir.IRString); ok && field == "VAR" && s != "" {
			if !c.varIDs[string(s)] && !c.varNames[c.fold.String(string(s))] {
				c.add(CodeUnresolvedVariable, LevelWarning, n, "variable %q is not in the variable table", string(s))
			}
		}
	}
}

func describe(ref ir.VariableRef) string {
	if ref.Name != "" {
		return strconv.Quote(ref.Name)
	}
	return "id " + strconv.Quote(ref.ID)
}
