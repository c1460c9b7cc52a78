package codegen

import (
	"slices"
	"strconv"

	"golang.org/x/text/cases"

	"github.com/roach88/blockc/internal/ir"
)

// Context is handed to every handler. It carries the document-wide state
// and the position-dependent state of the current walk (inlining stack,
// loop depth, enclosing subroutine).
type Context struct {
	*state

	inlining  []string
	loopDepth int
	sub       *subroutine
}

type state struct {
	gen     *Generator
	doc     ir.Document
	program *program
	fold    cases.Caser

	globals  nameSet
	varIdent map[string]string // folded variable name -> identifier
	stats    Stats
}

func newContext(g *Generator, doc ir.Document, p *program) *Context {
	s := &state{
		gen:      g,
		doc:      doc,
		program:  p,
		fold:     cases.Fold(),
		globals:  nameSet{g.opts.Runtime: true},
		varIdent: make(map[string]string),
	}
	c := &Context{state: s}
	c.assignNames()
	return c
}

// Runtime is the identifier runtime calls are made through.
func (c *Context) Runtime() string {
	return c.gen.opts.Runtime
}

// Document is the document being generated.
func (c *Context) Document() ir.Document {
	return c.doc
}

// Marker records a translation gap and returns its text.
func (c *Context) Marker(text string) string {
	c.stats.Markers++
	return text
}

// Statement renders n in statement position. Value kinds become expression
// statements.
func (c *Context) Statement(n *ir.Node) []string {
	h, ok := c.gen.handler(n.Type)
	if !ok {
		return []string{c.Marker("// unknown block: " + markerText(n.Type))}
	}
	f := h(c, n)
	if f.IsStatement() {
		return f.Lines
	}
	return []string{f.Expr + ";"}
}

// Body renders a statement chain starting at head.
func (c *Context) Body(head *ir.Node) []string {
	var lines []string
	for _, n := range head.Chain() {
		lines = append(lines, c.Statement(n)...)
	}
	return lines
}

// Block renders the chain attached to a statement input, indented.
func (c *Context) Block(n *ir.Node, input string) []string {
	return Indent(c.Body(n.Input(input)))
}

// ValueOf renders n in value position. Statement kinds become markers.
func (c *Context) ValueOf(n *ir.Node) Fragment {
	h, ok := c.gen.handler(n.Type)
	if !ok {
		return Atom(c.Marker("/* unknown block: " + markerText(n.Type) + " */ undefined"))
	}
	f := h(c, n)
	if f.IsStatement() {
		return Atom(c.Marker("/* statement block: " + markerText(n.Type) + " */ undefined"))
	}
	return f
}

// Input renders a value input. An empty slot falls back to its shadow, then
// to def.
func (c *Context) Input(n *ir.Node, name, def string) Fragment {
	child := n.Input(name)
	if child == nil {
		return Atom(def)
	}
	return c.ValueOf(child)
}

// Args renders call arguments from the named inputs. Missing trailing
// arguments are dropped; interior gaps become undefined.
func (c *Context) Args(n *ir.Node, names []string) []string {
	args := make([]string, len(names))
	last := -1
	for i, name := range names {
		child := n.Input(name)
		if child == nil {
			args[i] = "undefined"
			continue
		}
		args[i] = c.ValueOf(child).Expr
		last = i
	}
	return args[:last+1]
}

// inline returns a context whose inlining stack includes name.
func (c *Context) inline(name string) *Context {
	inner := *c
	inner.inlining = append(slices.Clip(c.inlining), name)
	return &inner
}

// loop returns a context one loop level deeper and the counter name of the
// new level.
func (c *Context) loop() (*Context, string) {
	inner := *c
	inner.loopDepth++
	return &inner, loopCounter(c.loopDepth)
}

func loopCounter(depth int) string {
	counters := []string{"i", "j", "k"}
	if depth < len(counters) {
		return counters[depth]
	}
	return "i" + strconv.Itoa(depth)
}
