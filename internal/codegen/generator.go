// Package codegen turns a block document into a script calling the runtime
// API. Generation is total: anything it cannot translate becomes a comment
// marker in the output, never an error.
package codegen

import (
	"strings"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/registry"
)

const (
	// DefaultImportLine is the header of every generated script.
	DefaultImportLine = "import * as modlib from 'modlib';"
	// DefaultRuntime is the identifier runtime calls are made through.
	DefaultRuntime = "mod"
)

// Handler translates one node. Returning a value fragment where a statement
// is expected (or the reverse) is fine; the caller adapts it.
type Handler func(c *Context, n *ir.Node) Fragment

// Lookup serves enumerated values; selections.Cache implements it.
type Lookup interface {
	Lookup(list string) ([]string, error)
}

// Options configures a Generator.
type Options struct {
	ImportLine string
	Runtime    string
	Selections Lookup
}

// Stats summarizes one generation run.
type Stats struct {
	Rules       int `json:"rules"`
	Subroutines int `json:"subroutines"`
	Markers     int `json:"markers"`
}

// Generator holds the dispatch table. The table is open: Handle adds or
// replaces the handler of any kind, and kinds without a handler fall back
// to registry-described runtime calls or enumerations, then to a marker.
type Generator struct {
	reg      *registry.Registry
	opts     Options
	handlers map[string]Handler
}

// New creates a generator over reg with the built-in handlers.
func New(reg *registry.Registry, opts Options) *Generator {
	if reg == nil {
		reg = registry.NewDefault()
	}
	if opts.ImportLine == "" {
		opts.ImportLine = DefaultImportLine
	}
	if opts.Runtime == "" {
		opts.Runtime = DefaultRuntime
	}
	g := &Generator{
		reg:      reg,
		opts:     opts,
		handlers: make(map[string]Handler),
	}
	for kind, h := range builtinHandlers() {
		g.handlers[kind] = h
	}
	return g
}

// Handle registers h for kind.
func (g *Generator) Handle(kind string, h Handler) {
	g.handlers[kind] = h
}

// Generate renders doc as a script.
func (g *Generator) Generate(doc ir.Document) string {
	script, _ := g.GenerateStats(doc)
	return script
}

// GenerateStats renders doc and reports what was emitted.
func (g *Generator) GenerateStats(doc ir.Document) (string, Stats) {
	p := collect(doc)
	c := newContext(g, doc, p)

	sections := []string{g.opts.ImportLine}
	if decls := c.declarations(); len(decls) > 0 {
		sections = append(sections, strings.Join(decls, "\n"))
	}
	for _, sub := range p.subroutines {
		sections = append(sections, strings.Join(c.subroutine(sub), "\n"))
		c.stats.Subroutines++
	}
	for _, rule := range p.rules {
		sections = append(sections, strings.Join(c.rule(rule), "\n"))
		c.stats.Rules++
	}
	return strings.Join(sections, "\n\n") + "\n", c.stats
}

// handler resolves the translation of kind.
func (g *Generator) handler(kind string) (Handler, bool) {
	if h, ok := g.handlers[kind]; ok {
		return h, true
	}
	def, ok := g.reg.Lookup(kind)
	if !ok || def.Placeholder {
		return nil, false
	}
	switch {
	case def.Call != "":
		return callHandler(def), true
	case def.Enum != "":
		return enumHandler(def), true
	}
	return nil, false
}
