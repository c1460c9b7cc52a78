// Package pipeline composes the import, generate and export stages shared
// by the CLI and the conformance harness.
package pipeline

import (
	"fmt"
	"os"

	"github.com/roach88/blockc/internal/codegen"
	"github.com/roach88/blockc/internal/hydrate"
	"github.com/roach88/blockc/internal/infer"
	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/normalize"
	"github.com/roach88/blockc/internal/registry"
)

// Pipeline carries the state one session of imports shares: the registry
// placeholders are added to and the running variable table.
type Pipeline struct {
	Registry *registry.Registry
	Spec     *normalize.CanonicalSpec
	Hydrator *hydrate.Hydrator
	Codegen  codegen.Options

	// ContainerKey wraps exported documents.
	ContainerKey string
}

// New returns a pipeline over the built-in vocabulary and default shapes.
func New() *Pipeline {
	return &Pipeline{
		Registry: registry.NewDefault(),
		Spec:     normalize.DefaultSpec(),
		Hydrator: hydrate.New(),
	}
}

// Imported is the outcome of one import.
type Imported struct {
	// Source is the document as parsed, before mapping and hydration.
	Source    ir.Document    `json:"-"`
	Document  ir.Document    `json:"-"`
	Inferred  infer.Result   `json:"inferred"`
	Hydration hydrate.Report `json:"hydration"`
}

// Import parses interchange data (plain, array or wrapped form), maps
// canonical kinds back onto the registry, registers placeholders for what
// remains unknown and hydrates the variable table. A malformed document is
// the only failure; it returns *ir.ParseError and loads nothing.
func (p *Pipeline) Import(data []byte) (Imported, error) {
	doc, err := ir.ParseInterchange(data)
	if err != nil {
		return Imported{}, err
	}
	mapped := normalize.FromCanonical(doc, p.Spec, p.Registry)
	res := infer.InferAndRegister(mapped, p.Registry)
	mapped, rep := p.Hydrator.Hydrate(mapped)
	return Imported{Source: doc, Document: mapped, Inferred: res, Hydration: rep}, nil
}

// ImportFile reads and imports a file.
func (p *Pipeline) ImportFile(path string) (Imported, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Imported{}, fmt.Errorf("read document: %w", err)
	}
	return p.Import(data)
}

// Generate emits the script of doc.
func (p *Pipeline) Generate(doc ir.Document) (string, codegen.Stats) {
	return codegen.New(p.Registry, p.Codegen).GenerateStats(doc)
}

// Canonical returns the canonical form of doc.
func (p *Pipeline) Canonical(doc ir.Document) ir.Document {
	return normalize.ToCanonical(doc, p.Spec)
}

// Export returns the canonical, wrapped JSON of doc.
func (p *Pipeline) Export(doc ir.Document) ([]byte, error) {
	out, err := ir.Marshal(ir.Wrap(p.Canonical(doc), p.ContainerKey))
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return out, nil
}
