package store

import (
	"fmt"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/registry"
)

// Build is one recorded generation run.
type Build struct {
	Seq          int64         `json:"seq"`
	ID           string        `json:"id"`
	DocumentHash string        `json:"document_hash"`
	ScriptHash   string        `json:"script_hash"`
	Script       string        `json:"-"`
	Rules        int           `json:"rules"`
	Subroutines  int           `json:"subroutines"`
	Markers      int           `json:"markers"`
	ToolVersion  string        `json:"tool_version"`
	Placeholders []Placeholder `json:"placeholders,omitempty"`
}

// Placeholder is a placeholder definition inferred for a build.
type Placeholder struct {
	Kind            string   `json:"kind"`
	Shape           string   `json:"shape"`
	Fields          []string `json:"fields,omitempty"`
	ValueInputs     []string `json:"value_inputs,omitempty"`
	StatementInputs []string `json:"statement_inputs,omitempty"`
}

// NewBuild computes the content-addressed identity of generating doc into
// script with the running tool version. Seq is assigned by WriteBuild.
func NewBuild(doc ir.Document, script string) (Build, error) {
	docHash, err := ir.DocumentHash(doc)
	if err != nil {
		return Build{}, fmt.Errorf("new build: %w", err)
	}
	scriptHash := ir.ScriptHash(script)
	id, err := ir.BuildID(docHash, scriptHash, ir.ToolVersion)
	if err != nil {
		return Build{}, fmt.Errorf("new build: %w", err)
	}
	return Build{
		ID:           id,
		DocumentHash: docHash,
		ScriptHash:   scriptHash,
		Script:       script,
		ToolVersion:  ir.ToolVersion,
	}, nil
}

// PlaceholdersFrom converts registry placeholder definitions.
func PlaceholdersFrom(defs []registry.Definition) []Placeholder {
	var out []Placeholder
	for _, d := range defs {
		if !d.Placeholder {
			continue
		}
		out = append(out, Placeholder{
			Kind:            d.Kind,
			Shape:           string(d.Shape),
			Fields:          d.Fields,
			ValueInputs:     d.ValueInputs,
			StatementInputs: d.StatementInputs,
		})
	}
	return out
}
