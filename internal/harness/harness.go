package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/blockc/internal/codegen"
	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/normalize"
	"github.com/roach88/blockc/internal/pipeline"
	"github.com/roach88/blockc/internal/testutil"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held and the round trip was stable.
	Pass bool `json:"pass"`

	Script       string        `json:"-"`
	Stats        codegen.Stats `json:"stats"`
	Placeholders []string      `json:"placeholders"`
	Variables    int           `json:"variables"`

	// Canonical is the exported document before wrapping.
	Canonical ir.Document `json:"-"`

	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Placeholders: []string{}, Errors: []string{}}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Harness runs scenarios with deterministic variable ids.
type Harness struct {
	logger *slog.Logger
}

// New returns a harness logging to logger; nil discards logs.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger}
}

// Run executes a scenario with a harness that discards logs.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(scenario)
}

// Run executes a scenario and returns the result.
//
// Each run starts from a fresh registry and variable table so scenarios
// are independent. Execution flow:
//  1. Import the document (canonical mapping, inference, hydration)
//  2. Generate the script
//  3. Export, then re-import the export and regenerate
//  4. Evaluate assertions
//
// A returned error means the scenario could not run at all; assertion
// failures are reported in Result.Errors.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	p, err := h.newPipeline(scenario)
	if err != nil {
		return nil, err
	}

	imported, err := p.ImportFile(scenario.Document)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", scenario.Document, err)
	}
	h.logger.Debug("imported",
		"scenario", scenario.Name,
		"placeholders", imported.Inferred.Registered,
		"declared", imported.Hydration.Declared,
		"discovered", imported.Hydration.Discovered)

	result := NewResult()
	result.Script, result.Stats = p.Generate(imported.Document)
	result.Variables = len(imported.Document.Variables)
	for _, def := range imported.Inferred.Definitions {
		result.Placeholders = append(result.Placeholders, def.Kind)
	}
	result.Canonical = p.Canonical(imported.Document)

	if err := h.checkRoundTrip(scenario, p, imported.Document, result); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	h.logger.Info("scenario finished", "scenario", scenario.Name, "pass", result.Pass)
	return result, nil
}

func (h *Harness) newPipeline(scenario *Scenario) (*pipeline.Pipeline, error) {
	p := pipeline.New()
	p.Hydrator.IDs = testutil.NewSequentialIDGenerator("var")
	if scenario.CanonicalSpec != "" {
		spec, err := normalize.LoadSpec(scenario.CanonicalSpec)
		if err != nil {
			return nil, fmt.Errorf("load canonical spec: %w", err)
		}
		p.Spec = spec
	}
	return p, nil
}

// checkRoundTrip exports doc, imports the export into a fresh pipeline and
// requires the same script.
func (h *Harness) checkRoundTrip(scenario *Scenario, p *pipeline.Pipeline, doc ir.Document, result *Result) error {
	exported, err := p.Export(doc)
	if err != nil {
		return err
	}

	fresh, err := h.newPipeline(scenario)
	if err != nil {
		return err
	}
	again, err := fresh.Import(exported)
	if err != nil {
		return fmt.Errorf("re-import export: %w", err)
	}
	script, _ := fresh.Generate(again.Document)
	if script != result.Script {
		h.logger.Warn("round trip changed the script", "scenario", scenario.Name)
		result.AddError("round trip: regenerated script differs from the original")
	}
	return nil
}
