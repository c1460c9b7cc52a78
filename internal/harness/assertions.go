package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/blockc/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Script   string // Generated script for context
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Script != "" {
		fmt.Fprintf(&buf, "\nScript:\n%s", e.Script)
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns one message per
// failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertScriptContains:
		if !strings.Contains(result.Script, a.Text) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("script contains %q", a.Text), Actual: "not found", Script: result.Script}
		}
	case AssertScriptNotContains:
		if strings.Contains(result.Script, a.Text) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("script without %q", a.Text), Actual: "found", Script: result.Script}
		}
	case AssertMarkerCount:
		if result.Stats.Markers != *a.Count {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%d markers", *a.Count), Actual: fmt.Sprintf("%d markers", result.Stats.Markers), Script: result.Script}
		}
	case AssertVariableCount:
		if result.Variables != *a.Count {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%d variables", *a.Count), Actual: fmt.Sprintf("%d variables", result.Variables)}
		}
	case AssertCanonicalKind:
		if !hasKind(result.Canonical, a.Kind) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("kind %q in the export", a.Kind), Actual: "absent"}
		}
	case AssertPlaceholders:
		want := a.Kinds
		if want == nil {
			want = []string{}
		}
		if !slices.Equal(want, result.Placeholders) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprint(want), Actual: fmt.Sprint(result.Placeholders)}
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func hasKind(doc ir.Document, kind string) bool {
	found := false
	ir.Walk(doc, func(n *ir.Node, _ ir.Link) bool {
		if n.Type == kind {
			found = true
		}
		return !found
	})
	return found
}
