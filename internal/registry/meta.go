package registry

import (
	"github.com/roach88/blockc/internal/ir"
)

// Parameter is one declared parameter of a subroutine definition.
type Parameter struct {
	Name string
	Type string
}

// parameterKeys are the structural metadata keys parameters are read from,
// canonical shape first.
var parameterKeys = []string{"parameters", "params", "arguments"}

// Parameters reads the parameter list of a subroutine definition or call
// from its structural metadata. Entries may be plain names or objects with
// a name and an optional type.
func Parameters(n *ir.Node) []Parameter {
	meta := n.StructuralMeta()
	for _, key := range parameterKeys {
		list, ok := meta[key].(ir.IRArray)
		if !ok {
			continue
		}
		var out []Parameter
		for _, item := range list {
			switch v := item.(type) {
			case ir.IRString:
				if v != "" {
					out = append(out, Parameter{Name: string(v)})
				}
			case ir.IRObject:
				if name := v.StringAt("name"); name != "" {
					out = append(out, Parameter{Name: name, Type: v.StringAt("type")})
				}
			}
		}
		return out
	}
	return nil
}

// SubroutineName returns the name of a subroutine definition or call:
// the SUBROUTINE_NAME field, the canonical NAME field, then metadata.
func SubroutineName(n *ir.Node) string {
	return firstText(n, []string{"SUBROUTINE_NAME", "NAME"}, "name")
}

// RuleName returns the display name of a rule.
func RuleName(n *ir.Node) string {
	return firstText(n, []string{"RULE_NAME", "NAME"}, "name")
}

// RuleScope returns a rule's scope, defaulting to Global.
func RuleScope(n *ir.Node) string {
	if s := firstText(n, []string{"SCOPE_TYPE", "SCOPE"}, "scope"); s != "" {
		return s
	}
	return "Global"
}

// RuleEvent returns a rule's event, defaulting to Ongoing.
func RuleEvent(n *ir.Node) string {
	if s := firstText(n, []string{"EVENT_TYPE", "EVENT"}, "event"); s != "" {
		return s
	}
	return "Ongoing"
}

func firstText(n *ir.Node, fields []string, metaKey string) string {
	for _, f := range fields {
		if s := n.FieldText(f); s != "" {
			return s
		}
	}
	return n.StructuralMeta().StringAt(metaKey)
}
