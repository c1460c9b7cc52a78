package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/registry"
	tu "github.com/roach88/blockc/internal/testutil"
)

const waitSpec = `
kinds: {
	Wait: { values: ["SECONDS"], statements: [] }
	Loop: { values: ["COUNT"], statements: ["BODY"] }
}
`

func mustSpec(t *testing.T, src string) *CanonicalSpec {
	t.Helper()
	spec, err := ParseSpec([]byte(src), "spec.cue")
	require.NoError(t, err)
	return spec
}

func TestToCanonicalStructuralKinds(t *testing.T) {
	doc := tu.Doc([]*ir.Node{tu.Mod(
		tu.Subroutine("Greet", []string{"who"}),
		tu.Rule("My Rule", tu.Condition(tu.Bool(true)), tu.Call("Greet", tu.Str("x"))),
	)})

	out := ToCanonical(doc, nil)

	mod := out.Roots()[0]
	assert.Equal(t, registry.CanonicalMod, mod.Type)

	def := mod.Input("RULES")
	require.NotNil(t, def)
	assert.Equal(t, registry.CanonicalSubroutine, def.Type)
	assert.Equal(t, []string{"NAME"}, def.FieldNames())
	assert.Equal(t, "Greet", def.FieldText("NAME"))

	rule := def.NextNode()
	require.NotNil(t, rule)
	assert.Equal(t, registry.CanonicalRule, rule.Type)
	assert.Equal(t, "My Rule", rule.FieldText("NAME"))
	assert.Equal(t, registry.CanonicalCondition, rule.Input("CONDITIONS").Type)

	call := rule.Input("ACTIONS")
	assert.Equal(t, registry.CanonicalSubroutineCall, call.Type)
	assert.Equal(t, "Greet", call.FieldText("NAME"))
	assert.NotNil(t, call.Input("ARG0"), "extra call inputs keep their names")
}

func TestToCanonicalDoesNotMutateInput(t *testing.T) {
	doc := tu.Doc([]*ir.Node{tu.Mod(tu.Rule("r", nil, tu.Wait("1")))})
	before := ir.Clone(doc)

	_ = ToCanonical(doc, mustSpec(t, waitSpec))

	assert.True(t, ir.Equal(before, doc))
	assert.Equal(t, registry.KindRule, doc.Roots()[0].Input("RULES").Type)
}

func TestToCanonicalRuleMeta(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		doc := tu.Doc([]*ir.Node{tu.Rule("r", nil)})
		rule := ToCanonical(doc, nil).Roots()[0]
		assert.Equal(t, ir.IRObject{
			"scope": ir.IRString("Global"),
			"event": ir.IRString("Ongoing"),
		}, rule.ExtraState)
	})

	t.Run("from fields", func(t *testing.T) {
		r := tu.Rule("r", nil).
			SetField("SCOPE_TYPE", ir.IRString("EachPlayer")).
			SetField("EVENT_TYPE", ir.IRString("OnDeath"))
		rule := ToCanonical(tu.Doc([]*ir.Node{r}), nil).Roots()[0]

		assert.Equal(t, []string{"NAME", "SCOPE", "EVENT"}, rule.FieldNames())
		meta := rule.ExtraState.(ir.IRObject)
		assert.Equal(t, "EachPlayer", meta.StringAt("scope"))
		assert.Equal(t, "OnDeath", meta.StringAt("event"))
	})

	t.Run("existing scope kept", func(t *testing.T) {
		r := tu.Rule("r", nil)
		r.ExtraState = ir.IRObject{"scope": ir.IRString("Team"), "x": ir.IRNumber("1")}
		rule := ToCanonical(tu.Doc([]*ir.Node{r}), nil).Roots()[0]
		assert.Equal(t, r.ExtraState, rule.ExtraState)
	})
}

func TestToCanonicalFieldRenameNeverOverwrites(t *testing.T) {
	r := tu.Rule("old", nil).SetField("NAME", ir.IRString("kept"))
	rule := ToCanonical(tu.Doc([]*ir.Node{r}), nil).Roots()[0]

	assert.Equal(t, "kept", rule.FieldText("NAME"))
	assert.Equal(t, "old", rule.FieldText("RULE_NAME"))
}

func TestToCanonicalSubroutineMeta(t *testing.T) {
	tests := []struct {
		name string
		meta ir.IRValue
		mut  ir.IRValue
		want ir.IRArray
	}{
		{
			name: "canonical parameters",
			meta: ir.IRObject{"parameters": ir.IRArray{
				ir.IRObject{"name": ir.IRString("who"), "type": ir.IRString("Player")},
			}},
			want: ir.IRArray{ir.IRObject{"name": ir.IRString("who"), "type": ir.IRString("Player")}},
		},
		{
			name: "legacy string params",
			meta: ir.IRObject{"params": ir.IRArray{ir.IRString("a"), ir.IRString("b")}},
			want: ir.IRArray{
				ir.IRObject{"name": ir.IRString("a"), "type": ir.IRString("Any")},
				ir.IRObject{"name": ir.IRString("b"), "type": ir.IRString("Any")},
			},
		},
		{
			name: "legacy mutation arguments",
			mut:  ir.IRObject{"arguments": ir.IRArray{ir.IRObject{"name": ir.IRString("n")}}},
			want: ir.IRArray{ir.IRObject{"name": ir.IRString("n"), "type": ir.IRString("Any")}},
		},
		{
			name: "no parameters",
			want: ir.IRArray{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := tu.Subroutine("Greet", nil)
			def.ExtraState = tt.meta
			def.Mutation = tt.mut

			out := ToCanonical(tu.Doc([]*ir.Node{def}), nil).Roots()[0]

			meta, ok := out.ExtraState.(ir.IRObject)
			require.True(t, ok)
			assert.Equal(t, "Greet", meta.StringAt("name"))
			assert.Equal(t, tt.want, meta["parameters"])
			assert.NotContains(t, meta, "params")
		})
	}
}

func TestToCanonicalFoldMatch(t *testing.T) {
	spec := mustSpec(t, waitSpec)

	t.Run("renames kind and inputs", func(t *testing.T) {
		w := ir.NewNode("wait").SetShadow("TIME", tu.Num("2"))
		out := ToCanonical(tu.Doc([]*ir.Node{tu.Rule("r", nil, w)}), spec)

		got := out.Roots()[0].Input("ACTIONS")
		assert.Equal(t, "Wait", got.Type)
		assert.Equal(t, []string{"SECONDS"}, got.InputNames())
		assert.NotNil(t, got.Slot("SECONDS").Shadow)
	})

	t.Run("statement inputs zip separately", func(t *testing.T) {
		loop := ir.NewNode("LOOP").
			SetBlock("N", tu.Num("3")).
			SetBlock("DO", tu.Wait("1"))
		out := ToCanonical(tu.Doc([]*ir.Node{tu.Rule("r", nil, loop)}), spec)

		got := out.Roots()[0].Input("ACTIONS")
		assert.Equal(t, "Loop", got.Type)
		assert.Equal(t, []string{"COUNT", "BODY"}, got.InputNames())
	})

	t.Run("arity mismatch keeps kind", func(t *testing.T) {
		w := ir.NewNode("wait").
			SetBlock("TIME", tu.Num("2")).
			SetBlock("UNIT", tu.Str("s"))
		out := ToCanonical(tu.Doc([]*ir.Node{tu.Rule("r", nil, w)}), spec)

		got := out.Roots()[0].Input("ACTIONS")
		assert.Equal(t, "wait", got.Type)
		assert.Equal(t, []string{"TIME", "UNIT"}, got.InputNames())
	})

	t.Run("arity counts every occurrence", func(t *testing.T) {
		a := ir.NewNode("wait").SetBlock("TIME", tu.Num("2"))
		b := ir.NewNode("wait").SetBlock("DELAY", tu.Num("2"))
		out := ToCanonical(tu.Doc([]*ir.Node{tu.Rule("r", nil, a, b)}), spec)

		got := out.Roots()[0].Input("ACTIONS")
		assert.Equal(t, "wait", got.Type)
		assert.Equal(t, "wait", got.NextNode().Type)
	})

	t.Run("ambiguous match skipped", func(t *testing.T) {
		ambiguous := mustSpec(t, `kinds: { Foo: {}, FOO: {} }`)
		out := ToCanonical(tu.Doc([]*ir.Node{ir.NewNode("foo")}), ambiguous)
		assert.Equal(t, "foo", out.Roots()[0].Type)
	})

	t.Run("exact name untouched", func(t *testing.T) {
		w := tu.Wait("1")
		out := ToCanonical(tu.Doc([]*ir.Node{tu.Rule("r", nil, w)}), spec)
		assert.True(t, ir.EqualNodes(w, out.Roots()[0].Input("ACTIONS")))
	})
}

func TestToCanonicalRenameNeverOverwritesInput(t *testing.T) {
	spec := mustSpec(t, `kinds: { Pair: { values: ["B", "A"] } }`)
	n := ir.NewNode("pair").
		SetBlock("A", tu.Num("1")).
		SetBlock("B", tu.Num("2"))

	out := ToCanonical(tu.Doc([]*ir.Node{n}), spec).Roots()[0]

	assert.Equal(t, "Pair", out.Type)
	assert.Equal(t, "1", out.Input("A").FieldText("NUM"))
	assert.Equal(t, "2", out.Input("B").FieldText("NUM"))
}

func TestToCanonicalChainedConditionsStayConditions(t *testing.T) {
	doc := tu.Doc([]*ir.Node{tu.Mod(
		tu.Rule("a", tu.Chain(tu.Condition(tu.Bool(true)), tu.Condition(tu.Bool(false)))),
		tu.Rule("b", tu.Condition(tu.Bool(true))),
	)})

	rules := ToCanonical(doc, nil).Roots()[0].Input("RULES").Chain()

	require.Len(t, rules, 2)
	for _, rule := range rules {
		assert.Equal(t, registry.CanonicalRule, rule.Type)
		assert.Equal(t, []string{"CONDITIONS"}, rule.InputNames(), rule.FieldText("NAME"))
		assert.Equal(t, registry.CanonicalCondition, rule.Input("CONDITIONS").Type)
	}
	assert.Len(t, rules[0].Input("CONDITIONS").Chain(), 2)
}

func TestFromCanonicalRoundTrip(t *testing.T) {
	doc := tu.Doc([]*ir.Node{tu.Mod(
		tu.Subroutine("Greet", []string{"who"}),
		tu.Rule("My Rule", tu.Condition(tu.Bool(true)), tu.Call("Greet"), tu.Wait("1")),
	)})
	reg := registry.NewDefault()

	back := FromCanonical(ToCanonical(doc, nil), nil, reg)

	var want, got []string
	ir.Walk(doc, func(n *ir.Node, _ ir.Link) bool {
		want = append(want, n.Type)
		want = append(want, n.FieldNames()...)
		return true
	})
	ir.Walk(back, func(n *ir.Node, _ ir.Link) bool {
		got = append(got, n.Type)
		got = append(got, n.FieldNames()...)
		return true
	})
	assert.Equal(t, want, got)
}

func TestFromCanonicalFoldMatch(t *testing.T) {
	reg := registry.NewDefault()

	t.Run("renames to registry kind", func(t *testing.T) {
		n := ir.NewNode("kill").SetBlock("VICTIM", ir.NewNode("EventPlayer"))
		out := FromCanonical(tu.Doc([]*ir.Node{tu.Rule("r", nil, n)}), nil, reg)

		got := out.Roots()[0].Input("ACTIONS")
		assert.Equal(t, "Kill", got.Type)
		assert.Equal(t, []string{"TARGET"}, got.InputNames())
	})

	t.Run("declared order wins", func(t *testing.T) {
		spec := mustSpec(t, `kinds: { teleport: { values: ["WHO", "WHERE"] } }`)
		n := ir.NewNode("teleport").
			SetBlock("WHERE", tu.Num("1")).
			SetBlock("WHO", ir.NewNode("EventPlayer"))
		out := FromCanonical(tu.Doc([]*ir.Node{tu.Rule("r", nil, n)}), spec, reg)

		got := out.Roots()[0].Input("ACTIONS")
		assert.Equal(t, "Teleport", got.Type)
		assert.Equal(t, "EventPlayer", got.Input("TARGET").Type)
		assert.Equal(t, "Number", got.Input("POSITION").Type)
	})

	t.Run("arity mismatch left alone", func(t *testing.T) {
		n := ir.NewNode("kill")
		out := FromCanonical(tu.Doc([]*ir.Node{tu.Rule("r", nil, n)}), nil, reg)
		assert.Equal(t, "kill", out.Roots()[0].Input("ACTIONS").Type)
	})

	t.Run("placeholders are not targets", func(t *testing.T) {
		r := registry.New()
		require.NoError(t, r.Register(registry.Definition{Kind: "Blink", Shape: registry.ShapeStatement, Placeholder: true}))
		out := FromCanonical(tu.Doc([]*ir.Node{ir.NewNode("blink")}), nil, r)
		assert.Equal(t, "blink", out.Roots()[0].Type)
	})
}

func TestParseSpec(t *testing.T) {
	spec := mustSpec(t, waitSpec)

	wait, ok := spec.Lookup("Wait")
	require.True(t, ok)
	assert.Equal(t, []string{"SECONDS"}, wait.Values)
	assert.Empty(t, wait.Statements)

	rule, ok := spec.Lookup(registry.CanonicalRule)
	require.True(t, ok, "built-in shapes are always present")
	assert.Equal(t, ir.Arity{Values: 1, Statements: 1}, rule.Arity())

	assert.Equal(t, []string{"Wait"}, spec.FoldMatches("WAIT"))
	assert.Contains(t, spec.Kinds(), "Loop")
}

func TestParseSpecErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"missing kinds", `other: 1`, "kinds"},
		{"values not a list", `kinds: { Wait: { values: "SECONDS" } }`, "values"},
		{"non-string input", `kinds: { Wait: { values: [1] } }`, "values"},
		{"duplicate input", `kinds: { Wait: { statements: ["DO", "DO"] } }`, "statements"},
		{"syntax error", `kinds: {`, "cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpec([]byte(tt.src), "bad.cue")
			require.Error(t, err)

			var specErr *SpecError
			require.ErrorAs(t, err, &specErr)
			assert.Equal(t, tt.field, specErr.Field)
		})
	}
}

func TestLoadSpecJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canonical.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"kinds": {"Heal": {"values": ["TARGET", "AMOUNT"]}}}`), 0o644))

	spec, err := LoadSpec(path)
	require.NoError(t, err)

	heal, ok := spec.Lookup("Heal")
	require.True(t, ok)
	assert.Equal(t, []string{"TARGET", "AMOUNT"}, heal.Values)

	_, err = LoadSpec(filepath.Join(t.TempDir(), "missing.cue"))
	assert.Error(t, err)
}
