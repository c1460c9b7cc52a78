package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/registry"
	tu "github.com/roach88/blockc/internal/testutil"
)

func newTestPipeline() *Pipeline {
	p := New()
	p.Hydrator.IDs = tu.NewSequentialIDGenerator("var")
	return p
}

func TestImport_RegistersPlaceholdersAndHydrates(t *testing.T) {
	doc := tu.Doc([]*ir.Node{
		tu.Mod(tu.Rule("Spark", nil,
			ir.NewNode("Sparkle").SetField("COLOR", ir.IRString("red")),
			ir.NewNode("SetVariable").
				SetField("VAR", ir.IRObject{"name": ir.IRString("hits")}).
				SetShadow("VALUE", tu.Num("1")),
		)),
	})
	data, err := ir.Marshal(doc)
	require.NoError(t, err)

	p := newTestPipeline()
	imported, err := p.Import(data)
	require.NoError(t, err)

	assert.Equal(t, 1, imported.Inferred.Registered)
	assert.True(t, p.Registry.Has("Sparkle"))
	assert.Equal(t, 1, imported.Hydration.Discovered)
	require.Len(t, imported.Document.Variables, 1)
	assert.Equal(t, ir.Variable{ID: "var-1", Name: "hits"}, imported.Document.Variables[0])

	assert.Empty(t, imported.Source.Variables, "source is the document as parsed")
}

func TestImport_MalformedIsParseError(t *testing.T) {
	p := newTestPipeline()
	_, err := p.Import([]byte(`{"blocks": `))
	require.Error(t, err)

	var parseErr *ir.ParseError
	assert.True(t, errors.As(err, &parseErr))
	assert.Equal(t, registry.NewDefault().Kinds(), p.Registry.Kinds(), "nothing is registered")
}

func TestExport_RoundTrip(t *testing.T) {
	doc := tu.Doc([]*ir.Node{
		tu.Mod(tu.Rule("Tick", nil, tu.Wait("2"), tu.Call("Reset"))),
		tu.Subroutine("Reset", nil, tu.Wait("0.5")),
	})
	data, err := ir.Marshal(doc)
	require.NoError(t, err)

	p := newTestPipeline()
	imported, err := p.Import(data)
	require.NoError(t, err)
	script, stats := p.Generate(imported.Document)
	assert.Equal(t, 1, stats.Rules)
	assert.Equal(t, 1, stats.Subroutines)
	assert.Zero(t, stats.Markers)

	exported, err := p.Export(imported.Document)
	require.NoError(t, err)
	assert.Contains(t, string(exported), `"mod"`)

	again := newTestPipeline()
	reimported, err := again.Import(exported)
	require.NoError(t, err)
	againScript, _ := again.Generate(reimported.Document)
	assert.Equal(t, script, againScript)
}

func TestExport_RoundTripKeepsConditions(t *testing.T) {
	doc := tu.Doc([]*ir.Node{tu.Mod(
		tu.Rule("a", tu.Chain(tu.Condition(tu.Bool(true)), tu.Condition(tu.Bool(false))), tu.Wait("1")),
		tu.Rule("b", tu.Condition(tu.Bool(true))),
	)})
	data, err := ir.Marshal(doc)
	require.NoError(t, err)

	p := newTestPipeline()
	imported, err := p.Import(data)
	require.NoError(t, err)
	script, _ := p.Generate(imported.Document)

	exported, err := p.Export(imported.Document)
	require.NoError(t, err)
	again := newTestPipeline()
	reimported, err := again.Import(exported)
	require.NoError(t, err)

	rules := reimported.Document.Roots()[0].Input("RULES").Chain()
	require.Len(t, rules, 2)
	assert.Equal(t, []string{"CONDITIONS", "ACTIONS"}, rules[0].InputNames())
	assert.Equal(t, []string{"CONDITIONS"}, rules[1].InputNames())

	againScript, _ := again.Generate(reimported.Document)
	assert.Equal(t, script, againScript)
	assert.NotContains(t, againScript, "true;")
}

func TestExport_ContainerKey(t *testing.T) {
	p := newTestPipeline()
	p.ContainerKey = "game"

	out, err := p.Export(tu.Doc([]*ir.Node{tu.Mod()}))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"game"`)
	assert.NotContains(t, string(out), `"mod"`)
}
