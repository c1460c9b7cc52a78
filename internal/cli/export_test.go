package cli

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/registry"
	tu "github.com/roach88/blockc/internal/testutil"
)

func TestExport_WrapsUnderKey(t *testing.T) {
	path := writeDocument(t, tu.Doc([]*ir.Node{
		tu.Mod(tu.Rule("Tick", nil, tu.Wait("2"))),
	}))

	stdout, _, err := execute(t, "export", path, "--key", "game")
	require.NoError(t, err)

	var wrapper map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(stdout), &wrapper))
	require.Contains(t, wrapper, "game")

	doc, err := ir.ParseInterchange([]byte(stdout))
	require.NoError(t, err)
	require.Len(t, doc.Roots(), 1)
	mod := doc.Roots()[0]
	assert.Equal(t, registry.CanonicalMod, mod.Type)
	rule := mod.Input("RULES")
	require.NotNil(t, rule)
	assert.Equal(t, registry.CanonicalRule, rule.Type)
	assert.Equal(t, "Tick", rule.FieldText("NAME"))
}

func TestExport_RoundTripsScript(t *testing.T) {
	exported := filepath.Join(t.TempDir(), "shared.json")

	stdout, _, err := execute(t, "export", "testdata/legacy.json", "-o", exported)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Exported")

	original, _, err := execute(t, "generate", "testdata/legacy.json")
	require.NoError(t, err)
	again, _, err := execute(t, "generate", exported)
	require.NoError(t, err)
	assert.Equal(t, original, again)
	assert.Contains(t, again, "mod.DealDamage(mod.EventPlayer(), 25);")
}

func TestExport_JSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "export", "testdata/program.json")
	require.NoError(t, err)

	resp := decodeResponse[ExportResult](t, []byte(stdout))
	assert.Equal(t, "ok", resp.Status)
	require.NotEmpty(t, resp.Data.Document)

	doc, err := ir.ParseInterchange(resp.Data.Document)
	require.NoError(t, err)
	assert.Len(t, doc.Variables, 1)
	assert.Equal(t, "score", doc.Variables[0].Name)
}

func TestExport_WithSpec(t *testing.T) {
	out := filepath.Join(t.TempDir(), "shared.json")
	spec := filepath.Join("..", "harness", "testdata", "specs", "canonical.cue")

	_, _, err := execute(t, "export", "testdata/legacy.json", "--spec", spec, "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	doc, err := ir.ParseInterchange(data)
	require.NoError(t, err)

	var damage *ir.Node
	ir.Walk(doc, func(n *ir.Node, _ ir.Link) bool {
		if n.Type == "dealDamage" {
			damage = n
		}
		return true
	})
	require.NotNil(t, damage, "DealDamage should fold onto the declared dealDamage")
	assert.Equal(t, []string{"VICTIM", "AMOUNT"}, damage.InputNames())
}
