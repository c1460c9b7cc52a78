package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blockc/internal/ir"
	"github.com/roach88/blockc/internal/registry"
)

func TestImport_WritesInternalDocument(t *testing.T) {
	out := filepath.Join(t.TempDir(), "program.json")

	stdout, _, err := execute(t, "import", "testdata/program.json", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Imported testdata/program.json -> "+out)
	assert.Contains(t, stdout, "placeholder: Sparkle")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	doc, err := ir.ParseInterchange(data)
	require.NoError(t, err)

	require.Len(t, doc.Roots(), 1)
	mod := doc.Roots()[0]
	assert.Equal(t, registry.KindMod, mod.Type)
	rule := mod.Input("RULES")
	require.NotNil(t, rule)
	assert.Equal(t, registry.KindRule, rule.Type)
	assert.Equal(t, "Score Tick", rule.FieldText("RULE_NAME"))

	require.Len(t, doc.Variables, 1)
	assert.Equal(t, "score", doc.Variables[0].Name)
	assert.NotEmpty(t, doc.Variables[0].ID)
}

func TestImport_ArrayFormJSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "import", "testdata/legacy.json")
	require.NoError(t, err)

	resp := decodeResponse[ImportResult](t, []byte(stdout))
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Data.Placeholders)
	assert.Equal(t, 0, resp.Data.Variables)

	doc, err := ir.ParseInterchange(resp.Data.Document)
	require.NoError(t, err)
	var kinds []string
	ir.Walk(doc, func(n *ir.Node, _ ir.Link) bool {
		kinds = append(kinds, n.Type)
		return true
	})
	assert.Contains(t, kinds, "Wait", "wait should be mapped onto the registered Wait")
	assert.NotContains(t, kinds, "wait")
}

func TestImport_Hydration(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "import", "testdata/program.json")
	require.NoError(t, err)

	resp := decodeResponse[ImportResult](t, []byte(stdout))
	assert.Equal(t, []string{"Sparkle"}, resp.Data.Placeholders)
	assert.Equal(t, 0, resp.Data.Hydration.Declared)
	assert.Equal(t, 1, resp.Data.Hydration.Discovered)
	assert.Equal(t, 1, resp.Data.Variables)
}

func TestImport_MalformedDocument(t *testing.T) {
	stdout, _, err := execute(t, "import", "testdata/broken.json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E003]")
}
