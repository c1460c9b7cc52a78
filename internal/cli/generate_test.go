package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blockc/internal/store"
)

func TestGenerate_Stdout(t *testing.T) {
	stdout, _, err := execute(t, "generate", "testdata/program.json")
	require.NoError(t, err)

	golden, err := os.ReadFile(filepath.Join("..", "harness", "testdata", "golden", "score_tick.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(golden), stdout)
}

func TestGenerate_OutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "build", "program.ts")

	stdout, _, err := execute(t, "generate", "testdata/program.json", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Generated")
	assert.Contains(t, stdout, "(1 rules, 0 subroutines, 1 markers)")

	script, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(script), "  // unknown block: Sparkle")
}

func TestGenerate_JSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "generate", "testdata/program.json")
	require.NoError(t, err)

	resp := decodeResponse[GenerateResult](t, []byte(stdout))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Stats.Rules)
	assert.Equal(t, 1, resp.Data.Stats.Markers)
	assert.Equal(t, []string{"Sparkle"}, resp.Data.Placeholders)
	assert.Contains(t, resp.Data.Script, "score = 10;")
	assert.Nil(t, resp.Data.Build)
}

func TestGenerate_RecordsBuild(t *testing.T) {
	db := filepath.Join(t.TempDir(), "builds.db")

	first, _, err := execute(t, "--format", "json", "generate", "testdata/program.json", "--db", db)
	require.NoError(t, err)
	firstResp := decodeResponse[GenerateResult](t, []byte(first))
	require.NotNil(t, firstResp.Data.Build)
	assert.True(t, firstResp.Data.Recorded)
	assert.Equal(t, int64(1), firstResp.Data.Build.Seq)

	second, _, err := execute(t, "--format", "json", "generate", "testdata/program.json", "--db", db)
	require.NoError(t, err)
	secondResp := decodeResponse[GenerateResult](t, []byte(second))
	require.NotNil(t, secondResp.Data.Build)
	assert.False(t, secondResp.Data.Recorded, "unchanged document must not add a build")
	assert.Equal(t, firstResp.Data.Build.ID, secondResp.Data.Build.ID)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	builds, err := st.ListBuilds(t.Context())
	require.NoError(t, err)
	require.Len(t, builds, 1)
	assert.Equal(t, 1, builds[0].Markers)
	require.Len(t, builds[0].Placeholders, 1)
	assert.Equal(t, "Sparkle", builds[0].Placeholders[0].Kind)
}

func TestGenerate_Errors(t *testing.T) {
	dir := t.TempDir()
	unknownKey := writeFile(t, dir, "unknown.yaml", "runtim: game\n")
	badSelections := writeFile(t, dir, "selections.yaml", "selections: missing.txt\n")

	tests := []struct {
		name     string
		args     []string
		exitCode int
		code     string
	}{
		{"missing file", []string{"generate", "testdata/missing.json"}, ExitCommandError, ErrCodeReadFailed},
		{"malformed document", []string{"generate", "testdata/broken.json"}, ExitFailure, ErrCodeParseFailed},
		{"unknown config key", []string{"--config", unknownKey, "generate", "testdata/program.json"}, ExitCommandError, ErrCodeConfigInvalid},
		{"missing config", []string{"--config", filepath.Join(dir, "nope.yaml"), "generate", "testdata/program.json"}, ExitCommandError, ErrCodeConfigInvalid},
		{"broken spec", []string{"generate", "testdata/program.json", "--spec", "testdata/broken.cue"}, ExitCommandError, ErrCodeSpecInvalid},
		{"missing selections", []string{"--config", badSelections, "generate", "testdata/program.json"}, ExitCommandError, ErrCodeSelections},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--format", "json"}, tt.args...)
			stdout, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))

			resp := decodeResponse[any](t, []byte(stdout))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestGenerate_ConfigOptions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "selections.txt", "Teams Team1\nTeams Team2\n")
	cfg := writeFile(t, dir, "blockc.yaml", `import_line: "import * as game from 'game';"
runtime: game
selections: selections.txt
`)

	stdout, _, err := execute(t, "--config", cfg, "generate", "testdata/program.json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "import * as game from 'game';")
	assert.Contains(t, stdout, "await game.Wait(1.5);")
	assert.NotContains(t, stdout, "mod.Wait")
}
