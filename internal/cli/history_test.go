package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_ListsBuilds(t *testing.T) {
	db := filepath.Join(t.TempDir(), "builds.db")
	_, _, err := execute(t, "generate", "testdata/program.json", "--db", db)
	require.NoError(t, err)
	_, _, err = execute(t, "generate", "testdata/legacy.json", "--db", db)
	require.NoError(t, err)

	stdout, _, err := execute(t, "--format", "json", "history", "--db", db)
	require.NoError(t, err)

	resp := decodeResponse[HistoryResult](t, []byte(stdout))
	require.Len(t, resp.Data.Builds, 2)
	assert.Equal(t, int64(1), resp.Data.Builds[0].Seq)
	assert.Equal(t, int64(2), resp.Data.Builds[1].Seq)
	assert.Equal(t, 1, resp.Data.Builds[0].Markers)
	assert.Equal(t, 0, resp.Data.Builds[1].Markers)

	text, _, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, text, "SEQ")
	assert.Contains(t, text, resp.Data.Builds[1].ID[:16])
}

func TestHistory_LatestForDocument(t *testing.T) {
	db := filepath.Join(t.TempDir(), "builds.db")
	_, _, err := execute(t, "generate", "testdata/program.json", "--db", db)
	require.NoError(t, err)
	_, _, err = execute(t, "generate", "testdata/legacy.json", "--db", db)
	require.NoError(t, err)

	stdout, _, err := execute(t, "--format", "json", "history", "--db", db, "testdata/legacy.json")
	require.NoError(t, err)
	resp := decodeResponse[HistoryResult](t, []byte(stdout))
	require.Len(t, resp.Data.Builds, 1)
	assert.Equal(t, int64(2), resp.Data.Builds[0].Seq)

	// Same program in the wrapped canonical form is a different document.
	exported := filepath.Join(t.TempDir(), "shared.json")
	_, _, err = execute(t, "export", "testdata/legacy.json", "-o", exported)
	require.NoError(t, err)
	stdout, _, err = execute(t, "history", "--db", db, exported)
	require.NoError(t, err)
	assert.Equal(t, "No builds recorded.\n", stdout)
}

func TestHistory_Errors(t *testing.T) {
	_, _, err := execute(t, "history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	stdout, _, err := execute(t, "--format", "json", "history", "--db", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	resp := decodeResponse[any](t, []byte(stdout))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeDatabase, resp.Error.Code)
}
