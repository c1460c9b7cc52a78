package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/blockc/internal/check"
	"github.com/roach88/blockc/internal/ir"
	tu "github.com/roach88/blockc/internal/testutil"
)

func TestValidate_Clean(t *testing.T) {
	path := writeDocument(t, tu.Doc([]*ir.Node{
		tu.Mod(tu.Rule("My Rule", nil, tu.Wait("1"))),
	}))

	stdout, _, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Equal(t, "✓ No issues found\n", stdout)
}

func TestValidate_WarningsOnly(t *testing.T) {
	stdout, _, err := execute(t, "validate", "testdata/program.json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[W201]")
	assert.Contains(t, stdout, "Sparkle")
	assert.Contains(t, stdout, "[W206]")
	assert.Contains(t, stdout, "✓ Valid with 2 warning(s)")
}

func TestValidate_UndefinedCall(t *testing.T) {
	path := writeDocument(t, tu.Doc([]*ir.Node{
		tu.Mod(tu.Rule("Caller", nil, tu.Call("Missing"))),
	}))

	stdout, _, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "[E203]")
	assert.Contains(t, stdout, "✗ 1 error(s), 0 warning(s)")
}

func TestValidate_JSON(t *testing.T) {
	path := writeDocument(t, tu.Doc([]*ir.Node{
		tu.Mod(tu.Rule("Caller", nil, tu.Call("Missing"))),
	}))

	stdout, _, err := execute(t, "--format", "json", "validate", path)
	require.Error(t, err)

	resp := decodeResponse[ValidationResult](t, []byte(stdout))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Issues, 1)
	assert.Equal(t, check.CodeUndefinedSubCall, resp.Data.Issues[0].Code)
	assert.Equal(t, "blocks[0].RULES.ACTIONS", resp.Data.Issues[0].Path)
}

func TestValidate_JSONClean(t *testing.T) {
	path := writeDocument(t, tu.Doc([]*ir.Node{
		tu.Mod(tu.Rule("My Rule", nil, tu.Wait("1"))),
	}))

	stdout, _, err := execute(t, "--format", "json", "validate", path)
	require.NoError(t, err)

	resp := decodeResponse[ValidationResult](t, []byte(stdout))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Empty(t, resp.Data.Issues)
}
