package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mverlet/pairjit/internal/store"
	"github.com/mverlet/pairjit/internal/testutil"
)

func TestCompileValidProgram(t *testing.T) {
	path := writeProgram(t, testutil.LJProgram)

	out, err := executeCommand(t, "compile", path)
	require.NoError(t, err)

	assert.Contains(t, out, `✓ compiled module "lj"`)
	assert.Contains(t, out, "hash: ")
}

func TestCompileValidProgramJSON(t *testing.T) {
	path := writeProgram(t, testutil.ZeroProgram)

	out, err := executeCommand(t, "compile", path, "--output", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "zero", data["module"])
	assert.Equal(t, float64(1), data["functions"])
}

func TestCompileParseFailure(t *testing.T) {
	path := writeProgram(t, testutil.SyntaxErrorProgram)

	out, errOut, err := executeCommandStderr(t, "compile", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut, "parse error")
	assert.Empty(t, out)
}

func TestCompileVerifyFailure(t *testing.T) {
	path := writeProgram(t, testutil.TypeErrorProgram)

	out, err := executeCommand(t, "compile", path, "--output", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "verify", resp.Error.Kind)
}

func TestCompileMissingFile(t *testing.T) {
	_, err := executeCommand(t, "compile", filepath.Join(t.TempDir(), "nope.ir"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompileRecordsAuditLog(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "compile.db")
	good := writeProgram(t, testutil.LJProgram)
	bad := writeProgram(t, testutil.MissingSymbolProgram)

	_, err := executeCommand(t, "compile", good, "--log-db", dbPath)
	require.NoError(t, err)

	_, err = executeCommand(t, "compile", bad, "--log-db", dbPath)
	require.Error(t, err)

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	records, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, store.StatusResolveError, records[0].Status)
	assert.Equal(t, "renamed", records[0].ModuleName)
	assert.NotEmpty(t, records[0].Diagnostic)

	assert.Equal(t, store.StatusOK, records[1].Status)
	assert.Equal(t, "lj", records[1].ModuleName)
	assert.Empty(t, records[1].Diagnostic)
	assert.Equal(t, 1, records[1].FuncCount)
}

func TestCompileWithManifestConstants(t *testing.T) {
	path := writeProgram(t, testutil.LJProgram)
	manifestPath := writeFile(t, "lj.cue", `
manifest: {
	types: [{name: "A"}]
	constants: { eps: 2.0, sigma: 1.0 }
}
`)

	out, err := executeCommand(t, "compile", path, "--manifest", manifestPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ compiled")
}

func TestCompileBadManifestConstant(t *testing.T) {
	path := writeProgram(t, testutil.LJProgram)
	manifestPath := writeFile(t, "lj.cue", `
manifest: {
	constants: { missing: 2.0 }
}
`)

	_, errOut, err := executeCommandStderr(t, "compile", path, "--manifest", manifestPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut, "R100")
}
