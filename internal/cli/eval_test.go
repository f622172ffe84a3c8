package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mverlet/pairjit/internal/testutil"
)

func TestEvalZeroProgram(t *testing.T) {
	path := writeProgram(t, testutil.ZeroProgram)

	out, err := executeCommand(t, "eval", path, "--pairs", "testdata/pairs.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "pair 0:")
	assert.Contains(t, out, "pair 1:")
	assert.Contains(t, out, "total: 0")
}

func TestEvalLennardJonesJSON(t *testing.T) {
	path := writeProgram(t, testutil.LJProgram)

	out, err := executeCommand(t, "eval", path, "--pairs", "testdata/pairs.yaml", "--output", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "lj", data["module"])

	energies, ok := data["energies"].([]interface{})
	require.True(t, ok)
	require.Len(t, energies, 2)

	// At r = sigma the 12-6 potential crosses zero.
	assert.InDelta(t, 0.0, energies[0].(float64), 1e-6)
	// At r = 1.5 sigma with eps = 1: 4 ((2/3)^12 - (2/3)^6)
	assert.InDelta(t, -0.32034, energies[1].(float64), 1e-4)
}

func TestEvalManifestConstantsChangeResult(t *testing.T) {
	path := writeProgram(t, testutil.LJProgram)
	manifestPath := writeFile(t, "lj.cue", `
manifest: {
	types: [{name: "A"}]
	constants: { eps: 2.0 }
}
`)

	out, err := executeCommand(t, "eval", path,
		"--pairs", "testdata/pairs.yaml",
		"--manifest", manifestPath,
		"--output", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data := resp.Data.(map[string]interface{})
	energies := data["energies"].([]interface{})

	// Doubling eps doubles the well depth.
	assert.InDelta(t, -0.64067, energies[1].(float64), 1e-4)
}

func TestEvalCompileFailure(t *testing.T) {
	path := writeProgram(t, testutil.MissingSymbolProgram)

	_, errOut, err := executeCommandStderr(t, "eval", path, "--pairs", "testdata/pairs.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut, "resolve error")
}

func TestEvalMissingPairsFlag(t *testing.T) {
	path := writeProgram(t, testutil.ZeroProgram)

	_, err := executeCommand(t, "eval", path)
	require.Error(t, err)
}

func TestEvalBadPairsFile(t *testing.T) {
	path := writeProgram(t, testutil.ZeroProgram)
	pairs := writeFile(t, "pairs.yaml", "pairs:\n  - r: [1.0, 2.0]\n")

	_, err := executeCommand(t, "eval", path, "--pairs", pairs)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
