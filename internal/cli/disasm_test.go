package cli

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mverlet/pairjit/internal/testutil"
)

func TestDisasmGolden(t *testing.T) {
	out, err := executeCommand(t, "disasm", "testdata/lj.ir")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "disasm_lj", []byte(out))
}

func TestDisasmRoundTrip(t *testing.T) {
	out, err := executeCommand(t, "disasm", "testdata/lj.ir")
	require.NoError(t, err)

	// The canonical listing must disasm to itself.
	path := writeProgram(t, out)
	again, err := executeCommand(t, "disasm", path)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestDisasmJSON(t *testing.T) {
	out, err := executeCommand(t, "disasm", "testdata/lj.ir", "--output", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "lj", data["module"])
	assert.Contains(t, data["listing"].(string), "func @eval")
}

func TestDisasmParseFailure(t *testing.T) {
	path := writeProgram(t, testutil.SyntaxErrorProgram)

	out, errOut, err := executeCommandStderr(t, "disasm", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut, "parse error")
	assert.Empty(t, out)
}
