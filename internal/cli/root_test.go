package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mverlet/pairjit/internal/testutil"
)

func TestRootHelp(t *testing.T) {
	out, err := executeCommand(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "pairjit")
	for _, sub := range []string{"compile", "eval", "bench", "disasm", "history"} {
		assert.Contains(t, out, sub)
	}
}

func TestRootRejectsBadOutputFormat(t *testing.T) {
	path := writeProgram(t, testutil.ZeroProgram)

	_, err := executeCommand(t, "compile", path, "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output")
}

func TestRootUnknownCommand(t *testing.T) {
	_, err := executeCommand(t, "transmogrify")
	require.Error(t, err)
}

func TestConfigFileSetsLogDB(t *testing.T) {
	cfgPath := writeFile(t, "pairjit.yaml", "log_db: ''\nlog_level: warn\n")
	path := writeProgram(t, testutil.ZeroProgram)

	out, err := executeCommand(t, "compile", path, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ compiled")
}
