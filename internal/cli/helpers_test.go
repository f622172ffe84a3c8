package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// executeCommand runs the full CLI with the given args and returns the
// captured stdout. Diagnostics land on stderr; use executeCommandStderr
// when a test asserts on them.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeCommandStderr(t, args...)
	return out, err
}

// executeCommandStderr runs the full CLI and returns stdout and stderr
// separately.
func executeCommandStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// writeProgram writes IR source to a temp file and returns its path.
func writeProgram(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "program.ir")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

// writeFile writes arbitrary content to a named temp file.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
