package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validManifest = `
manifest: {
	entry: "eval"
	types: [
		{name: "A"},
		{name: "B"},
		{name: "solvent"},
	]
	constants: {
		eps:   1.5
		sigma: 1.0
	}
}
`

func TestParseValidManifest(t *testing.T) {
	m, err := Parse(validManifest, "test.cue")
	require.NoError(t, err)

	assert.Equal(t, "eval", m.Entry)
	require.Len(t, m.Types, 3)
	assert.Equal(t, ParticleType{Name: "A", Index: 0}, m.Types[0])
	assert.Equal(t, ParticleType{Name: "solvent", Index: 2}, m.Types[2])

	assert.InDelta(t, 1.5, m.Constants["eps"], 1e-6)
	assert.InDelta(t, 1.0, m.Constants["sigma"], 1e-6)
}

func TestTypeIndex(t *testing.T) {
	m, err := Parse(validManifest, "test.cue")
	require.NoError(t, err)

	idx, ok := m.TypeIndex("B")
	require.True(t, ok)
	assert.Equal(t, uint32(1), idx)

	_, ok = m.TypeIndex("missing")
	assert.False(t, ok)
}

func TestEntryDefaults(t *testing.T) {
	m, err := Parse(`manifest: { types: [{name: "A"}] }`, "test.cue")
	require.NoError(t, err)
	assert.Equal(t, DefaultEntry, m.Entry)
	assert.Empty(t, m.Constants)
}

func TestMissingManifestStruct(t *testing.T) {
	_, err := Parse(`other: {}`, "test.cue")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Message, "'manifest' struct is required")
}

func TestSchemaRejectsEmptyTypeName(t *testing.T) {
	_, err := Parse(`manifest: { types: [{name: ""}] }`, "test.cue")
	require.Error(t, err)
}

func TestSchemaRejectsNonNumericConstant(t *testing.T) {
	_, err := Parse(`manifest: { constants: { eps: "big" } }`, "test.cue")
	require.Error(t, err)
}

func TestRejectsDuplicateTypeNames(t *testing.T) {
	src := `manifest: { types: [{name: "A"}, {name: "A"}] }`
	_, err := Parse(src, "test.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate particle type "A"`)
}

func TestRejectsEmptyEntry(t *testing.T) {
	_, err := Parse(`manifest: { entry: "" }`, "test.cue")
	require.Error(t, err)
}

func TestRejectsMalformedCUE(t *testing.T) {
	_, err := Parse(`manifest: {`, "broken.cue")
	require.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lj.cue")
	require.NoError(t, os.WriteFile(path, []byte(validManifest), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, m.Types, 3)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read manifest")
}
