package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mverlet/pairjit/internal/geom"
)

func TestLoadPairsFixture(t *testing.T) {
	samples, err := LoadPairs("testdata/pairs.yaml")
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, geom.Vec3{X: 1}, samples[0].R)
	assert.Equal(t, uint32(0), samples[0].TypeI)
	// Omitted orientations default to identity.
	assert.Equal(t, geom.Identity, samples[0].QI)
	assert.Equal(t, geom.Identity, samples[0].QJ)

	assert.Equal(t, geom.Vec3{Y: 1.5}, samples[1].R)
	assert.Equal(t, uint32(1), samples[1].TypeJ)
	assert.Equal(t, geom.Identity, samples[1].QI)
}

func TestLoadPairsBadVector(t *testing.T) {
	path := writeFile(t, "pairs.yaml", "pairs:\n  - r: [1.0]\n")

	_, err := LoadPairs(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "r must have 3 components")
}

func TestLoadPairsBadQuaternion(t *testing.T) {
	path := writeFile(t, "pairs.yaml", "pairs:\n  - r: [1.0, 0.0, 0.0]\n    q_i: [1.0, 0.0]\n")

	_, err := LoadPairs(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "q_i must have 4 components")
}

func TestLoadPairsEmptyFile(t *testing.T) {
	path := writeFile(t, "pairs.yaml", "pairs: []\n")

	_, err := LoadPairs(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pairs found")
}

func TestLoadPairsMissingFile(t *testing.T) {
	_, err := LoadPairs("testdata/does-not-exist.yaml")
	require.Error(t, err)
}

func TestLoadPairsMalformedYAML(t *testing.T) {
	path := writeFile(t, "pairs.yaml", "pairs: [unclosed\n")

	_, err := LoadPairs(path)
	require.Error(t, err)
}
