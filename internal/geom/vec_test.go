package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-6

func TestDot(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, -5, 6}
	assert.InDelta(t, 12.0, Dot(a, b), epsilon)
}

func TestCrossOrthogonal(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	z := Cross(x, y)
	assert.InDelta(t, 0.0, z.X, epsilon)
	assert.InDelta(t, 0.0, z.Y, epsilon)
	assert.InDelta(t, 1.0, z.Z, epsilon)
}

func TestCrossAnticommutes(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{-2, 0.5, 4}
	ab := Cross(a, b)
	ba := Cross(b, a)
	assert.InDelta(t, ab.X, -ba.X, epsilon)
	assert.InDelta(t, ab.Y, -ba.Y, epsilon)
	assert.InDelta(t, ab.Z, -ba.Z, epsilon)
}

func TestNorm(t *testing.T) {
	assert.InDelta(t, 5.0, Vec3{3, 4, 0}.Norm(), epsilon)
}

func TestNormalize(t *testing.T) {
	v := Vec3{3, 4, 0}.Normalize()
	assert.InDelta(t, 1.0, v.Norm(), epsilon)
	assert.InDelta(t, 0.6, v.X, epsilon)
	assert.InDelta(t, 0.8, v.Y, epsilon)
}

func TestNormalizeZeroVector(t *testing.T) {
	v := Vec3{}.Normalize()
	assert.Equal(t, Vec3{}, v)
}

func TestQMulIdentity(t *testing.T) {
	q := Quat{W: 0.5, X: 0.5, Y: 0.5, Z: 0.5}
	assert.Equal(t, q, QMul(Identity, q))
	assert.Equal(t, q, QMul(q, Identity))
}

func TestQMulConjGivesIdentity(t *testing.T) {
	q := Quat{W: 0.5, X: 0.5, Y: 0.5, Z: 0.5} // unit quaternion
	p := QMul(q, q.Conj())
	assert.InDelta(t, 1.0, p.W, epsilon)
	assert.InDelta(t, 0.0, p.X, epsilon)
	assert.InDelta(t, 0.0, p.Y, epsilon)
	assert.InDelta(t, 0.0, p.Z, epsilon)
}

func TestRotateIdentity(t *testing.T) {
	v := Vec3{1, 2, 3}
	assert.Equal(t, v, Rotate(Identity, v))
}

func TestRotate90AboutZ(t *testing.T) {
	// 90 degrees about z: (1,0,0) -> (0,1,0)
	s := float32(math.Sqrt2 / 2)
	q := Quat{W: s, Z: s}
	v := Rotate(q, Vec3{1, 0, 0})
	assert.InDelta(t, 0.0, v.X, 1e-5)
	assert.InDelta(t, 1.0, v.Y, 1e-5)
	assert.InDelta(t, 0.0, v.Z, 1e-5)
}

func TestRotatePreservesLength(t *testing.T) {
	s := float32(math.Sqrt2 / 2)
	q := Quat{W: s, X: s}
	v := Vec3{1, 2, 3}
	require.InDelta(t, float64(v.Norm()), float64(Rotate(q, v).Norm()), 1e-5)
}
