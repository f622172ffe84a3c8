// Package geom provides the float32 vector and quaternion types that define
// the evaluator call signature.
//
// The layout is fixed: Vec3 is {X, Y, Z}, Quat is {W, X, Y, Z} with W the
// scalar part. The simulation host and the IR-producing compiler both depend
// on this layout, so it must not change.
package geom

import "math"

// Vec3 is a 3-component float32 vector.
type Vec3 struct {
	X, Y, Z float32
}

// Quat is a unit quaternion with scalar part W.
type Quat struct {
	W, X, Y, Z float32
}

// Identity is the identity rotation.
var Identity = Quat{W: 1}

// Add returns a + b.
func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns a - b.
func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Scale returns a scaled by s.
func (a Vec3) Scale(s float32) Vec3 {
	return Vec3{a.X * s, a.Y * s, a.Z * s}
}

// Dot returns the dot product of a and b.
func Dot(a, b Vec3) float32 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns the cross product a × b.
func Cross(a, b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Norm returns the Euclidean length of a.
func (a Vec3) Norm() float32 {
	return float32(math.Sqrt(float64(Dot(a, a))))
}

// Normalize returns a unit-length copy of a.
// The zero vector is returned unchanged.
func (a Vec3) Normalize() Vec3 {
	n := a.Norm()
	if n == 0 {
		return a
	}
	return a.Scale(1 / n)
}

// QMul returns the Hamilton product a * b.
func QMul(a, b Quat) Quat {
	return Quat{
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
	}
}

// Conj returns the conjugate of q.
func (q Quat) Conj() Quat {
	return Quat{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// Rotate rotates v by the unit quaternion q.
//
// Uses the expanded form v' = v + 2w(u × v) + 2(u × (u × v)) with u the
// vector part of q, which avoids constructing intermediate quaternions.
func Rotate(q Quat, v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := Cross(u, v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(Cross(u, t))
}
