// Package spatial provides the vector, quaternion and camera math used by the
// layout, picking and animation packages. It is a thin layer over gonum's
// spatial/r3 and num/quat packages.
package spatial

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Basis vectors.
var (
	XAxis = r3.Vec{X: 1}
	YAxis = r3.Vec{Y: 1}
	ZAxis = r3.Vec{Z: 1}
)

// Identity is the rotation that leaves every vector unchanged.
func Identity() quat.Number {
	return quat.Number{Real: 1}
}

// Rotate applies the unit quaternion q to v.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	return r3.Rotation(q).Rotate(v)
}

// Inverse returns the inverse of the unit quaternion q.
func Inverse(q quat.Number) quat.Number {
	return quat.Conj(q)
}

// Normalize scales q to unit length. The zero quaternion maps to Identity.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return Identity()
	}
	return quat.Scale(1/n, q)
}

// Yaw returns a rotation of angle radians about the Y axis.
func Yaw(angle float64) quat.Number {
	return quat.Number(r3.NewRotation(angle, YAxis))
}

// Facing returns the rotation that turns +Z onto the direction n, keeping Y
// as the up axis (no roll). A zero direction yields Identity.
func Facing(n r3.Vec) quat.Number {
	if r3.Norm(n) == 0 {
		return Identity()
	}
	n = r3.Unit(n)
	yaw := r3.NewRotation(math.Atan2(n.X, n.Z), YAxis)
	pitch := r3.NewRotation(-math.Asin(clamp(n.Y, -1, 1)), XAxis)
	return Normalize(quat.Mul(quat.Number(yaw), quat.Number(pitch)))
}

// Slerp interpolates along the shortest arc from a to b.
func Slerp(a, b quat.Number, t float64) quat.Number {
	if dot(a, b) < 0 {
		b = quat.Scale(-1, b)
	}
	delta := quat.Mul(quat.Conj(a), b)
	return Normalize(quat.Mul(a, quat.Pow(delta, quat.Number{Real: t})))
}

// Angle returns the angle in radians between two unit rotations.
func Angle(a, b quat.Number) float64 {
	d := math.Abs(dot(Normalize(a), Normalize(b)))
	return 2 * math.Acos(clamp(d, -1, 1))
}

// Lerp linearly interpolates between two vectors.
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// LerpScalar linearly interpolates between two numbers.
func LerpScalar(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

func dot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Transform is a position, rotation and uniform scale.
type Transform struct {
	Position r3.Vec
	Rotation quat.Number
	Scale    float64
}

// ToWorld maps a point from the transform's local frame to its parent frame.
func (t Transform) ToWorld(p r3.Vec) r3.Vec {
	return r3.Add(t.Position, Rotate(t.Rotation, r3.Scale(t.Scale, p)))
}

// ToLocal maps a point from the parent frame into the transform's local frame.
func (t Transform) ToLocal(p r3.Vec) r3.Vec {
	local := Rotate(Inverse(t.Rotation), r3.Sub(p, t.Position))
	if t.Scale == 0 {
		return local
	}
	return r3.Scale(1/t.Scale, local)
}
