package spatial

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is a perspective camera looking down its local -Z axis.
type Camera struct {
	Position r3.Vec
	Rotation quat.Number
	FOV      float64 // vertical field of view in degrees
	Aspect   float64 // viewport width / height
}

// NewCamera returns a camera at position looking at the origin.
func NewCamera(position r3.Vec, fov, aspect float64) Camera {
	c := Camera{Position: position, Rotation: Identity(), FOV: fov, Aspect: aspect}
	c.LookAt(r3.Vec{})
	return c
}

// LookAt turns the camera towards target, keeping Y up.
func (c *Camera) LookAt(target r3.Vec) {
	d := r3.Sub(target, c.Position)
	if r3.Norm(d) == 0 {
		return
	}
	// Facing turns +Z, the camera looks down -Z.
	c.Rotation = Facing(r3.Scale(-1, d))
}

// Forward returns the unit direction the camera is looking in.
func (c Camera) Forward() r3.Vec {
	return Rotate(c.Rotation, r3.Vec{Z: -1})
}

func (c Camera) tanHalfFOV() float64 {
	return math.Tan(c.FOV * math.Pi / 360)
}

func (c Camera) aspect() float64 {
	if c.Aspect <= 0 {
		return 1
	}
	return c.Aspect
}

// Ray returns the ray from the camera through a viewport point given in
// normalized device coordinates, both axes in [-1, 1] with +Y up.
func (c Camera) Ray(ndcX, ndcY float64) Ray {
	t := c.tanHalfFOV()
	dir := r3.Vec{X: ndcX * t * c.aspect(), Y: ndcY * t, Z: -1}
	return Ray{Origin: c.Position, Dir: r3.Unit(Rotate(c.Rotation, dir))}
}

// Project maps a world point to normalized device coordinates. ok is false
// when the point is behind the camera. depth is the distance along the view axis.
func (c Camera) Project(p r3.Vec) (ndcX, ndcY, depth float64, ok bool) {
	local := Rotate(Inverse(c.Rotation), r3.Sub(p, c.Position))
	depth = -local.Z
	if depth <= 0 {
		return 0, 0, depth, false
	}
	t := c.tanHalfFOV()
	return local.X / (depth * t * c.aspect()), local.Y / (depth * t), depth, true
}

// Ray is a half-line with a unit direction.
type Ray struct {
	Origin r3.Vec
	Dir    r3.Vec
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Dir))
}

// IntersectQuad intersects the ray with a double-sided rectangle lying in the
// local XY plane of the given center and rotation, with the given half extents.
// It returns the distance along the ray to the hit.
func (r Ray) IntersectQuad(center r3.Vec, rotation quat.Number, halfWidth, halfHeight float64) (float64, bool) {
	if halfWidth <= 0 || halfHeight <= 0 {
		return 0, false
	}

	normal := Rotate(rotation, ZAxis)
	denom := r3.Dot(r.Dir, normal)
	if math.Abs(denom) < 1e-12 {
		return 0, false
	}

	t := r3.Dot(r3.Sub(center, r.Origin), normal) / denom
	if t <= 0 {
		return 0, false
	}

	local := Rotate(Inverse(rotation), r3.Sub(r.At(t), center))
	if math.Abs(local.X) > halfWidth || math.Abs(local.Y) > halfHeight {
		return 0, false
	}
	return t, true
}
