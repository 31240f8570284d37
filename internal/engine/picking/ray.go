// Package picking provides ray casting against a model's pickable surfaces.
package picking

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray represents a ray in world space with origin and normalized direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// controllerForward is the controller-local aiming axis. XR controllers
// point down their negative Z axis.
var controllerForward = mgl32.Vec3{0, 0, -1}

// FromPose builds a pick ray from a controller world pose, aiming along
// the controller's forward axis.
func FromPose(position mgl32.Vec3, orientation mgl32.Quat) Ray {
	dir := orientation.Rotate(controllerForward)
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1 / l)
	}
	return Ray{Origin: position, Direction: dir}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

const triangleEpsilon = 1e-7

// IntersectTriangle tests the ray against a triangle (Moller-Trumbore,
// two-sided). Returns the distance along the ray and whether it hit in
// front of the origin.
func (r Ray) IntersectTriangle(a, b, c mgl32.Vec3) (t float32, hit bool) {
	edge1 := b.Sub(a)
	edge2 := c.Sub(a)

	pvec := r.Direction.Cross(edge2)
	det := edge1.Dot(pvec)
	if det > -triangleEpsilon && det < triangleEpsilon {
		return 0, false // ray parallel to triangle plane
	}
	invDet := 1 / det

	tvec := r.Origin.Sub(a)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	qvec := tvec.Cross(edge1)
	v := r.Direction.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = edge2.Dot(qvec) * invDet
	if t <= triangleEpsilon {
		return 0, false // intersection behind or at the origin
	}
	return t, true
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Extend grows the box to include a point.
func (box *AABB) Extend(p mgl32.Vec3) {
	for axis := 0; axis < 3; axis++ {
		if p[axis] < box.Min[axis] {
			box.Min[axis] = p[axis]
		}
		if p[axis] > box.Max[axis] {
			box.Max[axis] = p[axis]
		}
	}
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box
// using the slab method. Returns the entry distance (or the exit distance
// when the origin is inside the box) and whether intersection occurred.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		if r.Direction[axis] != 0 {
			t1 := (box.Min[axis] - r.Origin[axis]) / r.Direction[axis]
			t2 := (box.Max[axis] - r.Origin[axis]) / r.Direction[axis]
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			if t1 > tmin {
				tmin = t1
			}
			if t2 < tmax {
				tmax = t2
			}
		} else if r.Origin[axis] < box.Min[axis] || r.Origin[axis] > box.Max[axis] {
			return 0, false
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
