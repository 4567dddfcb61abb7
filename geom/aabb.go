// Package geom provides the geometric primitives shared by the two-level
// bounding volume hierarchy: axis-aligned bounding boxes, rays with their
// mutable hit records and the mesh handle consumed during traversal.
package geom

import (
	"math"

	"github.com/mizar-render/mizar/types"
)

// Inf32 is the float32 positive infinity. A Hit.T equal to Inf32 means the
// ray has not intersected anything yet.
var Inf32 = float32(math.Inf(1))

// An axis-aligned bounding box. A box that has never been grown keeps its
// min corner at +MaxFloat32 and represents the empty set; GrowAABB skips
// such boxes so they never poison a merge.
type AABB struct {
	Min types.Vec3
	Max types.Vec3
}

// Create an empty AABB.
func NewAABB() AABB {
	return AABB{
		Min: types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// Extend the box so it contains point p.
func (b *AABB) Grow(p types.Vec3) {
	b.Min = types.MinVec3(b.Min, p)
	b.Max = types.MaxVec3(b.Max, p)
}

// Extend the box so it contains other. Growing by an empty box is a no-op.
func (b *AABB) GrowAABB(other AABB) {
	if other.Min[0] == math.MaxFloat32 {
		return
	}
	b.Grow(other.Min)
	b.Grow(other.Max)
}

// Get the half surface area of the box: ex*ey + ey*ez + ez*ex. All SAH and
// clustering cost comparisons use this same scale, so only the relative
// ordering of the returned values matters.
func (b AABB) Area() float32 {
	e := b.Max.Sub(b.Min)
	return e[0]*e[1] + e[1]*e[2] + e[2]*e[0]
}

// Get the box extent along each axis.
func (b AABB) Extent() types.Vec3 {
	return b.Max.Sub(b.Min)
}

// Get the box center.
func (b AABB) Center() types.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Perform a slab test against the ray and return the entry distance. Inf32
// is returned when the box is missed, lies fully behind the ray origin, or
// cannot contain a hit closer than the ray's current best distance.
func (b AABB) Intersect(r *Ray) float32 {
	tx1 := (b.Min[0] - r.Origin[0]) * r.rcpDir[0]
	tx2 := (b.Max[0] - r.Origin[0]) * r.rcpDir[0]
	tmin := min32(tx1, tx2)
	tmax := max32(tx1, tx2)

	ty1 := (b.Min[1] - r.Origin[1]) * r.rcpDir[1]
	ty2 := (b.Max[1] - r.Origin[1]) * r.rcpDir[1]
	tmin = max32(tmin, min32(ty1, ty2))
	tmax = min32(tmax, max32(ty1, ty2))

	tz1 := (b.Min[2] - r.Origin[2]) * r.rcpDir[2]
	tz2 := (b.Max[2] - r.Origin[2]) * r.rcpDir[2]
	tmin = max32(tmin, min32(tz1, tz2))
	tmax = min32(tmax, max32(tz1, tz2))

	if tmax >= tmin && tmin < r.Hit.T && tmax > 0 {
		return tmin
	}
	return Inf32
}

// Enumerate the 8 box corners.
func (b AABB) Corners() [8]types.Vec3 {
	return [8]types.Vec3{
		{b.Min[0], b.Min[1], b.Min[2]},
		{b.Max[0], b.Min[1], b.Min[2]},
		{b.Min[0], b.Max[1], b.Min[2]},
		{b.Max[0], b.Max[1], b.Min[2]},
		{b.Min[0], b.Min[1], b.Max[2]},
		{b.Max[0], b.Min[1], b.Max[2]},
		{b.Min[0], b.Max[1], b.Max[2]},
		{b.Max[0], b.Max[1], b.Max[2]},
	}
}

// Map the box through an affine transform by pushing all 8 corners through
// the matrix and growing a fresh box. The result is a conservative bound of
// the transformed volume, not a tight one.
func (b AABB) Transformed(m types.Mat4) AABB {
	out := NewAABB()
	for _, corner := range b.Corners() {
		out.Grow(m.Mul4x1(corner.Vec4(1)).Vec3())
	}
	return out
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
