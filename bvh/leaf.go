package bvh

import (
	"github.com/mizar-render/mizar/geom"
	"github.com/mizar-render/mizar/types"
)

// A Leaf adapts one mesh instance for the top-level hierarchy. It holds a
// non-owning pointer to the instance's mesh BLAS together with the frame
// transforms between world space and the mesh's local space. The inverse
// transform and the world-space bounds are computed once at construction;
// changing an instance transform requires discarding the leaf and rebuilding
// the TLAS.
type Leaf struct {
	blas *BLAS

	localToWorld types.Mat4
	worldToLocal types.Mat4

	bounds geom.AABB

	meshID     int32
	instanceID int32
}

// Create a leaf wrapping blas positioned by the local-to-world transform.
func NewLeaf(blas *BLAS, localToWorld types.Mat4, meshID, instanceID int32) *Leaf {
	return &Leaf{
		blas:         blas,
		localToWorld: localToWorld,
		worldToLocal: localToWorld.Inv(),
		bounds:       blas.AABB().Transformed(localToWorld),
		meshID:       meshID,
		instanceID:   instanceID,
	}
}

// Get the leaf bounds in world space.
func (l *Leaf) Bounds() geom.AABB {
	return l.bounds
}

// Get the mesh identifier stamped into hit records.
func (l *Leaf) MeshID() int32 {
	return l.meshID
}

// Get the instance identifier stamped into hit records.
func (l *Leaf) InstanceID() int32 {
	return l.instanceID
}

// Intersect maps the world-space ray into the mesh's local frame, traverses
// the BLAS there and maps any improvement back.
//
// The local direction is renormalized, so ray parameters change scale by
// the length of the transformed direction (the contraction). Scaling the
// incoming best distance by the contraction keeps the pruning threshold
// valid inside the local frame; dividing by it on the way out restores
// world units.
func (l *Leaf) Intersect(r *geom.Ray) {
	origin := l.worldToLocal.Mul4x1(r.Origin.Vec4(1)).Vec3()
	dir := l.worldToLocal.Mul4x1(r.Dir.Vec4(0)).Vec3()
	contraction := dir.Len()

	var local geom.Ray
	local.Reset(origin, dir.Mul(1/contraction))
	threshold := contraction * r.Hit.T
	local.Hit.T = threshold

	l.blas.Intersect(&local)

	if local.Hit.T < threshold {
		r.Hit = local.Hit
		r.Hit.T = local.Hit.T / contraction
		r.Hit.MeshID = l.meshID
		r.Hit.InstanceID = l.instanceID
	}
}
