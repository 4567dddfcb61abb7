package geom

import (
	"github.com/mizar-render/mizar/types"
)

// The Mesh interface is the handle stored in hit records and consumed by the
// bottom-level hierarchy. It exposes just enough of a triangle mesh for
// partitioning and traversal; the concrete implementation lives with the
// mesh collaborator.
type Mesh interface {
	// Get the number of triangles in the mesh.
	NumTriangles() int

	// Get the vertex positions for triangle index.
	TriangleVertices(index int) [3]types.Vec3

	// Get the centroid for triangle index.
	Centroid(index int) types.Vec3

	// Test the ray against triangle index, updating ray.Hit in place when a
	// strictly closer intersection is found.
	IntersectTriangle(r *Ray, index int)
}

// A hit record. T is initialized to Inf32 and only ever decreases while a
// ray traverses a hierarchy; all remaining fields are valid only when T is
// finite.
type Hit struct {
	// Distance along the (unit length) ray direction.
	T float32

	// Barycentric weights for the intersected triangle.
	U, V float32

	// Index of the intersected triangle within its mesh.
	Triangle int32

	// Material index carried by the intersected triangle.
	Material int32

	// Identifiers of the mesh and instance whose leaf produced the hit.
	MeshID     int32
	InstanceID int32

	// The mesh that owns the intersected triangle.
	Mesh Mesh
}

// A ray in the frame of the hierarchy it currently traverses. The reciprocal
// direction is computed once at construction for the AABB slab tests.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3

	rcpDir types.Vec3

	Hit Hit
}

// Create a ray with the given origin and direction. The direction is
// expected to be unit length so that Hit.T measures world distance. The hit
// record starts out as a miss (T = Inf32).
func NewRay(origin, dir types.Vec3) *Ray {
	r := &Ray{}
	r.Reset(origin, dir)
	return r
}

// Re-initialize the ray in place, clearing the hit record. This allows ray
// values to be reused across many casts without reallocating.
func (r *Ray) Reset(origin, dir types.Vec3) {
	r.Origin = origin
	r.Dir = dir
	// IEEE division yields +/-Inf for zero direction components which makes
	// the slab test handle axis-parallel rays without branching.
	r.rcpDir = types.Vec3{1 / dir[0], 1 / dir[1], 1 / dir[2]}
	r.Hit = Hit{T: Inf32, Triangle: -1, Material: -1, MeshID: -1, InstanceID: -1}
}
