// Package bvh implements the two-level bounding volume hierarchy used to
// answer nearest-hit queries against a scene of transformed triangle meshes.
//
// A bottom-level hierarchy (BLAS) partitions the triangles of a single mesh
// using binned SAH splitting. A top-level hierarchy (TLAS) partitions one
// leaf per mesh instance using agglomerative clustering; each leaf maps rays
// between the world frame and its mesh's local frame before delegating to
// the mesh BLAS.
package bvh

import (
	"errors"

	"github.com/mizar-render/mizar/geom"
)

var (
	ErrNoTriangles  = errors.New("bvh: mesh contains no triangles")
	ErrNoLeaves     = errors.New("bvh: no leaves to partition")
	ErrTooManyLeafs = errors.New("bvh: leaf count exceeds packed child index range")
)

// The Intersector interface is the contract shared by all acceleration
// backends. Renderers only depend on this surface, so the two-level
// hierarchy can be swapped for an alternative backend (e.g. hardware ray
// tracing) without touching calling code.
//
// Intersect mutates only the caller-owned ray and is safe to invoke
// concurrently from multiple goroutines once Build has returned. Build must
// never run concurrently with Intersect on the same value.
type Intersector interface {
	// Construct the acceleration structure. Building with an empty
	// triangle/leaf set is a fatal configuration error.
	Build() error

	// Find the nearest intersection along the ray, updating ray.Hit in
	// place. A miss leaves ray.Hit.T at +Inf.
	Intersect(r *geom.Ray)

	// Get the world bounds of the structure.
	AABB() geom.AABB
}
