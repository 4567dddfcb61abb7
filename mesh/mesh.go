// Package mesh implements the triangle mesh collaborator consumed by the
// bounding volume hierarchies.
package mesh

import (
	"github.com/mizar-render/mizar/geom"
	"github.com/mizar-render/mizar/types"
)

// Intersections closer than this along the ray are rejected so a ray leaving
// a surface does not immediately re-hit the triangle it left.
const intersectEpsilon = 1e-7

// A triangle primitive. The centroid and bounds are computed once when the
// triangle is appended to a mesh.
type Triangle struct {
	Vertices      [3]types.Vec3
	Normals       [3]types.Vec3
	UVs           [3]types.Vec2
	MaterialIndex int32

	centroid types.Vec3
	bounds   geom.AABB
}

// Get the triangle AABB.
func (tri *Triangle) Bounds() geom.AABB {
	return tri.bounds
}

// A mesh is a flat list of triangles.
type Mesh struct {
	Name      string
	triangles []Triangle
	bounds    geom.AABB
}

// Create a new named mesh.
func New(name string) *Mesh {
	return &Mesh{
		Name:   name,
		bounds: geom.NewAABB(),
	}
}

// Append a triangle to the mesh.
func (m *Mesh) AddTriangle(tri Triangle) {
	tri.centroid = tri.Vertices[0].Add(tri.Vertices[1]).Add(tri.Vertices[2]).Mul(1.0 / 3.0)
	tri.bounds = geom.NewAABB()
	tri.bounds.Grow(tri.Vertices[0])
	tri.bounds.Grow(tri.Vertices[1])
	tri.bounds.Grow(tri.Vertices[2])

	m.triangles = append(m.triangles, tri)
	m.bounds.GrowAABB(tri.bounds)
}

// Get the triangle at index.
func (m *Mesh) Triangle(index int) *Triangle {
	return &m.triangles[index]
}

// Get the number of triangles in the mesh.
func (m *Mesh) NumTriangles() int {
	return len(m.triangles)
}

// Get the vertex positions for triangle index.
func (m *Mesh) TriangleVertices(index int) [3]types.Vec3 {
	return m.triangles[index].Vertices
}

// Get the centroid for triangle index.
func (m *Mesh) Centroid(index int) types.Vec3 {
	return m.triangles[index].centroid
}

// Get the mesh AABB in mesh-local space.
func (m *Mesh) Bounds() geom.AABB {
	return m.bounds
}

// Test the ray against triangle index using the Moller-Trumbore algorithm.
// The hit record is updated in place only when the intersection is strictly
// closer than the current best distance.
func (m *Mesh) IntersectTriangle(r *geom.Ray, index int) {
	tri := &m.triangles[index]

	edge1 := tri.Vertices[1].Sub(tri.Vertices[0])
	edge2 := tri.Vertices[2].Sub(tri.Vertices[0])

	h := r.Dir.Cross(edge2)
	det := edge1.Dot(h)

	// Ray parallel to the triangle plane.
	if det > -intersectEpsilon && det < intersectEpsilon {
		return
	}

	invDet := 1.0 / det
	s := r.Origin.Sub(tri.Vertices[0])
	u := invDet * s.Dot(h)
	if u < 0 || u > 1 {
		return
	}

	q := s.Cross(edge1)
	v := invDet * r.Dir.Dot(q)
	if v < 0 || u+v > 1 {
		return
	}

	t := invDet * edge2.Dot(q)
	if t < intersectEpsilon || t >= r.Hit.T {
		return
	}

	r.Hit.T = t
	r.Hit.U = u
	r.Hit.V = v
	r.Hit.Triangle = int32(index)
	r.Hit.Material = tri.MaterialIndex
	r.Hit.Mesh = m
}
