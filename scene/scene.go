// Package scene ties meshes, instances and the acceleration structures
// together: it owns one BLAS per mesh, wraps every instance in a leaf and
// maintains the TLAS built over those leaves.
package scene

import (
	"fmt"
	"time"

	"github.com/mizar-render/mizar/bvh"
	"github.com/mizar-render/mizar/geom"
	"github.com/mizar-render/mizar/log"
	"github.com/mizar-render/mizar/mesh"
	"github.com/mizar-render/mizar/types"
)

// An Instance positions a mesh inside the scene via a local-to-world
// transform.
type Instance struct {
	MeshIndex int32
	Transform types.Mat4
}

// Backend constructs the acceleration structure built over the instance
// leaves. The default builds the two-level TLAS; alternative backends (e.g.
// hardware ray tracing) substitute here behind the same contract.
type Backend func(leaves []*bvh.Leaf) bvh.Intersector

// A Scene owns the meshes, their per-mesh hierarchies, the instance list
// and the top-level structure over all instances. Structural mutations mark
// the scene dirty; Rebuild discards and reconstructs everything from
// scratch. Callers must ensure no traversal is in flight while rebuilding.
type Scene struct {
	logger log.Logger

	meshes    []*mesh.Mesh
	instances []Instance

	backend     Backend
	blas        []*bvh.BLAS
	intersector bvh.Intersector

	dirty bool

	Camera *Camera
}

// Create an empty scene using the TLAS backend.
func New() *Scene {
	return &Scene{
		logger: log.New("scene"),
		backend: func(leaves []*bvh.Leaf) bvh.Intersector {
			return bvh.NewTLAS(leaves)
		},
		dirty:  true,
		Camera: NewCamera(45.0),
	}
}

// Replace the acceleration backend. The scene must be rebuilt afterwards.
func (s *Scene) SetBackend(backend Backend) {
	s.backend = backend
	s.dirty = true
}

// Add a mesh and return its index.
func (s *Scene) AddMesh(m *mesh.Mesh) int32 {
	s.meshes = append(s.meshes, m)
	s.dirty = true
	return int32(len(s.meshes) - 1)
}

// Add an instance of a previously added mesh and return its index.
func (s *Scene) AddInstance(meshIndex int32, transform types.Mat4) (int32, error) {
	if meshIndex < 0 || int(meshIndex) >= len(s.meshes) {
		return -1, ErrUnknownMesh
	}
	s.instances = append(s.instances, Instance{MeshIndex: meshIndex, Transform: transform})
	s.dirty = true
	return int32(len(s.instances) - 1), nil
}

// Get the mesh at index.
func (s *Scene) Mesh(index int32) *mesh.Mesh {
	return s.meshes[index]
}

// Get the number of meshes in the scene.
func (s *Scene) NumMeshes() int {
	return len(s.meshes)
}

// Get the instance at index.
func (s *Scene) Instance(index int32) Instance {
	return s.instances[index]
}

// Get the number of instances in the scene.
func (s *Scene) NumInstances() int {
	return len(s.instances)
}

// Dirty reports whether the scene has structural changes that require a
// Rebuild before the next traversal.
func (s *Scene) Dirty() bool {
	return s.dirty
}

// Rebuild all hierarchies from scratch: one BLAS per mesh, a leaf per
// instance and the top-level structure over the leaves. A no-op when the
// scene is not dirty. Build failures are unrecoverable for this scene
// revision and propagate to the caller.
func (s *Scene) Rebuild() error {
	if !s.dirty && s.intersector != nil {
		return nil
	}
	if len(s.instances) == 0 {
		return ErrNoInstances
	}

	start := time.Now()
	s.logger.Noticef("partitioning geometry (%d meshes, %d instances)", len(s.meshes), len(s.instances))

	s.blas = make([]*bvh.BLAS, len(s.meshes))
	for i, m := range s.meshes {
		s.logger.Infof("building BLAS for %q (%d triangles)", m.Name, m.NumTriangles())
		s.blas[i] = bvh.NewBLAS(m)
		if err := s.blas[i].Build(); err != nil {
			return fmt.Errorf("scene: mesh %q: %w", m.Name, err)
		}
	}

	leaves := make([]*bvh.Leaf, len(s.instances))
	for i, inst := range s.instances {
		leaves[i] = bvh.NewLeaf(s.blas[inst.MeshIndex], inst.Transform, inst.MeshIndex, int32(i))
	}

	s.intersector = s.backend(leaves)
	if err := s.intersector.Build(); err != nil {
		return err
	}

	s.dirty = false
	s.logger.Noticef("partitioned geometry in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Find the nearest intersection along the ray. The scene must have been
// rebuilt since the last structural change; intersecting a never-built
// scene leaves the ray untouched.
func (s *Scene) Intersect(r *geom.Ray) {
	if s.intersector == nil {
		return
	}
	s.intersector.Intersect(r)
}

// Get the world bounds of the scene.
func (s *Scene) AABB() geom.AABB {
	if s.intersector == nil {
		return geom.NewAABB()
	}
	return s.intersector.AABB()
}
