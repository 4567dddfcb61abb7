package scene

import (
	"strings"
	"testing"

	"github.com/mizar-render/mizar/bvh"
	"github.com/mizar-render/mizar/geom"
	"github.com/mizar-render/mizar/mesh"
	"github.com/mizar-render/mizar/types"
)

func cubeMesh(name string, half float32) *mesh.Mesh {
	m := mesh.New(name)
	c := [8]types.Vec3{
		{-half, -half, -half}, {half, -half, -half}, {half, half, -half}, {-half, half, -half},
		{-half, -half, half}, {half, -half, half}, {half, half, half}, {-half, half, half},
	}
	quads := [6][4]int{
		{0, 1, 2, 3},
		{4, 5, 6, 7},
		{0, 1, 5, 4},
		{3, 2, 6, 7},
		{0, 3, 7, 4},
		{1, 2, 6, 5},
	}
	for _, q := range quads {
		m.AddTriangle(mesh.Triangle{Vertices: [3]types.Vec3{c[q[0]], c[q[1]], c[q[2]]}})
		m.AddTriangle(mesh.Triangle{Vertices: [3]types.Vec3{c[q[0]], c[q[2]], c[q[3]]}})
	}
	return m
}

func TestSceneRebuildWithoutInstances(t *testing.T) {
	s := New()
	if err := s.Rebuild(); err != ErrNoInstances {
		t.Fatalf("expected to get ErrNoInstances; got %v", err)
	}
}

func TestSceneAddInstanceUnknownMesh(t *testing.T) {
	s := New()
	if _, err := s.AddInstance(0, types.Ident4()); err != ErrUnknownMesh {
		t.Fatalf("expected to get ErrUnknownMesh; got %v", err)
	}
}

func TestSceneDirtyLifecycle(t *testing.T) {
	s := New()
	if !s.Dirty() {
		t.Fatal("expected a fresh scene to be dirty")
	}

	meshIndex := s.AddMesh(cubeMesh("cube", 0.5))
	if _, err := s.AddInstance(meshIndex, types.Ident4()); err != nil {
		t.Fatal(err)
	}
	if err := s.Rebuild(); err != nil {
		t.Fatal(err)
	}
	if s.Dirty() {
		t.Fatal("expected scene to be clean after Rebuild")
	}

	// Structural mutations mark the scene dirty again
	if _, err := s.AddInstance(meshIndex, types.Translate4(types.Vec3{0, 0, 3})); err != nil {
		t.Fatal(err)
	}
	if !s.Dirty() {
		t.Fatal("expected scene to be dirty after adding an instance")
	}
	if err := s.Rebuild(); err != nil {
		t.Fatal(err)
	}
	if s.Dirty() {
		t.Fatal("expected scene to be clean after the second Rebuild")
	}
}

func TestSceneIntersect(t *testing.T) {
	s := New()
	meshIndex := s.AddMesh(cubeMesh("cube", 0.5))
	s.AddInstance(meshIndex, types.Ident4())
	s.AddInstance(meshIndex, types.Translate4(types.Vec3{0, 0, 3}))
	if err := s.Rebuild(); err != nil {
		t.Fatal(err)
	}

	r := geom.NewRay(types.Vec3{-5, 0.1, 3.2}, types.Vec3{1, 0, 0})
	s.Intersect(r)

	var expDist float32 = 4.5
	if r.Hit.T != expDist {
		t.Fatalf("expected hit distance to be %f; got %f", expDist, r.Hit.T)
	}
	if r.Hit.InstanceID != 1 {
		t.Fatalf("expected hit instance to be 1; got %d", r.Hit.InstanceID)
	}
}

func TestSceneIntersectBeforeBuild(t *testing.T) {
	s := New()

	r := geom.NewRay(types.Vec3{-5, 0, 0}, types.Vec3{1, 0, 0})
	s.Intersect(r)
	if r.Hit.T != geom.Inf32 {
		t.Fatalf("expected intersecting a never-built scene to leave the ray untouched; got t=%f", r.Hit.T)
	}
}

func TestSceneLinearBackend(t *testing.T) {
	s := New()
	s.SetBackend(func(leaves []*bvh.Leaf) bvh.Intersector {
		return bvh.NewLinear(leaves)
	})
	meshIndex := s.AddMesh(cubeMesh("cube", 0.5))
	s.AddInstance(meshIndex, types.Ident4())
	if err := s.Rebuild(); err != nil {
		t.Fatal(err)
	}

	r := geom.NewRay(types.Vec3{-5, 0.1, 0.2}, types.Vec3{1, 0, 0})
	s.Intersect(r)
	var expDist float32 = 4.5
	if r.Hit.T != expDist {
		t.Fatalf("expected hit distance to be %f; got %f", expDist, r.Hit.T)
	}
}

func TestSceneStats(t *testing.T) {
	s := New()
	if !strings.Contains(s.Stats(), "not been built") {
		t.Fatalf("expected stats for an unbuilt scene to say so; got %q", s.Stats())
	}

	meshIndex := s.AddMesh(cubeMesh("unitCube", 0.5))
	s.AddInstance(meshIndex, types.Ident4())
	if err := s.Rebuild(); err != nil {
		t.Fatal(err)
	}

	stats := s.Stats()
	if !strings.Contains(stats, "unitCube") {
		t.Fatalf("expected stats table to reference the mesh name; got:\n%s", stats)
	}
	if !strings.Contains(stats, "12") {
		t.Fatalf("expected stats table to list the triangle count; got:\n%s", stats)
	}
}

func TestCameraPrimaryRays(t *testing.T) {
	c := NewCamera(90)
	c.Position = types.Vec3{0, 0, 5}
	c.LookAt = types.Vec3{0, 0, 0}
	c.SetupFrustum(1)

	// The center pixel looks straight down the view axis
	dir := c.PrimaryRayDir(64, 64, 128, 128)
	expDir := types.Vec3{0, 0, -1}
	if !types.ApproxEqual(dir, expDir, 1e-2) {
		t.Fatalf("expected center ray dir to be %v; got %v", expDir, dir)
	}

	// Pixels left of center bend toward -X, pixels above center toward +Y
	dir = c.PrimaryRayDir(0, 64, 128, 128)
	if dir[0] >= 0 {
		t.Fatalf("expected left edge ray to point toward -X; got %v", dir)
	}
	dir = c.PrimaryRayDir(64, 0, 128, 128)
	if dir[1] <= 0 {
		t.Fatalf("expected top edge ray to point toward +Y; got %v", dir)
	}

	if l := c.PrimaryRayDir(3, 100, 128, 128).Len(); l < 0.999 || l > 1.001 {
		t.Fatalf("expected primary ray dirs to be unit length; got %f", l)
	}
}
