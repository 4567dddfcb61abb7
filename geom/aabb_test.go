package geom

import (
	"testing"

	"github.com/mizar-render/mizar/types"
)

func TestAABBGrow(t *testing.T) {
	b := NewAABB()
	b.Grow(types.Vec3{1, -1, 2})
	b.Grow(types.Vec3{-1, 3, 0})

	expMin := types.Vec3{-1, -1, 0}
	expMax := types.Vec3{1, 3, 2}
	if b.Min != expMin || b.Max != expMax {
		t.Fatalf("expected bounds to be [%v, %v]; got [%v, %v]", expMin, expMax, b.Min, b.Max)
	}
}

func TestAABBGrowEmpty(t *testing.T) {
	b := NewAABB()
	b.Grow(types.Vec3{1, 1, 1})

	before := b
	b.GrowAABB(NewAABB())
	if b != before {
		t.Fatalf("expected growing by an empty box to be a no-op; got [%v, %v]", b.Min, b.Max)
	}
}

func TestAABBArea(t *testing.T) {
	b := NewAABB()
	b.Grow(types.Vec3{0, 0, 0})
	b.Grow(types.Vec3{1, 2, 3})

	// ex*ey + ey*ez + ez*ex = 2 + 6 + 3
	var expArea float32 = 11
	if area := b.Area(); area != expArea {
		t.Fatalf("expected area to be %f; got %f", expArea, area)
	}
}

func TestAABBIntersect(t *testing.T) {
	b := NewAABB()
	b.Grow(types.Vec3{-1, -1, -1})
	b.Grow(types.Vec3{1, 1, 1})

	r := NewRay(types.Vec3{-5, 0, 0}, types.Vec3{1, 0, 0})
	var expDist float32 = 4
	if dist := b.Intersect(r); dist != expDist {
		t.Fatalf("expected entry distance to be %f; got %f", expDist, dist)
	}

	// Ray origin inside the box: tmin is negative but the box still counts
	r.Reset(types.Vec3{0, 0, 0}, types.Vec3{1, 0, 0})
	if dist := b.Intersect(r); dist == Inf32 {
		t.Fatal("expected ray starting inside the box to intersect it")
	}

	// Box behind the ray
	r.Reset(types.Vec3{5, 0, 0}, types.Vec3{1, 0, 0})
	if dist := b.Intersect(r); dist != Inf32 {
		t.Fatalf("expected box behind the ray to be missed; got %f", dist)
	}

	// Miss
	r.Reset(types.Vec3{-5, 3, 0}, types.Vec3{1, 0, 0})
	if dist := b.Intersect(r); dist != Inf32 {
		t.Fatalf("expected ray to miss the box; got %f", dist)
	}
}

func TestAABBIntersectAxisParallelRay(t *testing.T) {
	b := NewAABB()
	b.Grow(types.Vec3{-1, -1, -1})
	b.Grow(types.Vec3{1, 1, 1})

	// Zero direction components produce +/-Inf reciprocals; the slab test
	// must still resolve containment along those axes.
	r := NewRay(types.Vec3{0, 0, -5}, types.Vec3{0, 0, 1})
	var expDist float32 = 4
	if dist := b.Intersect(r); dist != expDist {
		t.Fatalf("expected entry distance to be %f; got %f", expDist, dist)
	}
}

func TestAABBIntersectPrunedByBestHit(t *testing.T) {
	b := NewAABB()
	b.Grow(types.Vec3{-1, -1, -1})
	b.Grow(types.Vec3{1, 1, 1})

	r := NewRay(types.Vec3{-5, 0, 0}, types.Vec3{1, 0, 0})
	r.Hit.T = 2
	if dist := b.Intersect(r); dist != Inf32 {
		t.Fatalf("expected box farther than the best hit to be pruned; got %f", dist)
	}
}

func TestAABBTransformed(t *testing.T) {
	b := NewAABB()
	b.Grow(types.Vec3{-1, -1, -1})
	b.Grow(types.Vec3{1, 1, 1})

	out := b.Transformed(types.Translate4(types.Vec3{5, 0, 0}).Mul4(types.Scale4(types.Vec3{2, 2, 2})))
	expMin := types.Vec3{3, -2, -2}
	expMax := types.Vec3{7, 2, 2}
	if !types.ApproxEqual(out.Min, expMin, 1e-5) || !types.ApproxEqual(out.Max, expMax, 1e-5) {
		t.Fatalf("expected transformed bounds to be [%v, %v]; got [%v, %v]", expMin, expMax, out.Min, out.Max)
	}
}

func TestRayReset(t *testing.T) {
	var r Ray
	r.Reset(types.Vec3{1, 2, 3}, types.Vec3{0, 1, 0})

	if r.Hit.T != Inf32 {
		t.Fatalf("expected fresh ray Hit.T to be +Inf; got %f", r.Hit.T)
	}
	if r.Hit.Triangle != -1 || r.Hit.Material != -1 || r.Hit.MeshID != -1 || r.Hit.InstanceID != -1 {
		t.Fatalf("expected fresh hit indices to be -1; got %d/%d/%d/%d", r.Hit.Triangle, r.Hit.Material, r.Hit.MeshID, r.Hit.InstanceID)
	}
}
