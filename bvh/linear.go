package bvh

import (
	"github.com/mizar-render/mizar/geom"
)

// Linear is an Intersector that skips top-level partitioning entirely and
// tests every instance leaf in sequence. It stands in for backends whose
// internal construction is opaque (such as hardware ray tracing) behind the
// same build/intersect contract, and serves as the reference implementation
// the hierarchies are validated against.
type Linear struct {
	leaves []*Leaf
	bounds geom.AABB
}

// Create a linear backend over the given leaves.
func NewLinear(leaves []*Leaf) *Linear {
	return &Linear{leaves: leaves}
}

// Compute the world bounds. Fails for an empty leaf set, mirroring the
// hierarchy backends.
func (l *Linear) Build() error {
	if len(l.leaves) == 0 {
		return ErrNoLeaves
	}
	l.bounds = geom.NewAABB()
	for _, leaf := range l.leaves {
		l.bounds.GrowAABB(leaf.Bounds())
	}
	return nil
}

// Get the world bounds of the leaf set.
func (l *Linear) AABB() geom.AABB {
	return l.bounds
}

// Test the ray against every instance. Hit.T pruning inside each leaf still
// applies; only the top-level ordering is lost.
func (l *Linear) Intersect(r *geom.Ray) {
	for _, leaf := range l.leaves {
		leaf.Intersect(r)
	}
}
