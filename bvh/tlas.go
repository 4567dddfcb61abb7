package bvh

import (
	"time"

	"github.com/mizar-render/mizar/geom"
	"github.com/mizar-render/mizar/log"
)

// Internal TLAS nodes pack both child indices into a single uint32 (left in
// the low 16 bits). Slot 0 always holds the root and is never a child, so a
// zero leftRight unambiguously marks a leaf node.
const maxTLASLeaves = 1<<15 - 1

type tlasNode struct {
	bounds    geom.AABB
	leftRight uint32
	leaf      uint32
}

// A TLAS is the top-level hierarchy over per-instance leaves. It is built
// bottom-up by greedily merging the pair of nodes whose combined bounds are
// cheapest, and traversed exactly like a BLAS except that leaf visits
// delegate to the leaf's own intersect.
type TLAS struct {
	logger log.Logger
	leaves []*Leaf

	nodes     []tlasNode
	nodesUsed uint32
}

// Create a TLAS over the given leaves. Build must be called before the
// first Intersect.
func NewTLAS(leaves []*Leaf) *TLAS {
	return &TLAS{
		logger: log.New("tlas"),
		leaves: leaves,
	}
}

// Construct the hierarchy by agglomerative clustering with the
// nearest-neighbor-chain strategy: follow best-match links until a mutual
// best pair appears, merge it, and continue from the shrunken working set.
// The chain either advances or merges on every step, so termination is
// guaranteed. The exhaustive best-match scan is O(n^2) per merge, which is
// acceptable for instance counts (small relative to triangle counts).
func (t *TLAS) Build() error {
	if len(t.leaves) == 0 {
		return ErrNoLeaves
	}
	if len(t.leaves) > maxTLASLeaves {
		return ErrTooManyLeafs
	}

	start := time.Now()
	t.nodes = make([]tlasNode, 2*len(t.leaves))

	// Slot 0 is reserved for the root; wrap every leaf in its own node.
	workSet := make([]uint32, len(t.leaves))
	t.nodesUsed = 1
	for i, leaf := range t.leaves {
		workSet[i] = t.nodesUsed
		t.nodes[t.nodesUsed] = tlasNode{bounds: leaf.Bounds(), leaf: uint32(i)}
		t.nodesUsed++
	}

	count := len(workSet)
	a := 0
	b := -1
	if count > 1 {
		b = t.findBestMatch(workSet, count, a)
	}
	for count > 1 {
		c := t.findBestMatch(workSet, count, b)
		if a != c {
			a, b = b, c
			continue
		}

		// Mutual best pair: merge. Keep the merged node in the lower of the
		// two slots so the slot index stays valid after the set shrinks.
		if a > b {
			a, b = b, a
		}
		left, right := workSet[a], workSet[b]
		bounds := t.nodes[left].bounds
		bounds.GrowAABB(t.nodes[right].bounds)
		t.nodes[t.nodesUsed] = tlasNode{
			bounds:    bounds,
			leftRight: left | right<<16,
		}
		workSet[a] = t.nodesUsed
		t.nodesUsed++
		workSet[b] = workSet[count-1]
		count--
		if count > 1 {
			b = t.findBestMatch(workSet, count, a)
		}
	}

	// A single remaining node becomes the root. With exactly one leaf no
	// merge ever happens and the leaf itself is copied into the root slot.
	t.nodes[0] = t.nodes[workSet[a]]

	t.logger.Debugf(
		"built TLAS in %s: %d leaves, %d nodes",
		time.Since(start), len(t.leaves), t.nodesUsed,
	)
	return nil
}

// Find the node in the working set whose combined bounds with slot a have
// the smallest area.
func (t *TLAS) findBestMatch(workSet []uint32, count, a int) int {
	smallest := geom.Inf32
	best := -1
	for i := 0; i < count; i++ {
		if i == a {
			continue
		}
		bounds := t.nodes[workSet[a]].bounds
		bounds.GrowAABB(t.nodes[workSet[i]].bounds)
		if area := bounds.Area(); area < smallest {
			smallest = area
			best = i
		}
	}
	return best
}

// Get the world bounds of the hierarchy root.
func (t *TLAS) AABB() geom.AABB {
	if t.nodesUsed == 0 {
		return geom.NewAABB()
	}
	return t.nodes[0].bounds
}

// Find the nearest intersection across all instances. Same near-first,
// prune-by-Hit.T loop as the BLAS traversal; visiting a leaf hands the ray
// to the instance leaf which continues inside its own BLAS.
func (t *TLAS) Intersect(r *geom.Ray) {
	if t.nodesUsed == 0 {
		return
	}

	var stack nodeStack
	node := &t.nodes[0]
	for {
		if node.leftRight == 0 {
			t.leaves[node.leaf].Intersect(r)
			if stack.empty() {
				return
			}
			node = &t.nodes[stack.pop()]
			continue
		}

		child1 := node.leftRight & 0xffff
		child2 := node.leftRight >> 16
		dist1 := t.nodes[child1].bounds.Intersect(r)
		dist2 := t.nodes[child2].bounds.Intersect(r)
		if dist1 > dist2 {
			dist1, dist2 = dist2, dist1
			child1, child2 = child2, child1
		}

		if dist1 == geom.Inf32 {
			if stack.empty() {
				return
			}
			node = &t.nodes[stack.pop()]
		} else {
			node = &t.nodes[child1]
			if dist2 != geom.Inf32 {
				stack.push(child2)
			}
		}
	}
}
