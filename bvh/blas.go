package bvh

import (
	"math"
	"time"

	"github.com/mizar-render/mizar/geom"
	"github.com/mizar-render/mizar/log"
)

const (
	// Number of SAH bins evaluated per split.
	numBins = 8

	// Nodes holding this many triangles or fewer always become leaves.
	maxLeafSize = 2
)

// A BLAS node. Internal nodes store the index of their first child (the
// second child is always first+1); leaves store the offset and count of
// their triangle index range.
type blasNode struct {
	bounds    geom.AABB
	leftFirst uint32
	count     uint32
}

func (n *blasNode) isLeaf() bool {
	return n.count > 0
}

// Per-build statistics.
type BuildStats struct {
	Nodes     int
	Leafs     int
	MaxDepth  int
	BuildTime time.Duration
}

// A BLAS is the bottom-level hierarchy over the triangles of a single mesh.
// The node array is allocated once at build time and never resized; children
// are referenced by index so the tree is a flat arena. Triangles themselves
// are never moved: the build permutes a triangle index array in place.
type BLAS struct {
	logger log.Logger
	mesh   geom.Mesh

	nodes     []blasNode
	triIdx    []uint32
	nodesUsed uint32

	stats BuildStats
}

// Create a BLAS over the given mesh. Build must be called before the first
// Intersect.
func NewBLAS(m geom.Mesh) *BLAS {
	return &BLAS{
		logger: log.New("blas"),
		mesh:   m,
	}
}

// Construct the hierarchy with top-down binned SAH splitting. Rebuilding
// from an unmodified mesh is deterministic: the bin count is fixed and cost
// ties keep the first candidate plane.
func (b *BLAS) Build() error {
	numTris := b.mesh.NumTriangles()
	if numTris == 0 {
		return ErrNoTriangles
	}

	start := time.Now()
	b.nodes = make([]blasNode, 2*numTris-1)
	b.triIdx = make([]uint32, numTris)
	for i := range b.triIdx {
		b.triIdx[i] = uint32(i)
	}

	b.stats = BuildStats{}
	b.nodesUsed = 1
	b.nodes[0] = blasNode{leftFirst: 0, count: uint32(numTris)}
	b.updateBounds(0)
	b.subdivide(0, 0)

	b.stats.Nodes = int(b.nodesUsed)
	b.stats.BuildTime = time.Since(start)
	b.logger.Debugf(
		"built BLAS in %s: %d triangles, %d nodes, %d leafs, max depth %d",
		b.stats.BuildTime, numTris, b.stats.Nodes, b.stats.Leafs, b.stats.MaxDepth,
	)
	return nil
}

// Get the mesh-local bounds of the hierarchy root.
func (b *BLAS) AABB() geom.AABB {
	if b.nodesUsed == 0 {
		return geom.NewAABB()
	}
	return b.nodes[0].bounds
}

// Get statistics for the last build.
func (b *BLAS) Stats() BuildStats {
	return b.stats
}

// Get the mesh this hierarchy was built over.
func (b *BLAS) Mesh() geom.Mesh {
	return b.mesh
}

// Recompute a node's bounds as the union of its triangles' vertices.
func (b *BLAS) updateBounds(nodeIndex uint32) {
	node := &b.nodes[nodeIndex]
	node.bounds = geom.NewAABB()
	for i := node.leftFirst; i < node.leftFirst+node.count; i++ {
		verts := b.mesh.TriangleVertices(int(b.triIdx[i]))
		node.bounds.Grow(verts[0])
		node.bounds.Grow(verts[1])
		node.bounds.Grow(verts[2])
	}
}

// Recursively split a node until the SAH cost no longer improves on keeping
// it as a leaf.
func (b *BLAS) subdivide(nodeIndex uint32, depth int) {
	node := &b.nodes[nodeIndex]
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}

	if node.count <= maxLeafSize {
		b.stats.Leafs++
		return
	}

	axis, splitPos, splitCost := b.findBestSplit(node)

	// Keeping the node as a leaf costs count * area. Splitting must be
	// strictly cheaper, which also bounds tree depth for degenerate input:
	// coincident centroids all land in one bin and never improve the cost.
	parentCost := float64(node.count) * float64(node.bounds.Area())
	if splitCost >= parentCost {
		b.stats.Leafs++
		return
	}

	// Partition the triangle index range in place around the split plane.
	i := int(node.leftFirst)
	j := i + int(node.count) - 1
	for i <= j {
		if b.mesh.Centroid(int(b.triIdx[i]))[axis] < splitPos {
			i++
		} else {
			b.triIdx[i], b.triIdx[j] = b.triIdx[j], b.triIdx[i]
			j--
		}
	}

	leftCount := uint32(i) - node.leftFirst
	if leftCount == 0 || leftCount == node.count {
		// The binned estimate found no usable plane after all; abort the split.
		b.stats.Leafs++
		return
	}

	leftChild := b.nodesUsed
	b.nodesUsed += 2
	b.nodes[leftChild] = blasNode{leftFirst: node.leftFirst, count: leftCount}
	b.nodes[leftChild+1] = blasNode{leftFirst: uint32(i), count: node.count - leftCount}
	node.leftFirst = leftChild
	node.count = 0

	b.updateBounds(leftChild)
	b.updateBounds(leftChild + 1)
	b.subdivide(leftChild, depth+1)
	b.subdivide(leftChild+1, depth+1)
}

// Evaluate the 7 candidate planes between 8 centroid bins along the node's
// longest axis and return the cheapest one. The returned cost is +Inf when
// no usable plane exists (e.g. all centroids coincide along the axis).
func (b *BLAS) findBestSplit(node *blasNode) (axis int, splitPos float32, cost float64) {
	axis = node.bounds.Extent().MaxAxis()

	// Bin by centroid bounds rather than node bounds: triangle centroids can
	// occupy a much smaller interval than the vertices that define the node.
	cmin := float32(math.MaxFloat32)
	cmax := float32(-math.MaxFloat32)
	for i := node.leftFirst; i < node.leftFirst+node.count; i++ {
		c := b.mesh.Centroid(int(b.triIdx[i]))[axis]
		cmin = min32(cmin, c)
		cmax = max32(cmax, c)
	}
	if cmin == cmax {
		return axis, 0, math.Inf(1)
	}

	type bin struct {
		bounds geom.AABB
		count  int
	}
	var bins [numBins]bin
	for i := range bins {
		bins[i].bounds = geom.NewAABB()
	}

	scale := numBins / (float64(cmax) - float64(cmin))
	for i := node.leftFirst; i < node.leftFirst+node.count; i++ {
		triIndex := int(b.triIdx[i])
		binIndex := int((float64(b.mesh.Centroid(triIndex)[axis]) - float64(cmin)) * scale)
		if binIndex > numBins-1 {
			binIndex = numBins - 1
		}
		bins[binIndex].count++
		verts := b.mesh.TriangleVertices(triIndex)
		bins[binIndex].bounds.Grow(verts[0])
		bins[binIndex].bounds.Grow(verts[1])
		bins[binIndex].bounds.Grow(verts[2])
	}

	// Sweep bin boxes left-to-right and right-to-left so each candidate
	// plane sees the exact bounds and population of both sides.
	var leftArea, rightArea [numBins - 1]float64
	var leftCount, rightCount [numBins - 1]int
	leftBox, rightBox := geom.NewAABB(), geom.NewAABB()
	leftSum, rightSum := 0, 0
	for i := 0; i < numBins-1; i++ {
		leftSum += bins[i].count
		leftCount[i] = leftSum
		leftBox.GrowAABB(bins[i].bounds)
		leftArea[i] = float64(leftBox.Area())

		rightSum += bins[numBins-1-i].count
		rightCount[numBins-2-i] = rightSum
		rightBox.GrowAABB(bins[numBins-1-i].bounds)
		rightArea[numBins-2-i] = float64(rightBox.Area())
	}

	binWidth := (float64(cmax) - float64(cmin)) / numBins
	cost = math.Inf(1)
	for i := 0; i < numBins-1; i++ {
		// Planes with an empty side never beat the parent cost.
		if leftCount[i] == 0 || rightCount[i] == 0 {
			continue
		}
		planeCost := float64(leftCount[i])*leftArea[i] + float64(rightCount[i])*rightArea[i]
		if planeCost < cost {
			cost = planeCost
			splitPos = float32(float64(cmin) + binWidth*float64(i+1))
		}
	}
	return axis, splitPos, cost
}

// Find the nearest triangle intersection. The traversal is iterative and
// always descends into the nearer child first so that the shrinking Hit.T
// prunes the farther subtree as early as possible.
func (b *BLAS) Intersect(r *geom.Ray) {
	if b.nodesUsed == 0 {
		return
	}

	var stack nodeStack
	node := &b.nodes[0]
	for {
		if node.isLeaf() {
			for i := node.leftFirst; i < node.leftFirst+node.count; i++ {
				b.mesh.IntersectTriangle(r, int(b.triIdx[i]))
			}
			if stack.empty() {
				return
			}
			node = &b.nodes[stack.pop()]
			continue
		}

		child1 := node.leftFirst
		child2 := node.leftFirst + 1
		dist1 := b.nodes[child1].bounds.Intersect(r)
		dist2 := b.nodes[child2].bounds.Intersect(r)
		if dist1 > dist2 {
			dist1, dist2 = dist2, dist1
			child1, child2 = child2, child1
		}

		if dist1 == geom.Inf32 {
			if stack.empty() {
				return
			}
			node = &b.nodes[stack.pop()]
		} else {
			node = &b.nodes[child1]
			if dist2 != geom.Inf32 {
				stack.push(child2)
			}
		}
	}
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
