package bvh

// Traversal replaces recursion with an explicit stack of node indices. SAH
// built trees stay well below this depth even for meshes with millions of
// triangles; overflowing the stack therefore indicates a broken build and
// panics instead of silently corrupting the traversal.
const maxStackDepth = 64

type nodeStack struct {
	entries [maxStackDepth]uint32
	top     int
}

func (s *nodeStack) push(index uint32) {
	if s.top == maxStackDepth {
		panic("bvh: traversal stack overflow")
	}
	s.entries[s.top] = index
	s.top++
}

func (s *nodeStack) pop() uint32 {
	s.top--
	return s.entries[s.top]
}

func (s *nodeStack) empty() bool {
	return s.top == 0
}
