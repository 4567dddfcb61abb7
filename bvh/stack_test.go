package bvh

import "testing"

func TestNodeStack(t *testing.T) {
	var s nodeStack
	if !s.empty() {
		t.Fatal("expected fresh stack to be empty")
	}

	s.push(3)
	s.push(7)
	if s.empty() {
		t.Fatal("expected stack with entries to be non-empty")
	}
	if v := s.pop(); v != 7 {
		t.Fatalf("expected to pop 7; got %d", v)
	}
	if v := s.pop(); v != 3 {
		t.Fatalf("expected to pop 3; got %d", v)
	}
	if !s.empty() {
		t.Fatal("expected drained stack to be empty")
	}
}

func TestNodeStackOverflow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected pushing past capacity to panic")
		}
	}()

	var s nodeStack
	for i := 0; i <= maxStackDepth; i++ {
		s.push(uint32(i))
	}
}
