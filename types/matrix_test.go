package types

import (
	"math"
	"reflect"
	"testing"
)

func matApproxEqual(m1, m2 Mat4, epsilon float32) bool {
	for i := 0; i < 16; i++ {
		d := m1[i] - m2[i]
		if d < -epsilon || d > epsilon {
			return false
		}
	}
	return true
}

func TestMat4MulIdent(t *testing.T) {
	m := Translate4(Vec3{1, 2, 3}).Mul4(Scale4(Vec3{2, 2, 2}))
	out := m.Mul4(Ident4())
	if !reflect.DeepEqual(out, m) {
		t.Fatalf("expected M * I to equal M; got %v", out)
	}
	out = Ident4().Mul4(m)
	if !reflect.DeepEqual(out, m) {
		t.Fatalf("expected I * M to equal M; got %v", out)
	}
}

func TestMat4Mul4x1(t *testing.T) {
	m := Translate4(Vec3{1, 2, 3}).Mul4(Scale4(Vec3{2, 2, 2}))

	// Points pick up the translation
	out := m.Mul4x1(Vec3{1, 1, 1}.Vec4(1)).Vec3()
	expOut := Vec3{3, 4, 5}
	if !ApproxEqual(out, expOut, 1e-5) {
		t.Fatalf("expected transformed point to be %v; got %v", expOut, out)
	}

	// Direction vectors do not
	out = m.Mul4x1(Vec3{1, 1, 1}.Vec4(0)).Vec3()
	expOut = Vec3{2, 2, 2}
	if !ApproxEqual(out, expOut, 1e-5) {
		t.Fatalf("expected transformed dir to be %v; got %v", expOut, out)
	}
}

func TestMat4Transpose(t *testing.T) {
	m := Translate4(Vec3{1, 2, 3})
	out := m.Transpose().Transpose()
	if !reflect.DeepEqual(out, m) {
		t.Fatalf("expected double transpose to equal original matrix; got %v", out)
	}
}

func TestMat4Det(t *testing.T) {
	var expDet float32 = 2 * 3 * 4
	if det := Scale4(Vec3{2, 3, 4}).Det(); det != expDet {
		t.Fatalf("expected det to be %f; got %f", expDet, det)
	}

	if det := Ident4().Det(); det != 1 {
		t.Fatalf("expected identity det to be 1; got %f", det)
	}
}

func TestMat4Inv(t *testing.T) {
	rot := QuatFromAxisAngle(Vec3{0, 1, 0}, float32(math.Pi/3)).Mat4()
	m := Translate4(Vec3{1, -2, 3}).Mul4(rot.Mul4(Scale4(Vec3{2, 2, 2})))

	out := m.Mul4(m.Inv())
	if !matApproxEqual(out, Ident4(), 1e-5) {
		t.Fatalf("expected M * Inv(M) to be the identity matrix; got %v", out)
	}
}

func TestMat4InvSingular(t *testing.T) {
	out := Scale4(Vec3{1, 1, 0}).Inv()
	if !reflect.DeepEqual(out, Mat4{}) {
		t.Fatalf("expected inverse of singular matrix to be the zero matrix; got %v", out)
	}
}
