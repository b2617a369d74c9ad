package math

import (
	"math"
	"testing"
)

func near(a, b Vec3) bool {
	return a.Sub(b).Length() < 1e-3
}

func TestIdentity(t *testing.T) {
	m := Identity()
	for i := range m {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if m[i] != want {
			t.Errorf("m[%d] = %v, want %v", i, m[i], want)
		}
	}
}

func TestMul(t *testing.T) {
	m := Translate(1, 2, 3)
	if got := m.Mul(Identity()); got != m {
		t.Errorf("M * I = %v, want %v", got, m)
	}
	if got := Identity().Mul(m); got != m {
		t.Errorf("I * M = %v, want %v", got, m)
	}

	both := Translate(1, 0, 0).Mul(Scale(2, 2, 2))
	if got := both.MulPoint(Vec3{X: 1, Y: 1}); !near(got, Vec3{X: 3, Y: 2}) {
		t.Errorf("T*S applied to (1,1,0) = %v, want (3,2,0)", got)
	}
}

func TestMulPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		in   Vec3
		want Vec3
	}{
		{"translate", Translate(10, 20, 30), Vec3{1, 2, 3}, Vec3{11, 22, 33}},
		{"scale", Scale(2, 3, 4), Vec3{1, 1, 1}, Vec3{2, 3, 4}},
		{"identity", Identity(), Vec3{-1, 5, 7}, Vec3{-1, 5, 7}},
	}
	for _, tt := range tests {
		if got := tt.m.MulPoint(tt.in); !near(got, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestComposeOrder(t *testing.T) {
	rot := QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/2))
	m := Compose(Vec3{X: 5}, rot, Vec3{X: 2, Y: 2, Z: 2})

	// (1,0,0) -> scale (2,0,0) -> rotY90 (0,0,-2) -> translate (5,0,-2)
	if got := m.MulPoint(Vec3{X: 1}); !near(got, Vec3{X: 5, Z: -2}) {
		t.Errorf("Compose: got %v, want (5, 0, -2)", got)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(float32(math.Pi/2), 2, 1, 100)

	if m[11] != -1 || m[15] != 0 {
		t.Errorf("w row = (%v, %v), want (-1, 0)", m[11], m[15])
	}
	// Points on the near and far planes map to -1 and 1.
	if got := m.MulPoint(Vec3{Z: -1}); abs(got.Z+1) > 1e-4 {
		t.Errorf("near plane depth = %v", got.Z)
	}
	if got := m.MulPoint(Vec3{Z: -100}); abs(got.Z-1) > 1e-4 {
		t.Errorf("far plane depth = %v", got.Z)
	}
	// 90° vertical fov: y = -z is the top edge; aspect 2 halves x.
	if got := m.MulPoint(Vec3{X: 2, Y: 1, Z: -1}); !near(got, Vec3{X: 1, Y: 1, Z: -1}) {
		t.Errorf("frustum corner = %v", got)
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := Vec3{3, 4, 5}
	m := LookAt(eye, Vec3{}, Vec3{Y: 1})

	if got := m.MulPoint(eye); got.Length() > 1e-3 {
		t.Errorf("LookAt should map the eye to the origin, got %v", got)
	}

	target := m.MulPoint(Vec3{})
	if abs(target.X) > 1e-3 || abs(target.Y) > 1e-3 || target.Z >= 0 {
		t.Errorf("LookAt target should be on -Z, got %v", target)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
