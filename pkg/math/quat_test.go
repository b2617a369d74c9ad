package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	if QuatIdentity().Mat4() != Identity() {
		t.Error("identity quaternion should produce the identity matrix")
	}
}

func TestQuatNormalize(t *testing.T) {
	tests := []struct {
		in   Quat
		want float64
	}{
		{Quat{X: 1, Y: 2, Z: 3, W: 4}, 1},
		{Quat{W: 0.5}, 1},
		{Quat{}, 1},
	}
	for _, tt := range tests {
		n := tt.in.Normalize()
		length := math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W))
		if math.Abs(length-tt.want) > 1e-4 {
			t.Errorf("|%v| = %v after normalize", tt.in, length)
		}
	}
	if got := (Quat{}).Normalize(); got != QuatIdentity() {
		t.Errorf("zero quaternion should normalize to identity, got %v", got)
	}
}

func TestQuatRotations(t *testing.T) {
	tests := []struct {
		name string
		axis Vec3
		in   Vec3
		want Vec3
	}{
		{"y", Vec3{Y: 1}, Vec3{X: 1}, Vec3{Z: -1}},
		{"x", Vec3{X: 1}, Vec3{Y: 1}, Vec3{Z: 1}},
		{"z", Vec3{Z: 1}, Vec3{X: 1}, Vec3{Y: 1}},
	}
	for _, tt := range tests {
		q := QuatFromAxisAngle(tt.axis, float32(math.Pi/2))
		if got := q.Mat4().MulPoint(tt.in); !near(got, tt.want) {
			t.Errorf("%s 90°: got %v, want %v", tt.name, got, tt.want)
		}
	}
}
