package math

import (
	"math"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	got := Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0})
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	l := Vec3{3, 4, 12}.Normalize().Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("zero vector should normalize to zero")
	}
}

func TestSpherical(t *testing.T) {
	tests := []struct {
		name           string
		polar, azimuth float64
		want           Vec3
	}{
		{"straight up", 0, 0, Vec3{0, 2, 0}},
		{"horizon +Z", math.Pi / 2, 0, Vec3{0, 0, 2}},
		{"horizon +X", math.Pi / 2, math.Pi / 2, Vec3{2, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Spherical(2, float32(tt.polar), float32(tt.azimuth))
			if got.Sub(tt.want).Length() > 0.001 {
				t.Errorf("Spherical() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBox3(t *testing.T) {
	var b Box3
	if !b.Empty() {
		t.Fatal("zero box should be empty")
	}

	b = b.ExpandPoint(Vec3{-1, 0, -2}).ExpandPoint(Vec3{1, 4, 2})
	if b.Empty() {
		t.Fatal("box should not be empty after ExpandPoint")
	}
	if got := b.Center(); got != (Vec3{0, 2, 0}) {
		t.Errorf("Center() = %v, want (0, 2, 0)", got)
	}
	if got := b.MaxDim(); got != 4 {
		t.Errorf("MaxDim() = %v, want 4", got)
	}
	if got := b.Radius(); abs(got-3) > 0.001 {
		t.Errorf("Radius() = %v, want 3", got)
	}

	moved := b.Transform(Translate(10, 0, 0))
	if moved.Min.X != 9 || moved.Max.X != 11 {
		t.Errorf("Transform() x range = [%v, %v], want [9, 11]", moved.Min.X, moved.Max.X)
	}

	if u := (Box3{}).Union(b); u != b {
		t.Errorf("Union with empty should return other box, got %v", u)
	}
}
