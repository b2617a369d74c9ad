package math

import "math"

// Box3 is an axis-aligned bounding box. The zero value is empty.
type Box3 struct {
	Min, Max Vec3
	valid    bool
}

// Empty reports whether no point was added yet.
func (b Box3) Empty() bool {
	return !b.valid
}

// ExpandPoint grows the box to contain p.
func (b Box3) ExpandPoint(p Vec3) Box3 {
	if !b.valid {
		return Box3{Min: p, Max: p, valid: true}
	}
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
	return b
}

// Union returns the box containing both b and other.
func (b Box3) Union(other Box3) Box3 {
	if !other.valid {
		return b
	}
	return b.ExpandPoint(other.Min).ExpandPoint(other.Max)
}

// Center returns the centroid of the box.
func (b Box3) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extents.
func (b Box3) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Radius returns the radius of the sphere enclosing the box.
func (b Box3) Radius() float32 {
	return b.Size().Length() / 2
}

// MaxDim returns the largest extent.
func (b Box3) MaxDim() float32 {
	s := b.Size()
	return float32(math.Max(float64(s.X), math.Max(float64(s.Y), float64(s.Z))))
}

// Transform returns the bounds of the box after applying m to its eight corners.
func (b Box3) Transform(m Mat4) Box3 {
	if !b.valid {
		return b
	}
	var out Box3
	for i := 0; i < 8; i++ {
		c := b.Min
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		out = out.ExpandPoint(m.MulPoint(c))
	}
	return out
}
