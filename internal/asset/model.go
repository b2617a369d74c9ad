// Package asset loads building models and caches them by asset path.
package asset

import (
	"github.com/Faultbox/buildings-gallery/pkg/math"
)

// Geometry is an indexed triangle list. Geometry owned by a cached Model is
// shared by every viewer of that model and must be treated as read-only.
type Geometry struct {
	Positions [][3]float32
	Normals   [][3]float32
	Indices   []uint32
}

// TriangleCount returns the number of triangles in the geometry.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// Bounds returns the bounding box of the untransformed geometry.
func (g *Geometry) Bounds() math.Box3 {
	var b math.Box3
	for _, p := range g.Positions {
		b = b.ExpandPoint(math.V3(p))
	}
	return b
}

// Material holds the surface properties the preview shaders use.
type Material struct {
	Name      string
	BaseColor [4]float32
}

// DefaultMaterial is used for primitives without a material.
var DefaultMaterial = Material{Name: "default", BaseColor: [4]float32{0.8, 0.8, 0.8, 1}}

// Node is one renderable primitive with its world transform.
type Node struct {
	Name      string
	Transform math.Mat4
	Geometry  *Geometry
	Material  int // index into Model.Materials, -1 for DefaultMaterial
}

// Model is a decoded scene graph, flattened to renderable nodes.
type Model struct {
	Path      string
	Nodes     []Node
	Materials []Material
}

// MaterialOf returns the material for node n.
func (m *Model) MaterialOf(n Node) Material {
	if n.Material < 0 || n.Material >= len(m.Materials) {
		return DefaultMaterial
	}
	return m.Materials[n.Material]
}

// Bounds returns the world-space bounding box of all nodes.
func (m *Model) Bounds() math.Box3 {
	var b math.Box3
	for _, n := range m.Nodes {
		b = b.Union(n.Geometry.Bounds().Transform(n.Transform))
	}
	return b
}

// TriangleCount returns the total triangle count across nodes.
func (m *Model) TriangleCount() int {
	total := 0
	for _, n := range m.Nodes {
		total += n.Geometry.TriangleCount()
	}
	return total
}

// computeNormals fills flat-accumulated vertex normals for geometry that has none.
func computeNormals(g *Geometry) {
	normals := make([]math.Vec3, len(g.Positions))
	for i := 0; i+2 < len(g.Indices); i += 3 {
		a, b, c := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		p0, p1, p2 := math.V3(g.Positions[a]), math.V3(g.Positions[b]), math.V3(g.Positions[c])
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}

	g.Normals = make([][3]float32, len(normals))
	for i, n := range normals {
		n = n.Normalize()
		g.Normals[i] = [3]float32{n.X, n.Y, n.Z}
	}
}
