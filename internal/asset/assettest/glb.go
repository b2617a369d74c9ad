package assettest

import (
	"bytes"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// BoxGLB encodes a two-node GLB: a unit box at the root and a translated,
// uniformly scaled child instance sharing the same mesh.
func BoxGLB() ([]byte, error) {
	m := Box(0.5)
	g := m.Nodes[0].Geometry

	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, g.Positions)
	idx := modeler.WriteIndices(doc, g.Indices)

	doc.Materials = []*gltf.Material{{
		Name: "stone",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{0.5, 0.25, 1, 1},
		},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "box",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos},
			Material:   gltf.Index(0),
		}},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "base", Mesh: gltf.Index(0), Children: []int{1}},
		{Name: "annex", Mesh: gltf.Index(0), Translation: [3]float64{3, 0, 0}, Scale: [3]float64{2, 2, 2}},
	}
	doc.Scenes[0].Nodes = []int{0}

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
