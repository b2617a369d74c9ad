package asset

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/buildings-gallery/pkg/math"
)

// maxNodeDepth bounds hierarchy recursion for malformed files.
const maxNodeDepth = 64

var errNoGeometry = errors.New("model has no triangle geometry")

// DecodeFunc turns fetched bytes into a Model.
type DecodeFunc func(path string, data []byte) (*Model, error)

// Decode parses a glTF 2.0 document (GLB or self-contained JSON) and flattens
// its default scene into renderable nodes.
func Decode(path string, data []byte) (*Model, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding glTF: %w", err)
	}

	d := &decoder{
		doc:    doc,
		model:  &Model{Path: path},
		meshes: make(map[int][]primitive),
	}
	for _, mat := range doc.Materials {
		d.model.Materials = append(d.model.Materials, convertMaterial(mat))
	}

	for _, root := range sceneRoots(doc) {
		if err := d.walk(root, math.Identity(), 0, make(map[int]bool)); err != nil {
			return nil, err
		}
	}

	if len(d.model.Nodes) == 0 {
		return nil, errNoGeometry
	}
	return d.model, nil
}

type primitive struct {
	geometry *Geometry
	material int
}

type decoder struct {
	doc   *gltf.Document
	model *Model

	// meshes caches converted primitives so nodes sharing a mesh share geometry.
	meshes map[int][]primitive
}

func (d *decoder) walk(index int, parent math.Mat4, depth int, visited map[int]bool) error {
	if index < 0 || index >= len(d.doc.Nodes) {
		return fmt.Errorf("node index %d out of range", index)
	}
	if depth > maxNodeDepth || visited[index] {
		return fmt.Errorf("node hierarchy cycle at node %d", index)
	}
	visited[index] = true
	defer delete(visited, index)

	node := d.doc.Nodes[index]
	world := parent.Mul(nodeTransform(node))

	if node.Mesh != nil {
		prims, err := d.mesh(*node.Mesh)
		if err != nil {
			return err
		}
		for i, p := range prims {
			name := node.Name
			if len(prims) > 1 {
				name = fmt.Sprintf("%s#%d", node.Name, i)
			}
			d.model.Nodes = append(d.model.Nodes, Node{
				Name:      name,
				Transform: world,
				Geometry:  p.geometry,
				Material:  p.material,
			})
		}
	}

	for _, child := range node.Children {
		if err := d.walk(child, world, depth+1, visited); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) mesh(index int) ([]primitive, error) {
	if prims, ok := d.meshes[index]; ok {
		return prims, nil
	}
	if index < 0 || index >= len(d.doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", index)
	}

	var prims []primitive
	for i, p := range d.doc.Meshes[index].Primitives {
		if p.Mode != gltf.PrimitiveTriangles {
			continue
		}
		g, err := d.geometry(p)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", index, i, err)
		}
		if g == nil {
			continue
		}

		material := -1
		if p.Material != nil {
			material = *p.Material
		}
		prims = append(prims, primitive{geometry: g, material: material})
	}

	d.meshes[index] = prims
	return prims, nil
}

func (d *decoder) geometry(p *gltf.Primitive) (*Geometry, error) {
	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}

	acc, err := d.accessor(posIdx)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	positions, err := modeler.ReadPosition(d.doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}

	g := &Geometry{Positions: positions}

	if p.Indices != nil {
		acc, err := d.accessor(*p.Indices)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		g.Indices, err = modeler.ReadIndices(d.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
	} else {
		g.Indices = make([]uint32, len(positions))
		for i := range g.Indices {
			g.Indices[i] = uint32(i)
		}
	}
	for _, idx := range g.Indices {
		if int(idx) >= len(positions) {
			return nil, fmt.Errorf("index %d out of range for %d vertices", idx, len(positions))
		}
	}

	if nIdx, ok := p.Attributes[gltf.NORMAL]; ok {
		acc, err := d.accessor(nIdx)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		g.Normals, err = modeler.ReadNormal(d.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
	}
	if len(g.Normals) != len(g.Positions) {
		computeNormals(g)
	}

	return g, nil
}

// accessor resolves an accessor index from the file. Accessors without a
// buffer view (all zeros or sparse only) carry no geometry the renderer can
// use and are rejected.
func (d *decoder) accessor(index int) (*gltf.Accessor, error) {
	if index < 0 || index >= len(d.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", index)
	}
	acc := d.doc.Accessors[index]
	if acc == nil || acc.BufferView == nil {
		return nil, fmt.Errorf("accessor %d has no buffer view", index)
	}
	if bv := *acc.BufferView; bv < 0 || bv >= len(d.doc.BufferViews) {
		return nil, fmt.Errorf("accessor %d: buffer view %d out of range", index, bv)
	}
	return acc, nil
}

func sceneRoots(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		scene := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			scene = *doc.Scene
		}
		return doc.Scenes[scene].Nodes
	}

	// No scenes: every node that is nobody's child is a root.
	isChild := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func nodeTransform(n *gltf.Node) math.Mat4 {
	if m := n.MatrixOrDefault(); m != gltf.DefaultMatrix {
		var out math.Mat4
		for i, v := range m {
			out[i] = float32(v)
		}
		return out
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return math.Compose(
		math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
		math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])},
	)
}

func convertMaterial(mat *gltf.Material) Material {
	out := Material{Name: mat.Name, BaseColor: [4]float32{1, 1, 1, 1}}
	if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
		for i, v := range pbr.BaseColorFactor {
			out.BaseColor[i] = float32(v)
		}
	}
	return out
}
