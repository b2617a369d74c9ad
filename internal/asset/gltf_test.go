package asset_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/Faultbox/buildings-gallery/internal/asset"
	"github.com/Faultbox/buildings-gallery/internal/asset/assettest"
)

func TestDecodeGLB(t *testing.T) {
	data, err := assettest.BoxGLB()
	if err != nil {
		t.Fatal(err)
	}

	m, err := asset.Decode("box.glb", data)
	if err != nil {
		t.Fatal(err)
	}

	if len(m.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(m.Nodes))
	}
	if m.Nodes[0].Geometry != m.Nodes[1].Geometry {
		t.Error("nodes sharing a mesh should share geometry")
	}
	if got := m.TriangleCount(); got != 24 {
		t.Errorf("triangles = %d, want 24", got)
	}
	if len(m.Nodes[0].Geometry.Normals) != len(m.Nodes[0].Geometry.Positions) {
		t.Error("missing normals should be computed")
	}

	mat := m.MaterialOf(m.Nodes[0])
	if mat.Name != "stone" || mat.BaseColor != [4]float32{0.5, 0.25, 1, 1} {
		t.Errorf("material = %+v", mat)
	}

	// Root box spans [-0.5, 0.5]; the child is scaled 2x and moved +3 on X.
	b := m.Bounds()
	want := [6]float32{-0.5, -1, -1, 4, 1, 1}
	got := [6]float32{b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-5 {
			t.Fatalf("bounds = %v, want %v", got, want)
		}
	}
}

// triangleDoc is a one-triangle glTF with its position data embedded.
// accessors and primitive are spliced in verbatim.
func triangleDoc(accessors, primitive string) []byte {
	return []byte(fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"scenes": [{"nodes": [0]}],
		"nodes": [{"mesh": 0}],
		"meshes": [{"primitives": [%s]}],
		"buffers": [{"byteLength": 36, "uri": "data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAACAPwAAAAAAAAAAAAAAAAAAgD8AAAAA"}],
		"bufferViews": [{"buffer": 0, "byteLength": 36}],
		"accessors": [%s]
	}`, primitive, accessors))
}

const (
	vec3Accessor     = `{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}`
	viewlessAccessor = `{"componentType": 5126, "count": 3, "type": "VEC3"}`
	badViewAccessor  = `{"bufferView": 4, "componentType": 5126, "count": 3, "type": "VEC3"}`
)

func TestDecodeTriangle(t *testing.T) {
	m, err := asset.Decode("tri.gltf", triangleDoc(vec3Accessor, `{"attributes": {"POSITION": 0}}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := m.TriangleCount(); got != 1 {
		t.Errorf("triangles = %d, want 1", got)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not glTF", []byte("junk")},
		{"position accessor out of range", triangleDoc(vec3Accessor, `{"attributes": {"POSITION": 7}}`)},
		{"position accessor without buffer view", triangleDoc(viewlessAccessor, `{"attributes": {"POSITION": 0}, "indices": 9}`)},
		{"buffer view out of range", triangleDoc(badViewAccessor, `{"attributes": {"POSITION": 0}}`)},
		{"index accessor out of range", triangleDoc(vec3Accessor, `{"attributes": {"POSITION": 0}, "indices": 9}`)},
		{"normal accessor out of range", triangleDoc(vec3Accessor, `{"attributes": {"POSITION": 0, "NORMAL": 3}}`)},
		{"negative accessor", triangleDoc(vec3Accessor, `{"attributes": {"POSITION": -1}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := asset.Decode("bad.gltf", tt.data); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestBoxModelBounds(t *testing.T) {
	m := assettest.Box(1)
	b := m.Bounds()
	if b.MaxDim() != 2 {
		t.Errorf("max dim = %v, want 2", b.MaxDim())
	}
	if m.TriangleCount() != 12 {
		t.Errorf("triangles = %d, want 12", m.TriangleCount())
	}
}
