package glgpu

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/buildings-gallery/internal/asset"
)

type vertex struct {
	Position [3]float32
	Normal   [3]float32
}

// Mesh is an indexed VAO with interleaved position and normal.
type Mesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

func uploadMesh(g *asset.Geometry) *Mesh {
	vertices := make([]vertex, len(g.Positions))
	for i, p := range g.Positions {
		vertices[i].Position = p
		if i < len(g.Normals) {
			vertices[i].Normal = g.Normals[i]
		}
	}

	m := &Mesh{indexCount: int32(len(g.Indices))}
	stride := int32(unsafe.Sizeof(vertex{}))

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(stride), unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, unsafe.Pointer(&g.Indices[0]), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 12)

	gl.BindVertexArray(0)
	return m
}

// Release implements gpu.Mesh.
func (m *Mesh) Release() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
		m.ebo = 0
	}
	m.indexCount = 0
}
