// Package gpu defines the rendering device contract shared by the software
// rasterizer and the OpenGL backend. Every object a Device creates is owned
// by its creator and must be released exactly once; Release is idempotent.
package gpu

import (
	"errors"
	"image"

	"github.com/Faultbox/buildings-gallery/internal/asset"
	"github.com/Faultbox/buildings-gallery/pkg/math"
)

// ErrReleased is returned when drawing with a released object.
var ErrReleased = errors.New("gpu object already released")

// Device creates GPU resources. Devices are used from the render goroutine only.
type Device interface {
	NewSurface(width, height int) (Surface, error)
	NewMesh(g *asset.Geometry) (Mesh, error)
	NewMaterial(m asset.Material) (Material, error)
}

// Surface is an offscreen render target with its own depth buffer.
type Surface interface {
	Size() (width, height int)
	Resize(width, height int)
	Draw(f *Frame) error
	// ReadPixels returns the last drawn frame, top row first.
	ReadPixels() (*image.RGBA, error)
	Release()
}

// Mesh is uploaded geometry.
type Mesh interface {
	Release()
}

// Material is uploaded surface appearance.
type Material interface {
	Release()
}

// DrawItem is one mesh drawn with one material under a model transform.
type DrawItem struct {
	Mesh     Mesh
	Material Material
	Model    math.Mat4
}

// Frame describes everything needed to draw one image.
type Frame struct {
	View       math.Mat4
	Projection math.Mat4
	Clear      [4]float32
	// LightDir points toward the light, in world space.
	LightDir math.Vec3
	// Ambient is the unlit fraction of the base color.
	Ambient float32
	Items   []DrawItem
}

// DefaultLightDir matches a directional light placed at (10, 10, 10).
var DefaultLightDir = math.Vec3{X: 1, Y: 1, Z: 1}.Normalize()

// DefaultAmbient is the ambient share of the lambert shading.
const DefaultAmbient = 0.3

// Shade returns the lit color for a surface facing normal.
func Shade(base [4]float32, normal, lightDir math.Vec3, ambient float32) [4]float32 {
	intensity := normal.Dot(lightDir)
	if intensity < 0 {
		intensity = 0
	}
	k := ambient + (1-ambient)*intensity
	return [4]float32{base[0] * k, base[1] * k, base[2] * k, base[3]}
}
