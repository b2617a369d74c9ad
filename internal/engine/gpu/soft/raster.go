package soft

import (
	"image"
	gomath "math"

	"github.com/Faultbox/buildings-gallery/internal/asset"
	"github.com/Faultbox/buildings-gallery/internal/engine/gpu"
	"github.com/Faultbox/buildings-gallery/pkg/math"
)

// nearW discards vertices behind or on the camera plane.
const nearW = 1e-5

type rasterizer struct {
	color *image.RGBA
	depth []float32
	frame *gpu.Frame
}

type screenVertex struct {
	x, y, z float32
}

func (r *rasterizer) clear() {
	c := toBytes(r.frame.Clear)
	pix := r.color.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c[0], c[1], c[2], c[3]
	}
	for i := range r.depth {
		r.depth[i] = gomath.MaxFloat32
	}
}

func (r *rasterizer) drawMesh(g *asset.Geometry, model math.Mat4, base [4]float32) {
	mvp := r.frame.Projection.Mul(r.frame.View).Mul(model)
	light := r.frame.LightDir.Normalize()
	ambient := r.frame.Ambient

	for i := 0; i+2 < len(g.Indices); i += 3 {
		i0, i1, i2 := g.Indices[i], g.Indices[i+1], g.Indices[i+2]

		var sv [3]screenVertex
		visible := true
		for k, idx := range [3]uint32{i0, i1, i2} {
			p := g.Positions[idx]
			clip := mvp.MulVec4(math.Vec4{p[0], p[1], p[2], 1})
			if clip[3] <= nearW {
				visible = false
				break
			}
			sv[k] = r.toScreen(clip)
		}
		if !visible {
			continue
		}

		// Screen Y grows downward, so front faces have negative area here.
		area := edge(sv[0], sv[1], sv[2])
		if area >= 0 {
			continue
		}

		w0 := model.MulPoint(math.V3(g.Positions[i0]))
		w1 := model.MulPoint(math.V3(g.Positions[i1]))
		w2 := model.MulPoint(math.V3(g.Positions[i2]))
		normal := w1.Sub(w0).Cross(w2.Sub(w0)).Normalize()

		c := toBytes(gpu.Shade(base, normal, light, ambient))
		r.fill(sv, area, c)
	}
}

func (r *rasterizer) toScreen(clip math.Vec4) screenVertex {
	b := r.color.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())
	nx, ny, nz := clip[0]/clip[3], clip[1]/clip[3], clip[2]/clip[3]
	return screenVertex{
		x: (nx + 1) * 0.5 * w,
		y: (1 - ny) * 0.5 * h,
		z: nz,
	}
}

// fill rasterizes a triangle using barycentric coordinates at pixel centers.
func (r *rasterizer) fill(sv [3]screenVertex, area float32, c [4]uint8) {
	b := r.color.Bounds()
	minX := clampInt(int(gomath.Floor(float64(min3(sv[0].x, sv[1].x, sv[2].x)))), 0, b.Dx()-1)
	maxX := clampInt(int(gomath.Ceil(float64(max3(sv[0].x, sv[1].x, sv[2].x)))), 0, b.Dx()-1)
	minY := clampInt(int(gomath.Floor(float64(min3(sv[0].y, sv[1].y, sv[2].y)))), 0, b.Dy()-1)
	maxY := clampInt(int(gomath.Ceil(float64(max3(sv[0].y, sv[1].y, sv[2].y)))), 0, b.Dy()-1)

	stride := b.Dx()
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := screenVertex{x: float32(x) + 0.5, y: float32(y) + 0.5}
			b0 := edge(sv[1], sv[2], p) / area
			b1 := edge(sv[2], sv[0], p) / area
			b2 := edge(sv[0], sv[1], p) / area
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}

			z := b0*sv[0].z + b1*sv[1].z + b2*sv[2].z
			if z < -1 || z > 1 {
				continue
			}
			di := y*stride + x
			if z >= r.depth[di] {
				continue
			}
			r.depth[di] = z

			o := r.color.PixOffset(x, y)
			r.color.Pix[o], r.color.Pix[o+1], r.color.Pix[o+2], r.color.Pix[o+3] = c[0], c[1], c[2], c[3]
		}
	}
}

func edge(a, b, p screenVertex) float32 {
	return (b.x-a.x)*(p.y-a.y) - (b.y-a.y)*(p.x-a.x)
}

func toBytes(c [4]float32) [4]uint8 {
	var out [4]uint8
	for i, v := range c {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		out[i] = uint8(v*255 + 0.5)
	}
	return out
}

func min3(a, b, c float32) float32 {
	return min(a, min(b, c))
}

func max3(a, b, c float32) float32 {
	return max(a, max(b, c))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
