package glgpu

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/buildings-gallery/internal/engine/gpu"
)

// Surface is a framebuffer object with a color texture and a depth
// renderbuffer.
type Surface struct {
	dev          *Device
	fbo          uint32
	colorTexture uint32
	depthRBO     uint32
	width        int32
	height       int32
}

func newSurface(dev *Device, width, height int32) (*Surface, error) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	s := &Surface{dev: dev, width: width, height: height}

	gl.GenFramebuffers(1, &s.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, s.fbo)

	gl.GenTextures(1, &s.colorTexture)
	gl.BindTexture(gl.TEXTURE_2D, s.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, s.colorTexture, 0)

	gl.GenRenderbuffers(1, &s.depthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, s.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, width, height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, s.depthRBO)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		s.Release()
		return nil, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return s, nil
}

// Size implements gpu.Surface.
func (s *Surface) Size() (int, int) {
	return int(s.width), int(s.height)
}

// ColorTexture returns the color attachment for compositing.
func (s *Surface) ColorTexture() uint32 {
	return s.colorTexture
}

// Resize implements gpu.Surface.
func (s *Surface) Resize(width, height int) {
	w, h := int32(max(width, 1)), int32(max(height, 1))
	if w == s.width && h == s.height {
		return
	}
	s.width, s.height = w, h

	gl.BindTexture(gl.TEXTURE_2D, s.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, w, h, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.BindRenderbuffer(gl.RENDERBUFFER, s.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, w, h)
}

// Draw implements gpu.Surface.
func (s *Surface) Draw(f *gpu.Frame) error {
	if s.fbo == 0 {
		return gpu.ErrReleased
	}

	var prevFBO int32
	var prevViewport [4]int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.GetIntegerv(gl.VIEWPORT, &prevViewport[0])
	defer func() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
		gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])
	}()

	gl.BindFramebuffer(gl.FRAMEBUFFER, s.fbo)
	gl.Viewport(0, 0, s.width, s.height)
	gl.ClearColor(f.Clear[0], f.Clear[1], f.Clear[2], f.Clear[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)

	d := s.dev
	gl.UseProgram(d.program)
	gl.UniformMatrix4fv(d.locProjection, 1, false, f.Projection.Ptr())
	gl.UniformMatrix4fv(d.locView, 1, false, f.View.Ptr())
	gl.Uniform3f(d.locLightDir, f.LightDir.X, f.LightDir.Y, f.LightDir.Z)
	gl.Uniform1f(d.locAmbient, f.Ambient)

	for i := range f.Items {
		item := &f.Items[i]
		mesh, ok := item.Mesh.(*Mesh)
		if !ok || mesh.vao == 0 {
			return fmt.Errorf("item %d: mesh: %w", i, gpu.ErrReleased)
		}
		mat, ok := item.Material.(*Material)
		if !ok || mat.released {
			return fmt.Errorf("item %d: material: %w", i, gpu.ErrReleased)
		}

		gl.UniformMatrix4fv(d.locModel, 1, false, item.Model.Ptr())
		gl.Uniform4f(d.locBaseColor, mat.color[0], mat.color[1], mat.color[2], mat.color[3])
		gl.BindVertexArray(mesh.vao)
		gl.DrawElements(gl.TRIANGLES, mesh.indexCount, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
	gl.Disable(gl.CULL_FACE)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("draw: GL error 0x%x", code)
	}
	return nil
}

// ReadPixels implements gpu.Surface. GL rows start at the bottom, so the
// result is flipped.
func (s *Surface) ReadPixels() (*image.RGBA, error) {
	if s.fbo == 0 {
		return nil, gpu.ErrReleased
	}
	w, h := int(s.width), int(s.height)
	pixels := make([]byte, w*h*4)

	var prevFBO int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, s.fbo)
	gl.ReadPixels(0, 0, s.width, s.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	rowSize := w * 4
	for y := 0; y < h; y++ {
		src := (h - 1 - y) * rowSize
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[src:src+rowSize])
	}
	return img, nil
}

// Release implements gpu.Surface.
func (s *Surface) Release() {
	if s.fbo != 0 {
		gl.DeleteFramebuffers(1, &s.fbo)
		s.fbo = 0
	}
	if s.colorTexture != 0 {
		gl.DeleteTextures(1, &s.colorTexture)
		s.colorTexture = 0
	}
	if s.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &s.depthRBO)
		s.depthRBO = 0
	}
}
