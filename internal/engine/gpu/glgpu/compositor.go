package glgpu

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/buildings-gallery/internal/engine/gpu"
)

const quadVertexShader = `#version 410 core
layout (location = 0) in vec2 aCorner;

uniform vec4 uRect;
uniform float uFlip;

out vec2 vTexCoord;

void main() {
    vec2 pos = uRect.xy + aCorner * uRect.zw;
    vTexCoord = vec2(aCorner.x, mix(aCorner.y, 1.0 - aCorner.y, uFlip));
    gl_Position = vec4(pos, 0.0, 1.0);
}
`

const quadFragmentShader = `#version 410 core
in vec2 vTexCoord;

uniform sampler2D uTexture;

out vec4 FragColor;

void main() {
    FragColor = texture(uTexture, vTexCoord);
}
`

// Compositor draws surfaces, images and flat rectangles into the window.
// Rectangles are in window pixels with the origin at the top left.
type Compositor struct {
	program  uint32
	vao, vbo uint32
	locRect  int32
	locFlip  int32
	locTex   int32

	width, height int
	images        map[string]uint32
}

// NewCompositor creates the quad program and geometry.
func NewCompositor() (*Compositor, error) {
	program, err := compileProgram(quadVertexShader, quadFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("quad program: %w", err)
	}
	c := &Compositor{
		program: program,
		locRect: uniform(program, "uRect"),
		locFlip: uniform(program, "uFlip"),
		locTex:  uniform(program, "uTexture"),
		images:  make(map[string]uint32),
	}

	corners := []float32{0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1}
	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)
	gl.GenBuffers(1, &c.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(corners)*4, gl.Ptr(corners), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 8, 0)
	gl.BindVertexArray(0)

	return c, nil
}

// Begin binds the window framebuffer and clears it.
func (c *Compositor) Begin(width, height int, clear [4]float32) {
	c.width, c.height = width, height
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.Disable(gl.DEPTH_TEST)
	gl.ClearColor(clear[0], clear[1], clear[2], clear[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// FillRect fills r with a solid color.
func (c *Compositor) FillRect(r image.Rectangle, color [4]float32) {
	gl.Enable(gl.SCISSOR_TEST)
	gl.Scissor(int32(r.Min.X), int32(c.height-r.Max.Y), int32(r.Dx()), int32(r.Dy()))
	gl.ClearColor(color[0], color[1], color[2], color[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.Disable(gl.SCISSOR_TEST)
}

// DrawSurface blits a GL surface into r. Surfaces from other devices are ignored.
func (c *Compositor) DrawSurface(s gpu.Surface, r image.Rectangle) {
	gs, ok := s.(*Surface)
	if !ok || gs.colorTexture == 0 {
		return
	}
	c.drawTexture(gs.colorTexture, r, false)
}

// DrawImage uploads img once under key and draws it into r.
func (c *Compositor) DrawImage(key string, img image.Image, r image.Rectangle) {
	tex, ok := c.images[key]
	if !ok {
		tex = uploadImage(img)
		c.images[key] = tex
	}
	c.drawTexture(tex, r, true)
}

// ForgetImage deletes the texture uploaded under key.
func (c *Compositor) ForgetImage(key string) {
	if tex, ok := c.images[key]; ok {
		gl.DeleteTextures(1, &tex)
		delete(c.images, key)
	}
}

func (c *Compositor) drawTexture(tex uint32, r image.Rectangle, flip bool) {
	if c.width == 0 || c.height == 0 {
		return
	}
	w, h := float32(c.width), float32(c.height)
	x0 := float32(r.Min.X)/w*2 - 1
	y0 := float32(c.height-r.Max.Y)/h*2 - 1

	gl.UseProgram(c.program)
	gl.Uniform4f(c.locRect, x0, y0, float32(r.Dx())/w*2, float32(r.Dy())/h*2)
	var f float32
	if flip {
		f = 1
	}
	gl.Uniform1f(c.locFlip, f)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.Uniform1i(c.locTex, 0)

	gl.BindVertexArray(c.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

func uploadImage(img image.Image) uint32 {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != rgba.Rect.Dx()*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(rgba.Rect.Dx()), int32(rgba.Rect.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	return tex
}

// Close deletes all compositor GL objects.
func (c *Compositor) Close() {
	for key := range c.images {
		c.ForgetImage(key)
	}
	if c.vao != 0 {
		gl.DeleteVertexArrays(1, &c.vao)
		c.vao = 0
	}
	if c.vbo != 0 {
		gl.DeleteBuffers(1, &c.vbo)
		c.vbo = 0
	}
	if c.program != 0 {
		gl.DeleteProgram(c.program)
		c.program = 0
	}
}
