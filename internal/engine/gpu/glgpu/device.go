// Package glgpu implements the gpu device contract on OpenGL 4.1 core.
// All calls must happen on the thread that owns the GL context.
package glgpu

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/buildings-gallery/internal/asset"
	"github.com/Faultbox/buildings-gallery/internal/engine/gpu"
)

const meshVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vNormal;

void main() {
    vNormal = mat3(uModel) * aNormal;
    gl_Position = uProjection * uView * uModel * vec4(aPosition, 1.0);
}
`

const meshFragmentShader = `#version 410 core
in vec3 vNormal;

uniform vec4 uBaseColor;
uniform vec3 uLightDir;
uniform float uAmbient;

out vec4 FragColor;

void main() {
    float diff = max(dot(normalize(vNormal), normalize(uLightDir)), 0.0);
    float k = uAmbient + (1.0 - uAmbient) * diff;
    FragColor = vec4(uBaseColor.rgb * k, uBaseColor.a);
}
`

// Device is an OpenGL gpu.Device.
type Device struct {
	log *zap.Logger

	program       uint32
	locModel      int32
	locView       int32
	locProjection int32
	locBaseColor  int32
	locLightDir   int32
	locAmbient    int32
}

// New initializes OpenGL bindings and compiles the mesh program.
// Must be called after the GL context is created.
func New(log *zap.Logger) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	d := &Device{log: log.Named("gl")}
	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	var err error
	d.program, err = compileProgram(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh program: %w", err)
	}
	d.locModel = uniform(d.program, "uModel")
	d.locView = uniform(d.program, "uView")
	d.locProjection = uniform(d.program, "uProjection")
	d.locBaseColor = uniform(d.program, "uBaseColor")
	d.locLightDir = uniform(d.program, "uLightDir")
	d.locAmbient = uniform(d.program, "uAmbient")

	return d, nil
}

// Close deletes the shared program. Surfaces and meshes must be released first.
func (d *Device) Close() {
	if d.program != 0 {
		gl.DeleteProgram(d.program)
		d.program = 0
	}
}

// NewSurface implements gpu.Device.
func (d *Device) NewSurface(width, height int) (gpu.Surface, error) {
	return newSurface(d, int32(width), int32(height))
}

// NewMesh implements gpu.Device.
func (d *Device) NewMesh(g *asset.Geometry) (gpu.Mesh, error) {
	if g == nil || len(g.Indices) == 0 {
		return nil, errors.New("empty geometry")
	}
	return uploadMesh(g), nil
}

// NewMaterial implements gpu.Device.
func (d *Device) NewMaterial(m asset.Material) (gpu.Material, error) {
	return &Material{color: m.BaseColor}, nil
}

// Material holds the uniforms for one draw. It owns no GL object.
type Material struct {
	color    [4]float32
	released bool
}

// Release implements gpu.Material.
func (m *Material) Release() {
	m.released = true
}
