// Package scene builds per-viewer GPU instances of shared models.
package scene

import (
	"fmt"

	"github.com/Faultbox/buildings-gallery/internal/asset"
	"github.com/Faultbox/buildings-gallery/internal/engine/gpu"
	"github.com/Faultbox/buildings-gallery/pkg/math"
)

// Instance owns the meshes and materials uploaded for one viewer's copy of
// a model. The model itself is shared and never modified.
type Instance struct {
	model     *asset.Model
	meshes    []gpu.Mesh
	materials []gpu.Material
	items     []gpu.DrawItem
	released  bool
}

// NewInstance uploads m to dev. Nodes sharing geometry or a material share
// the uploaded object. On error everything already uploaded is released.
func NewInstance(dev gpu.Device, m *asset.Model) (_ *Instance, err error) {
	inst := &Instance{model: m}
	defer func() {
		if err != nil {
			inst.Release()
		}
	}()

	meshes := make(map[*asset.Geometry]gpu.Mesh)
	materials := make(map[int]gpu.Material)

	for _, n := range m.Nodes {
		mesh, ok := meshes[n.Geometry]
		if !ok {
			mesh, err = dev.NewMesh(n.Geometry)
			if err != nil {
				return nil, fmt.Errorf("uploading mesh for node %q: %w", n.Name, err)
			}
			meshes[n.Geometry] = mesh
			inst.meshes = append(inst.meshes, mesh)
		}

		key := n.Material
		if key < 0 || key >= len(m.Materials) {
			key = -1
		}
		mat, ok := materials[key]
		if !ok {
			mat, err = dev.NewMaterial(m.MaterialOf(n))
			if err != nil {
				return nil, fmt.Errorf("uploading material for node %q: %w", n.Name, err)
			}
			materials[key] = mat
			inst.materials = append(inst.materials, mat)
		}

		inst.items = append(inst.items, gpu.DrawItem{Mesh: mesh, Material: mat, Model: n.Transform})
	}

	return inst, nil
}

// Model returns the shared model.
func (i *Instance) Model() *asset.Model {
	return i.model
}

// Bounds returns the world bounds of the model.
func (i *Instance) Bounds() math.Box3 {
	return i.model.Bounds()
}

// Frame builds a frame drawing every node with the default light.
func (i *Instance) Frame(view, projection math.Mat4, clear [4]float32) *gpu.Frame {
	return &gpu.Frame{
		View:       view,
		Projection: projection,
		Clear:      clear,
		LightDir:   gpu.DefaultLightDir,
		Ambient:    gpu.DefaultAmbient,
		Items:      i.items,
	}
}

// Released reports whether Release has run.
func (i *Instance) Released() bool {
	return i.released
}

// Release frees meshes, then materials. Calling it again is a no-op.
func (i *Instance) Release() {
	if i.released {
		return
	}
	i.released = true
	for _, m := range i.meshes {
		m.Release()
	}
	for _, m := range i.materials {
		m.Release()
	}
	i.meshes, i.materials, i.items = nil, nil, nil
}
