// Package soft is a pure-Go z-buffered triangle rasterizer implementing the
// gpu device contract. It renders headless and counts live resources.
package soft

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/Faultbox/buildings-gallery/internal/asset"
	"github.com/Faultbox/buildings-gallery/internal/engine/gpu"
)

// ErrInjected is returned by operations configured to fail.
var ErrInjected = errors.New("injected failure")

// Counts reports live resources by kind.
type Counts struct {
	Surfaces  int
	Meshes    int
	Materials int
}

// Total returns the number of live resources.
func (c Counts) Total() int {
	return c.Surfaces + c.Meshes + c.Materials
}

// Device is a software gpu.Device.
type Device struct {
	mu    sync.Mutex
	live  Counts
	draws int

	// MaxSurfaces makes NewSurface fail once this many surfaces are live (0 = unlimited).
	MaxSurfaces int
	// FailDraws makes every Draw fail.
	FailDraws bool
	// FailMaterials makes NewMaterial fail.
	FailMaterials bool
	// OnRelease, if set, is called after a resource is released with its
	// kind: "surface", "mesh" or "material".
	OnRelease func(kind string)
}

// New creates a device.
func New() *Device {
	return &Device{}
}

// Live returns the live resource counts.
func (d *Device) Live() Counts {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

// Draws returns the number of successful draws across all surfaces.
func (d *Device) Draws() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draws
}

func (d *Device) adjust(fn func(*Counts)) {
	d.mu.Lock()
	fn(&d.live)
	d.mu.Unlock()
}

func (d *Device) release(kind string, fn func(*Counts)) {
	d.adjust(fn)
	if d.OnRelease != nil {
		d.OnRelease(kind)
	}
}

// NewSurface implements gpu.Device.
func (d *Device) NewSurface(width, height int) (gpu.Surface, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}

	d.mu.Lock()
	if d.MaxSurfaces > 0 && d.live.Surfaces >= d.MaxSurfaces {
		d.mu.Unlock()
		return nil, fmt.Errorf("surface limit %d reached: %w", d.MaxSurfaces, ErrInjected)
	}
	d.live.Surfaces++
	d.mu.Unlock()

	s := &Surface{dev: d}
	s.alloc(width, height)
	return s, nil
}

// NewMesh implements gpu.Device. Geometry is referenced, not copied; it is
// shared read-only.
func (d *Device) NewMesh(g *asset.Geometry) (gpu.Mesh, error) {
	if g == nil || len(g.Indices)%3 != 0 {
		return nil, errors.New("invalid geometry")
	}
	d.adjust(func(c *Counts) { c.Meshes++ })
	return &Mesh{dev: d, geometry: g}, nil
}

// NewMaterial implements gpu.Device.
func (d *Device) NewMaterial(m asset.Material) (gpu.Material, error) {
	d.mu.Lock()
	fail := d.FailMaterials
	d.mu.Unlock()
	if fail {
		return nil, fmt.Errorf("material %q: %w", m.Name, ErrInjected)
	}
	d.adjust(func(c *Counts) { c.Materials++ })
	return &Material{dev: d, color: m.BaseColor}, nil
}

// Mesh is software geometry.
type Mesh struct {
	dev      *Device
	geometry *asset.Geometry
	once     sync.Once
	released bool
}

// Release implements gpu.Mesh.
func (m *Mesh) Release() {
	m.once.Do(func() {
		m.released = true
		m.dev.release("mesh", func(c *Counts) { c.Meshes-- })
	})
}

// Material is a flat base color.
type Material struct {
	dev      *Device
	color    [4]float32
	once     sync.Once
	released bool
}

// Release implements gpu.Material.
func (m *Material) Release() {
	m.once.Do(func() {
		m.released = true
		m.dev.release("material", func(c *Counts) { c.Materials-- })
	})
}

// Surface is a color and depth buffer pair.
type Surface struct {
	dev      *Device
	color    *image.RGBA
	depth    []float32
	frames   int
	once     sync.Once
	released bool
}

func (s *Surface) alloc(width, height int) {
	s.color = image.NewRGBA(image.Rect(0, 0, width, height))
	s.depth = make([]float32, width*height)
}

// Size implements gpu.Surface.
func (s *Surface) Size() (int, int) {
	b := s.color.Bounds()
	return b.Dx(), b.Dy()
}

// Resize implements gpu.Surface. Contents are discarded.
func (s *Surface) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if w, h := s.Size(); w == width && h == height {
		return
	}
	s.alloc(width, height)
}

// Frames returns the number of frames drawn to this surface.
func (s *Surface) Frames() int {
	return s.frames
}

// Draw implements gpu.Surface.
func (s *Surface) Draw(f *gpu.Frame) error {
	if s.released {
		return gpu.ErrReleased
	}
	s.dev.mu.Lock()
	fail := s.dev.FailDraws
	s.dev.mu.Unlock()
	if fail {
		return fmt.Errorf("draw: %w", ErrInjected)
	}

	r := rasterizer{color: s.color, depth: s.depth, frame: f}
	r.clear()
	for i, item := range f.Items {
		mesh, ok := item.Mesh.(*Mesh)
		if !ok || mesh.released {
			return fmt.Errorf("item %d: mesh: %w", i, gpu.ErrReleased)
		}
		mat, ok := item.Material.(*Material)
		if !ok || mat.released {
			return fmt.Errorf("item %d: material: %w", i, gpu.ErrReleased)
		}
		r.drawMesh(mesh.geometry, item.Model, mat.color)
	}

	s.frames++
	s.dev.mu.Lock()
	s.dev.draws++
	s.dev.mu.Unlock()
	return nil
}

// ReadPixels implements gpu.Surface.
func (s *Surface) ReadPixels() (*image.RGBA, error) {
	if s.released {
		return nil, gpu.ErrReleased
	}
	out := image.NewRGBA(s.color.Bounds())
	copy(out.Pix, s.color.Pix)
	return out, nil
}

// Release implements gpu.Surface.
func (s *Surface) Release() {
	s.once.Do(func() {
		s.released = true
		s.dev.release("surface", func(c *Counts) { c.Surfaces-- })
	})
}
