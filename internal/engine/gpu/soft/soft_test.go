package soft

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/buildings-gallery/internal/asset/assettest"
	"github.com/Faultbox/buildings-gallery/internal/engine/gpu"
	"github.com/Faultbox/buildings-gallery/pkg/math"
)

func boxFrame(t *testing.T, d *Device) (*gpu.Frame, func()) {
	t.Helper()
	m := assettest.Box(1)
	mesh, err := d.NewMesh(m.Nodes[0].Geometry)
	if err != nil {
		t.Fatal(err)
	}
	mat, err := d.NewMaterial(m.Materials[0])
	if err != nil {
		t.Fatal(err)
	}
	f := &gpu.Frame{
		View:       math.LookAt(math.Vec3{X: 3, Y: 3, Z: 3}, math.Vec3{}, math.Vec3{Y: 1}),
		Projection: math.Perspective(gomath.Pi/4, 1, 0.1, 100),
		Clear:      [4]float32{0, 0, 0, 1},
		LightDir:   gpu.DefaultLightDir,
		Ambient:    gpu.DefaultAmbient,
		Items:      []gpu.DrawItem{{Mesh: mesh, Material: mat, Model: math.Identity()}},
	}
	return f, func() {
		mesh.Release()
		mat.Release()
	}
}

func TestDrawCoversCenter(t *testing.T) {
	d := New()
	s, err := d.NewSurface(64, 64)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Release()
	f, release := boxFrame(t, d)
	defer release()

	if err := s.Draw(f); err != nil {
		t.Fatal(err)
	}
	img, err := s.ReadPixels()
	if err != nil {
		t.Fatal(err)
	}

	center := img.RGBAAt(32, 32)
	if center.R == 0 && center.G == 0 && center.B == 0 {
		t.Error("box not drawn at the image center")
	}
	corner := img.RGBAAt(0, 0)
	if corner.R != 0 || corner.G != 0 || corner.B != 0 || corner.A != 255 {
		t.Errorf("corner = %+v, want clear color", corner)
	}
	if d.Draws() != 1 {
		t.Errorf("draws = %d", d.Draws())
	}
}

func TestDrawIsDeterministic(t *testing.T) {
	d := New()
	f, release := boxFrame(t, d)
	defer release()

	var pix [][]byte
	for i := 0; i < 2; i++ {
		s, err := d.NewSurface(48, 32)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Draw(f); err != nil {
			t.Fatal(err)
		}
		img, _ := s.ReadPixels()
		pix = append(pix, img.Pix)
		s.Release()
	}
	if string(pix[0]) != string(pix[1]) {
		t.Error("identical frames produced different pixels")
	}
}

func TestLiveCounts(t *testing.T) {
	d := New()
	s, _ := d.NewSurface(8, 8)
	f, release := boxFrame(t, d)

	if got := d.Live(); got != (Counts{Surfaces: 1, Meshes: 1, Materials: 1}) {
		t.Errorf("live = %+v", got)
	}

	release()
	release()
	s.Release()
	s.Release()
	if got := d.Live(); got.Total() != 0 {
		t.Errorf("live after release = %+v", got)
	}

	if err := s.Draw(f); !errors.Is(err, gpu.ErrReleased) {
		t.Errorf("draw on released surface: %v", err)
	}
}

func TestDrawWithReleasedMesh(t *testing.T) {
	d := New()
	s, _ := d.NewSurface(8, 8)
	defer s.Release()
	f, release := boxFrame(t, d)
	release()

	if err := s.Draw(f); !errors.Is(err, gpu.ErrReleased) {
		t.Errorf("err = %v, want ErrReleased", err)
	}
}

func TestInjectedFailures(t *testing.T) {
	d := New()
	d.MaxSurfaces = 1
	s, err := d.NewSurface(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.NewSurface(4, 4); !errors.Is(err, ErrInjected) {
		t.Errorf("second surface: %v", err)
	}

	d.FailDraws = true
	if err := s.Draw(&gpu.Frame{}); !errors.Is(err, ErrInjected) {
		t.Errorf("draw: %v", err)
	}

	d.FailMaterials = true
	if _, err := d.NewMaterial(assettest.Box(1).Materials[0]); !errors.Is(err, ErrInjected) {
		t.Errorf("material: %v", err)
	}
	s.Release()
	if d.Live().Total() != 0 {
		t.Errorf("live = %+v", d.Live())
	}
}

func TestResize(t *testing.T) {
	d := New()
	s, _ := d.NewSurface(10, 10)
	defer s.Release()
	s.Resize(20, 5)
	if w, h := s.Size(); w != 20 || h != 5 {
		t.Errorf("size = %dx%d", w, h)
	}
	s.Resize(0, 0)
	if w, h := s.Size(); w != 1 || h != 1 {
		t.Errorf("size = %dx%d, want 1x1", w, h)
	}
}
