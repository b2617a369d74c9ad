package scene

import (
	"errors"
	"testing"

	"github.com/Faultbox/buildings-gallery/internal/asset"
	"github.com/Faultbox/buildings-gallery/internal/asset/assettest"
	"github.com/Faultbox/buildings-gallery/internal/engine/gpu/soft"
	"github.com/Faultbox/buildings-gallery/pkg/math"
)

func twoNodeModel() *asset.Model {
	m := assettest.Box(1)
	n := m.Nodes[0]
	n.Name = "annex"
	n.Transform = math.Translate(3, 0, 0)
	n.Material = -1
	m.Nodes = append(m.Nodes, n)
	return m
}

func TestNewInstanceSharesUploads(t *testing.T) {
	dev := soft.New()
	inst, err := NewInstance(dev, twoNodeModel())
	if err != nil {
		t.Fatal(err)
	}

	if got := dev.Live(); got != (soft.Counts{Meshes: 1, Materials: 2}) {
		t.Errorf("live = %+v, want one shared mesh and two materials", got)
	}
	f := inst.Frame(math.Identity(), math.Identity(), [4]float32{})
	if len(f.Items) != 2 {
		t.Errorf("items = %d", len(f.Items))
	}

	inst.Release()
	inst.Release()
	if dev.Live().Total() != 0 {
		t.Errorf("live after release = %+v", dev.Live())
	}
	if !inst.Released() {
		t.Error("Released() = false")
	}
}

func TestNewInstanceReleasesOnFailure(t *testing.T) {
	dev := soft.New()
	dev.FailMaterials = true

	inst, err := NewInstance(dev, twoNodeModel())
	if !errors.Is(err, soft.ErrInjected) {
		t.Fatalf("err = %v", err)
	}
	if inst != nil {
		t.Error("expected nil instance on failure")
	}
	if dev.Live().Total() != 0 {
		t.Errorf("partial uploads leaked: %+v", dev.Live())
	}
}
