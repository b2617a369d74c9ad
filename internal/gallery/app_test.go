package gallery

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/Faultbox/buildings-gallery/internal/catalog"
	"github.com/Faultbox/buildings-gallery/internal/engine/input"
)

func newApp(f *fixture) *App {
	a := NewApp(f.loop, f.loader, f.device, f.gallery, 200, 100, nil)
	a.SetManifest(manifest(), nil)
	return a
}

func TestOpenAndBack(t *testing.T) {
	f := newFixture(t, VariantInteractive)
	a := newApp(f)
	f.settle(func() bool { return f.pool.Stats().Ready == 2 })

	f.gallery.HandleEvent(input.Event{Type: input.EventPointerDown, X: 140, Y: 20})
	a.HandleEvent(input.Event{Type: input.EventPointerUp, X: 140, Y: 20})

	if a.Viewer() == nil {
		t.Fatal("viewer not opened")
	}
	if len(f.gallery.Cards()) != 0 || f.pool.Stats().Handles != 0 {
		t.Error("grid still mounted behind the viewer")
	}
	f.settle(func() bool { return a.Viewer().Instance() != nil })
	if got := a.Title(); got != "Buildings Gallery - Tower by Ada" {
		t.Errorf("title = %q", got)
	}
	if live := f.device.Live(); live.Surfaces != 1 {
		t.Errorf("live = %+v, want only the viewer surface", live)
	}

	a.SnapshotDir = t.TempDir()
	a.HandleEvent(input.Event{Type: input.EventKeyDown, Key: input.KeyS})
	if shots, _ := os.ReadDir(a.SnapshotDir); len(shots) != 1 {
		t.Errorf("snapshots = %d, want 1", len(shots))
	}

	a.HandleEvent(input.Event{Type: input.EventKeyDown, Key: input.KeyEscape})
	if a.Viewer() != nil {
		t.Fatal("escape did not close the viewer")
	}
	if len(f.gallery.Cards()) != 3 {
		t.Errorf("cards = %d after back", len(f.gallery.Cards()))
	}
	f.settle(func() bool { return f.pool.Stats().Ready == 2 })
	if live := f.device.Live(); live.Surfaces != 2 {
		t.Errorf("live = %+v after back", live)
	}
}

func TestOpenID(t *testing.T) {
	f := newFixture(t, VariantInteractive)
	a := newApp(f)

	if err := a.OpenID(""); err != nil {
		t.Fatal(err)
	}
	if got := a.Viewer().Entry().ID; got != catalog.DefaultID {
		t.Errorf("opened %q, want default", got)
	}
	if !strings.Contains(a.Title(), "loading") {
		t.Errorf("title = %q", a.Title())
	}

	if err := a.OpenID("atlantis"); err == nil {
		t.Error("unknown id opened")
	}
	a.Back()
	a.Back()
	if a.Viewer() != nil {
		t.Error("viewer still open")
	}
}

func TestOpenWithoutManifest(t *testing.T) {
	f := newFixture(t, VariantInteractive)
	a := NewApp(f.loop, f.loader, f.device, f.gallery, 200, 100, nil)
	a.SetManifest(nil, catalog.ErrManifest)

	if err := a.OpenID("castle"); !errors.Is(err, catalog.ErrManifest) {
		t.Errorf("err = %v", err)
	}
	if f.gallery.Message() == "" {
		t.Error("no empty-state message")
	}
	if a.Title() != appTitle {
		t.Errorf("title = %q", a.Title())
	}
}
