package gallery

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/buildings-gallery/internal/asset"
	"github.com/Faultbox/buildings-gallery/internal/catalog"
	"github.com/Faultbox/buildings-gallery/internal/detail"
	"github.com/Faultbox/buildings-gallery/internal/engine/gpu"
	"github.com/Faultbox/buildings-gallery/internal/engine/input"
	"github.com/Faultbox/buildings-gallery/internal/runloop"
)

const appTitle = "Buildings Gallery"

// App switches between the grid and the full viewer. Opening a card
// unmounts the grid so its previews release their surfaces; Escape closes
// the viewer and mounts the grid again.
type App struct {
	// SnapshotDir receives viewer snapshots taken with the S key.
	SnapshotDir string

	loop    *runloop.Loop
	loader  *asset.Loader
	device  gpu.Device
	gallery *Gallery
	log     *zap.Logger

	manifest *catalog.Manifest
	viewer   *detail.Viewer
	status   detail.Status

	width, height int
}

// NewApp creates an app over a gallery. The viewer draws through device
// and loads through loader.
func NewApp(loop *runloop.Loop, loader *asset.Loader, device gpu.Device, g *Gallery, width, height int, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{
		loop:    loop,
		loader:  loader,
		device:  device,
		gallery: g,
		log:     log.Named("app"),
		width:   width,
		height:  height,
	}
	g.Resize(width, height)
	g.OnOpen(a.Open)
	return a
}

// Gallery returns the grid.
func (a *App) Gallery() *Gallery { return a.gallery }

// Viewer returns the open viewer, or nil while the grid is shown.
func (a *App) Viewer() *detail.Viewer { return a.viewer }

// Status returns the last viewer status.
func (a *App) Status() detail.Status { return a.status }

// SetManifest mounts m, or the empty state for err.
func (a *App) SetManifest(m *catalog.Manifest, err error) {
	if err != nil {
		a.manifest = nil
		a.gallery.MountError(err)
		return
	}
	a.manifest = m
	if a.viewer == nil {
		a.gallery.Mount(m)
	}
}

// Open shows entry in the full viewer.
func (a *App) Open(entry catalog.Building) {
	if a.viewer == nil {
		a.gallery.Unmount()
		v, err := detail.New(a.loop, a.loader, a.device, a.width, a.height, a.setStatus, a.log)
		if err != nil {
			a.log.Error("viewer unavailable", zap.String("id", entry.ID), zap.Error(err))
			a.gallery.Mount(a.manifest)
			return
		}
		a.viewer = v
	}
	a.viewer.Show(entry)
}

// OpenID opens the manifest entry with the given id; "" opens the default.
func (a *App) OpenID(id string) error {
	if a.manifest == nil {
		return fmt.Errorf("open %q: %w", id, catalog.ErrManifest)
	}
	b, err := a.manifest.Find(id)
	if err != nil {
		return err
	}
	a.Open(b)
	return nil
}

// Back closes the viewer and mounts the grid again.
func (a *App) Back() {
	if a.viewer == nil {
		return
	}
	a.viewer.Close()
	a.viewer = nil
	a.status = detail.Status{}
	a.gallery.Mount(a.manifest)
}

func (a *App) setStatus(s detail.Status) { a.status = s }

// HandleEvent routes a window event to the viewer or the grid.
func (a *App) HandleEvent(e input.Event) {
	if e.Type == input.EventResize {
		a.width, a.height = e.Width, e.Height
	}
	if a.viewer == nil {
		a.gallery.HandleEvent(e)
		return
	}
	if e.Type == input.EventKeyDown {
		switch e.Key {
		case input.KeyEscape:
			a.Back()
			return
		case input.KeyS:
			if _, err := a.viewer.Snapshot(a.SnapshotDir); err != nil {
				a.log.Warn("snapshot failed", zap.Error(err))
			}
			return
		}
	}
	a.viewer.HandleEvent(e)
	if e.Type == input.EventResize {
		a.gallery.Resize(e.Width, e.Height)
	}
}

// Title describes the current view for the window title.
func (a *App) Title() string {
	if a.viewer == nil {
		if c := a.gallery.Hovered(); c != nil {
			return appTitle + " - " + c.Entry().Name
		}
		return appTitle
	}
	s := a.status
	name := s.Entry.Name
	switch {
	case s.Err != nil:
		return fmt.Sprintf("%s - %s (failed to load)", appTitle, name)
	case s.Loading:
		return fmt.Sprintf("%s - %s (loading %d%%)", appTitle, name, s.Percent)
	default:
		if by := s.Entry.Byline(); by != "" {
			return fmt.Sprintf("%s - %s %s", appTitle, name, by)
		}
		return appTitle + " - " + name
	}
}
