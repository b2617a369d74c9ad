// Package detail is the full-window viewer opened from a gallery card:
// one model, drag to orbit, wheel to zoom.
package detail

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/buildings-gallery/internal/asset"
	"github.com/Faultbox/buildings-gallery/internal/catalog"
	"github.com/Faultbox/buildings-gallery/internal/engine/camera"
	"github.com/Faultbox/buildings-gallery/internal/engine/gpu"
	"github.com/Faultbox/buildings-gallery/internal/engine/input"
	"github.com/Faultbox/buildings-gallery/internal/engine/scene"
	"github.com/Faultbox/buildings-gallery/internal/runloop"
)

// Status describes the load state shown over the viewer.
type Status struct {
	Entry   catalog.Building
	Loading bool
	Percent int
	Err     error
}

// StatusFunc receives status changes on the loop goroutine.
type StatusFunc func(Status)

// Viewer renders one model into a window-sized surface.
type Viewer struct {
	loop   *runloop.Loop
	loader *asset.Loader
	device gpu.Device
	log    *zap.Logger
	status StatusFunc

	surface  gpu.Surface
	camera   *camera.OrbitCamera
	instance *scene.Instance
	entry    catalog.Building
	clear    [4]float32

	frame  runloop.FrameID
	seq    uint64
	cancel context.CancelFunc
	closed bool

	dragging     bool
	lastX, lastY int
	drawErr      error
}

// New creates a viewer with its surface and starts its frame callback.
func New(loop *runloop.Loop, loader *asset.Loader, device gpu.Device, width, height int, status StatusFunc, log *zap.Logger) (*Viewer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if status == nil {
		status = func(Status) {}
	}
	surface, err := device.NewSurface(width, height)
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		loop:    loop,
		loader:  loader,
		device:  device,
		log:     log.Named("detail"),
		status:  status,
		surface: surface,
		camera:  camera.NewOrbitCamera(),
		clear:   [4]float32{0.94, 0.94, 0.94, 1},
	}
	v.frame = loop.RequestFrame(v.render)
	return v, nil
}

// Show starts loading entry's model. The displayed model is swapped when
// the load succeeds; a later Show supersedes a load still in flight.
func (v *Viewer) Show(entry catalog.Building) {
	if v.closed {
		return
	}
	if v.cancel != nil {
		v.cancel()
	}
	v.seq++
	seq := v.seq
	v.entry = entry

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.status(Status{Entry: entry, Loading: true})

	loader, loop := v.loader, v.loop
	go func() {
		progress := func(loaded, total int64) {
			pct := 0
			if total > 0 {
				pct = int(loaded * 100 / total)
			}
			loop.Post(func() {
				if v.current(seq) {
					v.status(Status{Entry: entry, Loading: true, Percent: pct})
				}
			})
		}
		model, err := loader.LoadWithProgress(ctx, entry.ModelPath, progress)
		loop.Post(func() { v.apply(seq, model, err) })
	}()
}

func (v *Viewer) current(seq uint64) bool {
	return !v.closed && seq == v.seq
}

func (v *Viewer) apply(seq uint64, model *asset.Model, err error) {
	if !v.current(seq) {
		return
	}
	if err != nil {
		v.log.Warn("model load failed", zap.String("id", v.entry.ID), zap.Error(err))
		v.status(Status{Entry: v.entry, Err: err})
		return
	}

	inst, err := scene.NewInstance(v.device, model)
	if err != nil {
		v.log.Warn("model upload failed", zap.String("id", v.entry.ID), zap.Error(err))
		v.status(Status{Entry: v.entry, Err: err})
		return
	}

	if v.instance != nil {
		v.instance.Release()
	}
	v.instance = inst
	v.drawErr = nil
	v.camera.FitToBounds(model.Bounds())

	v.log.Debug("model shown",
		zap.String("id", v.entry.ID),
		zap.Int("triangles", model.TriangleCount()),
	)
	v.status(Status{Entry: v.entry, Percent: 100})
}

func (v *Viewer) render(time.Time) {
	v.camera.Update()

	w, h := v.surface.Size()
	proj := v.camera.ProjectionMatrix(float32(w) / float32(max(h, 1)))
	f := &gpu.Frame{View: v.camera.ViewMatrix(), Projection: proj, Clear: v.clear}
	if v.instance != nil {
		f = v.instance.Frame(f.View, f.Projection, v.clear)
	}

	if err := v.surface.Draw(f); err != nil {
		if v.drawErr == nil {
			v.log.Warn("draw failed", zap.String("id", v.entry.ID), zap.Error(err))
			v.status(Status{Entry: v.entry, Err: err})
		}
		v.drawErr = err
	}
}

// HandleEvent applies window events: drag to orbit, wheel to zoom, resize.
func (v *Viewer) HandleEvent(e input.Event) {
	switch e.Type {
	case input.EventPointerDown:
		v.dragging = true
		v.lastX, v.lastY = e.X, e.Y
	case input.EventPointerUp, input.EventPointerLeave:
		v.dragging = false
	case input.EventPointerMove:
		if v.dragging {
			v.camera.HandleDrag(float32(e.X-v.lastX), float32(e.Y-v.lastY))
			v.lastX, v.lastY = e.X, e.Y
		}
	case input.EventWheel:
		v.camera.HandleZoom(e.WheelY)
	case input.EventResize:
		v.surface.Resize(e.Width, e.Height)
	}
}

// Surface returns the render target.
func (v *Viewer) Surface() gpu.Surface { return v.surface }

// Camera returns the orbit camera.
func (v *Viewer) Camera() *camera.OrbitCamera { return v.camera }

// Entry returns the entry last passed to Show.
func (v *Viewer) Entry() catalog.Building { return v.entry }

// Instance returns the displayed instance, or nil before the first load.
func (v *Viewer) Instance() *scene.Instance { return v.instance }

// Close stops rendering and releases the instance, then the surface.
func (v *Viewer) Close() {
	if v.closed {
		return
	}
	v.closed = true
	if v.cancel != nil {
		v.cancel()
	}
	v.loop.CancelFrame(v.frame)
	if v.instance != nil {
		v.instance.Release()
		v.instance = nil
	}
	v.surface.Release()
}
