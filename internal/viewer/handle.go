package viewer

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

// Handle is one card's live preview.
type Handle struct {
	pool      *Pool
	container Container
	entry     catalog.Building
	state     State

	// model is borrowed from the asset cache and never released here.
	model    *asset.Model
	instance *scene.Instance
	surface  gpu.Surface
	orbit    *camera.HoverOrbit

	frame      runloop.FrameID
	subs       runloop.SubscriptionList
	removeSub  *runloop.Subscription
	cancelLoad context.CancelFunc
	hovering   bool
	frames     int
	err        error
}

// ID returns the container id.
func (h *Handle) ID() string { return h.container.ID() }

// Entry returns the catalog entry being previewed.
func (h *Handle) Entry() catalog.Building { return h.entry }

// State returns the lifecycle state.
func (h *Handle) State() State { return h.state }

// Err returns the load or render error that moved the handle to Failed.
func (h *Handle) Err() error { return h.err }

// Surface returns the render surface while Ready.
func (h *Handle) Surface() gpu.Surface { return h.surface }

// Orbit returns the hover camera while Ready.
func (h *Handle) Orbit() *camera.HoverOrbit { return h.orbit }

// Frames returns how many frames were drawn.
func (h *Handle) Frames() int { return h.frames }

// Hovering reports whether the pointer is over the container.
func (h *Handle) Hovering() bool { return h.hovering }

// Waiting reports whether the model loaded but no surface is free yet.
func (h *Handle) Waiting() bool {
	return h.state == Loading && h.model != nil
}

func (h *Handle) log() *zap.Logger {
	return h.pool.log.With(zap.String("id", h.ID()), zap.String("model", h.entry.ModelPath))
}

func (h *Handle) startLoad() {
	h.state = Loading
	ctx, cancel := context.WithCancel(h.pool.ctx)
	h.cancelLoad = cancel

	path := h.entry.ModelPath
	loader, loop := h.pool.loader, h.pool.loop
	go func() {
		model, err := loader.Load(ctx, path)
		loop.Post(func() { h.resolve(model, err) })
	}()
}

// resolve runs on the loop once the load settles or the wait is abandoned.
func (h *Handle) resolve(model *asset.Model, err error) {
	if h.state != Loading {
		// Disposed while loading: the result is dropped and nothing is built.
		return
	}
	if err != nil {
		h.fail(err)
		return
	}

	h.model = model
	if !h.pool.surfaceAvailable() {
		h.pool.enqueue(h)
		return
	}
	h.activate()
}

// activate moves Loading to Ready.
func (h *Handle) activate() {
	inst, err := scene.NewInstance(h.pool.device, h.model)
	if err != nil {
		h.fail(err)
		return
	}

	w, ht := h.container.Size()
	surface, err := h.pool.device.NewSurface(w, ht)
	if err != nil {
		inst.Release()
		h.fail(err)
		return
	}
	h.pool.surfaces++

	h.instance = inst
	h.surface = surface
	h.orbit = camera.NewHoverOrbit(h.model.Bounds())

	bus := h.container.Events()
	h.subs.Add(
		bus.Subscribe(input.EventPointerEnter, h.onPointerEnter),
		bus.Subscribe(input.EventPointerMove, h.onPointerMove),
		bus.Subscribe(input.EventPointerLeave, h.onPointerLeave),
		bus.Subscribe(input.EventResize, h.onResize),
	)

	h.container.ShowSurface(surface)
	h.state = Ready
	h.frame = h.pool.loop.RequestFrame(h.render)

	h.log().Debug("viewer ready",
		zap.Int("width", w),
		zap.Int("height", ht),
		zap.Int("triangles", h.model.TriangleCount()),
	)
}

func (h *Handle) fail(err error) {
	h.state = Failed
	h.err = err
	h.model = nil
	h.log().Warn("viewer failed", zap.Error(err))
}

func (h *Handle) render(time.Time) {
	if h.state != Ready {
		return
	}
	h.orbit.Step()

	w, ht := h.surface.Size()
	aspect := float32(w) / float32(max(ht, 1))
	f := h.instance.Frame(h.orbit.View(), h.orbit.Projection(aspect), h.pool.cfg.ClearColor)
	if err := h.surface.Draw(f); err != nil {
		h.teardown()
		h.container.ShowPlaceholder()
		h.fail(err)
		h.pool.promote()
		return
	}
	h.frames++
}

func (h *Handle) onPointerEnter(e input.Event) {
	h.hovering = true
	h.onPointerMove(e)
}

func (h *Handle) onPointerMove(e input.Event) {
	w, ht := h.surface.Size()
	h.orbit.PointerMove(float32(e.X)/float32(max(w, 1)), float32(e.Y)/float32(max(ht, 1)))
}

func (h *Handle) onPointerLeave(input.Event) {
	h.hovering = false
	h.orbit.PointerLeave()
}

func (h *Handle) onResize(e input.Event) {
	h.surface.Resize(e.Width, e.Height)
}

// Dispose releases everything the handle owns. It is safe to call in any
// state and more than once.
func (h *Handle) Dispose() {
	if h.state == Disposed {
		return
	}
	prev := h.state
	h.state = Disposed

	if h.cancelLoad != nil {
		h.cancelLoad()
	}
	released := h.teardown()
	h.removeSub.Cancel()
	h.removeSub = nil
	h.model = nil
	h.pool.forget(h)

	h.log().Debug("viewer disposed", zap.Stringer("from", prev))
	if released {
		h.pool.promote()
	}
}

// teardown releases GPU state in a fixed order: frame callback, event
// subscriptions, instance, surface, then the container's reference.
// It reports whether a surface was released.
func (h *Handle) teardown() bool {
	if h.frame != 0 {
		h.pool.loop.CancelFrame(h.frame)
		h.frame = 0
	}
	h.subs.CancelAll()
	if h.instance != nil {
		h.instance.Release()
		h.instance = nil
	}
	surface := h.surface
	if surface == nil {
		return false
	}
	surface.Release()
	h.surface = nil
	h.orbit = nil
	h.pool.surfaces--
	h.container.RemoveSurface(surface)
	return true
}
