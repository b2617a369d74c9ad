package viewer

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/buildings-gallery/internal/asset"
	"github.com/Faultbox/buildings-gallery/internal/catalog"
	"github.com/Faultbox/buildings-gallery/internal/engine/gpu"
	"github.com/Faultbox/buildings-gallery/internal/engine/input"
	"github.com/Faultbox/buildings-gallery/internal/runloop"
)

// Config controls pool limits and appearance.
type Config struct {
	// MaxSurfaces caps live surfaces; 0 means unbounded. Handles whose model
	// loaded past the cap keep their placeholder and are promoted in order
	// as surfaces are released.
	MaxSurfaces int
	ClearColor  [4]float32
}

// DefaultClearColor is the preview background.
var DefaultClearColor = [4]float32{0.94, 0.94, 0.94, 1}

// Stats reports pool occupancy.
type Stats struct {
	Handles  int
	Loading  int
	Ready    int
	Failed   int
	Waiting  int
	Surfaces int
}

// Pool owns every live preview handle.
type Pool struct {
	loop   *runloop.Loop
	loader *asset.Loader
	device gpu.Device
	cfg    Config
	log    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	handles  map[string]*Handle
	waiting  []*Handle
	surfaces int
	closed   bool
}

// NewPool creates a pool. log may be nil.
func NewPool(loop *runloop.Loop, loader *asset.Loader, device gpu.Device, cfg Config, log *zap.Logger) *Pool {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.ClearColor == ([4]float32{}) {
		cfg.ClearColor = DefaultClearColor
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		loop:    loop,
		loader:  loader,
		device:  device,
		cfg:     cfg,
		log:     log.Named("pool"),
		ctx:     ctx,
		cancel:  cancel,
		handles: make(map[string]*Handle),
	}
}

// Attach creates a handle for the container and starts loading the entry's
// model. A handle already attached to the same container is disposed first.
// After Close, the returned handle is already disposed.
func (p *Pool) Attach(c Container, entry catalog.Building) *Handle {
	if old, ok := p.handles[c.ID()]; ok {
		p.log.Debug("superseding viewer", zap.String("id", c.ID()))
		old.Dispose()
	}

	h := &Handle{pool: p, container: c, entry: entry, state: Created}
	if p.closed {
		h.state = Disposed
		return h
	}
	p.handles[c.ID()] = h

	c.ShowPlaceholder()
	h.removeSub = c.Events().Subscribe(input.EventRemove, func(input.Event) { h.Dispose() })
	h.startLoad()
	return h
}

// Handle returns the handle attached to the container id.
func (p *Pool) Handle(id string) (*Handle, bool) {
	h, ok := p.handles[id]
	return h, ok
}

// Detach disposes the handle attached to the container id, if any.
func (p *Pool) Detach(id string) {
	if h, ok := p.handles[id]; ok {
		h.Dispose()
	}
}

// Close disposes every handle and abandons pending load waits. Loads
// already in flight still complete into the asset cache.
func (p *Pool) Close() {
	if p.closed {
		return
	}
	ids := make([]string, 0, len(p.handles))
	for id := range p.handles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p.handles[id].Dispose()
	}
	p.closed = true
	p.cancel()
	p.log.Debug("pool closed", zap.Int("handles", len(ids)))
}

// Stats returns current occupancy.
func (p *Pool) Stats() Stats {
	s := Stats{Handles: len(p.handles), Waiting: len(p.waiting), Surfaces: p.surfaces}
	for _, h := range p.handles {
		switch h.state {
		case Loading:
			s.Loading++
		case Ready:
			s.Ready++
		case Failed:
			s.Failed++
		}
	}
	return s
}

func (p *Pool) surfaceAvailable() bool {
	return p.cfg.MaxSurfaces <= 0 || p.surfaces < p.cfg.MaxSurfaces
}

func (p *Pool) enqueue(h *Handle) {
	p.waiting = append(p.waiting, h)
	p.log.Debug("viewer waiting for a surface",
		zap.String("id", h.ID()),
		zap.Int("queue", len(p.waiting)),
	)
}

func (p *Pool) dequeue(h *Handle) {
	for i, w := range p.waiting {
		if w == h {
			p.waiting = append(p.waiting[:i], p.waiting[i+1:]...)
			return
		}
	}
}

// promote activates waiting handles while surfaces are available.
func (p *Pool) promote() {
	for len(p.waiting) > 0 && p.surfaceAvailable() {
		h := p.waiting[0]
		p.waiting = p.waiting[1:]
		if h.state == Loading && h.model != nil {
			h.activate()
		}
	}
}

func (p *Pool) forget(h *Handle) {
	if p.handles[h.ID()] == h {
		delete(p.handles, h.ID())
	}
	p.dequeue(h)
}
