// Package gallery lays catalog entries out as a grid of cards and routes
// window input to them. Cards show a live preview from a viewer.Pool or a
// static thumbnail, depending on the variant.
package gallery

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/buildings-gallery/internal/catalog"
	"github.com/Faultbox/buildings-gallery/internal/engine/input"
	"github.com/Faultbox/buildings-gallery/internal/runloop"
	"github.com/Faultbox/buildings-gallery/internal/thumbnail"
	"github.com/Faultbox/buildings-gallery/internal/viewer"
)

// Variant selects how cards render.
type Variant string

const (
	VariantInteractive Variant = "interactive"
	VariantRaster      Variant = "raster"
)

// ParseVariant parses a variant name. The empty string means interactive.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(s)) {
	case "", VariantInteractive:
		return VariantInteractive, nil
	case VariantRaster:
		return VariantRaster, nil
	}
	return "", fmt.Errorf("unknown gallery variant %q", s)
}

const (
	scrollStep   = 60
	emptyMessage = "No buildings in the catalog"
)

// Config controls the grid.
type Config struct {
	Variant Variant
	Layout  Layout
}

// Gallery is the card grid. All methods run on the loop goroutine.
type Gallery struct {
	loop   *runloop.Loop
	pool   *viewer.Pool
	raster *thumbnail.Rasterizer
	cfg    Config
	log    *zap.Logger

	cards   []*Card
	hovered *Card
	pressed *Card
	cancel  context.CancelFunc
	message string
	onOpen  func(catalog.Building)

	width, height int
	scroll        int
}

// New creates a gallery. pool serves the interactive variant and raster
// the raster variant; the other may be nil.
func New(loop *runloop.Loop, pool *viewer.Pool, raster *thumbnail.Rasterizer, cfg Config, log *zap.Logger) *Gallery {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Layout.CardWidth <= 0 || cfg.Layout.CardHeight <= 0 {
		cfg.Layout = DefaultLayout()
	}
	if cfg.Variant == "" {
		cfg.Variant = VariantInteractive
	}
	return &Gallery{
		loop:   loop,
		pool:   pool,
		raster: raster,
		cfg:    cfg,
		log:    log.Named("gallery"),
	}
}

// OnOpen sets the callback run when a card is clicked.
func (g *Gallery) OnOpen(fn func(catalog.Building)) { g.onOpen = fn }

// Cards returns the mounted cards in manifest order.
func (g *Gallery) Cards() []*Card { return g.cards }

// Message returns the empty-state text, or "" when cards are mounted.
func (g *Gallery) Message() string { return g.message }

// Variant returns the card rendering variant.
func (g *Gallery) Variant() Variant { return g.cfg.Variant }

// Hovered returns the card under the pointer, or nil.
func (g *Gallery) Hovered() *Card { return g.hovered }

// Card returns the mounted card with the given id.
func (g *Gallery) Card(id string) (*Card, bool) {
	for _, c := range g.cards {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// Mount replaces the grid with one card per manifest entry.
func (g *Gallery) Mount(m *catalog.Manifest) {
	g.Unmount()
	if m == nil || len(m.Buildings) == 0 {
		g.message = emptyMessage
		return
	}
	g.message = ""

	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel

	for i, b := range m.Buildings {
		c := newCard(b, g.cfg.Layout.Place(i, g.width))
		g.cards = append(g.cards, c)

		switch {
		case g.cfg.Variant == VariantRaster && g.raster != nil:
			c.ShowPlaceholder()
			g.rasterize(ctx, c)
		case g.cfg.Variant == VariantInteractive && g.pool != nil:
			g.pool.Attach(c, b)
		default:
			c.ShowPlaceholder()
		}
	}

	g.log.Info("gallery mounted",
		zap.Int("cards", len(g.cards)),
		zap.String("variant", string(g.cfg.Variant)),
	)
}

// MountError shows the empty state for a catalog that could not be loaded.
func (g *Gallery) MountError(err error) {
	g.Unmount()
	g.message = fmt.Sprintf("Could not load the catalog: %v", err)
	g.log.Error("catalog unavailable", zap.Error(err))
}

func (g *Gallery) rasterize(ctx context.Context, c *Card) {
	raster, loop, log := g.raster, g.loop, g.log
	entry := c.entry
	go func() {
		img, err := raster.Image(ctx, entry)
		loop.Post(func() {
			if c.removed {
				return
			}
			if err != nil {
				log.Warn("thumbnail unavailable", zap.String("id", entry.ID), zap.Error(err))
				return
			}
			c.showImage(img)
		})
	}()
}

// Unmount removes every card. Live previews dispose through the remove
// event on each card's bus.
func (g *Gallery) Unmount() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	for _, c := range g.cards {
		c.removed = true
		c.hovered = false
		c.bus.Dispatch(input.Event{Type: input.EventRemove})
	}
	g.cards = nil
	g.hovered = nil
	g.pressed = nil
	g.scroll = 0
}

// HandleEvent routes a window event to the grid.
func (g *Gallery) HandleEvent(e input.Event) {
	switch e.Type {
	case input.EventResize:
		g.Resize(e.Width, e.Height)
	case input.EventPointerMove:
		g.hover(e.X, e.Y)
	case input.EventPointerLeave:
		g.leave()
	case input.EventPointerDown:
		g.pressed = g.cardAt(e.X, e.Y)
	case input.EventPointerUp:
		c := g.cardAt(e.X, e.Y)
		pressed := g.pressed
		g.pressed = nil
		if c != nil && c == pressed {
			g.click(c, e)
		}
	case input.EventWheel:
		g.scrollBy(-int(e.WheelY * scrollStep))
		g.hover(e.X, e.Y)
	}
}

func (g *Gallery) click(c *Card, e input.Event) {
	r := g.screenRect(c)
	c.dispatch(input.EventClick, e.X-r.X, e.Y-r.Y)
	g.log.Debug("card opened", zap.String("id", c.ID()))
	if g.onOpen != nil {
		g.onOpen(c.entry)
	}
}

func (g *Gallery) hover(x, y int) {
	c := g.cardAt(x, y)
	if c != g.hovered {
		g.leave()
		if c != nil {
			r := g.screenRect(c)
			c.hovered = true
			g.hovered = c
			c.dispatch(input.EventPointerEnter, x-r.X, y-r.Y)
		}
	}
	if c != nil {
		r := g.screenRect(c)
		c.dispatch(input.EventPointerMove, x-r.X, y-r.Y)
	}
}

func (g *Gallery) leave() {
	if g.hovered == nil {
		return
	}
	c := g.hovered
	g.hovered = nil
	c.hovered = false
	c.dispatch(input.EventPointerLeave, 0, 0)
}

func (g *Gallery) cardAt(x, y int) *Card {
	for _, c := range g.cards {
		if g.screenRect(c).Contains(x, y) {
			return c
		}
	}
	return nil
}

func (g *Gallery) screenRect(c *Card) Rect {
	r := c.rect
	r.Y -= g.scroll
	return r
}

func (g *Gallery) scrollBy(dy int) {
	limit := max(g.cfg.Layout.ContentHeight(len(g.cards), g.width)-g.height, 0)
	g.scroll = min(max(g.scroll+dy, 0), limit)
}

// Resize re-flows the grid for a new viewport. Cards whose size changes
// receive a resize event.
func (g *Gallery) Resize(width, height int) {
	g.width, g.height = width, height
	for i, c := range g.cards {
		r := g.cfg.Layout.Place(i, width)
		resized := r.W != c.rect.W || r.H != c.rect.H
		c.rect = r
		if resized {
			c.bus.Dispatch(input.Event{Type: input.EventResize, Width: r.W, Height: r.H})
		}
	}
	g.scrollBy(0)
}

// Visible calls fn for each card intersecting the viewport, with its
// rectangle in window coordinates.
func (g *Gallery) Visible(fn func(c *Card, r Rect)) {
	for _, c := range g.cards {
		r := g.screenRect(c)
		if r.Y+r.H > 0 && (g.height == 0 || r.Y < g.height) {
			fn(c, r)
		}
	}
}
