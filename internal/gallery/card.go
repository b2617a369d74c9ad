package gallery

import (
	"image"

	"github.com/Faultbox/buildings-gallery/internal/catalog"
	"github.com/Faultbox/buildings-gallery/internal/engine/gpu"
	"github.com/Faultbox/buildings-gallery/internal/engine/input"
)

// Mode is what a card currently displays.
type Mode int

const (
	ModePlaceholder Mode = iota
	ModeSurface
	ModeImage
)

func (m Mode) String() string {
	switch m {
	case ModeSurface:
		return "surface"
	case ModeImage:
		return "image"
	default:
		return "placeholder"
	}
}

// Card is one catalog entry on the grid. It implements viewer.Container.
type Card struct {
	entry   catalog.Building
	rect    Rect
	bus     *input.Bus
	surface gpu.Surface
	image   image.Image
	hovered bool
	removed bool
}

func newCard(b catalog.Building, r Rect) *Card {
	return &Card{entry: b, rect: r, bus: input.NewBus()}
}

func (c *Card) ID() string                { return c.entry.ID }
func (c *Card) Size() (int, int)          { return c.rect.W, c.rect.H }
func (c *Card) Events() *input.Bus        { return c.bus }
func (c *Card) Entry() catalog.Building   { return c.entry }
func (c *Card) Rect() Rect                { return c.rect }
func (c *Card) Surface() gpu.Surface      { return c.surface }
func (c *Card) Image() image.Image        { return c.image }
func (c *Card) Hovered() bool             { return c.hovered }
func (c *Card) ShowSurface(s gpu.Surface) { c.surface = s }
func (c *Card) ShowPlaceholder()          { c.surface, c.image = nil, nil }
func (c *Card) showImage(img image.Image) { c.surface, c.image = nil, img }

// RemoveSurface detaches s if it is the surface on display.
func (c *Card) RemoveSurface(s gpu.Surface) {
	if c.surface == s {
		c.surface = nil
	}
}

// Mode reports what the card displays.
func (c *Card) Mode() Mode {
	switch {
	case c.surface != nil:
		return ModeSurface
	case c.image != nil:
		return ModeImage
	default:
		return ModePlaceholder
	}
}

func (c *Card) dispatch(t input.EventType, x, y int) {
	c.bus.Dispatch(input.Event{Type: t, X: x, Y: y})
}
