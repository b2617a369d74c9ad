// Package viewer manages the live 3D previews shown on gallery cards.
//
// A Pool attaches one Handle per card container. Each handle loads its model
// through the shared asset.Loader, then owns a surface, a hover camera, a
// GPU instance of the model and the event subscriptions that drive it. All
// Pool and Handle methods must be called from the runloop goroutine; load
// results are handed back with runloop.Post.
package viewer

import (
	"github.com/Faultbox/buildings-gallery/internal/engine/gpu"
	"github.com/Faultbox/buildings-gallery/internal/engine/input"
)

// State is a handle's lifecycle state.
type State int

const (
	Created State = iota
	Loading
	Ready
	Failed
	Disposed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	case Disposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Container is the card a viewer draws into.
type Container interface {
	ID() string
	Size() (width, height int)
	ShowPlaceholder()
	ShowSurface(s gpu.Surface)
	RemoveSurface(s gpu.Surface)
	// Events delivers pointer, resize and remove events in container-local
	// coordinates.
	Events() *input.Bus
}
