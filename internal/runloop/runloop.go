// Package runloop provides the single-threaded frame loop that owns all
// viewer state. Background goroutines hand results back with Post; per-frame
// work is scheduled with RequestFrame and runs on the next Tick.
package runloop

import (
	"sync"
	"time"
)

// FrameID identifies a scheduled frame callback. Zero is never issued.
type FrameID uint64

// FrameFunc is called once per Tick while scheduled.
type FrameFunc func(now time.Time)

// Loop queues tasks and frame callbacks for the owning goroutine.
type Loop struct {
	mu     sync.Mutex
	tasks  []func()
	frames map[FrameID]FrameFunc
	order  []FrameID
	nextID FrameID
	wake   chan struct{}
}

// New creates an empty loop.
func New() *Loop {
	return &Loop{
		frames: make(map[FrameID]FrameFunc),
		wake:   make(chan struct{}, 1),
	}
}

// Post queues fn to run on the loop goroutine during the next Tick.
// Safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Wake is signaled when tasks are posted. Loops that block between frames
// can select on it.
func (l *Loop) Wake() <-chan struct{} {
	return l.wake
}

// RequestFrame schedules fn to run on every Tick until canceled.
func (l *Loop) RequestFrame(fn FrameFunc) FrameID {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	id := l.nextID
	l.frames[id] = fn
	l.order = append(l.order, id)
	return id
}

// CancelFrame unschedules a frame callback. Canceling an unknown or already
// canceled id is a no-op. A callback canceled during a Tick does not run
// later in that Tick.
func (l *Loop) CancelFrame(id FrameID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.frames[id]; !ok {
		return
	}
	delete(l.frames, id)
	for i, o := range l.order {
		if o == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// PendingFrames returns the number of scheduled frame callbacks.
func (l *Loop) PendingFrames() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frames)
}

// Tick runs posted tasks, then each frame callback scheduled at the start of
// the tick, in scheduling order.
func (l *Loop) Tick(now time.Time) {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()

	for _, task := range tasks {
		task()
	}

	l.mu.Lock()
	ids := append([]FrameID(nil), l.order...)
	l.mu.Unlock()

	for _, id := range ids {
		l.mu.Lock()
		fn, ok := l.frames[id]
		l.mu.Unlock()
		if ok {
			fn(now)
		}
	}
}

// Drain runs Ticks until no tasks are queued, bounded by max iterations.
// Returns the number of Ticks run.
func (l *Loop) Drain(now time.Time, max int) int {
	n := 0
	for ; n < max; n++ {
		l.mu.Lock()
		idle := len(l.tasks) == 0
		l.mu.Unlock()
		if idle {
			break
		}
		l.Tick(now)
	}
	return n
}
