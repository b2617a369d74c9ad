package asset

import (
	"sync"

	"github.com/Faultbox/buildings-gallery/internal/fetch"
)

// EvictionPolicy decides which resolved entries leave the cache.
// Admit is called once per key when its load settles and returns keys to drop.
type EvictionPolicy interface {
	Admit(key string) (evict []string)
	Forget(key string)
}

// Unbounded keeps every entry for the lifetime of the cache.
func Unbounded() EvictionPolicy { return unbounded{} }

type unbounded struct{}

func (unbounded) Admit(string) []string { return nil }
func (unbounded) Forget(string)         {}

// MaxEntries keeps at most n settled entries, evicting the oldest first.
func MaxEntries(n int) EvictionPolicy {
	if n < 1 {
		n = 1
	}
	return &fifo{limit: n}
}

type fifo struct {
	limit int
	order []string
}

func (f *fifo) Admit(key string) []string {
	f.order = append(f.order, key)
	if len(f.order) <= f.limit {
		return nil
	}
	n := len(f.order) - f.limit
	evict := append([]string(nil), f.order[:n]...)
	f.order = f.order[n:]
	return evict
}

func (f *fifo) Forget(key string) {
	for i, k := range f.order {
		if k == key {
			f.order = append(f.order[:i], f.order[i+1:]...)
			return
		}
	}
}

// entry is the shared token for one asset path: pending until done is closed,
// then immutable.
type entry struct {
	done  chan struct{}
	model *Model
	err   error

	// Progress of the pending fetch, fanned out to every attached waiter.
	mu        sync.Mutex
	listeners map[int]fetch.ProgressFunc
	nextID    int
	loaded    int64
	total     int64
	reported  bool
}

// listen attaches fn to the entry's progress and replays the latest report.
// The returned func detaches it.
func (e *entry) listen(fn fetch.ProgressFunc) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.listeners == nil {
		e.listeners = make(map[int]fetch.ProgressFunc)
	}
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	if e.reported {
		fn(e.loaded, e.total)
	}

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// report records a progress update and forwards it to every listener.
// Listeners run under the entry lock so each sees reports in order; they must
// not start loads of their own.
func (e *entry) report(loaded, total int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.loaded, e.total, e.reported = loaded, total, true
	for _, fn := range e.listeners {
		fn(loaded, total)
	}
}

func (e *entry) settled() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// CacheStats reports cache usage.
type CacheStats struct {
	Entries int
	Pending int
	Hits    int
	Misses  int
}

// Cache maps asset paths to pending or settled loads. A key is written once
// by the first requester; later requesters attach to the same entry.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	policy  EvictionPolicy

	hits   int
	misses int
}

// NewCache creates a cache with the given policy (nil means Unbounded).
func NewCache(policy EvictionPolicy) *Cache {
	if policy == nil {
		policy = Unbounded()
	}
	return &Cache{
		entries: make(map[string]*entry),
		policy:  policy,
	}
}

// acquire returns the entry for key, creating a pending one if needed.
// created is true only for the caller that must perform the load; settled
// reports whether the entry had already resolved when it was acquired.
func (c *Cache) acquire(key string) (e *entry, created, settled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.hits++
		return e, false, e.settled()
	}
	c.misses++
	e = &entry{done: make(chan struct{})}
	c.entries[key] = e
	return e, true, false
}

// settle publishes the result of a load and applies the eviction policy.
func (c *Cache) settle(key string, e *entry, model *Model, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e.model, e.err = model, err
	close(e.done)

	if c.entries[key] != e {
		return
	}
	for _, k := range c.policy.Admit(key) {
		if old, ok := c.entries[k]; ok && old.settled() {
			delete(c.entries, k)
		}
	}
}

// Peek returns the settled result for key without starting a load.
// ok is false while the key is absent or still pending.
func (c *Cache) Peek(key string) (model *Model, ok bool, err error) {
	c.mu.Lock()
	e, found := c.entries[key]
	c.mu.Unlock()

	if !found || !e.settled() {
		return nil, false, nil
	}
	return e.model, true, e.err
}

// Clear drops all settled entries. Pending loads stay so their waiters still resolve.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if e.settled() {
			delete(c.entries, k)
			c.policy.Forget(k)
		}
	}
}

// Stats returns a snapshot of cache usage.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
	for _, e := range c.entries {
		if !e.settled() {
			s.Pending++
		}
	}
	return s
}
