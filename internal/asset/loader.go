package asset

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/buildings-gallery/internal/fetch"
)

// Loader fetches and decodes models, deduplicating concurrent requests for
// the same path through its Cache.
type Loader struct {
	fetcher fetch.Fetcher
	decode  DecodeFunc
	cache   *Cache
	log     *zap.Logger

	// ctx bounds in-flight loads; it is independent of any caller's context.
	ctx    context.Context
	cancel context.CancelFunc

	loads atomic.Int64
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithCache sets the cache the loader populates.
func WithCache(c *Cache) LoaderOption {
	return func(l *Loader) { l.cache = c }
}

// WithDecoder replaces the glTF decoder.
func WithDecoder(fn DecodeFunc) LoaderOption {
	return func(l *Loader) { l.decode = fn }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) LoaderOption {
	return func(l *Loader) { l.log = log }
}

// NewLoader creates a loader reading through f.
func NewLoader(f fetch.Fetcher, opts ...LoaderOption) *Loader {
	l := &Loader{
		fetcher: f,
		decode:  Decode,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.cache == nil {
		l.cache = NewCache(Unbounded())
	}
	l.log = l.log.Named("asset")
	l.ctx, l.cancel = context.WithCancel(context.Background())
	return l
}

// Load returns the model at path. Concurrent and later callers for the same
// path share one fetch and decode and observe the same result. A failed path
// keeps failing with the cached *LoadError; it is not retried.
//
// Canceling ctx abandons only this caller's wait: the load keeps running and
// still populates the cache.
func (l *Loader) Load(ctx context.Context, path string) (*Model, error) {
	return l.LoadWithProgress(ctx, path, nil)
}

// LoadWithProgress is Load with byte progress for the underlying fetch.
// Every caller waiting on a pending load receives its progress, starting
// with the latest report. Callers of an already settled path receive a
// single completion report.
func (l *Loader) LoadWithProgress(ctx context.Context, path string, progress fetch.ProgressFunc) (*Model, error) {
	e, created, settled := l.cache.acquire(path)
	if progress != nil && !settled {
		detach := e.listen(progress)
		defer detach()
	}
	if created {
		l.loads.Add(1)
		go l.run(path, e)
	}

	select {
	case <-e.done:
		if settled && progress != nil && e.err == nil {
			progress(1, 1)
		}
		return e.model, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Loader) run(path string, e *entry) {
	log := l.log.With(zap.String("path", path))
	log.Debug("loading model")

	// A malformed file must fail its own path only, never the process.
	defer func() {
		if r := recover(); r != nil && !e.settled() {
			log.Error("model load panicked", zap.Any("panic", r))
			l.cache.settle(path, e, nil, &LoadError{Path: path, Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	data, err := l.fetcher.Fetch(l.ctx, path, e.report)
	if err != nil {
		log.Warn("model fetch failed", zap.Error(err))
		l.cache.settle(path, e, nil, &LoadError{Path: path, Err: err})
		return
	}

	model, err := l.decode(path, data)
	if err != nil {
		log.Warn("model decode failed", zap.Error(err))
		l.cache.settle(path, e, nil, &LoadError{Path: path, Err: err})
		return
	}

	log.Debug("model loaded",
		zap.Int("nodes", len(model.Nodes)),
		zap.Int("triangles", model.TriangleCount()),
		zap.Int("bytes", len(data)),
	)
	l.cache.settle(path, e, model, nil)
}

// Cache returns the loader's cache.
func (l *Loader) Cache() *Cache {
	return l.cache
}

// Loads returns how many underlying fetch+decode operations were started.
func (l *Loader) Loads() int64 {
	return l.loads.Load()
}

// Close aborts in-flight fetches. Their waiters resolve with the fetch error.
func (l *Loader) Close() {
	l.cancel()
}
