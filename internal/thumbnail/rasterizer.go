// Package thumbnail renders each catalog entry once into a still image and
// caches the encoded result.
package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // supplied thumbnails may be JPEG
	"image/png"
	gomath "math"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/sync/singleflight"

	"github.com/Faultbox/buildings-gallery/internal/asset"
	"github.com/Faultbox/buildings-gallery/internal/catalog"
	"github.com/Faultbox/buildings-gallery/internal/engine/camera"
	"github.com/Faultbox/buildings-gallery/internal/engine/gpu"
	"github.com/Faultbox/buildings-gallery/internal/engine/scene"
	"github.com/Faultbox/buildings-gallery/internal/fetch"
	"github.com/Faultbox/buildings-gallery/pkg/math"
)

// ErrRasterize marks a failed thumbnail render.
var ErrRasterize = errors.New("rasterize failed")

// Default output parameters.
const (
	DefaultWidth       = 400
	DefaultHeight      = 300
	DefaultSupersample = 2
	DefaultMargin      = 1.5
)

// DefaultFOV is the vertical field of view used for framing.
const DefaultFOV = gomath.Pi / 4

// Option configures a Rasterizer.
type Option func(*Rasterizer)

// WithSize sets the output size in pixels.
func WithSize(width, height int) Option {
	return func(r *Rasterizer) { r.width, r.height = width, height }
}

// WithSupersample renders at factor times the output size and downscales.
func WithSupersample(factor int) Option {
	return func(r *Rasterizer) { r.supersample = factor }
}

// WithCache sets the image cache.
func WithCache(c *Cache) Option {
	return func(r *Rasterizer) { r.cache = c }
}

// WithFetcher enables pre-supplied thumbnails read through f.
func WithFetcher(f fetch.Fetcher) Option {
	return func(r *Rasterizer) { r.fetcher = f }
}

// WithClearColor sets the background.
func WithClearColor(c [4]float32) Option {
	return func(r *Rasterizer) { r.clear = c }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Rasterizer) { r.log = log }
}

// Rasterizer produces PNG thumbnails, rendering each entry at most once.
// Concurrent requests for the same entry share one render. Failed renders
// are not cached and are attempted again on the next request.
type Rasterizer struct {
	loader  *asset.Loader
	device  gpu.Device
	fetcher fetch.Fetcher
	cache   *Cache
	log     *zap.Logger

	width, height int
	supersample   int
	clear         [4]float32

	group singleflight.Group
	// mu serializes device use.
	mu sync.Mutex

	renders atomic.Int64
	hits    atomic.Int64
}

// New creates a rasterizer. The device must be usable from any goroutine;
// the software device is.
func New(loader *asset.Loader, device gpu.Device, opts ...Option) *Rasterizer {
	r := &Rasterizer{
		loader:      loader,
		device:      device,
		log:         zap.NewNop(),
		width:       DefaultWidth,
		height:      DefaultHeight,
		supersample: DefaultSupersample,
		clear:       [4]float32{0.94, 0.94, 0.94, 1},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = NewCache()
	}
	if r.supersample < 1 {
		r.supersample = 1
	}
	r.log = r.log.Named("thumbnail")
	return r
}

// Cache returns the image cache.
func (r *Rasterizer) Cache() *Cache { return r.cache }

// Renders returns how many renders were attempted.
func (r *Rasterizer) Renders() int64 { return r.renders.Load() }

// Hits returns how many requests were served from the cache.
func (r *Rasterizer) Hits() int64 { return r.hits.Load() }

// Rasterize returns the PNG thumbnail for entryID, rendering modelPath if
// it is not cached. Canceling ctx abandons the wait; a render already
// started runs to completion and is cached.
func (r *Rasterizer) Rasterize(ctx context.Context, modelPath, entryID string) ([]byte, error) {
	if data, ok := r.cache.Get(entryID); ok {
		r.hits.Add(1)
		return data, nil
	}

	ch := r.group.DoChan(entryID, func() (any, error) {
		if data, ok := r.cache.Get(entryID); ok {
			return data, nil
		}
		r.renders.Add(1)
		data, err := r.render(context.WithoutCancel(ctx), modelPath)
		if err != nil {
			r.log.Warn("thumbnail render failed", zap.String("id", entryID), zap.Error(err))
			return nil, fmt.Errorf("%w: %s: %w", ErrRasterize, entryID, err)
		}
		r.log.Debug("thumbnail rendered", zap.String("id", entryID), zap.Int("bytes", len(data)))
		return r.cache.Put(entryID, data), nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Thumbnail returns the entry's supplied thumbnail when it has one that
// fetches and decodes, and a rasterized one otherwise.
func (r *Rasterizer) Thumbnail(ctx context.Context, b catalog.Building) ([]byte, error) {
	if b.Thumbnail != "" && r.fetcher != nil {
		data, err := r.fetcher.Fetch(ctx, b.Thumbnail, nil)
		if err == nil {
			if _, _, err = image.DecodeConfig(bytes.NewReader(data)); err == nil {
				return data, nil
			}
		}
		r.log.Debug("supplied thumbnail unusable, rasterizing",
			zap.String("id", b.ID),
			zap.String("thumbnail", b.Thumbnail),
			zap.Error(err),
		)
	}
	return r.Rasterize(ctx, b.ModelPath, b.ID)
}

// Image is Thumbnail decoded.
func (r *Rasterizer) Image(ctx context.Context, b catalog.Building) (image.Image, error) {
	data, err := r.Thumbnail(ctx, b)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding thumbnail %s: %w", b.ID, err)
	}
	return img, nil
}

func (r *Rasterizer) render(ctx context.Context, modelPath string) ([]byte, error) {
	model, err := r.loader.Load(ctx, modelPath)
	if err != nil {
		return nil, err
	}

	img, err := r.draw(model)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// draw renders exactly one frame. The instance is released before the surface.
func (r *Rasterizer) draw(model *asset.Model) (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, h := r.width*r.supersample, r.height*r.supersample
	surface, err := r.device.NewSurface(w, h)
	if err != nil {
		return nil, fmt.Errorf("creating surface: %w", err)
	}
	defer surface.Release()

	inst, err := scene.NewInstance(r.device, model)
	if err != nil {
		return nil, err
	}
	defer inst.Release()

	bounds := model.Bounds()
	pose := camera.FitVertical(bounds, DefaultFOV, DefaultMargin)
	proj := math.Perspective(DefaultFOV, float32(w)/float32(h), pose.Near, pose.Far)
	if err := surface.Draw(inst.Frame(pose.View(), proj, r.clear)); err != nil {
		return nil, err
	}

	img, err := surface.ReadPixels()
	if err != nil {
		return nil, err
	}
	if r.supersample == 1 {
		return img, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst, nil
}
