// Package main is the entry point for the buildings gallery.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Faultbox/buildings-gallery/internal/asset"
	"github.com/Faultbox/buildings-gallery/internal/catalog"
	"github.com/Faultbox/buildings-gallery/internal/config"
	"github.com/Faultbox/buildings-gallery/internal/engine/gpu/glgpu"
	"github.com/Faultbox/buildings-gallery/internal/engine/gpu/soft"
	"github.com/Faultbox/buildings-gallery/internal/engine/input"
	"github.com/Faultbox/buildings-gallery/internal/engine/window"
	"github.com/Faultbox/buildings-gallery/internal/fetch"
	"github.com/Faultbox/buildings-gallery/internal/gallery"
	"github.com/Faultbox/buildings-gallery/internal/logger"
	"github.com/Faultbox/buildings-gallery/internal/runloop"
	"github.com/Faultbox/buildings-gallery/internal/thumbnail"
	"github.com/Faultbox/buildings-gallery/internal/viewer"
)

var (
	backgroundColor  = [4]float32{1, 1, 1, 1}
	placeholderColor = [4]float32{0.85, 0.85, 0.85, 1}
	hoverColor       = [4]float32{0.2, 0.45, 0.9, 1}
)

func main() {
	// Missing .env is fine
	_ = godotenv.Load()

	var flags config.Flags
	flags.Register(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(&flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Log.Info("=== Buildings Gallery ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Log.Error("gallery error", zap.Error(err))
		os.Exit(1)
	}
	logger.Log.Info("gallery closed normally")
}

func run(cfg *config.Config) error {
	log := logger.Log

	win, err := window.New(window.Config{
		Title:      "Buildings Gallery",
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Close()

	// GL objects need the context created by the window.
	device, err := glgpu.New(log)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	defer device.Close()

	comp, err := glgpu.NewCompositor()
	if err != nil {
		return fmt.Errorf("failed to create compositor: %w", err)
	}
	defer comp.Close()

	variant, err := gallery.ParseVariant(cfg.Gallery.Variant)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: cfg.Gallery.FetchTimeout}
	fetcher := fetch.New(cfg.Gallery.AssetRoot, client)

	policy := asset.Unbounded()
	if cfg.Gallery.MaxCachedModels > 0 {
		policy = asset.MaxEntries(cfg.Gallery.MaxCachedModels)
	}
	loader := asset.NewLoader(fetcher,
		asset.WithCache(asset.NewCache(policy)),
		asset.WithLogger(log),
	)
	defer loader.Close()

	loop := runloop.New()
	pool := viewer.NewPool(loop, loader, device, viewer.Config{
		MaxSurfaces: cfg.Gallery.MaxSurfaces,
		ClearColor:  viewer.DefaultClearColor,
	}, log)
	defer pool.Close()

	// Thumbnails render off the loop goroutine, which GL does not allow.
	raster := thumbnail.New(loader, soft.New(),
		thumbnail.WithSize(cfg.Gallery.CardWidth, cfg.Gallery.CardHeight),
		thumbnail.WithSupersample(cfg.Thumbnail.Supersample),
		thumbnail.WithFetcher(fetcher),
		thumbnail.WithLogger(log),
	)

	g := gallery.New(loop, pool, raster, gallery.Config{
		Variant: variant,
		Layout: gallery.Layout{
			Columns:    cfg.Gallery.Columns,
			CardWidth:  cfg.Gallery.CardWidth,
			CardHeight: cfg.Gallery.CardHeight,
			Gap:        cfg.Gallery.Gap,
		},
	}, log)
	defer g.Unmount()

	width, height := win.Size()
	app := gallery.NewApp(loop, loader, device, g, width, height, log)
	app.SnapshotDir = cfg.Thumbnail.OutputDir
	defer app.Back()

	go loadManifest(loop, app, fetch.New(".", client), cfg)

	return mainLoop(cfg, win, comp, loop, app)
}

func loadManifest(loop *runloop.Loop, app *gallery.App, f fetch.Fetcher, cfg *config.Config) {
	m, err := catalog.Load(context.Background(), f, cfg.Gallery.Manifest)
	loop.Post(func() {
		app.SetManifest(m, err)
		if err == nil && cfg.Gallery.Open != "" {
			if err := app.OpenID(cfg.Gallery.Open); err != nil {
				logger.Log.Warn("cannot open building", zap.String("id", cfg.Gallery.Open), zap.Error(err))
			}
		}
	})
}

func mainLoop(cfg *config.Config, win *window.Window, comp *glgpu.Compositor, loop *runloop.Loop, app *gallery.App) error {
	var frameTime time.Duration
	if cfg.Window.FPSLimit > 0 {
		frameTime = time.Second / time.Duration(cfg.Window.FPSLimit)
	}

	title := ""
	frameCount := 0
	fpsTimer := time.Now()

	logger.Log.Info("starting main loop")

	for {
		start := time.Now()

		for _, e := range win.PollEvents() {
			if e.Type == input.EventQuit {
				return nil
			}
			if e.Type == input.EventKeyDown && e.Key == input.KeyEscape && app.Viewer() == nil {
				return nil
			}
			app.HandleEvent(e)
		}

		// Tasks posted by loaders, then every frame callback
		loop.Tick(start)

		width, height := win.Size()
		compose(comp, app, width, height)
		win.SwapBuffers()

		if t := app.Title(); t != title {
			title = t
			win.SetTitle(t)
		}

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Log.Debug("fps", zap.Int("count", frameCount), zap.Int("frames", loop.PendingFrames()))
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameTime > 0 {
			if d := frameTime - time.Since(start); d > 0 {
				time.Sleep(d)
			}
		}
	}
}

func compose(comp *glgpu.Compositor, app *gallery.App, width, height int) {
	comp.Begin(width, height, backgroundColor)

	if v := app.Viewer(); v != nil {
		comp.DrawSurface(v.Surface(), image.Rect(0, 0, width, height))
		return
	}

	app.Gallery().Visible(func(c *gallery.Card, r gallery.Rect) {
		rect := image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
		if c.Hovered() {
			comp.FillRect(rect.Inset(-3), hoverColor)
		}
		switch c.Mode() {
		case gallery.ModeSurface:
			comp.DrawSurface(c.Surface(), rect)
		case gallery.ModeImage:
			comp.DrawImage(c.ID(), c.Image(), rect)
		default:
			comp.FillRect(rect, placeholderColor)
		}
	})
}
