package config

import "flag"

// Flags holds command-line overrides. Zero values leave the config alone;
// MaxSurfaces does so when negative.
type Flags struct {
	Config      string
	Debug       bool
	Manifest    string
	AssetRoot   string
	Variant     string
	Open        string
	Windowed    bool
	Fullscreen  bool
	Width       int
	Height      int
	MaxSurfaces int
}

// Register binds the flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Manifest, "manifest", "", "Path or URL of the buildings manifest")
	fs.StringVar(&f.AssetRoot, "assets", "", "Directory or base URL for model paths")
	fs.StringVar(&f.Variant, "variant", "", "Card variant: interactive or raster")
	fs.StringVar(&f.Open, "open", "", "Building id to open in the viewer at startup")
	fs.BoolVar(&f.Windowed, "windowed", false, "Run in windowed mode")
	fs.BoolVar(&f.Fullscreen, "fullscreen", false, "Run in fullscreen mode")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.IntVar(&f.MaxSurfaces, "max-surfaces", -1, "Live preview cap (0 is unbounded)")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Manifest != "" {
		cfg.Gallery.Manifest = f.Manifest
	}
	if f.AssetRoot != "" {
		cfg.Gallery.AssetRoot = f.AssetRoot
	}
	if f.Variant != "" {
		cfg.Gallery.Variant = f.Variant
	}
	if f.Open != "" {
		cfg.Gallery.Open = f.Open
	}
	if f.Windowed {
		cfg.Window.Fullscreen = false
	}
	if f.Fullscreen {
		cfg.Window.Fullscreen = true
	}
	if f.Width > 0 {
		cfg.Window.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Window.Height = f.Height
	}
	if f.MaxSurfaces >= 0 {
		cfg.Gallery.MaxSurfaces = f.MaxSurfaces
	}
}
