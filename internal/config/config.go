// Package config handles gallery configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Config holds all gallery settings.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Gallery   GalleryConfig   `yaml:"gallery"`
	Thumbnail ThumbnailConfig `yaml:"thumbnail"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// GalleryConfig holds catalog and card settings.
type GalleryConfig struct {
	Manifest  string `yaml:"manifest"`   // Path or URL of the buildings manifest
	AssetRoot string `yaml:"asset_root"` // Directory or base URL model paths resolve against
	Variant   string `yaml:"variant"`    // interactive | raster
	Open      string `yaml:"open"`       // Building id to open at startup

	CardWidth  int `yaml:"card_width"`
	CardHeight int `yaml:"card_height"`
	Columns    int `yaml:"columns"` // 0 fits the window width
	Gap        int `yaml:"gap"`

	MaxSurfaces     int           `yaml:"max_surfaces"`      // 0 is unbounded
	MaxCachedModels int           `yaml:"max_cached_models"` // 0 is unbounded
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
}

// ThumbnailConfig holds static rasterization settings.
type ThumbnailConfig struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Supersample int    `yaml:"supersample"`
	OutputDir   string `yaml:"output_dir"`
	Workers     int    `yaml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Gallery: GalleryConfig{
			Manifest:     "assets/buildings.json",
			AssetRoot:    "assets",
			Variant:      "interactive",
			CardWidth:    280,
			CardHeight:   210,
			Gap:          16,
			MaxSurfaces:  16,
			FetchTimeout: 30 * time.Second,
		},
		Thumbnail: ThumbnailConfig{
			Width:       400,
			Height:      300,
			Supersample: 2,
			OutputDir:   "thumbnails",
			Workers:     4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var err error
	positive := func(name string, v int) {
		if v <= 0 {
			err = multierr.Append(err, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}
	notNegative := func(name string, v int) {
		if v < 0 {
			err = multierr.Append(err, fmt.Errorf("%s must not be negative, got %d", name, v))
		}
	}

	positive("window.width", c.Window.Width)
	positive("window.height", c.Window.Height)
	positive("gallery.card_width", c.Gallery.CardWidth)
	positive("gallery.card_height", c.Gallery.CardHeight)
	notNegative("gallery.columns", c.Gallery.Columns)
	notNegative("gallery.gap", c.Gallery.Gap)
	notNegative("gallery.max_surfaces", c.Gallery.MaxSurfaces)
	notNegative("gallery.max_cached_models", c.Gallery.MaxCachedModels)
	positive("thumbnail.width", c.Thumbnail.Width)
	positive("thumbnail.height", c.Thumbnail.Height)
	positive("thumbnail.supersample", c.Thumbnail.Supersample)
	positive("thumbnail.workers", c.Thumbnail.Workers)

	if c.Gallery.Manifest == "" {
		err = multierr.Append(err, fmt.Errorf("gallery.manifest must be set"))
	}
	switch c.Gallery.Variant {
	case "", "interactive", "raster":
	default:
		err = multierr.Append(err, fmt.Errorf("gallery.variant %q is not interactive or raster", c.Gallery.Variant))
	}
	return err
}

// Save writes the config to config.yaml in ConfigDir.
func (c *Config) Save() error {
	return c.SaveTo(filepath.Join(ConfigDir(), "config.yaml"))
}

// SaveTo writes the config as YAML to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
