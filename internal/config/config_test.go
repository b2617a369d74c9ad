package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"
)

func noFlags() *Flags { return &Flags{MaxSurfaces: -1} }

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("window = %dx%d, want 1280x720", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if cfg.Gallery.Variant != "interactive" {
		t.Errorf("expected variant interactive, got %s", cfg.Gallery.Variant)
	}
	if cfg.Gallery.FetchTimeout != 30*time.Second {
		t.Errorf("expected fetch timeout 30s, got %v", cfg.Gallery.FetchTimeout)
	}
	if cfg.Thumbnail.Width != 400 || cfg.Thumbnail.Height != 300 {
		t.Errorf("thumbnail = %dx%d, want 400x300", cfg.Thumbnail.Width, cfg.Thumbnail.Height)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true

gallery:
  manifest: "https://example.com/buildings.json"
  variant: raster
  columns: 4
  max_surfaces: 8
  fetch_timeout: 5s

thumbnail:
  supersample: 3
  output_dir: out

logging:
  level: "debug"
  log_file: "gallery.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || !cfg.Window.Fullscreen {
		t.Errorf("window = %+v", cfg.Window)
	}
	if cfg.Gallery.Manifest != "https://example.com/buildings.json" {
		t.Errorf("manifest = %s", cfg.Gallery.Manifest)
	}
	if cfg.Gallery.Variant != "raster" || cfg.Gallery.Columns != 4 || cfg.Gallery.MaxSurfaces != 8 {
		t.Errorf("gallery = %+v", cfg.Gallery)
	}
	if cfg.Gallery.FetchTimeout != 5*time.Second {
		t.Errorf("fetch timeout = %v", cfg.Gallery.FetchTimeout)
	}
	// untouched keys keep their defaults
	if cfg.Gallery.CardWidth != 280 || cfg.Thumbnail.Width != 400 {
		t.Errorf("defaults lost: card width %d, thumbnail width %d", cfg.Gallery.CardWidth, cfg.Thumbnail.Width)
	}
	if cfg.Thumbnail.Supersample != 3 || cfg.Thumbnail.OutputDir != "out" {
		t.Errorf("thumbnail = %+v", cfg.Thumbnail)
	}
	if cfg.Logging.LogFile != "gallery.log" {
		t.Errorf("expected log file 'gallery.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Fatal("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile("config.yaml", []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(t *testing.T, cfg *Config)
	}{
		{
			name: "none",
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Gallery.MaxSurfaces != 16 {
					t.Errorf("max surfaces = %d, want default", cfg.Gallery.MaxSurfaces)
				}
			},
		},
		{
			name: "debug",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "catalog",
			args: []string{"-manifest", "m.yaml", "-assets", "https://cdn.example.com/", "-variant", "raster", "-open", "tower"},
			verify: func(t *testing.T, cfg *Config) {
				g := cfg.Gallery
				if g.Manifest != "m.yaml" || g.AssetRoot != "https://cdn.example.com/" || g.Variant != "raster" || g.Open != "tower" {
					t.Errorf("gallery = %+v", g)
				}
			},
		},
		{
			name: "fullscreen",
			args: []string{"-fullscreen"},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen")
				}
			},
		},
		{
			name: "size",
			args: []string{"-width", "2560", "-height", "1440"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("window = %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
		},
		{
			name: "unbounded surfaces",
			args: []string{"-max-surfaces", "0"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Gallery.MaxSurfaces != 0 {
					t.Errorf("max surfaces = %d, want 0", cfg.Gallery.MaxSurfaces)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Flags
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			f.Register(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatal(err)
			}

			cfg := Default()
			f.apply(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
window:
  width: 1600
  height: 900
gallery:
  variant: raster
  manifest: file.json
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv(EnvManifest, "env.json")
	t.Setenv(EnvMaxSurf, "4")

	flags := noFlags()
	flags.Config = configPath
	flags.Width = 1920

	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
	if cfg.Gallery.Variant != "raster" {
		t.Errorf("expected variant from file, got %s", cfg.Gallery.Variant)
	}
	if cfg.Gallery.Manifest != "env.json" {
		t.Errorf("expected manifest from env, got %s", cfg.Gallery.Manifest)
	}
	if cfg.Gallery.MaxSurfaces != 4 {
		t.Errorf("expected max surfaces from env, got %d", cfg.Gallery.MaxSurfaces)
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv(EnvMaxSurf, "lots")
	flags := noFlags()
	flags.Config = filepath.Join(t.TempDir(), "missing-is-not-searched.yaml")
	if err := os.WriteFile(flags.Config, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(flags); err == nil {
		t.Error("expected error for non-numeric env value")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Window.Width = 0
	cfg.Gallery.Variant = "video"
	cfg.Thumbnail.Supersample = -1

	err := cfg.Validate()
	if got := len(multierr.Errors(err)); got != 3 {
		t.Fatalf("errors = %d (%v), want 3", got, err)
	}
	if !strings.Contains(err.Error(), "gallery.variant") {
		t.Errorf("err = %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Gallery.Open = "castle"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatal(err)
	}
	if loaded.Gallery.Open != "castle" {
		t.Errorf("open = %q after round trip", loaded.Gallery.Open)
	}
}
