package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

const appDir = "buildings-gallery"

// Environment variables read by Load. A .env file is loaded by the
// commands before Load runs.
const (
	EnvManifest  = "GALLERY_MANIFEST"
	EnvAssetRoot = "GALLERY_ASSET_ROOT"
	EnvVariant   = "GALLERY_VARIANT"
	EnvLogLevel  = "GALLERY_LOG_LEVEL"
	EnvMaxSurf   = "GALLERY_MAX_SURFACES"
)

// Load loads configuration with priority: defaults < file < env < flags.
// flags may be nil.
func Load(flags *Flags) (*Config, error) {
	if flags == nil {
		flags = &Flags{MaxSurfaces: -1}
	}

	cfg := Default()

	// Explicit path takes priority
	configPath := flags.Config
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	flags.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "BuildingsGallery")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "BuildingsGallery")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appDir)
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appDir)
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvManifest); v != "" {
		cfg.Gallery.Manifest = v
	}
	if v := os.Getenv(EnvAssetRoot); v != "" {
		cfg.Gallery.AssetRoot = v
	}
	if v := os.Getenv(EnvVariant); v != "" {
		cfg.Gallery.Variant = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvMaxSurf); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxSurf, err)
		}
		cfg.Gallery.MaxSurfaces = n
	}
	return nil
}
