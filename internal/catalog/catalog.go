// Package catalog loads the building manifest that drives the gallery.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/buildings-gallery/internal/fetch"
)

// ErrManifest marks a missing, unreadable, or empty manifest.
var ErrManifest = errors.New("manifest error")

// DefaultID is the building shown when the detail view is opened without one.
const DefaultID = "castle"

// Building is one catalog entry.
type Building struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Author      string `json:"author,omitempty" yaml:"author,omitempty"`
	ModelPath   string `json:"modelPath" yaml:"modelPath"`
	Thumbnail   string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
}

// DisplayDescription returns the description or a fallback text.
func (b Building) DisplayDescription() string {
	if b.Description == "" {
		return "No description"
	}
	return b.Description
}

// Byline returns the author line, empty when no author is set.
func (b Building) Byline() string {
	if b.Author == "" {
		return ""
	}
	return "by " + b.Author
}

// Manifest is the parsed buildings document.
type Manifest struct {
	Buildings []Building `json:"buildings" yaml:"buildings"`
}

// Find returns the building with the given id.
func (m *Manifest) Find(id string) (Building, error) {
	if id == "" {
		id = DefaultID
	}
	for _, b := range m.Buildings {
		if b.ID == id {
			return b, nil
		}
	}
	return Building{}, fmt.Errorf("building %q not found", id)
}

// Load fetches and parses the manifest at src.
func Load(ctx context.Context, f fetch.Fetcher, src string) (*Manifest, error) {
	if src == "" {
		return nil, fmt.Errorf("%w: no manifest configured", ErrManifest)
	}

	data, err := f.Fetch(ctx, src, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrManifest, src, err)
	}

	m, err := Parse(data, formatOf(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	return m, nil
}

// Parse decodes a manifest. format is "json" or "yaml".
func Parse(data []byte, format string) (*Manifest, error) {
	var m Manifest

	var err error
	switch format {
	case "yaml":
		err = yaml.Unmarshal(data, &m)
	default:
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decoding: %w", ErrManifest, err)
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if len(m.Buildings) == 0 {
		return fmt.Errorf("%w: no buildings found", ErrManifest)
	}

	seen := make(map[string]bool, len(m.Buildings))
	for i, b := range m.Buildings {
		switch {
		case b.ID == "":
			return fmt.Errorf("%w: building %d has no id", ErrManifest, i)
		case b.ModelPath == "":
			return fmt.Errorf("%w: building %q has no modelPath", ErrManifest, b.ID)
		case seen[b.ID]:
			return fmt.Errorf("%w: duplicate building id %q", ErrManifest, b.ID)
		}
		seen[b.ID] = true
	}
	return nil
}

func formatOf(src string) string {
	// Strip any query string from URLs before looking at the extension.
	if i := strings.IndexByte(src, '?'); i >= 0 {
		src = src[:i]
	}
	switch strings.ToLower(filepath.Ext(src)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}
