package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/buildings-gallery/internal/fetch"
)

const buildingsJSON = `{
  "buildings": [
    {"id": "castle", "name": "Castle", "description": "Stone keep", "author": "Aiko", "modelPath": "models/castle.glb"},
    {"id": "tower", "name": "Tower", "modelPath": "models/tower.glb", "thumbnail": "thumbs/tower.png"}
  ]
}`

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "buildings.json"), []byte(buildingsJSON), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	m, err := Load(context.Background(), fetch.FileFetcher{Root: dir}, "buildings.json")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(m.Buildings) != 2 {
		t.Fatalf("expected 2 buildings, got %d", len(m.Buildings))
	}

	tower := m.Buildings[1]
	if tower.Thumbnail != "thumbs/tower.png" {
		t.Errorf("expected thumbnail path, got %q", tower.Thumbnail)
	}
	if tower.DisplayDescription() != "No description" {
		t.Errorf("expected fallback description, got %q", tower.DisplayDescription())
	}
	if tower.Byline() != "" {
		t.Errorf("expected empty byline, got %q", tower.Byline())
	}
	if got := m.Buildings[0].Byline(); got != "by Aiko" {
		t.Errorf("expected byline 'by Aiko', got %q", got)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	yamlContent := `
buildings:
  - id: shrine
    name: Shrine
    modelPath: models/shrine.glb
`
	if err := os.WriteFile(filepath.Join(dir, "buildings.yaml"), []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	m, err := Load(context.Background(), fetch.FileFetcher{Root: dir}, "buildings.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Buildings[0].ModelPath != "models/shrine.glb" {
		t.Errorf("unexpected model path %q", m.Buildings[0].ModelPath)
	}
}

func TestManifestErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty list", `{"buildings": []}`, "no buildings"},
		{"missing key", `{}`, "no buildings"},
		{"invalid json", `{"buildings": [`, "decoding"},
		{"missing id", `{"buildings": [{"modelPath": "a.glb"}]}`, "no id"},
		{"missing model", `{"buildings": [{"id": "a"}]}`, "no modelPath"},
		{"duplicate id", `{"buildings": [{"id": "a", "modelPath": "a.glb"}, {"id": "a", "modelPath": "b.glb"}]}`, "duplicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "json")
			if !errors.Is(err, ErrManifest) {
				t.Fatalf("expected ErrManifest, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error to mention %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadMissingManifest(t *testing.T) {
	_, err := Load(context.Background(), fetch.FileFetcher{Root: t.TempDir()}, "buildings.json")
	if !errors.Is(err, ErrManifest) {
		t.Errorf("expected ErrManifest, got %v", err)
	}
	if !errors.Is(err, fetch.ErrNotFound) {
		t.Errorf("expected wrapped ErrNotFound, got %v", err)
	}
}

func TestFind(t *testing.T) {
	m, err := Parse([]byte(buildingsJSON), "json")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	b, err := m.Find("")
	if err != nil || b.ID != DefaultID {
		t.Errorf("Find(\"\") should return the default building, got %+v, %v", b, err)
	}

	if _, err := m.Find("pagoda"); err == nil || !strings.Contains(err.Error(), "pagoda") {
		t.Errorf("expected error naming the missing id, got %v", err)
	}
}
