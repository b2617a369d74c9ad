package detail

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Snapshot writes the current surface contents to dir as
// <id>_<timestamp>.png and returns the file name.
func (v *Viewer) Snapshot(dir string) (string, error) {
	if v.closed {
		return "", fmt.Errorf("snapshot: viewer closed")
	}
	img, err := v.surface.ReadPixels()
	if err != nil {
		return "", fmt.Errorf("reading pixels: %w", err)
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	id := v.entry.ID
	if id == "" {
		id = "viewer"
	}
	filename := filepath.Join(dir, fmt.Sprintf("%s_%s.png", id, time.Now().Format("2006-01-02_15-04-05")))

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}

	v.log.Info("snapshot saved", zap.String("file", filename))
	return filename, nil
}
