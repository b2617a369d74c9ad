package thumbnail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/buildings-gallery/internal/catalog"
)

// BatchResult lists the entry ids written and failed by WriteAll, sorted.
type BatchResult struct {
	Written []string
	Failed  []string
}

// WriteAll rasterizes every building into dir as <id>.png with at most
// workers renders in flight. Render failures are collected and returned
// together once the batch finishes; a write failure stops the batch.
func (r *Rasterizer) WriteAll(ctx context.Context, buildings []catalog.Building, dir string, workers int) (BatchResult, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return BatchResult{}, fmt.Errorf("creating output directory: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	var (
		mu     sync.Mutex
		res    BatchResult
		failed error
	)
	for _, b := range buildings {
		g.Go(func() error {
			path, err := outputPath(dir, b.ID)
			if err == nil {
				var data []byte
				if data, err = r.Rasterize(gctx, b.ModelPath, b.ID); err == nil {
					if werr := os.WriteFile(path, data, 0644); werr != nil {
						return fmt.Errorf("writing %s: %w", path, werr)
					}
				}
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed = append(res.Failed, b.ID)
				failed = multierr.Append(failed, err)
				return nil
			}
			res.Written = append(res.Written, b.ID)
			r.log.Info("thumbnail written", zap.String("id", b.ID), zap.String("path", path))
			return nil
		})
	}

	err := g.Wait()
	sort.Strings(res.Written)
	sort.Strings(res.Failed)
	return res, multierr.Combine(err, failed)
}

func outputPath(dir, id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: unusable entry id %q", ErrRasterize, id)
	}
	return filepath.Join(dir, id+".png"), nil
}
