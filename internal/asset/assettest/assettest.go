// Package assettest provides models and fetchers for tests.
package assettest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Faultbox/buildings-gallery/internal/asset"
	"github.com/Faultbox/buildings-gallery/internal/fetch"
	"github.com/Faultbox/buildings-gallery/pkg/math"
)

// Box returns a single-node model of an axis-aligned box with the given half extent.
func Box(half float32) *asset.Model {
	g := &asset.Geometry{}
	// Each face gets its own four vertices so normals stay flat.
	faces := [6]struct{ n, u, v math.Vec3 }{
		{math.Vec3{X: 1}, math.Vec3{Y: 1}, math.Vec3{Z: 1}},
		{math.Vec3{X: -1}, math.Vec3{Z: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Y: 1}, math.Vec3{Z: 1}, math.Vec3{X: 1}},
		{math.Vec3{Y: -1}, math.Vec3{X: 1}, math.Vec3{Z: 1}},
		{math.Vec3{Z: 1}, math.Vec3{X: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Z: -1}, math.Vec3{Y: 1}, math.Vec3{X: 1}},
	}
	for _, f := range faces {
		base := uint32(len(g.Positions))
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := f.n.Add(f.u.Scale(c[0])).Add(f.v.Scale(c[1])).Scale(half)
			g.Positions = append(g.Positions, [3]float32{p.X, p.Y, p.Z})
			g.Normals = append(g.Normals, [3]float32{f.n.X, f.n.Y, f.n.Z})
		}
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}

	return &asset.Model{
		Path: "box",
		Nodes: []asset.Node{{
			Name:      "box",
			Transform: math.Identity(),
			Geometry:  g,
			Material:  0,
		}},
		Materials: []asset.Material{{Name: "stone", BaseColor: [4]float32{0.7, 0.6, 0.5, 1}}},
	}
}

// BoxData encodes a box half extent in the format Decode understands.
func BoxData(half float32) []byte {
	return []byte("box:" + strconv.FormatFloat(float64(half), 'f', -1, 32))
}

// Decode is an asset.DecodeFunc for BoxData payloads.
func Decode(path string, data []byte) (*asset.Model, error) {
	s, ok := strings.CutPrefix(string(data), "box:")
	if !ok {
		return nil, fmt.Errorf("%s: not a test box", path)
	}
	half, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m := Box(float32(half))
	m.Path = path
	return m, nil
}

// Fetcher serves in-memory files and counts fetches per path. While held,
// fetches block until Release is called.
type Fetcher struct {
	mu    sync.Mutex
	files map[string][]byte
	calls map[string]int
	gate  chan struct{}
}

// NewFetcher creates an empty fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{
		files: make(map[string][]byte),
		calls: make(map[string]int),
	}
}

// Add registers a file.
func (f *Fetcher) Add(path string, data []byte) *Fetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = data
	return f
}

// Hold makes subsequent fetches block until Release.
func (f *Fetcher) Hold() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate == nil {
		f.gate = make(chan struct{})
	}
}

// Release unblocks held fetches.
func (f *Fetcher) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate != nil {
		close(f.gate)
		f.gate = nil
	}
}

// Calls returns how many times path was fetched.
func (f *Fetcher) Calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

// Total returns the number of fetches across all paths.
func (f *Fetcher) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// Fetch implements fetch.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, path string, progress fetch.ProgressFunc) ([]byte, error) {
	f.mu.Lock()
	f.calls[path]++
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	data, ok := f.files[path]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, fetch.ErrNotFound)
	}

	if progress != nil {
		half := int64(len(data) / 2)
		progress(half, int64(len(data)))
		progress(int64(len(data)), int64(len(data)))
	}
	return data, nil
}
