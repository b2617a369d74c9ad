// Package fetch reads manifests and model assets from disk or over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrTooLarge is returned when a resource exceeds the fetcher's size limit.
var ErrTooLarge = errors.New("resource too large")

// DefaultMaxSize caps a single fetch when a fetcher's MaxSize is zero.
const DefaultMaxSize = 256 << 20

// maxPrealloc bounds the buffer reserved up front from a declared length.
const maxPrealloc = 8 << 20

// ProgressFunc receives the number of bytes read so far and the expected
// total (-1 when unknown).
type ProgressFunc func(loaded, total int64)

// Fetcher retrieves the raw bytes behind a path.
type Fetcher interface {
	Fetch(ctx context.Context, path string, progress ProgressFunc) ([]byte, error)
}

// FileFetcher reads files relative to Root.
type FileFetcher struct {
	Root    string
	MaxSize int64
}

// Fetch reads the file at path. Absolute paths are used as-is.
func (f FileFetcher) Fetch(ctx context.Context, path string, progress ProgressFunc) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full := path
	if !filepath.IsAbs(path) && f.Root != "" {
		full = filepath.Join(f.Root, filepath.FromSlash(path))
	}

	file, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, err
	}
	defer file.Close()

	total := int64(-1)
	if info, err := file.Stat(); err == nil {
		total = info.Size()
	}
	return readAll(ctx, file, total, limit(f.MaxSize), progress)
}

// HTTPFetcher fetches resources over HTTP, resolving relative paths against BaseURL.
type HTTPFetcher struct {
	Client  *http.Client
	BaseURL string
	MaxSize int64
}

// Fetch performs a GET for path. Non-2xx responses are errors; 404 wraps ErrNotFound.
func (f HTTPFetcher) Fetch(ctx context.Context, path string, progress ProgressFunc) ([]byte, error) {
	url := path
	if !IsURL(path) {
		url = resolve(f.BaseURL, path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%s: unexpected status %s", url, resp.Status)
	}

	return readAll(ctx, resp.Body, resp.ContentLength, limit(f.MaxSize), progress)
}

// resolve joins a relative asset path onto base. Only a literal "./" prefix
// is dropped so dot-prefixed names survive.
func resolve(base, path string) string {
	p := strings.TrimPrefix(path, "./")
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p, "/")
}

// Multi dispatches absolute URLs to HTTP and everything else to Local.
type Multi struct {
	Local  Fetcher
	Remote Fetcher
}

// Fetch implements Fetcher.
func (m Multi) Fetch(ctx context.Context, path string, progress ProgressFunc) ([]byte, error) {
	if IsURL(path) && m.Remote != nil {
		return m.Remote.Fetch(ctx, path, progress)
	}
	return m.Local.Fetch(ctx, path, progress)
}

// New returns a fetcher rooted at root, which may be a directory or an http(s) base URL.
func New(root string, client *http.Client) Fetcher {
	remote := HTTPFetcher{Client: client}
	if IsURL(root) {
		remote.BaseURL = root
		return remote
	}
	return Multi{Local: FileFetcher{Root: root}, Remote: remote}
}

// IsURL reports whether path is an absolute http(s) URL.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

const chunkSize = 32 * 1024

func limit(n int64) int64 {
	if n <= 0 {
		return DefaultMaxSize
	}
	return n
}

// readAll reads r to EOF, failing with ErrTooLarge past maxSize bytes. total is
// the declared length and is trusted only for progress and a bounded
// pre-allocation.
func readAll(ctx context.Context, r io.Reader, total, maxSize int64, progress ProgressFunc) ([]byte, error) {
	if total > maxSize {
		return nil, fmt.Errorf("%d bytes declared, limit %d: %w", total, maxSize, ErrTooLarge)
	}

	var buf []byte
	if total > 0 {
		buf = make([]byte, 0, min(total, maxPrealloc))
	}

	r = io.LimitReader(r, maxSize+1)

	chunk := make([]byte, chunkSize)
	var loaded int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := r.Read(chunk)
		if n > 0 {
			loaded += int64(n)
			if loaded > maxSize {
				return nil, fmt.Errorf("more than %d bytes: %w", maxSize, ErrTooLarge)
			}
			buf = append(buf, chunk[:n]...)
			if progress != nil {
				progress(loaded, total)
			}
		}
		if err == io.EOF {
			return buf, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
