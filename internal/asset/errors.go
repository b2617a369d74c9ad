package asset

import (
	"errors"
	"fmt"
)

// ErrAssetLoad marks a model fetch or parse failure.
var ErrAssetLoad = errors.New("asset load failed")

// LoadError is returned for every request of a path whose load failed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *LoadError) Unwrap() []error {
	return []error{ErrAssetLoad, e.Err}
}
