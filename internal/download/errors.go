package download

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error is a failure while requesting, streaming or writing an asset.
type Error struct {
	URL        string
	Path       string // destination, if one was chosen
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("download %s: %v", e.URL, errors.Cause(e.Err))
}

func (e *Error) Unwrap() error { return e.Err }

// FSError is a failure to prepare the output directory.
type FSError struct {
	Path string
	Err  error
}

func (e *FSError) Error() string {
	return fmt.Sprintf("output directory %s: %v", e.Path, errors.Cause(e.Err))
}

func (e *FSError) Unwrap() error { return e.Err }
