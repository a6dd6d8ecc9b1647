package pipeline

import (
	"errors"
	"fmt"

	"github.com/tdh8316/Pindown/internal/extract"
)

// ErrNoAssetFound means the page was fetched but held no image or video URLs.
var ErrNoAssetFound = errors.New("no downloadable asset found on the page")

// Status is the kind of result ProcessLink produced.
type Status string

const (
	StatusDownloaded Status = "downloaded"
	StatusNoAsset    Status = "no_asset"
	StatusFailed     Status = "failed"
)

func (s Status) String() string {
	return string(s)
}

// Outcome is the result of processing one link. Exactly one of Path (when
// Status is StatusDownloaded) or Err (otherwise) is meaningful.
type Outcome struct {
	Link   string
	Status Status

	Kind     extract.MediaKind
	AssetURL string
	Path     string
	Bytes    int64

	Err error
}

func (o Outcome) OK() bool {
	return o.Status == StatusDownloaded
}

// Message renders the outcome as a one-line, user-facing summary.
func (o Outcome) Message() string {
	switch o.Status {
	case StatusDownloaded:
		return fmt.Sprintf("Downloaded %s -> %s", o.Kind, o.Path)
	case StatusNoAsset:
		return "No downloadable asset found on the page."
	default:
		if o.Err == nil {
			return "Error: unknown failure"
		}
		return fmt.Sprintf("Error: %v", o.Err)
	}
}
