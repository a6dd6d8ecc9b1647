// Package pipeline runs fetch, extract, rank and download for a single pin link.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tdh8316/Pindown/internal/download"
	"github.com/tdh8316/Pindown/internal/extract"
	"github.com/tdh8316/Pindown/internal/rank"
)

type PageFetcher interface {
	Page(ctx context.Context, rawURL string) (string, error)
}

type AssetDownloader interface {
	Download(ctx context.Context, assetURL, outDir, preferredName string) (download.Result, error)
}

type Processor struct {
	fetcher    PageFetcher
	downloader AssetDownloader
	log        logrus.FieldLogger

	// Called after selection and before the download starts.
	onFound func(extract.Candidate)
}

type Option func(*Processor)

func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Processor) {
		if l != nil {
			p.log = l
		}
	}
}

// OnFound registers a hook that sees the chosen asset before it is downloaded.
func OnFound(fn func(extract.Candidate)) Option {
	return func(p *Processor) { p.onFound = fn }
}

func New(f PageFetcher, d AssetDownloader, opts ...Option) *Processor {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	p := &Processor{
		fetcher:    f,
		downloader: d,
		log:        discard,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessLink downloads the best asset on the pin page at link into outDir.
// Failures are reported through the Outcome, never as a panic or error.
func (p *Processor) ProcessLink(ctx context.Context, link, outDir string) (out Outcome) {
	out = Outcome{Link: link}
	log := p.log.WithField("link", link)

	defer func() {
		if r := recover(); r != nil {
			out.Status = StatusFailed
			out.Err = fmt.Errorf("internal error: %v", r)
		}
	}()

	page, err := p.fetcher.Page(ctx, link)
	if err != nil {
		log.WithError(err).Debug("fetch failed")
		return fail(out, err)
	}

	cands := extract.Extract(page)
	log.WithFields(logrus.Fields{
		"images": len(cands.Images),
		"videos": len(cands.Videos),
	}).Debug("candidates extracted")

	asset, ok := rank.Select(cands).Pick()
	if !ok {
		out.Status = StatusNoAsset
		out.Err = ErrNoAssetFound
		return out
	}

	out.Kind = asset.Kind
	out.AssetURL = asset.URL
	if p.onFound != nil {
		p.onFound(asset)
	}

	res, err := p.downloader.Download(ctx, asset.URL, outDir, PreferredName(link, asset))
	if err != nil {
		log.WithError(err).WithField("asset", asset.URL).Debug("download failed")
		return fail(out, err)
	}

	out.Status = StatusDownloaded
	out.Path = res.Path
	out.Bytes = res.Bytes
	return out
}

func fail(out Outcome, err error) Outcome {
	out.Status = StatusFailed
	out.Err = err
	return out
}

// PreferredName builds pin-<id>.<ext> for the chosen asset. Without a pin id
// in the link it falls back to pin-pinterest_video / pin-pinterest_image.
func PreferredName(link string, asset extract.Candidate) string {
	if asset.Kind == extract.KindVideo {
		id := DerivePinID(link)
		if id == "" {
			id = "pinterest_video"
		}
		return "pin-" + id + ".mp4"
	}

	id := DerivePinID(link)
	if id == "" {
		id = "pinterest_image"
	}
	_, ext := download.SplitExtFromURL(asset.URL)
	if ext == "" {
		ext = download.DefaultExt
	}
	return "pin-" + id + "." + ext
}

// DerivePinID returns the first path segment of link made only of digits and
// at least 8 long, as in /pin/1234567890/. It returns "" if there is none.
func DerivePinID(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	for _, part := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if len(part) >= 8 && isDigits(part) {
			return part
		}
	}
	return ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
