// Package download streams a chosen asset into the output directory.
package download

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tdh8316/Pindown/internal/httpx"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultChunkSize = 128 << 10

	partSuffix = ".part"
)

type Result struct {
	Path        string
	Bytes       int64
	ContentType string
}

type Downloader struct {
	client    httpx.Doer
	userAgent string
	timeout   time.Duration
	chunkSize int
	log       logrus.FieldLogger
}

type Option func(*Downloader)

func WithTimeout(d time.Duration) Option {
	return func(dl *Downloader) {
		if d > 0 {
			dl.timeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(dl *Downloader) { dl.userAgent = ua }
}

func WithChunkSize(n int) Option {
	return func(dl *Downloader) {
		if n > 0 {
			dl.chunkSize = n
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(dl *Downloader) {
		if l != nil {
			dl.log = l
		}
	}
}

func New(client httpx.Doer, opts ...Option) *Downloader {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	dl := &Downloader{
		client:    client,
		userAgent: httpx.DefaultUserAgent,
		timeout:   DefaultTimeout,
		chunkSize: DefaultChunkSize,
		log:       discard,
	}
	for _, opt := range opts {
		opt(dl)
	}
	return dl
}

// Download fetches assetURL into outDir. preferredName, when set, is sanitized
// and given the extension implied by the response; otherwise the name comes
// from the URL. Existing files are never overwritten. The timeout bounds
// each wait for headers or body data, not the whole transfer.
func (d *Downloader) Download(ctx context.Context, assetURL, outDir, preferredName string) (Result, error) {
	if err := EnsureDir(outDir); err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	guard := newStallGuard(d.timeout, cancel)
	defer guard.stop()

	req, err := httpx.NewRequest(ctx, http.MethodGet, assetURL, nil, d.userAgent)
	if err != nil {
		return Result{}, &Error{URL: assetURL, Err: errors.Wrap(err, "build request")}
	}
	httpx.SetBrowserHeaders(req, httpx.AcceptAny)

	resp, err := d.client.Do(req)
	if err != nil {
		return Result{}, &Error{URL: assetURL, Err: errors.Wrap(stallCause(ctx, err), "request")}
	}
	defer resp.Body.Close()
	guard.touch()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 2048))
		return Result{}, &Error{URL: assetURL, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	contentType := resp.Header.Get("Content-Type")
	name := ResolveFilename(assetURL, contentType, preferredName)
	dest := UniqueFilepath(outDir, name)

	log := d.log.WithFields(logrus.Fields{"url": assetURL, "dest": dest, "content_type": contentType})
	log.Debug("streaming asset")

	n, err := d.write(dest, guard.reader(resp.Body))
	if err != nil {
		if errors.Is(context.Cause(ctx), ErrStalled) {
			err = errors.Wrap(ErrStalled, "write")
		}
		return Result{}, &Error{URL: assetURL, Path: dest, Err: err}
	}

	log.WithField("bytes", n).Debug("asset saved")
	return Result{Path: dest, Bytes: n, ContentType: contentType}, nil
}

// ResolveFilename picks the destination basename for assetURL.
func ResolveFilename(assetURL, contentType, preferredName string) string {
	urlBase, urlExt := SplitExtFromURL(assetURL)

	ext := ExtFromContentType(contentType)
	if ext == "" {
		ext = urlExt
	}
	if ext == "" {
		ext = DefaultExt
	}

	if preferredName != "" {
		return WithExt(SanitizeFilename(preferredName), ext)
	}

	if strings.Trim(urlBase, ".") == "" {
		return "file." + ext
	}
	return SanitizeFilename(urlBase)
}

func (d *Downloader) write(dest string, body io.Reader) (int64, error) {
	tmp := dest + partSuffix

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, errors.Wrapf(err, "create %s", filepath.Base(tmp))
	}

	// Hide *os.File's ReadFrom so reads stay chunkSize-bounded.
	n, copyErr := io.CopyBuffer(struct{ io.Writer }{f}, body, make([]byte, d.chunkSize))
	closeErr := f.Close()
	if copyErr != nil {
		_ = os.Remove(tmp)
		return n, errors.Wrap(copyErr, "write")
	}
	if closeErr != nil {
		_ = os.Remove(tmp)
		return n, errors.Wrap(closeErr, "close")
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return n, errors.Wrapf(err, "rename to %s", filepath.Base(dest))
	}
	return n, nil
}
