// Package fetch retrieves pin pages and decodes them into text.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/tdh8316/Pindown/internal/httpx"
)

const (
	DefaultTimeout = 20 * time.Second

	// Pin pages embed large JSON blobs but never approach this.
	DefaultMaxBodyBytes = 20 << 20
)

// ErrTooLarge means the page body exceeded the configured maximum.
var ErrTooLarge = errors.New("page too large")

// Error is returned for any transport, timeout or HTTP status failure.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, errors.Cause(e.Err))
}

func (e *Error) Unwrap() error { return e.Err }

type Fetcher struct {
	client       httpx.Doer
	userAgent    string
	timeout      time.Duration
	maxBodyBytes int64
	log          logrus.FieldLogger
}

type Option func(*Fetcher)

func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodyBytes = n
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.log = l
		}
	}
}

func New(client httpx.Doer, opts ...Option) *Fetcher {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	f := &Fetcher{
		client:       client,
		userAgent:    httpx.DefaultUserAgent,
		timeout:      DefaultTimeout,
		maxBodyBytes: DefaultMaxBodyBytes,
		log:          discard,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Page returns the body of rawURL as text. Invalid UTF-8 is replaced with
// U+FFFD rather than failing.
func (f *Fetcher) Page(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := httpx.NewRequest(ctx, http.MethodGet, rawURL, nil, f.userAgent)
	if err != nil {
		return "", &Error{URL: rawURL, Err: errors.Wrap(err, "build request")}
	}
	httpx.SetBrowserHeaders(req, httpx.AcceptHTML)

	log := f.log.WithField("url", rawURL)
	log.Debug("fetching page")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &Error{URL: rawURL, Err: errors.Wrap(err, "request")}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 2048))
		return "", &Error{URL: rawURL, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return "", &Error{URL: rawURL, Err: errors.Wrap(err, "read body")}
	}
	if int64(len(raw)) > f.maxBodyBytes {
		return "", &Error{URL: rawURL, Err: errors.Wrapf(ErrTooLarge, "over %d bytes", f.maxBodyBytes)}
	}

	text, err := DecodeLossy(bytes.NewReader(raw))
	if err != nil {
		return "", &Error{URL: rawURL, Err: errors.Wrap(err, "decode body")}
	}

	log.WithField("chars", len(text)).Debug("page fetched")
	return text, nil
}

// DecodeLossy reads r as UTF-8, substituting U+FFFD for invalid sequences.
func DecodeLossy(r io.Reader) (string, error) {
	dec := unicode.UTF8.NewDecoder()
	b, err := io.ReadAll(transform.NewReader(r, dec))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
