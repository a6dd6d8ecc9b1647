package download

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
)

// ErrStalled means the connection made no progress for the configured timeout.
var ErrStalled = errors.New("connection stalled")

// stallGuard cancels a request once idle exceeds the timeout. Every read
// that returns data pushes the deadline back, so a slow but steady body is
// never cut off.
type stallGuard struct {
	timer   *time.Timer
	timeout time.Duration
}

func newStallGuard(timeout time.Duration, cancel context.CancelCauseFunc) *stallGuard {
	return &stallGuard{
		timer:   time.AfterFunc(timeout, func() { cancel(ErrStalled) }),
		timeout: timeout,
	}
}

func (g *stallGuard) touch() {
	g.timer.Reset(g.timeout)
}

func (g *stallGuard) stop() {
	g.timer.Stop()
}

func (g *stallGuard) reader(r io.Reader) io.Reader {
	return &stallReader{r: r, g: g}
}

type stallReader struct {
	r io.Reader
	g *stallGuard
}

func (s *stallReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if n > 0 {
		s.g.touch()
	}
	return n, err
}

// stallCause swaps the generic cancellation error for ErrStalled when the
// guard fired.
func stallCause(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); errors.Is(cause, ErrStalled) {
		return cause
	}
	return err
}
