package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Longest accepted input line; pasted link lists can be long.
const maxLineBytes = 1 << 20

// lineReader reads stdin on its own goroutine so a blocked read never
// keeps the menu from seeing a canceled context.
type lineReader struct {
	lines <-chan string
	done  chan struct{}
	once  sync.Once

	// Set before lines is closed.
	err error
}

func newLineReader(r io.Reader) *lineReader {
	lines := make(chan string)
	lr := &lineReader{lines: lines, done: make(chan struct{})}

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
		for sc.Scan() {
			select {
			case lines <- strings.TrimRight(sc.Text(), "\r"):
			case <-lr.done:
				return
			}
		}
		if err := sc.Err(); err != nil {
			lr.err = fmt.Errorf("read input: %w", err)
		}
	}()
	return lr
}

// ReadLine returns the next line without its terminator, io.EOF once input
// is exhausted, the read error if input failed, or ctx.Err() if ctx ends
// first.
func (lr *lineReader) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-lr.lines:
		if !ok {
			if lr.err != nil {
				return "", lr.err
			}
			return "", io.EOF
		}
		return line, nil
	}
}

func (lr *lineReader) Close() {
	lr.once.Do(func() { close(lr.done) })
}
