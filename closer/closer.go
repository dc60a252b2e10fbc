// Package closer provides utilities for managing layered io.Closer resources,
// such as a decompressing reader stacked on top of an open file.
package closer

import (
	"io"
	"runtime/debug"

	"github.com/amp-labs/validity/errors"
	"github.com/amp-labs/validity/utils"
	"go.uber.org/atomic"
)

// customCloser adapts a cleanup function to io.Closer.
type customCloser struct {
	closeFn func() error
}

// CustomCloser creates an io.Closer from a cleanup function.
// Returns nil if closeFn is nil.
func CustomCloser(closeFn func() error) io.Closer {
	if closeFn == nil {
		return nil
	}

	return &customCloser{closeFn: closeFn}
}

func (c *customCloser) Close() error {
	return c.closeFn()
}

// Stack closes its members in reverse order of addition, so an outer reader is
// released before the inner reader it wraps. It is not safe for concurrent Add calls.
//
// Example:
//
//	stack := closer.NewStack(file)
//	stack.Add(zstdReader)
//	defer stack.Close() // closes zstdReader, then file
type Stack struct {
	closers []io.Closer
	closed  atomic.Bool
}

// NewStack creates a Stack with the given closers, innermost first.
func NewStack(closers ...io.Closer) *Stack {
	return &Stack{closers: closers}
}

// Add pushes a closer on top of the stack. Nil closers are skipped on Close.
func (s *Stack) Add(c io.Closer) {
	s.closers = append(s.closers, c)
}

// Close closes every member exactly once, newest first, collecting all errors.
// A panicking member is recovered and reported as an error. Subsequent calls return nil.
func (s *Stack) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs errors.Collection

	for i := len(s.closers) - 1; i >= 0; i-- {
		if s.closers[i] == nil {
			continue
		}

		errs.Add(closeSafely(s.closers[i]))
	}

	return errs.GetError()
}

func closeSafely(c io.Closer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = utils.GetPanicRecoveryError(r, debug.Stack())
		}
	}()

	return c.Close()
}

// ReadCloser pairs a reader with the Stack that owns its underlying resources.
type ReadCloser struct {
	io.Reader
	*Stack
}

// NewReadCloser returns an io.ReadCloser that reads from r and closes stack.
func NewReadCloser(r io.Reader, stack *Stack) *ReadCloser {
	return &ReadCloser{Reader: r, Stack: stack}
}
