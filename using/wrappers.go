package using

import (
	"io"
	"os"
)

// OpenFile returns a Resource that opens an existing file at the given path for reading.
// The file is automatically closed when the Resource is used.
func OpenFile(path string) *Resource[*os.File] {
	return NewResource(func() (*os.File, Closer, error) {
		f, err := os.Open(path) //nolint:gosec // Path is supplied by the caller on purpose
		if err != nil {
			return nil, nil, err
		}

		return f, WrapCloser(f), nil
	})
}

// Value wraps an already-acquired value and its release function as a Resource.
func Value[V any](value V, release Closer) *Resource[V] {
	return NewResource(func() (V, Closer, error) {
		return value, release, nil
	})
}

// WrapCloser converts an io.Closer into a Closer function.
// If the closer is nil, it returns a no-op closer that returns nil.
func WrapCloser(closer io.Closer) Closer {
	return func() error {
		if closer != nil {
			return closer.Close()
		}

		return nil
	}
}
