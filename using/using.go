// Package using provides a resource management pattern similar to C#'s "using" statement
// or Java's try-with-resources. A resource is acquired, handed to a function, and its
// closer is always invoked afterwards, whether the function returned normally, returned
// an error, or panicked.
//
// Example usage:
//
//	err := using.OpenFile("data.csv").Use(func(f *os.File) error {
//	    _, err := frame.ReadCSV(f)
//	    return err
//	})
//	// File is automatically closed, even if an error occurred
package using

import (
	"errors"

	validityErrors "github.com/amp-labs/validity/errors"
)

var (
	// ErrResourceNil is returned when Use is called on a nil resource.
	ErrResourceNil = errors.New("resource is nil")
	// ErrFuncNil is returned when a nil function is passed to Use.
	ErrFuncNil = errors.New("f is nil")
)

// Closer releases a resource. It follows the signature of io.Closer.Close().
type Closer func() error

// Resource is a value that is created lazily, used once per Use call, and then released.
type Resource[V any] struct {
	create func() (V, Closer, error)
}

// NewResource creates a Resource from a function that returns a value, its closer and an error.
// The closer is invoked once the value has been used.
func NewResource[V any](create func() (V, Closer, error)) *Resource[V] {
	return &Resource[V]{
		create: create,
	}
}

// Use acquires the resource, runs userFunc with it and releases it.
//
// Errors from userFunc and from the closer are collected in that order; a single error
// is returned as-is and several are joined. If userFunc panics, the closer still runs
// before the panic continues to unwind.
func (r *Resource[V]) Use(userFunc func(value V) error) (errOut error) {
	if r == nil || r.create == nil {
		return ErrResourceNil
	}

	if userFunc == nil {
		return ErrFuncNil
	}

	val, closer, err := r.create()
	if err != nil {
		return err
	}

	var errs validityErrors.Collection

	defer func() {
		if closer != nil {
			errs.Add(closer())
		}

		errOut = errs.GetError()
	}()

	errs.Add(userFunc(val))

	return nil
}
