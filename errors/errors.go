package errors

import "errors"

// ErrPanicRecovery marks errors produced from a recovered panic value
// that was not itself an error.
var ErrPanicRecovery = errors.New("recovered from panic")

// Collection is a thread-unsafe utility for accumulating multiple errors.
// Errors keep their insertion order, so callers that report them one by one
// see them in the order the operations ran.
type Collection struct {
	errors []error
}

// Add appends an error to the collection. Nil errors are automatically ignored.
func (c *Collection) Add(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// HasError returns true if the collection contains at least one error.
func (c *Collection) HasError() bool {
	return len(c.errors) > 0
}

// Len returns the number of collected errors.
func (c *Collection) Len() int {
	return len(c.errors)
}

// Errors returns a copy of the collected errors in insertion order.
func (c *Collection) Errors() []error {
	if len(c.errors) == 0 {
		return nil
	}

	out := make([]error, len(c.errors))
	copy(out, c.errors)

	return out
}

// GetError returns the collected errors as a single error.
// Returns nil if the collection is empty, the single error if there's only one,
// or a joined error (using errors.Join) if there are multiple errors.
func (c *Collection) GetError() error {
	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	default:
		return errors.Join(c.errors...)
	}
}
