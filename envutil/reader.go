//nolint:ireturn
package envutil

import (
	"errors"
	"fmt"
)

var (
	ErrBadEnvVar     = errors.New("error parsing environment variable")
	ErrEnvVarMissing = errors.New("missing environment variable")
)

// Reader is a value read from an environment variable, together with whether
// it was present and any error raised while parsing it.
type Reader[A any] struct {
	key     string
	present bool
	err     error

	value A
}

// Key returns the key of the environment variable.
func (e Reader[A]) Key() string {
	return e.key
}

// Value returns the value of the environment variable, or an error if the value
// is missing or if there was an error parsing it.
func (e Reader[A]) Value() (A, error) {
	if e.err != nil {
		return e.value, fmt.Errorf("%w %s: %w", ErrBadEnvVar, e.key, e.err)
	}

	if !e.present {
		return e.value, fmt.Errorf("%w %s", ErrEnvVarMissing, e.key)
	}

	return e.value, nil
}

// ValueOrElse returns the value, or v if the variable is missing or malformed.
func (e Reader[A]) ValueOrElse(v A) A {
	value, err := e.Value()
	if err != nil {
		return v
	}

	return value
}

// HasValue reports whether the variable was present and parsed cleanly.
func (e Reader[A]) HasValue() bool {
	return e.present && e.err == nil
}

// HasError reports whether parsing the variable failed.
func (e Reader[A]) HasError() bool {
	return e.err != nil
}

// WithDefault returns a Reader that yields dfl when the variable is missing.
// Parse errors are kept, so a malformed value is still reported.
func (e Reader[A]) WithDefault(dfl A) Reader[A] {
	if e.present || e.err != nil {
		return e
	}

	return Reader[A]{key: e.key, present: true, value: dfl}
}

// Map converts the value of a Reader. Missing values and errors pass through untouched.
func Map[A any, B any](env Reader[A], f func(A) (B, error)) Reader[B] {
	out := Reader[B]{key: env.key, present: env.present, err: env.err}
	if !env.present || env.err != nil {
		return out
	}

	out.value, out.err = f(env.value)

	return out
}
