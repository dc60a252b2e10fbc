package utils //nolint:revive // utils is an appropriate package name for utility functions

import (
	"fmt"

	"github.com/amp-labs/validity/errors"
)

// RecoverError converts a recovered panic value into an error without
// rewrapping it. A panic raised with an error value yields that exact error,
// so callers can still match it with errors.Is. Any other non-nil value is
// formatted and wrapped with errors.ErrPanicRecovery.
func RecoverError(recovered any) error {
	if recovered == nil {
		return nil
	}

	if err, ok := recovered.(error); ok {
		return err
	}

	return fmt.Errorf("%w: %v", errors.ErrPanicRecovery, recovered)
}

// GetPanicRecoveryError converts a recovered panic value and optional stack trace
// into a standard error. If the panic value is nil, it returns nil.
// If a stack trace is provided, it appends it to the error message.
func GetPanicRecoveryError(recovered any, stack []byte) error {
	if recovered == nil {
		return nil
	}

	errErr, ok := recovered.(error)
	if ok {
		if stack != nil {
			return fmt.Errorf("%w: %w\nstack trace:\n%s", errors.ErrPanicRecovery, errErr, string(stack))
		}

		return fmt.Errorf("%w: %w", errors.ErrPanicRecovery, errErr)
	}

	if stack != nil {
		return fmt.Errorf("%w: %v\nstack trace:\n%s", errors.ErrPanicRecovery, recovered, string(stack))
	}

	return fmt.Errorf("%w: %v", errors.ErrPanicRecovery, recovered)
}

// Capture runs f and converts any panic it raises into an error via RecoverError.
// The error returned by f itself is passed through untouched.
func Capture(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = RecoverError(r)
		}
	}()

	return f()
}
