package dtypes

import (
	"errors"
	"fmt"
)

var (
	// ErrRegistry is matched by every RegistrationError and RegistryError.
	ErrRegistry = errors.New("type validators registry error")
	// ErrNotBoolean is returned by a Predicate whose underlying function produced a non-bool result.
	ErrNotBoolean = errors.New("predicate returned a non-boolean value")
)

// RegistrationError reports a predicate that was refused by Register. The registry
// is left unchanged.
type RegistrationError struct {
	Message string
	// Cause is the error raised by the predicate during the sanity probe, if any.
	Cause error
}

func (e *RegistrationError) Error() string {
	return e.Message
}

func (e *RegistrationError) Unwrap() error {
	return e.Cause
}

func (e *RegistrationError) Is(target error) bool {
	return target == ErrRegistry //nolint:errorlint
}

// RegistryError reports a lookup of an alias that has no entry.
type RegistryError struct {
	Alias any
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("'%v' is not registered as a valid callable.", e.Alias)
}

func (e *RegistryError) Is(target error) bool {
	return target == ErrRegistry //nolint:errorlint
}

func notCallable(fn any) *RegistrationError {
	return &RegistrationError{Message: fmt.Sprintf("`%v` should be a callable", fn)}
}

func notBoolean(id Identity, v any) *RegistrationError {
	return &RegistrationError{
		Message: fmt.Sprintf("Callable `%s` should return a boolean value - returned `%v`.", id.Name(), v),
	}
}

func sanityFailed(id Identity, probeType string, cause error, text string) *RegistrationError {
	return &RegistrationError{
		Message: fmt.Sprintf("Callable failed for the sanity check: %s(%s): '%s'", id.Name(), probeType, text),
		Cause:   cause,
	}
}
