package validity

import (
	"fmt"
	"strings"
)

// Failure is one recorded item of a scope: either a rule violation or an unexpected
// error raised by a check's own logic. Unexpected errors are kept as they were raised.
type Failure struct {
	check      string
	validation *ValidationError
	unexpected error
}

// newFailure classifies err. Only a bare *ValidationError counts as a violation, so a
// wrapped one stays an unexpected error with its wrapping intact.
func newFailure(check string, err error) Failure {
	if ve, ok := err.(*ValidationError); ok { //nolint:errorlint
		return Failure{check: check, validation: ve}
	}

	return Failure{check: check, unexpected: err}
}

// Check returns the name of the check that recorded the failure.
func (f Failure) Check() string {
	return f.check
}

// Validation returns the rule violation, if that is what f holds.
func (f Failure) Validation() (*ValidationError, bool) {
	return f.validation, f.validation != nil
}

// Unexpected returns the unexpected error, if that is what f holds.
func (f Failure) Unexpected() (error, bool) { //nolint:revive
	return f.unexpected, f.unexpected != nil
}

// Err returns whichever error f holds.
func (f Failure) Err() error {
	if f.validation != nil {
		return f.validation
	}

	return f.unexpected
}

func (f Failure) String() string {
	return f.Err().Error()
}

// ErrorsGroup is the single error a scope returns when anything was recorded. Failures
// keep the order in which checks reported them.
type ErrorsGroup struct {
	Message  string
	Failures []Failure
}

func (g *ErrorsGroup) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s (%d failures)", g.Message, len(g.Failures))

	for _, f := range g.Failures {
		sb.WriteString("\n  - ")
		sb.WriteString(f.String())
	}

	return sb.String()
}

// Unwrap exposes every failure to errors.Is and errors.As.
func (g *ErrorsGroup) Unwrap() []error {
	errs := make([]error, len(g.Failures))
	for i, f := range g.Failures {
		errs[i] = f.Err()
	}

	return errs
}

func (g *ErrorsGroup) Len() int {
	return len(g.Failures)
}

// Validations returns the rule violations in recorded order.
func (g *ErrorsGroup) Validations() []*ValidationError {
	var out []*ValidationError

	for _, f := range g.Failures {
		if ve, ok := f.Validation(); ok {
			out = append(out, ve)
		}
	}

	return out
}

// Unexpected returns the unexpected errors in recorded order.
func (g *ErrorsGroup) Unexpected() []error {
	var out []error

	for _, f := range g.Failures {
		if err, ok := f.Unexpected(); ok {
			out = append(out, err)
		}
	}

	return out
}
