// Package validity checks a table against a declared contract and reports every
// violation in one pass.
//
// A Validator is a scope bound to one table. Checks are invoked on it in any order;
// each one records what it finds and never aborts the scope, even when its own logic
// fails or panics. Close ends the scope and returns a single *ErrorsGroup holding every
// recorded failure in order, or nil when nothing was recorded.
//
// Validate wraps the acquire, check and close sequence so the scope is closed on every
// exit path. An error from the body itself is returned ahead of the group:
//
//	err := validity.Validate(ctx, table, func(v *validity.Validator) error {
//	    v.IsEmpty()
//	    v.HasRequiredColumns([]string{"id", "amount"})
//	    v.HasValidDataTypes(map[string]any{"id": "int", "amount": "float"})
//	    v.HasNoMissingData()
//
//	    return nil
//	})
//
// A Validator is not safe for concurrent use. ValidateAll runs independent scopes in
// parallel.
//
// Each scope opens one span on the provider given by WithTracerProvider, or the global one.
// The telemetry package builds an OTLP provider from the environment for that option.
package validity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amp-labs/validity/frame"
	"github.com/amp-labs/validity/logger"
	"github.com/amp-labs/validity/using"
	"github.com/amp-labs/validity/utils"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/amp-labs/validity"

type state int

const (
	stateActive state = iota
	stateClosed
)

// Validator is a validation scope over one table.
type Validator struct {
	ctx      context.Context //nolint:containedctx
	table    frame.Table
	opts     options
	runID    string
	log      *slog.Logger
	span     trace.Span
	failures []Failure
	state    state
}

// New opens a scope over table. The table is read, never modified.
func New(ctx context.Context, table frame.Table, opts ...Option) *Validator {
	if ctx == nil {
		ctx = context.Background()
	}

	o := newOptions(opts)
	runID := uuid.NewString()

	log := o.logger
	if log == nil {
		log = logger.Get(ctx)
	}

	log = log.With("run_id", runID)
	if o.name != "" {
		log = log.With("table", o.name)
	}

	ctx, span := o.tracerProvider.Tracer(tracerName).Start(ctx, "validity.scope",
		trace.WithAttributes(
			attribute.String("validity.run_id", runID),
			attribute.String("validity.table", o.name),
		))

	log.Debug("validation scope opened")

	return &Validator{
		ctx:   ctx,
		table: table,
		opts:  o,
		runID: runID,
		log:   log,
		span:  span,
	}
}

// Context returns the scope's context, which carries its span.
func (v *Validator) Context() context.Context {
	return v.ctx
}

// Table returns the table the scope validates.
func (v *Validator) Table() frame.Table {
	return v.table
}

// RunID identifies the scope in logs and spans.
func (v *Validator) RunID() string {
	return v.runID
}

// Closed reports whether Close has been called.
func (v *Validator) Closed() bool {
	return v.state == stateClosed
}

// Failures returns a copy of what has been recorded so far.
func (v *Validator) Failures() []Failure {
	out := make([]Failure, len(v.failures))
	copy(out, v.failures)

	return out
}

// run executes one check. body reports findings through report, which may be called any
// number of times. A panic in body is recovered and recorded like a reported error.
func (v *Validator) run(check string, body func(report func(error))) {
	if v.state == stateClosed {
		v.log.Warn("check invoked on a closed validation scope, ignoring", "check", check)

		return
	}

	result := resultPassed
	start := time.Now()

	report := func(err error) {
		if err == nil {
			return
		}

		f := v.record(check, err)
		if _, unexpected := f.Unexpected(); unexpected {
			result = resultError
		} else if result == resultPassed {
			result = resultFailed
		}
	}

	report(utils.Capture(func() error {
		body(report)

		return nil
	}))

	elapsed := time.Since(start)
	observeCheck(check, result, elapsed)

	v.log.Debug("check finished", "check", check, "result", result, "elapsed", elapsed)
}

func (v *Validator) record(check string, err error) Failure {
	f := newFailure(check, err)
	v.failures = append(v.failures, f)

	kind := "unexpected"
	if ve, ok := f.Validation(); ok {
		kind = string(ve.Kind)
	}

	v.span.AddEvent("validity.failure", trace.WithAttributes(
		attribute.String("validity.check", check),
		attribute.String("validity.kind", kind),
		attribute.String("validity.message", err.Error()),
	))

	return f
}

func (v *Validator) message() string {
	if v.opts.name != "" {
		return fmt.Sprintf("Validation of %s failed", frame.Quote(v.opts.name))
	}

	return "Validation failed"
}

// Close ends the scope. It returns an *ErrorsGroup when anything was recorded and nil
// otherwise. Only the first call does this; later calls return ErrScopeClosed.
func (v *Validator) Close() error {
	if v.state == stateClosed {
		return ErrScopeClosed
	}

	v.state = stateClosed
	defer v.span.End()

	observeScope(len(v.failures) > 0)

	if len(v.failures) == 0 {
		v.span.SetStatus(codes.Ok, "")
		v.log.Debug("validation passed")

		return nil
	}

	group := &ErrorsGroup{
		Message:  v.message(),
		Failures: v.Failures(),
	}

	v.span.SetAttributes(attribute.Int("validity.failures", group.Len()))
	v.span.SetStatus(codes.Error, group.Message)
	v.log.Warn("validation failed",
		"failures", group.Len(),
		"unexpected", len(group.Unexpected()))

	return group
}

// Validate opens a scope over table, runs body and closes the scope on every exit path.
//
// Without a body error the result is the scope's *ErrorsGroup, or nil when nothing was
// recorded. An error returned by body, or a panic inside it, takes priority: it is returned
// as is when no check failed, and joined ahead of the group otherwise, so errors.Is finds
// the body error and errors.As still finds the group. Body errors never enter the group.
func Validate(ctx context.Context, table frame.Table, body func(v *Validator) error, opts ...Option) error {
	if body == nil {
		return using.ErrFuncNil
	}

	resource := using.NewResource(func() (*Validator, using.Closer, error) {
		v := New(ctx, table, opts...)

		return v, func() error {
			if v.Closed() {
				return nil
			}

			return v.Close()
		}, nil
	})

	return resource.Use(func(v *Validator) error {
		err := utils.Capture(func() error { return body(v) })
		if err != nil {
			v.log.Warn("validation body failed", "error", err)
		}

		return err
	})
}
