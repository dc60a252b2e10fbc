package validity

import (
	"context"
	"errors"
	"fmt"

	"github.com/alitto/pond/v2"
	"github.com/amp-labs/validity/frame"
	"github.com/amp-labs/validity/logger"
	"go.uber.org/atomic"
)

// ErrNotRun marks a table ValidateAll never got to, usually because ctx ended.
var ErrNotRun = errors.New("table was not validated")

// notRun builds the result error for a skipped table. The table name rides along as a
// log attribute.
func notRun(ctx context.Context, name string, waitErr error) error {
	cause := waitErr
	if cause == nil {
		cause = context.Cause(ctx)
	}

	err := ErrNotRun
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrNotRun, cause)
	}

	return logger.AnnotateError(err, "table", name)
}

// Named is a table with the name it is reported under.
type Named struct {
	Name  string
	Table frame.Table
}

// Result is the outcome of one table in ValidateAll. Err is nil, an *ErrorsGroup, or
// the error that kept the scope from running.
type Result struct {
	Name string
	Err  error
}

// ValidateAll runs body against each table in its own scope. Scopes run concurrently on a
// worker pool sized by WithConcurrency; each scope is still used by one goroutine only.
// Results are in the order of tables.
func ValidateAll(ctx context.Context, tables []Named, body func(v *Validator) error, opts ...Option) []Result {
	if ctx == nil {
		ctx = context.Background()
	}

	o := newOptions(opts)
	results := make([]Result, len(tables))
	failed := atomic.NewInt64(0)

	ran := make([]bool, len(tables))

	pool := pond.NewPool(o.concurrency, pond.WithContext(ctx))
	group := pool.NewGroup()

	for i, named := range tables {
		scopeOpts := append(append([]Option{}, opts...), WithName(named.Name), WithRegistry(o.registry))

		group.Submit(func() {
			err := Validate(ctx, named.Table, body, scopeOpts...)
			if err != nil {
				failed.Inc()
			}

			results[i] = Result{Name: named.Name, Err: err}
			ran[i] = true
		})
	}

	waitErr := group.Wait()

	pool.StopAndWait()

	log := o.logger
	if log == nil {
		log = logger.Get(ctx)
	}

	// Tables never picked up, because ctx ended first, report why.
	for i := range results {
		if !ran[i] {
			err := notRun(ctx, tables[i].Name, waitErr)
			results[i] = Result{Name: tables[i].Name, Err: err}

			failed.Inc()
			log.Warn("table skipped", "error", err)
		}
	}

	log.Info("batch validation finished",
		"tables", len(tables),
		"failed", failed.Load())

	return results
}
