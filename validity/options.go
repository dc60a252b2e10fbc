package validity

import (
	"context"
	"log/slog"

	"github.com/amp-labs/validity/dtypes"
	"github.com/amp-labs/validity/envutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	// EnvMissingReportLimit caps the missing-value records rendered in a report.
	EnvMissingReportLimit = "VALIDITY_MISSING_REPORT_LIMIT"
	// EnvBatchConcurrency sets the worker count of ValidateAll.
	EnvBatchConcurrency = "VALIDITY_BATCH_CONCURRENCY"

	defaultConcurrency = 4
)

type options struct {
	name           string
	registry       *dtypes.Registry
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	missingLimit   int
	concurrency    int
}

// Option configures a Validator, Validate or ValidateAll.
type Option func(*options)

func newOptions(opts []Option) options {
	o := options{concurrency: defaultConcurrency}

	for _, opt := range opts {
		opt(&o)
	}

	if o.registry == nil {
		o.registry = dtypes.NewDefault()
	}

	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}

	if o.concurrency < 1 {
		o.concurrency = 1
	}

	return o
}

// WithName labels the scope in logs, spans and the group message.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithRegistry sets the registry used to resolve type aliases. Without it each scope
// builds its own dtypes.NewDefault registry.
func WithRegistry(reg *dtypes.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithLogger sets the logger. Without it the logger comes from the context.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracerProvider sets the tracer provider. Without it the global provider is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithMissingReportLimit caps how many missing-value records are rendered in the
// message of a missing data failure. The reported count stays exact. 0 renders all.
func WithMissingReportLimit(n int) Option {
	return func(o *options) {
		o.missingLimit = max(n, 0)
	}
}

// WithConcurrency sets how many scopes ValidateAll runs at once.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// OptionsFromEnv reads VALIDITY_MISSING_REPORT_LIMIT and VALIDITY_BATCH_CONCURRENCY.
// Unset variables produce no option. A malformed value is an error.
func OptionsFromEnv(ctx context.Context) ([]Option, error) {
	var opts []Option

	limit := envutil.Int(ctx, EnvMissingReportLimit)
	if limit.HasError() {
		_, err := limit.Value()

		return nil, err
	}

	if limit.HasValue() {
		opts = append(opts, WithMissingReportLimit(limit.ValueOrElse(0)))
	}

	concurrency := envutil.Int(ctx, EnvBatchConcurrency)
	if concurrency.HasError() {
		_, err := concurrency.Value()

		return nil, err
	}

	if concurrency.HasValue() {
		opts = append(opts, WithConcurrency(concurrency.ValueOrElse(defaultConcurrency)))
	}

	return opts, nil
}
