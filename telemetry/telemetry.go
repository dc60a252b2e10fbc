// Package telemetry builds the OpenTelemetry tracer provider that validation scopes report
// their spans to. Nothing here touches the global provider; pass the result to
// validity.WithTracerProvider.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/amp-labs/validity/envutil"
	"github.com/amp-labs/validity/logger"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	defaultServiceName    = "validity"
	defaultServiceVersion = "1.0.0"
	defaultTimeout        = 5 * time.Second
)

// Config holds the tracing configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	Enabled        bool
	Timeout        time.Duration
}

// LoadConfigFromEnv reads OTEL_ENABLED, OTEL_SERVICE_NAME, OTEL_SERVICE_VERSION,
// OTEL_EXPORTER_OTLP_TRACES_ENDPOINT and OTEL_EXPORTER_OTLP_TRACES_TIMEOUT. The service
// name defaults to the logging subsystem.
func LoadConfigFromEnv(ctx context.Context, environment string) (*Config, error) {
	enabled, err := envutil.Bool(ctx, "OTEL_ENABLED", envutil.Default(false)).Value()
	if err != nil {
		return nil, err
	}

	serviceName := logger.GetSubsystem(ctx)
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	svcName, err := envutil.String(ctx, "OTEL_SERVICE_NAME", envutil.Default(serviceName)).Value()
	if err != nil {
		return nil, err
	}

	svcVersion, err := envutil.String(ctx, "OTEL_SERVICE_VERSION",
		envutil.Default(defaultServiceVersion)).
		Value()
	if err != nil {
		return nil, err
	}

	endpoint := envutil.String(ctx, "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT").ValueOrElse("")

	timeout, err := envutil.Duration(ctx, "OTEL_EXPORTER_OTLP_TRACES_TIMEOUT",
		envutil.Default(defaultTimeout)).
		Value()
	if err != nil {
		return nil, err
	}

	return &Config{
		ServiceName:    svcName,
		ServiceVersion: svcVersion,
		Environment:    environment,
		Endpoint:       endpoint,
		Enabled:        enabled,
		Timeout:        timeout,
	}, nil
}

// ShutdownFunc flushes and stops a tracer provider.
type ShutdownFunc func(ctx context.Context) error

// NewTracerProvider returns an OTLP/HTTP exporting provider, or a no-op provider when
// tracing is disabled or has no endpoint. The shutdown function is never nil.
func NewTracerProvider(ctx context.Context, config *Config) (trace.TracerProvider, ShutdownFunc, error) { //nolint:ireturn
	log := logger.Get(ctx)
	noShutdown := func(context.Context) error { return nil }

	if !config.Enabled {
		log.Debug("OpenTelemetry tracing is disabled")

		return noop.NewTracerProvider(), noShutdown, nil
	}

	if config.Endpoint == "" {
		log.Warn("OpenTelemetry endpoint not configured, tracing will be disabled")

		return noop.NewTracerProvider(), noShutdown, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(config.Environment),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(config.Endpoint),
		otlptracehttp.WithTimeout(config.Timeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	log.Info("OpenTelemetry tracing initialized",
		"service", config.ServiceName,
		"version", config.ServiceVersion,
		"environment", config.Environment,
		"endpoint", config.Endpoint)

	return provider, provider.Shutdown, nil
}
