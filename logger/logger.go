package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/amp-labs/validity/envutil"
)

// Default subsystem name, set by ConfigureLogging.
var subsystem atomic.Value //nolint:gochecknoglobals

// configMutex serializes ConfigureLoggingWithOptions, which mutates slog.Default and log.Default.
var configMutex sync.Mutex //nolint:gochecknoglobals

type contextKey string

const (
	loggerKey    contextKey = "logger"
	mutedKey     contextKey = "mute"
	subsystemKey contextKey = "subsystem"
	valuesKey    contextKey = "loggerValues"
)

// ErrInvalidLogOutput is returned when an invalid log output destination is specified.
var ErrInvalidLogOutput = errors.New("invalid log output")

// Options is used to configure logging.
type Options struct {
	Subsystem   string
	JSON        bool
	MinLevel    slog.Level
	LegacyLevel slog.Level
	Output      io.Writer
}

// Option is a functional option for configuring logging via ConfigureLogging.
type Option func(*Options)

// WithOutput overrides the destination chosen from LOG_OUTPUT.
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		o.Output = w
	}
}

// ConfigureLoggingWithOptions installs a text or JSON handler as the slog default
// (and redirects the legacy log package into it). It returns the new default logger.
func ConfigureLoggingWithOptions(opts Options) *slog.Logger {
	configMutex.Lock()
	defer configMutex.Unlock()

	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	var handler slog.Handler

	handlerOpts := &slog.HandlerOptions{Level: opts.MinLevel}

	if opts.JSON {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	}

	handler = NewErrorAttrsHandler(handler)

	logger := slog.New(handler)

	slog.SetDefault(logger)

	def := log.Default()
	*def = *slog.NewLogLogger(handler, opts.LegacyLevel)

	subsystem.Store(opts.Subsystem)

	return logger
}

// ConfigureLogging configures logging from LOG_JSON, LOG_LEVEL, LEGACY_LOG_LEVEL and
// LOG_OUTPUT ("stdout" or "stderr"). Malformed values fall back to the defaults.
func ConfigureLogging(ctx context.Context, app string, opts ...Option) (*slog.Logger, error) {
	output, err := envutil.Map(envutil.String(ctx, "LOG_OUTPUT"), func(name string) (io.Writer, error) {
		switch name {
		case "stdout":
			return os.Stdout, nil
		case "stderr":
			return os.Stderr, nil
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidLogOutput, name)
		}
	}).WithDefault(os.Stdout).Value()
	if err != nil {
		return nil, err
	}

	options := Options{
		Subsystem:   app,
		JSON:        envutil.Bool(ctx, "LOG_JSON").ValueOrElse(false),
		MinLevel:    envutil.SlogLevel(ctx, "LOG_LEVEL").ValueOrElse(slog.LevelInfo),
		LegacyLevel: envutil.SlogLevel(ctx, "LEGACY_LOG_LEVEL").ValueOrElse(slog.LevelInfo),
		Output:      output,
	}

	for _, o := range opts {
		o(&options)
	}

	return ConfigureLoggingWithOptions(options), nil
}

// WithLogger stores an explicit logger in the context; Get prefers it over slog.Default.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	if logger == nil {
		return ctx
	}

	return context.WithValue(ctx, loggerKey, logger)
}

// WithMuted suppresses all output from loggers obtained through Get on this context.
func WithMuted(ctx context.Context, muted bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, mutedKey, muted)
}

func isMuted(ctx context.Context) bool {
	muted, ok := ctx.Value(mutedKey).(bool)

	return ok && muted
}

// WithSubsystem overrides the subsystem attribute for loggers obtained from ctx.
func WithSubsystem(ctx context.Context, name string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, subsystemKey, name)
}

// GetSubsystem returns the subsystem from the context, or the configured default.
func GetSubsystem(ctx context.Context) string {
	if ctx != nil {
		if val, ok := ctx.Value(subsystemKey).(string); ok {
			return val
		}
	}

	if val, ok := subsystem.Load().(string); ok {
		return val
	}

	return ""
}

// With returns a context whose loggers carry the given key-value pairs.
func With(ctx context.Context, values ...any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	if len(values) == 0 {
		return ctx
	}

	existing := getValues(ctx)
	vals := make([]any, 0, len(existing)+len(values))
	vals = append(vals, existing...)
	vals = append(vals, values...)

	return context.WithValue(ctx, valuesKey, vals)
}

func getValues(ctx context.Context) []any {
	vals, _ := ctx.Value(valuesKey).([]any)

	return vals
}

type nullHandler struct{}

func (n *nullHandler) Enabled(_ context.Context, _ slog.Level) bool  { return false }
func (n *nullHandler) Handle(_ context.Context, _ slog.Record) error { return nil }
func (n *nullHandler) WithAttrs(_ []slog.Attr) slog.Handler          { return n }
func (n *nullHandler) WithGroup(_ string) slog.Handler               { return n }

var nullLogger = slog.New(&nullHandler{}) //nolint:gochecknoglobals

// Get returns the logger for ctx: the explicit logger from WithLogger or slog.Default,
// decorated with the subsystem and any values added through With.
func Get(ctx context.Context) *slog.Logger { //nolint:contextcheck
	if ctx == nil {
		ctx = context.Background()
	}

	if isMuted(ctx) {
		return nullLogger
	}

	logger, ok := ctx.Value(loggerKey).(*slog.Logger)
	if !ok {
		logger = slog.Default()
	}

	if sub := GetSubsystem(ctx); sub != "" {
		logger = logger.With("subsystem", sub)
	}

	if vals := getValues(ctx); len(vals) > 0 {
		logger = logger.With(vals...)
	}

	return logger
}
