// Package envutil reads typed configuration from environment variables.
//
// Lookups consult overrides stored in the context first (see WithOverrides), then the
// process environment. This keeps tests parallel-safe: they inject values through the
// context instead of mutating the process environment.
package envutil

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type contextKey string

const overridesKey contextKey = "envOverrides"

// Option modifies a Reader, e.g. to supply a default.
type Option[T any] func(Reader[T]) Reader[T]

// Default provides a value for a missing variable.
func Default[T any](dfl T) Option[T] {
	return func(rdr Reader[T]) Reader[T] {
		return rdr.WithDefault(dfl)
	}
}

// WithOverrides returns a context whose lookups see vars before the process environment.
// Overrides accumulate: a later call shadows keys set by an earlier one.
func WithOverrides(ctx context.Context, vars map[string]string) context.Context {
	merged := make(map[string]string, len(vars))

	if existing, ok := ctx.Value(overridesKey).(map[string]string); ok {
		for k, v := range existing {
			merged[k] = v
		}
	}

	for k, v := range vars {
		merged[k] = v
	}

	return context.WithValue(ctx, overridesKey, merged)
}

func lookup(ctx context.Context, key string) (string, bool) {
	if ctx != nil {
		if vars, ok := ctx.Value(overridesKey).(map[string]string); ok {
			if val, found := vars[key]; found {
				return val, true
			}
		}
	}

	return os.LookupEnv(key)
}

func get(ctx context.Context, key string) Reader[string] {
	val, ok := lookup(ctx, key)

	return Reader[string]{
		key:     key,
		present: ok,
		value:   val,
	}
}

func apply[T any](rdr Reader[T], opts []Option[T]) Reader[T] {
	for _, opt := range opts {
		rdr = opt(rdr)
	}

	return rdr
}

// String returns a Reader for the given environment variable key.
func String(ctx context.Context, key string, opts ...Option[string]) Reader[string] {
	return apply(get(ctx, key), opts)
}

// Bool parses the variable with strconv.ParseBool.
func Bool(ctx context.Context, key string, opts ...Option[bool]) Reader[bool] {
	return apply(Map(get(ctx, key), func(s string) (bool, error) {
		return strconv.ParseBool(strings.TrimSpace(s))
	}), opts)
}

// Int parses the variable as a base-10 integer.
func Int(ctx context.Context, key string, opts ...Option[int]) Reader[int] {
	return apply(Map(get(ctx, key), func(s string) (int, error) {
		return strconv.Atoi(strings.TrimSpace(s))
	}), opts)
}

// Duration parses the variable with time.ParseDuration.
func Duration(ctx context.Context, key string, opts ...Option[time.Duration]) Reader[time.Duration] {
	return apply(Map(get(ctx, key), func(s string) (time.Duration, error) {
		return time.ParseDuration(strings.TrimSpace(s))
	}), opts)
}

// SlogLevel parses the variable as a slog level name ("debug", "info", "warn", "error", "info+2", ...).
func SlogLevel(ctx context.Context, key string, opts ...Option[slog.Level]) Reader[slog.Level] {
	return apply(Map(get(ctx, key), func(s string) (slog.Level, error) {
		var level slog.Level

		err := level.UnmarshalText([]byte(strings.TrimSpace(s)))

		return level, err
	}), opts)
}
