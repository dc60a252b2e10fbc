package logger

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// AnnotateError attaches slog key-value pairs to err. Handlers wrapped with
// NewErrorAttrsHandler lift those pairs into the log record when the error is logged,
// so context captured where the error happened survives wrapping.
//
// Returns nil if err is nil.
func AnnotateError(err error, args ...any) error {
	if err == nil {
		return nil
	}

	// slog.Record does the key-value parsing for us.
	r := slog.NewRecord(time.Time{}, slog.LevelDebug, "", 0)
	r.Add(args...)

	attrs := make([]slog.Attr, 0, r.NumAttrs())

	r.Attrs(func(attr slog.Attr) bool {
		attrs = append(attrs, attr)

		return true
	})

	return &annotatedError{err: err, attrs: attrs}
}

type annotatedError struct {
	err   error
	attrs []slog.Attr
}

func (a *annotatedError) Error() string {
	return a.err.Error()
}

func (a *annotatedError) Unwrap() error {
	return a.err
}

var _ error = (*annotatedError)(nil)

// errorAttrsHandler decorates another handler, expanding annotated errors.
type errorAttrsHandler struct {
	inner slog.Handler
}

// NewErrorAttrsHandler wraps inner so that errors created with AnnotateError contribute
// their attributes to the record.
func NewErrorAttrsHandler(inner slog.Handler) slog.Handler {
	return &errorAttrsHandler{inner: inner}
}

var _ slog.Handler = (*errorAttrsHandler)(nil)

func (h *errorAttrsHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *errorAttrsHandler) Handle(ctx context.Context, record slog.Record) error {
	var (
		base  []slog.Attr
		extra []slog.Attr
	)

	record.Attrs(func(attr slog.Attr) bool {
		if err, ok := attr.Value.Any().(error); ok {
			var annotated *annotatedError
			if errors.As(err, &annotated) {
				base = append(base, slog.Any(attr.Key, annotated.err))
				extra = append(extra, annotated.attrs...)

				return true
			}
		}

		base = append(base, attr)

		return true
	})

	if len(extra) == 0 {
		return h.inner.Handle(ctx, record)
	}

	r := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	r.AddAttrs(base...)
	r.AddAttrs(extra...)

	return h.inner.Handle(ctx, r)
}

func (h *errorAttrsHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &errorAttrsHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *errorAttrsHandler) WithGroup(name string) slog.Handler {
	return &errorAttrsHandler{inner: h.inner.WithGroup(name)}
}
