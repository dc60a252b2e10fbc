package should

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/amp-labs/validity/closer"
	"github.com/amp-labs/validity/logger"
	"github.com/stretchr/testify/assert"
)

func TestClose(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := logger.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	Close(ctx, nil, "nil closer")
	Close(ctx, closer.CustomCloser(func() error { return nil }), "ok closer")
	assert.Empty(t, buf.String())

	Close(ctx, closer.CustomCloser(func() error {
		return errors.New("disk on fire") //nolint:err113
	}), "failed to close input")

	assert.Contains(t, buf.String(), "failed to close input")
	assert.Contains(t, buf.String(), "disk on fire")
}
