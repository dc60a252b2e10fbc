// Package should provides cleanup helpers for operations that should succeed but
// may fail in practice. Failures are logged instead of returned, which suits defer.
package should

import (
	"context"
	"io"

	"github.com/amp-labs/validity/logger"
)

// Close closes c and logs msg with the error if closing fails. A nil closer is ignored.
//
// Example:
//
//	defer should.Close(ctx, reader, "failed to close input")
func Close(ctx context.Context, c io.Closer, msg string) {
	if c == nil {
		return
	}

	if err := c.Close(); err != nil {
		logger.Get(ctx).Error(msg, "error", err)
	}
}
