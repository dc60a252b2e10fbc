package ingest

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/amp-labs/validity/closer"
	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrUnknownCompression is returned for a Compression value with no decoder.
var ErrUnknownCompression = errors.New("unknown compression")

// Compression names the codec a source is wrapped in.
type Compression string

const (
	None   Compression = "none"
	Gzip   Compression = "gzip"
	Zstd   Compression = "zstd"
	Snappy Compression = "snappy"
	Brotli Compression = "br"
	LZ4    Compression = "lz4"
)

var extensions = map[string]Compression{ //nolint:gochecknoglobals
	".gz":     Gzip,
	".gzip":   Gzip,
	".zst":    Zstd,
	".zstd":   Zstd,
	".sz":     Snappy,
	".snappy": Snappy,
	".br":     Brotli,
	".lz4":    LZ4,
}

// CompressionFromPath picks the codec from the file extension. Unknown extensions mean None.
func CompressionFromPath(path string) Compression {
	if c, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return c
	}

	return None
}

// NewReader returns a reader that decompresses r. The closer releases decoder state and
// may be nil. Snappy input uses the framed format.
func (c Compression) NewReader(r io.Reader) (io.Reader, io.Closer, error) {
	switch c {
	case None, "":
		return r, nil, nil
	case Gzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("opening gzip stream: %w", err)
		}

		return gz, gz, nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("opening zstd stream: %w", err)
		}

		return dec, closer.CustomCloser(func() error {
			dec.Close()

			return nil
		}), nil
	case Snappy:
		return snappy.NewReader(r), nil, nil
	case Brotli:
		return brotli.NewReader(r), nil, nil
	case LZ4:
		return lz4.NewReader(r), nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownCompression, string(c))
	}
}
