// Package ingest loads tabular files from untrusted sources into a frame.Frame.
//
// A source may be compressed (gzip, zstd, framed snappy, brotli, lz4) and in any charset
// that golang.org/x/net/html/charset knows. The bytes are decompressed, decoded to UTF-8
// and parsed as CSV with frame.ReadCSV.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/amp-labs/validity/closer"
	"github.com/amp-labs/validity/frame"
	"github.com/amp-labs/validity/hashing"
	"github.com/amp-labs/validity/logger"
	"github.com/amp-labs/validity/should"
	"github.com/amp-labs/validity/using"
)

// ErrTooLarge is returned when the decompressed source exceeds the WithMaxBytes limit.
var ErrTooLarge = errors.New("source exceeds the size limit")

type options struct {
	compression Compression
	charset     string
	maxBytes    int64
	csv         []frame.CSVOption
	hash        hashing.HashFunc
}

func (o options) digest(h hashing.Hashable) (string, error) {
	if o.hash == nil {
		return hashing.XXH3(h)
	}

	return o.hash(h)
}

// Option configures Load and Read.
type Option func(*options)

// WithCompression overrides the codec picked from the file extension.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCharset names the source charset (e.g. "latin1", "windows-1252") instead of
// detecting it.
func WithCharset(label string) Option {
	return func(o *options) {
		o.charset = label
	}
}

// WithMaxBytes caps the decompressed size. 0 means no limit.
func WithMaxBytes(n int64) Option {
	return func(o *options) {
		o.maxBytes = n
	}
}

// WithCSVOptions passes options through to frame.ReadCSV.
func WithCSVOptions(opts ...frame.CSVOption) Option {
	return func(o *options) {
		o.csv = append(o.csv, opts...)
	}
}

// WithFingerprint sets the digest logged for the loaded table and its raw bytes, e.g.
// hashing.Sha256 when the value is compared across systems. The default is hashing.XXH3.
func WithFingerprint(fn hashing.HashFunc) Option {
	return func(o *options) {
		o.hash = fn
	}
}

// Load reads the file at path. The codec comes from the extension unless
// WithCompression says otherwise.
func Load(ctx context.Context, path string, opts ...Option) (*frame.Frame, error) {
	o := options{compression: CompressionFromPath(path)}
	for _, opt := range opts {
		opt(&o)
	}

	var f *frame.Frame

	err := using.OpenFile(path).Use(func(file *os.File) error {
		var err error

		f, err = read(ctx, path, file, o)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return f, nil
}

// Read parses r. It is not decompressed unless WithCompression is given.
func Read(ctx context.Context, r io.Reader, opts ...Option) (*frame.Frame, error) {
	o := options{compression: None}
	for _, opt := range opts {
		opt(&o)
	}

	return read(ctx, "reader", r, o)
}

func read(ctx context.Context, source string, r io.Reader, o options) (*frame.Frame, error) {
	decoded, decoderCloser, err := o.compression.NewReader(r)
	if err != nil {
		return nil, err
	}

	rc := closer.NewReadCloser(decoded, closer.NewStack(decoderCloser))
	defer should.Close(ctx, rc, "failed to release decompressor")

	data, err := readAll(rc, o.maxBytes)
	if err != nil {
		return nil, err
	}

	text, detected := utf8Reader(data, o.charset)

	f, err := frame.ReadCSV(text, o.csv...)
	if err != nil {
		return nil, err
	}

	fingerprint, err := o.digest(f)
	if err != nil {
		return nil, err
	}

	sourceDigest, err := o.digest(hashing.HashableBytes(data))
	if err != nil {
		return nil, err
	}

	logger.Get(ctx).Info("table loaded",
		"source", source,
		"compression", string(o.compression),
		"charset", detected,
		"bytes", len(data),
		"rows", f.Len(),
		"columns", len(f.Columns()),
		"fingerprint", fingerprint,
		"source_digest", sourceDigest)

	return f, nil
}

func readAll(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}

	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}

	return data, nil
}
