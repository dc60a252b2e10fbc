package ingest

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/amp-labs/validity/frame"
	"github.com/amp-labs/validity/hashing"
	"github.com/amp-labs/validity/logger"
	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/neilotoole/slogt"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

const testCSV = "id,name,amount\n1,alice,2.5\n2,bob,\n3,carol,4\n"

func compressWith(t *testing.T, data []byte, wrap func(io.Writer) (io.WriteCloser, error)) []byte {
	t.Helper()

	var buf bytes.Buffer

	w, err := wrap(&buf)
	require.NoError(t, err)

	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return buf.Bytes()
}

func assertTestFrame(t *testing.T, f *frame.Frame) {
	t.Helper()

	assert.Equal(t, []string{"id", "name", "amount"}, f.Columns())
	assert.Equal(t, 3, f.Len())

	amount, ok := f.Column("amount")
	require.True(t, ok)
	assert.Equal(t, frame.Float64, amount.DType())
	assert.True(t, frame.IsMissing(amount.At(1)))
}

func TestLoad_Compressions(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		ext  string
		wrap func(io.Writer) (io.WriteCloser, error)
	}{
		{"plain", ".csv", nil},
		{"gzip", ".csv.gz", func(w io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(w), nil }},
		{"zstd", ".csv.zst", func(w io.Writer) (io.WriteCloser, error) { return zstd.NewWriter(w) }},
		{"snappy", ".csv.sz", func(w io.Writer) (io.WriteCloser, error) { return snappy.NewBufferedWriter(w), nil }},
		{"brotli", ".csv.br", func(w io.Writer) (io.WriteCloser, error) { return brotli.NewWriter(w), nil }},
		{"lz4", ".csv.lz4", func(w io.Writer) (io.WriteCloser, error) { return lz4.NewWriter(w), nil }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := logger.WithLogger(t.Context(), slogt.New(t))

			data := []byte(testCSV)
			if tc.wrap != nil {
				data = compressWith(t, data, tc.wrap)
			}

			path := filepath.Join(t.TempDir(), "table"+tc.ext)
			require.NoError(t, os.WriteFile(path, data, 0o600))

			f, err := Load(ctx, path)
			require.NoError(t, err)
			assertTestFrame(t, f)
		})
	}
}

func TestCompressionFromPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Gzip, CompressionFromPath("a/b/data.CSV.GZ"))
	assert.Equal(t, Zstd, CompressionFromPath("data.zstd"))
	assert.Equal(t, LZ4, CompressionFromPath("data.lz4"))
	assert.Equal(t, None, CompressionFromPath("data.csv"))
	assert.Equal(t, None, CompressionFromPath("data"))
}

func TestRead_ExplicitCompression(t *testing.T) {
	t.Parallel()

	data := compressWith(t, []byte(testCSV), func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriter(w), nil
	})

	f, err := Read(t.Context(), bytes.NewReader(data), WithCompression(Gzip))
	require.NoError(t, err)
	assertTestFrame(t, f)

	_, err = Read(t.Context(), bytes.NewReader(data), WithCompression("rar"))
	require.ErrorIs(t, err, ErrUnknownCompression)

	_, err = Read(t.Context(), strings.NewReader("not gzip"), WithCompression(Gzip))
	require.Error(t, err)
}

func TestRead_ByteOrderMarks(t *testing.T) {
	t.Parallel()

	withUTF8BOM := append([]byte{0xEF, 0xBB, 0xBF}, testCSV...)

	f, err := Read(t.Context(), bytes.NewReader(withUTF8BOM))
	require.NoError(t, err)
	assertTestFrame(t, f)

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(testCSV)
	require.NoError(t, err)

	f, err = Read(t.Context(), strings.NewReader(utf16))
	require.NoError(t, err)
	assertTestFrame(t, f)
}

func TestRead_Charsets(t *testing.T) {
	t.Parallel()

	latin1 := []byte("city,zip\nS\xe3o Paulo,01000\nZ\xfcrich,8001\n")

	f, err := Read(t.Context(), bytes.NewReader(latin1), WithCharset("latin1"))
	require.NoError(t, err)

	city, ok := f.Column("city")
	require.True(t, ok)
	assert.Equal(t, "São Paulo", city.At(0))
	assert.Equal(t, "Zürich", city.At(1))

	detected, err := Read(t.Context(), bytes.NewReader(latin1))
	require.NoError(t, err)

	city, ok = detected.Column("city")
	require.True(t, ok)

	for i := range city.Len() {
		s, _ := city.At(i).(string)
		assert.True(t, utf8.ValidString(s), "row %d decoded to valid UTF-8", i)
	}
}

func TestRead_CSVOptionsAndLimit(t *testing.T) {
	t.Parallel()

	f, err := Read(t.Context(), strings.NewReader(testCSV),
		WithCSVOptions(frame.WithDTypes(map[string]frame.DType{"id": frame.String})))
	require.NoError(t, err)

	id, _ := f.Column("id")
	assert.Equal(t, frame.String, id.DType())

	_, err = Read(t.Context(), strings.NewReader(testCSV), WithMaxBytes(10))
	require.ErrorIs(t, err, ErrTooLarge)

	_, err = Read(t.Context(), strings.NewReader(testCSV), WithMaxBytes(int64(len(testCSV))))
	require.NoError(t, err)
}

func TestRead_Fingerprint(t *testing.T) {
	t.Parallel()

	for name, fn := range map[string]hashing.HashFunc{
		"default":  nil,
		"sha256":   hashing.Sha256,
		"xxhash64": hashing.XXHash64,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			ctx := logger.WithLogger(t.Context(), slog.New(slog.NewJSONHandler(&buf, nil)))

			opts := []Option{}
			if fn != nil {
				opts = append(opts, WithFingerprint(fn))
			} else {
				fn = hashing.XXH3
			}

			f, err := Read(ctx, strings.NewReader(testCSV), opts...)
			require.NoError(t, err)

			var record struct {
				Fingerprint  string `json:"fingerprint"`
				SourceDigest string `json:"source_digest"`
			}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

			want, err := fn(f)
			require.NoError(t, err)
			assert.Equal(t, want, record.Fingerprint)

			wantSource, err := fn(hashing.HashableBytes(testCSV))
			require.NoError(t, err)
			assert.Equal(t, wantSource, record.SourceDigest)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(t.Context(), filepath.Join(t.TempDir(), "absent.csv"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
