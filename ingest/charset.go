package ingest

import (
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const utf8Name = "utf-8"

var boms = []struct { //nolint:gochecknoglobals
	mark []byte
	name string
}{
	{[]byte{0xEF, 0xBB, 0xBF}, "utf-8"},
	{[]byte{0xFF, 0xFE}, "utf-16le"},
	{[]byte{0xFE, 0xFF}, "utf-16be"},
}

// utf8Reader returns data decoded to UTF-8 and the name of the charset it was read as.
//
// A byte order mark wins over everything else and is stripped. Then the label is tried.
// Valid UTF-8 is passed through; anything else goes to chardet. When nothing works the
// data is passed through unchanged.
func utf8Reader(data []byte, label string) (io.Reader, string) {
	for _, bom := range boms {
		if bytes.HasPrefix(data, bom.mark) {
			decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())

			return transform.NewReader(bytes.NewReader(data), decoder), bom.name
		}
	}

	if label != "" {
		if r, err := charset.NewReaderLabel(label, bytes.NewReader(data)); err == nil {
			return r, label
		}
	}

	if utf8.Valid(data) {
		return bytes.NewReader(data), utf8Name
	}

	best, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		return bytes.NewReader(data), utf8Name
	}

	r, err := charset.NewReaderLabel(best.Charset, bytes.NewReader(data))
	if err != nil {
		return bytes.NewReader(data), utf8Name
	}

	return r, best.Charset
}
