package frame

import (
	"hash"
	"io"
	"strconv"

	"github.com/amp-labs/validity/hashing"
)

// Frames are hashing.Hashable, so any hashing.HashFunc fingerprints them.
var _ hashing.Hashable = (*Frame)(nil)

// UpdateHash feeds the frame's shape, column names, dtypes and cell renderings into h.
// Two frames with the same content produce the same digest regardless of how they
// were built.
func (f *Frame) UpdateHash(h hash.Hash) error {
	write := func(s string) error {
		if _, err := io.WriteString(h, s); err != nil {
			return err
		}

		_, err := h.Write([]byte{0})

		return err
	}

	if err := write(strconv.Itoa(f.length)); err != nil {
		return err
	}

	for _, col := range f.columns {
		if err := write(col.Name()); err != nil {
			return err
		}

		if err := write(col.DType().String()); err != nil {
			return err
		}

		for _, v := range col.values {
			if err := write(FormatValue(v)); err != nil {
				return err
			}
		}
	}

	return nil
}
