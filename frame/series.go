package frame

import (
	"errors"
	"fmt"
	"reflect"
	"time"
)

var (
	ErrTypeMismatch   = errors.New("value does not match column dtype")
	ErrUnknownDType   = errors.New("unknown dtype")
	ErrOutOfRange     = errors.New("row index out of range")
	ErrLengthMismatch = errors.New("columns have different lengths")
	ErrDuplicateName  = errors.New("duplicate column name")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrNilColumn      = errors.New("nil column")
)

// Column is a read-only view of one named, typed column.
type Column interface {
	Name() string
	DType() DType
	Len() int
	At(i int) any
}

// Table is a read-only view of rows and named columns. Columns returns names in
// table order; Label returns the row label used when reporting a cell.
type Table interface {
	Columns() []string
	Len() int
	Column(name string) (Column, bool)
	Label(row int) any
}

// Series is an in-memory Column. Values are stored boxed; every value either matches
// the dtype or is a missing sentinel (see IsMissing).
type Series struct {
	name   string
	dtype  DType
	values []any
}

var _ Column = (*Series)(nil)

// NewSeries builds a Series, checking every value against dtype.
func NewSeries(name string, dtype DType, values []any) (*Series, error) {
	if !dtype.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDType, dtype)
	}

	vals := make([]any, len(values))

	for i, v := range values {
		if !IsMissing(v) && !dtype.accepts(v) {
			return nil, fmt.Errorf("%w: column %q row %d holds %T, want %s", ErrTypeMismatch, name, i, v, dtype)
		}

		vals[i] = v
	}

	return &Series{name: name, dtype: dtype, values: vals}, nil
}

func box[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}

	return out
}

func must(s *Series, err error) *Series {
	if err != nil {
		panic(err)
	}

	return s
}

// Ints returns an int64 Series.
func Ints(name string, values ...int64) *Series {
	return must(NewSeries(name, Int64, box(values)))
}

// Floats returns a float64 Series.
func Floats(name string, values ...float64) *Series {
	return must(NewSeries(name, Float64, box(values)))
}

// Strings returns a string Series.
func Strings(name string, values ...string) *Series {
	return must(NewSeries(name, String, box(values)))
}

// Bools returns a bool Series.
func Bools(name string, values ...bool) *Series {
	return must(NewSeries(name, Bool, box(values)))
}

// Times returns a datetime Series.
func Times(name string, values ...time.Time) *Series {
	return must(NewSeries(name, Datetime, box(values)))
}

// Objects returns an object Series holding arbitrary values.
func Objects(name string, values ...any) *Series {
	return must(NewSeries(name, Object, values))
}

// Infer picks the narrowest dtype shared by every non-missing value, falling back to
// Object for mixed or unknown types. Go ints are widened to int64.
func Infer(name string, values ...any) *Series {
	var dtype DType

	vals := make([]any, len(values))

	for i, v := range values {
		vals[i] = v
		if IsMissing(v) {
			continue
		}

		if n, ok := v.(int); ok {
			vals[i] = int64(n)
		}

		kind := DTypeOf(reflect.TypeOf(vals[i]))
		if !kind.accepts(vals[i]) {
			kind = Object
		}

		switch {
		case dtype == "":
			dtype = kind
		case dtype != kind:
			dtype = Object
		}
	}

	if dtype == "" {
		dtype = Object
	}

	return must(NewSeries(name, dtype, vals))
}

func (s *Series) Name() string { return s.name }
func (s *Series) DType() DType { return s.dtype }
func (s *Series) Len() int     { return len(s.values) }

// At returns the value at row i. It panics when i is out of range, like a slice index.
func (s *Series) At(i int) any {
	return s.values[i]
}

// Values returns a copy of the column values.
func (s *Series) Values() []any {
	out := make([]any, len(s.values))
	copy(out, s.values)

	return out
}

// Set replaces the value at row i. Missing sentinels are accepted in any dtype.
func (s *Series) Set(i int, v any) error {
	if i < 0 || i >= len(s.values) {
		return fmt.Errorf("%w: %d", ErrOutOfRange, i)
	}

	if !IsMissing(v) && !s.dtype.accepts(v) {
		return fmt.Errorf("%w: column %q row %d holds %T, want %s", ErrTypeMismatch, s.name, i, v, s.dtype)
	}

	s.values[i] = v

	return nil
}

// SetMissing stores the dtype's own missing sentinel at row i (NaN, NaT or nil).
func (s *Series) SetMissing(i int) error {
	return s.Set(i, s.dtype.missingFor())
}

// Rename returns a copy of the Series under another name.
func (s *Series) Rename(name string) *Series {
	c := s.clone()
	c.name = name

	return c
}

func (s *Series) clone() *Series {
	return &Series{name: s.name, dtype: s.dtype, values: s.Values()}
}

func (s *Series) slice(start, end int) *Series {
	vals := make([]any, end-start)
	copy(vals, s.values[start:end])

	return &Series{name: s.name, dtype: s.dtype, values: vals}
}
