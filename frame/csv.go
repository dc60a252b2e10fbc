package frame

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoHeader = errors.New("csv input has no header row")
	ErrBadCell  = errors.New("cannot parse csv cell")
)

// DefaultNATokens are the cell texts read as missing values.
var DefaultNATokens = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "NaT"} //nolint:gochecknoglobals

// DefaultTimeLayouts are tried in order when inferring datetime columns.
var DefaultTimeLayouts = []string{time.RFC3339Nano, time.DateTime, time.DateOnly} //nolint:gochecknoglobals

type csvOptions struct {
	dtypes  map[string]DType
	na      []string
	layouts []string
	comma   rune
}

// CSVOption configures ReadCSV.
type CSVOption func(*csvOptions)

// WithDTypes forces the dtype of the named columns instead of inferring it.
func WithDTypes(dtypes map[string]DType) CSVOption {
	return func(o *csvOptions) {
		o.dtypes = dtypes
	}
}

// WithNATokens replaces the set of cell texts treated as missing.
func WithNATokens(tokens ...string) CSVOption {
	return func(o *csvOptions) {
		o.na = tokens
	}
}

// WithTimeLayouts replaces the layouts used to parse datetime cells.
func WithTimeLayouts(layouts ...string) CSVOption {
	return func(o *csvOptions) {
		o.layouts = layouts
	}
}

// WithComma sets the field delimiter.
func WithComma(comma rune) CSVOption {
	return func(o *csvOptions) {
		o.comma = comma
	}
}

// ReadCSV parses r into a Frame. The first record names the columns. Column dtypes are
// inferred from the non-missing cells, trying int64, float64, bool, datetime and finally
// string; a column with no present cells becomes object. Missing cells hold the
// dtype's sentinel (NaN, NaT or nil).
func ReadCSV(r io.Reader, opts ...CSVOption) (*Frame, error) {
	options := csvOptions{
		na:      DefaultNATokens,
		layouts: DefaultTimeLayouts,
		comma:   ',',
	}

	for _, opt := range opts {
		opt(&options)
	}

	reader := csv.NewReader(r)
	reader.Comma = options.comma
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}

	if err != nil {
		return nil, err
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	columns := make([]*Series, len(header))

	for c, name := range header {
		cells := make([]string, len(records))
		for r, rec := range records {
			cells[r] = rec[c]
		}

		dtype, forced := options.dtypes[name]
		if !forced {
			dtype = options.infer(cells)
		}

		values, err := options.convert(name, dtype, cells)
		if err != nil {
			return nil, err
		}

		col, err := NewSeries(name, dtype, values)
		if err != nil {
			return nil, err
		}

		columns[c] = col
	}

	return New(columns...)
}

func (o *csvOptions) isNA(cell string) bool {
	return slices.Contains(o.na, strings.TrimSpace(cell))
}

func (o *csvOptions) infer(cells []string) DType {
	candidates := []DType{Int64, Float64, Bool, Datetime}
	seen := false

	for _, cell := range cells {
		if o.isNA(cell) {
			continue
		}

		seen = true

		candidates = slices.DeleteFunc(candidates, func(d DType) bool {
			_, err := o.parse(d, cell)

			return err != nil
		})

		if len(candidates) == 0 {
			return String
		}
	}

	if !seen {
		return Object
	}

	return candidates[0]
}

func (o *csvOptions) convert(name string, dtype DType, cells []string) ([]any, error) {
	values := make([]any, len(cells))

	for i, cell := range cells {
		if o.isNA(cell) {
			values[i] = dtype.missingFor()

			continue
		}

		v, err := o.parse(dtype, cell)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q row %d: %w", ErrBadCell, name, i, err)
		}

		values[i] = v
	}

	return values, nil
}

func (o *csvOptions) parse(dtype DType, cell string) (any, error) {
	text := strings.TrimSpace(cell)

	switch dtype {
	case Int64:
		return strconv.ParseInt(text, 10, 64)
	case Int32:
		n, err := strconv.ParseInt(text, 10, 32)

		return int32(n), err
	case Float64:
		return strconv.ParseFloat(text, 64)
	case Float32:
		f, err := strconv.ParseFloat(text, 32)

		return float32(f), err
	case Bool:
		switch strings.ToLower(text) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return nil, fmt.Errorf("%w: %q is not a boolean", ErrBadCell, text)
		}
	case Datetime:
		for _, layout := range o.layouts {
			if t, err := time.Parse(layout, text); err == nil {
				return t, nil
			}
		}

		return nil, fmt.Errorf("%w: %q matches no time layout", ErrBadCell, text)
	case String, Object:
		return cell, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDType, dtype)
	}
}
