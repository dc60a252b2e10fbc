package frame

import (
	"fmt"
	"slices"
)

// Frame is an in-memory Table: an ordered set of equally long, uniquely named Series
// plus optional row labels.
type Frame struct {
	columns []*Series
	byName  map[string]int
	index   []any
	length  int
}

var _ Table = (*Frame)(nil)

// New assembles a Frame from columns. All columns must have the same length and
// distinct names. The columns are copied, so later changes to them do not leak in.
func New(columns ...*Series) (*Frame, error) {
	f := &Frame{byName: make(map[string]int, len(columns))}

	for i, col := range columns {
		if col == nil {
			return nil, fmt.Errorf("%w: position %d", ErrNilColumn, i)
		}

		if _, dup := f.byName[col.Name()]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, col.Name())
		}

		if i == 0 {
			f.length = col.Len()
		} else if col.Len() != f.length {
			return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrLengthMismatch, col.Name(), col.Len(), f.length)
		}

		f.byName[col.Name()] = i
		f.columns = append(f.columns, col.clone())
	}

	return f, nil
}

// MustNew is New that panics on error. Intended for fixtures and literals.
func MustNew(columns ...*Series) *Frame {
	f, err := New(columns...)
	if err != nil {
		panic(err)
	}

	return f
}

// WithIndex returns a copy of f whose rows are labelled by labels.
func (f *Frame) WithIndex(labels ...any) (*Frame, error) {
	if len(labels) != f.length {
		return nil, fmt.Errorf("%w: index has %d labels, want %d", ErrLengthMismatch, len(labels), f.length)
	}

	c := f.Clone()
	c.index = slices.Clone(labels)

	return c, nil
}

// Columns returns the column names in table order.
func (f *Frame) Columns() []string {
	names := make([]string, len(f.columns))
	for i, col := range f.columns {
		names[i] = col.Name()
	}

	return names
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return f.length
}

// Empty reports whether the frame has no rows.
func (f *Frame) Empty() bool {
	return f.length == 0
}

// Column returns the named column.
func (f *Frame) Column(name string) (Column, bool) {
	s, ok := f.Series(name)
	if !ok {
		return nil, false
	}

	return s, true
}

// Series returns the named column as its concrete type. Mutating it mutates the frame.
func (f *Frame) Series(name string) (*Series, bool) {
	idx, ok := f.byName[name]
	if !ok {
		return nil, false
	}

	return f.columns[idx], true
}

// Label returns the label of row i: the custom index when one is set, else i.
func (f *Frame) Label(i int) any {
	if f.index != nil {
		return f.index[i]
	}

	return i
}

// Set replaces a single cell.
func (f *Frame) Set(row int, column string, v any) error {
	s, ok := f.Series(column)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}

	return s.Set(row, v)
}

// Clone returns a deep copy of the column storage.
func (f *Frame) Clone() *Frame {
	c := &Frame{
		columns: make([]*Series, len(f.columns)),
		byName:  make(map[string]int, len(f.byName)),
		index:   slices.Clone(f.index),
		length:  f.length,
	}

	for i, col := range f.columns {
		c.columns[i] = col.clone()
		c.byName[col.Name()] = i
	}

	return c
}

// Drop returns a copy of f without the named columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	keep := make([]*Series, 0, len(f.columns))

	for _, col := range f.columns {
		if !slices.Contains(names, col.Name()) {
			keep = append(keep, col)
		}
	}

	out := MustNew(keep...)
	out.index = slices.Clone(f.index)

	if len(keep) == 0 {
		out.length = f.length
	}

	return out
}

// Assign returns a copy of f with col added, or replacing the column of the same name.
func (f *Frame) Assign(col *Series) (*Frame, error) {
	if col == nil {
		return nil, ErrNilColumn
	}

	if len(f.columns) > 0 && col.Len() != f.length {
		return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrLengthMismatch, col.Name(), col.Len(), f.length)
	}

	out := f.Clone()

	if idx, ok := out.byName[col.Name()]; ok {
		out.columns[idx] = col.clone()

		return out, nil
	}

	out.byName[col.Name()] = len(out.columns)
	out.columns = append(out.columns, col.clone())
	out.length = col.Len()

	return out, nil
}

// Slice returns rows [start, end) as a new Frame. Slice(0, 0) yields an empty frame
// with the same columns.
func (f *Frame) Slice(start, end int) (*Frame, error) {
	if start < 0 || end > f.length || start > end {
		return nil, fmt.Errorf("%w: [%d, %d) of %d rows", ErrOutOfRange, start, end, f.length)
	}

	out := &Frame{
		columns: make([]*Series, len(f.columns)),
		byName:  make(map[string]int, len(f.byName)),
		length:  end - start,
	}

	if f.index != nil {
		out.index = slices.Clone(f.index[start:end])
	}

	for i, col := range f.columns {
		out.columns[i] = col.slice(start, end)
		out.byName[col.Name()] = i
	}

	return out, nil
}
