// Package frame is a small in-memory columnar table: named, typed columns of equal
// length addressed by row position. It is the data model validity checks run against.
//
// Consumers that already hold tabular data in another representation only need to
// satisfy the Table and Column interfaces.
package frame

import (
	"math"
	"reflect"
	"time"
)

// DType names the storage kind of a column. Its string form is the dtype reported
// in validation messages.
type DType string

const (
	Int64    DType = "int64"
	Int32    DType = "int32"
	Float64  DType = "float64"
	Float32  DType = "float32"
	Bool     DType = "bool"
	String   DType = "string"
	Datetime DType = "datetime64[ns]"
	Object   DType = "object"
)

func (d DType) String() string {
	return string(d)
}

// IsInteger reports whether d is a signed integer kind.
func (d DType) IsInteger() bool {
	return d == Int64 || d == Int32
}

// IsFloat reports whether d is a floating-point kind.
func (d DType) IsFloat() bool {
	return d == Float64 || d == Float32
}

// Valid reports whether d is one of the known kinds.
func (d DType) Valid() bool {
	switch d {
	case Int64, Int32, Float64, Float32, Bool, String, Datetime, Object:
		return true
	default:
		return false
	}
}

// accepts reports whether a non-missing value can be stored in a column of kind d.
func (d DType) accepts(v any) bool {
	switch d {
	case Int64:
		_, ok := v.(int64)

		return ok
	case Int32:
		_, ok := v.(int32)

		return ok
	case Float64:
		_, ok := v.(float64)

		return ok
	case Float32:
		_, ok := v.(float32)

		return ok
	case Bool:
		_, ok := v.(bool)

		return ok
	case String:
		_, ok := v.(string)

		return ok
	case Datetime:
		_, ok := v.(time.Time)

		return ok
	case Object:
		return true
	default:
		return false
	}
}

// missingFor returns the sentinel a column of kind d uses for an absent value.
func (d DType) missingFor() any {
	switch d {
	case Float64:
		return math.NaN()
	case Float32:
		return float32(math.NaN())
	case Datetime:
		return NaT
	default:
		return nil
	}
}

var timeType = reflect.TypeOf(time.Time{}) //nolint:gochecknoglobals

// DTypeOf returns the kind that stores values of Go type t, or Object when none fits.
func DTypeOf(t reflect.Type) DType {
	if t == nil {
		return Object
	}

	if t == timeType {
		return Datetime
	}

	switch t.Kind() {
	case reflect.Int64, reflect.Int:
		return Int64
	case reflect.Int32, reflect.Int16, reflect.Int8:
		return Int32
	case reflect.Float64:
		return Float64
	case reflect.Float32:
		return Float32
	case reflect.Bool:
		return Bool
	case reflect.String:
		return String
	default:
		return Object
	}
}
