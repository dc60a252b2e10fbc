package dtypes

import (
	"reflect"
	"time"

	"github.com/amp-labs/validity/frame"
)

// IsString matches string columns, and object columns whose present values are all strings.
func IsString(col frame.Column) bool {
	switch col.DType() { //nolint:exhaustive
	case frame.String:
		return true
	case frame.Object:
		for i := range col.Len() {
			v := col.At(i)
			if frame.IsMissing(v) {
				continue
			}

			if _, ok := v.(string); !ok {
				return false
			}
		}

		return true
	default:
		return false
	}
}

func IsInteger(col frame.Column) bool {
	return col.DType().IsInteger()
}

func IsFloat(col frame.Column) bool {
	return col.DType().IsFloat()
}

func IsNumeric(col frame.Column) bool {
	return col.DType().IsInteger() || col.DType().IsFloat()
}

func IsBool(col frame.Column) bool {
	return col.DType() == frame.Bool
}

func IsDatetime(col frame.Column) bool {
	return col.DType() == frame.Datetime
}

func IsObject(col frame.Column) bool {
	return col.DType() == frame.Object
}

// NewDefault returns a Registry holding the built-in predicates under their conventional
// tags and the Go types they correspond to.
func NewDefault() *Registry {
	r := New()

	MustRegister(r, IsString, "str", reflect.TypeFor[string]())
	MustRegister(r, IsInteger, "int", reflect.TypeFor[int](), reflect.TypeFor[int64](), reflect.TypeFor[int32]())
	MustRegister(r, IsFloat, "float", reflect.TypeFor[float64](), reflect.TypeFor[float32]())
	MustRegister(r, IsNumeric, "numeric")
	MustRegister(r, IsBool, "bool", reflect.TypeFor[bool]())
	MustRegister(r, IsDatetime, "datetime", reflect.TypeFor[time.Time]())
	MustRegister(r, IsObject, "object")

	return r
}
