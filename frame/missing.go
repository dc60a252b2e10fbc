package frame

import (
	"database/sql/driver"
	"math"
	"reflect"
)

type notATime struct{}

func (notATime) String() string {
	return "NaT"
}

// NaT is the missing-value sentinel of datetime columns.
var NaT any = notATime{} //nolint:gochecknoglobals

// IsMissing reports whether v is a missing-value sentinel:
//   - nil, and nil pointers, maps, slices, interfaces, funcs and channels
//   - NaT
//   - NaN as float64 or float32
//   - a driver.Valuer (sql.NullString, sql.NullTime, ...) whose Value() is nil
//
// Zero time.Time values and empty strings are present values.
func IsMissing(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case notATime:
		return true
	case float64:
		return math.IsNaN(val)
	case float32:
		return math.IsNaN(float64(val))
	case driver.Valuer:
		if isNilRef(reflect.ValueOf(val)) {
			return true
		}

		inner, err := val.Value()

		return err == nil && inner == nil
	}

	return isNilRef(reflect.ValueOf(v))
}

func isNilRef(rv reflect.Value) bool {
	switch rv.Kind() { //nolint:exhaustive
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
