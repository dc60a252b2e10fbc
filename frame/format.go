package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatValue renders a cell the way validation reports quote it: strings in single
// quotes, nil as None, NaN as nan, NaT as NaT.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case notATime:
		return val.String()
	case string:
		return Quote(val)
	case float64:
		return formatFloat(val, 64)
	case float32:
		return formatFloat(float64(val), 32)
	case time.Time:
		return Quote(val.Format(time.DateTime))
	case bool:
		if val {
			return "True"
		}

		return "False"
	case fmt.Stringer:
		return val.String()
	}

	if IsMissing(v) {
		return "None"
	}

	return fmt.Sprint(v)
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}

	return s
}

// Quote wraps s in single quotes, escaping embedded quotes and backslashes.
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)

	return "'" + r.Replace(s) + "'"
}

// FormatNames renders a list of names as ['a', 'b'].
func FormatNames(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = Quote(n)
	}

	return "[" + strings.Join(quoted, ", ") + "]"
}
