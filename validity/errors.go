package validity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amp-labs/validity/frame"
)

// ErrScopeClosed is returned by a second Close.
var ErrScopeClosed = errors.New("validation scope is already closed")

// Kind identifies the rule a ValidationError reports.
type Kind string

const (
	KindEmpty            Kind = "empty"
	KindMissingColumns   Kind = "missing_columns"
	KindRedundantColumns Kind = "redundant_columns"
	KindInvalidDataType  Kind = "invalid_data_type"
	KindMissingData      Kind = "missing_data"
	KindCustom           Kind = "custom"
)

// MissingValue locates one missing cell.
type MissingValue struct {
	Index  any
	Column string
	Value  any
}

func (m MissingValue) String() string {
	return fmt.Sprintf("{'index': %s, 'column': %s, 'value': %s}",
		frame.FormatValue(m.Index), frame.Quote(m.Column), frame.FormatValue(m.Value))
}

// ValidationError is one violated rule. The fields hold enough to rebuild the message;
// which of them are set depends on Kind.
type ValidationError struct {
	Kind Kind
	// Column is the offending column of a KindInvalidDataType error.
	Column string
	// Columns lists the missing or redundant column names.
	Columns []string
	// DType is the actual dtype of Column.
	DType frame.DType
	// Missing holds every located missing cell in scan order.
	Missing []MissingValue
	// Total is the exact number of missing cells.
	Total int
	// Limit caps the records rendered in the message; 0 renders all of them.
	Limit int
	// Message is the text of a KindCustom error.
	Message string
}

// Violationf builds a custom ValidationError. Custom checks return it to report a rule
// violation instead of an unexpected failure.
func Violationf(format string, args ...any) *ValidationError {
	return &ValidationError{Kind: KindCustom, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindEmpty:
		return "The dataframe is empty."
	case KindMissingColumns:
		return "The dataframe has missing columns: " + frame.FormatNames(e.Columns)
	case KindRedundantColumns:
		return "The dataframe has redundant columns: " + frame.FormatNames(e.Columns)
	case KindInvalidDataType:
		return fmt.Sprintf("Column %s has invalid data-type: %s", frame.Quote(e.Column), frame.Quote(e.DType.String()))
	case KindMissingData:
		return fmt.Sprintf("Found %d missing values: %s", e.Total, e.formatMissing())
	case KindCustom:
		return e.Message
	default:
		return fmt.Sprintf("validation failed: %s", e.Kind)
	}
}

func (e *ValidationError) formatMissing() string {
	records := e.Missing
	truncated := false

	if e.Limit > 0 && len(records) > e.Limit {
		records = records[:e.Limit]
		truncated = true
	}

	parts := make([]string, 0, len(records)+1)
	for _, r := range records {
		parts = append(parts, r.String())
	}

	if truncated || len(e.Missing) < e.Total {
		parts = append(parts, "...")
	}

	return "[" + strings.Join(parts, ", ") + "]"
}
