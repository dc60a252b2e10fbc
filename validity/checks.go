package validity

import (
	"fmt"
	"maps"
	"slices"

	"github.com/amp-labs/validity/frame"
	"github.com/amp-labs/validity/utils"
)

const (
	checkIsEmpty            = "is_empty"
	checkRequiredColumns    = "has_required_columns"
	checkNoRedundantColumns = "has_no_redundant_columns"
	checkValidDataTypes     = "has_valid_data_types"
	checkNoMissingData      = "has_no_missing_data"
)

// IsEmpty records a failure when the table has no rows.
func (v *Validator) IsEmpty() {
	v.run(checkIsEmpty, func(report func(error)) {
		if v.table.Len() == 0 {
			report(&ValidationError{Kind: KindEmpty})
		}
	})
}

// HasRequiredColumns records one failure listing the expected columns the table lacks,
// in the order they were expected.
func (v *Validator) HasRequiredColumns(expected []string) {
	v.run(checkRequiredColumns, func(report func(error)) {
		if missing := difference(expected, v.table.Columns()); len(missing) > 0 {
			report(&ValidationError{Kind: KindMissingColumns, Columns: missing})
		}
	})
}

// HasNoRedundantColumns records one failure listing the table columns that were not
// expected, in table order.
func (v *Validator) HasNoRedundantColumns(expected []string) {
	v.run(checkNoRedundantColumns, func(report func(error)) {
		if redundant := difference(v.table.Columns(), expected); len(redundant) > 0 {
			report(&ValidationError{Kind: KindRedundantColumns, Columns: redundant})
		}
	})
}

// HasValidDataTypes checks each column named in expected. A value is either a type
// alias resolved through the registry or a predicate function. Columns are checked in
// table order and independently: a column whose predicate fails to resolve or errors
// records an unexpected failure and the remaining columns are still checked. Each entry
// naming a column the table does not have records a frame.ErrUnknownColumn failure
// afterwards, in name order.
func (v *Validator) HasValidDataTypes(expected map[string]any) {
	v.run(checkValidDataTypes, func(report func(error)) {
		present := make(map[string]struct{}, len(expected))

		for _, name := range v.table.Columns() {
			want, ok := expected[name]
			if !ok {
				continue
			}

			present[name] = struct{}{}

			report(utils.Capture(func() error {
				return v.checkDataType(name, want)
			}))
		}

		for _, name := range slices.Sorted(maps.Keys(expected)) {
			if _, ok := present[name]; !ok {
				report(fmt.Errorf("%w: %q", frame.ErrUnknownColumn, name))
			}
		}
	})
}

func (v *Validator) checkDataType(name string, want any) error {
	predicate, err := v.opts.registry.Resolve(want)
	if err != nil {
		return err
	}

	col, ok := v.table.Column(name)
	if !ok {
		return fmt.Errorf("%w: %q", frame.ErrUnknownColumn, name)
	}

	valid, err := predicate(col)
	if err != nil {
		return err
	}

	if !valid {
		return &ValidationError{Kind: KindInvalidDataType, Column: name, DType: col.DType()}
	}

	return nil
}

// HasNoMissingData scans every cell, row by row and within a row in column order, and
// records one failure locating all missing values.
func (v *Validator) HasNoMissingData() {
	v.run(checkNoMissingData, func(report func(error)) {
		names := v.table.Columns()
		columns := make([]frame.Column, 0, len(names))

		for _, name := range names {
			col, ok := v.table.Column(name)
			if !ok {
				report(fmt.Errorf("%w: %q", frame.ErrUnknownColumn, name))

				return
			}

			columns = append(columns, col)
		}

		var missing []MissingValue

		for row := range v.table.Len() {
			for _, col := range columns {
				if val := col.At(row); frame.IsMissing(val) {
					missing = append(missing, MissingValue{
						Index:  v.table.Label(row),
						Column: col.Name(),
						Value:  val,
					})
				}
			}
		}

		if len(missing) > 0 {
			report(&ValidationError{
				Kind:    KindMissingData,
				Missing: missing,
				Total:   len(missing),
				Limit:   v.opts.missingLimit,
			})
		}
	})
}

// Check runs a custom check. fn reports a rule violation by returning a *ValidationError
// (see Violationf); any other error, or a panic, is recorded as an unexpected failure.
func (v *Validator) Check(name string, fn func(table frame.Table) error) {
	v.run(name, func(report func(error)) {
		report(fn(v.table))
	})
}

// difference returns the elements of a absent from b, in a's order and without repeats.
func difference(a, b []string) []string {
	exclude := make(map[string]struct{}, len(b))
	for _, s := range b {
		exclude[s] = struct{}{}
	}

	var out []string

	for _, s := range a {
		if _, skip := exclude[s]; skip {
			continue
		}

		exclude[s] = struct{}{}
		out = append(out, s)
	}

	return out
}
