// Package contract declares table contracts in YAML and runs them as a validation scope.
//
//	name: orders
//	allow_empty: false
//	allow_redundant: false
//	allow_missing: false
//	columns:
//	  - name: id
//	    type: int
//	  - name: note
//	    type: str
//	    optional: true
//
// Types are aliases resolved through a dtypes.Registry.
package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/amp-labs/validity/dtypes"
	validityErrors "github.com/amp-labs/validity/errors"
	"github.com/amp-labs/validity/frame"
	"github.com/amp-labs/validity/using"
	"github.com/amp-labs/validity/validity"
	"gopkg.in/yaml.v3"
)

// ErrInvalidContract is wrapped by every problem found in a contract document.
var ErrInvalidContract = errors.New("invalid contract")

// Column declares one expected column.
type Column struct {
	Name string `yaml:"name"`
	// Type is a registry alias. Empty means any type.
	Type string `yaml:"type,omitempty"`
	// Optional columns are allowed to be absent.
	Optional bool `yaml:"optional,omitempty"`
}

// Contract is a parsed contract document.
type Contract struct {
	Name           string   `yaml:"name"`
	AllowEmpty     bool     `yaml:"allow_empty"`
	AllowRedundant bool     `yaml:"allow_redundant"`
	AllowMissing   bool     `yaml:"allow_missing"`
	Columns        []Column `yaml:"columns"`
}

// Parse decodes a contract document. Unknown fields are rejected. All structural problems
// are reported together.
func Parse(data []byte) (*Contract, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Contract
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidContract)
		}

		return nil, fmt.Errorf("%w: %w", ErrInvalidContract, err)
	}

	if err := c.check(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Load reads and parses the contract at path.
func Load(path string) (*Contract, error) {
	var c *Contract

	err := using.OpenFile(path).Use(func(f *os.File) error {
		data, err := io.ReadAll(f)
		if err != nil {
			return err
		}

		c, err = Parse(data)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("loading contract %s: %w", path, err)
	}

	return c, nil
}

func (c *Contract) check() error {
	var errs validityErrors.Collection

	if len(c.Columns) == 0 {
		errs.Add(fmt.Errorf("%w: no columns declared", ErrInvalidContract))
	}

	seen := make(map[string]struct{}, len(c.Columns))

	for i, col := range c.Columns {
		if col.Name == "" {
			errs.Add(fmt.Errorf("%w: column #%d has no name", ErrInvalidContract, i+1))

			continue
		}

		if _, dup := seen[col.Name]; dup {
			errs.Add(fmt.Errorf("%w: column %q is declared twice", ErrInvalidContract, col.Name))
		}

		seen[col.Name] = struct{}{}
	}

	return errs.GetError()
}

// Required returns the names of the non-optional columns in declaration order.
func (c *Contract) Required() []string {
	var out []string

	for _, col := range c.Columns {
		if !col.Optional {
			out = append(out, col.Name)
		}
	}

	return out
}

// Expected returns every declared column name in declaration order.
func (c *Contract) Expected() []string {
	out := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		out[i] = col.Name
	}

	return out
}

// DataTypes maps each typed column to its alias.
func (c *Contract) DataTypes() map[string]any {
	out := make(map[string]any)

	for _, col := range c.Columns {
		if col.Type != "" {
			out[col.Name] = col.Type
		}
	}

	return out
}

// Verify checks that every type alias resolves in reg.
func (c *Contract) Verify(reg *dtypes.Registry) error {
	var errs validityErrors.Collection

	for _, col := range c.Columns {
		if col.Type == "" {
			continue
		}

		if _, err := reg.Lookup(col.Type); err != nil {
			errs.Add(fmt.Errorf("column %q: %w", col.Name, err))
		}
	}

	return errs.GetError()
}

// Apply runs the contract's checks on v: emptiness unless allow_empty, required columns,
// redundant columns unless allow_redundant, types of typed columns, and missing data unless
// allow_missing.
func (c *Contract) Apply(v *validity.Validator) error {
	if !c.AllowEmpty {
		v.IsEmpty()
	}

	v.HasRequiredColumns(c.Required())

	if !c.AllowRedundant {
		v.HasNoRedundantColumns(c.Expected())
	}

	if types := c.presentDataTypes(v.Table()); len(types) > 0 {
		v.HasValidDataTypes(types)
	}

	if !c.AllowMissing {
		v.HasNoMissingData()
	}

	return nil
}

// presentDataTypes is DataTypes restricted to columns table has. Absent required
// columns are already reported by HasRequiredColumns and absent optional ones are allowed.
func (c *Contract) presentDataTypes(table frame.Table) map[string]any {
	types := c.DataTypes()

	for name := range types {
		if _, ok := table.Column(name); !ok {
			delete(types, name)
		}
	}

	return types
}

// Validate runs the contract against table in its own scope. The scope is named after
// the contract unless opts name it otherwise.
func (c *Contract) Validate(ctx context.Context, table frame.Table, opts ...validity.Option) error {
	opts = append([]validity.Option{validity.WithName(c.Name)}, opts...)

	return validity.Validate(ctx, table, c.Apply, opts...)
}
