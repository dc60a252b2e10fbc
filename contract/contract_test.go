package contract

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/amp-labs/validity/dtypes"
	"github.com/amp-labs/validity/frame"
	"github.com/amp-labs/validity/validity"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersYAML = `
name: orders
columns:
  - name: id
    type: int
  - name: amount
    type: float
  - name: note
    type: str
    optional: true
`

func orders(t *testing.T) *frame.Frame {
	t.Helper()

	return frame.MustNew(
		frame.Ints("id", 1, 2, 3),
		frame.Floats("amount", 9.5, 10, 11.25),
	)
}

func TestParse(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(ordersYAML))
	require.NoError(t, err)

	assert.Equal(t, "orders", c.Name)
	assert.False(t, c.AllowEmpty)
	assert.Equal(t, []string{"id", "amount"}, c.Required())
	assert.Equal(t, []string{"id", "amount", "note"}, c.Expected())
	assert.Equal(t, map[string]any{"id": "int", "amount": "float", "note": "str"}, c.DataTypes())
}

func TestParse_AggregatesProblems(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`
name: broken
columns:
  - name: id
  - type: int
  - name: id
`))
	require.ErrorIs(t, err, ErrInvalidContract)
	assert.Contains(t, err.Error(), "column #2 has no name")
	assert.Contains(t, err.Error(), `column "id" is declared twice`)

	_, err = Parse([]byte("name: x\ncolumns: []\n"))
	require.ErrorIs(t, err, ErrInvalidContract)

	_, err = Parse([]byte("name: x\nunknown_field: true\n"))
	require.ErrorIs(t, err, ErrInvalidContract)

	_, err = Parse(nil)
	require.ErrorIs(t, err, ErrInvalidContract)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "orders.yaml")
	require.NoError(t, os.WriteFile(path, []byte(ordersYAML), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "orders", c.Name)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestVerify(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(ordersYAML))
	require.NoError(t, err)
	require.NoError(t, c.Verify(dtypes.NewDefault()))

	c.Columns = append(c.Columns, Column{Name: "price", Type: "money"}, Column{Name: "tax", Type: "decimal"})

	err = c.Verify(dtypes.NewDefault())
	require.ErrorIs(t, err, dtypes.ErrRegistry)
	assert.Contains(t, err.Error(), `column "price": 'money' is not registered as a valid callable.`)
	assert.Contains(t, err.Error(), `column "tax"`)
}

func TestValidate_Passes(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(ordersYAML))
	require.NoError(t, err)

	require.NoError(t, c.Validate(t.Context(), orders(t), validity.WithLogger(slogt.New(t))))
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(ordersYAML))
	require.NoError(t, err)

	table, err := orders(t).Drop("id").Assign(frame.Strings("extra", "a", "b", "c"))
	require.NoError(t, err)
	require.NoError(t, table.Set(1, "amount", math.NaN()))

	err = c.Validate(t.Context(), table, validity.WithLogger(slogt.New(t)))
	require.Error(t, err)

	var group *validity.ErrorsGroup
	require.ErrorAs(t, err, &group)
	assert.Equal(t, "Validation of 'orders' failed", group.Message)

	messages := make([]string, 0, group.Len())
	for _, f := range group.Failures {
		messages = append(messages, f.String())
	}

	assert.Equal(t, []string{
		"The dataframe has missing columns: ['id']",
		"The dataframe has redundant columns: ['extra']",
		"Found 1 missing values: [{'index': 1, 'column': 'amount', 'value': nan}]",
	}, messages)
}

func TestValidate_Allowances(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(`
name: lenient
allow_empty: true
allow_redundant: true
allow_missing: true
columns:
  - name: id
    type: int
`))
	require.NoError(t, err)

	table, err := orders(t).Slice(0, 0)
	require.NoError(t, err)

	require.NoError(t, c.Validate(t.Context(), table, validity.WithLogger(slogt.New(t))))
}
