package dtypes

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/amp-labs/validity/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockedRegistry(t *testing.T) *Registry {
	t.Helper()

	reg := New()
	require.NoError(t, reg.Register(IsString, reflect.TypeFor[string]()))
	require.NoError(t, reg.Register(IsInteger, reflect.TypeFor[int]()))
	require.NoError(t, reg.Register(IsFloat, reflect.TypeFor[float64]()))
	require.NoError(t, reg.Register(IsString, reflect.TypeFor[string]()))

	return reg
}

func TestRegister_OverwritesSameAlias(t *testing.T) {
	t.Parallel()

	reg := mockedRegistry(t)

	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, []any{reflect.TypeFor[string](), reflect.TypeFor[int](), reflect.TypeFor[float64]()}, reg.Aliases())

	require.NoError(t, reg.Register(IsObject, reflect.TypeFor[string]()))
	assert.Equal(t, 3, reg.Len())

	pred, err := reg.Lookup(reflect.TypeFor[string]())
	require.NoError(t, err)

	ok, err := pred(frame.Objects("o", 1, 2))
	require.NoError(t, err)
	assert.True(t, ok, "last registration wins")
}

func TestLookup_NotRegistered(t *testing.T) {
	t.Parallel()

	reg := mockedRegistry(t)

	_, err := reg.Lookup("missing_key")
	require.Error(t, err)
	assert.Equal(t, "'missing_key' is not registered as a valid callable.", err.Error())
	require.ErrorIs(t, err, ErrRegistry)

	var regErr *RegistryError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, "missing_key", regErr.Alias)

	_, err = reg.Lookup([]string{"not", "comparable"})
	require.ErrorIs(t, err, ErrRegistry)
}

func TestRegister_AsDecorator(t *testing.T) {
	t.Parallel()

	reg := mockedRegistry(t)

	customValidator1 := reg.Decorator("tested")(func(frame.Column) bool {
		return true
	})

	assert.True(t, reg.Contains("tested"))
	assert.True(t, reg.Contains(customValidator1))

	customValidator2 := reg.Decorate(func(frame.Column) bool {
		return false
	})

	assert.True(t, reg.Contains(customValidator2))
	assert.False(t, customValidator2(frame.Ints("x")))

	pred, err := reg.Lookup(customValidator2)
	require.NoError(t, err)

	ok, err := pred(frame.Ints("x"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func invalidValidator(frame.Column) any {
	return "invalid return type"
}

func TestRegister_NonBooleanResult(t *testing.T) {
	t.Parallel()

	reg := mockedRegistry(t)

	err := reg.Register(invalidValidator, "key")
	require.Error(t, err)
	assert.Equal(t,
		"Callable `invalidValidator` should return a boolean value - returned `invalid return type`.",
		err.Error())
	require.ErrorIs(t, err, ErrRegistry)
	assert.False(t, reg.Contains("key"))
	assert.Equal(t, 3, reg.Len())
}

func TestRegister_NotCallable(t *testing.T) {
	t.Parallel()

	reg := mockedRegistry(t)

	err := reg.Register(nil)
	require.Error(t, err)
	assert.Equal(t, "`<nil>` should be a callable", err.Error())

	err = reg.Register("not a function", "key")
	require.Error(t, err)
	assert.Equal(t, "`not a function` should be a callable", err.Error())

	var nilFunc Func

	require.ErrorIs(t, reg.Register(nilFunc), ErrRegistry)

	err = reg.Register(func(int) bool { return true })
	require.ErrorIs(t, err, ErrRegistry)
	assert.Contains(t, err.Error(), "should be a callable")
}

func callableWithError(frame.Column) (bool, error) {
	return false, errors.New("Error") //nolint:err113
}

func callableWithPanic(frame.Column) bool {
	panic("Error")
}

func TestRegister_SanityCheckFailure(t *testing.T) {
	t.Parallel()

	reg := mockedRegistry(t)

	err := reg.Register(callableWithError)
	require.Error(t, err)
	assert.Equal(t, "Callable failed for the sanity check: callableWithError(int64): 'Error'", err.Error())

	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	require.Error(t, regErr.Cause)
	assert.Equal(t, "Error", regErr.Cause.Error())

	err = reg.Register(callableWithPanic, "panics")
	require.Error(t, err)
	assert.Equal(t, "Callable failed for the sanity check: callableWithPanic(int64): 'Error'", err.Error())
	assert.False(t, reg.Contains("panics"))
}

func TestRegister_NonComparableAlias(t *testing.T) {
	t.Parallel()

	reg := New()

	err := reg.Register(IsString, map[string]int{})
	require.ErrorIs(t, err, ErrRegistry)
	assert.Equal(t, 0, reg.Len())
}

func TestRegister_AcceptedShapes(t *testing.T) {
	t.Parallel()

	reg := New()

	require.NoError(t, reg.Register(Func(IsBool), "func"))
	require.NoError(t, reg.Register(Predicate(func(frame.Column) (bool, error) { return true, nil }), "predicate"))
	require.NoError(t, reg.Register(func(d frame.DType) bool { return d == frame.Int64 }, "dtype"))
	require.NoError(t, reg.Register(func(frame.Column) any { return true }, "any"))

	col := frame.Ints("n", 1)

	for _, alias := range []string{"predicate", "dtype", "any"} {
		pred, err := reg.Lookup(alias)
		require.NoError(t, err)

		ok, err := pred(col)
		require.NoError(t, err)
		assert.True(t, ok, alias)
	}
}

func TestPredicate_NonBooleanAtCallTime(t *testing.T) {
	t.Parallel()

	reg := New()

	flip := false
	require.NoError(t, reg.Register(func(frame.Column) any {
		defer func() { flip = true }()

		if flip {
			return 42
		}

		return true
	}, "flaky"))

	pred, err := reg.Lookup("flaky")
	require.NoError(t, err)

	_, err = pred(frame.Ints("n"))
	require.ErrorIs(t, err, ErrNotBoolean)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	reg := NewDefault()

	pred, err := reg.Resolve("int")
	require.NoError(t, err)

	ok, err := pred(frame.Ints("n", 1))
	require.NoError(t, err)
	assert.True(t, ok)

	pred, err = reg.Resolve(IsDatetime)
	require.NoError(t, err)

	ok, err = pred(frame.Ints("n", 1))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = reg.Resolve("decimal")
	require.ErrorIs(t, err, ErrRegistry)

	_, err = reg.Resolve(func() {})
	require.ErrorIs(t, err, ErrRegistry)
}

func TestNewDefault(t *testing.T) {
	t.Parallel()

	reg := NewDefault()

	cases := []struct {
		alias any
		col   frame.Column
		want  bool
	}{
		{"str", frame.Strings("s", "a"), true},
		{"str", frame.Objects("o", "a", nil), true},
		{"str", frame.Objects("o", "a", 1), false},
		{"int", frame.Ints("i", 1), true},
		{"int", frame.Floats("f", 1), false},
		{"float", frame.Floats("f", 1.5), true},
		{"numeric", frame.Ints("i", 1), true},
		{"numeric", frame.Strings("s", "1"), false},
		{"bool", frame.Bools("b", true), true},
		{"datetime", frame.Times("t", time.Now()), true},
		{"object", frame.Objects("o", struct{}{}), true},
		{reflect.TypeFor[string](), frame.Strings("s"), true},
		{reflect.TypeFor[int64](), frame.Ints("i"), true},
		{reflect.TypeFor[time.Time](), frame.Strings("s"), false},
	}

	for _, tc := range cases {
		pred, err := reg.Lookup(tc.alias)
		require.NoError(t, err, tc.alias)

		got, err := pred(tc.col)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%v on %s", tc.alias, tc.col.DType())
	}

	assert.True(t, reg.Contains(IsNumeric))
	assert.False(t, reg.Contains(callableWithPanic))
	assert.NotSame(t, reg, NewDefault())
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	id, ok := IdentityOf(IsString)
	require.True(t, ok)
	assert.Equal(t, "IsString", id.Name())

	other, ok := IdentityOf(IsString)
	require.True(t, ok)
	assert.Equal(t, id, other)

	_, ok = IdentityOf(42)
	assert.False(t, ok)
}
