package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_Add(t *testing.T) {
	t.Parallel()

	t.Run("adds non-nil errors", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		err1 := errors.New("error 1") //nolint:err113
		err2 := errors.New("error 2") //nolint:err113

		c.Add(err1)
		c.Add(err2)

		assert.True(t, c.HasError())
		assert.Equal(t, 2, c.Len())
	})

	t.Run("ignores nil errors", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}

		c.Add(nil)

		assert.False(t, c.HasError())
		assert.Empty(t, c.Errors())
	})
}

func TestCollection_Errors(t *testing.T) {
	t.Parallel()

	c := &Collection{}
	err1 := errors.New("first")  //nolint:err113
	err2 := errors.New("second") //nolint:err113

	c.Add(err1)
	c.Add(nil)
	c.Add(err2)

	errs := c.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, err1, errs[0])
	assert.Equal(t, err2, errs[1])

	// The returned slice is a copy.
	errs[0] = nil

	assert.Equal(t, err1, c.Errors()[0])
}

func TestCollection_GetError(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when empty", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}

		assert.NoError(t, c.GetError())
	})

	t.Run("returns single error", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		err1 := errors.New("error 1") //nolint:err113
		c.Add(err1)

		assert.Equal(t, err1, c.GetError())
	})

	t.Run("returns joined errors for multiple errors", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		err1 := errors.New("error 1") //nolint:err113
		err2 := errors.New("error 2") //nolint:err113

		c.Add(err1)
		c.Add(err2)

		err := c.GetError()

		require.Error(t, err)
		require.ErrorIs(t, err, err1)
		require.ErrorIs(t, err, err2)
	})
}
