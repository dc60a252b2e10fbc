package using

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testString = "test"

func TestUse_Success(t *testing.T) {
	t.Parallel()

	called := false
	closeCalled := false

	resource := NewResource(func() (string, Closer, error) {
		return testString + " value", func() error {
			closeCalled = true

			return nil
		}, nil
	})

	err := resource.Use(func(value string) error {
		assert.Equal(t, testString+" value", value)

		called = true

		return nil
	})

	require.NoError(t, err)
	assert.True(t, called, "function should have been called")
	assert.True(t, closeCalled, "closer should have been called")
}

func TestUse_NilResource(t *testing.T) {
	t.Parallel()

	var resource *Resource[string]

	err := resource.Use(func(value string) error {
		return nil
	})

	require.ErrorIs(t, err, ErrResourceNil)
}

func TestUse_NilFunction(t *testing.T) {
	t.Parallel()

	err := Value(testString, nil).Use(nil)

	require.ErrorIs(t, err, ErrFuncNil)
}

func TestUse_CreateFails(t *testing.T) {
	t.Parallel()

	expectedErr := errors.New("resource error") //nolint:err113

	resource := NewResource(func() (string, Closer, error) {
		return "", nil, expectedErr
	})

	err := resource.Use(func(value string) error {
		t.Fatal("should not be called")

		return nil
	})

	assert.Equal(t, expectedErr, err)
}

func TestUse_FunctionAndCloserErrors(t *testing.T) {
	t.Parallel()

	funcErr := errors.New("function error") //nolint:err113
	closeErr := errors.New("closer error")  //nolint:err113

	err := Value(testString, func() error { return closeErr }).Use(func(value string) error {
		return funcErr
	})

	require.ErrorIs(t, err, funcErr)
	require.ErrorIs(t, err, closeErr)
}

func TestUse_CloserOnlyError(t *testing.T) {
	t.Parallel()

	closeErr := errors.New("closer error") //nolint:err113

	err := Value(testString, func() error { return closeErr }).Use(func(value string) error {
		return nil
	})

	assert.Equal(t, closeErr, err)
}

func TestUse_CloserRunsOnPanic(t *testing.T) {
	t.Parallel()

	closeCalled := false

	resource := Value(testString, func() error {
		closeCalled = true

		return nil
	})

	assert.PanicsWithValue(t, "boom", func() {
		_ = resource.Use(func(value string) error {
			panic("boom")
		})
	})

	assert.True(t, closeCalled)
}

func TestOpenFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.txt")
	require.NoError(t, os.WriteFile(path, []byte("test content"), 0o600))

	var (
		content string
		handle  *os.File
	)

	err := OpenFile(path).Use(func(f *os.File) error {
		handle = f

		data, err := io.ReadAll(f)
		if err != nil {
			return err
		}

		content = string(data)

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "test content", content)

	_, err = handle.Read(make([]byte, 1))
	require.Error(t, err, "file should be closed after Use")
}

func TestOpenFile_NonExistent(t *testing.T) {
	t.Parallel()

	err := OpenFile(filepath.Join(t.TempDir(), "missing")).Use(func(f *os.File) error {
		t.Fatal("should not be called")

		return nil
	})

	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWrapCloser_Nil(t *testing.T) {
	t.Parallel()

	assert.NoError(t, WrapCloser(nil)())
}
