package errors

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCapturesCallerStack(t *testing.T) {
	err := New(ErrorTypeState, "append after close")
	require.NotEmpty(t, err.Stack)
	assert.True(t, strings.HasSuffix(err.Stack[0].Function, "TestNewCapturesCallerStack"), err.Stack[0].Function)
	assert.True(t, strings.HasSuffix(err.Stack[0].File, "errors_test.go"))
	assert.LessOrEqual(t, len(err.Stack), maxStackDepth)
}

func TestWrapPreservesInnerStack(t *testing.T) {
	inner := New(ErrorTypeData, "crc mismatch")
	outer := Wrap(inner, ErrorTypeInternal, "build failed")

	assert.Equal(t, inner.Stack, outer.Stack)
	assert.Same(t, inner, outer.Unwrap())
	assert.Equal(t, "internal: build failed: data: crc mismatch", outer.Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "unused"))
}

func TestWrapForeignError(t *testing.T) {
	err := Wrap(io.EOF, ErrorTypeData, "short read")
	require.NotEmpty(t, err.Stack)
	assert.True(t, strings.HasSuffix(err.Stack[0].Function, "TestWrapForeignError"))
	assert.True(t, Is(err, io.EOF))
}

func TestDetail(t *testing.T) {
	err := New(ErrorTypeConversion, "mismatch").WithDetail("field", "name")

	v, ok := Detail(err, "field")
	assert.True(t, ok)
	assert.Equal(t, "name", v)

	_, ok = Detail(err, "missing")
	assert.False(t, ok)
	_, ok = Detail(io.EOF, "field")
	assert.False(t, ok)
}
