package mettaerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/F1R3FLY-io/mettatron/internal/mettaerr"
)

func TestNewHasNoCause(t *testing.T) {
	e := mettaerr.New(mettaerr.ErrConfig, "bad worker count")
	assert.Equal(t, mettaerr.ErrConfig, e.Type)
	assert.Nil(t, e.Unwrap())
	assert.Contains(t, e.Error(), "bad worker count")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	e := mettaerr.Wrap(mettaerr.ErrSnapshot, "writing snapshot", cause)
	assert.Same(t, cause, e.Unwrap())
	assert.Contains(t, e.Error(), "disk full")
	assert.Contains(t, e.Error(), "writing snapshot")
}

func TestWithContextRoundTrip(t *testing.T) {
	e := mettaerr.New(mettaerr.ErrModule, "not found").WithContext("path", "std/math")
	v, ok := e.GetContext("path")
	require.True(t, ok)
	assert.Equal(t, "std/math", v)

	_, ok = e.GetContext("missing")
	assert.False(t, ok)
}

func TestIsTypeMatchesThroughWrapping(t *testing.T) {
	inner := mettaerr.NewModuleError("std/io", errors.New("file not found"))
	outer := mettaerr.Wrap(mettaerr.ErrSnapshot, "loading module for snapshot", inner)

	assert.True(t, mettaerr.IsType(outer, mettaerr.ErrSnapshot))
	assert.True(t, mettaerr.IsType(inner, mettaerr.ErrModule))
	assert.False(t, mettaerr.IsType(outer, mettaerr.ErrModule))

	wrapped := fmt.Errorf("loading: %w", inner)
	assert.True(t, mettaerr.IsType(wrapped, mettaerr.ErrModule))
}

func TestIsTypeFalseForPlainError(t *testing.T) {
	assert.False(t, mettaerr.IsType(errors.New("plain"), mettaerr.ErrConfig))
}

func TestNewModuleErrorCarriesPathContext(t *testing.T) {
	e := mettaerr.NewModuleError("std/collections", errors.New("missing"))
	v, ok := e.GetContext("path")
	require.True(t, ok)
	assert.Equal(t, "std/collections", v)
	assert.Equal(t, mettaerr.ErrModule, e.Type)
}
