package module_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/F1R3FLY-io/mettatron/internal/module"
	"github.com/F1R3FLY-io/mettatron/internal/space"
)

func TestRegisterAndResolve(t *testing.T) {
	reg := module.NewMemRegistry(nil)
	spc := space.New("math", nil)
	reg.Register("self:math", spc)

	got, err := reg.Resolve("self:math")
	require.NoError(t, err)
	assert.Same(t, spc, got)
}

func TestResolveUnknownPathErrors(t *testing.T) {
	reg := module.NewMemRegistry(nil)
	_, err := reg.Resolve("top:missing")
	assert.Error(t, err)
}
