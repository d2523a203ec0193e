package bindings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/F1R3FLY-io/mettatron/internal/bindings"
	"github.com/F1R3FLY-io/mettatron/internal/term"
)

func eq(a, b term.Term) bool { return term.StructuralEqual(a, b) }

func TestEmptyBindings(t *testing.T) {
	b := bindings.Empty
	assert.True(t, b.IsEmpty())
	assert.Equal(t, 0, b.Len())
	_, ok := b.Get("$x")
	assert.False(t, ok)
}

func TestSingleBinding(t *testing.T) {
	b, ok := bindings.Insert(bindings.Empty, "$x", term.Int(1), eq)
	require.True(t, ok)
	assert.Equal(t, bindings.ShapeSingle, bindings.DebugShape(b))
	v, ok := b.Get("$x")
	require.True(t, ok)
	assert.Equal(t, term.Int(1), v)
}

func TestTransitionToSmall(t *testing.T) {
	b, ok := bindings.Insert(bindings.Empty, "$x", term.Int(1), eq)
	require.True(t, ok)
	b, ok = bindings.Insert(b, "$y", term.Int(2), eq)
	require.True(t, ok)
	assert.Equal(t, bindings.ShapeSmall, bindings.DebugShape(b))
	assert.Equal(t, 2, b.Len())
}

func TestSmallBindings(t *testing.T) {
	b := bindings.Empty
	var ok bool
	names := []term.Variable{"$a", "$b", "$c", "$d", "$e"}
	for i, n := range names {
		b, ok = bindings.Insert(b, n, term.Int(i), eq)
		require.True(t, ok)
	}
	assert.Equal(t, bindings.ShapeSmall, bindings.DebugShape(b))
	assert.Equal(t, len(names), b.Len())
	for i, n := range names {
		v, ok := b.Get(n)
		require.True(t, ok)
		assert.Equal(t, term.Int(i), v)
	}
}

func TestIterator(t *testing.T) {
	b := bindings.Empty
	var ok bool
	b, ok = bindings.Insert(b, "$a", term.Int(1), eq)
	require.True(t, ok)
	b, ok = bindings.Insert(b, "$b", term.Int(2), eq)
	require.True(t, ok)
	b, ok = bindings.Insert(b, "$c", term.Int(3), eq)
	require.True(t, ok)

	seen := map[term.Variable]term.Term{}
	bindings.Range(b, func(name term.Variable, value term.Term) bool {
		seen[name] = value
		return true
	})
	assert.Len(t, seen, 3)
	assert.Contains(t, seen, term.Variable("$a"))
	assert.Contains(t, seen, term.Variable("$b"))
	assert.Contains(t, seen, term.Variable("$c"))
}

func TestEmptyIterator(t *testing.T) {
	count := 0
	bindings.Range(bindings.Empty, func(term.Variable, term.Term) bool {
		count++
		return true
	})
	assert.Equal(t, 0, count)
}

func TestSingleIterator(t *testing.T) {
	b, ok := bindings.Insert(bindings.Empty, "$x", term.Int(42), eq)
	require.True(t, ok)
	count := 0
	bindings.Range(b, func(name term.Variable, value term.Term) bool {
		count++
		assert.Equal(t, term.Variable("$x"), name)
		assert.Equal(t, term.Int(42), value)
		return true
	})
	assert.Equal(t, 1, count)
}

func TestRebindSameValueSucceeds(t *testing.T) {
	b, ok := bindings.Insert(bindings.Empty, "$x", term.Int(1), eq)
	require.True(t, ok)
	b2, ok := bindings.Insert(b, "$x", term.Int(1), eq)
	require.True(t, ok)
	assert.Equal(t, b, b2)
}

func TestRebindDifferentValueFails(t *testing.T) {
	b, ok := bindings.Insert(bindings.Empty, "$x", term.Int(1), eq)
	require.True(t, ok)
	_, ok = bindings.Insert(b, "$x", term.Int(2), eq)
	assert.False(t, ok)
}
