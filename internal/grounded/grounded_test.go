package grounded_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/F1R3FLY-io/mettatron/internal/grounded"
	"github.com/F1R3FLY-io/mettatron/internal/term"
)

func valueTerms(vs []grounded.Value) []term.Term {
	out := make([]term.Term, len(vs))
	for i, v := range vs {
		out[i] = v.Term
	}
	return out
}

func literalEval(t term.Term) ([]term.Term, error) { return []term.Term{t}, nil }

func TestArithmeticBasic(t *testing.T) {
	reg := grounded.NewStandardRegistry()

	vs, err := reg.Apply("+", []term.Term{term.Int(2), term.Int(3)}, literalEval)
	require.Nil(t, err)
	assert.Equal(t, []term.Term{term.Int(5)}, valueTerms(vs))

	vs, err = reg.Apply("+", []term.Term{term.Int(2), term.Float(0.5)}, literalEval)
	require.Nil(t, err)
	assert.Equal(t, []term.Term{term.Float(2.5)}, valueTerms(vs))
}

func TestArithmeticDivisionByZero(t *testing.T) {
	reg := grounded.NewStandardRegistry()
	_, err := reg.Apply("/", []term.Term{term.Int(1), term.Int(0)}, literalEval)
	require.NotNil(t, err)
	assert.Equal(t, grounded.Arithmetic, err.Kind)
}

func TestArityMismatch(t *testing.T) {
	reg := grounded.NewStandardRegistry()
	_, err := reg.Apply("+", []term.Term{term.Int(1)}, literalEval)
	require.NotNil(t, err)
	assert.Equal(t, grounded.IncorrectArgument, err.Kind)
}

// TestNondeterministicArgumentFansOut is the S1 scenario: a grounded
// operator's argument reduces to more than one branch, and the
// operator combines across the full Cartesian product.
func TestNondeterministicArgumentFansOut(t *testing.T) {
	reg := grounded.NewStandardRegistry()
	multiValued := func(t term.Term) ([]term.Term, error) {
		if t == term.Symbol("f") {
			return []term.Term{term.Int(1), term.Int(2)}, nil
		}
		return []term.Term{t}, nil
	}

	vs, err := reg.Apply("+", []term.Term{term.Symbol("f"), term.Int(10)}, multiValued)
	require.Nil(t, err)
	assert.ElementsMatch(t, []term.Term{term.Int(11), term.Int(12)}, valueTerms(vs))
}

func TestComparisonAndEquality(t *testing.T) {
	reg := grounded.NewStandardRegistry()

	vs, err := reg.Apply("<", []term.Term{term.Int(1), term.Int(2)}, literalEval)
	require.Nil(t, err)
	assert.Equal(t, []term.Term{term.Bool(true)}, valueTerms(vs))

	vs, err = reg.Apply("==", []term.Term{term.NewExpr(term.Symbol("a"), term.Int(1)), term.NewExpr(term.Symbol("a"), term.Int(1))}, literalEval)
	require.Nil(t, err)
	assert.Equal(t, []term.Term{term.Bool(true)}, valueTerms(vs))
}

// TestShortCircuitAndSkipsRightEval is the S6 scenario: "and" with a
// false left operand must never evaluate its right operand.
func TestShortCircuitAndSkipsRightEval(t *testing.T) {
	reg := grounded.NewStandardRegistry()
	rightEvaluated := false
	eval := func(t term.Term) ([]term.Term, error) {
		if t == term.Symbol("right") {
			rightEvaluated = true
		}
		return []term.Term{t}, nil
	}

	vs, err := reg.Apply("and", []term.Term{term.Bool(false), term.Symbol("right")}, eval)
	require.Nil(t, err)
	assert.Equal(t, []term.Term{term.Bool(false)}, valueTerms(vs))
	assert.False(t, rightEvaluated, "and must short-circuit without evaluating its right operand")
}

func TestShortCircuitOrSkipsRightEval(t *testing.T) {
	reg := grounded.NewStandardRegistry()
	rightEvaluated := false
	eval := func(t term.Term) ([]term.Term, error) {
		if t == term.Symbol("right") {
			rightEvaluated = true
		}
		return []term.Term{t}, nil
	}

	vs, err := reg.Apply("or", []term.Term{term.Bool(true), term.Symbol("right")}, eval)
	require.Nil(t, err)
	assert.Equal(t, []term.Term{term.Bool(true)}, valueTerms(vs))
	assert.False(t, rightEvaluated, "or must short-circuit without evaluating its right operand")
}

func TestAndEvaluatesRightWhenLeftTrue(t *testing.T) {
	reg := grounded.NewStandardRegistry()
	eval := func(t term.Term) ([]term.Term, error) {
		if t == term.Symbol("right") {
			return []term.Term{term.Bool(false)}, nil
		}
		return []term.Term{t}, nil
	}

	vs, err := reg.Apply("and", []term.Term{term.Bool(true), term.Symbol("right")}, eval)
	require.Nil(t, err)
	assert.Equal(t, []term.Term{term.Bool(false)}, valueTerms(vs))
}

func TestNot(t *testing.T) {
	reg := grounded.NewStandardRegistry()
	vs, err := reg.Apply("not", []term.Term{term.Bool(false)}, literalEval)
	require.Nil(t, err)
	assert.Equal(t, []term.Term{term.Bool(true)}, valueTerms(vs))
}

func TestUnknownHeadIsNoReduce(t *testing.T) {
	reg := grounded.NewStandardRegistry()
	_, err := reg.Apply("frobnicate", nil, literalEval)
	require.NotNil(t, err)
	assert.True(t, grounded.IsNoReduce(err))
}
