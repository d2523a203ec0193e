package rule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/F1R3FLY-io/mettatron/internal/rule"
	"github.com/F1R3FLY-io/mettatron/internal/term"
)

func TestHeadKeySymbolHead(t *testing.T) {
	r := rule.New(
		term.NewExpr(term.Symbol("double"), term.Variable("$x")),
		term.Variable("$x"),
	)
	assert.Equal(t, "double", rule.HeadKey(r))
}

func TestHeadKeyVariableHeadIsSentinel(t *testing.T) {
	r := rule.New(term.Variable("$f"), term.Symbol("anything"))
	assert.Equal(t, rule.Sentinel, rule.HeadKey(r))
}

func TestHeadKeyBareSymbolLHS(t *testing.T) {
	r := rule.New(term.Symbol("answer"), term.Int(42))
	assert.Equal(t, "answer", rule.HeadKey(r))
}

func TestHeadKeyEmptyExprIsSentinel(t *testing.T) {
	r := rule.New(term.NewExpr(), term.Symbol("anything"))
	assert.Equal(t, rule.Sentinel, rule.HeadKey(r))
}

func TestNewPreservesLHSAndRHS(t *testing.T) {
	lhs := term.Symbol("a")
	rhs := term.Symbol("b")
	r := rule.New(lhs, rhs)
	assert.Equal(t, lhs, r.LHS)
	assert.Equal(t, rhs, r.RHS)
}
