package environment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/F1R3FLY-io/mettatron/internal/environment"
	"github.com/F1R3FLY-io/mettatron/internal/rule"
	"github.com/F1R3FLY-io/mettatron/internal/space"
	"github.com/F1R3FLY-io/mettatron/internal/term"
)

func newEnv() *environment.Environment {
	return environment.New(space.New("self", nil), nil, nil)
}

func TestAddTypeAndTypeOf(t *testing.T) {
	env := newEnv()
	env.AddType("answer", term.Symbol("Number"))

	typ, ok := env.TypeOf("answer")
	require.True(t, ok)
	assert.True(t, term.StructuralEqual(term.Symbol("Number"), typ))

	_, ok = env.TypeOf("missing")
	assert.False(t, ok)
}

func TestForkIsolatesFactMutation(t *testing.T) {
	env := newEnv()
	f := term.NewExpr(term.Symbol("f"))
	env.AddFact(f)

	branch := env.Fork()
	g := term.NewExpr(term.Symbol("g"))
	branch.AddFact(g)

	assert.True(t, env.Space().Contains(f))
	assert.False(t, env.Space().Contains(g))
	assert.True(t, branch.Space().Contains(f))
	assert.True(t, branch.Space().Contains(g))
}

func TestForkIsolatesMemoTableCreation(t *testing.T) {
	env := newEnv()
	branch := env.Fork()

	branchTable := branch.MemoTable("calls")
	assert.Equal(t, 0, branchTable.Len())

	// The parent must not see a memo table created only on the branch,
	// since MemoTable lazily copies the table map on first mutation (CoW).
	parentTable := env.MemoTable("calls")
	assert.NotNil(t, parentTable)
	assert.NotSame(t, branchTable, parentTable)
}

func TestRulesForIncludesSentinelBucket(t *testing.T) {
	env := newEnv()
	specific := rule.New(
		term.NewExpr(term.Symbol("double"), term.Variable("$x")),
		term.Variable("$x"),
	)
	wild := rule.New(term.Variable("$f"), term.Symbol("fallback"))
	env.AddRule(specific)
	env.AddRule(wild)

	rules := env.RulesFor("double")
	assert.Len(t, rules, 2)

	rules = env.RulesFor("nonexistent")
	assert.Len(t, rules, 1)
}

func TestUnionMergesFactsAndRules(t *testing.T) {
	a := newEnv()
	a.AddFact(term.NewExpr(term.Symbol("a-fact")))
	a.AddRule(rule.New(term.Symbol("a-rule"), term.Int(1)))

	b := newEnv()
	b.AddFact(term.NewExpr(term.Symbol("b-fact")))
	b.AddRule(rule.New(term.Symbol("b-rule"), term.Int(2)))

	merged := environment.Union(a, b)
	assert.True(t, merged.Space().Contains(term.NewExpr(term.Symbol("a-fact"))))
	assert.True(t, merged.Space().Contains(term.NewExpr(term.Symbol("b-fact"))))
	assert.Len(t, merged.RulesFor("a-rule"), 1)
	assert.Len(t, merged.RulesFor("b-rule"), 1)

	// The sources are untouched by the merge.
	assert.False(t, a.Space().Contains(term.NewExpr(term.Symbol("b-fact"))))
}

func TestRemoveFactInvalidatesTypeIndex(t *testing.T) {
	env := newEnv()
	env.AddType("x", term.Int(1))
	_, ok := env.TypeOf("x")
	require.True(t, ok)

	env.RemoveFact(term.NewExpr(term.Symbol(":"), term.Symbol("x"), term.Int(1)))
	_, ok = env.TypeOf("x")
	assert.False(t, ok)
}
