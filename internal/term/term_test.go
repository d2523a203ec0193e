package term_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/F1R3FLY-io/mettatron/internal/term"
)

func TestStructuralEqualDistinguishesNilUnitEmptyExpr(t *testing.T) {
	assert.False(t, term.StructuralEqual(term.Nil{}, term.Unit{}))
	assert.False(t, term.StructuralEqual(term.Nil{}, term.NewExpr()))
	assert.False(t, term.StructuralEqual(term.Unit{}, term.NewExpr()))
}

func TestHEEqualCollapsesNilUnitEmptyExpr(t *testing.T) {
	assert.True(t, term.HEEqual(term.Nil{}, term.Unit{}))
	assert.True(t, term.HEEqual(term.Nil{}, term.NewExpr()))
	assert.True(t, term.HEEqual(term.Unit{}, term.NewExpr()))
	assert.False(t, term.HEEqual(term.Nil{}, term.Int(0)))
}

func TestHeadSymbolFromExpression(t *testing.T) {
	e := term.NewExpr(term.Symbol("double"), term.Variable("$x"))
	head, ok := term.HeadSymbol(e)
	require.True(t, ok)
	assert.Equal(t, "double", head)
}

func TestHeadSymbolRejectsSigiledHeads(t *testing.T) {
	cases := []term.Term{
		term.NewExpr(term.Variable("$f"), term.Int(1)),
		term.NewExpr(term.Symbol("&mod"), term.Int(1)),
		term.NewExpr(term.Symbol("'quoted"), term.Int(1)),
		term.NewExpr(term.Symbol("_"), term.Int(1)),
		term.NewExpr(),
	}
	for _, c := range cases {
		_, ok := term.HeadSymbol(c)
		assert.False(t, ok, "expected no head symbol for %v", c)
	}
}

func TestHeadSymbolFromBareSymbol(t *testing.T) {
	head, ok := term.HeadSymbol(term.Symbol("foo"))
	require.True(t, ok)
	assert.Equal(t, "foo", head)
}

func TestEncodeInjectiveForGroundTerms(t *testing.T) {
	terms := []term.Term{
		term.Symbol("foo"),
		term.Int(1),
		term.Int(2),
		term.Float(1.0),
		term.Bool(true),
		term.String("foo"),
		term.NewExpr(term.Symbol("foo")),
		term.NewExpr(term.Symbol("foo"), term.Int(1)),
		term.Nil{},
		term.Unit{},
		term.Empty{},
	}
	seen := map[string]term.Term{}
	for _, tm := range terms {
		enc := string(term.Encode(tm))
		if other, dup := seen[enc]; dup {
			t.Fatalf("encoding collision between %v and %v", tm, other)
		}
		seen[enc] = tm
	}
}

func TestEncodeDeterministic(t *testing.T) {
	tm := term.NewExpr(term.Symbol(":"), term.Symbol("name"), term.Symbol("Type"))
	assert.True(t, bytes.Equal(term.Encode(tm), term.Encode(tm)))
}

func TestEncodePrefixIsBytewisePrefix(t *testing.T) {
	name := term.Symbol("foo")
	typ := term.Symbol("Number")
	full := term.NewExpr(term.Symbol(":"), name, typ)
	prefix := term.EncodePrefix([]term.Term{term.Symbol(":"), name})

	fullBytes := term.Encode(full)
	assert.True(t, bytes.HasPrefix(fullBytes, prefix), "encoded full term must carry the (: name) prefix")

	// A term with the same (: name) prefix but a different type must
	// also carry the prefix, and one with a different name must not.
	otherType := term.NewExpr(term.Symbol(":"), name, term.Symbol("String"))
	assert.True(t, bytes.HasPrefix(term.Encode(otherType), prefix))

	differentName := term.NewExpr(term.Symbol(":"), term.Symbol("bar"), typ)
	assert.False(t, bytes.HasPrefix(term.Encode(differentName), prefix))
}

func TestStructuralHashStable(t *testing.T) {
	a := term.NewExpr(term.Symbol("f"), term.Int(1), term.String("x"))
	b := term.NewExpr(term.Symbol("f"), term.Int(1), term.String("x"))
	assert.Equal(t, term.StructuralHash(a), term.StructuralHash(b))

	c := term.NewExpr(term.Symbol("f"), term.Int(2), term.String("x"))
	assert.NotEqual(t, term.StructuralHash(a), term.StructuralHash(c))
}
