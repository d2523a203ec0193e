// Package rule defines the (LHS, RHS) rewrite pair and the head-symbol
// extraction used to index rules.
package rule

import "github.com/F1R3FLY-io/mettatron/internal/term"

// Rule is a pair (LHS, RHS): LHS is a Term pattern, RHS is a Term whose
// Variables are drawn from LHS.
type Rule struct {
	LHS term.Term
	RHS term.Term
}

// New constructs a Rule.
func New(lhs, rhs term.Term) Rule { return Rule{LHS: lhs, RHS: rhs} }

// Sentinel is the bucket key rules with a variable- or wildcard-headed
// LHS are indexed under; they are consulted on every dispatch
// regardless of the query's head symbol.
const Sentinel = ""

// HeadKey returns the index key for r: its LHS head symbol, or
// Sentinel if the LHS has no eligible head symbol.
func HeadKey(r Rule) string {
	if head, ok := term.HeadSymbol(r.LHS); ok {
		return head
	}
	return Sentinel
}
